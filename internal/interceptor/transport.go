// Package interceptor attaches the stored credential to outbound calls and
// recovers from expired guest credentials with a single transparent retry.
package interceptor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/mcoot/jeopardyze-client/internal/credential"
	"github.com/mcoot/jeopardyze-client/internal/model"
	"github.com/mcoot/jeopardyze-client/internal/notify"
	"github.com/mcoot/jeopardyze-client/internal/services/bootstrap"
	"github.com/mcoot/jeopardyze-client/internal/storage"
)

const refreshKey = "guest-refresh"

// Transport is an http.RoundTripper that authenticates requests with the
// credential held in the store.
type Transport struct {
	base         http.RoundTripper
	store        storage.CredentialStore
	bootstrapper bootstrap.Bootstrapper
	publisher    notify.Publisher
	logger       *slog.Logger

	refresh singleflight.Group
}

// Ensure Transport implements http.RoundTripper
var _ http.RoundTripper = (*Transport)(nil)

// New creates a new Transport. base nil means http.DefaultTransport.
func New(
	base http.RoundTripper,
	store storage.CredentialStore,
	bootstrapper bootstrap.Bootstrapper,
	publisher notify.Publisher,
	logger *slog.Logger,
) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		base:         base,
		store:        store,
		bootstrapper: bootstrapper,
		publisher:    publisher,
		logger:       logger.With(slog.String("component", "interceptor")),
	}
}

// RoundTrip sends req with the current credential attached
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.roundTrip(req, t.loadCredential(req.Context()))
}

// roundTrip sends req with cred, or without a credential when cred is empty
func (t *Transport) roundTrip(req *http.Request, cred model.Credential) (*http.Response, error) {
	ctx := req.Context()

	out := req.Clone(ctx)
	if cred != "" {
		out.Header.Set("Authorization", "Bearer "+cred.Raw())
	} else {
		out.Header.Del("Authorization")
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	if isRetry(ctx) {
		t.logger.Warn("unauthorized after refresh",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.String("error", model.ErrDoubleRetryAttempt.Error()))
		return resp, nil
	}

	if !replayable(req) {
		t.logger.Warn("not retrying unauthorized request",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.String("error", model.ErrRequestNotReplayable.Error()))
		return resp, nil
	}

	return t.handleUnauthorized(req, resp)
}

// handleUnauthorized classifies the failure by the credential stored right now,
// which may differ from the one the request was sent with.
func (t *Transport) handleUnauthorized(req *http.Request, resp *http.Response) (*http.Response, error) {
	ctx := withRetryMarker(req.Context())

	stored, err := t.store.Load(ctx)
	switch {
	case errors.Is(err, model.ErrCredentialNotFound):
		stored = ""
	case err != nil:
		t.logger.Error("failed to read credential after unauthorized response",
			slog.String("error", err.Error()))
		return resp, nil
	}

	if stored != "" {
		if claims, err := credential.Parse(stored); err == nil && claims.PlayerType == model.PlayerTypeUser {
			return t.rejectUser(ctx, claims, resp)
		}
	}

	t.logger.Info("refreshing guest credential",
		slog.String("reason", model.ErrExpiredGuestCredential.Error()),
		slog.String("path", req.URL.Path))

	cred, err := t.refreshGuest(ctx)
	discard(resp)
	if err != nil {
		return nil, err
	}

	retry := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrRequestNotReplayable, err)
		}
		retry.Body = body
	}

	// The retry carries the credential just issued, whatever the store holds by now
	return t.roundTrip(retry, cred)
}

func (t *Transport) rejectUser(ctx context.Context, claims model.Claims, resp *http.Response) (*http.Response, error) {
	t.logger.Warn("user credential rejected",
		slog.Int64("player_id", int64(claims.PlayerID)),
		slog.String("reason", model.ErrExpiredUserCredential.Error()))

	if err := t.store.Clear(ctx); err != nil {
		t.logger.Error("failed to clear credential", slog.String("error", err.Error()))
	}
	t.publisher.Publish(model.Event{Type: model.EventReauthRequired})

	return resp, nil
}

// refreshGuest mints, stores and announces a new guest credential. Concurrent
// callers share one bootstrap call, which outlives the cancellation of the
// caller that started it.
func (t *Transport) refreshGuest(ctx context.Context) (model.Credential, error) {
	v, err, shared := t.refresh.Do(refreshKey, func() (any, error) {
		ctx := context.WithoutCancel(ctx)

		result, err := t.bootstrapper.CreateGuestSession(ctx)
		if err != nil {
			return model.Credential(""), fmt.Errorf("%w: %w", model.ErrBootstrapFailure, err)
		}

		if err := t.store.Save(ctx, result.AccessToken); err != nil {
			return model.Credential(""), fmt.Errorf("save refreshed credential: %w", err)
		}

		t.publisher.Publish(model.Event{
			Type:       model.EventCredentialUpdated,
			Credential: result.AccessToken,
		})
		return result.AccessToken, nil
	})
	if shared {
		t.logger.Debug("joined in-flight guest refresh")
	}
	if err != nil {
		return "", err
	}
	return v.(model.Credential), nil
}

// loadCredential returns the stored credential, or "" when there is none
func (t *Transport) loadCredential(ctx context.Context) model.Credential {
	cred, err := t.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrCredentialNotFound) {
			t.logger.Error("failed to read credential", slog.String("error", err.Error()))
		}
		return ""
	}
	return cred
}

func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
