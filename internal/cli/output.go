package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/mcoot/jeopardyze-client/internal/client"
	"github.com/mcoot/jeopardyze-client/internal/model"
	"github.com/mcoot/jeopardyze-client/internal/session"
)

var (
	labelColor   = color.New(color.Bold)
	successColor = color.New(color.FgGreen)
	noticeColor  = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	guestColor   = color.New(color.FgCyan)
	userColor    = color.New(color.FgMagenta)
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	stdout io.Writer
	stderr io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, stdout, stderr io.Writer) *Output {
	return &Output{format: format, stdout: stdout, stderr: stderr}
}

// HealthResult is the body of GET /health
type HealthResult struct {
	Status string `json:"status"`
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(o.stdout, data)
		return
	}

	switch v := data.(type) {
	case session.Snapshot:
		o.printSnapshot(v)
	case *client.RegisterResponse:
		successColor.Fprintln(o.stdout, v.Message)
		fmt.Fprintf(o.stdout, "Confirm with: jz verify-email --email %s --code <code>\n", v.Email)
		fmt.Fprintln(o.stdout, "Run register again with the same details to resend the code.")
	case HealthResult:
		labelColor.Fprint(o.stdout, "Status: ")
		fmt.Fprintln(o.stdout, v.Status)
	default:
		o.printJSON(o.stdout, data)
	}
}

// PrintError outputs an error, with a hint when the session could not be established
func (o *Output) PrintError(err error, hint string) {
	if o.format == "json" {
		body := map[string]string{"message": err.Error()}
		if hint != "" {
			body["hint"] = hint
		}
		data, _ := json.Marshal(map[string]any{"error": body})
		fmt.Fprintln(o.stderr, string(data))
		return
	}

	errorColor.Fprint(o.stderr, "Error: ")
	fmt.Fprintln(o.stderr, err)
	if hint != "" {
		fmt.Fprintln(o.stderr, hint)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.stdout, string(data))
		return
	}
	successColor.Fprintln(o.stdout, msg)
}

// Notify reports a notification raised while a command ran. Notices go to
// stderr so JSON on stdout stays parseable.
func (o *Output) Notify(event model.Event) {
	var msg string
	switch event.Type {
	case model.EventReauthRequired:
		msg = "Your sign-in has expired. Sign in again with `jz login`."
	case model.EventCredentialUpdated:
		msg = "Guest session renewed."
	default:
		return
	}

	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"notice": string(event.Type), "message": msg})
		fmt.Fprintln(o.stderr, string(data))
		return
	}
	noticeColor.Fprintln(o.stderr, msg)
}

func (o *Output) printJSON(w io.Writer, data any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printSnapshot(s session.Snapshot) {
	labelColor.Fprint(o.stdout, "State: ")
	fmt.Fprintln(o.stdout, s.State)

	if s.Player != nil {
		kind := guestColor
		if !s.Player.IsGuest() {
			kind = userColor
		}
		labelColor.Fprint(o.stdout, "Player: ")
		fmt.Fprintf(o.stdout, "%s (%s) ", s.Player.DisplayName, s.Player.ID)
		kind.Fprintln(o.stdout, s.Player.Type)
	}
	if s.ExpiresAt != nil {
		labelColor.Fprint(o.stdout, "Expires: ")
		fmt.Fprintln(o.stdout, s.ExpiresAt.Local().Format(time.RFC3339))
	}
	if s.ReauthRequired {
		noticeColor.Fprintln(o.stdout, "Sign in again with `jz login`.")
	}
}
