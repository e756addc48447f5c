package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/jeopardyze-client/internal/devserver/apierr"
	"github.com/mcoot/jeopardyze-client/internal/middleware"
)

// Recovery creates panic recovery middleware returning JSON error bodies
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
