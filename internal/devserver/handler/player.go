package handler

import (
	"net/http"

	"github.com/mcoot/jeopardyze-client/internal/devserver/middleware"
	"github.com/mcoot/jeopardyze-client/internal/devserver/response"
)

// GetMe handles GET /api/players/me
func GetMe(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	response.JSON(w, http.StatusOK, player)
}

// Health handles GET /api/health
func Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
