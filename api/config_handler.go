package api

import (
	"net/http"

	"github.com/phelipetls/seriesbr-sub000/internal/config"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Endpoints []config.EndpointStatus `json:"endpoints"`
	HTTP      config.HTTPConfig       `json:"http"`
	CORS      []string                `json:"cors_origins"`
}

// handleGetConfig returns the running endpoints and transport settings.
// Endpoint credentials are masked.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Endpoints: config.Endpoints(s.cfg),
			HTTP:      s.cfg.HTTP,
			CORS:      s.cfg.API.CORSOrigins,
		},
	})
}
