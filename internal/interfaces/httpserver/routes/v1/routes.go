// Package v1 wires the versioned API routes.
package v1

import (
	"github.com/gin-gonic/gin"

	"voicebroker/internal/domain/transcript"
	"voicebroker/internal/interfaces/httpserver/handlers"
	"voicebroker/internal/utils/platformerrors"
)

const errorTypeValidation = platformerrors.ErrorTypeValidation

// validRole reports whether a transcript role is one the broker records.
func validRole(role string) bool {
	switch role {
	case transcript.RoleUser, transcript.RoleAssistant, transcript.RoleError:
		return true
	}
	return false
}

// Routes holds the v1 route configuration.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes creates a new v1 routes instance.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{handlers: handlerProvider}
}

// Register registers all v1 routes on the engine.
func (r *Routes) Register(engine *gin.Engine) {
	v1 := engine.Group("/v1")
	RegisterAuthRoutes(v1, r.handlers.Voice)
	RegisterVoiceRoutes(v1, r.handlers.Voice)
	RegisterSessionRoutes(v1, r.handlers.Session)
}
