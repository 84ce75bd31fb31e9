package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/juru/internal/auth"
	"github.com/satriahrh/juru/internal/metrics"
	"github.com/satriahrh/juru/internal/websocket"
	"github.com/satriahrh/juru/usecase"
)

// StatusProvider reports the translation loop state
type StatusProvider interface {
	Status() usecase.Status
}

// PendingCounter reports records not yet appended to the log
type PendingCounter interface {
	Pending() int
}

// Dependencies are the components served by the status server
type Dependencies struct {
	Hub     *websocket.Hub
	Tokens  *auth.TokenIssuer
	Status  StatusProvider
	Pending PendingCounter
	Metrics *metrics.Metrics
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, deps Dependencies, logger *zap.Logger) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "juru",
		})
	})

	e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))

	// API v1 routes
	v1 := e.Group("/api/v1")
	v1.GET("/status", func(c echo.Context) error {
		return getStatus(c, deps)
	})

	// WebSocket endpoint with JWT validation
	e.GET("/ws", func(c echo.Context) error {
		return websocketWithAuth(c, deps, logger)
	})
}

func getStatus(c echo.Context, deps Dependencies) error {
	resp := StatusResponse{Status: deps.Status.Status()}
	if deps.Hub != nil {
		resp.Viewers = deps.Hub.ClientCount()
	}
	if deps.Pending != nil {
		resp.PendingWrites = deps.Pending.Pending()
	}
	return c.JSON(http.StatusOK, resp)
}

// bearerToken reads the token from the Authorization header, falling back to
// the token query parameter since browsers cannot set headers on WebSocket
// requests.
func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok && token != "" {
		return token
	}
	return c.QueryParam("token")
}

// websocketWithAuth handles WebSocket connections with JWT authentication
func websocketWithAuth(c echo.Context, deps Dependencies, logger *zap.Logger) error {
	token := bearerToken(c)
	if token == "" {
		logger.Warn("WebSocket connection rejected: missing token")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "JWT token is required",
		})
	}

	claims, err := deps.Tokens.ValidateToken(token)
	if err != nil {
		logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired JWT token",
		})
	}

	logger.Info("WebSocket connection authenticated",
		zap.String("viewer_id", claims.ViewerID))

	return websocket.HandleWebSocketWithAuth(deps.Hub, c, claims.ViewerID, logger)
}
