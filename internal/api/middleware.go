package api

import (
	"alcyxob/team-training/internal/domain"
	"alcyxob/team-training/internal/i18n"
	"alcyxob/team-training/internal/metrics"
	"alcyxob/team-training/internal/service"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Constants for context keys
const (
	ContextSessionKey  = "session"
	ContextUserIDKey   = "userID"
	ContextUserRoleKey = "userRole"
	ContextLangKey     = "lang"
	ContextRequestID   = "requestID"
)

const requestIDHeader = "X-Request-ID"

// LocaleMiddleware picks the response language from ?lang= or Accept-Language.
func LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextLangKey, i18n.Match(c.Query("lang"), c.GetHeader("Accept-Language")))
		c.Next()
	}
}

func langFrom(c *gin.Context) i18n.Lang {
	if v, ok := c.Get(ContextLangKey); ok {
		if lang, ok := v.(i18n.Lang); ok {
			return lang
		}
	}
	return i18n.Hebrew
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// present is false when the header is absent altogether.
func bearerToken(c *gin.Context) (token string, present bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", true
	}
	return parts[1], true
}

func setSession(c *gin.Context, session *domain.Session) {
	c.Set(ContextSessionKey, session)
	c.Set(ContextUserIDKey, session.UserID)
	c.Set(ContextUserRoleKey, session.Role)
}

// AuthMiddleware requires a valid session token.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present := bearerToken(c)
		if !present {
			abortWithError(c, http.StatusUnauthorized, codeMissingSession, i18n.MsgMissingSession)
			return
		}
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, codeInvalidToken, i18n.MsgInvalidToken)
			return
		}

		session, err := authService.ParseToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrInvalidToken) {
				abortWithError(c, http.StatusUnauthorized, codeInvalidToken, i18n.MsgInvalidToken)
				return
			}
			respondServiceError(c, err)
			return
		}

		setSession(c, session)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the session when a valid token is present
// and lets the request through either way.
func OptionalAuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, _ := bearerToken(c); token != "" {
			if session, err := authService.ParseToken(c.Request.Context(), token); err == nil {
				setSession(c, session)
			}
		}
		c.Next()
	}
}

// RoleMiddleware creates middleware to check if the session has one of the allowed roles.
// Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := getUserRoleFromContext(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, codeMissingSession, i18n.MsgMissingSession)
			return
		}
		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, codeForbidden, i18n.MsgForbidden)
	}
}

func getSessionFromContext(c *gin.Context) (*domain.Session, bool) {
	raw, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil, false
	}
	session, ok := raw.(*domain.Session)
	return session, ok && session != nil
}

func getUserRoleFromContext(c *gin.Context) (domain.Role, bool) {
	raw, exists := c.Get(ContextUserRoleKey)
	if !exists {
		return "", false
	}
	role, ok := raw.(domain.Role)
	return role, ok
}

// RequestLogger logs one line per request and records the HTTP metrics.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestID, requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(latency.Seconds())

		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Msg("request")
	}
}

// Recovery turns a panic into the standard 500 envelope.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("handler panicked")
		abortWithError(c, http.StatusInternalServerError, codeStoreFailure, i18n.MsgStoreFailure)
	})
}
