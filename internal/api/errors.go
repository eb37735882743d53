package api

import (
	"alcyxob/team-training/internal/i18n"
	"alcyxob/team-training/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Stable error codes; clients switch on these, the message is for display.
const (
	codeMissingSession     = "missing_session"
	codeInvalidToken       = "invalid_token"
	codeForbidden          = "forbidden"
	codeNotFound           = "not_found"
	codeValidation         = "validation"
	codeAdminDisabled      = "admin_disabled"
	codeWrongAdminPassword = "wrong_admin_password"
	codeStoreFailure       = "store_failure"
)

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// Helper to return the localised JSON error envelope and abort the request
func abortWithError(c *gin.Context, status int, code string, key i18n.Key) {
	c.AbortWithStatusJSON(status, errorResponse{Error: i18n.T(langFrom(c), key), Code: code})
}

func abortWithValidation(c *gin.Context, details string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Error:   i18n.T(langFrom(c), i18n.MsgValidation),
		Code:    codeValidation,
		Details: details,
	})
}

// respondServiceError maps service errors to HTTP. Anything unrecognised is a
// store failure: the cause goes to the request log, never to the client.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		abortWithValidation(c, err.Error())
	case errors.Is(err, service.ErrImageType):
		abortWithError(c, http.StatusBadRequest, codeValidation, i18n.MsgImageType)
	case errors.Is(err, service.ErrImageTooLarge):
		abortWithError(c, http.StatusBadRequest, codeValidation, i18n.MsgImageTooLarge)
	case errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, codeNotFound, i18n.MsgUserNotFound)
	case errors.Is(err, service.ErrTrainingNotFound):
		abortWithError(c, http.StatusNotFound, codeNotFound, i18n.MsgTrainingNotFound)
	case errors.Is(err, service.ErrForbidden):
		abortWithError(c, http.StatusForbidden, codeForbidden, i18n.MsgForbidden)
	case errors.Is(err, service.ErrInvalidToken):
		abortWithError(c, http.StatusUnauthorized, codeInvalidToken, i18n.MsgInvalidToken)
	case errors.Is(err, service.ErrAdminDisabled):
		abortWithError(c, http.StatusForbidden, codeAdminDisabled, i18n.MsgAdminDisabled)
	case errors.Is(err, service.ErrWrongAdminPassword):
		abortWithError(c, http.StatusUnauthorized, codeWrongAdminPassword, i18n.MsgWrongAdminPassword)
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, codeStoreFailure, i18n.MsgStoreFailure)
	}
}
