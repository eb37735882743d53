package api

import (
	"alcyxob/team-training/internal/domain"
	"alcyxob/team-training/internal/i18n"
	"alcyxob/team-training/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Client-side landing routes returned by GET /session.
const (
	landingWelcome   = "/welcome"
	landingDashboard = "/dashboard"
	landingAdmin     = "/admin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request Structs ---

type SignUpRequest struct {
	FullName string      `json:"fullName" binding:"required,max=200"`
	Team     domain.Team `json:"team" binding:"required,team"`
}

type LoginRequest struct {
	FullName string `json:"fullName" binding:"required"`
}

type AdminLoginRequest struct {
	Password string `json:"password"`
}

// --- Handler Methods ---

// SignUp creates a new user and signs them in. Names need not be unique.
// POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithValidation(c, bindingDetails(err))
		return
	}

	token, user, err := h.authService.SignUp(c.Request.Context(), req.FullName, req.Team)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := MapUserToResponse(user, langFrom(c))
	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: &resp})
}

// Login signs in the earliest-registered user with exactly this name.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithValidation(c, bindingDetails(err))
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.FullName)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, codeNotFound, i18n.MsgLoginNotFound)
			return
		}
		respondServiceError(c, err)
		return
	}

	resp := MapUserToResponse(user, langFrom(c))
	c.JSON(http.StatusOK, AuthResponse{Token: token, User: &resp})
}

// Logout revokes the current token when a denylist is configured.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	session, _ := getSessionFromContext(c)
	if err := h.authService.Logout(c.Request.Context(), session); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AdminLogin exchanges the shared admin password for an admin token.
// POST /api/v1/auth/admin
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithValidation(c, bindingDetails(err))
		return
	}

	token, err := h.authService.AdminLogin(c.Request.Context(), req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Token: token})
}

// Session tells the client where to land: the dashboard with a valid token,
// the welcome screen otherwise.
// GET /api/v1/session
func (h *AuthHandler) Session(c *gin.Context) {
	session, ok := getSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusOK, SessionResponse{Landing: landingWelcome})
		return
	}

	resp := SessionResponse{Authenticated: true, Role: session.Role, Landing: landingDashboard}
	if session.IsAdmin() {
		resp.Landing = landingAdmin
	} else {
		resp.UserID = session.UserID.Hex()
	}
	c.JSON(http.StatusOK, resp)
}
