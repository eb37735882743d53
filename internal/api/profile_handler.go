package api

import (
	"alcyxob/team-training/internal/i18n"
	"alcyxob/team-training/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService service.ProfileService
}

func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// Dashboard returns the caller's record and their trainings, newest first.
// GET /api/v1/dashboard
func (h *ProfileHandler) Dashboard(c *gin.Context) {
	session, _ := getSessionFromContext(c)
	d, err := h.profileService.GetDashboard(c.Request.Context(), session)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	lang := langFrom(c)
	resp := DashboardResponse{
		User:      MapUserToResponse(d.User, lang),
		Trainings: MapTrainingsToResponse(d.Trainings, lang),
	}
	if len(d.Trainings) == 0 {
		resp.Empty = i18n.T(lang, i18n.MsgNoTrainings)
	}
	c.JSON(http.StatusOK, resp)
}

// GET /api/v1/profile
func (h *ProfileHandler) Profile(c *gin.Context) {
	session, _ := getSessionFromContext(c)
	user, err := h.profileService.GetProfile(c.Request.Context(), session)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user, langFrom(c)))
}
