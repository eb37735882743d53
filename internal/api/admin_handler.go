package api

import (
	"alcyxob/team-training/internal/domain"
	"alcyxob/team-training/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService    service.AdminService
	trainingService service.TrainingService
	maxUploadBytes  int64
}

func NewAdminHandler(adminService service.AdminService, trainingService service.TrainingService, maxUploadBytes int64) *AdminHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = service.DefaultMaxImageBytes
	}
	return &AdminHandler{
		adminService:    adminService,
		trainingService: trainingService,
		maxUploadBytes:  maxUploadBytes,
	}
}

type UpdateUserRequest struct {
	FullName string      `json:"fullName" binding:"required,max=200"`
	Team     domain.Team `json:"team" binding:"required,team"`
}

type DeleteUserResponse struct {
	DeletedTrainings int64 `json:"deletedTrainings"`
}

// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(users, langFrom(c)))
}

// PUT /api/v1/admin/users/:id
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithValidation(c, bindingDetails(err))
		return
	}

	user, err := h.adminService.UpdateUser(c.Request.Context(), id, req.FullName, req.Team)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user, langFrom(c)))
}

// DeleteUser removes the user together with every training they logged.
// DELETE /api/v1/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	n, err := h.adminService.DeleteUser(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteUserResponse{DeletedTrainings: n})
}

// GET /api/v1/admin/trainings
func (h *AdminHandler) ListTrainings(c *gin.Context) {
	trainings, err := h.adminService.ListTrainings(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapAdminTrainingsToResponse(trainings, langFrom(c)))
}

// UpdateTraining edits type and details, optionally replacing the image.
// PUT /api/v1/admin/trainings/:id
func (h *AdminHandler) UpdateTraining(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	in, done, ok := bindTrainingForm(c, h.maxUploadBytes)
	defer done()
	if !ok {
		return
	}

	training, err := h.trainingService.Update(c.Request.Context(), id, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTrainingToResponse(training, langFrom(c)))
}

// DELETE /api/v1/admin/trainings/:id
func (h *AdminHandler) DeleteTraining(c *gin.Context) {
	session, _ := getSessionFromContext(c)
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.trainingService.Delete(c.Request.Context(), session, id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
