package api

import (
	"alcyxob/team-training/internal/domain"
	"alcyxob/team-training/internal/i18n"
	"alcyxob/team-training/internal/service"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// multipartOverhead is the slack allowed on top of the image for the other form fields.
const multipartOverhead = 1 << 20

type TrainingHandler struct {
	trainingService service.TrainingService
	maxUploadBytes  int64
}

func NewTrainingHandler(trainingService service.TrainingService, maxUploadBytes int64) *TrainingHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = service.DefaultMaxImageBytes
	}
	return &TrainingHandler{trainingService: trainingService, maxUploadBytes: maxUploadBytes}
}

// TrainingForm is sent as multipart/form-data with an optional "image" file part.
type TrainingForm struct {
	Type    domain.TrainingType `form:"type" json:"type" binding:"required,trainingtype"`
	Details string              `form:"details" json:"details" binding:"required"`
}

// bindTrainingForm parses the form and the optional image. The returned
// closer must be called once the image has been consumed.
func bindTrainingForm(c *gin.Context, maxUploadBytes int64) (service.TrainingInput, func(), bool) {
	noop := func() {}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes+multipartOverhead)

	var form TrainingForm
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, http.StatusBadRequest, codeValidation, i18n.MsgImageTooLarge)
			return service.TrainingInput{}, noop, false
		}
		abortWithValidation(c, bindingDetails(err))
		return service.TrainingInput{}, noop, false
	}
	in := service.TrainingInput{Type: form.Type, Details: form.Details}

	fh, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return in, noop, true
	case err != nil:
		abortWithValidation(c, err.Error())
		return in, noop, false
	}
	if fh.Size > maxUploadBytes {
		abortWithError(c, http.StatusBadRequest, codeValidation, i18n.MsgImageTooLarge)
		return in, noop, false
	}

	f, err := fh.Open()
	if err != nil {
		respondServiceError(c, err)
		return in, noop, false
	}
	in.Image = &service.ImageUpload{Filename: fh.Filename, Body: f}
	return in, func() { closeQuietly(f) }, true
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}

// parseObjectID reads an ObjectID path parameter, answering 400 when malformed.
func parseObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		abortWithValidation(c, param+" is not a valid id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// List returns the caller's own trainings, newest first.
// GET /api/v1/trainings
func (h *TrainingHandler) List(c *gin.Context) {
	session, _ := getSessionFromContext(c)
	trainings, err := h.trainingService.ListMine(c.Request.Context(), session.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTrainingsToResponse(trainings, langFrom(c)))
}

// Create records a training for the caller.
// POST /api/v1/trainings
func (h *TrainingHandler) Create(c *gin.Context) {
	session, _ := getSessionFromContext(c)

	in, done, ok := bindTrainingForm(c, h.maxUploadBytes)
	defer done()
	if !ok {
		return
	}

	training, err := h.trainingService.Create(c.Request.Context(), session.UserID, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapTrainingToResponse(training, langFrom(c)))
}

// Delete removes one of the caller's trainings.
// DELETE /api/v1/trainings/:id
func (h *TrainingHandler) Delete(c *gin.Context) {
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
