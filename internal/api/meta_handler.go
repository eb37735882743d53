package api

import (
	"alcyxob/team-training/internal/domain"
	"alcyxob/team-training/internal/i18n"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Meta lists the selectable teams and training types with display labels.
// GET /api/v1/meta
func Meta(c *gin.Context) {
	lang := langFrom(c)

	teams := make([]OptionResponse, 0, len(domain.Teams))
	for _, t := range domain.Teams {
		teams = append(teams, OptionResponse{Value: string(t), Label: i18n.TeamLabel(lang, t)})
	}
	types := make([]OptionResponse, 0, len(domain.TrainingTypes))
	for _, t := range domain.TrainingTypes {
		types = append(types, OptionResponse{Value: string(t), Label: i18n.TrainingTypeLabel(lang, t)})
	}

	c.JSON(http.StatusOK, MetaResponse{Lang: lang, Teams: teams, TrainingTypes: types})
}
