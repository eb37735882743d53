package api

import (
	"alcyxob/team-training/internal/i18n"
	"alcyxob/team-training/internal/service"
	"alcyxob/team-training/internal/stats"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChartSeries is one chart: labels and values in matching order.
type ChartSeries struct {
	Kind   string   `json:"kind"` // "doughnut" or "bar"
	Title  string   `json:"title"`
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

type StatsResponse struct {
	Total   int                `json:"total"`
	PerUser ChartSeries        `json:"perUser"`
	PerType ChartSeries        `json:"perType"`
	PerTeam ChartSeries        `json:"perTeam"`
	Recent  []TrainingResponse `json:"recent"`
}

type StatsHandler struct {
	statsService service.StatsService
}

func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Stats renders the aggregated counts as three chart series plus the latest trainings.
// GET /api/v1/stats
func (h *StatsHandler) Stats(c *gin.Context) {
	summary, err := h.statsService.Snapshot(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapSummaryToResponse(summary, langFrom(c)))
}

// MapSummaryToResponse localises labels. Users missing from the snapshot
// show as the unknown-user label.
func MapSummaryToResponse(s *stats.Summary, lang i18n.Lang) StatsResponse {
	resp := StatsResponse{
		Total:   s.Total,
		PerUser: ChartSeries{Kind: "doughnut", Title: i18n.T(lang, i18n.MsgChartPerUser), Labels: []string{}, Data: []int{}},
		PerType: ChartSeries{Kind: "bar", Title: i18n.T(lang, i18n.MsgChartPerType), Labels: []string{}, Data: []int{}},
		PerTeam: ChartSeries{Kind: "bar", Title: i18n.T(lang, i18n.MsgChartPerTeam), Labels: []string{}, Data: []int{}},
	}

	names := make(map[primitive.ObjectID]string, len(s.PerUser))
	for _, uc := range s.PerUser {
		label := uc.FullName
		if !uc.Known {
			label = i18n.UnknownUser(lang)
		}
		names[uc.UserID] = label
		resp.PerUser.Labels = append(resp.PerUser.Labels, label)
		resp.PerUser.Data = append(resp.PerUser.Data, uc.Count)
	}
	for _, tc := range s.PerType {
		resp.PerType.Labels = append(resp.PerType.Labels, i18n.TrainingTypeLabel(lang, tc.Type))
		resp.PerType.Data = append(resp.PerType.Data, tc.Count)
	}
	for _, tc := range s.PerTeam {
		resp.PerTeam.Labels = append(resp.PerTeam.Labels, i18n.TeamLabel(lang, tc.Team))
		resp.PerTeam.Data = append(resp.PerTeam.Data, tc.Count)
	}

	resp.Recent = MapTrainingsToResponse(s.Recent, lang)
	for i := range resp.Recent {
		resp.Recent[i].OwnerName = names[s.Recent[i].UserID]
	}
	return resp
}
