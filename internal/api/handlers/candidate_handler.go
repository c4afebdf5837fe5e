package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crisphq/crisp-interview/internal/models"
	"github.com/crisphq/crisp-interview/internal/services"
)

type CandidateHandler struct {
	registry services.RegistryService
}

func NewCandidateHandler(registry services.RegistryService) *CandidateHandler {
	return &CandidateHandler{registry: registry}
}

// CandidateView renders a registry row for the dashboard. Score is a
// number once completed, the string "N/A" for aborted candidates, and
// null while the interview is pending.
type CandidateView struct {
	CandidateID string                 `json:"candidateId"`
	Name        string                 `json:"name"`
	Email       string                 `json:"email"`
	Phone       string                 `json:"phone"`
	Status      models.CandidateStatus `json:"status"`
	Score       any                    `json:"score"`
	Summary     string                 `json:"summary"`
	Answers     []models.Answer        `json:"answers"`
	CreatedAt   time.Time              `json:"createdAt"`
}

func toView(c models.Candidate) CandidateView {
	v := CandidateView{
		CandidateID: c.CandidateID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		Status:      c.Status,
		Summary:     c.Summary,
		Answers:     []models.Answer{},
		CreatedAt:   c.CreatedAt,
	}
	switch {
	case c.Score != nil:
		v.Score = *c.Score
	case c.Status == models.CandidateAborted:
		v.Score = "N/A"
	}
	if len(c.Answers) > 0 {
		_ = json.Unmarshal(c.Answers, &v.Answers)
	}
	return v
}

// List returns all candidates, optionally filtered by a
// case-insensitive name substring (?q=).
func (h *CandidateHandler) List(c *gin.Context) {
	rows, err := h.registry.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]CandidateView, 0, len(rows))
	for _, row := range rows {
		out = append(out, toView(row))
	}
	c.JSON(http.StatusOK, gin.H{"candidates": out})
}

func (h *CandidateHandler) Get(c *gin.Context) {
	row, err := h.registry.Get(c.Request.Context(), c.Param("candidate_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toView(*row))
}
