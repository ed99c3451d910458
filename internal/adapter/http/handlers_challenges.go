package adapthttp

import (
	"fmt"
	"net/http"

	"wellness/internal/domain"
)

type challengeRequest struct {
	Name         string          `json:"name"`
	Type         domain.Metric   `json:"type"`
	StartDate    string          `json:"startDate"`
	EndDate      string          `json:"endDate"`
	GoalType     domain.GoalType `json:"goalType"`
	TargetValue  float64         `json:"targetValue"`
	RequiredDays int             `json:"requiredDays"`
}

func (req challengeRequest) toDomain() (domain.Challenge, error) {
	start, err := domain.ParseWindowBound(req.StartDate, false)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("startDate: %w", err)
	}
	end, err := domain.ParseWindowBound(req.EndDate, true)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("endDate: %w", err)
	}
	return domain.Challenge{
		Name:         req.Name,
		Type:         req.Type,
		StartDate:    start,
		EndDate:      end,
		GoalType:     req.GoalType,
		TargetValue:  req.TargetValue,
		RequiredDays: req.RequiredDays,
	}, nil
}

func (s *Server) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	var body challengeRequest
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	def, err := body.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	c, err := s.challenges.Create(r.Context(), def)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	items, err := s.challenges.List(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleActiveChallenges(w http.ResponseWriter, r *http.Request) {
	items, err := s.challenges.Active(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleGetChallenge(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	c, err := s.challenges.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
