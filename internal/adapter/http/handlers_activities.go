package adapthttp

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"wellness/internal/domain"
)

type activityResponse struct {
	UserID       uuid.UUID `json:"userId"`
	Date         string    `json:"date"`
	Steps        int64     `json:"steps"`
	Sleep        *float64  `json:"sleep"`
	CardioPoints int64     `json:"cardioPoints"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func newActivityResponse(rec *domain.DailyActivity) activityResponse {
	return activityResponse{
		UserID:       rec.UserID,
		Date:         domain.FormatDay(rec.Day),
		Steps:        rec.Steps,
		Sleep:        rec.Sleep,
		CardioPoints: rec.CardioPoints,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func (s *Server) handleRecordActivity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID       uuid.UUID `json:"userId"`
		Date         string    `json:"date"`
		Steps        *int64    `json:"steps"`
		Sleep        *float64  `json:"sleep"`
		CardioPoints *int64    `json:"cardioPoints"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.UserID == uuid.Nil {
		writeError(w, http.StatusBadRequest, domain.Invalidf("userId is required"))
		return
	}
	day, err := domain.ParseDay(body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var fields domain.ActivityFields
	if body.Steps != nil {
		fields.Steps = domain.Inc(*body.Steps)
	}
	if body.Sleep != nil {
		fields.Sleep = domain.Set(*body.Sleep)
	}
	if body.CardioPoints != nil {
		fields.CardioPoints = domain.Inc(*body.CardioPoints)
	}

	rec, err := s.activities.RecordActivity(r.Context(), body.UserID, day, fields)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newActivityResponse(rec))
}

func (s *Server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	day, err := domain.ParseDay(mux.Vars(r)["date"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rec, err := s.activities.GetDay(r.Context(), userID, day)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newActivityResponse(rec))
}
