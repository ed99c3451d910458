package adapthttp

import "net/http"

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	challengeID, err := pathUUID(r, "challengeId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	e, err := s.enrollments.Join(r.Context(), userID, challengeID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleListEnrollments(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	items, err := s.enrollments.ListWithDetails(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
