package http

import (
	"net/http"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.repo.ListGoals(r.Context(), userID(r))
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	out := make([]goalView, 0, len(goals))
	for _, g := range goals {
		out = append(out, goalToView(g))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}
	g, err := parseGoalForm(r.Form)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if _, err := s.repo.CreateGoal(r.Context(), userID(r), g); err != nil {
		respondStorageError(w, r, err)
		return
	}
	redirectAfterMutation(w, r, "/goals")
}

// handleUpdateGoal replaces every field of the goal, progress included.
// Progress only moves through this endpoint, never from expense activity.
func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}
	g, err := parseGoalForm(r.Form)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	g.ID = id

	if err := s.repo.UpdateGoal(r.Context(), userID(r), g); err != nil {
		respondStorageError(w, r, err)
		return
	}
	redirectAfterMutation(w, r, "/goals")
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.repo.DeleteGoal(r.Context(), userID(r), id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	redirectAfterMutation(w, r, "/goals")
}
