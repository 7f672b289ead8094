package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kingstonroots/yaadstory/internal/middleware"
	"github.com/kingstonroots/yaadstory/internal/models"
	"github.com/kingstonroots/yaadstory/internal/services"
	"github.com/kingstonroots/yaadstory/internal/utils"
)

// GET /api/questions
func (rt *Router) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	questions, err := rt.questions.List(locale)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

// POST /api/responses
func (rt *Router) handleSaveResponse(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	var req services.SaveResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	resp, err := rt.responses.Save(claims.UserID, req)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/responses/{id} — the path segment is always a response id.
func (rt *Router) handleGetResponse(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid response id"})
		return
	}
	resp, err := rt.responses.Get(id, claims.UserID, models.Role(claims.Role))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/user/responses
func (rt *Router) handleListMyResponses(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	responses, err := rt.responses.ListMine(claims.UserID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, responses)
}

// DELETE /api/user/responses
func (rt *Router) handleDeleteMyResponses(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	if err := rt.responses.DeleteMine(claims.UserID); err != nil {
		rt.writeError(w, r, err)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"message": utils.T(locale, "responses.deleted")})
}

// GET /api/admin/responses
func (rt *Router) handleAdminResponses(w http.ResponseWriter, r *http.Request) {
	responses, err := rt.responses.ListAll()
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, responses)
}
