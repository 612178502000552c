package handler

import (
	"net/http"
	"strconv"

	"github.com/mcoot/arise-roster/internal/api/middleware"
	"github.com/mcoot/arise-roster/internal/api/response"
	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/services/activity"
)

// ActivityHandler handles the activity log endpoints
type ActivityHandler struct {
	activity *activity.Service
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activity *activity.Service) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// Recent handles GET /api/activity/recent?limit=
func (h *ActivityHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, NewInvalidRequestError("limit must be a number"))
			return
		}
		limit = n
	}

	entries, err := h.activity.Recent(r.Context(), middleware.MustGetSession(r.Context()), limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []*model.ActivityLogEntry{}
	}
	response.JSON(w, http.StatusOK, response.Activities{Success: true, Activities: entries})
}

// Log handles POST /api/activity/log
func (h *ActivityHandler) Log(w http.ResponseWriter, r *http.Request) {
	var in activity.LogInput
	if !decodeJSON(w, r, &in) {
		return
	}

	entry, err := h.activity.Log(r.Context(), middleware.MustGetSession(r.Context()), in)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ActivityLogged{
		Success:     true,
		Message:     "Activity logged successfully",
		ActivityLog: entry,
	})
}
