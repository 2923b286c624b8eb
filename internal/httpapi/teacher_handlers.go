package httpapi

import (
	"net/http"
	"strings"
	"time"

	"zenclass.org/internal/booking"
)

type teacherResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toTeacherResponse(t *booking.Teacher) teacherResponse {
	return teacherResponse{
		ID:        t.ID,
		FirstName: t.FirstName,
		LastName:  t.LastName,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (a *API) handleTeacherCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	teachers, err := a.bookings.Teachers(r.Context())
	if err != nil {
		handleBookingError(w, r, err)
		return
	}
	out := make([]teacherResponse, 0, len(teachers))
	for _, t := range teachers {
		out = append(out, toTeacherResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleTeacherResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	raw := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/teacher/"), "/")
	id, err := parseID(raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid teacher id")
		return
	}
	teacher, err := a.bookings.Teacher(r.Context(), id)
	if err != nil {
		handleBookingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeacherResponse(teacher))
}
