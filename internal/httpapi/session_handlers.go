package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"zenclass.org/internal/audit"
	"zenclass.org/internal/booking"
)

type sessionRequest struct {
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	TeacherID   int64     `json:"teacher_id"`
}

type sessionResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	TeacherID   int64     `json:"teacher_id"`
	Users       []int64   `json:"users"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toSessionResponse(s *booking.Session) sessionResponse {
	users := make([]int64, 0, len(s.Members))
	for _, m := range s.Members {
		users = append(users, m.ID)
	}
	return sessionResponse{
		ID:          s.ID,
		Name:        s.Name,
		Date:        s.Date,
		Description: s.Description,
		TeacherID:   s.TeacherID,
		Users:       users,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (a *API) handleSessionCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listSessions(w, r)
	case http.MethodPost:
		a.createSession(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleSessionResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/session/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")

	switch {
	case len(parts) == 1:
		id, err := parseID(parts[0])
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid session id")
			return
		}
		switch r.Method {
		case http.MethodGet:
			a.getSession(w, r, id)
		case http.MethodPut:
			a.updateSession(w, r, id)
		case http.MethodDelete:
			a.deleteSession(w, r, id)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
		}
	case len(parts) == 3 && parts[1] == "participate":
		sessionID, err := parseID(parts[0])
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid session id")
			return
		}
		userID, err := parseID(parts[2])
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid user id")
			return
		}
		a.participate(w, r, sessionID, userID)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := a.bookings.FindAll(r.Context())
	if err != nil {
		handleBookingError(w, r, err)
		return
	}
	out := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getSession(w http.ResponseWriter, r *http.Request, id int64) {
	session, err := a.bookings.GetByID(r.Context(), id)
	if err != nil {
		handleBookingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (a *API) createSession(w http.ResponseWriter, r *http.Request) {
	if !a.ensureAdmin(w, r) {
		return
	}
	var req sessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	session, err := a.bookings.Create(r.Context(), &booking.Session{
		Name:        req.Name,
		Date:        req.Date,
		Description: req.Description,
		TeacherID:   req.TeacherID,
	})
	if err != nil {
		handleBookingError(w, r, err)
		return
	}
	a.auditSession(r, "session.create", session.ID)
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (a *API) updateSession(w http.ResponseWriter, r *http.Request, id int64) {
	if !a.ensureAdmin(w, r) {
		return
	}
	var req sessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	session, err := a.bookings.Update(r.Context(), id, &booking.Session{
		Name:        req.Name,
		Date:        req.Date,
		Description: req.Description,
		TeacherID:   req.TeacherID,
	})
	if err != nil {
		handleBookingError(w, r, err)
		return
	}
	a.auditSession(r, "session.update", session.ID)
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (a *API) deleteSession(w http.ResponseWriter, r *http.Request, id int64) {
	if !a.ensureAdmin(w, r) {
		return
	}
	if err := a.bookings.Delete(r.Context(), id); err != nil {
		handleBookingError(w, r, err)
		return
	}
	a.auditSession(r, "session.delete", id)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Session deleted!"})
}

func (a *API) participate(w http.ResponseWriter, r *http.Request, sessionID, userID int64) {
	var err error
	var event string
	switch r.Method {
	case http.MethodPost:
		err = a.bookings.Participate(r.Context(), sessionID, userID)
		event = "session.participate"
	case http.MethodDelete:
		err = a.bookings.NoLongerParticipate(r.Context(), sessionID, userID)
		event = "session.leave"
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodDelete)
		return
	}
	if err != nil {
		handleBookingError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), event, map[string]any{
		"session_id": sessionID,
		"member_id":  userID,
	})
	writeJSON(w, http.StatusOK, messageResponse{Message: "OK"})
}

func (a *API) auditSession(r *http.Request, event string, sessionID int64) {
	_ = audit.LogEvent(r.Context(), event, map[string]any{
		"session_id": sessionID,
	})
}

func handleBookingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, booking.ErrSessionNotFound),
		errors.Is(err, booking.ErrUserNotFound),
		errors.Is(err, booking.ErrTeacherNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrAlreadyMember),
		errors.Is(err, booking.ErrNotAMember),
		errors.Is(err, booking.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrVersionConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
