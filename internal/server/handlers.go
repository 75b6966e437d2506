package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/cancheito/backoffice/internal/ai"
	"github.com/cancheito/backoffice/internal/export"
	"github.com/cancheito/backoffice/internal/models"
	"github.com/cancheito/backoffice/internal/services"
)

// msgAIUnavailable mirrors the message the admin UI always showed when
// narrative generation failed.
const msgAIUnavailable = "No se pudo obtener el análisis de la IA. Por favor, inténtalo de nuevo."

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.directory.Users(r.URL.Query().Get("filter")))
}

func (s *Server) handleListOffers(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.directory.Offers(r.URL.Query().Get("filter")))
}

func (s *Server) handleListPostulations(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.directory.Postulations(r.URL.Query().Get("filter")))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	payload := struct {
		Metrics any               `json:"metrics"`
		Errors  map[string]string `json:"collectionErrors,omitempty"`
	}{Metrics: s.analytics.Metrics()}

	if errs := s.directory.Errors(); len(errs) > 0 {
		payload.Errors = make(map[string]string, len(errs))
		for path, err := range errs {
			payload.Errors[path] = err.Error()
		}
	}

	s.respond(w, http.StatusOK, payload)
}

func (s *Server) handleDashboardAnalytics(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("refresh") == "true"

	analytics, err := s.analytics.DashboardAnalytics(r.Context(), force)
	if err != nil {
		s.log.Error(r.Context(), "dashboard analytics", "error", err)
		s.respondError(w, http.StatusBadGateway, msgAIUnavailable)
		return
	}
	s.respond(w, http.StatusOK, analytics)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p services.ProfileUpdate
	if err := decodeBody(r, &p); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.users.UpdateProfile(r.Context(), mux.Vars(r)["id"], p); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) handleSetVerification(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Verified bool `json:"verified"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.users.SetVerification(r.Context(), mux.Vars(r)["id"], body.Verified); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) handleSetAccountState(w http.ResponseWriter, r *http.Request) {
	var body struct {
		State string `json:"state"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	state, err := models.ParseAccountState(body.State)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.users.SetAccountState(r.Context(), mux.Vars(r)["id"], state); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) handleAccountReasoning(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Action string `json:"action"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var action ai.AccountAction
	switch body.Action {
	case string(ai.ActionActivate), string(ai.ActionSuspend):
		action = ai.AccountAction(body.Action)
	default:
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", body.Action))
		return
	}

	reasoning, err := s.users.AccountActionReasoning(r.Context(), mux.Vars(r)["id"], action)
	if err != nil {
		if errors.Is(err, services.ErrMissingID) || errors.Is(err, services.ErrUserNotFound) {
			s.respondServiceError(w, r, err)
			return
		}
		s.log.Error(r.Context(), "account reasoning", "error", err)
		s.respondError(w, http.StatusBadGateway, msgAIUnavailable)
		return
	}

	s.respond(w, http.StatusOK, map[string]string{"reasoning": reasoning})
}

func (s *Server) handleSetOfferStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := models.ParseOfferStatus(body.Status)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.offers.SetStatus(r.Context(), mux.Vars(r)["id"], status); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

// handleExport streams a CSV or XLSX report. Without explicit bounds
// the range covers the last 30 days.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = "csv"
	}

	to := s.now()
	from := to.AddDate(0, 0, -29)
	var err error
	if v := q.Get("from"); v != "" {
		if from, err = time.ParseInLocation(models.DateFormat, v, time.Local); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid from date")
			return
		}
	}
	if v := q.Get("to"); v != "" {
		if to, err = time.ParseInLocation(models.DateFormat, v, time.Local); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid to date")
			return
		}
	}

	name, content, mime, err := s.analytics.Export(format, from, to)
	if err != nil {
		if errors.Is(err, export.ErrNoData) {
			s.respondError(w, http.StatusNotFound, "No hay datos para exportar en el rango de fechas seleccionado.")
			return
		}
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		s.log.Error(r.Context(), "writing export", "error", err)
	}
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	s.respond(w, http.StatusOK, s.feed.Recent(limit))
}

// respondServiceError maps service errors onto HTTP statuses.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrMissingID):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	default:
		s.log.Error(r.Context(), "service error", "path", r.URL.Path, "error", err)
		s.respondError(w, http.StatusInternalServerError, "internal error")
	}
}
