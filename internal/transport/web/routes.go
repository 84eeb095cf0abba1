package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avstrong/campusnest/internal/rental"
)

type statusInput struct {
	Status rental.BookingStatus `json:"status"`
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "invalid request body")

		return false
	}

	return true
}

func (s *Server) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := rental.PrincipalFromContext(ctx)

	var input rental.BookInput

	if !s.decode(w, r, &input) {
		s.metrics.booking(http.StatusBadRequest)

		return
	}

	input.PropertyID = chi.URLParam(r, "propertyId")
	input.StudentID = principal.UserID

	if key := r.Header.Get("Idempotency-Key"); key != "" {
		ctx = rental.NewContextWithIdempotencyKey(ctx, key)
	}

	out, err := s.rManager.CreateBooking(ctx, &input)
	if err != nil {
		s.metrics.booking(s.writeError(w, err))

		return
	}

	s.metrics.booking(http.StatusCreated)
	s.writeJSON(w, http.StatusCreated, out)
}

func (s *Server) myBookingsHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := rental.PrincipalFromContext(r.Context())

	out, err := s.rManager.ListBookingsByStudent(r.Context(), principal.UserID)
	if err != nil {
		s.writeError(w, err)

		return
	}

	if out == nil {
		out = []*rental.Booking{}
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) updateBookingStatusHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := rental.PrincipalFromContext(r.Context())

	var input statusInput

	if !s.decode(w, r, &input) {
		return
	}

	out, err := s.rManager.UpdateBookingStatus(r.Context(), chi.URLParam(r, "bookingId"), principal.UserID, input.Status)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) listPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	out, err := s.rManager.ListProperties(r.Context())
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) getPropertyHandler(w http.ResponseWriter, r *http.Request) {
	out, err := s.rManager.GetProperty(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) getMessHandler(w http.ResponseWriter, r *http.Request) {
	out, err := s.rManager.GetMess(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) subscribeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := rental.PrincipalFromContext(ctx)
	messID := chi.URLParam(r, "id")

	label := unknownMessLabel
	if _, err := s.rManager.GetMess(ctx, messID); err == nil {
		label = messID
	}

	var input rental.SubscribeInput

	if !s.decode(w, r, &input) {
		s.metrics.subscribe(label, http.StatusBadRequest)

		return
	}

	input.MessID = messID
	input.SubscriberID = principal.UserID

	out, err := s.rManager.Subscribe(ctx, &input)
	if err != nil {
		s.metrics.subscribe(label, s.writeError(w, err))

		return
	}

	s.metrics.subscribe(label, http.StatusCreated)

	if mess, err := s.rManager.GetMess(ctx, messID); err == nil {
		s.metrics.seats(messID, mess.CurrentSubscribers)
	}

	s.writeJSON(w, http.StatusCreated, out)
}

func (s *Server) livenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addRoutes(r chi.Router) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware())
	r.Use(s.recoverMiddleware())

	r.Get(s.conf.LivenessEndpoint, s.livenessHandler)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})) //nolint:exhaustruct

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware())

		r.Get("/properties", s.listPropertiesHandler)
		r.Get("/properties/{id}", s.getPropertyHandler)

		r.Route("/bookings", func(r chi.Router) {
			r.Method(http.MethodPost, "/book/{propertyId}",
				s.applyMiddlewares(http.HandlerFunc(s.createBookingHandler), s.requireRole(rental.RoleStudent)))
			r.Method(http.MethodGet, "/mine",
				s.applyMiddlewares(http.HandlerFunc(s.myBookingsHandler), s.requireRole(rental.RoleStudent)))
			r.Method(http.MethodPatch, "/owner/{bookingId}",
				s.applyMiddlewares(http.HandlerFunc(s.updateBookingStatusHandler), s.requireRole(rental.RoleOwner)))
		})

		r.Get("/mess/{id}", s.getMessHandler)
		r.Post("/mess/{id}/subscribe", s.subscribeHandler)
	})
}
