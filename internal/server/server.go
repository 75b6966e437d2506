// Package server exposes the admin HTTP API: collection listings,
// dashboard metrics, AI analytics, moderation actions, report export
// and the notification feed.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/cancheito/backoffice/internal/ai"
	"github.com/cancheito/backoffice/internal/logging"
	"github.com/cancheito/backoffice/internal/models"
	"github.com/cancheito/backoffice/internal/services"
	"github.com/cancheito/backoffice/internal/view"
)

const shutdownTimeout = 10 * time.Second

// Directory is the subset of the live view the read endpoints use.
// *view.View satisfies it.
type Directory interface {
	Users(filter string) []models.User
	Offers(filter string) []models.JobOffer
	Postulations(filter string) []models.Postulation
	Errors() map[string]error
}

// UserAdmin is the users service surface. *services.UsersService
// satisfies it.
type UserAdmin interface {
	UpdateProfile(ctx context.Context, userID string, p services.ProfileUpdate) error
	SetVerification(ctx context.Context, userID string, verified bool) error
	SetAccountState(ctx context.Context, userID string, state models.AccountState) error
	AccountActionReasoning(ctx context.Context, userID string, action ai.AccountAction) (string, error)
}

// OfferAdmin is the offers service surface. *services.OffersService
// satisfies it.
type OfferAdmin interface {
	SetStatus(ctx context.Context, offerID string, status models.OfferStatus) error
}

// Analytics is the analytics service surface.
// *services.AnalyticsService satisfies it.
type Analytics interface {
	Metrics() view.Metrics
	DashboardAnalytics(ctx context.Context, force bool) (services.DashboardAnalytics, error)
	Export(format string, from, to time.Time) (name string, content []byte, mime string, err error)
}

// Server is the admin HTTP API.
type Server struct {
	address   string
	directory Directory
	users     UserAdmin
	offers    OfferAdmin
	analytics Analytics
	feed      *Feed
	log       logging.Logger
	now       func() time.Time
}

func NewServer(address string, directory Directory, users UserAdmin, offers OfferAdmin, analytics Analytics, feed *Feed, log logging.Logger) *Server {
	return &Server{
		address:   address,
		directory: directory,
		users:     users,
		offers:    offers,
		analytics: analytics,
		feed:      feed,
		log:       log.With("module", "http_server"),
		now:       time.Now,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	api.HandleFunc("/offers", s.handleListOffers).Methods(http.MethodGet)
	api.HandleFunc("/postulations", s.handleListPostulations).Methods(http.MethodGet)

	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/analytics", s.handleDashboardAnalytics).Methods(http.MethodGet)

	api.HandleFunc("/users/{id}/profile", s.handleUpdateProfile).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/verification", s.handleSetVerification).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/state", s.handleSetAccountState).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/state/reasoning", s.handleAccountReasoning).Methods(http.MethodPost)

	api.HandleFunc("/offers/{id}/status", s.handleSetOfferStatus).Methods(http.MethodPost)

	api.HandleFunc("/export", s.handleExport).Methods(http.MethodGet)
	api.HandleFunc("/notifications", s.handleNotifications).Methods(http.MethodGet)

	return r
}

// Run serves the API until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.log.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error(ctx, "http server shutdown", "error", err)
		}
	}()

	s.log.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
