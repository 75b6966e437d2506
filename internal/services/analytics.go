package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cancheito/backoffice/internal/ai"
	"github.com/cancheito/backoffice/internal/aicache"
	"github.com/cancheito/backoffice/internal/export"
	"github.com/cancheito/backoffice/internal/logging"
	"github.com/cancheito/backoffice/internal/models"
	"github.com/cancheito/backoffice/internal/view"
)

// DashboardData is the subset of the live view the analytics service
// reads. *view.View satisfies it.
type DashboardData interface {
	Metrics() view.Metrics
	History() (userHistory, offerHistory []view.SeriesPoint)
	Users(filter string) []models.User
	Offers(filter string) []models.JobOffer
	Postulations(filter string) []models.Postulation
}

// Narrator generates the two dashboard narratives. *ai.Service
// satisfies it.
type Narrator interface {
	Summarize(ctx context.Context, in ai.SummaryInput) (ai.Summary, error)
	Predict(ctx context.Context, userHistory, offerHistory []ai.DataPoint) (ai.Prediction, error)
}

// DashboardAnalytics is the combined narrative payload. Timestamp
// records when the narratives were generated, not when they were
// served.
type DashboardAnalytics struct {
	Summary     ai.Summary    `json:"summary"`
	Predictions ai.Prediction `json:"predictions"`
	Timestamp   time.Time     `json:"timestamp"`

	FromCache bool `json:"fromCache"`
}

// AnalyticsService serves dashboard metrics, cached narratives and
// report exports.
type AnalyticsService struct {
	data  DashboardData
	ai    Narrator
	cache *aicache.Cache
	log   logging.Logger
	now   func() time.Time
}

// AnalyticsOption configures an AnalyticsService.
type AnalyticsOption func(*AnalyticsService)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) AnalyticsOption {
	return func(s *AnalyticsService) { s.now = now }
}

func NewAnalyticsService(data DashboardData, narrator Narrator, cache *aicache.Cache, log logging.Logger, opts ...AnalyticsOption) *AnalyticsService {
	s := &AnalyticsService{data: data, ai: narrator, cache: cache, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Metrics returns the dashboard counters for the current snapshot.
func (s *AnalyticsService) Metrics() view.Metrics {
	return s.data.Metrics()
}

// DashboardAnalytics returns the narrative payload, reusing a cached
// one while it is fresh. With force set the cache is bypassed. Both
// narratives are generated concurrently and the result is cached only
// when both succeed.
func (s *AnalyticsService) DashboardAnalytics(ctx context.Context, force bool) (DashboardAnalytics, error) {
	if !force {
		var cached DashboardAnalytics
		hit, err := s.cache.Lookup(ctx, aicache.KeyDashboardAnalytics, &cached)
		if err != nil {
			return DashboardAnalytics{}, fmt.Errorf("looking up analytics cache: %w", err)
		}
		if hit {
			cached.FromCache = true
			return cached, nil
		}
	}

	m := s.data.Metrics()
	userHistory, offerHistory := s.data.History()

	var (
		wg         sync.WaitGroup
		summary    ai.Summary
		prediction ai.Prediction
		sumErr     error
		predErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		summary, sumErr = s.ai.Summarize(ctx, ai.SummaryInput{
			TotalUsers:          m.TotalUsers,
			NewUsersLast30Days:  m.NewUsersLast30Days,
			TotalOffers:         m.TotalOffers,
			NewOffersLast30Days: m.NewOffersLast30Days,
			ActiveOffers:        m.ActiveOffers,
			ClosedOffers:        m.ClosedOffers,
		})
	}()
	go func() {
		defer wg.Done()
		prediction, predErr = s.ai.Predict(ctx, toDataPoints(userHistory), toDataPoints(offerHistory))
	}()
	wg.Wait()

	if sumErr != nil {
		return DashboardAnalytics{}, fmt.Errorf("generating summary: %w", sumErr)
	}
	if predErr != nil {
		return DashboardAnalytics{}, fmt.Errorf("generating prediction: %w", predErr)
	}

	payload := DashboardAnalytics{
		Summary:     summary,
		Predictions: prediction,
		Timestamp:   s.now(),
	}
	if err := s.cache.Store(ctx, aicache.KeyDashboardAnalytics, payload); err != nil {
		// A write failure costs a regeneration later, nothing more.
		s.log.Error(ctx, "storing analytics cache", "error", err)
	}
	return payload, nil
}

// Export renders a date-ranged report in the requested format and
// returns the file name, content and MIME type.
func (s *AnalyticsService) Export(format string, from, to time.Time) (name string, content []byte, mime string, err error) {
	report := export.Build(s.data.Users(""), s.data.Offers(""), s.data.Postulations(""), from, to)

	switch format {
	case "csv":
		content, err = report.CSV()
		if err != nil {
			return "", nil, "", err
		}
		return report.Filename("csv"), content, "text/csv; charset=utf-8", nil
	case "xlsx":
		content, err = report.XLSX()
		if err != nil {
			return "", nil, "", err
		}
		return report.Filename("xlsx"), content,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	default:
		return "", nil, "", fmt.Errorf("unsupported export format %q", format)
	}
}

func toDataPoints(points []view.SeriesPoint) []ai.DataPoint {
	out := make([]ai.DataPoint, 0, len(points))
	for _, p := range points {
		out = append(out, ai.DataPoint{Date: p.Date, Count: p.Count})
	}
	return out
}
