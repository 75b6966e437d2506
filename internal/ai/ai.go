// Package ai generates Spanish-language narrative analytics from the
// dashboard data: moderation reasoning, an executive summary, and a
// 7-day prediction. Prompts ask for JSON and responses are parsed and
// shape-checked before they reach a caller.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cancheito/backoffice/internal/models"
)

// Completer produces a model response for a prompt. *VertexClient is
// the production implementation.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// AccountAction is the moderation action being reasoned about.
type AccountAction string

const (
	ActionActivate AccountAction = "activate"
	ActionSuspend  AccountAction = "suspend"
)

// ReasoningInput describes the user and the pending moderation action.
type ReasoningInput struct {
	Action        AccountAction
	UserName      string
	UserEmail     string
	UserType      string
	AccountActive bool
}

// Reasoning is the model's consequence analysis for a moderation
// action.
type Reasoning struct {
	ReasoningSummary string `json:"reasoningSummary"`
}

// SummaryInput carries the dashboard counters the summary flow
// analyzes.
type SummaryInput struct {
	TotalUsers          int
	NewUsersLast30Days  int
	TotalOffers         int
	NewOffersLast30Days int
	ActiveOffers        int
	ClosedOffers        int
}

// Summary is the executive report for the dashboard.
type Summary struct {
	ExecutiveSummary string   `json:"executiveSummary"`
	KeyObservations  []string `json:"keyObservations"`
	Recommendations  []string `json:"recommendations"`
}

// DataPoint is one day of historical activity, date in 2006-01-02
// format. Duplicate dates are allowed and summed before prompting.
type DataPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// PredictionPoint is one predicted day, date in "Jan 2" format.
type PredictionPoint struct {
	Date       string `json:"date"`
	Prediction int    `json:"prediction"`
}

// Prediction is the 7-day forecast for both collections.
type Prediction struct {
	UserPrediction  []PredictionPoint `json:"userPrediction"`
	OfferPrediction []PredictionPoint `json:"offerPrediction"`
}

// Service runs the three narrative flows against a Completer.
type Service struct {
	completer Completer
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock used to compute prediction dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(c Completer, opts ...Option) *Service {
	s := &Service{completer: c, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reasoning analyzes the consequences of activating or suspending an
// account.
func (s *Service) Reasoning(ctx context.Context, in ReasoningInput) (Reasoning, error) {
	var out Reasoning
	if err := s.complete(ctx, reasoningPrompt(in), &out); err != nil {
		return Reasoning{}, err
	}
	if out.ReasoningSummary == "" {
		return Reasoning{}, fmt.Errorf("model returned no reasoning summary")
	}
	return out, nil
}

// Summarize produces the executive report for the current dashboard
// counters.
func (s *Service) Summarize(ctx context.Context, in SummaryInput) (Summary, error) {
	var out Summary
	if err := s.complete(ctx, summaryPrompt(in), &out); err != nil {
		return Summary{}, err
	}
	if out.ExecutiveSummary == "" || len(out.KeyObservations) == 0 || len(out.Recommendations) == 0 {
		return Summary{}, fmt.Errorf("model returned an incomplete summary")
	}
	return out, nil
}

// Predict forecasts signups and offer creation for the next 7 days.
// History points sharing a date are pre-aggregated; the model output is
// filtered to the requested dates and truncated to 7 points per series.
func (s *Service) Predict(ctx context.Context, userHistory, offerHistory []DataPoint) (Prediction, error) {
	users, err := json.Marshal(aggregateByDate(userHistory))
	if err != nil {
		return Prediction{}, fmt.Errorf("encoding user history: %w", err)
	}
	offers, err := json.Marshal(aggregateByDate(offerHistory))
	if err != nil {
		return Prediction{}, fmt.Errorf("encoding offer history: %w", err)
	}

	dates := s.futureDates()

	var out Prediction
	if err := s.complete(ctx, predictionPrompt(string(users), string(offers), dates), &out); err != nil {
		return Prediction{}, err
	}

	out.UserPrediction = clampToDates(out.UserPrediction, dates)
	out.OfferPrediction = clampToDates(out.OfferPrediction, dates)
	return out, nil
}

func (s *Service) complete(ctx context.Context, prompt string, out any) error {
	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return fmt.Errorf("completing prompt: %w", err)
	}
	body, err := extractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("parsing model response: %w", err)
	}
	return nil
}

// futureDates returns the 7 day labels starting tomorrow.
func (s *Service) futureDates() []string {
	dates := make([]string, 0, 7)
	for i := 1; i <= 7; i++ {
		dates = append(dates, s.now().AddDate(0, 0, i).Format(models.DayLabelFormat))
	}
	return dates
}

// aggregateByDate sums counts sharing a date, returning one point per
// day in date order.
func aggregateByDate(points []DataPoint) []DataPoint {
	byDate := make(map[string]int, len(points))
	for _, p := range points {
		byDate[p.Date] += p.Count
	}
	out := make([]DataPoint, 0, len(byDate))
	for date, count := range byDate {
		out = append(out, DataPoint{Date: date, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// clampToDates drops points for dates that were not requested and caps
// the series at 7 points, keeping the model's order.
func clampToDates(points []PredictionPoint, dates []string) []PredictionPoint {
	wanted := make(map[string]bool, len(dates))
	for _, d := range dates {
		wanted[d] = true
	}
	out := make([]PredictionPoint, 0, 7)
	for _, p := range points {
		if !wanted[p.Date] {
			continue
		}
		out = append(out, p)
		if len(out) == 7 {
			break
		}
	}
	return out
}

// extractJSON locates the JSON object in a model response, tolerating
// markdown code fences and prose around it.
func extractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("model response contains no JSON object")
	}
	return raw[start : end+1], nil
}
