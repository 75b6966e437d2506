package view

import (
	"time"

	"github.com/cancheito/backoffice/internal/models"
)

// SeriesPoint is one day of a counting time series.
type SeriesPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Metrics are the dashboard counters and the last-7-day activity
// series derived from the current snapshots.
type Metrics struct {
	TotalUsers         int `json:"totalUsers"`
	VerifiedUsers      int `json:"verifiedUsers"`
	SuspendedUsers     int `json:"suspendedUsers"`
	NewUsersLast30Days int `json:"newUsersLast30Days"`

	TotalOffers         int `json:"totalOffers"`
	ActiveOffers        int `json:"activeOffers"`
	ClosedOffers        int `json:"closedOffers"`
	NewOffersLast30Days int `json:"newOffersLast30Days"`

	UserSignups    []SeriesPoint `json:"userSignups"`    // last 7 days, day labels
	OfferCreations []SeriesPoint `json:"offerCreations"` // last 7 days, day labels

	RecentUsers []models.User `json:"recentUsers"`
}

const recentUserCount = 5

// Metrics computes the dashboard counters from the raw maps.
func (v *View) Metrics() Metrics {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	thirtyDaysAgo := now.AddDate(0, 0, -30).UnixMilli()

	var m Metrics
	userDays := make(map[string]int)
	offerDays := make(map[string]int)

	m.TotalUsers = len(v.rawUsers)
	for _, u := range v.rawUsers {
		if u.Verified {
			m.VerifiedUsers++
		}
		if u.AccountState == models.AccountStateSuspended {
			m.SuspendedUsers++
		}
		if u.RegisteredAt > thirtyDaysAgo {
			m.NewUsersLast30Days++
		}
		if u.RegisteredAt > 0 {
			userDays[dayLabel(u.RegisteredAt)]++
		}
	}

	m.TotalOffers = len(v.rawOffers)
	for _, o := range v.rawOffers {
		switch o.Status {
		case models.OfferStatusActive:
			m.ActiveOffers++
		case models.OfferStatusClosed:
			m.ClosedOffers++
		}
		if o.CreatedAt > thirtyDaysAgo {
			m.NewOffersLast30Days++
		}
		if o.CreatedAt > 0 {
			offerDays[dayLabel(o.CreatedAt)]++
		}
	}

	for i := 6; i >= 0; i-- {
		label := now.AddDate(0, 0, -i).Format(models.DayLabelFormat)
		m.UserSignups = append(m.UserSignups, SeriesPoint{Date: label, Count: userDays[label]})
		m.OfferCreations = append(m.OfferCreations, SeriesPoint{Date: label, Count: offerDays[label]})
	}

	recent := v.current.Users
	if len(recent) > recentUserCount {
		recent = recent[:recentUserCount]
	}
	m.RecentUsers = append(m.RecentUsers, recent...)

	return m
}

// History returns the all-time daily signup and offer-creation series,
// one count-1 point per record keyed by calendar date. Duplicate dates
// are intentional; the AI adapter aggregates them before prompting.
func (v *View) History() (userHistory, offerHistory []SeriesPoint) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, u := range v.rawUsers {
		if u.RegisteredAt > 0 {
			userHistory = append(userHistory, SeriesPoint{
				Date:  time.UnixMilli(u.RegisteredAt).Format(models.DateFormat),
				Count: 1,
			})
		}
	}
	for _, o := range v.rawOffers {
		if o.CreatedAt > 0 {
			offerHistory = append(offerHistory, SeriesPoint{
				Date:  time.UnixMilli(o.CreatedAt).Format(models.DateFormat),
				Count: 1,
			})
		}
	}
	return userHistory, offerHistory
}

func dayLabel(ms int64) string {
	return time.UnixMilli(ms).Format(models.DayLabelFormat)
}
