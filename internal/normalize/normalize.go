// Package normalize maps raw store records into fully-populated view
// models. All functions are pure: missing optional fields and missing
// foreign-key targets resolve to fixed placeholders, never to errors,
// because the three collections converge independently and a record may
// reference siblings that have not arrived yet.
package normalize

import (
	"time"

	"github.com/cancheito/backoffice/internal/models"
)

// Date renders an epoch-millisecond timestamp in the canonical display
// format. Zero or negative values resolve to the unknown-date sentinel.
func Date(ms int64) string {
	if ms <= 0 {
		return models.PlaceholderUnknownDate
	}
	return time.UnixMilli(ms).Format(models.DateFormat)
}

// DateTime is like Date but includes the time of day. Used for
// postulation timestamps.
func DateTime(ms int64) string {
	if ms <= 0 {
		return models.PlaceholderUnknownDate
	}
	return time.UnixMilli(ms).Format(models.DateTimeFormat)
}

func orPlaceholder(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}

// User builds the view model for a raw user record. The id parameter is
// the record's key in the collection; it wins over the embedded uid
// field only when the latter is empty.
func User(id string, raw models.RawUser) models.User {
	if raw.UID != "" {
		id = raw.UID
	}

	state := raw.AccountState
	if state == "" {
		state = models.AccountStateActive
	}

	return models.User{
		ID:               id,
		FullName:         orPlaceholder(raw.FullName, models.PlaceholderNoName),
		Email:            orPlaceholder(raw.Email, models.PlaceholderMissingEmail),
		RegistrationDate: Date(raw.RegisteredAt),
		ProfileURL:       raw.ProfileURL,
		IsVerified:       raw.Verified,
		Experience:       orPlaceholder(raw.Experience, models.PlaceholderUnspecified),
		Education:        orPlaceholder(raw.Education, models.PlaceholderUnspecified),
		UserType:         orPlaceholder(raw.UserType, models.PlaceholderUnspecified),
		Location:         orPlaceholder(raw.Location, models.PlaceholderUnspecified),
		CVURL:            raw.CVURL,
		AccountState:     state,
		CommercialName:   raw.CommercialName,
		Industry:         raw.Industry,
		Description:      raw.Description,
		RegisteredUnix:   raw.RegisteredAt,
	}
}

// Employer resolves an offer's owner against the Users map. When the
// employer has not been loaded yet the identity fields degrade to
// placeholders; the join self-heals on the next Users snapshot.
func Employer(employerID string, users map[string]models.RawUser) models.EmployerProfile {
	raw, ok := users[employerID]
	if !ok {
		return models.EmployerProfile{
			ID:    employerID,
			Name:  models.PlaceholderUnknownUser,
			Email: models.PlaceholderNoEmail,
		}
	}
	id := employerID
	if raw.UID != "" {
		id = raw.UID
	}
	return models.EmployerProfile{
		ID:        id,
		Name:      orPlaceholder(raw.FullName, models.PlaceholderUnknownUser),
		Email:     orPlaceholder(raw.Email, models.PlaceholderNoEmail),
		AvatarURL: raw.ProfileURL,
	}
}

// Offer builds the view model for a raw offer, resolving its employer
// against the current Users map.
func Offer(id string, raw models.RawOffer, users map[string]models.RawUser) models.JobOffer {
	if raw.ID != "" {
		id = raw.ID
	}

	deadline := ""
	if raw.Deadline > 0 {
		deadline = time.UnixMilli(raw.Deadline).Format(models.DateFormat)
	}

	return models.JobOffer{
		ID:         id,
		Title:      raw.Title,
		Employer:   Employer(raw.EmployerID, users),
		Location:   raw.Location,
		Modality:   raw.Modality,
		Payment:    raw.Payment,
		PostedDate: Date(raw.CreatedAt),
		Deadline:   deadline,
		Status:     raw.Status.Display(),

		PostedUnix:   raw.CreatedAt,
		DeadlineUnix: raw.Deadline,
		State:        raw.Status,
	}
}

// Postulation builds the view model for a raw postulation: a two-level
// join through the Offers and Users maps. A missing offer degrades to a
// placeholder offer that still carries the dangling id.
func Postulation(id string, raw models.RawPostulation, users map[string]models.RawUser, offers map[string]models.RawOffer) models.Postulation {
	if raw.ID != "" {
		id = raw.ID
	}

	applicant := models.ApplicantProfile{
		ID:    raw.ApplicantID,
		Name:  models.PlaceholderUnknownUser,
		Email: models.PlaceholderNoEmail,
	}
	if rawUser, ok := users[raw.ApplicantID]; ok {
		applicant.Name = orPlaceholder(rawUser.FullName, models.PlaceholderUnknownUser)
		applicant.Email = orPlaceholder(rawUser.Email, models.PlaceholderNoEmail)
		applicant.AvatarURL = rawUser.ProfileURL
		if rawUser.UID != "" {
			applicant.ID = rawUser.UID
		}
	}

	status := raw.Status
	if status == "" {
		status = models.PostulationStatusSent
	}

	return models.Postulation{
		ID:              id,
		Applicant:       applicant,
		Offer:           postulationOffer(raw.OfferID, users, offers),
		PostulationDate: DateTime(raw.AppliedAt),
		Status:          string(status),
		AppliedUnix:     raw.AppliedAt,
	}
}

// postulationOffer resolves the offer side of a postulation join. Unlike
// Offer it labels a missing employer as an unknown publisher, matching
// the postulations view.
func postulationOffer(offerID string, users map[string]models.RawUser, offers map[string]models.RawOffer) models.JobOffer {
	rawOffer, ok := offers[offerID]
	if !ok {
		return models.JobOffer{
			ID:         offerID,
			Title:      models.PlaceholderUnknownOffer,
			Employer:   models.EmployerProfile{Name: models.PlaceholderUnknownPublisher},
			PostedDate: models.PlaceholderUnknownDate,
			Status:     models.OfferStatusClosed.Display(),
			State:      models.OfferStatusClosed,
		}
	}

	offer := Offer(offerID, rawOffer, users)
	if _, ok := users[rawOffer.EmployerID]; !ok {
		offer.Employer.Name = models.PlaceholderUnknownPublisher
		offer.Employer.Email = ""
	}
	return offer
}
