package models

import "fmt"

// OfferStatus mirrors the `estado` enum stored on offers.
type OfferStatus string

const (
	OfferStatusActive OfferStatus = "ACTIVA"
	OfferStatusClosed OfferStatus = "CERRADA"
)

// ParseOfferStatus converts a raw string into an OfferStatus, returning an
// error for unknown values.
func ParseOfferStatus(s string) (OfferStatus, error) {
	st := OfferStatus(s)
	switch st {
	case OfferStatusActive, OfferStatusClosed:
		return st, nil
	}
	return "", fmt.Errorf("unknown offer status %q", s)
}

// Display returns the view-model label for the status. Anything that is
// not ACTIVA renders as closed, matching the admin UI.
func (s OfferStatus) Display() string {
	if s == OfferStatusActive {
		return "Activa"
	}
	return "Cerrada"
}

// AccountState mirrors the `estadoCuenta` enum stored on users.
// An absent value means the account is active.
type AccountState string

const (
	AccountStateActive    AccountState = "Activa"
	AccountStateSuspended AccountState = "Desactivada"
)

// ParseAccountState converts a raw string into an AccountState.
func ParseAccountState(s string) (AccountState, error) {
	st := AccountState(s)
	switch st {
	case AccountStateActive, AccountStateSuspended:
		return st, nil
	}
	return "", fmt.Errorf("unknown account state %q", s)
}

// Active reports whether the state counts as an active account.
func (s AccountState) Active() bool { return s != AccountStateSuspended }

// PostulationStatus mirrors the `estado_postulacion` enum. The consumer
// app writes "pendiente" in lowercase; that spelling is part of the wire
// contract.
type PostulationStatus string

const (
	PostulationStatusSent     PostulationStatus = "Enviada"
	PostulationStatusReviewed PostulationStatus = "Revisada"
	PostulationStatusRejected PostulationStatus = "Rechazada"
	PostulationStatusAccepted PostulationStatus = "Aceptada"
	PostulationStatusPending  PostulationStatus = "pendiente"
)
