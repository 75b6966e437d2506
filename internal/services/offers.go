package services

import (
	"context"
	"fmt"

	"github.com/cancheito/backoffice/internal/logging"
	"github.com/cancheito/backoffice/internal/models"
	"github.com/cancheito/backoffice/internal/store"
)

// OffersService performs admin actions on job offers.
type OffersService struct {
	store store.Store
	log   logging.Logger
}

func NewOffersService(s store.Store, log logging.Logger) *OffersService {
	return &OffersService{store: s, log: log}
}

// SetStatus opens or closes an offer.
func (s *OffersService) SetStatus(ctx context.Context, offerID string, status models.OfferStatus) error {
	if offerID == "" {
		return ErrMissingID
	}
	path := models.PathOffers + "/" + offerID
	if err := s.store.Patch(ctx, path, map[string]any{"estado": string(status)}); err != nil {
		return fmt.Errorf("updating status for offer %s: %w", offerID, err)
	}
	s.log.Info(ctx, "offer status updated", "offer", offerID, "status", status)
	return nil
}
