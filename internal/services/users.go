// Package services implements the admin operations over the live view
// and the realtime store: profile edits, moderation, dashboard
// analytics and report export.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/cancheito/backoffice/internal/ai"
	"github.com/cancheito/backoffice/internal/logging"
	"github.com/cancheito/backoffice/internal/models"
	"github.com/cancheito/backoffice/internal/store"
)

// ErrMissingID is returned when an operation targets an empty record
// id.
var ErrMissingID = errors.New("record id is missing")

// ErrUserNotFound is returned when the targeted user is not in the
// current snapshot.
var ErrUserNotFound = errors.New("user not found")

// UserDirectory is the subset of the live view the users service
// reads. *view.View satisfies it.
type UserDirectory interface {
	UserByID(id string) (models.User, bool)
}

// Reasoner produces the moderation consequence analysis. *ai.Service
// satisfies it.
type Reasoner interface {
	Reasoning(ctx context.Context, in ai.ReasoningInput) (ai.Reasoning, error)
}

// ProfileUpdate carries the editable profile fields. All fields are
// written on update, mirroring the admin edit form.
type ProfileUpdate struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Experience string `json:"experience"`
	Education  string `json:"education"`
	UserType   string `json:"userType"`
	Location   string `json:"location"`
}

// UsersService performs admin actions on user accounts.
type UsersService struct {
	store    store.Store
	users    UserDirectory
	reasoner Reasoner
	log      logging.Logger
}

func NewUsersService(s store.Store, users UserDirectory, reasoner Reasoner, log logging.Logger) *UsersService {
	return &UsersService{store: s, users: users, reasoner: reasoner, log: log}
}

func userPath(id string) string {
	return models.PathUsers + "/" + id
}

// UpdateProfile writes the editable profile fields of a user.
func (s *UsersService) UpdateProfile(ctx context.Context, userID string, p ProfileUpdate) error {
	if userID == "" {
		return ErrMissingID
	}

	fields := map[string]any{
		"nombre_completo": p.FullName,
		"email":           p.Email,
		"experiencia":     p.Experience,
		"formacion":       p.Education,
		"tipoUsuario":     p.UserType,
		"ubicacion":       p.Location,
	}
	if err := s.store.Patch(ctx, userPath(userID), fields); err != nil {
		return fmt.Errorf("updating user %s: %w", userID, err)
	}
	s.log.Info(ctx, "user profile updated", "user", userID)
	return nil
}

// SetVerification toggles the verified badge of a user.
func (s *UsersService) SetVerification(ctx context.Context, userID string, verified bool) error {
	if userID == "" {
		return ErrMissingID
	}
	err := s.store.Patch(ctx, userPath(userID), map[string]any{"usuario_verificado": verified})
	if err != nil {
		return fmt.Errorf("updating verification for user %s: %w", userID, err)
	}
	s.log.Info(ctx, "user verification updated", "user", userID, "verified", verified)
	return nil
}

// SetAccountState activates or suspends an account.
func (s *UsersService) SetAccountState(ctx context.Context, userID string, state models.AccountState) error {
	if userID == "" {
		return ErrMissingID
	}
	err := s.store.Patch(ctx, userPath(userID), map[string]any{"estadoCuenta": string(state)})
	if err != nil {
		return fmt.Errorf("updating account state for user %s: %w", userID, err)
	}
	s.log.Info(ctx, "account state updated", "user", userID, "state", state)
	return nil
}

// AccountActionReasoning asks the model to analyze the consequences of
// activating or suspending the user's account. The analysis is
// advisory: a failure here never blocks the action itself.
func (s *UsersService) AccountActionReasoning(ctx context.Context, userID string, action ai.AccountAction) (string, error) {
	if userID == "" {
		return "", ErrMissingID
	}
	u, ok := s.users.UserByID(userID)
	if !ok {
		return "", ErrUserNotFound
	}

	res, err := s.reasoner.Reasoning(ctx, ai.ReasoningInput{
		Action:        action,
		UserName:      u.FullName,
		UserEmail:     u.Email,
		UserType:      u.UserType,
		AccountActive: u.AccountState.Active(),
	})
	if err != nil {
		s.log.Error(ctx, "account action reasoning failed", "user", userID, "error", err)
		return "", fmt.Errorf("reasoning about %s for user %s: %w", action, userID, err)
	}
	return res.ReasoningSummary, nil
}
