package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cancheito/backoffice/internal/logging"
	"github.com/cancheito/backoffice/internal/models"
	"github.com/cancheito/backoffice/internal/store"
	"github.com/cancheito/backoffice/internal/view"
)

type patchCall struct {
	path   string
	fields map[string]any
}

// fakeStore records patches and can be told to fail them.
type fakeStore struct {
	mu      sync.Mutex
	patches []patchCall
	err     error
}

func (f *fakeStore) Subscribe(ctx context.Context, path string, onSnapshot store.Handler, onError store.ErrorHandler) (store.CancelFunc, error) {
	return func() {}, nil
}

func (f *fakeStore) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return nil, store.ErrNotFound
}

func (f *fakeStore) Patch(ctx context.Context, path string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.patches = append(f.patches, patchCall{path: path, fields: fields})
	return nil
}

func (f *fakeStore) calls() []patchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]patchCall, len(f.patches))
	copy(out, f.patches)
	return out
}

func (f *fakeStore) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type captureNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureNotifier) Notify(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureNotifier) all() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

var testNow = time.Date(2025, 7, 20, 10, 0, 0, 0, time.Local)

func newTestDispatcher(t *testing.T, s store.Store) (*Dispatcher, *captureNotifier) {
	t.Helper()
	d := New(s, logging.NewDefault(), WithClock(func() time.Time { return testNow }))
	c := &captureNotifier{}
	d.AddNotifier(c)
	return d, c
}

func activeOffer(id string, deadline time.Time) models.JobOffer {
	return models.JobOffer{
		ID:           id,
		Title:        "Albañil",
		State:        models.OfferStatusActive,
		DeadlineUnix: deadline.UnixMilli(),
	}
}

func TestExpiry_ClosesOfferPastDeadline(t *testing.T) {
	s := &fakeStore{}
	d, c := newTestDispatcher(t, s)

	d.Handle(view.Refresh{Offers: []models.JobOffer{activeOffer("o1", testNow.AddDate(0, 0, -1))}})
	d.patches.Wait()

	calls := s.calls()
	require.Len(t, calls, 1)
	require.Equal(t, "ofertas/o1", calls[0].path)
	require.Equal(t, map[string]any{"estado": "CERRADA"}, calls[0].fields)

	events := c.all()
	require.Len(t, events, 1)
	require.Equal(t, EventOfferExpired, events[0].Type)
	require.Contains(t, events[0].Message, `"Albañil"`)
}

func TestExpiry_DeadlineTodayStaysOpen(t *testing.T) {
	s := &fakeStore{}
	d, _ := newTestDispatcher(t, s)

	// Deadline is earlier today; the offer closes tomorrow, not now.
	d.Handle(view.Refresh{Offers: []models.JobOffer{activeOffer("o1", testNow.Add(-2*time.Hour))}})
	d.patches.Wait()

	require.Empty(t, s.calls())
}

func TestExpiry_IgnoresClosedAndUndatedOffers(t *testing.T) {
	s := &fakeStore{}
	d, _ := newTestDispatcher(t, s)

	closed := activeOffer("o1", testNow.AddDate(0, 0, -5))
	closed.State = models.OfferStatusClosed
	undated := models.JobOffer{ID: "o2", State: models.OfferStatusActive}

	d.Handle(view.Refresh{Offers: []models.JobOffer{closed, undated}})
	d.patches.Wait()

	require.Empty(t, s.calls())
}

func TestExpiry_PatchHappensOncePerOffer(t *testing.T) {
	s := &fakeStore{}
	d, _ := newTestDispatcher(t, s)

	r := view.Refresh{Offers: []models.JobOffer{activeOffer("o1", testNow.AddDate(0, 0, -1))}}
	d.Handle(r)
	d.patches.Wait()
	d.Handle(r) // stale snapshot still says ACTIVA
	d.patches.Wait()

	require.Len(t, s.calls(), 1)
}

func TestExpiry_ReopenedExpiredOfferClosesAgain(t *testing.T) {
	s := &fakeStore{}
	d, _ := newTestDispatcher(t, s)

	expired := activeOffer("o1", testNow.AddDate(0, 0, -1))
	d.Handle(view.Refresh{Offers: []models.JobOffer{expired}})
	d.patches.Wait()
	require.Len(t, s.calls(), 1)

	// Snapshot confirms the close, releasing the in-flight guard.
	closed := expired
	closed.State = models.OfferStatusClosed
	d.Handle(view.Refresh{Offers: []models.JobOffer{closed}})
	d.patches.Wait()
	require.Len(t, s.calls(), 1)

	// Manual reopen of a still-expired offer gets closed again.
	d.Handle(view.Refresh{Offers: []models.JobOffer{expired}})
	d.patches.Wait()

	calls := s.calls()
	require.Len(t, calls, 2)
	require.Equal(t, "ofertas/o1", calls[1].path)
	require.Equal(t, map[string]any{"estado": "CERRADA"}, calls[1].fields)
}

func TestExpiry_FailedPatchRetriesOnNextRefresh(t *testing.T) {
	s := &fakeStore{}
	s.setErr(errors.New("store down"))
	d, c := newTestDispatcher(t, s)

	r := view.Refresh{Offers: []models.JobOffer{activeOffer("o1", testNow.AddDate(0, 0, -1))}}
	d.Handle(r)
	d.patches.Wait()
	require.Empty(t, s.calls())
	require.Empty(t, c.all(), "no event for a failed close")

	s.setErr(nil)
	d.Handle(r)
	d.patches.Wait()
	require.Len(t, s.calls(), 1)
}

func TestSweep_ClosesOffersWithoutNewRefresh(t *testing.T) {
	s := &fakeStore{}
	now := testNow
	d := New(s, logging.NewDefault(), WithClock(func() time.Time { return now }))

	// Deadline is today at refresh time, so nothing closes yet.
	d.Handle(view.Refresh{Offers: []models.JobOffer{activeOffer("o1", testNow)}})
	d.patches.Wait()
	require.Empty(t, s.calls())

	// Overnight the clock moves past the deadline with no data change.
	now = testNow.AddDate(0, 0, 1)
	d.Sweep()
	d.patches.Wait()
	require.Len(t, s.calls(), 1)
}

func TestGrowth_FirstSnapshotSeedsWithoutNotifying(t *testing.T) {
	d, c := newTestDispatcher(t, &fakeStore{})

	d.Handle(view.Refresh{
		Users:        []models.User{{ID: "u1"}, {ID: "u2"}},
		UsersLoaded:  true,
		Offers:       []models.JobOffer{{ID: "o1"}},
		OffersLoaded: true,
	})

	require.Empty(t, c.all())
}

func TestGrowth_NewUserEmitsEvent(t *testing.T) {
	d, c := newTestDispatcher(t, &fakeStore{})

	d.Handle(view.Refresh{Users: []models.User{{ID: "u1"}}, UsersLoaded: true})
	d.Handle(view.Refresh{Users: []models.User{{ID: "u2"}, {ID: "u1"}}, UsersLoaded: true})

	events := c.all()
	require.Len(t, events, 1)
	require.Equal(t, EventNewUser, events[0].Type)
	require.Equal(t, "Un nuevo usuario se ha unido a la plataforma.", events[0].Message)
	require.NotEmpty(t, events[0].ID)
	require.Equal(t, testNow, events[0].At)
}

func TestGrowth_NewOfferNamesPublisher(t *testing.T) {
	d, c := newTestDispatcher(t, &fakeStore{})

	d.Handle(view.Refresh{OffersLoaded: true})
	d.Handle(view.Refresh{
		Offers: []models.JobOffer{{
			ID: "o1", Title: "Albañil",
			Employer: models.EmployerProfile{Name: "Carlos Mamani"},
		}},
		OffersLoaded: true,
	})

	events := c.all()
	require.Len(t, events, 1)
	require.Equal(t, EventNewOffer, events[0].Type)
	require.Equal(t, `Carlos Mamani ha publicado la oferta: "Albañil"`, events[0].Message)
}

func TestGrowth_UnknownPublisherFallsBack(t *testing.T) {
	d, c := newTestDispatcher(t, &fakeStore{})

	d.Handle(view.Refresh{OffersLoaded: true})
	d.Handle(view.Refresh{
		Offers: []models.JobOffer{{
			ID: "o1", Title: "Albañil",
			Employer: models.EmployerProfile{Name: models.PlaceholderUnknownUser},
		}},
		OffersLoaded: true,
	})

	events := c.all()
	require.Len(t, events, 1)
	require.Equal(t, `un publicador desconocido ha publicado la oferta: "Albañil"`, events[0].Message)
}

func TestGrowth_NewPostulationWithFallbacks(t *testing.T) {
	d, c := newTestDispatcher(t, &fakeStore{})

	d.Handle(view.Refresh{PostulationsLoaded: true})
	d.Handle(view.Refresh{
		Postulations: []models.Postulation{{
			ID:        "p1",
			Applicant: models.ApplicantProfile{Name: models.PlaceholderUnknownUser},
			Offer:     models.JobOffer{Title: models.PlaceholderUnknownOffer},
		}},
		PostulationsLoaded: true,
	})

	events := c.all()
	require.Len(t, events, 1)
	require.Equal(t, EventNewPostulation, events[0].Type)
	require.Equal(t, `Alguien se ha postulado a la oferta: "una oferta".`, events[0].Message)
}

func TestGrowth_ShrinkingCollectionStaysSilent(t *testing.T) {
	d, c := newTestDispatcher(t, &fakeStore{})

	d.Handle(view.Refresh{Users: []models.User{{ID: "u1"}, {ID: "u2"}}, UsersLoaded: true})
	d.Handle(view.Refresh{Users: []models.User{{ID: "u1"}}, UsersLoaded: true})
	require.Empty(t, c.all())

	// Growing back to the original size still counts as growth
	// against the updated baseline.
	d.Handle(view.Refresh{Users: []models.User{{ID: "u3"}, {ID: "u1"}}, UsersLoaded: true})
	require.Len(t, c.all(), 1)
}
