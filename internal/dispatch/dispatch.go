// Package dispatch turns view refreshes into side effects: it closes
// offers whose deadline has passed and emits growth notifications when
// a collection gains records. It never blocks the refresh path; store
// writes run asynchronously and failures are logged and retried on the
// next refresh.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cancheito/backoffice/internal/logging"
	"github.com/cancheito/backoffice/internal/models"
	"github.com/cancheito/backoffice/internal/store"
	"github.com/cancheito/backoffice/internal/view"
)

// EventType classifies a growth or lifecycle notification.
type EventType string

const (
	EventNewUser        EventType = "new_user"
	EventNewOffer       EventType = "new_offer"
	EventNewPostulation EventType = "new_postulation"
	EventOfferExpired   EventType = "offer_expired"
)

// Event is a single notification delivered to registered notifiers.
type Event struct {
	ID      string    `json:"id"`
	Type    EventType `json:"type"`
	Message string    `json:"message"`
	At      time.Time `json:"timestamp"`
}

// Notifier receives events. Implementations must be safe for
// concurrent use; delivery order follows refresh order.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

const patchTimeout = 10 * time.Second

// Dispatcher observes refreshes and applies their side effects.
type Dispatcher struct {
	store store.Store
	log   logging.Logger
	now   func() time.Time
	newID func() string

	mu        sync.Mutex
	notifiers []Notifier
	last      view.Refresh
	closing   map[string]bool // offer ids with a close patch in flight

	// Baselines are -1 until the first snapshot of the collection
	// arrives; the first snapshot seeds the count without notifying.
	userBase, offerBase, postBase int

	patches sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

func New(s store.Store, log logging.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:     s,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
		closing:   make(map[string]bool),
		userBase:  -1,
		offerBase: -1,
		postBase:  -1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AddNotifier registers a sink for events. Register before the first
// refresh is handled.
func (d *Dispatcher) AddNotifier(n Notifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifiers = append(d.notifiers, n)
}

// Handle processes one refresh. Wire it as a view refresh hook.
func (d *Dispatcher) Handle(r view.Refresh) {
	d.mu.Lock()
	d.last = r
	events := d.growthEventsLocked(r)
	d.mu.Unlock()

	d.emit(events)
	d.expireOffers(r.Offers)
}

// Sweep re-runs the expiry pass over the last seen snapshot. It exists
// for scheduled invocation: a deadline can pass overnight with no data
// change to trigger a refresh.
func (d *Dispatcher) Sweep() {
	d.mu.Lock()
	offers := d.last.Offers
	d.mu.Unlock()
	d.expireOffers(offers)
}

// expireOffers closes every active offer whose deadline day is strictly
// before today. The patch writes only the status field; the store
// snapshot that follows confirms the transition. The closing guard
// covers an offer only while its patch is unconfirmed: it is dropped on
// failure so the next refresh retries, and once a snapshot shows the
// offer closed, so a later manual reopen re-arms the transition.
func (d *Dispatcher) expireOffers(offers []models.JobOffer) {
	today := startOfDay(d.now())

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, o := range offers {
		if o.State == models.OfferStatusClosed {
			delete(d.closing, o.ID)
			continue
		}
		if o.State != models.OfferStatusActive || o.DeadlineUnix <= 0 {
			continue
		}
		if !startOfDay(time.UnixMilli(o.DeadlineUnix)).Before(today) {
			continue
		}
		if d.closing[o.ID] {
			continue
		}
		d.closing[o.ID] = true

		d.patches.Add(1)
		go d.closeOffer(o)
	}
}

func (d *Dispatcher) closeOffer(o models.JobOffer) {
	defer d.patches.Done()

	ctx, cancel := context.WithTimeout(context.Background(), patchTimeout)
	defer cancel()

	path := models.PathOffers + "/" + o.ID
	err := d.store.Patch(ctx, path, map[string]any{"estado": string(models.OfferStatusClosed)})
	if err != nil {
		d.log.Error(ctx, "closing expired offer", "offer", o.ID, "error", err)
		d.mu.Lock()
		delete(d.closing, o.ID)
		d.mu.Unlock()
		return
	}

	d.log.Info(ctx, "offer expired", "offer", o.ID, "title", o.Title)
	d.emit([]Event{d.event(EventOfferExpired,
		fmt.Sprintf("La oferta %q ha expirado y fue cerrada automáticamente.", o.Title))})
}

// growthEventsLocked compares collection sizes against the previous
// refresh and builds one event per grown collection, naming the newest
// record. The first snapshot of a collection only seeds the baseline.
func (d *Dispatcher) growthEventsLocked(r view.Refresh) []Event {
	var events []Event

	if r.UsersLoaded {
		if d.userBase >= 0 && len(r.Users) > d.userBase {
			events = append(events, d.event(EventNewUser,
				"Un nuevo usuario se ha unido a la plataforma."))
		}
		d.userBase = len(r.Users)
	}

	if r.OffersLoaded {
		if d.offerBase >= 0 && len(r.Offers) > d.offerBase && len(r.Offers) > 0 {
			o := r.Offers[0]
			publisher := o.Employer.Name
			if publisher == "" || publisher == models.PlaceholderUnknownUser || publisher == models.PlaceholderUnknownPublisher {
				publisher = "un publicador desconocido"
			}
			events = append(events, d.event(EventNewOffer,
				fmt.Sprintf("%s ha publicado la oferta: %q", publisher, o.Title)))
		}
		d.offerBase = len(r.Offers)
	}

	if r.PostulationsLoaded {
		if d.postBase >= 0 && len(r.Postulations) > d.postBase && len(r.Postulations) > 0 {
			p := r.Postulations[0]
			applicant := p.Applicant.Name
			if applicant == "" || applicant == models.PlaceholderUnknownUser {
				applicant = "Alguien"
			}
			title := p.Offer.Title
			if title == "" || title == models.PlaceholderUnknownOffer {
				title = "una oferta"
			}
			events = append(events, d.event(EventNewPostulation,
				fmt.Sprintf("%s se ha postulado a la oferta: %q.", applicant, title)))
		}
		d.postBase = len(r.Postulations)
	}

	return events
}

func (d *Dispatcher) event(t EventType, msg string) Event {
	return Event{ID: d.newID(), Type: t, Message: msg, At: d.now()}
}

func (d *Dispatcher) emit(events []Event) {
	if len(events) == 0 {
		return
	}
	d.mu.Lock()
	sinks := make([]Notifier, len(d.notifiers))
	copy(sinks, d.notifiers)
	d.mu.Unlock()

	for _, e := range events {
		for _, n := range sinks {
			n.Notify(e)
		}
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
