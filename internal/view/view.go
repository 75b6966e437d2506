// Package view is the join/aggregation layer. A View owns local copies
// of the three collections, refreshed wholesale on every pushed
// snapshot, and recomputes all derived lists whenever any of them
// changes. Each consumer constructs its own View; maps are never shared
// across views.
package view

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cancheito/backoffice/internal/logging"
	"github.com/cancheito/backoffice/internal/models"
	"github.com/cancheito/backoffice/internal/normalize"
	"github.com/cancheito/backoffice/internal/store"
)

// DefaultDebounce coalesces recomputes when several snapshots land in
// quick succession during the initial load.
const DefaultDebounce = 50 * time.Millisecond

// Refresh is the immutable result of one recompute, handed to refresh
// hooks (the side-effect dispatcher) and kept for read accessors.
type Refresh struct {
	Users        []models.User
	Offers       []models.JobOffer
	Postulations []models.Postulation

	// Loaded flags record whether the corresponding subscription has
	// delivered at least one snapshot. Derived data is usable before
	// all three are set; dangling references render placeholders until
	// the missing snapshot arrives.
	UsersLoaded        bool
	OffersLoaded       bool
	PostulationsLoaded bool
}

// View maintains the three raw maps and their derived lists.
type View struct {
	store    store.Store
	log      logging.Logger
	now      func() time.Time
	debounce time.Duration

	mu              sync.Mutex
	rawUsers        map[string]models.RawUser
	rawOffers       map[string]models.RawOffer
	rawPostulations map[string]models.RawPostulation
	loadedUsers     bool
	loadedOffers    bool
	loadedPosts     bool
	current         Refresh
	subErrs         map[string]error
	timer           *time.Timer
	closed          bool
	cancels         []store.CancelFunc
	hooks           []func(Refresh)
}

// Option customizes a View.
type Option func(*View)

// WithDebounce overrides the recompute debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(v *View) { v.debounce = d }
}

// WithClock injects the wall clock used for 30-day windows and chart
// ranges.
func WithClock(now func() time.Time) Option {
	return func(v *View) { v.now = now }
}

// New constructs a View over the given store. Call Open to start the
// subscriptions and Close to tear them down.
func New(s store.Store, log logging.Logger, opts ...Option) *View {
	v := &View{
		store:           s,
		log:             log,
		now:             time.Now,
		debounce:        DefaultDebounce,
		rawUsers:        make(map[string]models.RawUser),
		rawOffers:       make(map[string]models.RawOffer),
		rawPostulations: make(map[string]models.RawPostulation),
		subErrs:         make(map[string]error),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// OnRefresh registers a hook invoked after every recompute. Must be
// called before Open.
func (v *View) OnRefresh(fn func(Refresh)) {
	v.hooks = append(v.hooks, fn)
}

// Open establishes the three collection subscriptions.
func (v *View) Open(ctx context.Context) error {
	type target struct {
		path  string
		apply func(json.RawMessage)
	}

	targets := []target{
		{models.PathUsers, v.applyUsers},
		{models.PathOffers, v.applyOffers},
		{models.PathPostulations, v.applyPostulations},
	}

	for _, tg := range targets {
		path := tg.path
		cancel, err := v.store.Subscribe(ctx, path, tg.apply, func(err error) {
			v.recordError(path, err)
		})
		if err != nil {
			v.Close()
			return fmt.Errorf("subscribing to %s: %w", path, err)
		}
		v.cancels = append(v.cancels, cancel)
	}
	return nil
}

// Close tears down every subscription opened by this view. The last
// computed lists stay readable.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	cancels := v.cancels
	v.cancels = nil
	v.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

func (v *View) applyUsers(data json.RawMessage) {
	users := make(map[string]models.RawUser)
	if err := decodeCollection(data, &users); err != nil {
		v.recordError(models.PathUsers, err)
		return
	}

	v.mu.Lock()
	v.rawUsers = users
	v.loadedUsers = true
	delete(v.subErrs, models.PathUsers)
	v.scheduleLocked()
	v.mu.Unlock()
}

func (v *View) applyOffers(data json.RawMessage) {
	offers := make(map[string]models.RawOffer)
	if err := decodeCollection(data, &offers); err != nil {
		v.recordError(models.PathOffers, err)
		return
	}

	v.mu.Lock()
	v.rawOffers = offers
	v.loadedOffers = true
	delete(v.subErrs, models.PathOffers)
	v.scheduleLocked()
	v.mu.Unlock()
}

func (v *View) applyPostulations(data json.RawMessage) {
	posts := make(map[string]models.RawPostulation)
	if err := decodeCollection(data, &posts); err != nil {
		v.recordError(models.PathPostulations, err)
		return
	}

	v.mu.Lock()
	v.rawPostulations = posts
	v.loadedPosts = true
	delete(v.subErrs, models.PathPostulations)
	v.scheduleLocked()
	v.mu.Unlock()
}

// decodeCollection tolerates a null snapshot (empty collection).
func decodeCollection[T any](data json.RawMessage, out *map[string]T) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding collection snapshot: %w", err)
	}
	return nil
}

func (v *View) recordError(path string, err error) {
	v.mu.Lock()
	v.subErrs[path] = err
	v.mu.Unlock()
	v.log.Error(context.Background(), "collection subscription failed", "path", path, "error", err)
}

// scheduleLocked arms the debounce timer; if one is already armed the
// change rides along with the pending recompute.
func (v *View) scheduleLocked() {
	if v.closed || v.timer != nil {
		return
	}
	v.timer = time.AfterFunc(v.debounce, v.recompute)
}

// recompute re-runs the normalizer over every raw snapshot against the
// current state of the sibling maps, then notifies refresh hooks.
func (v *View) recompute() {
	v.mu.Lock()
	v.timer = nil
	if v.closed {
		v.mu.Unlock()
		return
	}

	users := make([]models.User, 0, len(v.rawUsers))
	for id, raw := range v.rawUsers {
		users = append(users, normalize.User(id, raw))
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].RegisteredUnix > users[j].RegisteredUnix
	})

	offers := make([]models.JobOffer, 0, len(v.rawOffers))
	for id, raw := range v.rawOffers {
		offers = append(offers, normalize.Offer(id, raw, v.rawUsers))
	}
	sort.Slice(offers, func(i, j int) bool {
		return offers[i].PostedUnix > offers[j].PostedUnix
	})

	posts := make([]models.Postulation, 0, len(v.rawPostulations))
	for id, raw := range v.rawPostulations {
		posts = append(posts, normalize.Postulation(id, raw, v.rawUsers, v.rawOffers))
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].AppliedUnix > posts[j].AppliedUnix
	})

	refresh := Refresh{
		Users:              users,
		Offers:             offers,
		Postulations:       posts,
		UsersLoaded:        v.loadedUsers,
		OffersLoaded:       v.loadedOffers,
		PostulationsLoaded: v.loadedPosts,
	}
	v.current = refresh
	hooks := v.hooks
	v.mu.Unlock()

	for _, hook := range hooks {
		hook(refresh)
	}
}

// Users returns the normalized user list, newest first, optionally
// filtered by name or email.
func (v *View) Users(filter string) []models.User {
	v.mu.Lock()
	users := v.current.Users
	v.mu.Unlock()

	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if matches(filter, u.FullName, u.Email) {
			out = append(out, u)
		}
	}
	return out
}

// UserByID returns the normalized user with the given id.
func (v *View) UserByID(id string) (models.User, bool) {
	v.mu.Lock()
	users := v.current.Users
	v.mu.Unlock()

	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// Offers returns the normalized offer list, newest first, optionally
// filtered by title or employer name.
func (v *View) Offers(filter string) []models.JobOffer {
	v.mu.Lock()
	offers := v.current.Offers
	v.mu.Unlock()

	out := make([]models.JobOffer, 0, len(offers))
	for _, o := range offers {
		if matches(filter, o.Title, o.Employer.Name) {
			out = append(out, o)
		}
	}
	return out
}

// Postulations returns the normalized postulation list, newest first,
// optionally filtered by applicant name or offer title.
func (v *View) Postulations(filter string) []models.Postulation {
	v.mu.Lock()
	posts := v.current.Postulations
	v.mu.Unlock()

	out := make([]models.Postulation, 0, len(posts))
	for _, p := range posts {
		if matches(filter, p.Applicant.Name, p.Offer.Title) {
			out = append(out, p)
		}
	}
	return out
}

// Errors returns the last error per failed subscription path, for a
// non-fatal error indicator. Healthy paths are absent.
func (v *View) Errors() map[string]error {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make(map[string]error, len(v.subErrs))
	for k, e := range v.subErrs {
		out[k] = e
	}
	return out
}
