// Package personnel holds the shared, refreshable list of users that feeds
// dropdowns and email-to-name lookups.
package personnel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/business-management/internal/core/events"
	userDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/user"
	"github.com/frahmantamala/business-management/pkg/logger"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL = 5 * time.Minute
	// Root is the path prefix whose staleness invalidates the cache.
	Root = "/dashboard/personnel"

	flightKey = "personnel"
)

var ErrClosed = errors.New("personnel cache closed")

type State int

const (
	StateEmpty State = iota
	StateLoading
	StateFresh
	StateStale
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	}
	return "unknown"
}

// Fetcher loads the complete personnel list.
type Fetcher func(ctx context.Context) ([]*userDatamodel.User, error)

// Subscriber receives every freshly fetched list. It runs on the fetching
// goroutine and must not call back into Get.
type Subscriber func(users []*userDatamodel.User)

type subscriber struct {
	id uint64
	fn Subscriber
}

// Cache is safe for concurrent use. Returned slices are shared and must be
// treated as read-only.
type Cache struct {
	fetch  Fetcher
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	group  singleflight.Group

	mu        sync.Mutex
	users     []*userDatamodel.User
	hasData   bool
	loading   bool
	fetchedAt time.Time
	gen       uint64
	staleGen  bool
	subs      []subscriber
	nextID    uint64
	closed    bool
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

func NewCache(fetch Fetcher, opts ...Option) *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		fetch:  fetch,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: logger.LoggerWrapper(),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) stateLocked() State {
	switch {
	case c.loading:
		return StateLoading
	case !c.hasData:
		return StateEmpty
	case c.staleGen || c.now().Sub(c.fetchedAt) >= c.ttl:
		return StateStale
	default:
		return StateFresh
	}
}

func (c *Cache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Get returns the cached list while it is fresh. Otherwise it joins the
// single in-flight fetch, starting one if needed. The fetch is not tied to
// ctx; a caller whose ctx ends stops waiting and the fetch carries on.
func (c *Cache) Get(ctx context.Context, forceRefresh bool) ([]*userDatamodel.User, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if !forceRefresh && c.stateLocked() == StateFresh {
		users := c.users
		c.mu.Unlock()
		return users, nil
	}
	c.mu.Unlock()

	ch := c.group.DoChan(flightKey, func() (interface{}, error) {
		return c.refresh()
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]*userDatamodel.User), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) refresh() ([]*userDatamodel.User, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.loading = true
	gen := c.gen
	c.mu.Unlock()

	started := c.now()
	users, err := c.fetch(c.ctx)

	c.mu.Lock()
	c.loading = false
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if err != nil {
		if c.hasData {
			c.staleGen = true
		}
		c.mu.Unlock()
		c.logger.Error("Personnel cache: fetch failed", "error", err)
		return nil, err
	}
	if users == nil {
		users = []*userDatamodel.User{}
	}
	c.users = users
	c.hasData = true
	c.fetchedAt = started
	// an Invalidate that raced with the fetch leaves the result stale
	c.staleGen = c.gen != gen
	subs := make([]subscriber, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	c.logger.Debug("Personnel cache: refreshed", "count", len(users), "subscribers", len(subs))
	for _, s := range subs {
		s.fn(users)
	}
	return users, nil
}

// Subscribe registers fn for every completed fetch. If data is already
// cached fn is called with it before Subscribe returns.
func (c *Cache) Subscribe(fn Subscriber) (unsubscribe func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return func() {}
	}
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	users, has := c.users, c.hasData
	c.mu.Unlock()

	if has {
		fn(users)
	}

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Invalidate marks cached data stale so the next Get fetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if c.hasData {
		c.staleGen = true
	}
}

// InvalidateOn invalidates the cache whenever paths under root go stale and,
// when anyone is subscribed, refetches so subscribers see the change.
func (c *Cache) InvalidateOn(bus *events.EventBus, root string) func() {
	return bus.Subscribe(events.EventTypePathsStale, func(ctx context.Context, e events.Event) error {
		stale, ok := e.(*events.PathsStaleEvent)
		if !ok || !stale.Touches(root) {
			return nil
		}
		c.Invalidate()
		if c.subscriberCount() == 0 {
			return nil
		}
		if _, err := c.Get(ctx, false); err != nil && !errors.Is(err, ErrClosed) {
			return err
		}
		return nil
	})
}

func (c *Cache) subscriberCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Close drops data and subscribers and cancels an in-flight fetch.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.subs = nil
	c.users = nil
	c.hasData = false
	c.mu.Unlock()
	c.cancel()
}
