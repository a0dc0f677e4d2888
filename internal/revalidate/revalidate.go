// Package revalidate signals which views are stale after a mutation. Paths
// go to the HTTP response header, the in-process event bus, and (optionally)
// a Redis channel shared by every instance.
package revalidate

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/frahmantamala/business-management/internal/core/events"
	"github.com/google/uuid"
)

// Revalidator is what services depend on.
type Revalidator interface {
	Revalidate(ctx context.Context, paths ...string)
}

// Broker carries stale-path messages between instances.
type Broker interface {
	Publish(ctx context.Context, payload []byte) error
	Subscribe(ctx context.Context) (<-chan []byte, func() error)
}

type message struct {
	Origin string   `json:"origin"`
	Paths  []string `json:"paths"`
}

type hook struct {
	id   uint64
	root string
	fn   func()
}

type Service struct {
	instanceID string
	bus        *events.EventBus
	broker     Broker
	logger     *slog.Logger

	mu     sync.RWMutex
	hooks  []hook
	nextID uint64
}

func NewService(bus *events.EventBus, broker Broker, logger *slog.Logger) *Service {
	return &Service{
		instanceID: uuid.NewString(),
		bus:        bus,
		broker:     broker,
		logger:     logger,
	}
}

func (s *Service) InstanceID() string {
	return s.instanceID
}

// OnStale runs fn before Revalidate returns whenever a stale path, local or
// relayed from another instance, falls under root. fn must not block.
func (s *Service) OnStale(root string, fn func()) (remove func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.hooks = append(s.hooks, hook{id: id, root: root, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, h := range s.hooks {
			if h.id == id {
				s.hooks = append(s.hooks[:i:i], s.hooks[i+1:]...)
				return
			}
		}
	}
}

func (s *Service) runHooks(e *events.PathsStaleEvent) {
	s.mu.RLock()
	hooks := append([]hook(nil), s.hooks...)
	s.mu.RUnlock()
	for _, h := range hooks {
		if e.Touches(h.root) {
			h.fn()
		}
	}
}

func (s *Service) Revalidate(ctx context.Context, paths ...string) {
	paths = normalize(paths)
	if len(paths) == 0 {
		return
	}

	track(ctx, paths)

	event := events.NewPathsStaleEvent(s.instanceID, paths...)
	s.runHooks(event)
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Error("Revalidate: failed to publish stale paths", "paths", paths, "error", err)
	}

	if s.broker == nil {
		return
	}
	payload, err := json.Marshal(message{Origin: s.instanceID, Paths: paths})
	if err != nil {
		s.logger.Error("Revalidate: failed to encode broker message", "error", err)
		return
	}
	if err := s.broker.Publish(context.WithoutCancel(ctx), payload); err != nil {
		s.logger.Warn("Revalidate: failed to broadcast stale paths", "paths", paths, "error", err)
	}
}

// Listen relays stale paths announced by other instances onto the local bus
// until ctx is done. Messages this instance sent itself are ignored.
func (s *Service) Listen(ctx context.Context) error {
	if s.broker == nil {
		<-ctx.Done()
		return nil
	}

	msgs, closeFn := s.broker.Subscribe(ctx)
	defer func() {
		if err := closeFn(); err != nil {
			s.logger.Warn("Revalidate: failed to close subscription", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-msgs:
			if !ok {
				return nil
			}
			var m message
			if err := json.Unmarshal(raw, &m); err != nil {
				s.logger.Warn("Revalidate: dropping malformed message", "error", err)
				continue
			}
			if m.Origin == s.instanceID || len(m.Paths) == 0 {
				continue
			}
			event := events.NewPathsStaleEvent(m.Origin, m.Paths...)
			event.Remote = true
			s.runHooks(event)
			if err := s.bus.PublishSync(ctx, event); err != nil {
				s.logger.Error("Revalidate: remote stale paths handler failed", "error", err)
			}
		}
	}
}

func normalize(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
