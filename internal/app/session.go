package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/marquee/internal/domain/highlight"
	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/internal/domain/types"
	"github.com/okian/marquee/pkg/logger"
	"github.com/okian/marquee/pkg/metrics"
)

// session is one dashboard tab: its hover and pin state and its viewport.
type session struct {
	id      string
	machine *highlight.Machine
	resize  *debouncer
	created time.Time

	mu       sync.RWMutex
	width    float64
	height   float64
	lastSeen time.Time
}

func (ss *session) viewport() (float64, float64) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.width, ss.height
}

func (ss *session) setViewport(w, h float64) {
	ss.mu.Lock()
	ss.width, ss.height = w, h
	ss.mu.Unlock()
}

func (ss *session) touch(at time.Time) {
	ss.mu.Lock()
	ss.lastSeen = at
	ss.mu.Unlock()
}

func (ss *session) view() types.SessionView {
	set, focused := ss.machine.Current()
	pinned, _ := ss.machine.Pinned()

	ss.mu.RLock()
	defer ss.mu.RUnlock()

	v := types.SessionView{
		ID:        ss.id,
		State:     ss.machine.State().String(),
		Highlight: []string{},
		Pinned:    pinned,
		Width:     ss.width,
		Height:    ss.height,
		CreatedAt: ss.created,
		LastSeen:  ss.lastSeen,
	}
	if focused {
		v.Anchor = set.AnchorID
		v.Highlight = set.IDs()
	}
	return v
}

// CreateSession opens a session with the default viewport.
func (s *Service) CreateSession(_ context.Context) (types.SessionView, error) {
	const op = "service.create_session"

	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	if len(s.sessions) >= s.maxSessions {
		return types.SessionView{}, fmt.Errorf("%s: %w: limit %d", op, ErrTooManySessions, s.maxSessions)
	}

	now := s.now()
	ss := &session{
		id:       uuid.NewString(),
		created:  now,
		lastSeen: now,
		width:    s.width,
		height:   s.height,
	}
	log := s.logger.Named("session")
	ss.machine = highlight.New(s.graph,
		highlight.WithOnFocus(func(set model.HighlightSet) {
			log.Debug(context.Background(), "focused", logger.String("session", ss.id), logger.String("anchor", set.AnchorID), logger.Int("members", len(set.Members)))
		}),
		highlight.WithOnIdle(func() {
			log.Debug(context.Background(), "idle", logger.String("session", ss.id))
		}),
	)
	ss.resize = newDebouncer(s.resizeDebounce, func(w, h float64) {
		ss.setViewport(w, h)
		log.Debug(context.Background(), "viewport committed", logger.String("session", ss.id), logger.Float64("width", w), logger.Float64("height", h))
	})

	s.sessions[ss.id] = ss
	metrics.UpdateSessionsActive(len(s.sessions))
	return ss.view(), nil
}

// CloseSession drops a session and any pending resize.
func (s *Service) CloseSession(_ context.Context, id string) error {
	const op = "service.close_session"

	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	ss, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%s: %w: %s", op, ErrUnknownSession, id)
	}
	ss.resize.Stop()
	delete(s.sessions, id)
	metrics.UpdateSessionsActive(len(s.sessions))
	return nil
}

// Session returns the current state of a session.
func (s *Service) Session(_ context.Context, id string) (types.SessionView, error) {
	ss, err := s.lookup(id)
	if err != nil {
		return types.SessionView{}, fmt.Errorf("service.session: %w", err)
	}
	return ss.view(), nil
}

func (s *Service) lookup(id string) (*session, error) {
	s.sessMu.RLock()
	defer s.sessMu.RUnlock()
	ss, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	return ss, nil
}

// Enqueue validates a UI event and queues it for the event loop.
func (s *Service) Enqueue(ctx context.Context, e model.UIEvent) error {
	const op = "service.enqueue"

	if err := validateEvent(e); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.lookup(e.Session); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	q := s.queue
	started := s.started
	s.mu.RUnlock()
	if !started {
		return fmt.Errorf("%s: %w", op, ErrNotStarted)
	}

	if e.At.IsZero() {
		e.At = s.now()
	}
	if err := q.Enqueue(ctx, e); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func validateEvent(e model.UIEvent) error {
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: kind %q", ErrInvalidEvent, e.Kind)
	}
	switch e.Kind {
	case model.UIPointerEnter, model.UIClick:
		if e.Target == "" {
			return fmt.Errorf("%w: %s needs a target", ErrInvalidEvent, e.Kind)
		}
	case model.UIResize:
		if math.IsNaN(e.Width) || math.IsNaN(e.Height) || math.IsInf(e.Width, 0) || math.IsInf(e.Height, 0) {
			return fmt.Errorf("%w: viewport must be finite", ErrInvalidEvent)
		}
	}
	return nil
}

// Apply mutates the targeted session. The event loop is its only caller in
// production, so session transitions happen in arrival order.
func (s *Service) Apply(_ context.Context, e model.UIEvent) error {
	const op = "service.apply"

	ss, err := s.lookup(e.Session)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	ss.touch(s.now())

	switch e.Kind {
	case model.UIPointerEnter:
		ss.machine.Enter(e.Target)
	case model.UIPointerLeave:
		ss.machine.Leave()
	case model.UIClick:
		ss.machine.Toggle(e.Target)
	case model.UIResize:
		ss.resize.Push(e.Width, e.Height)
	default:
		return fmt.Errorf("%s: %w: kind %q", op, ErrInvalidEvent, e.Kind)
	}
	return nil
}
