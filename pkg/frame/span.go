package frame

import (
	"errors"
	"time"
)

var ErrSpanEnded = errors.New("span already ended")

type spanConfig struct {
	keys KeyGenerator
	now  func() time.Time
}

type SpanOption func(*spanConfig)

func WithKeyGenerator(keys KeyGenerator) SpanOption {
	return func(c *spanConfig) {
		if keys != nil {
			c.keys = keys
		}
	}
}

func WithClock(now func() time.Time) SpanOption {
	return func(c *spanConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// Span is the open phase of a frame. It is owned by a single Context and is
// not safe for concurrent use.
type Span struct {
	id          string
	key         string
	breadcrumbs map[string]any
	startTime   time.Time
	ended       bool
	now         func() time.Time
}

func NewSpan(id string, opts ...SpanOption) *Span {
	cfg := spanConfig{keys: UUIDKeys{}, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Span{
		id:          id,
		key:         cfg.keys.NewKey(),
		breadcrumbs: make(map[string]any),
		startTime:   cfg.now().UTC(),
		now:         cfg.now,
	}
}

func (s *Span) ID() string           { return s.id }
func (s *Span) Key() string          { return s.key }
func (s *Span) StartTime() time.Time { return s.startTime }
func (s *Span) Ended() bool          { return s.ended }

// AddBreadcrumb upserts an annotation. The last write for a key wins.
func (s *Span) AddBreadcrumb(key string, value any) error {
	if s.ended {
		return ErrSpanEnded
	}
	s.breadcrumbs[key] = value
	return nil
}

// End closes the span and returns its frame. children must already be
// closed and are kept in the given order. End succeeds exactly once.
func (s *Span) End(success bool, result any, children []Frame) (Frame, error) {
	if s.ended {
		return Frame{}, ErrSpanEnded
	}
	s.ended = true

	end := s.now().UTC()
	if children == nil {
		children = []Frame{}
	}

	return Frame{
		ID:          s.id,
		Key:         s.key,
		Breadcrumbs: s.breadcrumbs,
		Success:     &success,
		Result:      result,
		StartTime:   s.startTime,
		EndTime:     &end,
		SubFrames:   children,
	}, nil
}
