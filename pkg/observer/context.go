package observer

import (
	"errors"

	"github.com/jt828/go-observer/pkg/frame"
)

var ErrNoOpenSpan = errors.New("no open span")

// Context owns the stack of open spans of one logical execution. It is
// confined to the goroutine of its Observer.
type Context struct {
	id        string
	transient bool
	stack     []*frame.Span
	arena     *frame.Arena
	spanOpts  []frame.SpanOption
}

func newContext(id string, transient bool, spanOpts []frame.SpanOption) *Context {
	return &Context{
		id:        id,
		transient: transient,
		arena:     frame.NewArena(),
		spanOpts:  spanOpts,
	}
}

func (c *Context) ID() string { return c.id }

// Transient reports whether the context was created implicitly to time a
// span started outside of any explicit context.
func (c *Context) Transient() bool { return c.transient }

func (c *Context) Depth() int { return len(c.stack) }

// StartSpan pushes a new span for id.
func (c *Context) StartSpan(id string) *frame.Span {
	span := frame.NewSpan(id, c.spanOpts...)
	c.stack = append(c.stack, span)
	return span
}

// AddBreadcrumb annotates the innermost open span.
func (c *Context) AddBreadcrumb(key string, value any) error {
	if len(c.stack) == 0 {
		return ErrNoOpenSpan
	}
	return c.stack[len(c.stack)-1].AddBreadcrumb(key, value)
}

// EndSpan closes the innermost span. A non-nil err marks it unsuccessful and
// is recorded as the "error" breadcrumb. The closed frame is attached under
// its parent; root is true when the stack became empty, in which case the
// frame is the completed tree.
func (c *Context) EndSpan(err error, result any) (frame.Frame, bool, error) {
	n := len(c.stack)
	if n == 0 {
		return frame.Frame{}, false, ErrNoOpenSpan
	}

	span := c.stack[n-1]
	if err != nil {
		if e := span.AddBreadcrumb("error", err.Error()); e != nil {
			return frame.Frame{}, false, e
		}
	}

	f, endErr := span.End(err == nil, result, c.arena.Take(span.Key()))
	if endErr != nil {
		return frame.Frame{}, false, endErr
	}

	c.stack[n-1] = nil
	c.stack = c.stack[:n-1]

	if len(c.stack) > 0 {
		c.arena.Attach(c.stack[len(c.stack)-1].Key(), f)
		return f, false, nil
	}
	return f, true, nil
}
