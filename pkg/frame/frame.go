// Package frame holds the span data model: the open Span builder, the closed
// Frame record, the Arena used while a span tree is still being built, and
// the persistence policy for completed root frames.
package frame

import (
	"encoding/json"
	"fmt"
	"time"
)

// Frame is the closed record of one observed unit of work. It is produced by
// Span.End and has no mutators.
type Frame struct {
	ID          string         `json:"id"`
	Key         string         `json:"key"`
	Breadcrumbs map[string]any `json:"breadcrumbs"`
	Success     *bool          `json:"success"`
	Result      any            `json:"result"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     *time.Time     `json:"end_time"`
	SubFrames   []Frame        `json:"sub_frames"`
}

func (f Frame) Ended() bool {
	return f.EndTime != nil
}

func (f Frame) Succeeded() bool {
	return f.Success != nil && *f.Success
}

func (f Frame) Duration() time.Duration {
	if f.EndTime == nil {
		return 0
	}
	return f.EndTime.Sub(f.StartTime)
}

// Walk visits f and all of its descendants depth first, parents before
// children, passing the nesting depth (0 for f itself).
func (f Frame) Walk(fn func(depth int, f Frame)) {
	f.walk(0, fn)
}

func (f Frame) walk(depth int, fn func(int, Frame)) {
	fn(depth, f)
	for _, sub := range f.SubFrames {
		sub.walk(depth+1, fn)
	}
}

func (f Frame) Marshal() ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal frame %s/%s: %w", f.ID, f.Key, err)
	}
	return data, nil
}

func Unmarshal(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("unmarshal frame: %w", err)
	}
	return f, nil
}
