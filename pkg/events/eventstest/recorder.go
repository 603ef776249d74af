// Package eventstest records published events in memory.
package eventstest

import (
	"context"
	"sync"

	"github.com/Skotchmaster/classroom/pkg/events"
)

type Published struct {
	Topic string
	Key   string
	Event events.Event
}

type Recorder struct {
	mu  sync.Mutex
	out []Published
	Err error
}

func (r *Recorder) Publish(_ context.Context, topic, key string, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.out = append(r.out, Published{Topic: topic, Key: key, Event: ev})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.out))
	for _, p := range r.out {
		types = append(types, p.Event.Type)
	}
	return types
}

func (r *Recorder) All() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.out...)
}
