package pubsub

import (
	"context"
	"errors"
	"fmt"

	"civiq/internal/domain/service"
)

// Fanout publishes each event to every configured transport. A failing
// transport does not stop the others; their errors are joined.
type Fanout struct {
	transports map[string]service.Publisher
	order      []string
}

func NewFanout() *Fanout {
	return &Fanout{transports: make(map[string]service.Publisher)}
}

func (f *Fanout) Add(name string, p service.Publisher) *Fanout {
	if _, exists := f.transports[name]; !exists {
		f.order = append(f.order, name)
	}
	f.transports[name] = p
	return f
}

func (f *Fanout) Transports() []string {
	return append([]string(nil), f.order...)
}

func (f *Fanout) Publish(ctx context.Context, event service.Event) error {
	var errs []error
	for _, name := range f.order {
		if err := f.transports[name].Publish(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
