package reconciler

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OHIF/Viewers-sub030/pkg/displayset"
	"github.com/OHIF/Viewers-sub030/pkg/events"
	"github.com/OHIF/Viewers-sub030/pkg/handlers"
	"github.com/OHIF/Viewers-sub030/pkg/instances"
	"github.com/OHIF/Viewers-sub030/pkg/logging"
	"github.com/OHIF/Viewers-sub030/pkg/multiframe"
)

func image(series, sop, class string) instances.Instance {
	return instances.Instance{
		"SOPInstanceUID":    sop,
		"SeriesInstanceUID": series,
		"StudyInstanceUID":  "1.2.840.1",
		"SOPClassUID":       class,
		"Modality":          "CT",
	}
}

func ctSeries(series string, n int) []instances.Instance {
	out := make([]instances.Instance, 0, n)
	for i := 1; i <= n; i++ {
		inst := image(series, fmt.Sprintf("%s.%d", series, i), instances.CTImageStorage)
		inst["InstanceNumber"] = i
		out = append(out, inst)
	}
	return out
}

// wholeGroup builds one set from every instance it is given.
func wholeGroup(id string, classes ...string) handlers.Handler {
	return handlers.Func(id, classes, func(_ context.Context, insts []instances.Instance) ([]*displayset.DisplaySet, error) {
		return []*displayset.DisplaySet{displayset.New(insts)}, nil
	})
}

// synthesizing expands every instance into frame records.
func synthesizing(id string, classes ...string) handlers.Handler {
	return handlers.Func(id, classes, func(_ context.Context, insts []instances.Instance) ([]*displayset.DisplaySet, error) {
		var frames []instances.Instance
		for _, inst := range insts {
			frames = append(frames, multiframe.Synthesize(inst)...)
		}
		return []*displayset.DisplaySet{displayset.New(frames)}, nil
	})
}

// counting wraps h and counts Build calls.
type counting struct {
	handlers.Handler
	mu    sync.Mutex
	calls int
}

func (c *counting) Build(ctx context.Context, insts []instances.Instance) ([]*displayset.DisplaySet, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.Handler.Build(ctx, insts)
}

func (c *counting) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithLogger(logging.NewNopLogger())}, opts...)
	svc, err := New(opts...)
	require.NoError(t, err)
	return svc
}

// recorder captures every event in delivery order.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func record(svc *Service) *recorder {
	r := &recorder{}
	svc.SubscribeAll(func(e events.Event) error {
		r.mu.Lock()
		r.events = append(r.events, e)
		r.mu.Unlock()
		return nil
	})
	return r
}

func (r *recorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Kind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

func (r *recorder) of(kind events.Kind) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
