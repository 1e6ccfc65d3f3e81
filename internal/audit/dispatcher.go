package audit

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Config controls dispatcher buffering and selection.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// Events restricts delivery to these event types. Empty delivers all.
	Events []string
}

// redacted replaces metadata values whose key names a credential.
const redacted = "[redacted]"

var secretKeyParts = []string{"token", "password", "secret", "authorization"}

// Dispatcher hands audit events to a sink on its own goroutine so that sign-in,
// refresh and guard paths never block on a slow sink.
//
// A nil *Dispatcher is valid and discards everything.
type Dispatcher struct {
	cfg     Config
	sink    Sink
	allowed map[string]struct{}

	queue     chan Event
	stop      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	filtered  atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts the delivery goroutine. It returns nil when auditing is
// disabled.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		cfg:   cfg,
		sink:  sink,
		queue: make(chan Event, max(cfg.BufferSize, 1)),
		stop:  make(chan struct{}),
	}
	if len(cfg.Events) > 0 {
		d.allowed = make(map[string]struct{}, len(cfg.Events))
		for _, t := range cfg.Events {
			d.allowed[strings.TrimSpace(t)] = struct{}{}
		}
	}
	d.wg.Go(d.deliver)

	return d
}

func (d *Dispatcher) deliver() {
	ctx := context.Background()
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(ctx, event)
		case <-d.stop:
			for {
				select {
				case event := <-d.queue:
					d.sink.Emit(ctx, event)
				default:
					return
				}
			}
		}
	}
}

// Emit queues event after stamping its id and timestamp and redacting
// credential metadata. Events outside Config.Events are counted as filtered.
// With DropIfFull a full queue drops the event; otherwise Emit waits for room
// or for ctx to end.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if d.allowed != nil {
		if _, ok := d.allowed[event.EventType]; !ok {
			d.filtered.Add(1)
			return
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Metadata = Redact(event.Metadata)

	if d.cfg.DropIfFull {
		select {
		case d.queue <- event:
		case <-d.stop:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
	case <-d.stop:
	}
}

// Redact returns metadata with every credential-named value replaced. The
// input map is not modified.
func Redact(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return metadata
	}
	var out map[string]string
	for k := range metadata {
		if !secretKey(k) {
			continue
		}
		if out == nil {
			out = make(map[string]string, len(metadata))
			for k2, v := range metadata {
				out[k2] = v
			}
		}
		out[k] = redacted
	}
	if out == nil {
		return metadata
	}
	return out
}

func secretKey(key string) bool {
	key = strings.ToLower(key)
	for _, part := range secretKeyParts {
		if strings.Contains(key, part) {
			return true
		}
	}
	return false
}

// Close stops accepting events and delivers what is already queued.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.stop)
		d.wg.Wait()
	})
}

// Dropped returns the number of events discarded because the queue was full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Filtered returns the number of events skipped by Config.Events.
func (d *Dispatcher) Filtered() uint64 {
	if d == nil {
		return 0
	}
	return d.filtered.Load()
}
