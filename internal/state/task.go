package state

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// phaseStale is a settle outcome only: the task was superseded or torn down
// before it finished.
const phaseStale Phase = -1

type inflight struct {
	seq    uint64
	cancel context.CancelFunc
}

type task struct {
	ctx    context.Context
	key    string
	action string
	seq    uint64
	cancel context.CancelFunc
}

// base is the request bookkeeping shared by every store. Each logical
// operation runs under a key; starting a task on a busy key cancels the
// previous one, and only the newest task on a key may apply its result.
// mu guards the embedding store's state as well as tasks.
type base struct {
	mu     sync.Mutex
	slice  Slice
	hub    *Hub
	logger *zap.Logger
	seq    uint64
	tasks  map[string]*inflight
}

func (b *base) init(slice Slice, hub *Hub, logger *zap.Logger) {
	if logger == nil {
		logger = zap.L()
	}
	b.slice = slice
	b.hub = hub
	b.logger = logger.With(zap.String("slice", string(slice)))
	b.tasks = make(map[string]*inflight)
}

func (b *base) beginLocked(parent context.Context, key, action string) *task {
	if prev, ok := b.tasks[key]; ok {
		prev.cancel()
	}
	b.seq++
	ctx, cancel := context.WithCancel(parent)
	b.tasks[key] = &inflight{seq: b.seq, cancel: cancel}
	return &task{ctx: ctx, key: key, action: action, seq: b.seq, cancel: cancel}
}

func (b *base) settleLocked(t *task, err error) Phase {
	t.cancel()
	cur, ok := b.tasks[t.key]
	if !ok || cur.seq != t.seq {
		return phaseStale
	}
	delete(b.tasks, t.key)

	switch {
	case err == nil:
		return PhaseFulfilled
	case errors.Is(err, context.Canceled):
		return PhaseCanceled
	default:
		return PhaseRejected
	}
}

// inFlightLocked reports whether any task whose key starts with prefix is
// running. Loading flags are derived from it.
func (b *base) inFlightLocked(prefix string) bool {
	for key := range b.tasks {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

func (b *base) cancelAllLocked() int {
	n := len(b.tasks)
	for key, t := range b.tasks {
		t.cancel()
		delete(b.tasks, key)
	}
	return n
}

func (b *base) publish(action string, phase Phase, message string) {
	if b.hub == nil {
		return
	}
	b.hub.publish(Event{Slice: b.slice, Action: action, Phase: phase, Error: message})
}

// report publishes the settle outcome of t and returns the error the
// action hands back to its caller.
func (b *base) report(t *task, phase Phase, err error) error {
	switch phase {
	case phaseStale:
		b.logger.Debug("Discarding superseded result", zap.String("action", t.action))
		b.publish(t.action, PhaseCanceled, "")
		if err == nil {
			return ErrSuperseded
		}
		return err
	case PhaseFulfilled:
		b.publish(t.action, PhaseFulfilled, "")
		return nil
	case PhaseCanceled:
		b.logger.Debug("Request canceled", zap.String("action", t.action))
		b.publish(t.action, PhaseCanceled, "")
		return err
	default:
		msg := errorMessage(err)
		b.logger.Warn("Request rejected",
			zap.String("action", t.action),
			zap.String("message", msg),
			zap.Error(err))
		b.publish(t.action, PhaseRejected, msg)
		return err
	}
}

// rejectLocal publishes a precondition failure that never reached the
// network. The caller has already recorded the message.
func (b *base) rejectLocal(action string, err error) error {
	b.publish(action, PhaseRejected, errorMessage(err))
	return err
}

// Cancel aborts every in-flight request of the store. Late results are
// dropped and Loading clears without an error.
func (b *base) Cancel() {
	b.mu.Lock()
	n := b.cancelAllLocked()
	b.mu.Unlock()
	if n > 0 {
		b.logger.Debug("Canceled in-flight requests", zap.Int("count", n))
		b.publish("cancel", PhaseLocal, "")
	}
}
