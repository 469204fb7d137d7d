package state

import (
	"context"
	"sync"
	"time"
)

// ResendTimer is the OTP resend countdown. It decrements once per tick,
// allows a resend at zero and stops when its context is done.
type ResendTimer struct {
	mu        sync.Mutex
	seconds   int
	remaining int
	tick      time.Duration
	gen       uint64
	cancel    context.CancelFunc
	onTick    func(remaining int, canResend bool)
}

// NewResendTimer counts down interval in whole seconds. onTick may be nil.
func NewResendTimer(interval time.Duration, onTick func(remaining int, canResend bool)) *ResendTimer {
	seconds := int(interval / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return &ResendTimer{
		seconds: seconds,
		tick:    time.Second,
		onTick:  onTick,
	}
}

// Start (re)starts the countdown from the full interval.
func (t *ResendTimer) Start(ctx context.Context) {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.remaining = t.seconds
	t.gen++
	gen := t.gen
	t.mu.Unlock()

	go t.run(ctx, gen)
}

func (t *ResendTimer) run(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.gen != gen {
				t.mu.Unlock()
				return
			}
			t.remaining--
			remaining := t.remaining
			t.mu.Unlock()

			if t.onTick != nil {
				t.onTick(remaining, remaining == 0)
			}
			if remaining == 0 {
				return
			}
		}
	}
}

// Stop halts the countdown where it is.
func (t *ResendTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.gen++
}

func (t *ResendTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *ResendTimer) CanResend() bool {
	return t.Remaining() == 0
}
