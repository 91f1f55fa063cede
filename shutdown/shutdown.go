package shutdown

import (
	"context"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"

	"github.com/flanksource/commons/logger"
)

const (
	PriorityDefault  = 100
	PriorityDatabase = 300
)

type hook struct {
	label    string
	priority int
	fn       func()
}

var (
	hooks    []hook
	hooksMux sync.Mutex
)

// AddHook registers a shutdown hook with default priority
func AddHook(label string, fn func()) {
	AddHookWithPriority(label, PriorityDefault, fn)
}

// AddHookWithPriority registers a shutdown hook with specific priority
func AddHookWithPriority(label string, priority int, fn func()) {
	hooksMux.Lock()
	defer hooksMux.Unlock()
	hooks = append(hooks, hook{label: label, priority: priority, fn: fn})
}

// Shutdown runs and clears the registered hooks, lowest priority first.
// Hooks of equal priority run in registration order.
func Shutdown() {
	hooksMux.Lock()
	pending := hooks
	hooks = nil
	hooksMux.Unlock()

	slices.SortStableFunc(pending, func(a, b hook) int { return a.priority - b.priority })
	for _, h := range pending {
		logger.Debugf("Executing shutdown hook: %s (priority=%d)", h.label, h.priority)
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("Panic in shutdown hook %s: %v", h.label, r)
				}
			}()
			h.fn()
		}()
	}
}

// WithSignals returns a context cancelled on SIGINT or SIGTERM. Imports stop
// between rows and store calls fail fast once it is done.
func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
