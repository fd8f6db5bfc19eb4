// Package intele asks a Telegram user for a message and blocks until it
// arrives, so multi-step dialogs can be written as straight-line code.
package intele

import (
	"context"
	"sync"
	"time"

	"github.com/qrstudio/qrstudio-bot/pkg/intele/storage"
	tele "gopkg.in/telebot.v3"
)

const (
	stateWaitingInput = "waiting_input"
)

type pendingRequest struct {
	once     sync.Once
	done     chan struct{}
	message  *tele.Message
	canceled bool
}

func newPendingRequest() *pendingRequest {
	return &pendingRequest{done: make(chan struct{})}
}

func (r *pendingRequest) resolve(msg *tele.Message, canceled bool) {
	r.once.Do(func() {
		r.message = msg
		r.canceled = canceled
		close(r.done)
	})
}

// InputManager routes incoming messages to the goroutines waiting for them.
type InputManager struct {
	storage       storage.StateStorage
	mu            sync.Mutex
	requests      map[int64]*pendingRequest
	timeout       time.Duration
	maxConcurrent int
}

type InputOptions struct {
	// Storage for storing user states (default: in memory)
	Storage storage.StateStorage
	// Timeout for input requests (default: no timeout).
	Timeout time.Duration
	// MaxConcurrent limits the number of users waited on at once (default: no limit).
	MaxConcurrent int
}

// NewInputManager creates a new input manager
func NewInputManager(opts InputOptions) *InputManager {
	if opts.Storage == nil {
		opts.Storage = storage.NewMemoryStorage()
	}

	return &InputManager{
		storage:       opts.Storage,
		requests:      make(map[int64]*pendingRequest),
		timeout:       opts.Timeout,
		maxConcurrent: opts.MaxConcurrent,
	}
}

// Handler returns a handler for tele.OnText and tele.OnMedia. It consumes
// the message when the sender is being waited on and ignores it otherwise.
func (m *InputManager) Handler() tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Message() == nil || c.Sender() == nil {
			return nil
		}
		userID := c.Sender().ID

		state, err := m.storage.Get(userID)
		if err != nil {
			return err
		}
		if state != stateWaitingInput {
			return nil
		}

		m.mu.Lock()
		req, ok := m.requests[userID]
		m.mu.Unlock()
		if !ok {
			// state left over from a previous process
			m.storage.Delete(userID)
			return nil
		}

		req.resolve(c.Message(), false)
		return nil
	}
}

// Get waits for the next message of userID. canceled is true when Cancel was
// called or a newer Get for the same user replaced this one. A timeout of 0
// uses the manager default.
func (m *InputManager) Get(ctx context.Context, userID int64, timeout time.Duration) (message *tele.Message, canceled bool, err error) {
	req := newPendingRequest()

	m.mu.Lock()
	if m.maxConcurrent > 0 && len(m.requests) >= m.maxConcurrent {
		if _, waiting := m.requests[userID]; !waiting {
			m.mu.Unlock()
			return nil, false, ErrTooManyConcurrent
		}
	}
	if prev, ok := m.requests[userID]; ok {
		prev.resolve(nil, true)
	}
	m.requests[userID] = req
	m.mu.Unlock()

	defer m.release(userID, req)

	if err = m.storage.Set(userID, stateWaitingInput); err != nil {
		return nil, false, err
	}

	if timeout == 0 {
		timeout = m.timeout
	}
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-req.done:
		return req.message, req.canceled, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-expired:
		return nil, false, ErrTimeout
	}
}

// Cancel stops waiting for userID, if anything is waiting.
func (m *InputManager) Cancel(userID int64) {
	m.mu.Lock()
	req, ok := m.requests[userID]
	m.mu.Unlock()

	if ok {
		req.resolve(nil, true)
	}
}

// Waiting reports whether a Get for userID is in progress.
func (m *InputManager) Waiting(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.requests[userID]
	return ok
}

func (m *InputManager) release(userID int64, req *pendingRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// a newer Get owns the slot now
	if m.requests[userID] != req {
		return
	}
	delete(m.requests, userID)
	m.storage.Delete(userID)
}
