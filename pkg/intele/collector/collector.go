// Package collector remembers the messages of a dialog so they can be
// removed once the dialog is over.
package collector

import (
	"sync"

	tele "gopkg.in/telebot.v3"
)

type Collector struct {
	mu       sync.Mutex
	messages []*tele.Message
}

func New() *Collector {
	return &Collector{}
}

type ClearOptions struct {
	// IgnoreErrors keeps deleting after a failed delete and returns nil.
	IgnoreErrors bool
	// ExcludeLast keeps the most recent message.
	ExcludeLast bool
}

// Collect remembers msg. Nil messages are skipped.
func (c *Collector) Collect(msg *tele.Message) {
	if msg == nil {
		return
	}
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
}

// Messages returns the collected messages, oldest first.
func (c *Collector) Messages() []*tele.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*tele.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Send sends what to the chat of ctx and collects the sent message.
func (c *Collector) Send(ctx tele.Context, what interface{}, opts ...interface{}) error {
	msg, err := ctx.Bot().Send(ctx.Recipient(), what, opts...)
	if err != nil {
		return err
	}
	c.Collect(msg)
	return nil
}

// Clear deletes the collected messages from the chat and forgets them.
func (c *Collector) Clear(ctx tele.Context, opts ClearOptions) error {
	c.mu.Lock()
	messages := c.messages
	var kept []*tele.Message
	if opts.ExcludeLast && len(messages) > 0 {
		kept = messages[len(messages)-1:]
		messages = messages[:len(messages)-1]
	}
	c.messages = kept
	c.mu.Unlock()

	for _, msg := range messages {
		if err := ctx.Bot().Delete(msg); err != nil && !opts.IgnoreErrors {
			return err
		}
	}
	return nil
}
