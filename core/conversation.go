package core

import (
	"errors"
	"sync"
)

// ErrConversationBusy is returned when a run or reset is attempted while
// another run still holds the conversation.
var ErrConversationBusy = errors.New("conversation: run already in flight")

// Conversation holds the ordered message log of a single exchange together
// with its agent-turn counter and completion flag. It is safe for concurrent
// reads but is logically owned by at most one orchestration loop run at a
// time; Begin/End enforce that single-writer contract.
//
// Contract:
//   - Messages returns a defensive copy to avoid external mutation
//   - messages are appended in strict turn order and never reordered
//   - Reset is idempotent, is the only mutator outside the loop, and
//     refuses to run while a loop run is in flight
type Conversation struct {
	mu       sync.RWMutex
	messages []Message
	turns    int
	complete bool
	active   bool
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{messages: []Message{}}
}

// Begin marks the conversation as owned by a loop run. It fails with
// ErrConversationBusy when another run has not ended yet, so overlapping
// runs on the same state are rejected rather than interleaved.
func (c *Conversation) Begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return ErrConversationBusy
	}
	c.active = true
	return nil
}

// End releases the ownership taken by Begin.
func (c *Conversation) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
}

// Append adds a message to the history.
func (c *Conversation) Append(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

// Messages returns a defensive copy of the full message log.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	messages := make([]Message, len(c.messages))
	copy(messages, c.messages)
	return messages
}

// Last returns the most recent message and whether one exists.
func (c *Conversation) Last() (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// Len returns the number of messages in the history.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// AdvanceTurn increments the agent-turn counter and returns the new count.
// One agent turn may append several messages; the counter moves once.
func (c *Conversation) AdvanceTurn() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns++
	return c.turns
}

// Turns returns the number of agent turns taken since the last reset.
func (c *Conversation) Turns() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.turns
}

// MarkComplete flags the conversation as finished. It stays set until Reset.
func (c *Conversation) MarkComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.complete = true
}

// IsComplete reports whether the conversation has been marked complete.
func (c *Conversation) IsComplete() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.complete
}

// Reset clears the message log, the turn counter and the completion flag so
// the conversation can host a new independent exchange.
func (c *Conversation) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return ErrConversationBusy
	}
	c.messages = []Message{}
	c.turns = 0
	c.complete = false
	return nil
}
