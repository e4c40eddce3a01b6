package session

import (
	"errors"

	"github.com/papercomputeco/seekchat/pkg/llm"
)

// ErrTurnPending is returned when a user turn is appended while a previous
// one is still waiting for its reply.
var ErrTurnPending = errors.New("session: a user turn is already awaiting a reply")

// Transcript is the ordered history of turns replayed with every request.
//
// At rest every user turn is followed by exactly one assistant turn. While a
// request is in flight the transcript ends with a single pending user turn,
// which is either committed with the reply or rolled back.
type Transcript struct {
	turns   []llm.Message
	pending *Pending
}

// Pending is an appended user turn that has not been answered yet.
type Pending struct {
	t    *Transcript
	mark int
	turn llm.Message
	done bool
}

// Begin appends a pending user turn.
func (t *Transcript) Begin(text string) (*Pending, error) {
	if t.pending != nil {
		return nil, ErrTurnPending
	}

	p := &Pending{
		t:    t,
		mark: len(t.turns),
		turn: llm.UserMessage(text),
	}
	t.turns = append(t.turns, p.turn)
	t.pending = p
	return p, nil
}

// Commit pairs the pending user turn with the assistant reply.
func (p *Pending) Commit(reply llm.Message) {
	if p.done {
		return
	}
	p.t.turns = append(p.t.turns, reply)
	p.finish()
}

// Rollback restores the transcript to exactly what it was before Begin.
func (p *Pending) Rollback() llm.Message {
	if !p.done {
		p.t.turns = p.t.turns[:p.mark]
		p.finish()
	}
	return p.turn
}

func (p *Pending) finish() {
	p.done = true
	p.t.pending = nil
}

// Messages returns a copy of the turns, in conversational order.
func (t *Transcript) Messages() []llm.Message {
	out := make([]llm.Message, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Reset drops every turn.
func (t *Transcript) Reset() {
	t.turns = nil
	t.pending = nil
}
