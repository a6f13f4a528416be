package model

import (
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
)

// Transcript is the ordered, append-only message history of one session.
// It is owned by a single shell and never shared across goroutines.
type Transcript struct {
	id       string
	messages []*schema.Message
}

// NewTranscript starts a session, seeded with the system prompt when one is given.
func NewTranscript(systemPrompt string) *Transcript {
	t := &Transcript{id: uuid.NewString()}
	if systemPrompt != "" {
		t.messages = append(t.messages, schema.SystemMessage(systemPrompt))
	}
	return t
}

func (t *Transcript) ID() string {
	return t.id
}

// Append adds messages to the end of the transcript, skipping nils.
func (t *Transcript) Append(msgs ...*schema.Message) {
	for _, m := range msgs {
		if m != nil {
			t.messages = append(t.messages, m)
		}
	}
}

// Messages returns a copy of the history safe to hand to a provider.
func (t *Transcript) Messages() []*schema.Message {
	out := make([]*schema.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Transcript) Len() int {
	return len(t.messages)
}

// Last returns the most recent message or nil.
func (t *Transcript) Last() *schema.Message {
	if len(t.messages) == 0 {
		return nil
	}
	return t.messages[len(t.messages)-1]
}
