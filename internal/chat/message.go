// Package chat implements the conversational command layer: a validated
// command registry, the session message queue and the engine that narrates
// assistant and user turns.
package chat

import "time"

// AuthorGaia is the author recorded on assistant turns.
const AuthorGaia = "Gaia"

// Kind classifies how a message should be rendered.
type Kind string

const (
	KindNormal  Kind = "normal"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// Action is a clickable reference to a registry command embedded in a
// message.
type Action struct {
	Caption string `json:"caption"`
	Command string `json:"command"`
}

// Message is one turn of the conversation. A turn narrated as a placeholder
// keeps InProcess true until it is finalized in place by id.
type Message struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Kind      Kind      `json:"kind"`
	TimeStamp time.Time `json:"timeStamp"`
	InProcess bool      `json:"inProcess"`
	Actions   []Action  `json:"actions,omitempty"`
}

// Queue is the ordered, append-only log of messages in a session. It is
// owned by the engine; consumers only ever see snapshots.
type Queue struct {
	messages []Message
}

func (q *Queue) enqueue(m Message) {
	q.messages = append(q.messages, m)
}

// update replaces the content of the message with the given id and marks it
// finalized. It reports whether the id was known.
func (q *Queue) update(id, text string, actions []Action) bool {
	for i := range q.messages {
		if q.messages[i].ID == id {
			q.messages[i].Text = text
			q.messages[i].Actions = actions
			q.messages[i].InProcess = false
			return true
		}
	}
	return false
}

// Len reports the number of messages enqueued so far.
func (q *Queue) Len() int {
	return len(q.messages)
}

// Snapshot returns a copy of the queue in insertion order.
func (q *Queue) Snapshot() []Message {
	out := make([]Message, len(q.messages))
	copy(out, q.messages)
	return out
}
