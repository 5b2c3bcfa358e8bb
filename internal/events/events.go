package events

import (
	"encoding/json"
	"time"
)

// Event types emitted while a run progresses.
const (
	RunStarted       = "run.started"
	AttemptStarted   = "attempt.started"
	AttemptEvaluated = "attempt.evaluated"
	AttemptFailed    = "attempt.failed"
	QueryRefined     = "query.refined"
	CandidateSkipped = "candidate.skipped"
	LeadExtracted    = "lead.extracted"
	RunFinished      = "run.finished"
)

const Version = 1

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}

// Notifier receives progress from a run.
type Notifier interface {
	Emit(typ string, data any)
}

type Nop struct{}

func (Nop) Emit(string, any) {}

// Publisher is anything that fans out serialized events, usually a Hub.
type Publisher interface {
	Publish(evt string)
}

// Emitter tags every event with a run id and hands it to a Publisher.
type Emitter struct {
	pub   Publisher
	runID string
}

func NewEmitter(pub Publisher, runID string) *Emitter {
	return &Emitter{pub: pub, runID: runID}
}

func (e *Emitter) Emit(typ string, data any) {
	if e == nil || e.pub == nil {
		return
	}
	e.pub.Publish(MakeEvent(e.runID, typ, Version, data))
}

// Multi forwards to several notifiers.
type Multi []Notifier

func (m Multi) Emit(typ string, data any) {
	for _, n := range m {
		if n != nil {
			n.Emit(typ, data)
		}
	}
}
