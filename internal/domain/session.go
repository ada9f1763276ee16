package domain

import (
	"time"
)

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// APIRole maps a transcript role to the chat-completions role name.
func (r Role) APIRole() string {
	if r == RoleBot {
		return "assistant"
	}
	return "user"
}

type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type SessionStatus string

const (
	StatusActive SessionStatus = "ACTIVE"
	StatusEnded  SessionStatus = "ENDED"
)

type ChatSession struct {
	ID         string
	Status     SessionStatus
	Transcript []Turn
	StartedAt  time.Time
	EndedAt    time.Time
}

// Record appends a turn to the transcript. Ended sessions are not mutated.
func (s *ChatSession) Record(role Role, text string, at time.Time) (Turn, error) {
	if s.Status == StatusEnded {
		return Turn{}, ErrSessionEnded
	}
	turn := Turn{Role: role, Text: text, Timestamp: at}
	s.Transcript = append(s.Transcript, turn)
	return turn, nil
}

func (s *ChatSession) End(at time.Time) {
	if s.Status == StatusEnded {
		return
	}
	s.Status = StatusEnded
	s.EndedAt = at
}

// State is the controller state of a running session.
type State string

const (
	StateActive             State = "ACTIVE"
	StateCollectingFeedback State = "COLLECTING_FEEDBACK"
	StateEnded              State = "ENDED"
)
