package core

import "strings"

// DoneKeyword ends account entry. Compared case-insensitively.
const DoneKeyword = "done"

type State int

const (
	StateAwaitingStart State = iota
	StateAwaitingName
	StateAwaitingAccount
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateAwaitingStart:
		return "awaiting_start"
	case StateAwaitingName:
		return "awaiting_name"
	case StateAwaitingAccount:
		return "awaiting_account"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Action tells the caller which side effect and reply a transition requires.
type Action int

const (
	ActionNone Action = iota
	ActionAlreadyVerified
	ActionAskName
	ActionAskFirstAccount
	ActionAccountAccepted
	ActionAccountRejected
	ActionIssueCode
	ActionNoAccounts
)

// Session is the per-chat verification dialogue.
type Session struct {
	ID       string
	ChatID   int64
	State    State
	Name     string
	Accounts []string
}

// Event is one dialogue input together with the lookups the caller already
// performed for it.
type Event struct {
	Text string
	// AlreadyVerified is consulted in StateAwaitingStart.
	AlreadyVerified bool
	// Known is consulted in StateAwaitingAccount for non-"done" input.
	Known bool
}

// IsDone reports whether text is the completion keyword.
func IsDone(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), DoneKeyword)
}

// Next advances the dialogue by one input. It performs no I/O; the returned
// Action names the reply and any effect the caller must carry out.
func Next(s Session, ev Event) (Session, Action) {
	text := strings.TrimSpace(ev.Text)

	switch s.State {
	case StateAwaitingStart:
		if ev.AlreadyVerified {
			s.State = StateCompleted
			return s, ActionAlreadyVerified
		}
		s.State = StateAwaitingName
		return s, ActionAskName

	case StateAwaitingName:
		s.Name = text
		s.Accounts = []string{}
		s.State = StateAwaitingAccount
		return s, ActionAskFirstAccount

	case StateAwaitingAccount:
		if IsDone(text) {
			s.State = StateCompleted
			if len(s.Accounts) > 0 {
				return s, ActionIssueCode
			}
			return s, ActionNoAccounts
		}
		if ev.Known {
			s.Accounts = append(append([]string(nil), s.Accounts...), text)
			return s, ActionAccountAccepted
		}
		return s, ActionAccountRejected
	}

	return s, ActionNone
}
