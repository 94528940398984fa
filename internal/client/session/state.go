package session

import "github.com/dmitrijs2005/gophauth/internal/client/models"

type State int

const (
	SignedOut State = iota
	Authenticating
	SignedIn
)

func (s State) String() string {
	switch s {
	case SignedOut:
		return "signed_out"
	case Authenticating:
		return "authenticating"
	case SignedIn:
		return "signed_in"
	default:
		return "unknown"
	}
}

// Event is delivered to observers after a transition. Session is nil for
// SignedOut.
type Event struct {
	State   State
	Session *models.Session
}

// Observer receives state-changed notifications.
type Observer interface {
	OnStateChanged(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnStateChanged(e Event) { f(e) }
