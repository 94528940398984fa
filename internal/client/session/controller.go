package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/gophauth/internal/client/credentials"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// ErrClosed is returned by operations on a closed Controller.
var ErrClosed = errors.New("session controller closed")

// Backend is the remote identity service as seen by the controller.
type Backend interface {
	SignIn(ctx context.Context, req models.SignInRequest) (*models.Session, error)
	CreateAccount(ctx context.Context, email, password string) (*models.Session, error)
	SendEmailVerification(ctx context.Context, s *models.Session) error
	Unlink(ctx context.Context, s *models.Session) error
}

type Controller struct {
	backend Backend
	logger  logging.Logger

	mu         sync.Mutex
	state      State
	session    *models.Session
	generation uint64
	observers  []*subscription
	closed     bool

	verifying atomic.Int32

	events *dispatcher
}

func NewController(backend Backend, logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.With("module", "session")
	return &Controller{
		backend: backend,
		logger:  logger,
		state:   SignedOut,
		events:  newDispatcher(logger),
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentSession returns a copy of the active session, or nil. While
// Authenticating it still reports the session that was active before.
func (c *Controller) CurrentSession() *models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copySession(c.session)
}

// SignIn submits cred to the backend and, on success, replaces the current
// session. On common.ErrAccountCollision the controller ends up SignedOut.
// Any other error leaves the previous state untouched.
func (c *Controller) SignIn(ctx context.Context, cred *credentials.Credential) (*models.Session, error) {
	req, gen, err := c.begin(cred)
	if err != nil {
		return nil, err
	}

	c.logger.Info(ctx, "sign-in started", "provider", req.Kind)
	s, err := c.backend.SignIn(ctx, req)
	return c.complete(ctx, gen, req.Kind, s, err)
}

// CreateAccount registers a new email/password account and signs it in.
func (c *Controller) CreateAccount(ctx context.Context, cred *credentials.Credential) (*models.Session, error) {
	if cred != nil && cred.Kind() != models.ProviderPassword {
		return nil, fmt.Errorf("%w: accounts can only be created with a password credential", common.ErrValidation)
	}
	req, gen, err := c.begin(cred)
	if err != nil {
		return nil, err
	}

	c.logger.Info(ctx, "account creation started", "email", req.Email)
	s, err := c.backend.CreateAccount(ctx, req.Email, req.Password)
	return c.complete(ctx, gen, req.Kind, s, err)
}

// begin moves to Authenticating and consumes the credential.
func (c *Controller) begin(cred *credentials.Credential) (models.SignInRequest, uint64, error) {
	if cred == nil {
		return models.SignInRequest{}, 0, fmt.Errorf("%w: credential is required", common.ErrValidation)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return models.SignInRequest{}, 0, ErrClosed
	}
	if c.state == Authenticating {
		return models.SignInRequest{}, 0, common.ErrAlreadyAuthenticating
	}
	req, err := cred.Consume()
	if err != nil {
		return models.SignInRequest{}, 0, err
	}

	c.state = Authenticating
	c.generation++
	return req, c.generation, nil
}

func (c *Controller) complete(ctx context.Context, gen uint64, kind models.ProviderKind, s *models.Session, err error) (*models.Session, error) {
	if err == nil && s == nil {
		err = fmt.Errorf("%w: backend returned no session", common.ErrorInternal)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen || c.state != Authenticating {
		c.logger.Info(ctx, "sign-in result discarded", "provider", kind)
		return nil, common.ErrAuthenticationCanceled
	}

	if err != nil {
		c.logger.Warn(ctx, "sign-in failed", "provider", kind, "error", err)
		if errors.Is(err, common.ErrAccountCollision) {
			c.signOutLocked()
			return nil, err
		}
		c.restoreLocked()
		return nil, err
	}

	next := copySession(s)
	if next.Provider == "" {
		next.Provider = kind
	}
	c.session = next
	c.state = SignedIn
	c.notifyLocked(Event{State: SignedIn, Session: copySession(next)})

	c.logger.Info(ctx, "signed in", "provider", kind, "uid", next.ID)
	return copySession(next), nil
}

// SignOut clears the session. It is a no-op when already signed out and
// cancels an in-flight sign-in.
func (c *Controller) SignOut() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == SignedOut {
		return
	}
	if c.state == Authenticating {
		c.generation++
	}
	c.signOutLocked()
}

// Disconnect revokes the link between the account and the provider used to
// sign in, then signs out. The session is kept if the backend call fails.
//
// It works while a re-authentication is in flight, against the session
// CurrentSession reports. When the unlink succeeds and that session is still
// current, the in-flight attempt is canceled along with it, since the account
// it targets may be gone. If a concurrent sign-in already replaced the
// session, the new one is left alone.
func (c *Controller) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	s := copySession(c.session)
	c.mu.Unlock()

	if s == nil {
		return common.ErrNoActiveSession
	}

	if err := c.backend.Unlink(ctx, s); err != nil {
		c.logger.Warn(ctx, "unlink failed", "provider", s.Provider, "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil || c.session.ID != s.ID || c.session.Provider != s.Provider {
		c.logger.Info(ctx, "provider disconnected after session changed", "provider", s.Provider, "uid", s.ID)
		return nil
	}
	if c.state == Authenticating {
		c.generation++
	}
	c.signOutLocked()
	c.logger.Info(ctx, "provider disconnected", "provider", s.Provider, "uid", s.ID)
	return nil
}

// SendEmailVerification asks the backend to mail a verification link to the
// session's address. VerificationInFlight is true until every call settles.
func (c *Controller) SendEmailVerification(ctx context.Context) error {
	c.mu.Lock()
	s := copySession(c.session)
	c.mu.Unlock()

	if s == nil {
		return common.ErrNoActiveSession
	}

	c.verifying.Add(1)
	defer c.verifying.Add(-1)

	if err := c.backend.SendEmailVerification(ctx, s); err != nil {
		c.logger.Warn(ctx, "email verification failed", "uid", s.ID, "error", err)
		return err
	}
	c.logger.Info(ctx, "email verification sent", "uid", s.ID, "email", s.Email)
	return nil
}

// VerificationInFlight reports whether any SendEmailVerification call is
// waiting for the backend.
func (c *Controller) VerificationInFlight() bool {
	return c.verifying.Load() > 0
}

// Subscribe registers o for future transitions. The returned function removes
// it; events already queued are not delivered to a removed observer.
func (c *Controller) Subscribe(o Observer) (unsubscribe func()) {
	sub := &subscription{observer: o}

	c.mu.Lock()
	c.observers = append(c.observers, sub)
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.removed.Store(true)
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.observers {
				if s == sub {
					c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
					break
				}
			}
		})
	}
}

// Close drains pending notifications and stops the dispatcher. It must not be
// called from an observer.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.events.close()
}

func (c *Controller) signOutLocked() {
	had := c.session != nil
	c.session = nil
	c.state = SignedOut
	if had {
		c.notifyLocked(Event{State: SignedOut})
	}
}

func (c *Controller) restoreLocked() {
	if c.session != nil {
		c.state = SignedIn
		return
	}
	c.state = SignedOut
}

// notifyLocked snapshots the observer list so late subscribers miss the event.
func (c *Controller) notifyLocked(e Event) {
	subs := make([]*subscription, len(c.observers))
	copy(subs, c.observers)
	c.events.enqueue(e, subs)
}

func copySession(s *models.Session) *models.Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
