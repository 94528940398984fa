package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/credentials"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// sessionController is the part of session.Controller the CLI drives.
type sessionController interface {
	SignIn(ctx context.Context, cred *credentials.Credential) (*models.Session, error)
	CreateAccount(ctx context.Context, cred *credentials.Credential) (*models.Session, error)
	SignOut()
	Disconnect(ctx context.Context) error
	CurrentSession() *models.Session
	SendEmailVerification(ctx context.Context) error
	Subscribe(o session.Observer) func()
	Close()
}

type phoneFlow interface {
	RequestVerification(ctx context.Context, countryCode, number string, timeout time.Duration, cb credentials.PhoneCallbacks)
	ResendVerification(ctx context.Context, countryCode, number string, timeout time.Duration, resendToken string, cb credentials.PhoneCallbacks)
	CompleteVerification(pending *models.PendingVerification, code string) (*credentials.Credential, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config  *config.Config
	session sessionController
	phone   phoneFlow
	backend pinger
	closer  io.Closer
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer

	mu      sync.Mutex
	Mode    Mode
	pending *models.PendingVerification
	country string
	number  string
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	apiClient, err := client.NewGophAuthClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	ctrl := session.NewController(apiClient, logger)
	phone := credentials.NewPhoneProvider(apiClient, logger)

	a := newApp(c, ctrl, phone, apiClient, bufio.NewReader(os.Stdin), os.Stdout)
	a.closer = apiClient
	a.logger = logger
	return a, nil
}

func newApp(c *config.Config, ctrl sessionController, phone phoneFlow, backend pinger, reader *bufio.Reader, out io.Writer) *App {
	a := &App{
		config:  c,
		session: ctrl,
		phone:   phone,
		backend: backend,
		logger:  logging.Nop(),
		reader:  reader,
		out:     &lockedWriter{w: out},
	}
	ctrl.Subscribe(session.ObserverFunc(a.printStateChange))
	return a
}

// Run starts the online watcher and the REPL, and releases everything once
// the user leaves.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	defer func() {
		a.session.Close()
		if a.closer != nil {
			_ = a.closer.Close()
		}
	}()

	fmt.Fprintln(a.out, "Welcome to gophauth CLI (type 'help' for commands)")

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

// StartOnlineStatusWatcher probes the backend every interval until ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.backend.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) getStatus() string {
	s := "signed out"
	if cur := a.session.CurrentSession(); cur != nil {
		s = displayName(cur)
	}
	a.mu.Lock()
	mode := a.Mode
	a.mu.Unlock()
	if mode != "" {
		s = s + " " + string(mode)
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) printStateChange(e session.Event) {
	switch e.State {
	case session.SignedIn:
		fmt.Fprintf(a.out, "* signed in as %s via %s\n", displayName(e.Session), e.Session.Provider)
	case session.SignedOut:
		fmt.Fprintln(a.out, "* signed out")
	}
}

func displayName(s *models.Session) string {
	switch {
	case s.Email != "":
		return s.Email
	case s.PhoneNumber != "":
		return s.PhoneNumber
	default:
		return s.ID
	}
}

// lockedWriter serializes writes from the REPL and the notification goroutine.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
