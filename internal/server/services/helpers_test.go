package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/cache"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/providers"
	"github.com/dmitrijs2005/gophauth/internal/server/rate"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

type sentSMS struct{ to, body string }

type fakeSMS struct {
	mu   sync.Mutex
	sent []sentSMS
	err  error
}

func (f *fakeSMS) SendSMS(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentSMS{to, body})
	return nil
}

// lastCode returns the code from the most recent message.
func (f *fakeSMS) lastCode(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no sms sent")
	}
	return strings.Fields(f.sent[len(f.sent)-1].body)[0]
}

type sentMail struct{ to, subject, text, html string }

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) SendMail(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, text, html})
	return nil
}

type fakeVerifier struct {
	id  *providers.Identity
	err error

	gotToken, gotSecret string
}

func (f *fakeVerifier) Verify(_ context.Context, token, secret string) (*providers.Identity, error) {
	f.gotToken, f.gotSecret = token, secret
	if f.err != nil {
		return nil, f.err
	}
	return f.id, nil
}

type signInEvent struct {
	provider string
	err      error
}

type recordingObserver struct {
	mu      sync.Mutex
	signIns []signInEvent
	phone   []string
	email   []string
}

func (o *recordingObserver) ObserveSignIn(p string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.signIns = append(o.signIns, signInEvent{p, err})
}

func (o *recordingObserver) ObservePhoneCode(r string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.phone = append(o.phone, r)
}

func (o *recordingObserver) ObserveEmail(a string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.email = append(o.email, a)
}

// laggyCache widens the window between a read and the next write, the way a
// network round-trip to Redis does.
type laggyCache struct {
	cache.Cache
	lag time.Duration
}

func (c laggyCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.Cache.Get(ctx, key)
	time.Sleep(c.lag)
	return b, err
}

type fixture struct {
	svc      *IdentityService
	rm       *repomanager.InMemoryRepositoryManager
	cfg      *config.Config
	sms      *fakeSMS
	mailer   *fakeMailer
	google   *fakeVerifier
	twitter  *fakeVerifier
	observer *recordingObserver
	clock    time.Time
}

func (f *fixture) advance(d time.Duration) { f.clock = f.clock.Add(d) }

func newFixture(t *testing.T, tweak ...func(*config.Config)) *fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	for _, fn := range tweak {
		fn(cfg)
	}

	f := &fixture{
		rm:       repomanager.NewInMemoryRepositoryManager(),
		cfg:      cfg,
		sms:      &fakeSMS{},
		mailer:   &fakeMailer{},
		google:   &fakeVerifier{},
		twitter:  &fakeVerifier{},
		observer: &recordingObserver{},
		clock:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewIdentityService(f.rm, cfg, Deps{
		Providers: providers.Registry{
			models.ProviderGoogle:  f.google,
			models.ProviderTwitter: f.twitter,
		},
		Cache:   cache.NewMemory(time.Hour),
		Limiter: rate.NewMemoryLimiter(cfg.Phone.QuotaPerHour, time.Hour),
		SMS:     f.sms,
		Mailer:  f.mailer,
		Metrics: f.observer,
	})
	f.svc.now = func() time.Time { return f.clock }
	return f
}

var errBoom = errors.New("boom")
