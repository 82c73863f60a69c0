package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fitsync/fitsync/client/garmin"
)

// Credentials are used only when a fresh login is needed.
type Credentials struct {
	Email    string
	Password string
}

// Manager hands out authenticated Garmin clients, reusing the stored
// session when it is still good.
type Manager struct {
	store      *Store
	creds      Credentials
	clientOpts []garmin.Option
	now        func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClientOptions passes options to every garmin.Client the manager builds.
func WithClientOptions(opts ...garmin.Option) Option {
	return func(m *Manager) {
		m.clientOpts = append(m.clientOpts, opts...)
	}
}

// WithClock replaces time.Now for session age checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager opens (and if needed creates) the session directory.
func NewManager(dir string, creds Credentials, opts ...Option) (*Manager, error) {
	store, err := NewStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open session directory: %w", err)
	}
	m := &Manager{store: store, creds: creds, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Store exposes the underlying session file.
func (m *Manager) Store() *Store { return m.store }

// Login returns an authenticated client. Unless force is set, a stored
// session is tried first; if it is missing, too old or rejected, Login falls
// back to the configured credentials and saves the new session. A failure to
// save is logged and does not fail the login.
func (m *Manager) Login(ctx context.Context, force bool) (*garmin.Client, error) {
	if !force && m.store.Exists() {
		client, err := m.reuse(ctx)
		if err == nil {
			loginsTotal.WithLabelValues("reused").Inc()
			log.Info().Str("path", m.store.Path()).Msg("using existing session")
			return client, nil
		}
		reuseFailuresTotal.WithLabelValues(reuseFailureReason(err)).Inc()
		log.Warn().Err(err).Msg("stored session not usable, logging in with credentials")
	}
	return m.fresh(ctx)
}

func (m *Manager) reuse(ctx context.Context) (*garmin.Client, error) {
	rec, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	now := m.now()
	if rec.Expired(now) {
		return nil, fmt.Errorf("%w: created %s, %d days ago", ErrSessionExpired,
			rec.CreatedAt.Format(time.RFC3339), int(rec.Age(now).Hours()/24))
	}

	client, err := garmin.New(m.clientOpts...)
	if err != nil {
		return nil, err
	}
	if err := client.Resume(rec.Tokens); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionInvalid, err)
	}
	if _, err := client.FullName(ctx); err != nil {
		if garmin.IsAuthenticationError(err) {
			return nil, fmt.Errorf("%w: %w", ErrSessionInvalid, err)
		}
		return nil, fmt.Errorf("validate session: %w", err)
	}
	log.Debug().Str("session_id", rec.ID.String()).Dur("age", rec.Age(now)).Msg("stored session validated")
	return client, nil
}

func (m *Manager) fresh(ctx context.Context) (*garmin.Client, error) {
	if m.creds.Email == "" || m.creds.Password == "" {
		return nil, ErrCredentialsRequired
	}

	client, err := garmin.New(m.clientOpts...)
	if err != nil {
		return nil, err
	}
	log.Info().Str("account", m.creds.Email).Msg("logging in to Garmin Connect")
	if err := client.Login(ctx, m.creds.Email, m.creds.Password); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	loginsTotal.WithLabelValues("fresh").Inc()

	rec := NewRecord(client.Tokens(), m.creds.Email, m.now())
	if err := m.store.Save(rec); err != nil {
		log.Warn().Err(err).Str("path", m.store.Path()).Msg("could not save session")
	} else {
		log.Info().Str("path", m.store.Path()).Str("session_id", rec.ID.String()).Msg("session saved")
	}
	return client, nil
}

// Export returns the session file as standard padded base64.
func (m *Manager) Export() (string, error) {
	data, err := m.store.ReadRaw()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Import decodes an exported session and writes it to the session file
// byte for byte. Surrounding whitespace is ignored. Invalid input leaves the
// existing file untouched.
func (m *Manager) Import(encoded string) error {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	if err := m.store.WriteRaw(data); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	log.Info().Str("path", m.store.Path()).Msg("session imported")
	return nil
}

// Resolve imports encoded first when it is non-empty, then logs in reusing
// whatever session is on disk.
func (m *Manager) Resolve(ctx context.Context, encoded string) (*garmin.Client, error) {
	if encoded != "" {
		if err := m.Import(encoded); err != nil {
			return nil, err
		}
	}
	return m.Login(ctx, false)
}
