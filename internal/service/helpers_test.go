package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"bitwise74/todo-api/config"
	"bitwise74/todo-api/db"
	"bitwise74/todo-api/pkg/apperr"
	"bitwise74/todo-api/pkg/security"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func testHasher() *security.ArgonHash {
	return &security.ArgonHash{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Created up front so the "mounted in docker" check passes in containers
	p := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, os.WriteFile(p, nil, 0o600))

	d, err := db.New(config.Database{Driver: "sqlite", DSN: p})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := d.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return d
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []VerificationMail
	err  error
}

func (f *fakeMailer) SendVerificationMail(_ context.Context, m *VerificationMail) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, *m)
	return nil
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeMailer) last(t *testing.T) VerificationMail {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	require.NotEmpty(t, f.sent, "no mail was sent")
	return f.sent[len(f.sent)-1]
}

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type authFixture struct {
	auth     *AuthService
	sessions *SessionIssuer
	mailer   *fakeMailer
	clock    *clock
	db       *gorm.DB
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	d := newTestDB(t)
	c := &clock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	m := &fakeMailer{}
	s := NewSessionIssuer(d, testSecret, "Todo API")

	a := NewAuthService(d, testHasher(), s, m, config.Verification{CodeTTL: 10, ResendCooldown: 1})
	a.now = c.now

	return &authFixture{auth: a, sessions: s, mailer: m, clock: c, db: d}
}

func requireAppErr(t *testing.T, err error, kind apperr.Kind, msg string) *apperr.Error {
	t.Helper()

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, kind, e.Kind, "unexpected kind, error: %v", err)

	if msg != "" {
		if kind == apperr.KindValidation {
			require.Contains(t, e.Fields, msg)
		} else {
			require.Equal(t, msg, e.Message)
		}
	}

	return e
}
