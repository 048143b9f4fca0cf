package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepExpiredCodes(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	ttl := 10 * time.Minute

	f.register(t, "Old", "old@x.com", "pw123456")
	f.clock.advance(5 * time.Minute)
	f.register(t, "New", "new@x.com", "pw123456")

	// Exactly ttl after the first code was issued
	now := f.clock.t.Add(5 * time.Minute)

	n, err := SweepExpiredCodes(ctx, f.db, now, ttl)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	old := f.user(t, "old@x.com")
	assert.Nil(t, old.VerificationCodeHash)
	assert.Nil(t, old.VerificationCodeIssuedAt)
	assert.True(t, f.user(t, "new@x.com").HasActiveCode())

	n, err = SweepExpiredCodes(ctx, f.db, now, ttl)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCodeCleanup_StopsWithContext(t *testing.T) {
	f := newAuthFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		CodeCleanup(ctx, time.Millisecond, time.Minute, f.db)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup didn't stop")
	}
}
