package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nfrund/goonies/internal/domain"
	"github.com/nfrund/goonies/internal/pubsub"
	"github.com/nfrund/goonies/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetMailer_Handle(t *testing.T) {
	sender := testutils.NewRecordingSender()
	m := NewResetMailer(sender, "http://app.test")

	err := m.Handle(context.Background(), domain.PasswordResetRequested{
		UserID: "user:1", Username: "mikey", Email: "mikey@goondocks.test", Token: "abc123",
	})
	require.NoError(t, err)

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "mikey@goondocks.test", sent[0].To)
	assert.Equal(t, resetSubject, sent[0].Subject)
	assert.Contains(t, sent[0].HTML, `href="http://app.test/reset-password?token=abc123"`)
	assert.Contains(t, sent[0].HTML, "1 heure")
}

func TestResetMailer_SkipsMissingEmail(t *testing.T) {
	sender := testutils.NewRecordingSender()
	require.NoError(t, NewResetMailer(sender, "http://app.test").Handle(context.Background(), domain.PasswordResetRequested{Token: "x"}))
	assert.Empty(t, sender.Sent())
}

func TestResetMailer_SendFailure(t *testing.T) {
	sender := testutils.NewRecordingSender()
	sender.Err = errors.New("smtp down")
	err := NewResetMailer(sender, "http://app.test").Handle(context.Background(), domain.PasswordResetRequested{Email: "a@b.c"})
	assert.ErrorContains(t, err, "smtp down")
}

func TestResetMailer_Subscribe(t *testing.T) {
	bus := pubsub.NewWatermillBridge()
	defer bus.Close()
	ctx := context.Background()

	sender := testutils.NewRecordingSender()
	require.NoError(t, NewResetMailer(sender, "http://app.test").Subscribe(ctx, bus))

	require.NoError(t, pubsub.Publish(ctx, bus, PasswordResetRequested, "user:2", domain.PasswordResetRequested{
		UserID: "user:2", Username: "data", Email: "data@goondocks.test", Token: "tok",
	}))

	assert.Eventually(t, func() bool { return len(sender.Sent()) == 1 }, 2*time.Second, 10*time.Millisecond)
}
