package email

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nfrund/goonies/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender("Goonies <a@b.c>", slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, s.Send(context.Background(), "mikey@goondocks.test", "Hi", "<p>hey</p>"))
	assert.Contains(t, buf.String(), "mikey@goondocks.test")
	assert.Contains(t, buf.String(), "subject=Hi")
}

func TestResendSender(t *testing.T) {
	var got resendPayload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewResendSender("re_123", "", srv.URL)
	require.NoError(t, s.Send(context.Background(), "data@goondocks.test", "Reset", "<b>x</b>"))

	assert.Equal(t, "Bearer re_123", auth)
	assert.Equal(t, resendPayload{From: "Goonies <onboarding@resend.dev>", To: "data@goondocks.test", Subject: "Reset", HTML: "<b>x</b>"}, got)
}

func TestResendSender_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	err := NewResendSender("k", "x@y.z", srv.URL).Send(context.Background(), "a@b.c", "s", "b")
	assert.ErrorContains(t, err, "status 422")
}

func TestNewEmailService(t *testing.T) {
	s, err := NewEmailService(&config.Config{EmailProvider: "log"})
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	_, err = NewEmailService(&config.Config{EmailProvider: "resend"})
	assert.ErrorContains(t, err, "EMAIL_API_KEY")

	s, err = NewEmailService(&config.Config{EmailProvider: "resend", EmailAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &ResendSender{}, s)

	_, err = NewEmailService(&config.Config{EmailProvider: "pigeon"})
	assert.Error(t, err)
}
