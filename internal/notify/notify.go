// Package notify turns bus events into outbound email.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"

	"github.com/nfrund/goonies/internal/domain"
	"github.com/nfrund/goonies/internal/pubsub"
)

// PasswordResetRequested is published by the forgot-password endpoint.
var PasswordResetRequested = pubsub.NewEvent[domain.PasswordResetRequested]("auth.password_reset.requested")

const resetSubject = "Réinitialisation de votre mot de passe - Goonies"

var resetBody = template.Must(template.New("reset").Parse(`<p>Bonjour {{.Username}},</p>
<p>Pour réinitialiser votre mot de passe, cliquez sur le lien ci-dessous :</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>Ce lien expirera dans {{.Expiry}}.</p>
<p>L'équipe Goonies</p>
`))

// ResetMailer emails reset links.
type ResetMailer struct {
	sender  domain.EmailSender
	baseURL string
}

// NewResetMailer creates a mailer whose links point at baseURL, the public
// origin of the web client.
func NewResetMailer(sender domain.EmailSender, baseURL string) *ResetMailer {
	return &ResetMailer{sender: sender, baseURL: baseURL}
}

// ResetLink is the page the member opens to choose a new password.
func (m *ResetMailer) ResetLink(token string) string {
	return m.baseURL + "/reset-password?token=" + url.QueryEscape(token)
}

// Handle sends the email for one request. Requests without an address are
// skipped.
func (m *ResetMailer) Handle(ctx context.Context, ev domain.PasswordResetRequested) error {
	if ev.Email == "" {
		return nil
	}
	var body bytes.Buffer
	err := resetBody.Execute(&body, map[string]string{
		"Username": ev.Username,
		"Link":     m.ResetLink(ev.Token),
		"Expiry":   "1 heure",
	})
	if err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}
	if err := m.sender.Send(ctx, ev.Email, resetSubject, body.String()); err != nil {
		return fmt.Errorf("send reset email to user %s: %w", ev.UserID, err)
	}
	slog.InfoContext(ctx, "Password reset email sent", "user_id", ev.UserID)
	return nil
}

// Subscribe attaches the mailer to the bus.
func (m *ResetMailer) Subscribe(ctx context.Context, sub pubsub.Subscriber) error {
	return pubsub.Subscribe(ctx, sub, PasswordResetRequested, m.Handle)
}
