package email

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// ResetMailer delivers password reset tokens over SMTP. It is the
// concrete transport behind the reset coordinator's sender interface;
// the raw token leaves the process only through here.
type ResetMailer struct {
	Settings  SMTPSettings
	FromEmail string
	FromName  string

	// PublicURL is the externally reachable base URL the reset link is
	// built on, e.g. https://accounts.example.com.
	PublicURL *url.URL

	// TokenTTLText appears in the email body, e.g. "30 minutes".
	TokenTTLText string
}

func (m *ResetMailer) SendPasswordReset(ctx context.Context, toEmail, rawToken string) error {
	if m.FromEmail == "" {
		return fmt.Errorf("reset mailer: from email not configured")
	}

	link, err := m.resetLink(rawToken)
	if err != nil {
		return err
	}

	ttl := m.TokenTTLText
	if ttl == "" {
		ttl = "30 minutes"
	}
	body := strings.Join([]string{
		"We received a request to reset the password for your account.",
		"",
		"Reset your password using this link:",
		link,
		"",
		"This link expires in " + ttl + " and can be used once.",
		"If you did not request a password reset, you can ignore this email.",
	}, "\n")

	return SendSMTP(m.Settings, Message{
		FromName:  m.FromName,
		FromEmail: m.FromEmail,
		ToEmail:   toEmail,
		Subject:   "Reset your password",
		TextBody:  body,
	})
}

func (m *ResetMailer) resetLink(rawToken string) (string, error) {
	if m.PublicURL == nil {
		return "", fmt.Errorf("reset mailer: public url not configured")
	}
	u := *m.PublicURL
	u.Path = "/reset-password"
	u.RawQuery = "token=" + url.QueryEscape(rawToken)
	return u.String(), nil
}
