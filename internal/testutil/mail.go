package testutil

import (
	"net/url"
	"strings"
	"testing"

	"github.com/dom/roleplay-api/internal/mail"
)

// ResetTokenFromEmail pulls the raw reset token out of the link in a
// forgot-password email.
func ResetTokenFromEmail(t *testing.T, email mail.Email) string {
	t.Helper()

	for _, line := range strings.Split(email.TextBody, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "http") {
			continue
		}
		u, err := url.Parse(line)
		if err != nil {
			continue
		}
		if token := u.Query().Get("token"); token != "" {
			return token
		}
	}

	t.Fatalf("no reset link found in email body: %q", email.TextBody)
	return ""
}
