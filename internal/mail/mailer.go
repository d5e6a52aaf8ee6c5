// Package mail delivers one-time codes to account owners.
//
// Every transport blocks until the message has been accepted (by the SMTP
// server or by the broker), so callers may persist code fingerprints only
// after Send returns nil.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/placereviews/auth-api/internal/domain"
)

// CodeMessage is a one-time code addressed to an account owner.
type CodeMessage struct {
	To       string
	Username string
	Purpose  domain.CodePurpose
	Code     string
	TTL      time.Duration
}

// Mailer sends one-time codes.
type Mailer interface {
	SendCode(ctx context.Context, msg CodeMessage) error
	Close() error
}

const siteName = "Place Reviews"

var subjects = map[domain.CodePurpose]string{
	domain.CodePurposeVerification:  siteName + " verification code",
	domain.CodePurposePasswordReset: siteName + " password reset code",
}

var bodyTemplate = template.Must(template.New("code").Parse(`Hi {{.Username}},

{{if .Reset}}Use this code to reset your {{.SiteName}} password:{{else}}Use this code to verify your {{.SiteName}} account:{{end}}

{{.Code}}

The code is valid for {{printf "%.f" .TTL.Minutes}} minutes.

If you did not request it, you can ignore this email.
`))

// Subject returns the subject line for msg.
func Subject(msg CodeMessage) string {
	if s, ok := subjects[msg.Purpose]; ok {
		return s
	}
	return siteName + " code"
}

// Body renders the plain-text body for msg.
func Body(msg CodeMessage) (string, error) {
	var buf bytes.Buffer
	err := bodyTemplate.Execute(&buf, struct {
		CodeMessage
		SiteName string
		Reset    bool
	}{
		CodeMessage: msg,
		SiteName:    siteName,
		Reset:       msg.Purpose == domain.CodePurposePasswordReset,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render mail body: %w", err)
	}
	return buf.String(), nil
}
