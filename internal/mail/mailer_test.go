package mail

import (
	"context"
	"testing"
	"time"

	"github.com/placereviews/auth-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestBody(t *testing.T) {
	tests := []struct {
		name    string
		purpose domain.CodePurpose
		want    string
	}{
		{name: "verification", purpose: domain.CodePurposeVerification, want: "verify your Place Reviews account"},
		{name: "password reset", purpose: domain.CodePurposePasswordReset, want: "reset your Place Reviews password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := Body(CodeMessage{
				To:       "a@x.com",
				Username: "alice",
				Purpose:  tt.purpose,
				Code:     "123456",
				TTL:      5 * time.Minute,
			})
			require.NoError(t, err)

			assert.Contains(t, body, "Hi alice,")
			assert.Contains(t, body, tt.want)
			assert.Contains(t, body, "123456")
			assert.Contains(t, body, "valid for 5 minutes")
		})
	}
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Place Reviews verification code", Subject(CodeMessage{Purpose: domain.CodePurposeVerification}))
	assert.Equal(t, "Place Reviews password reset code", Subject(CodeMessage{Purpose: domain.CodePurposePasswordReset}))
	assert.Equal(t, "Place Reviews code", Subject(CodeMessage{Purpose: "other"}))
}

func TestLogMailer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mailer := NewLogMailer(zap.New(core))

	err := mailer.SendCode(context.Background(), CodeMessage{
		To:      "a@x.com",
		Purpose: domain.CodePurposeVerification,
		Code:    "654321",
	})
	require.NoError(t, err)
	require.NoError(t, mailer.Close())

	entries := logs.FilterMessage("Mail delivery skipped").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "a@x.com", fields["to"])
	assert.Equal(t, "654321", fields["code"])
}

func TestNewSMTPMailer(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "user",
		Password: "secret",
		From:     "Place Reviews <no-reply@placereviews.app>",
	})
	require.NoError(t, err)
	assert.NoError(t, mailer.Close())
}

func TestSMTPMailer_InvalidRecipient(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "no-reply@placereviews.app"})
	require.NoError(t, err)

	err = mailer.SendCode(context.Background(), CodeMessage{To: "not an address", Purpose: domain.CodePurposeVerification})
	assert.ErrorContains(t, err, "invalid recipient address")
}
