package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/placereviews/auth-api/internal/config"
	"github.com/placereviews/auth-api/internal/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthChecker(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name   string
		checks map[string]pinger
		status int
		want   map[string]string
	}{
		{
			name:   "all up",
			checks: map[string]pinger{"postgres": ok, "redis": ok},
			status: http.StatusOK,
			want:   map[string]string{"postgres": "pass", "redis": "pass"},
		},
		{
			name:   "redis down",
			checks: map[string]pinger{"postgres": ok, "redis": down},
			status: http.StatusServiceUnavailable,
			want:   map[string]string{"postgres": "pass", "redis": "fail"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/health", newHealthChecker(zap.NewNop(), tt.checks).Handler)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.status, rec.Code)

			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body.Checks)
			assert.NotContains(t, rec.Body.String(), "connection refused")
		})
	}
}

func TestNewMailer(t *testing.T) {
	logger := zap.NewNop()

	m, err := newMailer(config.MailConfig{Transport: config.MailTransportLog}, logger)
	require.NoError(t, err)
	assert.IsType(t, &mail.LogMailer{}, m)

	m, err = newMailer(config.MailConfig{Transport: config.MailTransportSMTP, SMTPHost: "localhost", SMTPPort: 2525, From: "no-reply@placereviews.app"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &mail.SMTPMailer{}, m)

	_, err = newMailer(config.MailConfig{Transport: "pigeon"}, logger)
	assert.Error(t, err)
}
