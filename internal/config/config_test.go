package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testJWTSecret  = "test-secret-key-that-is-at-least-32-characters-long"
	testHMACSecret = "test-hmac-key-that-is-at-least-32-characters-long"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", testJWTSecret)
	t.Setenv("CODE_HMAC_SECRET", testHMACSecret)
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 8*time.Hour, cfg.JWT.SessionTokenExpiry.Duration)
	assert.Equal(t, 12, cfg.Security.BCryptCost)
	assert.Equal(t, MailTransportLog, cfg.Mail.Transport)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.Google.Enabled())
	assert.NotEmpty(t, cfg.CORS.AllowedOrigins)
	assert.Contains(t, cfg.CORS.AllowedMethods, "PATCH")
	assert.Empty(t, cfg.Server.TrustedProxies)
}

func TestLoadWithCustomValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("POSTGRES_HOST", "postgres.example.com")
	t.Setenv("JWT_SESSION_TOKEN_EXPIRY", "1d")
	t.Setenv("MAIL_TRANSPORT", "smtp")
	t.Setenv("MAIL_SMTP_PORT", "2525")
	t.Setenv("ENV", "production")
	t.Setenv("SERVER_TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.1")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "postgres.example.com", cfg.Postgres.Host)
	assert.Equal(t, 24*time.Hour, cfg.JWT.SessionTokenExpiry.Duration)
	assert.Equal(t, MailTransportSMTP, cfg.Mail.Transport)
	assert.Equal(t, 2525, cfg.Mail.SMTPPort)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.Server.TrustedProxies)
}

func TestLoadRejectsMissingSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CODE_HMAC_SECRET", "")

	_, err := Load(context.Background())
	assert.Error(t, err)
}

func TestLoadRejectsShortSecrets(t *testing.T) {
	tests := []struct {
		name string
		jwt  string
		hmac string
	}{
		{name: "short jwt secret", jwt: "short", hmac: testHMACSecret},
		{name: "short hmac secret", jwt: testJWTSecret, hmac: "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", tt.jwt)
			t.Setenv("CODE_HMAC_SECRET", tt.hmac)

			_, err := Load(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsUnknownMailTransport(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAIL_TRANSPORT", "carrier-pigeon")

	_, err := Load(context.Background())
	assert.ErrorContains(t, err, "MAIL_TRANSPORT")
}

func TestLoadRequiresCompleteGoogleConfig(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")

	_, err := Load(context.Background())
	assert.ErrorContains(t, err, "GOOGLE_CLIENT_SECRET")

	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("GOOGLE_REDIRECT_URL", "https://placereviews.app/oauth/google")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.True(t, cfg.Google.Enabled())
}

func TestPostgresDSN(t *testing.T) {
	pg := PostgresConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "test_user",
		Password: "test_password",
		DBName:   "test_db",
		SSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=test_user password=test_password dbname=test_db sslmode=disable"
	assert.Equal(t, expected, pg.DSN())
}

func TestRedisAddress(t *testing.T) {
	redis := RedisConfig{Host: "localhost", Port: "6379"}
	assert.Equal(t, "localhost:6379", redis.Address())
}

func TestDurationEnvDecode(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "8h", want: 8 * time.Hour},
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: " 90s ", want: 90 * time.Second},
		{in: "", want: 0},
		{in: "xd", wantErr: true},
		{in: "-5m", wantErr: true},
		{in: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Duration
			err := d.EnvDecode(context.Background(), tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration)
		})
	}
}
