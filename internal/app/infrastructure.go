package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/placereviews/auth-api/internal/config"
	"github.com/placereviews/auth-api/internal/mail"
	"github.com/placereviews/auth-api/migrations"
	"github.com/placereviews/auth-api/pkg/database"
	"github.com/placereviews/auth-api/pkg/observability"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

const serviceName = "auth-api"

type Infrastructure interface {
	Postgres() *database.Postgres
	Redis() *database.Redis
	Mailer() mail.Mailer
	Logger() *zap.Logger
	MetricsHandler() http.Handler
	MeterProvider() *metric.MeterProvider

	Shutdown(ctx context.Context) error
}

type infrastructure struct {
	postgres       *database.Postgres
	redis          *database.Redis
	mailer         mail.Mailer
	logger         *zap.Logger
	metricsHandler http.Handler
	meterProvider  *metric.MeterProvider
}

var _ Infrastructure = &infrastructure{}

// NewInfrastructure connects every backing service and applies pending
// schema migrations. On failure, whatever was opened is closed again.
func NewInfrastructure(ctx context.Context, cfg config.Config) (_ *infrastructure, err error) {
	i := &infrastructure{}
	defer func() {
		if err != nil {
			i.closeOpened()
		}
	}()

	i.logger, err = observability.InitLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	i.postgres, err = database.NewPostgres(ctx, cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err = i.postgres.Migrate(migrations.FS); err != nil {
		return nil, err
	}
	i.logger.Info("Database schema is up to date")

	i.redis, err = database.NewRedis(ctx, cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	i.mailer, err = newMailer(cfg.Mail, i.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	i.meterProvider, i.metricsHandler, err = observability.InitTelemetry(serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	return i, nil
}

// newMailer picks the code delivery transport
func newMailer(cfg config.MailConfig, logger *zap.Logger) (mail.Mailer, error) {
	switch cfg.Transport {
	case config.MailTransportSMTP:
		m, err := mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.From,
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.MailTransportAMQP:
		m, err := mail.NewAMQPMailer(mail.AMQPConfig{
			URL:        cfg.AMQPURL,
			Exchange:   cfg.AMQPExchange,
			RoutingKey: cfg.AMQPRoutingKey,
			From:       cfg.From,
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.MailTransportLog:
		logger.Warn("Codes are logged instead of mailed", zap.String("transport", cfg.Transport))
		return mail.NewLogMailer(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
}

func (i *infrastructure) closeOpened() {
	if i.mailer != nil {
		_ = i.mailer.Close()
	}
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.postgres != nil {
		_ = i.postgres.Close()
	}
}

func (i *infrastructure) Postgres() *database.Postgres {
	return i.postgres
}

func (i *infrastructure) Redis() *database.Redis {
	return i.redis
}

func (i *infrastructure) Mailer() mail.Mailer {
	return i.mailer
}

func (i *infrastructure) Logger() *zap.Logger {
	return i.logger
}

func (i *infrastructure) MetricsHandler() http.Handler {
	return i.metricsHandler
}

func (i *infrastructure) MeterProvider() *metric.MeterProvider {
	return i.meterProvider
}

func (i *infrastructure) Shutdown(ctx context.Context) error {
	errs := make(chan error, 4)

	go func() { errs <- i.postgres.Close() }()
	go func() { errs <- i.redis.Close() }()
	go func() { errs <- i.mailer.Close() }()
	go func() { errs <- observability.Shutdown(ctx, i.meterProvider, i.logger) }()

	return errors.Join(<-errs, <-errs, <-errs, <-errs)
}
