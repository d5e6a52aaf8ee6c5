package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/placereviews/auth-api/internal/service"

// authMetrics records auth outcomes through the global meter provider
type authMetrics struct {
	signups       metric.Int64Counter
	signins       metric.Int64Counter
	codesSent     metric.Int64Counter
	codesVerified metric.Int64Counter
}

func newAuthMetrics() *authMetrics {
	meter := otel.Meter(meterName)

	// Names are constant and valid, creation cannot fail.
	signups, _ := meter.Int64Counter("auth.signups",
		metric.WithDescription("Accounts created through signup"))
	signins, _ := meter.Int64Counter("auth.signins",
		metric.WithDescription("Signin attempts by outcome"))
	codesSent, _ := meter.Int64Counter("auth.codes.sent",
		metric.WithDescription("One-time codes sent by purpose and outcome"))
	codesVerified, _ := meter.Int64Counter("auth.codes.verified",
		metric.WithDescription("One-time code checks by purpose and outcome"))

	return &authMetrics{
		signups:       signups,
		signins:       signins,
		codesSent:     codesSent,
		codesVerified: codesVerified,
	}
}

func (m *authMetrics) signup(ctx context.Context) {
	m.signups.Add(ctx, 1)
}

func (m *authMetrics) signin(ctx context.Context, outcome string) {
	m.signins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *authMetrics) codeSent(ctx context.Context, purpose, outcome string) {
	m.codesSent.Add(ctx, 1, metric.WithAttributes(
		attribute.String("purpose", purpose),
		attribute.String("outcome", outcome),
	))
}

func (m *authMetrics) codeVerified(ctx context.Context, purpose, outcome string) {
	m.codesVerified.Add(ctx, 1, metric.WithAttributes(
		attribute.String("purpose", purpose),
		attribute.String("outcome", outcome),
	))
}
