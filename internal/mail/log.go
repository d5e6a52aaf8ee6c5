package mail

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer writes codes to the log instead of delivering them.
// Meant for local development only.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendCode(_ context.Context, msg CodeMessage) error {
	m.logger.Info("Mail delivery skipped",
		zap.String("to", msg.To),
		zap.String("subject", Subject(msg)),
		zap.String("purpose", string(msg.Purpose)),
		zap.String("code", msg.Code),
	)
	return nil
}

func (m *LogMailer) Close() error {
	return nil
}
