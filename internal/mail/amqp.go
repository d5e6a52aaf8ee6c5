package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// AMQPConfig holds the broker settings of the queued transport.
type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
	From       string
}

// codeMailJob is the message consumed by the notification worker.
type codeMailJob struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Purpose string `json:"purpose"`
}

// AMQPMailer hands codes to a notification worker through RabbitMQ.
// It runs the channel in confirm mode and waits for the broker ack.
type AMQPMailer struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	ch         *amqp.Channel
	exchange   string
	routingKey string
	from       string
}

// NewAMQPMailer dials the broker and declares the exchange.
func NewAMQPMailer(cfg AMQPConfig) (*AMQPMailer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	return &AMQPMailer{
		conn:       conn,
		ch:         ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		from:       cfg.From,
	}, nil
}

// SendCode publishes the rendered message and waits for the broker confirm.
func (m *AMQPMailer) SendCode(ctx context.Context, msg CodeMessage) error {
	body, err := Body(msg)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(codeMailJob{
		From:    m.from,
		To:      msg.To,
		Subject: Subject(msg),
		Body:    body,
		Purpose: string(msg.Purpose),
	})
	if err != nil {
		return fmt.Errorf("failed to encode mail job: %w", err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, publishTimeout)
		defer cancel()
	}

	m.mu.Lock()
	confirm, err := m.ch.PublishWithDeferredConfirmWithContext(ctx, m.exchange, m.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		Body:         payload,
	})
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish mail job: %w", err)
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to confirm mail job: %w", err)
	}
	if !acked {
		return errors.New("broker rejected mail job")
	}

	return nil
}

// Close closes the channel and the connection.
func (m *AMQPMailer) Close() error {
	return errors.Join(m.ch.Close(), m.conn.Close())
}
