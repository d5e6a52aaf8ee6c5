// Package mailtest provides a Mailer that records messages instead of
// delivering them.
package mailtest

import (
	"context"
	"sync"

	"github.com/placereviews/auth-api/internal/domain"
	"github.com/placereviews/auth-api/internal/mail"
)

// Recorder keeps every accepted message. Setting Err makes SendCode fail
// without recording.
type Recorder struct {
	mu   sync.Mutex
	sent []mail.CodeMessage
	Err  error
}

var _ mail.Mailer = (*Recorder)(nil)

func (r *Recorder) SendCode(_ context.Context, msg mail.CodeMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *Recorder) Close() error {
	return nil
}

// Sent returns a copy of the recorded messages
func (r *Recorder) Sent() []mail.CodeMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]mail.CodeMessage, len(r.sent))
	copy(out, r.sent)
	return out
}

// LastCode returns the latest code sent to the address for purpose
func (r *Recorder) LastCode(to string, purpose domain.CodePurpose) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].To == to && r.sent[i].Purpose == purpose {
			return r.sent[i].Code, true
		}
	}
	return "", false
}
