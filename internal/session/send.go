package session

import (
	"errors"
	"time"

	"github.com/dukerupert/hermod/internal/address"
	"github.com/dukerupert/hermod/internal/compose"
	"github.com/dukerupert/hermod/internal/content"
	"github.com/dukerupert/hermod/internal/transport"
)

// Request describes one send: recipients, subject, and content items.
type Request struct {
	To  address.Field
	Cc  address.Field
	Bcc address.Field

	// Subject parts are joined with spaces; empty means no Subject
	// header.
	Subject []string

	Contents []content.Item

	// UseCache reuses content objects classified earlier in this
	// session, keyed by each item's source string.
	UseCache bool

	// SkipValidation disables recipient syntax checking. Strict turns
	// validation failures into errors instead of drop-with-warning.
	SkipValidation bool
	Strict         bool
}

// DeliveryResult describes the outcome of one send.
type DeliveryResult struct {
	Recipients []string
	Delivered  bool
	Skipped    bool  // recipient set was empty after validation, nothing sent
	Queued     bool  // retries exhausted, message appended to the unsent queue
	Err        error // terminal failure recorded during a queue drain
}

// OK reports whether the message was accepted by the relay.
func (r DeliveryResult) OK() bool { return r.Delivered }

// Send resolves addresses, composes the message, and transmits it with
// retry. An empty recipient set after validation means nothing to send:
// composition is skipped and an empty result is returned without error.
func (s *Session) Send(req Request) (DeliveryResult, error) {
	set, msg, err := s.prepare(req)
	if err != nil {
		return DeliveryResult{}, err
	}
	if set.Empty() {
		s.logger.Info("no valid recipients, skipping send")
		return DeliveryResult{Skipped: true}, nil
	}
	return s.Transmit(set.Recipients, msg.Bytes())
}

// Preview resolves and composes without transmitting, returning the
// recipient set and the serialized message. The composed message is nil
// when the recipient set is empty.
func (s *Session) Preview(req Request) (address.Set, *compose.Message, error) {
	return s.prepare(req)
}

func (s *Session) prepare(req Request) (address.Set, *compose.Message, error) {
	if s.closed {
		return address.Set{}, nil, ErrConnectionClosed
	}
	set, err := s.resolver.Resolve(req.To, req.Cc, req.Bcc, !req.SkipValidation, req.Strict)
	if err != nil {
		return address.Set{}, nil, err
	}
	if set.Empty() {
		return set, nil, nil
	}
	msg, err := s.composer.Build(set, req.Subject, req.Contents, req.UseCache)
	if err != nil {
		return address.Set{}, nil, err
	}
	return set, msg, nil
}

// Transmit sends a serialized message, retrying transient disconnects with
// linear backoff (attempt*unit between attempts). When all attempts fail
// the message is appended to the unsent queue and a Queued result is
// returned — exhausted retries are not an error. Permanent rejects and
// authentication failures surface immediately.
func (s *Session) Transmit(recipients []string, msg []byte) (DeliveryResult, error) {
	if s.closed {
		return DeliveryResult{}, ErrConnectionClosed
	}
	for attempt := 1; attempt <= s.attempts; attempt++ {
		err := s.trySend(recipients, msg)
		if err == nil {
			s.sent++
			s.logger.Info("message sent", "recipients", recipients)
			return DeliveryResult{Recipients: recipients, Delivered: true}, nil
		}
		var transient *transport.TransientError
		if !errors.As(err, &transient) {
			return DeliveryResult{Recipients: recipients}, err
		}
		s.logger.Error("transient failure during send", "attempt", attempt, "error", err)
		if attempt < s.attempts {
			s.sleep(time.Duration(attempt) * s.backoffUnit)
		}
	}
	s.unsent = append(s.unsent, unsentMail{recipients: recipients, message: msg})
	s.logger.Warn("retries exhausted, message queued for resend",
		"recipients", recipients, "queued", len(s.unsent))
	return DeliveryResult{Recipients: recipients, Queued: true}, nil
}

// trySend transmits over the current transport, re-establishing it first
// if a previous attempt dropped it. Reconnect failures count as transient
// unless authentication itself was rejected.
func (s *Session) trySend(recipients []string, msg []byte) error {
	if s.tr == nil {
		if err := s.connect(); err != nil {
			var auth *transport.AuthError
			if errors.As(err, &auth) {
				return err
			}
			return &transport.TransientError{Err: err}
		}
	}
	err := s.tr.SendMail(s.user, recipients, msg)
	if err != nil {
		var transient *transport.TransientError
		if errors.As(err, &transient) {
			// Connection is gone; force a redial on the next attempt.
			s.tr = nil
		}
	}
	return err
}

// ResendUnsent drains the unsent queue in FIFO order, one pass. Entries
// that exhaust their retries again are re-queued by Transmit; entries hit
// by a terminal error are re-queued here so nothing is silently dropped.
func (s *Session) ResendUnsent() ([]DeliveryResult, error) {
	if s.closed {
		return nil, ErrConnectionClosed
	}
	n := len(s.unsent)
	results := make([]DeliveryResult, 0, n)
	for i := 0; i < n; i++ {
		entry := s.unsent[0]
		s.unsent = s.unsent[1:]
		result, err := s.Transmit(entry.recipients, entry.message)
		if err != nil {
			s.logger.Error("resend failed", "recipients", entry.recipients, "error", err)
			s.unsent = append(s.unsent, entry)
			result = DeliveryResult{Recipients: entry.recipients, Queued: true, Err: err}
		}
		results = append(results, result)
	}
	return results, nil
}
