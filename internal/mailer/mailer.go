// Package mailer defines the outbound email collaborator.
//
// The account service treats email dispatch as FIRE-AND-FORGET: it triggers a
// send and moves on, never waiting for (or acting on) the result. Delivery
// failures are an operational concern, not a correctness concern — a password
// reset request still "succeeds" even if the SMTP relay is down, so the
// interface returns nothing.
//
// No real delivery backend exists yet; LogMailer below records the intent in
// the logs so the trigger points are observable in development.
package mailer

import (
	"context"
	"log/slog"
)

// Mailer sends account lifecycle emails.
//
// Implementations must be safe for concurrent use — the service invokes these
// from per-request goroutines.
type Mailer interface {
	// SendConfirmation sends the "confirm your email" message for a freshly
	// registered account.
	SendConfirmation(ctx context.Context, email, username string)
	// SendPasswordReset sends the "reset your password" message.
	SendPasswordReset(ctx context.Context, email, username string)
}

// LogMailer is a Mailer that only logs. It stands in until a real delivery
// backend (SMTP, SES, …) is wired up, and doubles as the test implementation.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendConfirmation(ctx context.Context, email, username string) {
	m.logger.Info("would send confirmation email",
		slog.String("email", email),
		slog.String("username", username),
	)
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, username string) {
	m.logger.Info("would send password reset email",
		slog.String("email", email),
		slog.String("username", username),
	)
}
