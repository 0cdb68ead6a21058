// Package mail delivers notification emails.
package mail

import (
	"context"
	"log/slog"

	"teamspace/contract"
)

// LogMailer writes outgoing mail to the log instead of an SMTP relay.
type LogMailer struct {
	log *slog.Logger
}

func NewLogMailer(log *slog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, mail contract.Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.log.Info("Mail sent",
		"from", mail.From,
		"to", mail.To,
		"subject", mail.Subject,
		"body_length", len(mail.Body),
	)
	return nil
}
