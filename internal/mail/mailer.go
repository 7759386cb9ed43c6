// server/internal/mail/mailer.go
package mail

import (
	"context"
	"log"
)

// Sender delivers a password recovery code to a verified address. Actual
// delivery is a platform concern; this core only surfaces its errors.
type Sender interface {
	SendRecoveryCode(ctx context.Context, to, code string) error
}

// LogSender logs instead of sending, for environments without a mail
// relay configured.
type LogSender struct{}

func (LogSender) SendRecoveryCode(ctx context.Context, to, code string) error {
	log.Printf("Recovery code for %s: %s", to, code)
	return nil
}
