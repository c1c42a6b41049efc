// Package mail is the seam to the outbound mail provider. The default
// sender only logs the verification link; actual delivery is handled by
// an external collaborator.
package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Sender delivers a verification message to a freshly registered user.
type Sender interface {
	SendVerification(ctx context.Context, email, verificationToken string) error
}

// LogSender writes the verification link to the application log instead
// of sending mail.
type LogSender struct {
	log     *zap.Logger
	baseURL string
}

// NewLogSender creates a LogSender building links off baseURL.
func NewLogSender(log *zap.Logger, baseURL string) *LogSender {
	return &LogSender{log: log, baseURL: baseURL}
}

// SendVerification logs the link the user would receive by mail.
func (s *LogSender) SendVerification(_ context.Context, email, verificationToken string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", s.baseURL, verificationToken)
	s.log.Info("verification link issued",
		zap.String("email", email),
		zap.String("link", link),
	)
	return nil
}
