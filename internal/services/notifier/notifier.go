// Package notifier отправляет email-уведомления по событиям биллинга,
// полученным из очереди.
package notifier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/fitness-backend/internal/lib/sl"
	"github.com/magabrotheeeer/fitness-backend/internal/lib/smtp"
	"github.com/magabrotheeeer/fitness-backend/internal/models"
)

// Service реализует отправку писем по billing-уведомлениям.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// HandleBillingEvent разбирает сообщение очереди и отправляет письмо,
// соответствующее его типу.
func (s *Service) HandleBillingEvent(body []byte) error {
	var message models.BillingNotification
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}
	if message.Email == "" {
		s.log.Warn("billing notification without email", sl.Uid(message.UserUID))
		return nil
	}

	var subject, bodyText string
	switch message.Kind {
	case models.NotificationPaymentFailed:
		subject = "Problem with your premium payment"
		bodyText = "Hi!\n\nWe couldn't process your latest premium payment. " +
			"Your access is still active for the paid period, but please update " +
			"your payment method to keep premium features."
	case models.NotificationTrialExpired:
		subject = "Your premium trial has ended"
		bodyText = "Hi!\n\nYour premium trial has expired and your account is back " +
			"on the free plan. Subscribe any time to get premium features back."
	default:
		s.log.Warn("unknown billing notification kind", slog.String("kind", message.Kind))
		return nil
	}

	if err := s.sendEmail([]string{message.Email}, subject, bodyText); err != nil {
		return err
	}
	s.log.Info("billing notification sent",
		sl.Uid(message.UserUID),
		slog.String("kind", message.Kind))
	return nil
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			s.log.Error("failed to close SMTP client", sl.Err(err))
		}
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}
	return nil
}
