package delivery

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"notification-relay/internal/domain"
)

// EmailSender delivers email notifications over SMTP.
type EmailSender struct {
	smtpHost string
	smtpPort string
	username string
	password string
	useTLS   bool
	logger   *zap.Logger
}

func NewEmailSender(host, port, user, pass string, useTLS bool, logger *zap.Logger) *EmailSender {
	return &EmailSender{
		smtpHost: host,
		smtpPort: port,
		username: user,
		password: pass,
		useTLS:   useTLS,
		logger:   logger,
	}
}

// AttemptDelivery sends one email to every recipient in the envelope.
// Failures are reported as data; the consumer decides what happens next.
func (e *EmailSender) AttemptDelivery(ctx context.Context, env domain.Envelope) domain.DeliveryOutcome {
	start := time.Now()

	if err := e.send(env); err != nil {
		e.logger.Error("email send failed",
			zap.String("sender", env.Sender),
			zap.Strings("recipients", env.Recipient),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return domain.DeliveryOutcome{ErrorDetail: err.Error()}
	}

	e.logger.Info("email sent",
		zap.String("sender", env.Sender),
		zap.Strings("recipients", env.Recipient),
		zap.Duration("duration", time.Since(start)),
	)
	return domain.DeliveryOutcome{Success: true}
}

func (e *EmailSender) send(env domain.Envelope) error {
	msg := []byte(
		fmt.Sprintf("From: %s\r\n", env.Sender) +
			fmt.Sprintf("To: %s\r\n", strings.Join(env.Recipient, ", ")) +
			fmt.Sprintf("Subject: %s\r\n", env.Subject) +
			"MIME-Version: 1.0\r\n" + // required for HTML
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			env.Message,
	)

	serverAddr := e.smtpHost + ":" + e.smtpPort

	client, err := e.dial(serverAddr)
	if err != nil {
		return err
	}
	defer client.Quit()

	if e.username != "" {
		// PlainAuth will not hand credentials to a non-loopback server over
		// an unencrypted connection, so upgrade first when the relay offers
		// STARTTLS.
		if !e.useTLS {
			if ok, _ := client.Extension("STARTTLS"); ok {
				if err := client.StartTLS(&tls.Config{ServerName: e.smtpHost}); err != nil {
					return err
				}
			}
		}
		auth := smtp.PlainAuth("", e.username, e.password, e.smtpHost)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(env.Sender); err != nil {
		return err
	}
	for _, rcpt := range env.Recipient {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}

func (e *EmailSender) dial(serverAddr string) (*smtp.Client, error) {
	// Implicit TLS for port 465; plain dial for internal relays.
	if e.useTLS {
		conn, err := tls.Dial("tcp", serverAddr, &tls.Config{ServerName: e.smtpHost})
		if err != nil {
			return nil, err
		}
		return smtp.NewClient(conn, e.smtpHost)
	}
	return smtp.Dial(serverAddr)
}
