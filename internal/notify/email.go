package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/donnex/sendnotification/internal/interval"
	"github.com/donnex/sendnotification/internal/logging"
)

// sendMailHook allows tests to override SMTP sending behavior.
var sendMailHook = smtp.SendMail

// defaultSender is the From/envelope address when no sender is configured.
const defaultSender = "sendnotification@localhost"

// Email delivers a plain-text message through the local SMTP relay,
// synchronous send-and-quit with no retry.
type Email struct {
	subject string
	to      string
	sender  string

	guard    *interval.Guard
	smtpAddr string
}

func newEmail(settings map[string]string, opts Options) Adapter {
	return &Email{
		subject:  settings["subject"],
		to:       settings["to"],
		sender:   settings["sender"],
		guard:    opts.Guard,
		smtpAddr: opts.smtpAddr(),
	}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Send(ctx context.Context, message string, window time.Duration) (Status, error) {
	fields := []string{e.subject, e.to, message}
	if e.sender != "" {
		fields = append(fields, e.sender)
	}
	ok, err := e.guard.Allow(ctx, e.Name(), window, fields)
	if err != nil {
		return 0, err
	}
	if !ok {
		return StatusSuppressed, nil
	}

	sender := e.sender
	if sender == "" {
		sender = defaultSender
	}
	body := strings.Join([]string{
		"Subject: " + e.subject,
		"From: " + sender,
		"To: " + e.to,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		message,
	}, "\r\n")

	if err := sendMailHook(e.smtpAddr, nil, sender, []string{e.to}, []byte(body)); err != nil {
		return 0, fmt.Errorf("email: %w", err)
	}
	logging.Get().Debug().Msg("email notification sent")
	return StatusSent, nil
}
