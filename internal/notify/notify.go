// Package notify delivers user notifications through the job queue so that
// sending never blocks a decision and survives restarts.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	id "warden/pkg/domain"
	"warden/pkg/platform/audit"
	"warden/pkg/platform/jobs"
)

// JobKind is the job kind notifications are queued under.
const JobKind = "notification.send"

// Templates used by the decision engine.
const (
	TemplateKYCApproved     = "kyc_approved"
	TemplateKYCRejected     = "kyc_rejected"
	TemplateKYCManualReview = "kyc_manual_review"
	TemplateKYCExpired      = "kyc_expired"
	TemplateAccountFrozen   = "account_frozen"
)

// Notification is a message to one user.
type Notification struct {
	UserID   id.UserID         `json:"user_id"`
	Email    string            `json:"email,omitempty"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data,omitempty"`
}

// Sender dispatches a rendered notification to the user.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Enqueue queues n for delivery. dedupeKey, when set, makes the enqueue
// idempotent so a retried caller does not notify twice.
func Enqueue(ctx context.Context, q jobs.Enqueuer, n Notification, dedupeKey string) error {
	if q == nil {
		return errors.New("notification queue is not configured")
	}
	var opts []jobs.Option
	if dedupeKey != "" {
		opts = append(opts, jobs.WithDedupeKey(dedupeKey))
	}
	job, err := jobs.New(JobKind, n, opts...)
	if err != nil {
		return err
	}
	if err := q.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

// Handler sends queued notifications. Sender errors are retried by the runner.
func Handler(sender Sender, auditor audit.Emitter, logger *slog.Logger) jobs.Handler {
	return jobs.HandlerFunc(func(ctx context.Context, job jobs.Job) error {
		var n Notification
		if err := job.Decode(&n); err != nil {
			return err
		}
		if n.Template == "" {
			return jobs.Permanent(errors.New("notification template is required"))
		}
		if err := sender.Send(ctx, n); err != nil {
			return err
		}
		audit.EmitLogged(ctx, auditor, logger, audit.Event{
			Action:  string(audit.EventNotificationSent),
			UserID:  n.UserID,
			Subject: n.Template,
		})
		return nil
	})
}

// LogSender writes notifications to the log. It stands in for an email or
// push provider in development.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, n Notification) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification dispatched",
		"user_id", n.UserID,
		"template", n.Template,
		"greeting", Greeting(n.Email),
	)
	return nil
}

// Greeting derives a salutation from an email local part:
//
//	Greeting("jane.doe@example.com") // "Hi Jane"
//	Greeting("")                     // "Hi there"
func Greeting(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "Hi there"
	}
	runes := []rune(parts[0])
	runes[0] = unicode.ToUpper(runes[0])
	return "Hi " + string(runes)
}
