package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"warden/internal/fraud"
	id "warden/pkg/domain"
	"warden/pkg/platform/audit"
	"warden/pkg/platform/jobs"
)

// AMLReportJobKind is the job kind that files AML reports.
const AMLReportJobKind = "aml.report"

const amlReportMaxAttempts = 8

// AMLReport is the queued record of a transaction at or above the reporting
// threshold.
type AMLReport struct {
	ID          id.ReportID  `json:"id"`
	DecisionID  uuid.UUID    `json:"decision_id"`
	UserID      id.UserID    `json:"user_id"`
	AmountCents int64        `json:"amount_cents"`
	Currency    string       `json:"currency"`
	Type        Type         `json:"type"`
	Status      Status       `json:"decision_status"`
	RiskScore   int          `json:"risk_score"`
	Flags       []fraud.Flag `json:"flags"`
	CreatedAt   time.Time    `json:"created_at"`
}

// amlFiling is the wire form published to the regulator feed.
type amlFiling struct {
	ReportID   string       `json:"report_id"`
	DecisionID string       `json:"decision_id"`
	UserID     string       `json:"user_id"`
	Amount     string       `json:"amount"`
	Currency   string       `json:"currency"`
	Type       Type         `json:"type"`
	Status     Status       `json:"decision_status"`
	RiskScore  int          `json:"risk_score"`
	Flags      []fraud.Flag `json:"flags"`
	CreatedAt  time.Time    `json:"created_at"`
	FiledAt    time.Time    `json:"filed_at"`
}

// Publisher is the produce side of the report stream.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte, headers map[string]string) error
}

func enqueueAMLReport(ctx context.Context, q jobs.Enqueuer, r AMLReport) error {
	job, err := jobs.New(AMLReportJobKind, r,
		jobs.WithDedupeKey(AMLReportJobKind+":"+r.DecisionID.String()),
		jobs.WithMaxAttempts(amlReportMaxAttempts),
	)
	if err != nil {
		return err
	}
	return q.Enqueue(ctx, job)
}

// AMLReportHandler files queued reports to topic. Amounts are published as
// fixed two-decimal strings in major units.
func AMLReportHandler(pub Publisher, topic string, auditor audit.Emitter, logger *slog.Logger, now func() time.Time) jobs.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return jobs.HandlerFunc(func(ctx context.Context, job jobs.Job) error {
		var r AMLReport
		if err := job.Decode(&r); err != nil {
			return err
		}
		if r.ID.IsNil() || r.UserID.IsNil() {
			return jobs.Permanent(fmt.Errorf("aml report %s is missing identifiers", job.ID))
		}
		filing := amlFiling{
			ReportID:   r.ID.String(),
			DecisionID: r.DecisionID.String(),
			UserID:     r.UserID.String(),
			Amount:     decimal.New(r.AmountCents, -2).StringFixed(2),
			Currency:   r.Currency,
			Type:       r.Type,
			Status:     r.Status,
			RiskScore:  r.RiskScore,
			Flags:      r.Flags,
			CreatedAt:  r.CreatedAt,
			FiledAt:    now().UTC(),
		}
		value, err := json.Marshal(filing)
		if err != nil {
			return jobs.Permanent(fmt.Errorf("encode aml report: %w", err))
		}
		headers := map[string]string{"report_id": filing.ReportID, "decision_id": filing.DecisionID}
		if err := pub.Publish(ctx, topic, []byte(filing.UserID), value, headers); err != nil {
			return fmt.Errorf("publish aml report: %w", err)
		}

		logger.InfoContext(ctx, "aml report filed", "report_id", filing.ReportID, "user_id", filing.UserID, "amount", filing.Amount)
		audit.EmitLogged(ctx, auditor, logger, audit.Event{
			Action:   string(audit.EventAMLReportFiled),
			UserID:   r.UserID,
			Subject:  filing.ReportID,
			Decision: string(r.Status),
			Metadata: map[string]string{"amount": filing.Amount, "currency": filing.Currency},
		})
		return nil
	})
}

// LogPublisher writes reports to the log. Used when no broker is configured.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p LogPublisher) Publish(ctx context.Context, topic string, key, value []byte, _ map[string]string) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "aml report published to log", "topic", topic, "key", string(key), "bytes", len(value))
	return nil
}
