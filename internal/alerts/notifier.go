// Package alerts notifies SEO teams when a cannibalization report crosses a
// configured severity.
package alerts

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	apperrors "keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/common/metrics"
	"keyword-intelligence/internal/models"
)

// maxListedGroups caps how many pairs are spelled out in a message.
const maxListedGroups = 10

type TopicPublisher interface {
	PublishToTopic(ctx context.Context, subject, message string, attributes map[string]string) (string, error)
}

type MailSender interface {
	SendText(ctx context.Context, to []string, subject, body string) (string, error)
}

// Notifier is what the detect-cannibalization worker depends on.
type Notifier interface {
	Notify(ctx context.Context, scope string, report *models.CannibalizationReport) (*Delivery, error)
}

// Delivery records which channels accepted an alert.
type Delivery struct {
	Sent     bool     `json:"sent"`
	Channels []string `json:"channels"`
}

type Dispatcher struct {
	minSeverity models.CannibalizationSeverity
	topic       TopicPublisher
	mail        MailSender
	recipients  []string
	logger      logger.Logger
}

type Option func(*Dispatcher)

func WithTopic(p TopicPublisher) Option {
	return func(d *Dispatcher) { d.topic = p }
}

func WithMail(s MailSender, recipients []string) Option {
	return func(d *Dispatcher) {
		d.mail = s
		d.recipients = recipients
	}
}

func NewDispatcher(minSeverity models.CannibalizationSeverity, log logger.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{minSeverity: minSeverity, logger: log}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify sends report on every configured channel when its severity reaches
// the minimum. A failing channel does not stop the others.
func (d *Dispatcher) Notify(ctx context.Context, scope string, report *models.CannibalizationReport) (*Delivery, error) {
	delivery := &Delivery{Channels: []string{}}
	if report == nil || report.Severity.Rank() == 0 || report.Severity.Rank() < d.minSeverity.Rank() {
		return delivery, nil
	}

	subject := Subject(scope, report)
	body := Body(scope, report)

	var errs error
	if d.topic != nil {
		id, err := d.topic.PublishToTopic(ctx, subject, body, map[string]string{
			"projectId": scope,
			"severity":  string(report.Severity),
		})
		errs = multierr.Append(errs, d.record(scope, "sns", id, err, delivery))
	}
	if d.mail != nil && len(d.recipients) > 0 {
		id, err := d.mail.SendText(ctx, d.recipients, subject, body)
		errs = multierr.Append(errs, d.record(scope, "ses", id, err, delivery))
	}

	delivery.Sent = len(delivery.Channels) > 0
	return delivery, errs
}

func (d *Dispatcher) record(scope, channel, messageID string, err error, delivery *Delivery) error {
	if err != nil {
		metrics.AlertsSent.WithLabelValues(channel, "failed").Inc()
		d.logger.Error("Cannibalization alert failed", map[string]interface{}{
			"projectId": scope,
			"channel":   channel,
			"error":     err.Error(),
		})
		return apperrors.NewNotificationSendFailedError(channel, err)
	}
	metrics.AlertsSent.WithLabelValues(channel, "sent").Inc()
	d.logger.Info("Cannibalization alert sent", map[string]interface{}{
		"projectId": scope,
		"channel":   channel,
		"messageId": messageID,
	})
	delivery.Channels = append(delivery.Channels, channel)
	return nil
}

func Subject(scope string, report *models.CannibalizationReport) string {
	return fmt.Sprintf("[%s] Keyword cannibalization in project %s: %d pairs",
		strings.ToUpper(string(report.Severity)), scope, report.PairCount)
}

func Body(scope string, report *models.CannibalizationReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project %s has %d cannibalizing keyword pairs (severity %s).\n\n",
		scope, report.PairCount, report.Severity)

	for i, g := range report.Groups {
		if i == maxListedGroups {
			fmt.Fprintf(&b, "... and %d more\n", len(report.Groups)-maxListedGroups)
			break
		}
		fmt.Fprintf(&b, "- %q vs %q: similarity %.2f, URL overlap %.2f\n  %s\n",
			g.Keywords[0], g.Keywords[1], g.Similarity, g.URLOverlap, g.Recommendation)
	}
	return b.String()
}
