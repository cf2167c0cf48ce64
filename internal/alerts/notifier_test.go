package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	apperrors "keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/models"
)

type fakeTopic struct {
	subjects   []string
	attributes []map[string]string
	err        error
}

func (f *fakeTopic) PublishToTopic(_ context.Context, subject, _ string, attributes map[string]string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.subjects = append(f.subjects, subject)
	f.attributes = append(f.attributes, attributes)
	return "msg-1", nil
}

type fakeMail struct {
	to     [][]string
	bodies []string
	err    error
}

func (f *fakeMail) SendText(_ context.Context, to []string, _, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.to = append(f.to, to)
	f.bodies = append(f.bodies, body)
	return "mail-1", nil
}

func report(severity models.CannibalizationSeverity, pairs int) *models.CannibalizationReport {
	r := &models.CannibalizationReport{Severity: severity, PairCount: pairs}
	for i := 0; i < pairs; i++ {
		r.Groups = append(r.Groups, models.CannibalizationGroup{
			Keywords:       []string{fmt.Sprintf("seo tools %d", i), fmt.Sprintf("seo-tools %d", i)},
			Similarity:     0.97,
			URLOverlap:     1,
			URLs:           []string{"/a"},
			Recommendation: "Both keywords rank with the same URLs; consolidate them on one page",
		})
	}
	return r
}

// ==========================
// Severity gate
// ==========================

func TestDispatcher_SeverityGate(t *testing.T) {
	tests := []struct {
		name     string
		min      models.CannibalizationSeverity
		severity models.CannibalizationSeverity
		wantSent bool
	}{
		{"below minimum", models.SeverityHigh, models.SeverityMedium, false},
		{"at minimum", models.SeverityMedium, models.SeverityMedium, true},
		{"above minimum", models.SeverityLow, models.SeverityHigh, true},
		{"nothing detected", models.SeverityLow, models.SeverityNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topic := &fakeTopic{}
			d := NewDispatcher(tt.min, logger.NewTestLogger(t), WithTopic(topic))

			delivery, err := d.Notify(context.Background(), "p1", report(tt.severity, 3))
			require.NoError(t, err)
			assert.Equal(t, tt.wantSent, delivery.Sent)
			assert.Equal(t, tt.wantSent, len(topic.subjects) == 1)
		})
	}
}

func TestDispatcher_NilReport(t *testing.T) {
	d := NewDispatcher(models.SeverityLow, logger.NewNoOpLogger(), WithTopic(&fakeTopic{}))
	delivery, err := d.Notify(context.Background(), "p1", nil)
	require.NoError(t, err)
	assert.False(t, delivery.Sent)
}

// ==========================
// Channels
// ==========================

func TestDispatcher_SendsOnAllChannels(t *testing.T) {
	topic := &fakeTopic{}
	mail := &fakeMail{}
	d := NewDispatcher(models.SeverityLow, logger.NewTestLogger(t),
		WithTopic(topic), WithMail(mail, []string{"seo@example.com"}))

	delivery, err := d.Notify(context.Background(), "p1", report(models.SeverityHigh, 12))
	require.NoError(t, err)
	assert.True(t, delivery.Sent)
	assert.Equal(t, []string{"sns", "ses"}, delivery.Channels)

	assert.Equal(t, "[HIGH] Keyword cannibalization in project p1: 12 pairs", topic.subjects[0])
	assert.Equal(t, map[string]string{"projectId": "p1", "severity": "high"}, topic.attributes[0])
	assert.Equal(t, [][]string{{"seo@example.com"}}, mail.to)
	assert.Contains(t, mail.bodies[0], "... and 2 more")
	assert.Equal(t, maxListedGroups, strings.Count(mail.bodies[0], "similarity 0.97"))
}

func TestDispatcher_ChannelFailureDoesNotBlockOthers(t *testing.T) {
	topic := &fakeTopic{err: errors.New("AuthorizationError")}
	mail := &fakeMail{}
	d := NewDispatcher(models.SeverityLow, logger.NewTestLogger(t),
		WithTopic(topic), WithMail(mail, []string{"seo@example.com"}))

	delivery, err := d.Notify(context.Background(), "p1", report(models.SeverityLow, 1))
	require.Error(t, err)
	assert.True(t, delivery.Sent)
	assert.Equal(t, []string{"ses"}, delivery.Channels)

	errs := multierr.Errors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, apperrors.ErrCodeNotificationSendFailed, apperrors.AsStandardError(errs[0]).Code)
}

func TestDispatcher_MailWithoutRecipientsIsSkipped(t *testing.T) {
	mail := &fakeMail{}
	d := NewDispatcher(models.SeverityLow, logger.NewNoOpLogger(), WithMail(mail, nil))

	delivery, err := d.Notify(context.Background(), "p1", report(models.SeverityHigh, 10))
	require.NoError(t, err)
	assert.False(t, delivery.Sent)
	assert.Empty(t, mail.bodies)
}

func TestBody(t *testing.T) {
	body := Body("p1", report(models.SeverityLow, 1))
	assert.Contains(t, body, `"seo tools 0" vs "seo-tools 0": similarity 0.97, URL overlap 1.00`)
	assert.Contains(t, body, "consolidate")
}
