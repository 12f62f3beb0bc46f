package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/scantrack/attendance-api/internal/models"
	"github.com/scantrack/attendance-api/internal/observability"
	"github.com/scantrack/attendance-api/internal/repository"
	"github.com/scantrack/attendance-api/internal/sms"
)

// smsDispatchTimeout bounds the whole background leg: template render,
// delivery with retries, and the audit write.
const smsDispatchTimeout = 2 * time.Minute

// SMSDispatcher handles time-in events off the scan path. Every dispatched
// event produces exactly one SMSLog row, whatever the outcome.
type SMSDispatcher struct {
	builder      *sms.TemplateBuilder
	client       *sms.Client
	smsLogs      repository.SMSLogRepository
	quarterLimit int
	logger       zerolog.Logger

	wg sync.WaitGroup
}

// NewSMSDispatcher wires the async SMS pipeline.
func NewSMSDispatcher(
	builder *sms.TemplateBuilder,
	client *sms.Client,
	smsLogs repository.SMSLogRepository,
	quarterLimit int,
	logger zerolog.Logger,
) *SMSDispatcher {
	return &SMSDispatcher{
		builder:      builder,
		client:       client,
		smsLogs:      smsLogs,
		quarterLimit: quarterLimit,
		logger:       logger.With().Str("component", "sms_dispatcher").Logger(),
	}
}

// DispatchTimeIn hands the event to a background goroutine and returns
// immediately so the scan response never waits on the provider.
func (d *SMSDispatcher) DispatchTimeIn(event TimeInEvent) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), smsDispatchTimeout)
		defer cancel()

		d.handle(ctx, event)
	}()
}

// Wait blocks until all in-flight dispatches have finished. Used during
// shutdown and in tests.
func (d *SMSDispatcher) Wait() {
	d.wg.Wait()
}

func (d *SMSDispatcher) handle(ctx context.Context, event TimeInEvent) {
	result := d.builder.BuildTimeInMessage(event.Student, sms.AttendanceFacts{
		Date:        event.Date,
		TimeIn:      event.TimeIn,
		IsLate:      event.IsLate,
		LateMinutes: event.LateMinutes,
	}, sms.LateTrackingFacts{
		TotalLateMinutes: event.TotalLateMinutes,
		QuarterLimit:     d.quarterLimit,
	})

	logRow := models.SMSLog{
		AttendanceLogID: &event.AttendanceLogID,
		StudentID:       event.Student.ID,
		Message:         result.Message,
		MessageType:     string(result.MessageType),
	}
	if event.Student.MobileNumber != nil {
		logRow.MobileNumber = *event.Student.MobileNumber
	}

	// A guardian without a number on file is routine, not an error; the
	// audit row records the skip and why.
	if !result.ShouldSend {
		logRow.Status = models.SMSStatusSkipped
		logRow.ErrorMessage = result.Reason
		observability.SMSSends().WithLabelValues(string(logRow.Status)).Inc()
		d.logger.Debug().Uint("student_id", event.Student.ID).
			Str("reason", result.Reason).Msg("sms skipped")
		d.persist(ctx, &logRow)
		return
	}

	sent := d.client.Send(ctx, logRow.MobileNumber, result.Message)

	logRow.Status = sent.Status
	logRow.ProviderMessageID = sent.MessageID
	logRow.ErrorMessage = sent.Error
	if sent.Attempts > 0 {
		logRow.RetryCount = sent.Attempts - 1
	}
	if len(sent.ProviderResponse) > 0 {
		logRow.ProviderResponse = sent.ProviderResponse
	}
	if sent.Success {
		now := time.Now()
		logRow.SentAt = &now
	}

	observability.SMSSends().WithLabelValues(string(sent.Status)).Inc()

	if !sent.Success && sent.Status != models.SMSStatusMock {
		d.logger.Warn().Uint("student_id", event.Student.ID).Int("attempts", sent.Attempts).
			Str("error", sent.Error).Msg("sms delivery failed")
	}

	d.persist(ctx, &logRow)
}

func (d *SMSDispatcher) persist(ctx context.Context, row *models.SMSLog) {
	if err := d.smsLogs.Create(ctx, row); err != nil {
		d.logger.Error().Err(err).Uint("student_id", row.StudentID).Msg("failed to write sms audit log")
	}
}
