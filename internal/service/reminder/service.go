// Package reminder implements the scheduled notification core: the periodic
// reminder check against the owner's calendar and the daily agenda summary.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dromero/barberbot/internal/config"
	"github.com/dromero/barberbot/internal/dedup"
	"github.com/dromero/barberbot/internal/model"
	"github.com/dromero/barberbot/internal/notifier"
	"github.com/dromero/barberbot/internal/repository"
	"github.com/dromero/barberbot/pkg/logger"
	"github.com/dromero/barberbot/pkg/metrics"
)

// Dispatcher sends a text message to a chat identity. Failures are
// log-and-continue: the scheduler never retries within a tick and never
// blocks other notifications on one failure.
type Dispatcher interface {
	SendMessage(ctx context.Context, chatID, text string, markdown bool) error
}

// CalendarReader lists events in a bounded window.
type CalendarReader interface {
	CheckAvailability(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]model.CalendarEvent, error)
}

// TenantResolver reports whether the single owner is configured and
// credentialed.
type TenantResolver interface {
	ResolveTenant(ctx context.Context) (model.TenantState, string, *model.Credential, error)
}

// GatewayFactory builds a live calendar gateway from stored credentials.
type GatewayFactory func(cred *model.Credential) (CalendarReader, error)

type Service struct {
	cfg        config.SchedulerConfig
	tenants    TenantResolver
	newGateway GatewayFactory
	dispatcher Dispatcher
	dedup      dedup.Store
	owners     repository.OwnerRepository
	mailer     notifier.DigestMailer
	logger     *logger.Logger
	metrics    *metrics.Metrics

	// now is swappable in tests.
	now func() time.Time
}

func NewService(
	cfg config.SchedulerConfig,
	tenants TenantResolver,
	newGateway GatewayFactory,
	dispatcher Dispatcher,
	dedupStore dedup.Store,
	owners repository.OwnerRepository,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		cfg:        cfg,
		tenants:    tenants,
		newGateway: newGateway,
		dispatcher: dispatcher,
		dedup:      dedupStore,
		owners:     owners,
		logger:     log,
		metrics:    m,
		now:        time.Now,
	}
}

// WithDigestMailer enables the optional email mirror of the daily summary.
func (s *Service) WithDigestMailer(m notifier.DigestMailer) *Service {
	s.mailer = m
	return s
}

// CheckReminders is one poll tick. It classifies every event in the
// look-ahead window and emits at most one customer reminder and one admin
// alert per event, deduplicated across ticks.
//
// An unconfigured or uncredentialed tenant is a silent no-op: the bot may
// simply not be set up yet.
func (s *Service) CheckReminders(ctx context.Context) error {
	s.metrics.ReminderTicks.Inc()
	timer := prometheus.NewTimer(s.metrics.ReminderTickDuration)
	defer timer.ObserveDuration()

	state, adminID, cred, err := s.tenants.ResolveTenant(ctx)
	if err != nil {
		s.metrics.ReminderTickFailures.Inc()
		return fmt.Errorf("failed to resolve tenant: %w", err)
	}
	if state != model.TenantReady {
		s.logger.Debug("skipping reminder check", "tenant_state", state.String())
		return nil
	}

	gw, err := s.newGateway(cred)
	if err != nil {
		s.metrics.ReminderTickFailures.Inc()
		return fmt.Errorf("failed to build gateway: %w", err)
	}

	now := s.now()
	events, err := gw.CheckAvailability(ctx, s.cfg.CalendarID, now, now.Add(s.cfg.LookAhead))
	if err != nil {
		s.metrics.ReminderTickFailures.Inc()
		return fmt.Errorf("failed to list upcoming events: %w", err)
	}

	loc := s.cfg.Location()
	for _, event := range events {
		s.metrics.EventsInspected.Inc()

		start, ok := event.StartTime(loc)
		if !ok {
			s.logger.Debug("skipping event without usable start", "event_id", event.ID)
			continue
		}

		minutesToStart := start.Sub(now).Minutes()
		s.maybeRemindCustomer(ctx, &event, start, minutesToStart)
		s.maybeAlertAdmin(ctx, &event, adminID, minutesToStart)
	}

	return nil
}

func (s *Service) maybeRemindCustomer(ctx context.Context, event *model.CalendarEvent, start time.Time, minutesToStart float64) {
	if minutesToStart < float64(s.cfg.CustomerWindowMinMin) || minutesToStart > float64(s.cfg.CustomerWindowMaxMin) {
		return
	}

	// Events without a requester marker belong to walk-ins or manual
	// bookings; only the admin alert applies to them.
	customerID, ok := event.RequesterChatID()
	if !ok {
		return
	}

	claimed, err := s.dedup.MarkIfAbsent(ctx, model.AudienceCustomer, event.ID)
	if err != nil {
		s.logger.Error(err, "dedup store failed", "event_id", event.ID)
		return
	}
	if !claimed {
		s.metrics.NotificationsDeduped.WithLabelValues(string(model.AudienceCustomer)).Inc()
		return
	}

	text := fmt.Sprintf("⏰ Reminder: you have an appointment at the barbershop in 1 hour (%s). See you soon!",
		start.In(s.cfg.Location()).Format("15:04"))
	s.send(ctx, model.AudienceCustomer, customerID, event.ID, text)
}

func (s *Service) maybeAlertAdmin(ctx context.Context, event *model.CalendarEvent, adminID string, minutesToStart float64) {
	if minutesToStart < float64(s.cfg.AdminWindowMinMin) || minutesToStart > float64(s.cfg.AdminWindowMaxMin) {
		return
	}

	claimed, err := s.dedup.MarkIfAbsent(ctx, model.AudienceAdmin, event.ID)
	if err != nil {
		s.logger.Error(err, "dedup store failed", "event_id", event.ID)
		return
	}
	if !claimed {
		s.metrics.NotificationsDeduped.WithLabelValues(string(model.AudienceAdmin)).Inc()
		return
	}

	text := fmt.Sprintf("💈 Next client: *%s* in 15 minutes.", event.Title())
	s.send(ctx, model.AudienceAdmin, adminID, event.ID, text)
}

// send delivers a notification. The dedup key has already been claimed at
// this point: a failed send is not retried, trading guaranteed delivery for
// no duplicate spam.
func (s *Service) send(ctx context.Context, audience model.Audience, chatID, eventID, text string) {
	n := model.Notification{
		ID:        uuid.New(),
		Audience:  audience,
		EventID:   eventID,
		ChatID:    chatID,
		Text:      text,
		Markdown:  true,
		CreatedAt: s.now(),
	}

	if err := s.dispatcher.SendMessage(ctx, n.ChatID, n.Text, n.Markdown); err != nil {
		s.metrics.NotificationsFailed.WithLabelValues(string(audience)).Inc()
		s.logger.Error(err, "failed to send notification",
			"notification_id", n.ID.String(), "audience", string(audience),
			"chat_id", chatID, "event_id", eventID)
		return
	}
	s.metrics.NotificationsSent.WithLabelValues(string(audience)).Inc()
	s.logger.Info("notification sent",
		"notification_id", n.ID.String(), "audience", string(audience),
		"chat_id", chatID, "event_id", eventID)
}

// SendDailySummary sends today's agenda to the owner, one line per
// appointment in ascending start order, or a friendly note when the day is
// empty.
func (s *Service) SendDailySummary(ctx context.Context) error {
	state, adminID, cred, err := s.tenants.ResolveTenant(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve tenant: %w", err)
	}
	if state != model.TenantReady {
		s.logger.Debug("skipping daily summary", "tenant_state", state.String())
		return nil
	}

	gw, err := s.newGateway(cred)
	if err != nil {
		return fmt.Errorf("failed to build gateway: %w", err)
	}

	loc := s.cfg.Location()
	now := s.now().In(loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	dayEnd := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, loc)

	events, err := gw.CheckAvailability(ctx, s.cfg.CalendarID, dayStart, dayEnd)
	if err != nil {
		return fmt.Errorf("failed to list today's events: %w", err)
	}

	message := s.renderSummary(events, loc)

	if err := s.dispatcher.SendMessage(ctx, adminID, message, true); err != nil {
		s.logger.Error(err, "failed to send daily summary", "chat_id", adminID)
		return nil
	}
	s.metrics.DailySummariesSent.Inc()

	s.mirrorToEmail(ctx, message)
	return nil
}

func (s *Service) renderSummary(events []model.CalendarEvent, loc *time.Location) string {
	type line struct {
		start time.Time
		text  string
	}

	var lines []line
	for _, event := range events {
		start, ok := event.StartTime(loc)
		if !ok {
			continue
		}
		lines = append(lines, line{
			start: start,
			text:  fmt.Sprintf("%s - %s", start.In(loc).Format("15:04"), event.Title()),
		})
	}

	if len(lines) == 0 {
		return "📅 Good morning! No appointments scheduled for today."
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].start.Before(lines[j].start) })

	message := "📅 *Today's agenda:*\n"
	for _, l := range lines {
		message += "\n" + l.text
	}
	return message
}

func (s *Service) mirrorToEmail(ctx context.Context, message string) {
	if s.mailer == nil || s.owners == nil {
		return
	}

	owner, err := s.owners.Get(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error(err, "failed to load owner for email digest")
		}
		return
	}
	if owner.Email == "" {
		return
	}

	if err := s.mailer.SendDigest(ctx, owner.Email, "Today's agenda", message); err != nil {
		s.logger.Error(err, "failed to send email digest", "email", owner.Email)
	}
}
