package reminder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dromero/barberbot/internal/config"
	"github.com/dromero/barberbot/internal/dedup"
	"github.com/dromero/barberbot/internal/model"
	"github.com/dromero/barberbot/pkg/logger"
	"github.com/dromero/barberbot/pkg/metrics"
)

const adminChatID = "111000"

var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeTenants struct {
	state  model.TenantState
	chatID string
	cred   *model.Credential
	err    error
}

func (f *fakeTenants) ResolveTenant(context.Context) (model.TenantState, string, *model.Credential, error) {
	return f.state, f.chatID, f.cred, f.err
}

type fakeCalendar struct {
	events []model.CalendarEvent
	err    error
	calls  int
}

func (f *fakeCalendar) CheckAvailability(_ context.Context, _ string, _, _ time.Time) ([]model.CalendarEvent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

type sentMessage struct {
	chatID string
	text   string
}

type fakeDispatcher struct {
	sent     []sentMessage
	failNext bool
}

func (f *fakeDispatcher) SendMessage(_ context.Context, chatID, text string, _ bool) error {
	if f.failNext {
		f.failNext = false
		return errors.New("telegram unavailable")
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeDispatcher) to(chatID string) []sentMessage {
	var out []sentMessage
	for _, m := range f.sent {
		if m.chatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

func schedulerConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		PollInterval:         10 * time.Minute,
		LookAhead:            2 * time.Hour,
		SummaryHour:          8,
		Timezone:             "UTC",
		CalendarID:           "primary",
		CustomerWindowMinMin: 50,
		CustomerWindowMaxMin: 70,
		AdminWindowMinMin:    10,
		AdminWindowMaxMin:    20,
		DedupTTL:             3 * time.Hour,
	}
}

func newTestService(t *testing.T, cal *fakeCalendar, disp *fakeDispatcher, tenants *fakeTenants) *Service {
	t.Helper()
	svc := NewService(
		schedulerConfig(),
		tenants,
		func(*model.Credential) (CalendarReader, error) { return cal, nil },
		disp,
		dedup.NewMemoryStore(time.Hour),
		nil,
		logger.NewLogger(&logger.Config{Level: logger.FatalLevel, Output: io.Discard}),
		metrics.NewUnregistered("test"),
	)
	svc.now = func() time.Time { return baseTime }
	return svc
}

func readyTenants() *fakeTenants {
	return &fakeTenants{
		state:  model.TenantReady,
		chatID: adminChatID,
		cred:   &model.Credential{ChatID: adminChatID, AccessToken: "tok"},
	}
}

// event starting minutes from baseTime.
func eventAt(id string, minutes int, description string) model.CalendarEvent {
	start := baseTime.Add(time.Duration(minutes) * time.Minute)
	return model.CalendarEvent{
		ID:          id,
		Summary:     "Haircut " + id,
		Description: description,
		Start:       model.EventTime{DateTime: start.Format(time.RFC3339)},
		End:         model.EventTime{DateTime: start.Add(30 * time.Minute).Format(time.RFC3339)},
	}
}

func TestCustomerReminderSentOnceAcrossTicks(t *testing.T) {
	cal := &fakeCalendar{events: []model.CalendarEvent{eventAt("ev1", 60, "Ref: 555")}}
	disp := &fakeDispatcher{}
	svc := newTestService(t, cal, disp, readyTenants())

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.CheckReminders(context.Background()))
	}

	msgs := disp.to("555")
	require.Len(t, msgs, 1, "repeated ticks within the window must not re-notify")
	assert.Contains(t, msgs[0].text, "1 hour")
	assert.Contains(t, msgs[0].text, "10:00")
}

func TestAdminAlertSentOnceAcrossTicks(t *testing.T) {
	cal := &fakeCalendar{events: []model.CalendarEvent{eventAt("ev1", 15, "")}}
	disp := &fakeDispatcher{}
	svc := newTestService(t, cal, disp, readyTenants())

	for i := 0; i < 4; i++ {
		require.NoError(t, svc.CheckReminders(context.Background()))
	}

	msgs := disp.to(adminChatID)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].text, "Haircut ev1")
}

func TestMissedWindowIsNotRetroactive(t *testing.T) {
	// First poll happens when the event is already 5 minutes out: both
	// windows have passed, so nothing is ever sent.
	cal := &fakeCalendar{events: []model.CalendarEvent{eventAt("ev1", 5, "Ref: 555")}}
	disp := &fakeDispatcher{}
	svc := newTestService(t, cal, disp, readyTenants())

	require.NoError(t, svc.CheckReminders(context.Background()))
	assert.Empty(t, disp.sent)
}

func TestEventWithoutMarkerSkipsCustomerPathOnly(t *testing.T) {
	cal := &fakeCalendar{events: []model.CalendarEvent{
		eventAt("far", 60, "walk-in, no marker"),
		eventAt("near", 15, "walk-in, no marker"),
	}}
	disp := &fakeDispatcher{}
	svc := newTestService(t, cal, disp, readyTenants())

	require.NoError(t, svc.CheckReminders(context.Background()))

	require.Len(t, disp.sent, 1, "only the admin alert should fire")
	assert.Equal(t, adminChatID, disp.sent[0].chatID)
	assert.Contains(t, disp.sent[0].text, "Haircut near")
}

func TestTwoEventsInAdminWindowBothAlert(t *testing.T) {
	cal := &fakeCalendar{events: []model.CalendarEvent{
		eventAt("ev1", 15, ""),
		eventAt("ev2", 16, ""),
	}}
	disp := &fakeDispatcher{}
	svc := newTestService(t, cal, disp, readyTenants())

	require.NoError(t, svc.CheckReminders(context.Background()))

	msgs := disp.to(adminChatID)
	require.Len(t, msgs, 2, "dedup is keyed per event id, not globally")
	assert.Contains(t, msgs[0].text, "ev1")
	assert.Contains(t, msgs[1].text, "ev2")
}

func TestBothWindowsForSameEventOverTime(t *testing.T) {
	cal := &fakeCalendar{events: []model.CalendarEvent{eventAt("ev1", 60, "Ref: 555")}}
	disp := &fakeDispatcher{}
	svc := newTestService(t, cal, disp, readyTenants())

	require.NoError(t, svc.CheckReminders(context.Background()))

	// 45 minutes later the same event sits in the admin window.
	svc.now = func() time.Time { return baseTime.Add(45 * time.Minute) }
	require.NoError(t, svc.CheckReminders(context.Background()))

	assert.Len(t, disp.to("555"), 1)
	assert.Len(t, disp.to(adminChatID), 1)
}

func TestUnconfiguredTenantIsSilentNoop(t *testing.T) {
	cal := &fakeCalendar{}
	disp := &fakeDispatcher{}
	svc := newTestService(t, cal, disp, &fakeTenants{state: model.TenantNone})

	require.NoError(t, svc.CheckReminders(context.Background()))
	require.NoError(t, svc.SendDailySummary(context.Background()))

	assert.Empty(t, disp.sent)
	assert.Zero(t, cal.calls, "no gateway call should be made without a tenant")
}

func TestUncredentialedTenantIsSilentNoop(t *testing.T) {
	cal := &fakeCalendar{}
	disp := &fakeDispatcher{}
	svc := newTestService(t, cal, disp, &fakeTenants{state: model.TenantUncredentialed, chatID: adminChatID})

	require.NoError(t, svc.CheckReminders(context.Background()))
	assert.Empty(t, disp.sent)
	assert.Zero(t, cal.calls)
}

func TestGatewayFailureAbortsTick(t *testing.T) {
	cal := &fakeCalendar{err: errors.New("api unreachable")}
	disp := &fakeDispatcher{}
	svc := newTestService(t, cal, disp, readyTenants())

	err := svc.CheckReminders(context.Background())
	require.Error(t, err)
	assert.Empty(t, disp.sent)

	// Recovery on a later tick works.
	cal.err = nil
	cal.events = []model.CalendarEvent{eventAt("ev1", 15, "")}
	require.NoError(t, svc.CheckReminders(context.Background()))
	assert.Len(t, disp.sent, 1)
}

func TestFailedSendIsNotRetried(t *testing.T) {
	cal := &fakeCalendar{events: []model.CalendarEvent{eventAt("ev1", 15, "")}}
	disp := &fakeDispatcher{failNext: true}
	svc := newTestService(t, cal, disp, readyTenants())

	require.NoError(t, svc.CheckReminders(context.Background()))
	require.NoError(t, svc.CheckReminders(context.Background()))

	// The dedup key was recorded despite the failed send, so the second
	// tick stays quiet.
	assert.Empty(t, disp.sent)
}

func TestMalformedEventSkippedBatchContinues(t *testing.T) {
	broken := model.CalendarEvent{ID: "broken", Summary: "Bad", Start: model.EventTime{DateTime: "garbage"}}
	cal := &fakeCalendar{events: []model.CalendarEvent{broken, eventAt("ok", 15, "")}}
	disp := &fakeDispatcher{}
	svc := newTestService(t, cal, disp, readyTenants())

	require.NoError(t, svc.CheckReminders(context.Background()))

	msgs := disp.to(adminChatID)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].text, "Haircut ok")
}

func TestAllDayEventUsesDateFallback(t *testing.T) {
	// An all-day event "starting" at local midnight is long past both
	// windows by 09:00, so classification must not crash and must not
	// notify.
	allDay := model.CalendarEvent{ID: "allday", Summary: "Closed", Start: model.EventTime{Date: "2025-03-10"}}
	cal := &fakeCalendar{events: []model.CalendarEvent{allDay, eventAt("ok", 60, "Ref: 7")}}
	disp := &fakeDispatcher{}
	svc := newTestService(t, cal, disp, readyTenants())

	require.NoError(t, svc.CheckReminders(context.Background()))

	require.Len(t, disp.sent, 1)
	assert.Equal(t, "7", disp.sent[0].chatID)
}

func TestDailySummaryEmptyDay(t *testing.T) {
	cal := &fakeCalendar{}
	disp := &fakeDispatcher{}
	svc := newTestService(t, cal, disp, readyTenants())

	require.NoError(t, svc.SendDailySummary(context.Background()))

	msgs := disp.to(adminChatID)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].text, "No appointments")
}

func TestDailySummarySortedLines(t *testing.T) {
	cal := &fakeCalendar{events: []model.CalendarEvent{
		eventAt("late", 300, ""),
		eventAt("early", 30, ""),
		eventAt("mid", 120, ""),
	}}
	disp := &fakeDispatcher{}
	svc := newTestService(t, cal, disp, readyTenants())

	require.NoError(t, svc.SendDailySummary(context.Background()))

	msgs := disp.to(adminChatID)
	require.Len(t, msgs, 1)

	lines := strings.Split(msgs[0].text, "\n")
	var entries []string
	for _, l := range lines {
		if strings.Contains(l, " - ") {
			entries = append(entries, l)
		}
	}
	require.Len(t, entries, 3)
	assert.Equal(t, "09:30 - Haircut early", entries[0])
	assert.Equal(t, "11:00 - Haircut mid", entries[1])
	assert.Equal(t, "14:00 - Haircut late", entries[2])
}

func TestDailySummaryGatewayFailure(t *testing.T) {
	cal := &fakeCalendar{err: errors.New("api unreachable")}
	disp := &fakeDispatcher{}
	svc := newTestService(t, cal, disp, readyTenants())

	err := svc.SendDailySummary(context.Background())
	require.Error(t, err)
	assert.Empty(t, disp.sent)
}

func TestCustomerWindowBoundaries(t *testing.T) {
	for _, tc := range []struct {
		minutes int
		expect  bool
	}{
		{49, false},
		{50, true},
		{70, true},
		{71, false},
	} {
		t.Run(fmt.Sprintf("%d_minutes", tc.minutes), func(t *testing.T) {
			cal := &fakeCalendar{events: []model.CalendarEvent{eventAt("ev", tc.minutes, "Ref: 9")}}
			disp := &fakeDispatcher{}
			svc := newTestService(t, cal, disp, readyTenants())

			require.NoError(t, svc.CheckReminders(context.Background()))
			if tc.expect {
				assert.Len(t, disp.to("9"), 1)
			} else {
				assert.Empty(t, disp.to("9"))
			}
		})
	}
}
