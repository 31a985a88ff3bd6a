package models_test

import (
	"testing"
	"time"

	"github.com/regulens/synapse_backend/models"
)

// 2026-01-09 is a Friday.
func fri(hour int) time.Time {
	return time.Date(2026, time.January, 9, hour, 0, 0, 0, time.UTC)
}

func TestComputeDueDate_SkipsWeekend(t *testing.T) {
	// Friday 16:00 + 24 business hours:
	// 1h Friday, 8h Monday, 8h Tuesday, 7h into Wednesday -> Wednesday 16:00.
	due := models.ComputeDueDate(fri(16), 24)
	want := time.Date(2026, time.January, 14, 16, 0, 0, 0, time.UTC)
	if !due.Equal(want) {
		t.Fatalf("got %v, want %v", due, want)
	}
}

func TestComputeDueDate_StartOutsideWindow(t *testing.T) {
	// Saturday noon rolls to Monday 09:00; 8 hours fills that day exactly.
	saturday := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
	due := models.ComputeDueDate(saturday, 8)
	want := time.Date(2026, time.January, 12, 17, 0, 0, 0, time.UTC)
	if !due.Equal(want) {
		t.Fatalf("got %v, want %v", due, want)
	}

	// Friday evening rolls to Monday morning.
	due = models.ComputeDueDate(fri(19), 1)
	want = time.Date(2026, time.January, 12, 10, 0, 0, 0, time.UTC)
	if !due.Equal(want) {
		t.Fatalf("got %v, want %v", due, want)
	}

	// Before opening rolls to 09:00 the same day.
	due = models.ComputeDueDate(fri(6), 2)
	if !due.Equal(fri(11)) {
		t.Fatalf("got %v, want %v", due, fri(11))
	}
}

func TestComputeDueDate_WithinSameDay(t *testing.T) {
	due := models.ComputeDueDate(fri(10), 4)
	if !due.Equal(fri(14)) {
		t.Fatalf("got %v, want %v", due, fri(14))
	}
}

func TestBusinessHoursBetween(t *testing.T) {
	monday := time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)

	// Full business day.
	got := models.BusinessHoursBetween(monday.Add(9*time.Hour), monday.Add(17*time.Hour))
	if got != 8 {
		t.Errorf("full day: got %v, want 8", got)
	}

	// Friday 16:00 -> Monday 10:00 crosses the weekend: 1h + 1h.
	got = models.BusinessHoursBetween(fri(16), monday.Add(10*time.Hour))
	if got != 2 {
		t.Errorf("over weekend: got %v, want 2", got)
	}

	// End before start yields zero, never negative.
	got = models.BusinessHoursBetween(fri(16), fri(10))
	if got != 0 {
		t.Errorf("inverted range: got %v, want 0", got)
	}

	// Entirely inside a weekend yields zero.
	saturday := time.Date(2026, time.January, 10, 10, 0, 0, 0, time.UTC)
	got = models.BusinessHoursBetween(saturday, saturday.Add(5*time.Hour))
	if got != 0 {
		t.Errorf("weekend only: got %v, want 0", got)
	}
}

func TestDueFrom_CalendarFlags(t *testing.T) {
	yes := true
	no := false

	// Wall clock: both flags off, due date is plain start + hours.
	wallClock := models.SLAConfig{BusinessHours: 24, BusinessHoursOnly: &no, WeekendExcluded: &no}
	due := wallClock.DueFrom(fri(16))
	want := time.Date(2026, time.January, 10, 16, 0, 0, 0, time.UTC)
	if !due.Equal(want) {
		t.Errorf("wall clock: got %v, want %v", due, want)
	}

	// Around-the-clock weekdays: 24 weekday hours from Friday 16:00 skip the
	// weekend and land Monday 16:00.
	weekdaysOnly := models.SLAConfig{BusinessHours: 24, BusinessHoursOnly: &no, WeekendExcluded: &yes}
	due = weekdaysOnly.DueFrom(fri(16))
	want = time.Date(2026, time.January, 12, 16, 0, 0, 0, time.UTC)
	if !due.Equal(want) {
		t.Errorf("weekdays only: got %v, want %v", due, want)
	}

	// Business window every day: 1h Friday, then Saturday 09:00 + 7h.
	everyDay := models.SLAConfig{BusinessHours: 8, BusinessHoursOnly: &yes, WeekendExcluded: &no}
	due = everyDay.DueFrom(fri(16))
	want = time.Date(2026, time.January, 10, 16, 0, 0, 0, time.UTC)
	if !due.Equal(want) {
		t.Errorf("every day: got %v, want %v", due, want)
	}

	// Unset flags behave like the column defaults: business hours, no weekends.
	defaulted := models.SLAConfig{BusinessHours: 24}
	if got := defaulted.DueFrom(fri(16)); !got.Equal(models.ComputeDueDate(fri(16), 24)) {
		t.Errorf("defaulted flags: got %v, want %v", got, models.ComputeDueDate(fri(16), 24))
	}
}

func TestRenderEscalationMessage(t *testing.T) {
	data := map[string]interface{}{
		"ActivityType": "Planning",
		"OverdueHours": "3.5",
		"DueAt":        "2026-01-09T17:00:00Z",
		"Level":        2,
	}

	got := models.RenderEscalationMessage("", data)
	if got != "Planning overdue by 3.5 business hours (due 2026-01-09T17:00:00Z)" {
		t.Errorf("default template: got %q", got)
	}

	got = models.RenderEscalationMessage("urgent", data)
	if got != "Urgent: Planning breached its SLA at escalation level 2. Overdue by 3.5 business hours, due 2026-01-09T17:00:00Z." {
		t.Errorf("urgent template: got %q", got)
	}

	// Unknown names fall back to the default body.
	if got := models.RenderEscalationMessage("no-such-template", data); got != models.RenderEscalationMessage("", data) {
		t.Errorf("unknown template should render the default, got %q", got)
	}
}

func TestKnownEscalationTemplate(t *testing.T) {
	for _, name := range []string{"", "reminder", "urgent"} {
		if !models.KnownEscalationTemplate(name) {
			t.Errorf("%q should be known", name)
		}
	}
	if models.KnownEscalationTemplate("no-such-template") {
		t.Error("unknown name accepted")
	}
}

func TestComputeDueDateAndBusinessHoursRoundTrip(t *testing.T) {
	budgets := []float64{1, 8, 24, 40}
	for _, budget := range budgets {
		due := models.ComputeDueDate(fri(10), budget)
		if got := models.BusinessHoursBetween(fri(10), due); got != budget {
			t.Errorf("budget %v: round trip gave %v", budget, got)
		}
	}
}
