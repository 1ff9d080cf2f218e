package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communityhub/internal/domain"
)

func testEventData() *domain.CalendarEventData {
	return &domain.CalendarEventData{
		UID:         "reg-123@communityhub",
		Title:       "Go Meetup",
		Description: "Monthly meetup",
		Location:    "Main Hall",
		StartTime:   time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC),
		URL:         "https://example.com/events/ev-1",
	}
}

func TestICSBuilder_Build(t *testing.T) {
	b := NewICSBuilder("", "events@example.com")
	att, err := b.Build(testEventData())
	require.NoError(t, err)
	require.NotNil(t, att)

	assert.Equal(t, "invite.ics", att.Filename)
	assert.Contains(t, att.ContentType, "text/calendar")

	ics := string(att.Content)
	assert.True(t, strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, ics, "BEGIN:VEVENT\r\n")
	assert.Contains(t, ics, "UID:reg-123@communityhub\r\n")
	assert.Contains(t, ics, "DTSTART:20260314T180000Z\r\n")
	assert.Contains(t, ics, "DTEND:20260314T200000Z\r\n")
	assert.Contains(t, ics, "SUMMARY:Go Meetup\r\n")
	assert.Contains(t, ics, "LOCATION:Main Hall\r\n")
	assert.Contains(t, ics, "END:VCALENDAR\r\n")
}

func TestICSBuilder_Build_organizer(t *testing.T) {
	data := testEventData()
	data.Organizer = "Gophers Madrid"

	att, err := NewICSBuilder("", "events@example.com").Build(data)
	require.NoError(t, err)
	assert.Contains(t, string(att.Content), "ORGANIZER;CN=Gophers Madrid:mailto:events@example.com\r\n")
}

func TestICSBuilder_Build_organizer_needs_sending_address(t *testing.T) {
	data := testEventData()
	data.Organizer = "Gophers Madrid"

	att, err := NewICSBuilder("", "").Build(data)
	require.NoError(t, err)
	assert.NotContains(t, string(att.Content), "ORGANIZER")
}

func TestICSBuilder_Build_converts_to_utc(t *testing.T) {
	tz := time.FixedZone("CET", 3600)
	data := testEventData()
	data.StartTime = time.Date(2026, 3, 14, 19, 0, 0, 0, tz)
	data.EndTime = time.Date(2026, 3, 14, 21, 0, 0, 0, tz)

	att, err := NewICSBuilder("", "events@example.com").Build(data)
	require.NoError(t, err)
	ics := string(att.Content)
	assert.Contains(t, ics, "DTSTART:20260314T180000Z\r\n")
	assert.Contains(t, ics, "DTEND:20260314T200000Z\r\n")
}

func TestICSBuilder_Build_escapes_special_characters(t *testing.T) {
	data := testEventData()
	data.Title = "Pizza, Beer; Go"
	data.Description = "Line one\nLine two"

	att, err := NewICSBuilder("", "events@example.com").Build(data)
	require.NoError(t, err)
	ics := string(att.Content)
	assert.Contains(t, ics, `SUMMARY:Pizza\, Beer\; Go`)
	assert.Contains(t, ics, `DESCRIPTION:Line one\nLine two`)
}

func TestICSBuilder_Build_folds_long_lines(t *testing.T) {
	data := testEventData()
	data.Description = strings.Repeat("a", 200)

	att, err := NewICSBuilder("", "events@example.com").Build(data)
	require.NoError(t, err)

	for _, line := range strings.Split(string(att.Content), "\r\n") {
		assert.LessOrEqual(t, len(line), 76, "line exceeds fold limit: %q", line)
	}
	// Unfolding restores the full description.
	unfolded := strings.ReplaceAll(string(att.Content), "\r\n ", "")
	assert.Contains(t, unfolded, "DESCRIPTION:"+data.Description)
}

func TestICSBuilder_Build_rejects_missing_times(t *testing.T) {
	data := testEventData()
	data.EndTime = time.Time{}

	_, err := NewICSBuilder("", "events@example.com").Build(data)
	assert.Error(t, err)
}

func TestICSBuilder_Build_rejects_end_before_start(t *testing.T) {
	data := testEventData()
	data.EndTime = data.StartTime.Add(-time.Hour)

	_, err := NewICSBuilder("", "events@example.com").Build(data)
	assert.Error(t, err)
}
