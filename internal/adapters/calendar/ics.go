package calendar

import (
	"fmt"
	"strings"
	"time"

	"communityhub/internal/domain"
)

const icsTimeLayout = "20060102T150405Z"

type icsBuilder struct {
	prodID         string
	organizerEmail string
}

// NewICSBuilder returns a CalendarBuilder that emits a single-VEVENT ICS file.
// organizerEmail is the sending address used as the ORGANIZER cal-address.
// No third-party ICS library is used; the output is a minimal RFC 5545 subset.
func NewICSBuilder(prodID, organizerEmail string) domain.CalendarBuilder {
	if prodID == "" {
		prodID = "-//communityhub//events//EN"
	}
	return &icsBuilder{prodID: prodID, organizerEmail: organizerEmail}
}

func (b *icsBuilder) Build(data *domain.CalendarEventData) (*domain.Attachment, error) {
	if data == nil {
		return nil, fmt.Errorf("calendar event data is nil")
	}
	if data.StartTime.IsZero() || data.EndTime.IsZero() {
		return nil, fmt.Errorf("calendar event requires start and end times")
	}
	if !data.EndTime.After(data.StartTime) {
		return nil, fmt.Errorf("calendar event end must be after start")
	}

	var sb strings.Builder
	line := func(name, value string) {
		if value == "" {
			return
		}
		foldLine(&sb, name+":"+value)
	}

	sb.WriteString("BEGIN:VCALENDAR\r\n")
	line("VERSION", "2.0")
	line("PRODID", b.prodID)
	line("METHOD", "PUBLISH")
	sb.WriteString("BEGIN:VEVENT\r\n")
	line("UID", data.UID)
	line("DTSTAMP", time.Now().UTC().Format(icsTimeLayout))
	line("DTSTART", data.StartTime.UTC().Format(icsTimeLayout))
	line("DTEND", data.EndTime.UTC().Format(icsTimeLayout))
	line("SUMMARY", escapeText(data.Title))
	line("DESCRIPTION", escapeText(data.Description))
	line("LOCATION", escapeText(data.Location))
	line("URL", data.URL)
	if data.Organizer != "" && b.organizerEmail != "" {
		line("ORGANIZER;CN="+escapeText(data.Organizer), "mailto:"+b.organizerEmail)
	}
	sb.WriteString("END:VEVENT\r\n")
	sb.WriteString("END:VCALENDAR\r\n")

	return &domain.Attachment{
		Filename:    "invite.ics",
		ContentType: "text/calendar; method=PUBLISH",
		Content:     []byte(sb.String()),
	}, nil
}

// escapeText escapes backslash, semicolon, comma, and newline per RFC 5545.
func escapeText(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
	)
	return r.Replace(s)
}

// foldLine writes a content line folded at 75 octets with CRLF plus a space
// continuation, splitting on byte boundaries as the spec permits for UTF-8
// aware producers only at rune boundaries.
func foldLine(sb *strings.Builder, line string) {
	const limit = 75
	for len(line) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		if cut == 0 {
			cut = limit
		}
		sb.WriteString(line[:cut])
		sb.WriteString("\r\n ")
		line = line[cut:]
	}
	sb.WriteString(line)
	sb.WriteString("\r\n")
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
