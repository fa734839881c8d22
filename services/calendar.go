package services

import (
	"fmt"
	"strings"
	"time"

	"expert_panel_go/models"
)

// icsEscaper escapes RFC 5545 TEXT values: backslash first, then the
// reserved separators, then literal newlines.
var icsEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

func escapeICSText(s string) string {
	return icsEscaper.Replace(s)
}

// GenerateEventICS generates an ICS file for a calendar event so
// experts can add engagements to their own calendars.
func GenerateEventICS(event *models.CalendarEvent, organizerName, organizerEmail string) ([]byte, error) {
	if !event.IsValidInterval() {
		return nil, fmt.Errorf("event end must be after start")
	}

	// ICS timestamps (YYYYMMDDTHHMMSSZ); stored times are UTC
	dateFormat := "20060102T150405Z"
	dtStamp := time.Now().UTC().Format(dateFormat)
	dtStart := event.StartTime.UTC().Format(dateFormat)
	dtEnd := event.EndTime.UTC().Format(dateFormat)

	description := escapeICSText(event.Notes)
	if event.Case != nil {
		description = fmt.Sprintf("Case: %s", escapeICSText(event.Case.Title))
		if event.Notes != "" {
			description += `\n\n` + escapeICSText(event.Notes)
		}
	}

	const icsTemplate = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//ExpertPanel//Calendar//EN
CALSCALE:GREGORIAN
METHOD:REQUEST
BEGIN:VEVENT
UID:%s
DTSTAMP:%s
DTSTART:%s
DTEND:%s
SUMMARY:%s
DESCRIPTION:%s
ORGANIZER;CN="%s":mailto:%s
STATUS:CONFIRMED
END:VEVENT
END:VCALENDAR`

	icsContent := fmt.Sprintf(icsTemplate,
		event.ID,
		dtStamp,
		dtStart,
		dtEnd,
		escapeICSText(event.Title),
		description,
		organizerName,
		organizerEmail,
	)

	return []byte(icsContent), nil
}
