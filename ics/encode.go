package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
)

// now is swapped out in tests to pin DTSTAMP/CREATED/LAST-MODIFIED.
var now = time.Now

// NewDocument emits an empty VCALENDAR envelope. Calendar-level properties
// are taken from props when given; CALSCALE defaults to GREGORIAN. Every
// line passes through FoldLine and lines are joined with CRLF.
func NewDocument(props *DocumentProps) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"PRODID:" + ProdID,
		"VERSION:2.0",
	}
	calscale := "GREGORIAN"
	if props != nil && props.CalScale != "" {
		calscale = props.CalScale
	}
	lines = append(lines, "CALSCALE:"+calscale)
	if props != nil && props.Method != "" {
		lines = append(lines, "METHOD:"+props.Method)
	}
	if props != nil && props.DisplayName != "" {
		lines = append(lines, "X-WR-CALNAME:"+props.DisplayName)
	}
	lines = append(lines, "END:VCALENDAR")

	for i, line := range lines {
		lines[i] = FoldLine(line)
	}
	return strings.Join(lines, "\r\n")
}

// NewUID generates an event UID of the form <uuid>@calky.
func NewUID() string {
	return uuid.NewString() + "@" + UIDDomain
}

// ValidateRRule checks a recurrence rule string without expanding it.
func ValidateRRule(rule string) error {
	if _, err := rrule.StrToRRule(rule); err != nil {
		return fmt.Errorf("invalid RRULE %q: %w", rule, err)
	}
	return nil
}

// EncodeEvent builds one VEVENT block from input. A fresh UID is generated
// when uid is empty. All text values are escaped and every line is folded;
// lines are joined with CRLF and the block carries no trailing newline.
func EncodeEvent(input NewEventInput, uid string) (string, error) {
	return encodeEventAt(input, uid, now())
}

func encodeEventAt(input NewEventInput, uid string, now time.Time) (string, error) {
	if input.Summary == "" {
		return "", fmt.Errorf("event summary is required")
	}
	if input.Start.IsZero() || input.End.IsZero() {
		return "", fmt.Errorf("event start and end are required")
	}
	if input.RRule != "" {
		if err := ValidateRRule(input.RRule); err != nil {
			return "", err
		}
	}
	if uid == "" {
		uid = NewUID()
	}

	lines := []string{
		"BEGIN:VEVENT",
		"UID:" + uid,
		"DTSTAMP:" + FormatDateTimeUTC(now),
		"DTSTART:" + FormatDateTimeUTC(input.Start),
		"DTEND:" + FormatDateTimeUTC(input.End),
		"SUMMARY:" + EscapeText(input.Summary),
		"CREATED:" + FormatDateTimeUTC(now),
		"LAST-MODIFIED:" + FormatDateTimeUTC(now),
	}

	if input.Description != "" {
		lines = append(lines, "DESCRIPTION:"+EscapeText(input.Description))
	}
	if input.Location != "" {
		lines = append(lines, "LOCATION:"+EscapeText(input.Location))
	}
	if len(input.Categories) > 0 {
		escaped := make([]string, len(input.Categories))
		for i, c := range input.Categories {
			escaped[i] = EscapeText(c)
		}
		lines = append(lines, "CATEGORIES:"+strings.Join(escaped, ","))
	}
	if input.Class != "" {
		lines = append(lines, "CLASS:"+input.Class)
	}
	if input.Status != "" {
		lines = append(lines, "STATUS:"+input.Status)
	}
	if input.Transp != "" {
		lines = append(lines, "TRANSP:"+input.Transp)
	}
	if p, ok := input.Priority.Get(); ok {
		lines = append(lines, fmt.Sprintf("PRIORITY:%d", p))
	}
	lines = append(lines, fmt.Sprintf("SEQUENCE:%d", input.Sequence.OrElse(0)))

	if input.RRule != "" {
		lines = append(lines, "RRULE:"+input.RRule)
	}
	if len(input.ExDate) > 0 {
		dates := make([]string, len(input.ExDate))
		for i, d := range input.ExDate {
			dates[i] = FormatDateTimeUTC(d)
		}
		lines = append(lines, "EXDATE:"+strings.Join(dates, ","))
	}

	if org := input.Organizer; org != nil {
		line := "ORGANIZER"
		if org.CN != "" {
			line += `;CN="` + EscapeText(org.CN) + `"`
		}
		if org.SentBy != "" {
			line += `;SENT-BY="` + org.SentBy + `"`
		}
		line += ":MAILTO:" + org.Email
		lines = append(lines, line)
	}
	for _, att := range input.Attendees {
		line := "ATTENDEE"
		if att.CN != "" {
			line += `;CN="` + EscapeText(att.CN) + `"`
		}
		if att.Role != "" {
			line += ";ROLE=" + att.Role
		}
		if att.PartStat != "" {
			line += ";PARTSTAT=" + att.PartStat
		}
		if rsvp, ok := att.RSVP.Get(); ok {
			if rsvp {
				line += ";RSVP=TRUE"
			} else {
				line += ";RSVP=FALSE"
			}
		}
		line += ":MAILTO:" + att.Email
		lines = append(lines, line)
	}

	for _, alarm := range input.Alarms {
		if alarm.Action == "" || alarm.Trigger == "" {
			return "", fmt.Errorf("alarm action and trigger are required")
		}
		lines = append(lines, "BEGIN:VALARM")
		lines = append(lines, "ACTION:"+alarm.Action)
		lines = append(lines, "TRIGGER:"+alarm.Trigger)
		if alarm.Description != "" {
			lines = append(lines, "DESCRIPTION:"+EscapeText(alarm.Description))
		}
		if repeat, ok := alarm.Repeat.Get(); ok {
			lines = append(lines, fmt.Sprintf("REPEAT:%d", repeat))
		}
		if alarm.Duration != "" {
			lines = append(lines, "DURATION:"+alarm.Duration)
		}
		lines = append(lines, "END:VALARM")
	}

	lines = append(lines, "END:VEVENT")

	for i, line := range lines {
		lines[i] = FoldLine(line)
	}
	return strings.Join(lines, "\r\n"), nil
}
