package ics

import (
	"sort"
	"strconv"
	"strings"

	"github.com/samber/mo"
)

// Decode parses every VEVENT block out of a VCALENDAR document, in document
// order. Decoding is tolerant: unknown properties are ignored and a block
// missing any of UID, SUMMARY, DTSTART or DTEND (or carrying an unparsable
// required date) is dropped from the result rather than failing the whole
// document. Raw always holds the verbatim block text joined with CRLF.
func Decode(document string) []EventRecord {
	if !strings.Contains(document, "BEGIN:VEVENT") {
		return nil
	}

	var events []EventRecord
	lines := splitLines(document)
	var block []string
	inEvent := false

	for _, line := range lines {
		switch {
		case line == "BEGIN:VEVENT":
			inEvent = true
			block = []string{line}
		case line == "END:VEVENT" && inEvent:
			block = append(block, line)
			if record, ok := decodeBlock(block); ok {
				events = append(events, record)
			}
			inEvent = false
			block = nil
		case inEvent:
			block = append(block, line)
		}
	}
	return events
}

// SortByStart orders events by start time, earliest first. Decode itself
// preserves document order; listing callers usually want chronological.
func SortByStart(events []EventRecord) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
}

// decodeBlock parses one VEVENT from its physical lines. Property
// extraction works on unfolded logical lines so folded values (including a
// folded UID) are handled; Raw keeps the physical lines untouched.
func decodeBlock(physical []string) (EventRecord, bool) {
	record := EventRecord{Raw: strings.Join(physical, "\r\n")}

	var hasStart, hasEnd bool
	var alarm *Alarm

	for _, line := range unfoldBlock(physical) {
		if line == "BEGIN:VEVENT" || line == "END:VEVENT" {
			continue
		}
		if line == "BEGIN:VALARM" {
			alarm = &Alarm{}
			continue
		}
		if line == "END:VALARM" {
			if alarm != nil {
				record.Alarms = append(record.Alarms, *alarm)
				alarm = nil
			}
			continue
		}
		name, params, value := splitPropertyLine(line)
		if alarm != nil {
			decodeAlarmProperty(alarm, name, value)
			continue
		}
		decodeEventProperty(&record, &hasStart, &hasEnd, name, params, value)
	}

	if record.UID == "" || record.Summary == "" || !hasStart || !hasEnd {
		return EventRecord{}, false
	}
	return record, true
}

func decodeEventProperty(record *EventRecord, hasStart, hasEnd *bool, name string, params map[string]string, value string) {
	switch name {
	case "UID":
		record.UID = value
	case "SUMMARY":
		record.Summary = UnescapeText(value)
	case "DESCRIPTION":
		record.Description = UnescapeText(value)
	case "LOCATION":
		record.Location = UnescapeText(value)
	case "DTSTART":
		if t, err := ParseDate(value); err == nil {
			record.Start = t
			*hasStart = true
		}
	case "DTEND":
		if t, err := ParseDate(value); err == nil {
			record.End = t
			*hasEnd = true
		}
	case "CREATED":
		if t, err := ParseDate(value); err == nil {
			record.Created = t
		}
	case "LAST-MODIFIED":
		if t, err := ParseDate(value); err == nil {
			record.LastModified = t
		}
	case "DTSTAMP":
		if t, err := ParseDate(value); err == nil {
			record.DTStamp = t
		}
	case "SEQUENCE":
		if n, err := strconv.Atoi(value); err == nil {
			record.Sequence = n
		}
	case "STATUS":
		record.Status = value
	case "CATEGORIES":
		for _, item := range splitEscaped(value, ',') {
			record.Categories = append(record.Categories, UnescapeText(item))
		}
	case "PRIORITY":
		if n, err := strconv.Atoi(value); err == nil {
			record.Priority = n
		}
	case "CLASS":
		record.Class = value
	case "TRANSP":
		record.Transp = value
	case "RRULE":
		record.RRule = value
	case "EXDATE":
		for _, item := range splitEscaped(value, ',') {
			if t, err := ParseDate(item); err == nil {
				record.ExDate = append(record.ExDate, t)
			}
		}
	case "ORGANIZER":
		record.Organizer = &Organizer{
			Email:  stripMailto(value),
			CN:     UnescapeText(params["CN"]),
			SentBy: params["SENT-BY"],
		}
	case "ATTENDEE":
		att := Attendee{
			Email:    stripMailto(value),
			CN:       UnescapeText(params["CN"]),
			Role:     params["ROLE"],
			PartStat: params["PARTSTAT"],
		}
		switch strings.ToUpper(params["RSVP"]) {
		case "TRUE":
			att.RSVP = mo.Some(true)
		case "FALSE":
			att.RSVP = mo.Some(false)
		}
		record.Attendees = append(record.Attendees, att)
	}
}

func decodeAlarmProperty(alarm *Alarm, name, value string) {
	switch name {
	case "ACTION":
		alarm.Action = value
	case "TRIGGER":
		alarm.Trigger = value
	case "DESCRIPTION":
		alarm.Description = UnescapeText(value)
	case "REPEAT":
		if n, err := strconv.Atoi(value); err == nil {
			alarm.Repeat = mo.Some(n)
		}
	case "DURATION":
		alarm.Duration = value
	}
}

// splitPropertyLine breaks a logical content line into the property name,
// its parameters and the value. Separators inside double quotes are
// honored, since CN parameters are emitted quoted.
func splitPropertyLine(line string) (name string, params map[string]string, value string) {
	params = map[string]string{}

	inQuotes := false
	colon := -1
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuotes = !inQuotes
		case ':':
			if !inQuotes {
				colon = i
			}
		}
		if colon != -1 {
			break
		}
	}
	if colon == -1 {
		return strings.ToUpper(strings.TrimSpace(line)), params, ""
	}

	// The value is verbatim; leading or trailing whitespace after the colon
	// belongs to it. Only parameters get trimmed.
	head := line[:colon]
	value = line[colon+1:]

	parts := splitQuoted(head, ';')
	name = strings.ToUpper(strings.TrimSpace(parts[0]))
	for _, part := range parts[1:] {
		eq := strings.IndexByte(part, '=')
		if eq == -1 {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(part[:eq]))
		val := strings.Trim(strings.TrimSpace(part[eq+1:]), `"`)
		params[key] = val
	}
	return name, params, value
}

// splitQuoted splits on sep, ignoring separators inside double quotes.
func splitQuoted(s string, sep byte) []string {
	var parts []string
	inQuotes := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case sep:
			if !inQuotes {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// splitEscaped splits on sep, ignoring separators preceded by a backslash.
// Used for multi-value properties whose items are individually escaped.
func splitEscaped(s string, sep byte) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == sep {
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

func stripMailto(value string) string {
	if len(value) >= 7 && strings.EqualFold(value[:7], "mailto:") {
		return strings.TrimSpace(value[7:])
	}
	return value
}
