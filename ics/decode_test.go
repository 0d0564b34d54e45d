package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEncode(t *testing.T, input NewEventInput, uid string) string {
	t.Helper()
	block, err := encodeEventAt(input, uid, testNow)
	require.NoError(t, err)
	return block
}

func TestDecodeEmptyDocument(t *testing.T) {
	assert.Nil(t, Decode(""))
	assert.Nil(t, Decode(NewDocument(nil)))
}

func TestCreateAndDecode(t *testing.T) {
	input := NewEventInput{
		Summary: "Standup",
		Start:   time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 1, 1, 9, 15, 0, 0, time.UTC),
	}
	doc := Append(NewDocument(nil), mustEncode(t, input, ""))

	events := Decode(doc)
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, "Standup", ev.Summary)
	assert.True(t, ev.Start.Equal(input.Start))
	assert.True(t, ev.End.Equal(input.End))
	assert.Equal(t, 0, ev.Sequence)
	assert.True(t, strings.HasSuffix(ev.UID, "@calky"))
	assert.True(t, strings.HasPrefix(ev.Raw, "BEGIN:VEVENT"))
	assert.True(t, strings.HasSuffix(ev.Raw, "END:VEVENT"))
}

func TestRoundTripFields(t *testing.T) {
	input := NewEventInput{
		Summary:     "Planning; Q1, part 2",
		Description: "Line one\nline two",
		Location:    "Room 1, floor 2",
		Start:       time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC),
		Categories:  []string{"work", "planning, misc"},
		Status:      "CONFIRMED",
		Class:       "PRIVATE",
		Transp:      "OPAQUE",
		RRule:       "FREQ=WEEKLY;COUNT=10",
		ExDate:      []time.Time{time.Date(2024, 1, 9, 10, 0, 0, 0, time.UTC)},
		Organizer:   &Organizer{Email: "boss@example.com", CN: "The Boss"},
		Attendees:   []Attendee{{Email: "a@example.com", CN: "Alice", Role: "CHAIR"}},
		Alarms:      []Alarm{{Action: "DISPLAY", Trigger: "-PT15M", Description: "Ping, now"}},
	}
	doc := Append(NewDocument(nil), mustEncode(t, input, "rt@calky"))

	events := Decode(doc)
	require.Len(t, events, 1)
	ev := events[0]

	assert.Equal(t, "rt@calky", ev.UID)
	assert.Equal(t, input.Summary, ev.Summary)
	assert.Equal(t, input.Description, ev.Description)
	assert.Equal(t, input.Location, ev.Location)
	assert.True(t, ev.Start.Equal(input.Start))
	assert.True(t, ev.End.Equal(input.End))
	assert.Equal(t, input.Categories, ev.Categories)
	assert.Equal(t, "CONFIRMED", ev.Status)
	assert.Equal(t, "PRIVATE", ev.Class)
	assert.Equal(t, "OPAQUE", ev.Transp)
	assert.Equal(t, input.RRule, ev.RRule)
	require.Len(t, ev.ExDate, 1)
	assert.True(t, ev.ExDate[0].Equal(input.ExDate[0]))

	require.NotNil(t, ev.Organizer)
	assert.Equal(t, "boss@example.com", ev.Organizer.Email)
	assert.Equal(t, "The Boss", ev.Organizer.CN)

	require.Len(t, ev.Attendees, 1)
	assert.Equal(t, "a@example.com", ev.Attendees[0].Email)
	assert.Equal(t, "Alice", ev.Attendees[0].CN)
	assert.Equal(t, "CHAIR", ev.Attendees[0].Role)

	require.Len(t, ev.Alarms, 1)
	assert.Equal(t, "DISPLAY", ev.Alarms[0].Action)
	assert.Equal(t, "-PT15M", ev.Alarms[0].Trigger)
	assert.Equal(t, "Ping, now", ev.Alarms[0].Description)
}

func TestRoundTripWhitespaceSurvives(t *testing.T) {
	tests := []struct {
		name    string
		summary string
	}{
		// The fold boundary lands exactly on a space inside the value:
		// "SUMMARY:" plus 67 octets fills the first segment, so the space
		// opens the continuation.
		{"space at fold boundary", strings.Repeat("a", 67) + " rest of the text after the fold boundary"},
		{"leading space", " indented summary"},
		{"trailing space", "dangling summary "},
		{"double spaces folded long", strings.Repeat("word  pair ", 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := NewEventInput{
				Summary:     tt.summary,
				Description: tt.summary,
				Start:       time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
				End:         time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC),
			}
			doc := Append(NewDocument(nil), mustEncode(t, input, "ws@calky"))

			events := Decode(doc)
			require.Len(t, events, 1)
			assert.Equal(t, tt.summary, events[0].Summary)
			assert.Equal(t, tt.summary, events[0].Description)
		})
	}
}

func TestDecodeDocumentOrder(t *testing.T) {
	later := NewEventInput{Summary: "later", Start: testNow.Add(2 * time.Hour), End: testNow.Add(3 * time.Hour)}
	earlier := NewEventInput{Summary: "earlier", Start: testNow, End: testNow.Add(time.Hour)}

	doc := NewDocument(nil)
	doc = Append(doc, mustEncode(t, later, "b@calky"))
	doc = Append(doc, mustEncode(t, earlier, "a@calky"))

	events := Decode(doc)
	require.Len(t, events, 2)
	assert.Equal(t, "b@calky", events[0].UID)
	assert.Equal(t, "a@calky", events[1].UID)

	SortByStart(events)
	assert.Equal(t, "a@calky", events[0].UID)
}

func TestDecodeDropsIncompleteBlocks(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{"missing uid", []string{"SUMMARY:x", "DTSTART:20240101T090000Z", "DTEND:20240101T100000Z"}},
		{"missing summary", []string{"UID:x@calky", "DTSTART:20240101T090000Z", "DTEND:20240101T100000Z"}},
		{"missing end", []string{"UID:x@calky", "SUMMARY:x", "DTSTART:20240101T090000Z"}},
		{"unparsable start", []string{"UID:x@calky", "SUMMARY:x", "DTSTART:whenever", "DTEND:20240101T100000Z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := strings.Join(append(append([]string{"BEGIN:VEVENT"}, tt.lines...), "END:VEVENT"), "\r\n")
			doc := Append(NewDocument(nil), body)
			assert.Empty(t, Decode(doc))
		})
	}
}

func TestDecodeKeepsGoodBlocksNextToBadOnes(t *testing.T) {
	bad := "BEGIN:VEVENT\r\nSUMMARY:no uid\r\nDTSTART:20240101T090000Z\r\nDTEND:20240101T100000Z\r\nEND:VEVENT"
	good := mustEncode(t, NewEventInput{Summary: "kept", Start: testNow, End: testNow.Add(time.Hour)}, "keep@calky")

	doc := Append(Append(NewDocument(nil), bad), good)
	events := Decode(doc)
	require.Len(t, events, 1)
	assert.Equal(t, "keep@calky", events[0].UID)
}

func TestDecodeFoldedUID(t *testing.T) {
	longUID := strings.Repeat("u", 90) + "@calky"
	block := mustEncode(t, NewEventInput{Summary: "folded", Start: testNow, End: testNow.Add(time.Hour)}, longUID)
	require.Contains(t, block, "\r\n ", "UID line should have been folded")

	events := Decode(Append(NewDocument(nil), block))
	require.Len(t, events, 1)
	assert.Equal(t, longUID, events[0].UID)
}

func TestDecodeAlarmDescriptionDoesNotLeak(t *testing.T) {
	// A DESCRIPTION inside VALARM must not overwrite the event description.
	block := strings.Join([]string{
		"BEGIN:VEVENT",
		"UID:alarm@calky",
		"SUMMARY:with alarm",
		"DTSTART:20240101T090000Z",
		"DTEND:20240101T100000Z",
		"DESCRIPTION:event text",
		"BEGIN:VALARM",
		"ACTION:DISPLAY",
		"TRIGGER:-PT5M",
		"DESCRIPTION:alarm text",
		"END:VALARM",
		"END:VEVENT",
	}, "\r\n")

	events := Decode(Append(NewDocument(nil), block))
	require.Len(t, events, 1)
	assert.Equal(t, "event text", events[0].Description)
	require.Len(t, events[0].Alarms, 1)
	assert.Equal(t, "alarm text", events[0].Alarms[0].Description)
}

func TestDecodeToleratesUnknownPropertiesAndLF(t *testing.T) {
	doc := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"BEGIN:VEVENT",
		"UID:lf@calky",
		"SUMMARY:unix line endings",
		"DTSTART:20240101T090000Z",
		"DTEND:20240101T100000Z",
		"X-CUSTOM-THING:ignored",
		"GEO:37.386013;-122.082932",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\n")

	events := Decode(doc)
	require.Len(t, events, 1)
	assert.Equal(t, "unix line endings", events[0].Summary)
}
