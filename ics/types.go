// Package ics encodes and decodes the subset of iCalendar (RFC 5545) text
// that calky stores per calendar: a single VCALENDAR envelope containing
// VEVENT blocks with optional VALARM sub-blocks. The package also provides
// the line-level splicing primitives used to edit a document in place
// without disturbing unrelated content.
package ics

import (
	"time"

	"github.com/samber/mo"
)

// ProdID identifies this implementation in generated VCALENDAR envelopes.
const ProdID = "-//Calky//EN"

// UIDDomain is the domain suffix appended to generated event UIDs.
const UIDDomain = "calky"

// DocumentProps carries the calendar-level properties that influence the
// VCALENDAR envelope. All fields are optional.
type DocumentProps struct {
	DisplayName string
	Method      string
	CalScale    string
}

// Organizer is the ORGANIZER property of an event.
type Organizer struct {
	Email  string
	CN     string
	SentBy string
}

// Attendee is a single ATTENDEE property of an event.
type Attendee struct {
	Email    string
	CN       string
	Role     string
	PartStat string
	RSVP     mo.Option[bool]
}

// Alarm is a VALARM sub-block. Action and Trigger are mandatory.
type Alarm struct {
	Action      string
	Trigger     string
	Description string
	Repeat      mo.Option[int]
	Duration    string
}

// NewEventInput describes an event to encode. Summary, Start and End are
// required; everything else is emitted only when present. End is expected
// to be after Start but the codec does not enforce it.
type NewEventInput struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time

	Categories []string
	Class      string
	Status     string
	Transp     string
	Priority   mo.Option[int]
	Sequence   mo.Option[int]

	RRule  string
	ExDate []time.Time

	Organizer *Organizer
	Attendees []Attendee
	Alarms    []Alarm
}

// EventRecord is the parsed projection of one VEVENT block. Raw holds the
// verbatim source text of the block so the block can be removed or carried
// over losslessly.
type EventRecord struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time

	Created      time.Time
	LastModified time.Time
	DTStamp      time.Time

	Sequence   int
	Status     string
	Categories []string
	Priority   int
	Class      string
	Transp     string

	RRule  string
	ExDate []time.Time

	Organizer *Organizer
	Attendees []Attendee
	Alarms    []Alarm

	Raw string
}
