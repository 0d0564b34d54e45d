package calclient

import (
	"github.com/samber/mo"

	"github.com/gillohner/calky/ics"
)

// CalendarProps is the per-calendar metadata blob stored next to the
// document. The ctag is a monotonically increasing revision tag of the form
// v<N>, bumped on every mutation so index consumers can detect change
// cheaply.
type CalendarProps struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Color       string `json:"color,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	CTag        string `json:"ctag"`
	ReadOnly    bool   `json:"readOnly,omitempty"`
	Owner       string `json:"owner,omitempty"`
	Description string `json:"description,omitempty"`
	Method      string `json:"method,omitempty"`
	CalScale    string `json:"calscale,omitempty"`
}

// IndexEntry summarizes one calendar inside the owner's index.
type IndexEntry struct {
	ID          string `json:"id"`
	Href        string `json:"href"`
	DisplayName string `json:"displayName"`
	Color       string `json:"color,omitempty"`
	ReadOnly    bool   `json:"readOnly,omitempty"`
}

// Index lists all calendars owned by a user. It is an independent
// consistency domain from the document/props pair and may drift briefly.
type Index struct {
	Calendars []IndexEntry `json:"calendars"`
}

// InitProps carries the caller-supplied properties for a new calendar.
type InitProps struct {
	DisplayName string
	Color       string
	Timezone    string
	Description string
	Method      string
	CalScale    string
}

// PropsUpdate is a partial update of calendar properties; nil fields are
// left untouched.
type PropsUpdate struct {
	DisplayName *string
	Color       *string
	Timezone    *string
	Description *string
	Method      *string
	CalScale    *string
}

// CreatedCalendar is the result of CreateCalendar.
type CreatedCalendar struct {
	ID       string
	Props    CalendarProps
	Document string
	ETag     string
}

// Document is the resolved state of a calendar document. The etag is absent
// when the document has never been written or the side-channel is missing.
type Document struct {
	ICS  string
	ETag mo.Option[string]
}

// Empty reports whether no document exists yet.
func (d Document) Empty() bool {
	return d.ICS == ""
}

// documentProps converts stored calendar properties into the envelope
// properties the codec understands.
func documentProps(props *CalendarProps) *ics.DocumentProps {
	if props == nil {
		return nil
	}
	return &ics.DocumentProps{
		DisplayName: props.DisplayName,
		Method:      props.Method,
		CalScale:    props.CalScale,
	}
}
