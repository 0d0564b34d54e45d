package ics

import "strings"

// Append inserts a VEVENT block immediately before the closing
// END:VCALENDAR marker. When the marker is missing the block is appended to
// the end of the text; that only happens on a malformed document produced
// upstream, and losing the event would be worse than preserving the
// malformation.
func Append(document, block string) string {
	end := strings.LastIndex(document, "END:VCALENDAR")
	if end == -1 {
		return document + block + "\r\n"
	}
	return document[:end] + block + "\r\n" + document[end:]
}

// RemoveByUID drops the VEVENT block whose UID matches uid. Every other
// line, including the envelope and unrelated blocks, is carried over
// unchanged. Removing a UID that is not present is a no-op. The UID is
// matched on the unfolded logical line, so a folded UID still resolves.
func RemoveByUID(document, uid string) string {
	lines := splitLines(document)
	var result []string
	var block []string
	inEvent := false

	for _, line := range lines {
		switch {
		case line == "BEGIN:VEVENT":
			inEvent = true
			block = []string{line}
		case line == "END:VEVENT" && inEvent:
			block = append(block, line)
			if blockUID(block) != uid {
				result = append(result, block...)
			}
			inEvent = false
			block = nil
		case inEvent:
			block = append(block, line)
		default:
			result = append(result, line)
		}
	}
	return strings.Join(result, "\r\n")
}

// ReplaceByUID swaps the block identified by uid for newBlock. When uid is
// absent this degrades to a plain append, giving upsert semantics.
func ReplaceByUID(document, uid, newBlock string) string {
	return Append(RemoveByUID(document, uid), newBlock)
}

func blockUID(physical []string) string {
	for _, line := range unfoldBlock(physical) {
		if strings.HasPrefix(line, "UID:") {
			return strings.TrimSpace(line[len("UID:"):])
		}
	}
	return ""
}
