package superbatch

import "strings"

// noWrapMarker is matched case-insensitively as a whole line, allowing
// trailing whitespace.
const noWrapMarker = "--# nowrap"

// markerScanner looks for the NOWRAP line in a batch that arrives in
// spans; a line may be split across spans.
type markerScanner struct {
	// matched bytes of noWrapMarker on the current line, -1 if the line
	// cannot be the marker
	state int
	found bool
}

func (m *markerScanner) scan(s string) {
	for i := 0; i < len(s) && !m.found; i++ {
		c := s[i]
		if c == '\n' {
			if m.state == len(noWrapMarker) {
				m.found = true
				return
			}
			m.state = 0
			continue
		}
		switch {
		case m.state < 0:
			j := strings.IndexByte(s[i:], '\n')
			if j < 0 {
				return
			}
			i += j - 1
		case m.state < len(noWrapMarker):
			if 'A' <= c && c <= 'Z' {
				c += 'a' - 'A'
			}
			if c == noWrapMarker[m.state] {
				m.state++
			} else {
				m.state = -1
			}
		default:
			if c != ' ' && c != '\t' && c != '\r' {
				m.state = -1
			}
		}
	}
}

// done reports whether the marker was found; the end of the batch also
// ends the last line.
func (m *markerScanner) done() bool {
	return m.found || m.state == len(noWrapMarker)
}
