package sqlcmd

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// argScanner is a cursor over the argument text of a :setvar or :r directive.
type argScanner struct {
	input string
	index int
}

func (s *argScanner) skipSpace() {
	for s.index < len(s.input) {
		r, w := utf8.DecodeRuneInString(s.input[s.index:])
		if !unicode.IsSpace(r) {
			return
		}
		s.index += w
	}
}

func (s *argScanner) atEnd() bool {
	return s.index >= len(s.input)
}

func (s *argScanner) name() string {
	n := nameLen(s.input[s.index:])
	result := s.input[s.index : s.index+n]
	s.index += n
	return result
}

// quoted scans a double-quoted string starting at the current position,
// where "" stands for a single ". The string may span lines.
func (s *argScanner) quoted() (string, bool) {
	s.index++ // opening quote
	var b strings.Builder
	for {
		i := strings.IndexByte(s.input[s.index:], '"')
		if i < 0 {
			s.index = len(s.input)
			return "", false
		}
		b.WriteString(s.input[s.index : s.index+i])
		s.index += i + 1
		if s.index < len(s.input) && s.input[s.index] == '"' {
			b.WriteByte('"')
			s.index++
			continue
		}
		return b.String(), true
	}
}

// unquoted scans up to the next whitespace or double quote.
func (s *argScanner) unquoted() string {
	start := s.index
	for s.index < len(s.input) {
		r, w := utf8.DecodeRuneInString(s.input[s.index:])
		if unicode.IsSpace(r) || r == '"' {
			break
		}
		s.index += w
	}
	return s.input[start:s.index]
}

// parseSetvar parses `name [value]`. hasValue is false when the directive
// should remove the variable.
func parseSetvar(args string, pos Pos) (name, value string, hasValue bool, err error) {
	s := argScanner{input: args}
	s.skipSpace()
	name = s.name()
	if name == "" {
		return "", "", false, errorAt(InvalidSetvar, pos, "Invalid syntax in :setvar directive.")
	}
	if !s.atEnd() {
		r, _ := utf8.DecodeRuneInString(s.input[s.index:])
		if !unicode.IsSpace(r) {
			return "", "", false, errorAt(InvalidSetvar, pos, "Invalid syntax in :setvar directive.")
		}
	}
	s.skipSpace()
	if s.atEnd() {
		return name, "", false, nil
	}
	if s.input[s.index] == '"' {
		var ok bool
		if value, ok = s.quoted(); !ok {
			return "", "", false, errorAt(UnterminatedQuote, pos, "Unterminated double-quoted string.")
		}
	} else {
		value = s.unquoted()
	}
	s.skipSpace()
	if !s.atEnd() {
		return "", "", false, errorAt(InvalidSetvar, pos, "Invalid syntax in :setvar directive.")
	}
	return name, value, true, nil
}

// parseInclude parses the single path argument of :r. An unquoted path is
// everything on the line, trimmed.
func parseInclude(args string, pos Pos) (string, error) {
	s := argScanner{input: args}
	s.skipSpace()
	if s.atEnd() {
		return "", errorAt(InvalidInclude, pos, "Invalid syntax in :r directive.")
	}
	if s.input[s.index] == '"' {
		path, ok := s.quoted()
		if !ok {
			return "", errorAt(UnterminatedQuote, pos, "Unterminated double-quoted string.")
		}
		s.skipSpace()
		if !s.atEnd() || path == "" {
			return "", errorAt(InvalidInclude, pos, "Invalid syntax in :r directive.")
		}
		return path, nil
	}
	path := strings.TrimFunc(s.input[s.index:], unicode.IsSpace)
	if strings.ContainsRune(path, '"') {
		return "", errorAt(InvalidInclude, pos, "Invalid syntax in :r directive.")
	}
	return path, nil
}
