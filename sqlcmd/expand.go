package sqlcmd

import "strings"

// refError points at a bad $(name) reference within an expanded span.
type refError struct {
	kind   ErrorKind
	name   string
	offset int
}

// hasReference reports whether s contains a $(name) reference, terminated
// or not.
func hasReference(s string) bool {
	for i := 0; ; {
		j := strings.Index(s[i:], "$(")
		if j < 0 {
			return false
		}
		i += j + 2
		if nameLen(s[i:]) > 0 {
			return true
		}
	}
}

// expand appends s to dst with every $(name) reference replaced by the
// variable value. Values are not scanned again. A `$(` not followed by a name
// is copied as-is.
func (v Variables) expand(dst []byte, s string) ([]byte, *refError) {
	copied := 0
	for i := 0; ; {
		j := strings.Index(s[i:], "$(")
		if j < 0 {
			break
		}
		ref := i + j
		nameStart := ref + 2
		n := nameLen(s[nameStart:])
		if n == 0 {
			i = nameStart
			continue
		}
		name := s[nameStart : nameStart+n]
		closing := nameStart + n
		if closing >= len(s) || s[closing] != ')' {
			return dst, &refError{UnterminatedVariable, name, ref}
		}
		value, ok := v[name]
		if !ok {
			return dst, &refError{UndefinedVariable, name, ref}
		}
		dst = append(dst, s[copied:ref]...)
		dst = append(dst, value...)
		copied = closing + 1
		i = copied
	}
	return append(dst, s[copied:]...), nil
}

// Expand returns s with every $(name) reference replaced, using the same
// rules as references in a script.
func (v Variables) Expand(s string) (string, error) {
	if !hasReference(s) {
		return s, nil
	}
	out, rerr := v.expand(make([]byte, 0, len(s)), s)
	if rerr != nil {
		return "", rerr.at(posOf("", s, rerr.offset))
	}
	return string(out), nil
}

func (e *refError) at(pos Pos) Error {
	if e.kind == UnterminatedVariable {
		return unterminatedVariable(pos, e.name)
	}
	return undefinedVariable(pos, e.name)
}
