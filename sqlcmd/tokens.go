package sqlcmd

import (
	"regexp"

	"github.com/smasher164/xid"
)

type tokenType int

const (
	stringLiteralToken tokenType = iota + 1
	quotedIdentifierToken
	singlelineCommentToken
	multilineCommentToken
	variableToken
	batchSeparatorToken
	includeDirectiveToken
	setvarDirectiveToken
)

func (t tokenType) String() string {
	switch t {
	case stringLiteralToken:
		return "StringLiteral"
	case quotedIdentifierToken:
		return "QuotedIdentifier"
	case singlelineCommentToken:
		return "SinglelineComment"
	case multilineCommentToken:
		return "MultilineComment"
	case variableToken:
		return "Variable"
	case batchSeparatorToken:
		return "BatchSeparator"
	case includeDirectiveToken:
		return "IncludeDirective"
	case setvarDirectiveToken:
		return "SetvarDirective"
	}
	return "Unknown"
}

// The alternatives are tried in this order at each position, and the
// leftmost match wins, so the order matters: a directive line is only seen
// when no comment, string or quoted name starts earlier on the line.
//
// Unterminated strings, names and comments run to the end of the buffer.
const tokenPattern = `('(?:[^']|'')*'?)` +
	`|(\[(?:[^\]]|\]\])*\]?)` +
	`|(--[^\r\n]*)` +
	`|(/\*(?s:.*?)(?:\*/|\z))` +
	`|(\$\([\p{L}\p{Nl}\p{Mn}\p{Mc}\p{Nd}\p{Pc}\-]+\)?)` +
	`|((?m:^)[ \t]*(?i:go)[ \t]*(?:\r?\n|\z))` +
	`|((?m:^)[ \t]*:(?i:(r|setvar))(?:[ \t]((?:[^\r\n"]|"(?:[^"]|"")*"?)*))?(?:\r?\n|\z))`

var tokenRegexp = regexp.MustCompile(tokenPattern)

// submatch group index of each alternative
var tokenGroups = [...]struct {
	group int
	typ   tokenType
}{
	{1, stringLiteralToken},
	{2, quotedIdentifierToken},
	{3, singlelineCommentToken},
	{4, multilineCommentToken},
	{5, variableToken},
	{6, batchSeparatorToken},
	{7, 0}, // directive, resolved by keyword group
}

const (
	directiveKeywordGroup = 8
	directiveArgsGroup    = 9
)

type token struct {
	typ        tokenType
	start, end int
	// argument span of :r and :setvar; argStart == argEnd when absent
	argStart, argEnd int
}

// nextToken finds the first token in text at or after pos. ok is false when
// there are no more tokens.
func nextToken(text string, pos int) (t token, ok bool) {
	for pos < len(text) {
		m := tokenRegexp.FindStringSubmatchIndex(text[pos:])
		if m == nil {
			return token{}, false
		}
		for _, g := range tokenGroups {
			if m[2*g.group] >= 0 {
				t.typ = g.typ
				break
			}
		}
		t.start, t.end = pos+m[0], pos+m[1]

		if t.typ == 0 || t.typ == batchSeparatorToken {
			// Matching on text[pos:] makes ^ match at pos even when pos is in
			// the middle of a line. Such a match starts with one of ' ', '\t',
			// ':' or 'g', none of which can start another token, so skip a byte.
			if m[0] == 0 && pos > 0 && text[pos-1] != '\n' {
				pos++
				continue
			}
		}
		if t.typ == 0 {
			kw := text[pos+m[2*directiveKeywordGroup] : pos+m[2*directiveKeywordGroup+1]]
			if len(kw) == 1 {
				t.typ = includeDirectiveToken
			} else {
				t.typ = setvarDirectiveToken
			}
			if m[2*directiveArgsGroup] >= 0 {
				t.argStart, t.argEnd = pos+m[2*directiveArgsGroup], pos+m[2*directiveArgsGroup+1]
			} else {
				t.argStart, t.argEnd = t.end, t.end
			}
		}
		return t, true
	}
	return token{}, false
}

// isNameRune reports whether r may appear in a SqlCmd variable name.
func isNameRune(r rune) bool {
	return r == '-' || xid.Continue(r)
}

func validName(name string) bool {
	return name != "" && nameLen(name) == len(name)
}

// nameLen returns the byte length of the variable name s starts with.
func nameLen(s string) int {
	for i, r := range s {
		if !isNameRune(r) {
			return i
		}
	}
	return len(s)
}
