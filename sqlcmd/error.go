package sqlcmd

import (
	"fmt"
	"strings"
)

// FileRef is a dedicated type for file references, allowing future refactoring
// of how files are identified without changing the API.
type FileRef string

// Pos represents a position in a script or included file.
// Line and column are 1-indexed for human-readable error messages.
type Pos struct {
	File      FileRef
	Line, Col int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// posOf computes the position of byte offset off in text. Only used when
// reporting, so the linear scan is fine.
func posOf(file FileRef, text string, off int) Pos {
	head := text[:off]
	lineStart := strings.LastIndexByte(head, '\n') + 1
	return Pos{
		File: file,
		Line: strings.Count(head, "\n") + 1,
		Col:  off - lineStart + 1,
	}
}

type ErrorKind int

const (
	UndefinedVariable ErrorKind = iota + 1
	UnterminatedVariable
	InvalidSetvar
	InvalidInclude
	UnterminatedQuote
	IncludeDepthExceeded
)

func (k ErrorKind) String() string {
	switch k {
	case UndefinedVariable:
		return "UndefinedVariable"
	case UnterminatedVariable:
		return "UnterminatedVariable"
	case InvalidSetvar:
		return "InvalidSetvar"
	case InvalidInclude:
		return "InvalidInclude"
	case UnterminatedQuote:
		return "UnterminatedQuote"
	case IncludeDepthExceeded:
		return "IncludeDepthExceeded"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is returned for every problem found while preprocessing a script.
// File I/O errors from :r are not wrapped in Error; they are returned as-is.
type Error struct {
	Kind    ErrorKind
	Pos     Pos
	Message string
}

func (e Error) Error() string {
	return e.Message
}

func errorAt(kind ErrorKind, pos Pos, format string, args ...interface{}) Error {
	return Error{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func undefinedVariable(pos Pos, name string) Error {
	return errorAt(UndefinedVariable, pos, "SqlCmd variable '%s' is not defined.", name)
}

func unterminatedVariable(pos Pos, name string) Error {
	return errorAt(UnterminatedVariable, pos, "Unterminated reference to SqlCmd variable '%s'.", name)
}
