package superbatch

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// MaxPrintLength is the number of characters SQL Server prints for one
// nvarchar PRINT.
const MaxPrintLength = 4000

// Chunks splits text the way the CATCH block does before printing it:
// pieces of at most MaxPrintLength UTF-16 code units, ending just after a
// line feed unless a single line is too long. The pieces concatenate to
// text.
func Chunks(text string) []string {
	var chunks []string
	for text != "" {
		end := printLimit(text)
		if end < len(text) {
			if brk := strings.LastIndexByte(text[:end], '\n'); brk >= 0 {
				end = brk + 1
			}
		}
		chunks = append(chunks, text[:end])
		text = text[end:]
	}
	return chunks
}

// PrintMessages returns the messages the CATCH block prints for a failing
// batch: the chunks, framed by empty messages where text does not start or
// end with a line break.
func PrintMessages(text string) []string {
	var messages []string
	if !startsWithLineBreak(text) {
		messages = append(messages, "")
	}
	messages = append(messages, Chunks(text)...)
	if !endsWithLineBreak(text) {
		messages = append(messages, "")
	}
	return messages
}

// printLimit returns the byte offset after the first MaxPrintLength code
// units of text, or len(text). A surrogate pair is never split.
func printLimit(text string) int {
	units := 0
	for i, r := range text {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > MaxPrintLength {
			return i
		}
		units += n
	}
	return len(text)
}

func startsWithLineBreak(text string) bool {
	return text != "" && (text[0] == '\n' || text[0] == '\r')
}

func endsWithLineBreak(text string) bool {
	if text == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text)
	return r == '\n' || r == '\r'
}
