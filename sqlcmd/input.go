package sqlcmd

// input is one frame of the input stack: the top-level script or a file
// pulled in with :r. pos only moves forward while the frame is active.
type input struct {
	file FileRef
	text string
	pos  int
}

// inputStack holds the script being scanned at the bottom and the most
// recently included file at the top. The frame below the top is the one
// that included it.
type inputStack []input

func (s *inputStack) push(file FileRef, text string) {
	*s = append(*s, input{file: file, text: text})
}

func (s *inputStack) pop() {
	(*s)[len(*s)-1] = input{}
	*s = (*s)[:len(*s)-1]
}

// top returns the frame being scanned. The pointer is only valid until the
// next push.
func (s inputStack) top() *input {
	return &s[len(s)-1]
}

func (s inputStack) empty() bool {
	return len(s) == 0
}

// depth is the number of :r inclusions currently open.
func (s inputStack) depth() int {
	return len(s) - 1
}
