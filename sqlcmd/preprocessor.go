package sqlcmd

import (
	"io"
	"iter"

	"github.com/sirupsen/logrus"
)

const (
	// ScriptName is the file name reported for positions in the top-level
	// script when the caller does not name it.
	ScriptName FileRef = "(script)"

	DefaultMaxIncludeDepth = 100

	minBufferSize = 4096
)

var discardLogger = func() *logrus.Logger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}()

// Preprocessor splits sqlcmd-style scripts into batches, substituting
// $(name) references and acting on :setvar and :r directives.
//
// A Preprocessor keeps one accumulation buffer that is reused between
// batches, so it must only drive one BatchReader at a time and is not safe
// for concurrent use. Separate Preprocessors are independent.
type Preprocessor struct {
	Variables Variables

	// Files reads :r includes; OSFiles when nil.
	Files FileReader

	// Logger receives debug output about directives; silent when nil.
	Logger logrus.FieldLogger

	// MaxIncludeDepth bounds :r nesting, which also stops files that
	// include themselves. DefaultMaxIncludeDepth when zero.
	MaxIncludeDepth int

	buf []byte
}

func New() *Preprocessor {
	return &Preprocessor{Variables: make(Variables)}
}

func (p *Preprocessor) files() FileReader {
	if p.Files == nil {
		return OSFiles{}
	}
	return p.Files
}

func (p *Preprocessor) logger() logrus.FieldLogger {
	if p.Logger == nil {
		return discardLogger
	}
	return p.Logger
}

func (p *Preprocessor) maxIncludeDepth() int {
	if p.MaxIncludeDepth <= 0 {
		return DefaultMaxIncludeDepth
	}
	return p.MaxIncludeDepth
}

// reserve makes sure the buffer can hold n bytes without growing, rounding
// up to a power of two.
func (p *Preprocessor) reserve(n int) {
	if cap(p.buf) >= n {
		return
	}
	size := minBufferSize
	for size < n {
		size <<= 1
	}
	p.buf = make([]byte, 0, size)
}

// Process returns a reader over the batches of text. Nothing is scanned
// until the first call to Next. name is used in positions and may be empty.
func (p *Preprocessor) Process(name string, text string) *BatchReader {
	file := FileRef(name)
	if file == "" {
		file = ScriptName
	}
	r := &BatchReader{p: p, logger: p.logger()}
	r.stack.push(file, text)
	return r
}

// Batches returns all batches of text, or the first error.
func (p *Preprocessor) Batches(name string, text string) ([]string, error) {
	var result []string
	r := p.Process(name, text)
	for r.Next() {
		result = append(result, r.Text())
	}
	return result, r.Err()
}

// BatchReader produces the batches of one script, one at a time. It cannot
// be restarted; after an error no more batches are produced.
type BatchReader struct {
	p      *Preprocessor
	logger logrus.FieldLogger
	stack  inputStack

	// building is set once the current batch can no longer be a plain
	// substring of one input and is being copied into p.buf
	building bool

	text string
	err  error

	startFile   FileRef
	startText   string
	startOffset int
}

// Text returns the batch produced by the last call to Next.
func (r *BatchReader) Text() string {
	return r.text
}

// Pos returns where the batch produced by the last call to Next starts.
func (r *BatchReader) Pos() Pos {
	return posOf(r.startFile, r.startText, r.startOffset)
}

// Err returns the error that stopped the reader, if any. Preprocessing
// problems are of type Error; failures reading included files are returned
// as the FileReader reported them.
func (r *BatchReader) Err() error {
	return r.err
}

// All adapts the reader to a range-over-func sequence. A failure is yielded
// as the last element.
func (r *BatchReader) All() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for r.Next() {
			if !yield(r.Text(), nil) {
				return
			}
		}
		if r.err != nil {
			yield("", r.err)
		}
	}
}

// Next advances to the next non-empty batch.
func (r *BatchReader) Next() bool {
	r.text = ""
	if r.err != nil || r.stack.empty() {
		return false
	}

	in := r.stack.top()
	start := in.pos
	r.building = false
	r.markStart(in, start)

	for {
		in = r.stack.top()
		t, ok := nextToken(in.text, in.pos)
		if !ok {
			end := len(in.text)
			switch {
			case r.building:
				r.write(in.text[in.pos:end])
			case r.stack.depth() > 0 && start < end:
				// the batch continues in the including file
				r.beginBuilding(in, start, end)
			}
			in.pos = end
			text, file := in.text, in.file
			r.stack.pop()
			if r.stack.empty() {
				return r.finish(text, start, end)
			}
			r.logger.WithField("file", string(file)).Debug("end of included file")
			if !r.building {
				start = r.stack.top().pos
				r.markStart(r.stack.top(), start)
			}
			continue
		}

		switch t.typ {
		case singlelineCommentToken, multilineCommentToken:
			if r.building {
				r.write(in.text[in.pos:t.end])
			}
		case stringLiteralToken, quotedIdentifierToken, variableToken:
			span := in.text[t.start:t.end]
			if r.building || t.typ == variableToken || hasReference(span) {
				r.switchToBuilding(in, start, t.start)
				if err := r.substitute(in, t.start, span); err != nil {
					return r.fail(err)
				}
			}
		case setvarDirectiveToken:
			r.switchToBuilding(in, start, t.start)
			if err := r.setvar(in, t); err != nil {
				return r.fail(err)
			}
		case includeDirectiveToken:
			r.switchToBuilding(in, start, t.start)
			in.pos = t.end
			if err := r.include(in, t); err != nil {
				return r.fail(err)
			}
			continue
		case batchSeparatorToken:
			if r.building {
				r.write(in.text[in.pos:t.start])
			}
			in.pos = t.end
			if r.finish(in.text, start, t.start) {
				return true
			}
			// nothing before the separator; try again in verbatim mode
			r.building = false
			start = in.pos
			r.markStart(in, start)
			continue
		}
		in.pos = t.end
	}
}

func (r *BatchReader) markStart(in *input, offset int) {
	r.startFile, r.startText, r.startOffset = in.file, in.text, offset
}

func (r *BatchReader) fail(err error) bool {
	r.err = err
	r.stack = nil
	r.text = ""
	return false
}

// finish sets the batch text, either copied out of the buffer or as the
// substring text[start:end]. Reports false for an empty batch.
func (r *BatchReader) finish(text string, start, end int) bool {
	if r.building {
		r.text = string(r.p.buf)
	} else {
		r.text = text[start:end]
	}
	return r.text != ""
}

func (r *BatchReader) write(s string) {
	r.p.buf = append(r.p.buf, s...)
}

func (r *BatchReader) beginBuilding(in *input, start, upto int) {
	r.building = true
	r.p.reserve(len(in.text) - start)
	r.p.buf = append(r.p.buf[:0], in.text[start:upto]...)
}

// switchToBuilding copies everything of the batch up to offset upto of the
// current input into the buffer.
func (r *BatchReader) switchToBuilding(in *input, start, upto int) {
	if r.building {
		r.write(in.text[in.pos:upto])
		return
	}
	r.beginBuilding(in, start, upto)
}

func (r *BatchReader) substitute(in *input, offset int, span string) error {
	var rerr *refError
	r.p.buf, rerr = r.p.Variables.expand(r.p.buf, span)
	if rerr != nil {
		return rerr.at(posOf(in.file, in.text, offset+rerr.offset))
	}
	return nil
}

// directiveArgs returns the argument text of a directive with variable
// references expanded.
func (r *BatchReader) directiveArgs(in *input, t token) (string, error) {
	args := in.text[t.argStart:t.argEnd]
	if !hasReference(args) {
		return args, nil
	}
	out, rerr := r.p.Variables.expand(make([]byte, 0, len(args)), args)
	if rerr != nil {
		return "", rerr.at(posOf(in.file, in.text, t.argStart+rerr.offset))
	}
	return string(out), nil
}

func (r *BatchReader) setvar(in *input, t token) error {
	pos := posOf(in.file, in.text, t.start)
	args, err := r.directiveArgs(in, t)
	if err != nil {
		return err
	}
	name, value, hasValue, err := parseSetvar(args, pos)
	if err != nil {
		return err
	}
	if r.p.Variables == nil {
		r.p.Variables = make(Variables)
	}
	if hasValue {
		r.p.Variables.Define(name, value)
		r.logger.WithFields(logrus.Fields{"name": name, "pos": pos.String()}).Debug("setvar")
	} else {
		r.p.Variables.Remove(name)
		r.logger.WithFields(logrus.Fields{"name": name, "pos": pos.String()}).Debug("setvar removed variable")
	}
	return nil
}

// include pushes the file named by a :r directive. The current input's
// position must already be past the directive.
func (r *BatchReader) include(in *input, t token) error {
	pos := posOf(in.file, in.text, t.start)
	args, err := r.directiveArgs(in, t)
	if err != nil {
		return err
	}
	path, err := parseInclude(args, pos)
	if err != nil {
		return err
	}
	if limit := r.p.maxIncludeDepth(); r.stack.depth() >= limit {
		return errorAt(IncludeDepthExceeded, pos, "Maximum :r nesting depth of %d exceeded.", limit)
	}
	text, err := r.p.files().ReadFile(path)
	if err != nil {
		return err
	}
	r.logger.WithFields(logrus.Fields{"file": path, "pos": pos.String()}).Debug("including file")
	r.stack.push(FileRef(path), text)
	return nil
}
