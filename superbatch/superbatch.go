// Package superbatch combines a sequence of T-SQL batches into one script
// that runs each batch inside a single TRY/CATCH block. When a batch fails,
// the CATCH block prints the text of the failing batch and rethrows the
// original error.
//
// Each batch is assigned to a variable as a string literal and run with
// sp_executesql. A batch containing a line
//
//	--# NOWRAP
//
// is instead inserted as-is, for statements that must run in the outer
// batch (USE, SET options and similar).
package superbatch

import (
	"io"
	"iter"
	"strings"
)

// The scaffold below is executed by SQL Server; change it with care.
const (
	prologue = "DECLARE @__sql__ nvarchar(max);\n" +
		"BEGIN TRY\n"

	assignStart = "SET @__sql__ = N'"
	assignEnd   = "';\n"
	execute     = "EXEC sp_executesql @__sql__;\n"

	// The failing batch is printed in pieces of at most MaxPrintLength
	// characters, each ending at a line break where possible.
	epilogue = `END TRY
BEGIN CATCH
    SET @__sql__ = ISNULL(@__sql__, N'');
    DECLARE
        @__len__ int = LEN(@__sql__ + N'.') - 1,
        @__pos__ int = 1,
        @__end__ int,
        @__brk__ int;
    IF LEFT(@__sql__, 1) NOT IN (NCHAR(10), NCHAR(13))
        PRINT N'';
    WHILE @__pos__ <= @__len__
    BEGIN
        SET @__end__ = @__pos__ + 4000;
        IF @__end__ <= @__len__
        BEGIN
            SET @__brk__ = CHARINDEX(NCHAR(10), REVERSE(SUBSTRING(@__sql__, @__pos__, 4000)));
            IF @__brk__ > 0
                SET @__end__ = @__end__ - @__brk__ + 1;
        END
        ELSE
            SET @__end__ = @__len__ + 1;
        PRINT SUBSTRING(@__sql__, @__pos__, @__end__ - @__pos__);
        SET @__pos__ = @__end__;
    END;
    IF RIGHT(@__sql__, 1) NOT IN (NCHAR(10), NCHAR(13))
        PRINT N'';
    THROW;
END CATCH;
`
)

// Builder accumulates batches into a superbatch. A batch is written as any
// number of spans followed by EndBatch; spans are referenced, not copied,
// until the batch is emitted.
type Builder struct {
	out     strings.Builder
	spans   []string
	marker  markerScanner
	batches int
	built   bool
}

var _ io.StringWriter = (*Builder)(nil)

// WriteString appends s to the current batch. It never fails.
func (b *Builder) WriteString(s string) (int, error) {
	if s != "" {
		b.spans = append(b.spans, s)
		b.marker.scan(s)
	}
	return len(s), nil
}

// EndBatch emits the current batch. An empty batch is skipped.
func (b *Builder) EndBatch() {
	if len(b.spans) == 0 {
		return
	}
	if b.batches == 0 {
		b.out.WriteString(prologue)
	}
	b.batches++

	b.out.WriteString(assignStart)
	for _, s := range b.spans {
		b.writeEscaped(s)
	}
	b.out.WriteString(assignEnd)

	if b.marker.done() {
		for _, s := range b.spans {
			b.out.WriteString(s)
		}
		if last := b.spans[len(b.spans)-1]; last[len(last)-1] != '\n' {
			b.out.WriteByte('\n')
		}
	} else {
		b.out.WriteString(execute)
	}

	clear(b.spans)
	b.spans = b.spans[:0]
	b.marker = markerScanner{}
}

// Add appends a complete batch.
func (b *Builder) Add(batch string) {
	_, _ = b.WriteString(batch)
	b.EndBatch()
}

// Batches returns the number of batches emitted so far.
func (b *Builder) Batches() int {
	return b.batches
}

// Build ends the current batch, closes the TRY block and returns the
// script. With no batches the script is empty, since an empty TRY block is
// not valid T-SQL. Nothing may be added after Build.
func (b *Builder) Build() string {
	if !b.built {
		b.EndBatch()
		if b.batches > 0 {
			b.out.WriteString(epilogue)
		}
		b.built = true
	}
	return b.out.String()
}

// writeEscaped writes s with every ' doubled.
func (b *Builder) writeEscaped(s string) {
	for {
		i := strings.IndexByte(s, '\'')
		if i < 0 {
			b.out.WriteString(s)
			return
		}
		b.out.WriteString(s[:i+1])
		b.out.WriteByte('\'')
		s = s[i+1:]
	}
}

// Compose builds a superbatch from a batch sequence, such as the one
// returned by sqlcmd.BatchReader.All. If the sequence fails the error is
// returned and no script is produced.
func Compose(batches iter.Seq2[string, error]) (string, error) {
	var b Builder
	for batch, err := range batches {
		if err != nil {
			return "", err
		}
		b.Add(batch)
	}
	return b.Build(), nil
}
