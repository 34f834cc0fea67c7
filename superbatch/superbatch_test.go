package superbatch

import (
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchSeq(batches ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, b := range batches {
			if !yield(b, nil) {
				return
			}
		}
	}
}

func TestCompose(t *testing.T) {
	script, err := Compose(batchSeq("SELECT 1;", "--# NOWRAP\nUSE db;"))
	require.NoError(t, err)
	assert.Equal(t,
		"DECLARE @__sql__ nvarchar(max);\n"+
			"BEGIN TRY\n"+
			"SET @__sql__ = N'SELECT 1;';\n"+
			"EXEC sp_executesql @__sql__;\n"+
			"SET @__sql__ = N'--# NOWRAP\nUSE db;';\n"+
			"--# NOWRAP\nUSE db;\n"+
			epilogue,
		script)
	assert.True(t, strings.HasSuffix(script, "    THROW;\nEND CATCH;\n"))
}

func TestCompose_Empty(t *testing.T) {
	script, err := Compose(batchSeq())
	require.NoError(t, err)
	assert.Equal(t, "", script)

	var b Builder
	b.EndBatch()
	assert.Equal(t, "", b.Build())
	assert.Equal(t, 0, b.Batches())
}

func TestCompose_Error(t *testing.T) {
	failure := errors.New("boom")
	seq := func(yield func(string, error) bool) {
		if yield("select 1", nil) {
			yield("", failure)
		}
	}
	script, err := Compose(seq)
	assert.Same(t, failure, err)
	assert.Equal(t, "", script)
}

func TestBuilder_Escaping(t *testing.T) {
	var b Builder
	b.Add("select 'it''s', N'x'")
	assert.Contains(t, b.Build(), "SET @__sql__ = N'select ''it''''s'', N''x''';\nEXEC sp_executesql @__sql__;\n")
}

func TestBuilder_Spans(t *testing.T) {
	var b Builder
	_, _ = b.WriteString("select ")
	_, _ = b.WriteString("'a'")
	_, _ = b.WriteString("\n")
	b.EndBatch()
	b.Add("select 2\n")
	assert.Equal(t, 2, b.Batches())

	script := b.Build()
	assert.Contains(t, script, "SET @__sql__ = N'select ''a''\n';\nEXEC sp_executesql @__sql__;\nSET @__sql__ = N'select 2\n';\n")
	assert.Equal(t, script, b.Build())
}

func TestBuilder_NoWrap(t *testing.T) {
	tests := []struct {
		name   string
		spans  []string
		nowrap bool
	}{
		{"plain", []string{"select 1"}, false},
		{"marker", []string{"--# NOWRAP\nuse x"}, true},
		{"lower case and trailing space", []string{"use x\n--# nowrap \t\r\n"}, true},
		{"marker on last line", []string{"use x\n--# NoWrap"}, true},
		{"split across spans", []string{"use x\n--#", " NOW", "RAP\nselect 1"}, true},
		{"extra text", []string{"--# NOWRAP please\nuse x"}, false},
		{"not at line start", []string{"select 1 --# NOWRAP\n"}, false},
		{"inside longer comment", []string{"---# NOWRAP\n"}, false},
		{"prefix only", []string{"--# NOWRA\n"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Builder
			for _, s := range tt.spans {
				_, _ = b.WriteString(s)
			}
			script := b.Build()
			batch := strings.Join(tt.spans, "")
			if tt.nowrap {
				assert.NotContains(t, script, execute)
				assert.Contains(t, script, "';\n"+batch)
			} else {
				assert.Contains(t, script, execute)
			}
		})
	}
}

func TestChunks(t *testing.T) {
	assert.Nil(t, Chunks(""))
	assert.Equal(t, []string{"select 1\n"}, Chunks("select 1\n"))

	line := strings.Repeat("x", 99) + "\n"
	text := strings.Repeat(line, 100) // 10000 characters
	chunks := Chunks(text)
	assert.Equal(t, []string{
		strings.Repeat(line, 40),
		strings.Repeat(line, 40),
		strings.Repeat(line, 20),
	}, chunks)

	long := strings.Repeat("y", 4500)
	chunks = Chunks("a\n" + long + "\nb")
	assert.Equal(t, []string{"a\n", long[:4000], long[4000:] + "\nb"}, chunks)
}

func TestChunks_Coverage(t *testing.T) {
	for _, text := range []string{
		strings.Repeat("ab\r\n", 3000),
		strings.Repeat("æøå ", 2500),
		strings.Repeat("😀", 3000),
		"x" + strings.Repeat("\n", 8001),
	} {
		chunks := Chunks(text)
		assert.Equal(t, text, strings.Join(chunks, ""))
		for i, c := range chunks {
			assert.NotEmpty(t, c)
			assert.Equal(t, len(c), printLimit(c), "chunk %d exceeds print length", i)
		}
	}

	// surrogate pairs count as two characters and are never split
	chunks := Chunks(strings.Repeat("😀", 3000))
	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("😀", 2000), chunks[0])
}

func TestPrintMessages(t *testing.T) {
	assert.Equal(t, []string{"", "select 1", ""}, PrintMessages("select 1"))
	assert.Equal(t, []string{"\nselect 1\n"}, PrintMessages("\nselect 1\n"))
	assert.Equal(t, []string{"", "select 1\r\n"}, PrintMessages("select 1\r\n"))

	messages := PrintMessages(strings.Repeat("z", 4001))
	assert.Equal(t, []string{"", strings.Repeat("z", 4000), "z", ""}, messages)
}
