package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLineTrimsWhitespace(t *testing.T) {
	reader := NewLineReader(strings.NewReader("  hello world  \n"))

	line, err := reader.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello world", line)
}

func TestReadLineSequential(t *testing.T) {
	reader := NewLineReader(strings.NewReader("first\nsecond\n"))
	ctx := context.Background()

	first, err := reader.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", first)

	second, err := reader.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", second)
}

func TestReadLineEOF(t *testing.T) {
	reader := NewLineReader(strings.NewReader(""))

	_, err := reader.ReadLine(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadLineCancelled(t *testing.T) {
	// A pipe with no writer blocks forever without cancellation.
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()
	reader := NewLineReader(pr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := reader.ReadLine(ctx)
	assert.ErrorIs(t, err, ErrInputCancelled)
}

func TestNewLineReaderNilPanics(t *testing.T) {
	assert.Panics(t, func() { NewLineReader(nil) })
}
