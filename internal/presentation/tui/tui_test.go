package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyler_PlainOnNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewStyler(&buf)
	assert.Equal(t, "pass", s.Pass("pass"))
	assert.Equal(t, "fail", Plain().Fail("fail"))
	assert.False(t, IsTerminal(&buf))
}

func TestWriteMarkdown_PipedIsRaw(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, "# Stage 1\n"))
	assert.Equal(t, "# Stage 1\n", buf.String())
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer(80)
	require.NoError(t, err)
	out, err := render("**Stage 9**")
	require.NoError(t, err)
	assert.Contains(t, out, "Stage 9")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|___/")
}
