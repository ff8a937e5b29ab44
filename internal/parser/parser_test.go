package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractTextTxt(t *testing.T) {
	path := writeFile(t, "doc.txt", "Plain text body.\nSecond line.")
	text, err := ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, "Plain text body.\nSecond line.", text)
}

func TestExtractTextMarkdownStripsSyntax(t *testing.T) {
	path := writeFile(t, "doc.md", "# Heading\n\nSome **bold** text with a [link](https://example.com).\n\n- first item\n- second item\n")
	text, err := ExtractText(path)
	require.NoError(t, err)

	assert.Contains(t, text, "Heading")
	assert.Contains(t, text, "Some bold text with a link.")
	assert.Contains(t, text, "first item")
	assert.NotContains(t, text, "**")
	assert.NotContains(t, text, "](")
	assert.NotContains(t, text, "# ")
}

func TestExtractTextUnsupported(t *testing.T) {
	path := writeFile(t, "doc.exe", "binary")
	_, err := ExtractText(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
