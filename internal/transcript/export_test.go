package transcript

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/diogo/gamemaster/internal/models"
)

func sampleDoc() Document {
	doc := NewDocument("The Oregon Trail", []models.Message{
		models.NewSystemMessage("persona"),
		models.NewUserMessage("Let's start the game!"),
		models.NewAssistantMessage("You arrive in Independence."),
	})
	doc.Provider = "demo"
	doc.Model = "scripted"
	doc.Created = time.Date(1848, time.April, 1, 9, 30, 0, 0, time.UTC)
	return doc
}

func TestNewDocument_DropsSystemMessages(t *testing.T) {
	doc := sampleDoc()
	require.Len(t, doc.Messages, 2)
	for _, m := range doc.Messages {
		assert.NotEqual(t, models.RoleSystem, m.Role)
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleDoc())

	assert.True(t, strings.HasPrefix(md, "# The Oregon Trail\n\n"))
	assert.Contains(t, md, "**Game master:** demo (scripted)")
	assert.Contains(t, md, "**Played:** 1848-04-01 09:30:00")
	assert.Contains(t, md, "## You\n\nLet's start the game!")
	assert.Contains(t, md, "## Game Master\n\nYou arrive in Independence.")
	assert.NotContains(t, md, "persona")
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "> Let's start the game!\n\nYou arrive in Independence.", PlainText(sampleDoc()))
}

func TestJSON(t *testing.T) {
	data, err := JSON(sampleDoc())
	require.NoError(t, err)

	assert.Equal(t, "The Oregon Trail", gjson.GetBytes(data, "title").String())
	assert.Equal(t, int64(2), gjson.GetBytes(data, "messages.#").Int())
	assert.Equal(t, "assistant", gjson.GetBytes(data, "messages.1.role").String())
}

func TestFileName(t *testing.T) {
	doc := sampleDoc()
	assert.Equal(t, "the-oregon-trail-18480401-093000.md", FileName(doc, FormatMarkdown))
	assert.Equal(t, "the-oregon-trail-18480401-093000.pdf", FileName(doc, FormatPDF))

	doc.Title = "  ?? "
	assert.Equal(t, "adventure-18480401-093000.json", FileName(doc, FormatJSON))
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	doc := sampleDoc()
	doc.Messages = append(doc.Messages, models.NewAssistantMessage("Café – naïve “quotes”"))

	require.NoError(t, WritePDF(&buf, doc))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestExport(t *testing.T) {
	dir := t.TempDir()

	paths, err := Export(dir, sampleDoc(), FormatMarkdown, FormatPDF, FormatJSON)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
		assert.Equal(t, dir, filepath.Dir(p))
	}

	md, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(md), "You arrive in Independence.")
}

func TestExport_Empty(t *testing.T) {
	_, err := Export(t.TempDir(), NewDocument("x", nil))
	assert.Error(t, err)
}

func TestCopyToClipboard(t *testing.T) {
	orig := writeClipboard
	defer func() { writeClipboard = orig }()

	var copied string
	writeClipboard = func(text string) error {
		copied = text
		return nil
	}

	require.NoError(t, CopyToClipboard(sampleDoc()))
	assert.Equal(t, PlainText(sampleDoc()), copied)

	writeClipboard = func(string) error { return errors.New("no clipboard utility") }
	err := CopyToClipboard(sampleDoc())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no clipboard utility")

	assert.Error(t, CopyToClipboard(NewDocument("x", nil)))
}
