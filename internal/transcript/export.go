// Package transcript exports the displayed conversation for the player.
// The persona message is never exported.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"github.com/diogo/gamemaster/internal/models"
)

// Format is an export file format
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatPDF      Format = "pdf"
)

// Extension returns the file extension for f, dot included
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatPDF:
		return ".pdf"
	default:
		return ".md"
	}
}

// Document is an exportable transcript
type Document struct {
	Title    string           `json:"title"`
	Variant  string           `json:"variant,omitempty"`
	Provider string           `json:"provider,omitempty"`
	Model    string           `json:"model,omitempty"`
	Created  time.Time        `json:"created"`
	Messages []models.Message `json:"messages"`
}

// NewDocument builds a document from msgs, dropping system messages
func NewDocument(title string, msgs []models.Message) Document {
	doc := Document{Title: title, Created: time.Now()}
	for _, m := range msgs {
		if m.Role == models.RoleSystem {
			continue
		}
		doc.Messages = append(doc.Messages, m)
	}
	return doc
}

// speaker returns the heading used for a message role
func speaker(role models.Role) string {
	if role == models.RoleUser {
		return "You"
	}
	return "Game Master"
}

// Markdown renders doc as a markdown document
func Markdown(doc Document) string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(doc.Title)
	sb.WriteString("\n\n")

	if doc.Provider != "" {
		sb.WriteString("**Game master:** ")
		sb.WriteString(doc.Provider)
		if doc.Model != "" {
			sb.WriteString(" (")
			sb.WriteString(doc.Model)
			sb.WriteString(")")
		}
		sb.WriteString("\n")
	}
	if !doc.Created.IsZero() {
		sb.WriteString("**Played:** ")
		sb.WriteString(doc.Created.Format("2006-01-02 15:04:05"))
		sb.WriteString("\n")
	}
	sb.WriteString("\n---\n\n")

	for i, msg := range doc.Messages {
		sb.WriteString("## ")
		sb.WriteString(speaker(msg.Role))
		sb.WriteString("\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if i < len(doc.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

// PlainText renders doc as the text copied to the clipboard
func PlainText(doc Document) string {
	parts := make([]string, 0, len(doc.Messages))
	for _, msg := range doc.Messages {
		if msg.Role == models.RoleUser {
			parts = append(parts, "> "+msg.Content)
			continue
		}
		parts = append(parts, msg.Content)
	}
	return strings.Join(parts, "\n\n")
}

// JSON encodes doc
func JSON(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode transcript: %w", err)
	}
	return data, nil
}

// writeClipboard is replaced in tests
var writeClipboard = clipboard.WriteAll

// CopyToClipboard copies the plain text transcript to the system clipboard
func CopyToClipboard(doc Document) error {
	if len(doc.Messages) == 0 {
		return fmt.Errorf("nothing to copy")
	}
	if err := writeClipboard(PlainText(doc)); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

// FileName returns a timestamped file name for doc in format f
func FileName(doc Document, f Format) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, doc.Title)
	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if slug == "" {
		slug = "adventure"
	}

	created := doc.Created
	if created.IsZero() {
		created = time.Now()
	}
	return slug + "-" + created.Format("20060102-150405") + f.Extension()
}

// Export writes doc to dir in each format and returns the written paths
func Export(dir string, doc Document, formats ...Format) ([]string, error) {
	if len(doc.Messages) == 0 {
		return nil, fmt.Errorf("nothing to export")
	}
	if len(formats) == 0 {
		formats = []Format{FormatMarkdown}
	}

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := filepath.Join(dir, FileName(doc, f))
		if err := writeFormat(path, doc, f); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFormat(path string, doc Document, f Format) error {
	switch f {
	case FormatPDF:
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := WritePDF(file, doc); err != nil {
			file.Close()
			return err
		}
		return file.Close()
	case FormatJSON:
		data, err := JSON(doc)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		return nil
	default:
		if err := os.WriteFile(path, []byte(Markdown(doc)), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		return nil
	}
}
