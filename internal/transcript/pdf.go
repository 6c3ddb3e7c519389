package transcript

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/diogo/gamemaster/internal/models"
)

// WritePDF lays doc out as an A4 storybook and writes it to w
func WritePDF(w io.Writer, doc Document) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, tr(doc.Title), "", "C", false)
	if !doc.Created.IsZero() {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 6, doc.Created.Format("January 2, 2006"), "", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	for _, msg := range doc.Messages {
		if msg.Role == models.RoleUser {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.MultiCell(0, 6, tr("> "+msg.Content), "", "L", false)
		} else {
			pdf.SetFont("Times", "", 12)
			pdf.MultiCell(0, 6, tr(msg.Content), "", "J", false)
		}
		pdf.Ln(4)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
