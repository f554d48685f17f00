package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/pkg/logger"
)

// PDFRenderer writes the ranked table as an A4 PDF
// ⭐ SSOT: PDF 리포트 레이아웃
type PDFRenderer struct {
	title    string
	compress bool
	now      func() time.Time
	logger   *logger.Logger
}

// NewPDFRenderer creates a PDF renderer with the given title line
func NewPDFRenderer(title string, log *logger.Logger) *PDFRenderer {
	return &PDFRenderer{
		title:    title,
		compress: true,
		now:      time.Now,
		logger:   log,
	}
}

// Render writes the PDF to w
func (r *PDFRenderer) Render(w io.Writer, table *contracts.ScoredTable) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetTitle(r.title, true)
	pdf.SetCreationDate(r.now())
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// 코어 폰트는 cp1252 → 악센트/대시 변환 필요
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(r.title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	blocks := Blocks(table)
	for _, b := range blocks {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, tr(b.Header), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		for _, line := range b.Lines {
			pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"records": len(blocks),
		"pages":   pdf.PageCount(),
	}).Info("PDF report rendered")

	return nil
}

// RenderFile writes the PDF to path
func (r *PDFRenderer) RenderFile(path string, table *contracts.ScoredTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := r.Render(f, table); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
