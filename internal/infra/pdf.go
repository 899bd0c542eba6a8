package infra

// pdf.go — payment receipt generation using go-pdf/fpdf.
// Generates A7-size thermal-style receipts with the company header, client and
// contract data, months covered, mora line, and a bold total.
// The output file is saved to storagePath/receipt_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AmericableSA/Sistema-sub001/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateReceiptPDF renders the receipt for a completed transaction.
// Returns the absolute path to the generated file.
func GenerateReceiptPDF(record *model.Transaction, companyName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("receipt_%s.pdf", record.ID)
	filePath := filepath.Join(storagePath, fileName)

	// A7 ≈ 74mm × 105mm — close to thermal receipt paper
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, companyName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Recibo de Pago", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Receipt info ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	shortID := strings.Split(record.ID.String(), "-")[0]
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Recibo N° %s", shortID), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, record.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if record.Client != nil {
		pdf.CellFormat(contentW, 4, "Cliente: "+record.Client.Name, "", 1, "L", false, 0, "")
		pdf.CellFormat(contentW, 4, "Contrato: "+record.Client.ContractNumber, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.68
	col2 := contentW * 0.32

	// ── Detail lines ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	if record.Details.MonthsPaid > 0 {
		pdf.CellFormat(col1, 5, fmt.Sprintf("Mensualidades (%d)", record.Details.MonthsPaid), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, "", "", 1, "R", false, 0, "")
	}
	if record.Details.MoraPaid.IsPositive() {
		pdf.CellFormat(col1, 5, "Mora", "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, "$"+record.Details.MoraPaid.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if record.Details.ReconnectionPaid {
		pdf.CellFormat(col1, 5, "Reconexión", "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, "", "", 1, "R", false, 0, "")
	}
	for _, item := range record.Details.Items {
		name := item.Name
		if len(name) > 22 {
			name = name[:21] + "…"
		}
		pdf.CellFormat(col1, 5, fmt.Sprintf("%s x%d", name, item.Quantity), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, "", "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "$"+record.Amount.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1, 4, "Método:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 4, record.PaymentMethod, "", 1, "R", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "¡Gracias por su pago!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
