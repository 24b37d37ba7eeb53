package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"github.com/JakeFAU/occ-vacantes/internal/jobs"
)

// Column headers shared by the tabular formats.
var headers = []string{"Título", "Empresa", "Salario", "Ubicación", "Fecha", "URL", "Página"}

func row(l jobs.Listing) []string {
	return []string{l.Title, l.Company, l.Salary, l.Location, l.Posted, l.URL, strconv.Itoa(l.Page)}
}

func renderJSON(listings []jobs.Listing, _ Meta) ([]byte, error) {
	if listings == nil {
		listings = []jobs.Listing{}
	}
	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal listings: %w", err)
	}
	return append(data, '\n'), nil
}

// utf8BOM makes Excel open the CSV as UTF-8 instead of the ANSI code page.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func renderCSV(listings []jobs.Listing, _ Meta) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, l := range listings {
		if err := w.Write(row(l)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

const sheetName = "Vacantes"

func renderXLSX(listings []jobs.Listing, _ Meta) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, l := range listings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		values := []any{l.Title, l.Company, l.Salary, l.Location, l.Posted, l.URL, l.Page}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return nil, fmt.Errorf("column name: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(sheetName, "A", lastCol, 28); err != nil {
		return nil, fmt.Errorf("column width: %w", err)
	}
	filterRange := fmt.Sprintf("A1:%s%d", lastCol, len(listings)+1)
	if err := f.AutoFilter(sheetName, filterRange, nil); err != nil {
		return nil, fmt.Errorf("autofilter: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Column widths in millimetres for the landscape A4 table.
var pdfWidths = []float64{70, 50, 35, 45, 25, 0, 15}

func renderPDF(listings []jobs.Listing, meta Meta) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Vacantes: "+meta.Term), false)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Vacantes para \"%s\"", meta.Term)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%d resultados, generado %s", len(listings),
		meta.GeneratedAt.Format("2006-01-02 15:04 MST"))), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// The URL column is dropped from the printed table; it does not fit.
	cols := []int{0, 1, 2, 3, 4, 6}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range cols {
		pdf.CellFormat(pdfWidths[c], 7, tr(headers[c]), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, l := range listings {
		values := row(l)
		for _, c := range cols {
			pdf.CellFormat(pdfWidths[c], 6, tr(truncate(values[c], pdfWidths[c])), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// truncate keeps text within roughly width millimetres at 8pt.
func truncate(s string, width float64) string {
	limit := int(width / 1.6)
	r := []rune(s)
	if limit <= 3 || len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
