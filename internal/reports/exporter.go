package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
)

// Table is the format-neutral shape every report is rendered from.
type Table struct {
	Title   string
	Sheet   string
	Headers []string
	// Widths are PDF column widths in mm.
	Widths []float64
	Rows   [][]interface{}
}

const (
	contentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF   = "application/pdf"
	contentTypeCSV   = "text/csv"
)

// NormalizeFormat accepts "excel" as an alias for xlsx and defaults to xlsx.
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatExcel, "excel":
		return FormatExcel, nil
	case FormatPDF:
		return FormatPDF, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", apperr.Validation("unsupported format %q (use xlsx, pdf or csv)", format)
	}
}

// Render writes t in the given format. baseName gets the extension appended.
func Render(t Table, format, baseName string) (*Export, error) {
	format, err := NormalizeFormat(format)
	if err != nil {
		return nil, err
	}
	var (
		data []byte
		ct   string
	)
	switch format {
	case FormatExcel:
		data, err = renderExcel(t)
		ct = contentTypeExcel
	case FormatPDF:
		data, err = renderPDF(t)
		ct = contentTypePDF
	case FormatCSV:
		data, err = renderCSV(t)
		ct = contentTypeCSV
	}
	if err != nil {
		return nil, fmt.Errorf("render %s %s: %w", t.Title, format, err)
	}
	return &Export{Data: data, FileName: baseName + "." + format, ContentType: ct}, nil
}

func renderExcel(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", t.Sheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	for i, h := range t.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(t.Sheet, cell, h); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(t.Sheet, cell, cell, bold); err != nil {
			return nil, err
		}
	}
	for r, row := range t.Rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(t.Sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderPDF(t Table) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, t.Title)
	pdf.Ln(15)

	pdf.SetFont("Arial", "B", 9)
	for i, h := range t.Headers {
		pdf.CellFormat(t.Widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range t.Rows {
		for i, v := range row {
			align := "L"
			switch v.(type) {
			case int, int64, float64:
				align = "R"
			}
			pdf.CellFormat(t.Widths[i], 6, cellText(v), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderCSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Headers); err != nil {
		return nil, err
	}
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = cellText(v)
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func cellText(v interface{}) string {
	switch x := v.(type) {
	case float64:
		return fmt.Sprintf("%.2f", x)
	default:
		return fmt.Sprint(x)
	}
}
