package uploadhistory

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
)

const (
	FormatCSV   = "csv"
	FormatExcel = "xlsx"
	FormatPDF   = "pdf"
)

// Exporter renders the upload ledger as a downloadable file.
type Exporter interface {
	Export(format string, rows []UploadHistory) (data []byte, filename, mime string, err error)
}

type exporter struct {
	now func() time.Time
}

func NewExporter() Exporter {
	return &exporter{now: time.Now}
}

var exportHeaders = []string{"ID", "Batch ID", "Filename", "Uploaded At", "Ideas", "File Size", "Content Type", "Uploaded By", "Status"}

func exportRecord(h UploadHistory) []string {
	return []string{
		strconv.FormatUint(uint64(h.ID), 10),
		h.BatchID,
		h.Filename,
		h.UploadTimestamp.Format("2006-01-02 15:04:05"),
		strconv.FormatInt(h.IdeasCount, 10),
		strconv.FormatInt(h.FileSize, 10),
		h.ContentType,
		h.UploadedBy,
		h.Status,
	}
}

func (e *exporter) Export(format string, rows []UploadHistory) ([]byte, string, string, error) {
	timestamp := e.now().Format("20060102_150405")

	switch strings.ToLower(format) {
	case FormatCSV, "":
		data, err := e.exportCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("upload_history_%s.csv", timestamp), "text/csv", nil

	case FormatExcel, "excel":
		data, err := e.exportExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("upload_history_%s.xlsx", timestamp),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatPDF:
		data, err := e.exportPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("upload_history_%s.pdf", timestamp), "application/pdf", nil

	default:
		return nil, "", "", apperr.Validation("unsupported export format: " + format)
	}
}

func (e *exporter) exportCSV(rows []UploadHistory) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeaders); err != nil {
		return nil, err
	}
	for _, h := range rows {
		if err := writer.Write(exportRecord(h)); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *exporter) exportExcel(rows []UploadHistory) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Upload History"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}
	for i, h := range rows {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), h.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), h.BatchID)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), h.Filename)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), h.UploadTimestamp.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), h.IdeasCount)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), h.FileSize)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), h.ContentType)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), h.UploadedBy)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), h.Status)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *exporter) exportPDF(rows []UploadHistory) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Upload History Report")
	pdf.Ln(20)

	pdf.SetFont("Arial", "B", 9)
	widths := []float64{12, 62, 45, 32, 15, 20, 30, 30, 25}
	for i, h := range exportHeaders {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, h := range rows {
		for i, v := range exportRecord(h) {
			pdf.CellFormat(widths[i], 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
