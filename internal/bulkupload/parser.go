package bulkupload

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/internal/idea"
)

// DetectFormat derives the upload format from the file extension.
func DetectFormat(filename string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(strings.TrimSpace(filename))), ".")
	switch Format(ext) {
	case FormatCSV, FormatXLSX, FormatXLS, FormatJSON:
		return Format(ext), nil
	case "":
		return "", apperr.UnsupportedFormat("file has no extension; expected csv, xlsx, xls or json")
	default:
		return "", apperr.UnsupportedFormat("unsupported file format: ." + ext)
	}
}

// Parse converts the file body into idea candidates.
func Parse(format Format, data []byte) ([]idea.Idea, error) {
	switch format {
	case FormatCSV:
		return parseCSV(bytes.NewReader(data))
	case FormatXLSX, FormatXLS:
		return parseSpreadsheet(data)
	case FormatJSON:
		return parseJSON(data)
	}
	return nil, apperr.UnsupportedFormat("unsupported file format: " + string(format))
}

// row gives case-insensitive access to one record by header name.
type row struct {
	index  map[string]int
	values []string
	raw    []string
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := index[key]; !dup && key != "" {
			index[key] = i
		}
	}
	return index
}

func (r row) get(col string) string {
	return cellAt(r.values, r.index, col)
}

// rawGet prefers the unformatted cell value when the reader supplied one.
func (r row) rawGet(col string) string {
	if r.raw != nil {
		return cellAt(r.raw, r.index, col)
	}
	return r.get(col)
}

func cellAt(values []string, index map[string]int, col string) string {
	i, ok := index[strings.ToLower(col)]
	if !ok || i >= len(values) {
		return ""
	}
	return strings.TrimSpace(values[i])
}

func (r row) blank() bool {
	for _, v := range r.values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (r row) toIdea() idea.Idea {
	return idea.Idea{
		Title:               r.get("title"),
		Description:         r.get("description"),
		Category:            r.get("category"),
		Sector:              r.get("sector"),
		InvestmentNeeded:    parseAmount(r.rawGet("investmentNeeded")),
		ExpertiseNeeded:     r.get("expertiseNeeded"),
		TrainingNeeded:      r.get("trainingNeeded"),
		Resources:           r.get("resources"),
		SuccessExamples:     r.get("successExamples"),
		VideoURL:            r.get("videoUrl"),
		GovernmentSubsidies: r.get("governmentSubsidies"),
		FundingOptions:      r.get("fundingOptions"),
		BankAssistance:      r.get("bankAssistance"),
		TargetAudience:      splitList(r.get("targetAudience")),
		SpecialAdvantages:   splitList(r.get("specialAdvantages")),
		DifficultyLevel:     r.get("difficultyLevel"),
		TimeToMarket:        r.get("timeToMarket"),
		Location:            r.get("location"),
		ImageURL:            r.get("imageUrl"),
	}
}

// parseAmount reads a decimal, tolerating thousands separators; anything
// unparseable is zero.
func parseAmount(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return idea.NormalizeTags(strings.Split(s, ","))
}

// ========================
// CSV
// ========================

func parseCSV(r io.Reader) ([]idea.Idea, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperr.MalformedPayload("CSV file must have a header row", err)
	}
	if err != nil {
		return nil, apperr.MalformedPayload("CSV header could not be read", err)
	}
	index := headerIndex(header)

	var out []idea.Idea
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperr.MalformedPayload("CSV file is malformed", err)
		}
		rw := row{index: index, values: record}
		if rw.blank() {
			continue
		}
		out = append(out, rw.toIdea())
	}
	return out, nil
}

// ========================
// Spreadsheet
// ========================

// parseSpreadsheet reads the first sheet. Text columns use the displayed
// cell value, investment uses the raw one.
func parseSpreadsheet(data []byte) ([]idea.Idea, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.MalformedPayload("spreadsheet could not be opened; legacy .xls files must be re-saved as .xlsx", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.MalformedPayload("spreadsheet has no sheets", nil)
	}
	formatted, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.MalformedPayload("spreadsheet rows could not be read", err)
	}
	raw, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperr.MalformedPayload("spreadsheet rows could not be read", err)
	}
	if len(formatted) == 0 {
		return nil, apperr.MalformedPayload("spreadsheet must have a header row", nil)
	}

	index := headerIndex(formatted[0])
	var out []idea.Idea
	for i := 1; i < len(formatted); i++ {
		rw := row{index: index, values: formatted[i]}
		if i < len(raw) {
			rw.raw = raw[i]
		}
		if rw.blank() {
			continue
		}
		out = append(out, rw.toIdea())
	}
	return out, nil
}

// ========================
// JSON
// ========================

// parseJSON requires the whole payload to be an array of idea objects; any
// error rejects the file as a whole.
func parseJSON(data []byte) ([]idea.Idea, error) {
	var items []jsonIdea
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, apperr.MalformedPayload("JSON upload must be an array of idea objects", err)
	}
	out := make([]idea.Idea, 0, len(items))
	for _, it := range items {
		out = append(out, it.toIdea())
	}
	return out, nil
}
