package bulkupload

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/internal/auditlog"
	"github.com/sharath018/idea-factory-backend/internal/idea"
	"github.com/sharath018/idea-factory-backend/internal/notification"
	"github.com/sharath018/idea-factory-backend/internal/testutil"
	"github.com/sharath018/idea-factory-backend/internal/uploadhistory"
	"github.com/sharath018/idea-factory-backend/utils"
)

type countingFacets struct{ calls int }

func (f *countingFacets) InvalidateFacets(context.Context) { f.calls++ }

type recordingPublisher struct {
	mu     sync.Mutex
	events []notification.CatalogEvent
}

func (p *recordingPublisher) Publish(_ context.Context, evt notification.CatalogEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// failingCreate rejects one title at the database layer.
type failingCreate struct {
	idea.Repository
	title string
}

func (r failingCreate) WithTx(tx *gorm.DB) idea.Repository {
	return failingCreate{Repository: r.Repository.WithTx(tx), title: r.title}
}

func (r failingCreate) Create(ctx context.Context, i *idea.Idea) error {
	if i.Title == r.title {
		return errors.New("constraint violation")
	}
	return r.Repository.Create(ctx, i)
}

type fixture struct {
	svc       Service
	db        *gorm.DB
	facets    *countingFacets
	publisher *recordingPublisher
}

func newFixture(t *testing.T, wrap func(idea.Repository) idea.Repository) *fixture {
	t.Helper()
	db := testutil.DB(t, &idea.Idea{}, &uploadhistory.UploadHistory{}, &auditlog.AuditLog{})
	log := utils.NopLogger()

	var ideas = idea.NewRepository(db)
	if wrap != nil {
		ideas = wrap(ideas)
	}
	f := &fixture{db: db, facets: &countingFacets{}, publisher: &recordingPublisher{}}
	f.svc = NewService(uploadhistory.NewRepository(db), ideas, f.facets, f.publisher,
		auditlog.NewService(auditlog.NewRepository(db), log), log)
	return f
}

func (f *fixture) history(t *testing.T, batchID string) uploadhistory.UploadHistory {
	t.Helper()
	var h uploadhistory.UploadHistory
	require.NoError(t, f.db.Where("batch_id = ?", batchID).First(&h).Error)
	return h
}

func (f *fixture) ideas(t *testing.T) []idea.Idea {
	t.Helper()
	var out []idea.Idea
	require.NoError(t, f.db.Order("id").Find(&out).Error)
	return out
}

func TestIngestCSV(t *testing.T) {
	f := newFixture(t, nil)
	up := Upload{Filename: "ideas.csv", ContentType: "text/csv", Data: []byte("title,investmentNeeded\nA,1000\n")}

	res, err := f.svc.Ingest(context.Background(), up, "admin", auditlog.Actor{})
	require.NoError(t, err)
	require.Equal(t, 1, res.SuccessCount)
	require.Zero(t, res.FailureCount)
	require.NotEmpty(t, res.BatchID)

	rows := f.ideas(t)
	require.Len(t, rows, 1)
	require.Equal(t, "A", rows[0].Title)
	require.True(t, rows[0].InvestmentNeeded.Equal(decimal.NewFromInt(1000)))
	require.True(t, rows[0].Active)
	require.Equal(t, res.BatchID, *rows[0].UploadBatchID)

	h := f.history(t, res.BatchID)
	require.Equal(t, uploadhistory.StatusCompleted, h.Status)
	require.EqualValues(t, 1, h.IdeasCount)
	require.Equal(t, "admin", h.UploadedBy)
	require.EqualValues(t, len(up.Data), h.FileSize)

	require.Equal(t, 1, f.facets.calls)
	require.Len(t, f.publisher.events, 1)
	require.Equal(t, notification.EventBatchIngested, f.publisher.events[0].Type)
}

func TestIngestCSVCountsInvalidRowsAndSkipsBlankOnes(t *testing.T) {
	f := newFixture(t, nil)
	data := "TITLE,Difficultylevel,targetAudience,investmentNeeded\n" +
		"Good,Easy,\"students, farmers\",\"1,250.50\"\n" +
		",,,\n" +
		"Bad,Impossible,,\n" +
		",Hard,,\n"

	res, err := f.svc.Ingest(context.Background(), Upload{Filename: "IDEAS.CSV", Data: []byte(data)}, "admin", auditlog.Actor{})
	require.NoError(t, err)
	require.Equal(t, 3, res.TotalRows)
	require.Equal(t, 1, res.SuccessCount)
	require.Equal(t, 2, res.FailureCount)

	rows := f.ideas(t)
	require.Len(t, rows, 1)
	require.Equal(t, []string{"students", "farmers"}, []string(rows[0].TargetAudience))
	require.True(t, rows[0].InvestmentNeeded.Equal(decimal.RequireFromString("1250.50")))
	require.EqualValues(t, 1, f.history(t, res.BatchID).IdeasCount)
}

func TestIngestKeepsGoingWhenOneRowFailsToSave(t *testing.T) {
	f := newFixture(t, func(r idea.Repository) idea.Repository { return failingCreate{Repository: r, title: "boom"} })
	data := "title\nfirst\nboom\nlast\n"

	res, err := f.svc.Ingest(context.Background(), Upload{Filename: "x.csv", Data: []byte(data)}, "admin", auditlog.Actor{})
	require.NoError(t, err)
	require.Equal(t, 2, res.SuccessCount)
	require.Equal(t, 1, res.FailureCount)

	rows := f.ideas(t)
	require.Len(t, rows, 2)
	require.Equal(t, "first", rows[0].Title)
	require.Equal(t, "last", rows[1].Title)
}

func TestIngestMalformedJSONMarksBatchFailed(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.Ingest(context.Background(), Upload{Filename: "ideas.json", Data: []byte("{not valid")}, "admin", auditlog.Actor{})
	require.True(t, apperr.Is(err, apperr.KindMalformedPayload))
	require.NotNil(t, res)
	require.Empty(t, f.ideas(t))

	h := f.history(t, res.BatchID)
	require.Equal(t, uploadhistory.StatusFailed, h.Status)
	require.Zero(t, h.IdeasCount)
	require.Zero(t, f.facets.calls)
	require.Empty(t, f.publisher.events)

	var failures int64
	require.NoError(t, f.db.Model(&auditlog.AuditLog{}).
		Where("action = ? AND status = ?", auditlog.ActionBatchUploaded, auditlog.StatusFailure).Count(&failures).Error)
	require.EqualValues(t, 1, failures)
}

func TestIngestJSONArray(t *testing.T) {
	f := newFixture(t, nil)
	data := `[
		{"title": "Dairy", "investmentNeeded": 75000, "targetAudience": ["rural", " "]},
		{"title": "Bakery", "investmentNeeded": null}
	]`

	res, err := f.svc.Ingest(context.Background(), Upload{Filename: "ideas.json", Data: []byte(data)}, "admin", auditlog.Actor{})
	require.NoError(t, err)
	require.Equal(t, 2, res.SuccessCount)

	rows := f.ideas(t)
	require.True(t, rows[0].InvestmentNeeded.Equal(decimal.NewFromInt(75000)))
	require.Equal(t, []string{"rural"}, []string(rows[0].TargetAudience))
	require.True(t, rows[1].InvestmentNeeded.IsZero())
}

func TestIngestUnsupportedFormatWritesNothing(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.Ingest(context.Background(), Upload{Filename: "ideas.txt", Data: []byte("title\nA\n")}, "admin", auditlog.Actor{})
	require.True(t, apperr.Is(err, apperr.KindUnsupportedFormat))
	require.Nil(t, res)

	var n int64
	require.NoError(t, f.db.Model(&uploadhistory.UploadHistory{}).Count(&n).Error)
	require.Zero(t, n)
}

func TestIngestXLSX(t *testing.T) {
	f := newFixture(t, nil)

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]interface{}{"Title", "Category", "InvestmentNeeded"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A2", &[]interface{}{"Goat farm", "Agriculture", 150000}))
	require.NoError(t, wb.SetSheetRow(sheet, "A4", &[]interface{}{"Tailoring", "Services", "oops"}))
	style, err := wb.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	require.NoError(t, wb.SetCellStyle(sheet, "C2", "C2", style))
	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))

	res, err := f.svc.Ingest(context.Background(), Upload{Filename: "ideas.xlsx", Data: buf.Bytes()}, "admin", auditlog.Actor{})
	require.NoError(t, err)
	require.Equal(t, 2, res.SuccessCount)

	rows := f.ideas(t)
	require.Equal(t, "Goat farm", rows[0].Title)
	require.Equal(t, "Agriculture", rows[0].Category)
	require.True(t, rows[0].InvestmentNeeded.Equal(decimal.NewFromInt(150000)))
	require.True(t, rows[1].InvestmentNeeded.IsZero())
}

func TestIngestUnreadableSpreadsheet(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.Ingest(context.Background(), Upload{Filename: "legacy.xls", Data: []byte{0xd0, 0xcf, 0x11, 0xe0}}, "admin", auditlog.Actor{})
	require.True(t, apperr.Is(err, apperr.KindMalformedPayload))
	require.Equal(t, uploadhistory.StatusFailed, f.history(t, res.BatchID).Status)
}

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name string
		want Format
		ok   bool
	}{
		{"ideas.csv", FormatCSV, true},
		{"Ideas.XLSX", FormatXLSX, true},
		{"old.xls", FormatXLS, true},
		{"dump.json", FormatJSON, true},
		{"notes.txt", "", false},
		{"README", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectFormat(tc.name)
			if !tc.ok {
				require.True(t, apperr.Is(err, apperr.KindUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseJSONRejectsNonArray(t *testing.T) {
	_, err := Parse(FormatJSON, []byte(`{"title": "single"}`))
	require.True(t, apperr.Is(err, apperr.KindMalformedPayload))
}

func TestParseCSVRequiresHeader(t *testing.T) {
	_, err := Parse(FormatCSV, nil)
	require.True(t, apperr.Is(err, apperr.KindMalformedPayload))
}

func TestParseAmount(t *testing.T) {
	require.True(t, parseAmount(" 2,500 ").Equal(decimal.NewFromInt(2500)))
	require.True(t, parseAmount("12.75").Equal(decimal.RequireFromString("12.75")))
	require.True(t, parseAmount("n/a").IsZero())
	require.True(t, parseAmount("").IsZero())
}

func TestTemplate(t *testing.T) {
	f := newFixture(t, nil)

	data, name, mime, err := f.svc.Template("csv")
	require.NoError(t, err)
	require.Equal(t, "idea_upload_template.csv", name)
	require.Equal(t, "text/csv", mime)
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	require.NoError(t, err)
	require.Equal(t, Columns, header)

	data, _, _, err = f.svc.Template("xlsx")
	require.NoError(t, err)
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	rows, err := wb.GetRows("Ideas")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, Columns, rows[0])

	_, _, _, err = f.svc.Template("pdf")
	require.True(t, apperr.Is(err, apperr.KindValidation))
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestUploadIdeasHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t, nil)
	h := NewHandler(f.svc, 1)
	r := gin.New()
	r.POST("/admin/upload-ideas", func(c *gin.Context) {
		c.Set(utils.CtxUsername, "admin")
		h.UploadIdeas(c)
	})

	body, ctype := multipartBody(t, "ideas.csv", "title\nWorm compost\n")
	req := httptest.NewRequest(http.MethodPost, "/admin/upload-ideas", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var ok map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	require.EqualValues(t, 1, ok["successCount"])

	body, ctype = multipartBody(t, "ideas.json", "[1,")
	req = httptest.NewRequest(http.MethodPost, "/admin/upload-ideas", body)
	req.Header.Set("Content-Type", ctype)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var failed map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failed))
	require.Equal(t, false, failed["success"])
	require.NotEmpty(t, failed["batchId"])

	body, ctype = multipartBody(t, "big.csv", "title\n"+strings.Repeat("x", 1<<20))
	req = httptest.NewRequest(http.MethodPost, "/admin/upload-ideas", body)
	req.Header.Set("Content-Type", ctype)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
