package bulkupload

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/internal/auditlog"
	"github.com/sharath018/idea-factory-backend/internal/idea"
	"github.com/sharath018/idea-factory-backend/internal/notification"
	"github.com/sharath018/idea-factory-backend/internal/uploadhistory"
	"github.com/sharath018/idea-factory-backend/utils"
)

// FacetInvalidator drops cached idea facet lists.
type FacetInvalidator interface {
	InvalidateFacets(ctx context.Context)
}

type Service interface {
	Ingest(ctx context.Context, up Upload, uploader string, actor auditlog.Actor) (*Result, error)
	Template(format string) ([]byte, string, string, error)
}

type service struct {
	ledger    uploadhistory.Repository
	ideas     idea.Repository
	facets    FacetInvalidator
	publisher notification.Publisher
	audit     auditlog.Service
	log       *utils.Logger
	now       func() time.Time
}

func NewService(
	ledger uploadhistory.Repository,
	ideas idea.Repository,
	facets FacetInvalidator,
	publisher notification.Publisher,
	audit auditlog.Service,
	log *utils.Logger,
) Service {
	return &service{
		ledger:    ledger,
		ideas:     ideas,
		facets:    facets,
		publisher: publisher,
		audit:     audit,
		log:       log,
		now:       time.Now,
	}
}

// Ingest registers a batch, parses the file and stores every valid
// candidate under the batch id. The ledger row exists before parsing starts
// so a failed upload still leaves a FAILED entry behind.
func (s *service) Ingest(ctx context.Context, up Upload, uploader string, actor auditlog.Actor) (*Result, error) {
	format, err := DetectFormat(up.Filename)
	if err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	history := &uploadhistory.UploadHistory{
		Filename:        up.Filename,
		BatchID:         batchID,
		UploadTimestamp: s.now(),
		FileSize:        int64(len(up.Data)),
		ContentType:     up.ContentType,
		UploadedBy:      uploader,
		Status:          uploadhistory.StatusProcessing,
	}
	if err := s.ledger.Create(ctx, history); err != nil {
		return nil, apperr.Internal("failed to register upload batch", err)
	}
	res := &Result{BatchID: batchID, Filename: up.Filename}

	candidates, err := Parse(format, up.Data)
	if err != nil {
		s.fail(ctx, batchID, up.Filename, actor, err)
		return res, err
	}
	res.TotalRows = len(candidates)

	saved := 0
	err = s.ledger.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ideas := s.ideas.WithTx(tx)
		for i := range candidates {
			c := &candidates[i]
			c.UploadBatchID = &batchID
			c.Active = true
			if err := idea.Validate(c); err != nil {
				s.log.Warn("skipping invalid upload row", "batch_id", batchID, "row", i+1, "error", err)
				continue
			}
			err := tx.Transaction(func(sp *gorm.DB) error {
				return ideas.WithTx(sp).Create(ctx, c)
			})
			if err != nil {
				s.log.Warn("upload row not saved", "batch_id", batchID, "row", i+1, "error", err)
				continue
			}
			saved++
		}
		return s.ledger.WithTx(tx).MarkCompleted(ctx, batchID, int64(saved))
	})
	if err != nil {
		s.fail(ctx, batchID, up.Filename, actor, err)
		return res, apperr.Internal("failed to store uploaded ideas", err)
	}

	res.SuccessCount = saved
	res.FailureCount = len(candidates) - saved

	s.facets.InvalidateFacets(ctx)
	if err := s.publisher.Publish(ctx, notification.CatalogEvent{
		Type:      notification.EventBatchIngested,
		BatchID:   batchID,
		Filename:  up.Filename,
		IdeaCount: int64(saved),
		ActorID:   actor.UserID,
	}); err != nil {
		s.log.Warn("batch.ingested publish failed", "batch_id", batchID, "error", err)
	}
	s.audit.LogAction(ctx, actor, auditlog.ActionBatchUploaded, "upload_batch", batchID, map[string]interface{}{
		"filename":     up.Filename,
		"successCount": res.SuccessCount,
		"failureCount": res.FailureCount,
	}, auditlog.StatusSuccess)

	s.log.Info("upload batch ingested", "batch_id", batchID, "file", up.Filename,
		"rows", res.TotalRows, "saved", saved)
	return res, nil
}

func (s *service) fail(ctx context.Context, batchID, filename string, actor auditlog.Actor, cause error) {
	if err := s.ledger.MarkFailed(ctx, batchID); err != nil {
		s.log.Error("could not mark batch failed", "batch_id", batchID, "error", err)
	}
	s.audit.LogAction(ctx, actor, auditlog.ActionBatchUploaded, "upload_batch", batchID,
		map[string]interface{}{"filename": filename, "error": cause.Error()}, auditlog.StatusFailure)
	s.log.Warn("upload batch failed", "batch_id", batchID, "file", filename, "error", cause)
}

// Template returns an empty upload file holding only the header row.
func (s *service) Template(format string) ([]byte, string, string, error) {
	switch Format(format) {
	case FormatCSV, "":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(Columns); err != nil {
			return nil, "", "", apperr.Internal("failed to build template", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, "", "", apperr.Internal("failed to build template", err)
		}
		return buf.Bytes(), "idea_upload_template.csv", "text/csv", nil

	case FormatXLSX:
		f := excelize.NewFile()
		defer f.Close()
		sheet := "Ideas"
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return nil, "", "", apperr.Internal("failed to build template", err)
		}
		for i, col := range Columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			if err := f.SetCellValue(sheet, cell, col); err != nil {
				return nil, "", "", apperr.Internal("failed to build template", err)
			}
		}
		var buf bytes.Buffer
		if err := f.Write(&buf); err != nil {
			return nil, "", "", apperr.Internal("failed to build template", err)
		}
		return buf.Bytes(), "idea_upload_template.xlsx",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	}
	return nil, "", "", apperr.Validation(fmt.Sprintf("template format must be %s or %s", FormatCSV, FormatXLSX))
}
