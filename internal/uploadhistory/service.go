package uploadhistory

import (
	"context"
	"errors"
	"math"

	"gorm.io/gorm"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/internal/auditlog"
	"github.com/sharath018/idea-factory-backend/internal/idea"
	"github.com/sharath018/idea-factory-backend/internal/notification"
	"github.com/sharath018/idea-factory-backend/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// FacetInvalidator drops cached idea facet lists.
type FacetInvalidator interface {
	InvalidateFacets(ctx context.Context)
}

type Service interface {
	List(ctx context.Context) ([]UploadHistory, error)
	ListPaged(ctx context.Context, page, limit int) (*Page, error)
	Get(ctx context.Context, batchID string) (*UploadHistory, error)
	DeleteBatch(ctx context.Context, batchID string, actor auditlog.Actor) (*DeleteResult, error)
	Stats(ctx context.Context) (Stats, error)
	Export(ctx context.Context, format string) ([]byte, string, string, error)
}

type service struct {
	repo      Repository
	ideas     idea.Repository
	facets    FacetInvalidator
	publisher notification.Publisher
	audit     auditlog.Service
	exporter  Exporter
	log       *utils.Logger
}

func NewService(
	repo Repository,
	ideas idea.Repository,
	facets FacetInvalidator,
	publisher notification.Publisher,
	audit auditlog.Service,
	exporter Exporter,
	log *utils.Logger,
) Service {
	return &service{
		repo:      repo,
		ideas:     ideas,
		facets:    facets,
		publisher: publisher,
		audit:     audit,
		exporter:  exporter,
		log:       log,
	}
}

func (s *service) List(ctx context.Context) ([]UploadHistory, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list upload history", err)
	}
	return rows, nil
}

func (s *service) ListPaged(ctx context.Context, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	rows, total, err := s.repo.ListPaged(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, apperr.Internal("failed to list upload history", err)
	}
	return &Page{
		Data:       rows,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func (s *service) Get(ctx context.Context, batchID string) (*UploadHistory, error) {
	h, err := s.repo.GetByBatchID(ctx, batchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("upload batch not found: " + batchID)
	}
	if err != nil {
		return nil, apperr.Internal("failed to load upload batch", err)
	}
	return h, nil
}

// DeleteBatch removes a batch's ideas, their child records and the ledger
// row in one transaction. A missing batch is reported as NotFound; any other
// failure rolls everything back and is reported as BatchDeleteFailed.
func (s *service) DeleteBatch(ctx context.Context, batchID string, actor auditlog.Actor) (*DeleteResult, error) {
	var (
		history *UploadHistory
		deleted int64
		step    = "starting transaction"
	)
	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledger := s.repo.WithTx(tx)
		ideas := s.ideas.WithTx(tx)

		step = "loading upload record"
		h, err := ledger.GetByBatchID(ctx, batchID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("upload batch not found: " + batchID)
		}
		if err != nil {
			return err
		}
		history = h

		step = "counting batch ideas"
		expected, err := ideas.CountByBatch(ctx, batchID)
		if err != nil {
			return err
		}
		step = "deleting batch ideas"
		n, err := ideas.DeleteByBatch(ctx, batchID)
		if err != nil {
			return err
		}
		if n != expected {
			s.log.Warn("batch idea count changed during delete", "batch_id", batchID, "counted", expected, "deleted", n)
		}
		deleted = n
		step = "removing upload record"
		if err := ledger.Delete(ctx, h.ID); err != nil {
			return err
		}
		step = "committing"
		return nil
	})
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
		detail := step + " failed"
		if ctx.Err() != nil {
			detail = "request cancelled while " + step
		}
		s.log.Error("batch delete rolled back", "batch_id", batchID, "step", step, "error", err)
		s.audit.LogAction(ctx, actor, auditlog.ActionBatchDeleted, "upload_batch", batchID,
			map[string]interface{}{"error": err.Error(), "step": step}, auditlog.StatusFailure)
		return nil, apperr.BatchDeleteFailed("failed to delete batch "+batchID, detail, err)
	}

	s.facets.InvalidateFacets(ctx)
	s.audit.LogAction(ctx, actor, auditlog.ActionBatchDeleted, "upload_batch", batchID,
		map[string]interface{}{"filename": history.Filename, "deletedIdeas": deleted}, auditlog.StatusSuccess)
	if err := s.publisher.Publish(ctx, notification.CatalogEvent{
		Type:      notification.EventBatchDeleted,
		BatchID:   batchID,
		Filename:  history.Filename,
		IdeaCount: deleted,
		ActorID:   actor.UserID,
	}); err != nil {
		s.log.Warn("batch.deleted publish failed", "batch_id", batchID, "error", err)
	}

	s.log.Info("upload batch deleted", "batch_id", batchID, "deleted_ideas", deleted)
	return &DeleteResult{BatchID: batchID, DeletedIdeas: deleted}, nil
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	st, err := s.repo.Stats(ctx)
	if err != nil {
		return Stats{}, apperr.Internal("failed to load upload stats", err)
	}
	return st, nil
}

func (s *service) Export(ctx context.Context, format string) ([]byte, string, string, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return nil, "", "", err
	}
	data, name, mime, err := s.exporter.Export(format, rows)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return nil, "", "", err
		}
		return nil, "", "", apperr.Internal("export failed", err)
	}
	return data, name, mime, nil
}
