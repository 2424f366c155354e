package routes

import (
	"time"

	"gorm.io/gorm"

	"github.com/sharath018/idea-factory-backend/config"
	"github.com/sharath018/idea-factory-backend/internal/auditlog"
	"github.com/sharath018/idea-factory-backend/internal/auth"
	"github.com/sharath018/idea-factory-backend/internal/bulkupload"
	"github.com/sharath018/idea-factory-backend/internal/category"
	"github.com/sharath018/idea-factory-backend/internal/idea"
	"github.com/sharath018/idea-factory-backend/internal/ideadetail"
	"github.com/sharath018/idea-factory-backend/internal/notification"
	"github.com/sharath018/idea-factory-backend/internal/review"
	"github.com/sharath018/idea-factory-backend/internal/uploadhistory"
	"github.com/sharath018/idea-factory-backend/internal/userprofile"
	"github.com/sharath018/idea-factory-backend/utils"
)

// Infra holds the process-level clients the services are built on.
// Publisher may be nil, in which case events are handled in process.
// Google may be nil when firebase is not configured.
type Infra struct {
	DB        *gorm.DB
	Cache     utils.Cache
	Publisher notification.Publisher
	Mailer    *utils.Mailer
	Google    auth.GoogleVerifier
	Log       *utils.Logger
}

type Services struct {
	Audit         auditlog.Service
	Auth          auth.Service
	Categories    category.Service
	Ideas         idea.Service
	Ingestion     bulkupload.Service
	UploadHistory uploadhistory.Service
	Reviews       review.Service
	IdeaDetails   ideadetail.Service
	Profiles      userprofile.Service
	Notifications notification.Service
	Publisher     notification.Publisher
}

func NewServices(cfg *config.Config, in Infra) *Services {
	db, log := in.DB, in.Log
	cacheTTL := time.Duration(cfg.CacheTTLMinutes) * time.Minute

	auditSvc := auditlog.NewService(auditlog.NewRepository(db), log)

	authRepo := auth.NewRepository(db)
	authSvc := auth.NewService(authRepo, cfg, in.Mailer, in.Google, auditSvc, log)

	notificationSvc := notification.NewService(notification.NewRepository(db), authRepo, in.Mailer, log)
	publisher := in.Publisher
	if publisher == nil {
		publisher = notification.NewLocalPublisher(notificationSvc, log)
	}

	ideaRepo := idea.NewRepository(db)
	ideaSvc := idea.NewService(ideaRepo, in.Cache, cacheTTL, auditSvc, log)

	historyRepo := uploadhistory.NewRepository(db)
	historySvc := uploadhistory.NewService(historyRepo, ideaRepo, ideaSvc, publisher, auditSvc, uploadhistory.NewExporter(), log)
	ingestSvc := bulkupload.NewService(historyRepo, ideaRepo, ideaSvc, publisher, auditSvc, log)

	reviewSvc := review.NewService(review.NewRepository(db), ideaRepo, publisher, auditSvc, log)
	detailSvc := ideadetail.NewService(ideadetail.NewRepository(db), ideaSvc, reviewSvc, auditSvc, log)
	profileSvc := userprofile.NewService(userprofile.NewRepository(db), ideaSvc, historySvc, reviewSvc, auditSvc, log)

	return &Services{
		Audit:         auditSvc,
		Auth:          authSvc,
		Categories:    category.NewService(category.NewRepository(db), in.Cache, cacheTTL, log),
		Ideas:         ideaSvc,
		Ingestion:     ingestSvc,
		UploadHistory: historySvc,
		Reviews:       reviewSvc,
		IdeaDetails:   detailSvc,
		Profiles:      profileSvc,
		Notifications: notificationSvc,
		Publisher:     publisher,
	}
}
