package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sharath018/idea-factory-backend/config"
	"github.com/sharath018/idea-factory-backend/internal/auditlog"
	"github.com/sharath018/idea-factory-backend/internal/auth"
	"github.com/sharath018/idea-factory-backend/internal/category"
	"github.com/sharath018/idea-factory-backend/internal/idea"
	"github.com/sharath018/idea-factory-backend/internal/ideadetail"
	"github.com/sharath018/idea-factory-backend/internal/notification"
	"github.com/sharath018/idea-factory-backend/internal/review"
	"github.com/sharath018/idea-factory-backend/internal/uploadhistory"
	"github.com/sharath018/idea-factory-backend/utils"
)

// Connect opens the postgres pool through the pgx-backed gorm driver.
func Connect(cfg *config.Config, log *utils.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.IsProduction() {
		level = gormlogger.Error
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	log.Info("database connected", "host", cfg.DBHost, "db", cfg.DBName)
	return db, nil
}

// Models lists every table owned by the service, parents before children.
func Models() []interface{} {
	return []interface{}{
		&auth.User{},
		&auth.AdminSession{},
		&category.Category{},
		&idea.Idea{},
		&uploadhistory.UploadHistory{},
		&review.IdeaReview{},
		&ideadetail.Investment{},
		&ideadetail.Scheme{},
		&ideadetail.BankLoan{},
		&ideadetail.InternalFactors{},
		&auditlog.AuditLog{},
		&notification.InAppNotification{},
		&notification.NotificationLog{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
