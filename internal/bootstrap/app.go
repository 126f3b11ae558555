package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yaroslaavl/recruiter-cv-service/internal/approval"
	"github.com/yaroslaavl/recruiter-cv-service/internal/cv"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/config"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/server"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/storage/db"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/storage/object"
	memorystore "github.com/yaroslaavl/recruiter-cv-service/internal/shared/storage/object/memory"
	s3store "github.com/yaroslaavl/recruiter-cv-service/internal/shared/storage/object/s3"
)

// App holds shared dependencies.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Store     object.ObjectStore
	Repo      cv.CVRepo
	Approval  approval.Checker
	CVService *cv.Service
	CVHandler *cv.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var repo cv.CVRepo
	if sqlDB != nil {
		repo = &cv.PGRepo{DB: sqlDB}
	} else {
		repo = cv.NewMemoryRepo()
	}

	checker := buildApproval(ctx, cfg)

	svc := cv.NewService(store, repo, checker, cv.Config{
		Bucket:                  cfg.S3Bucket,
		StoreBaseURL:            cfg.StoreBaseURL,
		FolderTemplate:          cfg.CVFolderTemplate,
		MaxElements:             cfg.CVMaxElements,
		QuotaCountsReplacements: cfg.QuotaCountsReplacements,
	})
	handler := cv.NewHandler(svc)

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Store:     store,
		Repo:      repo,
		Approval:  checker,
		CVService: svc,
		CVHandler: handler,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:    cfg,
		CVHandler: handler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repository")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repository: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:          cfg.AWSRegion,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			ForcePathStyle:  cfg.S3ForcePathStyle,
		})
	default:
		return memorystore.New(cfg.StoreBaseURL), nil
	}
}

func buildApproval(ctx context.Context, cfg config.Config) approval.Checker {
	if strings.TrimSpace(cfg.UserServiceURL) == "" {
		log.Printf("bootstrap: USER_SERVICE_URL empty; approving all accounts")
		return &approval.StaticChecker{AllowAll: true}
	}
	return approval.NewClient(ctx,
		cfg.UserServiceURL,
		cfg.UserServiceTokenURL,
		cfg.UserServiceClientID,
		cfg.UserServiceClientSecret,
	)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
