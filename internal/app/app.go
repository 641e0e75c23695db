// internal/app/app.go
package app

import (
	"context"
	"log"

	"github.com/edusupport/datafeeder/internal/config"
	"github.com/edusupport/datafeeder/internal/core"
	db "github.com/edusupport/datafeeder/internal/core/database"
	"github.com/edusupport/datafeeder/internal/core/fetch"
	"github.com/edusupport/datafeeder/internal/services"
)

type App struct {
	Catalog  core.Catalog
	Fetcher  core.Fetcher
	Pipeline *services.PipelineService
}

// NewApp wires the pipeline from configuration. The catalog and the S3
// fetcher are both optional: without DATABASE_URL results only go to the
// filesystem, without AWS credentials only local files can be processed.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	var catalog core.Catalog
	if cfg.DatabaseURL != "" {
		c, err := db.NewCatalogClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		catalog = c
		log.Println("Catalog database initialized and ready.")
	}

	var fetcher core.Fetcher
	if cfg.AwsAccessKey != "" && cfg.AwsSecretKey != "" {
		f, err := fetch.NewS3Fetcher(ctx, cfg)
		if err != nil {
			return nil, err
		}
		fetcher = f
	} else {
		log.Println("AWS credentials not set; running in local-only mode.")
	}

	pipeline, err := services.NewPipelineService(cfg, fetcher, catalog)
	if err != nil {
		return nil, err
	}

	return &App{Catalog: catalog, Fetcher: fetcher, Pipeline: pipeline}, nil
}

func (a *App) Close() {
	if a.Catalog != nil {
		_ = a.Catalog.Close()
	}
}
