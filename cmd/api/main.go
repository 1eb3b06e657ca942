package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/sparkpark/parking-recommender/internal/adapter/http"
	"github.com/sparkpark/parking-recommender/internal/adapter/model"
	"github.com/sparkpark/parking-recommender/internal/adapter/xlsx"
	"github.com/sparkpark/parking-recommender/internal/config"
	"github.com/sparkpark/parking-recommender/internal/domain"
	"github.com/sparkpark/parking-recommender/internal/observability"
	"github.com/sparkpark/parking-recommender/internal/recommend"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Startup data is best-effort: a missing workbook or artifact degrades
	// the service to fail-fast responses instead of crashing the process.
	var facilities []domain.Facility
	catalog, err := xlsx.Load(cfg.FacilityPath(), logger)
	if err != nil {
		logger.Error("facility catalog unavailable", "path", cfg.FacilityPath(), "error", err)
	} else {
		facilities = catalog.Facilities()
		metrics.CatalogFacilities.Set(float64(len(facilities)))
		metrics.CatalogSheets.Set(float64(catalog.Sheets()))
		metrics.CatalogDroppedRows.Set(float64(catalog.Dropped()))
		logger.Info("facility catalog loaded",
			"facilities", len(facilities),
			"sheets", catalog.Sheets(),
			"dropped_rows", catalog.Dropped(),
		)
	}

	var scorer domain.Scorer
	regressor, err := model.Load(cfg.ModelPath())
	if err != nil {
		logger.Error("scoring model unavailable", "path", cfg.ModelPath(), "error", err)
	} else {
		scorer = regressor
		metrics.ModelLoaded.Set(1)
		logger.Info("scoring model loaded", "trees", regressor.Trees())
	}

	svc := recommend.New(facilities, scorer, cfg.DefaultTopK, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, svc, cfg.CORSAllowedOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
