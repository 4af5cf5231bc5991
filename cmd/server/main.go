package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"perfume-recommender/backend/internal/api"
	"perfume-recommender/backend/internal/catalog"
	"perfume-recommender/backend/internal/recommend"
	"perfume-recommender/backend/internal/store"
)

const (
	defaultCatalogPath = "data/perfume_dataset_final.csv"
	jaccardDataset     = "jaccard"
	cosineDataset      = "cosine"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("load .env")
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			logrus.Fatalf("parse LOG_LEVEL: %v", err)
		}
		logrus.SetLevel(parsed)
	}
	if mode := strings.TrimSpace(os.Getenv("GIN_MODE")); mode != "" {
		gin.SetMode(mode)
	}

	sources, err := loadSources()
	if err != nil {
		logrus.Fatalf("load catalogs: %v", err)
	}

	defaultTopN := 0
	if v := strings.TrimSpace(os.Getenv("DEFAULT_TOP_N")); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			defaultTopN = val
		} else {
			logrus.WithField("value", v).Warn("ignoring invalid DEFAULT_TOP_N")
		}
	}

	service, err := recommend.NewDefaultService(sources, defaultTopN)
	if err != nil {
		logrus.Fatalf("create recommendation service: %v", err)
	}

	var origins []string
	if v := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); v != "" {
		origins = strings.Split(v, ",")
	} else {
		origins = []string{"http://localhost:1000", "http://127.0.0.1:1000"}
	}

	server, err := api.NewServer(api.Config{AllowedOrigins: origins}, service)
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}

	router, err := server.Router()
	if err != nil {
		logrus.Fatalf("configure router: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "2000"
	}

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("starting perfume-recommender backend on :%s", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server exited: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logrus.Info("shutting down")
	server.Streams().CloseAll()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logrus.WithError(err).Warn("graceful shutdown")
	}
}

// loadSources reads the per-engine catalogs, from the SQLite snapshot when
// CATALOG_DB_PATH is set and from CSV otherwise.
func loadSources() (recommend.Sources, error) {
	if dbPath := strings.TrimSpace(os.Getenv("CATALOG_DB_PATH")); dbPath != "" {
		db, err := store.Open(dbPath, true)
		if err != nil {
			return recommend.Sources{}, err
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logrus.WithError(cerr).Warn("close catalog database")
			}
		}()
		jac, err := catalog.LoadFromStore(db, jaccardDataset)
		if err != nil {
			return recommend.Sources{}, err
		}
		cos, err := catalog.LoadFromStore(db, cosineDataset)
		if errors.Is(err, store.ErrEmptyDataset) {
			logrus.Info("no cosine dataset in snapshot, sharing the jaccard catalog")
			cos, err = jac, nil
		}
		if err != nil {
			return recommend.Sources{}, err
		}
		return recommend.Sources{Jaccard: jac, Cosine: cos}, nil
	}

	jaccardPath := strings.TrimSpace(os.Getenv("CATALOG_PATH"))
	if jaccardPath == "" {
		jaccardPath = defaultCatalogPath
	}
	cosinePath := strings.TrimSpace(os.Getenv("COSINE_CATALOG_PATH"))
	if cosinePath == "" {
		cosinePath = jaccardPath
	}

	jac, err := catalog.LoadCSV(jaccardPath)
	if err != nil {
		return recommend.Sources{}, err
	}
	cos := jac
	if cosinePath != jaccardPath {
		if cos, err = catalog.LoadCSV(cosinePath); err != nil {
			return recommend.Sources{}, err
		}
	}
	return recommend.Sources{Jaccard: jac, Cosine: cos}, nil
}
