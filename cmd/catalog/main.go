package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"perfume-recommender/backend/internal/catalog"
	"perfume-recommender/backend/internal/store"
)

// catalog imports perfume CSV files into the SQLite snapshot read by the
// server when CATALOG_DB_PATH is set.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("load .env")
	}

	var (
		dbPath  = flag.String("db", defaultDBPath(), "Path to SQLite catalog snapshot")
		list    = flag.Bool("list", false, "List stored datasets and exit")
		imports multiFlag
	)
	flag.Var(&imports, "import", "dataset=path.csv to import (repeatable)")
	flag.Parse()

	db, err := store.Open(*dbPath, true)
	if err != nil {
		logrus.Fatalf("open database: %v", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("close database")
		}
	}()

	for _, arg := range imports {
		dataset, path, err := parseImport(arg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := importDataset(db, dataset, path); err != nil {
			logrus.Fatalf("import %s: %v", dataset, err)
		}
	}

	if *list || len(imports) == 0 {
		if err := printDatasets(db); err != nil {
			logrus.Fatalf("list datasets: %v", err)
		}
	}
}

func defaultDBPath() string {
	if v := strings.TrimSpace(os.Getenv("CATALOG_DB_PATH")); v != "" {
		return v
	}
	return filepath.FromSlash("data/catalog.db")
}

func parseImport(arg string) (string, string, error) {
	dataset, path, ok := strings.Cut(arg, "=")
	dataset, path = strings.TrimSpace(dataset), strings.TrimSpace(path)
	if !ok || dataset == "" || path == "" {
		return "", "", fmt.Errorf("invalid -import %q, expected dataset=path.csv", arg)
	}
	return dataset, path, nil
}

func importDataset(db *store.Database, dataset, path string) error {
	start := time.Now()
	cat, err := catalog.LoadCSV(path)
	if err != nil {
		return err
	}
	rows := make([]store.Perfume, 0, cat.Len())
	for _, it := range cat.Items() {
		rows = append(rows, catalog.ToModel(it))
	}
	if err := db.ReplaceDataset(dataset, path, rows); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"dataset":  dataset,
		"path":     path,
		"rows":     len(rows),
		"duration": time.Since(start),
	}).Info("catalog imported")
	return nil
}

type datasetInfo struct {
	Dataset    string    `json:"dataset"`
	Rows       int64     `json:"rows"`
	SourcePath string    `json:"source_path,omitempty"`
	ImportedAt time.Time `json:"imported_at,omitempty"`
}

func printDatasets(db *store.Database) error {
	names, err := db.Datasets()
	if err != nil {
		return err
	}
	infos := make([]datasetInfo, 0, len(names))
	for _, name := range names {
		count, err := db.CountDataset(name)
		if err != nil {
			return err
		}
		info := datasetInfo{Dataset: name, Rows: count}
		if imp, err := db.LatestImport(name); err == nil && imp != nil {
			info.SourcePath = imp.SourcePath
			info.ImportedAt = imp.CreatedAt
		}
		infos = append(infos, info)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(infos)
}

type multiFlag []string

func (m *multiFlag) String() string {
	return strings.Join(*m, ",")
}

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}
