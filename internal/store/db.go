package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrEmptyDataset is returned when a dataset has no stored rows.
var ErrEmptyDataset = errors.New("dataset has no rows")

// Database wraps the GORM DB handle and exposes repository helpers.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed catalog snapshot at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&Perfume{}, &Import{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := applyIndexes(db); err != nil {
		return nil, fmt.Errorf("apply indexes: %w", err)
	}
	return &Database{gorm: db}, nil
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ReplaceDataset swaps every stored row of the dataset with the provided slice
// and records the import.
func (d *Database) ReplaceDataset(dataset, sourcePath string, rows []Perfume) error {
	dataset = normalizeDataset(dataset)
	if dataset == "" {
		return errors.New("dataset name is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dataset = ?", dataset).Delete(&Perfume{}).Error; err != nil {
			return err
		}
		for i := range rows {
			rows[i].ID = 0
			rows[i].Dataset = dataset
		}
		// SQLite caps bound variables per statement.
		const batchSize = 250
		for start := 0; start < len(rows); start += batchSize {
			end := start + batchSize
			if end > len(rows) {
				end = len(rows)
			}
			if err := tx.CreateInBatches(rows[start:end], batchSize).Error; err != nil {
				return err
			}
		}
		return tx.Create(&Import{Dataset: dataset, SourcePath: sourcePath, RowCount: len(rows)}).Error
	})
}

// ListDataset returns the dataset rows in their original order.
func (d *Database) ListDataset(dataset string) ([]Perfume, error) {
	if d == nil {
		return nil, errors.New("database is nil")
	}
	dataset = normalizeDataset(dataset)
	var rows []Perfume
	if err := d.gorm.Model(&Perfume{}).
		Where("dataset = ?", dataset).
		Order("row_index ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list dataset %s: %w", dataset, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("list dataset %s: %w", dataset, ErrEmptyDataset)
	}
	return rows, nil
}

// CountDataset returns the number of rows stored for the dataset.
func (d *Database) CountDataset(dataset string) (int64, error) {
	var count int64
	if err := d.gorm.Model(&Perfume{}).Where("dataset = ?", normalizeDataset(dataset)).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Datasets lists the dataset names that currently hold rows.
func (d *Database) Datasets() ([]string, error) {
	var names []string
	if err := d.gorm.Model(&Perfume{}).Distinct("dataset").Order("dataset ASC").Pluck("dataset", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

// LatestImport returns the most recent import record for the dataset.
func (d *Database) LatestImport(dataset string) (*Import, error) {
	var rec Import
	if err := d.gorm.Where("dataset = ?", normalizeDataset(dataset)).Order("id DESC").First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func normalizeDataset(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func applyIndexes(db *gorm.DB) error {
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_perfumes_dataset_row ON perfumes(dataset, row_index)",
		"CREATE INDEX IF NOT EXISTS idx_imports_dataset ON imports(dataset)",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
