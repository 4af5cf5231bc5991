package catalog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"perfume-recommender/backend/internal/store"
)

var (
	// ErrUnreadable marks a catalog source that could not be opened or read.
	ErrUnreadable = errors.New("catalog unreadable")
	// ErrMissingColumns marks a header lacking required columns.
	ErrMissingColumns = errors.New("catalog missing required columns")
	// ErrMalformedRow marks a row whose values cannot be parsed.
	ErrMalformedRow = errors.New("catalog row malformed")
)

// LoadError reports a catalog that could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load catalog %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Column headers of the catalog file.
const (
	ColBrand            = "Brand"
	ColName             = "Perfume Name"
	ColGender           = "Gender"
	ColTimeUsage        = "Time Usage"
	ColCountry          = "Negara"
	ColRating           = "Rating"
	ColOlfactoryFamily  = "Olfactory Family"
	ColTopNotes         = "Top Notes"
	ColMiddleNotes      = "Middle Notes"
	ColBaseNotes        = "Base Notes"
	ColCombinedFeatures = "Combined_Features"
)

var requiredColumns = []string{ColBrand, ColName, ColGender, ColTimeUsage, ColCountry, ColRating, ColCombinedFeatures}

// LoadCSV reads a comma-delimited catalog with a header row.
func LoadCSV(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: path is empty", ErrUnreadable)}
	}
	start := time.Now()

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: %v", ErrUnreadable, err)}
	}
	defer file.Close()

	items, err := ReadCSV(bufio.NewReader(file))
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	cat := New(items)
	logrus.WithFields(logrus.Fields{
		"path":       path,
		"rows":       cat.Len(),
		"vocabulary": cat.Vocabulary().Len(),
		"countries":  len(cat.Countries()),
		"duration":   time.Since(start),
	}).Info("catalog loaded")
	return cat, nil
}

// ReadCSV parses catalog rows from r. Errors wrap ErrUnreadable,
// ErrMissingColumns or ErrMalformedRow.
func ReadCSV(r io.Reader) ([]Item, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no header row", ErrMissingColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrUnreadable, err)
	}

	cols := indexColumns(header)
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[strings.ToLower(name)]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var items []Item
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrUnreadable, line, err)
		}
		if isBlank(record) {
			continue
		}

		rating, err := parseRating(field(record, cols, ColRating))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		items = append(items, Item{
			Brand:            field(record, cols, ColBrand),
			Name:             field(record, cols, ColName),
			Gender:           field(record, cols, ColGender),
			TimeUsage:        field(record, cols, ColTimeUsage),
			Country:          field(record, cols, ColCountry),
			Rating:           rating,
			OlfactoryFamily:  field(record, cols, ColOlfactoryFamily),
			TopNotes:         field(record, cols, ColTopNotes),
			MiddleNotes:      field(record, cols, ColMiddleNotes),
			BaseNotes:        field(record, cols, ColBaseNotes),
			CombinedFeatures: field(record, cols, ColCombinedFeatures),
		})
	}
	return items, nil
}

// LoadFromStore builds a catalog from an imported dataset snapshot.
func LoadFromStore(db *store.Database, dataset string) (*Catalog, error) {
	if db == nil {
		return nil, &LoadError{Path: dataset, Err: fmt.Errorf("%w: database is nil", ErrUnreadable)}
	}
	start := time.Now()
	rows, err := db.ListDataset(dataset)
	if err != nil {
		return nil, &LoadError{Path: dataset, Err: fmt.Errorf("%w: %w", ErrUnreadable, err)}
	}
	items := make([]Item, 0, len(rows))
	for i := range rows {
		items = append(items, FromModel(rows[i]))
	}
	cat := New(items)
	logrus.WithFields(logrus.Fields{
		"dataset":    dataset,
		"rows":       cat.Len(),
		"vocabulary": cat.Vocabulary().Len(),
		"duration":   time.Since(start),
	}).Info("catalog loaded from store")
	return cat, nil
}

// FromModel converts a stored row into a catalog item.
func FromModel(p store.Perfume) Item {
	return Item{
		Brand:            p.Brand,
		Name:             p.Name,
		Gender:           p.Gender,
		TimeUsage:        p.TimeUsage,
		Country:          p.Country,
		Rating:           p.RatingValue(),
		OlfactoryFamily:  p.OlfactoryFamily,
		TopNotes:         p.TopNotes,
		MiddleNotes:      p.MiddleNotes,
		BaseNotes:        p.BaseNotes,
		CombinedFeatures: p.CombinedFeatures,
	}
}

// ToModel converts a catalog item into a storable row.
func ToModel(it Item) store.Perfume {
	p := store.Perfume{
		RowIndex:         it.Row,
		Brand:            it.Brand,
		Name:             it.Name,
		Gender:           it.Gender,
		TimeUsage:        it.TimeUsage,
		Country:          it.Country,
		OlfactoryFamily:  it.OlfactoryFamily,
		TopNotes:         it.TopNotes,
		MiddleNotes:      it.MiddleNotes,
		BaseNotes:        it.BaseNotes,
		CombinedFeatures: it.CombinedFeatures,
	}
	p.SetRating(it.Rating)
	return p
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for idx, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if key == "" {
			continue
		}
		if _, exists := cols[key]; !exists {
			cols[key] = idx
		}
	}
	return cols
}

func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[strings.ToLower(name)]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseRating(value string) (float64, error) {
	if value == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("rating %q: %w", value, err)
	}
	return v, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
