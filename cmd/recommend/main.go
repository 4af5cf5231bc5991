package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"perfume-recommender/backend/internal/catalog"
	"perfume-recommender/backend/internal/recommend"
	"perfume-recommender/backend/internal/scoring"
)

// recommend answers a single query from the command line and prints the
// ranked perfumes as JSON.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("load .env")
	}

	var (
		csvPath     = flag.String("csv", envOr("CATALOG_PATH", "data/perfume_dataset_final.csv"), "Perfume catalog CSV")
		engine      = flag.String("engine", scoring.EngineJaccard, "Scoring engine (jaccard or cosine)")
		gender      = flag.String("gender", "", "wanita, pria or unisex")
		timeUsage   = flag.String("time", "", "siang, malam or siang dan malam")
		description = flag.String("desc", "", "Free text description of the wanted scent")
		exclusion   = flag.String("exclude", "", "Free text of scents to avoid")
		topN        = flag.Int("top", scoring.DefaultTopN, "Number of results")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	cat, err := catalog.LoadCSV(*csvPath)
	if err != nil {
		logrus.Fatalf("load catalog: %v", err)
	}
	service, err := recommend.NewDefaultService(recommend.Sources{Jaccard: cat, Cosine: cat}, *topN)
	if err != nil {
		logrus.Fatalf("create recommendation service: %v", err)
	}

	out, err := service.RecommendFields(*engine, *gender, *timeUsage, *description, *exclusion, *topN)
	if err != nil {
		logrus.Fatalf("recommend: %v", err)
	}
	if err := writeOutcome(os.Stdout, strings.ToLower(*engine), out); err != nil {
		logrus.Fatalf("write output: %v", err)
	}
}

type resultLine struct {
	Brand      string   `json:"brand"`
	Name       string   `json:"name"`
	Country    string   `json:"country"`
	Rating     *float64 `json:"rating"`
	Similarity float64  `json:"similarity"`
}

type output struct {
	Engine   string       `json:"engine"`
	Keywords []string     `json:"keywords"`
	Results  []resultLine `json:"results"`
	Reason   string       `json:"reason,omitempty"`
}

func writeOutcome(w io.Writer, engine string, out scoring.Outcome) error {
	doc := output{
		Engine:   engine,
		Keywords: out.Keywords,
		Results:  make([]resultLine, 0, len(out.Results)),
		Reason:   string(out.Reason),
	}
	for _, r := range out.Results {
		line := resultLine{
			Brand:      r.Item.Brand,
			Name:       r.Item.Name,
			Country:    r.Item.Country,
			Similarity: r.Score,
		}
		if !math.IsNaN(r.Item.Rating) {
			rating := r.Item.Rating
			line.Rating = &rating
		}
		doc.Results = append(doc.Results, line)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
