package store

import (
	"math"
	"time"
)

// Perfume is one catalog row of an imported dataset snapshot.
type Perfume struct {
	ID               uint   `gorm:"primaryKey"`
	Dataset          string `gorm:"size:64;index"`
	RowIndex         int    `gorm:"index"`
	Brand            string `gorm:"size:128"`
	Name             string `gorm:"size:256"`
	Gender           string `gorm:"size:32;index"`
	TimeUsage        string `gorm:"size:32;index"`
	Country          string `gorm:"size:64;index"`
	Rating           float64
	HasRating        bool
	OlfactoryFamily  string    `gorm:"size:128"`
	TopNotes         string    `gorm:"type:text"`
	MiddleNotes      string    `gorm:"type:text"`
	BaseNotes        string    `gorm:"type:text"`
	CombinedFeatures string    `gorm:"type:text"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
}

// SetRating stores the rating, recording NaN as a missing value.
func (p *Perfume) SetRating(v float64) {
	if math.IsNaN(v) {
		p.Rating = 0
		p.HasRating = false
		return
	}
	p.Rating = v
	p.HasRating = true
}

// RatingValue returns the stored rating or NaN when none was recorded.
func (p *Perfume) RatingValue() float64 {
	if !p.HasRating {
		return math.NaN()
	}
	return p.Rating
}

// Import records one dataset import run.
type Import struct {
	ID         uint   `gorm:"primaryKey"`
	Dataset    string `gorm:"size:64;index"`
	SourcePath string `gorm:"size:512"`
	RowCount   int
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}
