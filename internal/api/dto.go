package api

import (
	"math"

	"perfume-recommender/backend/internal/catalog"
	"perfume-recommender/backend/internal/extract"
	"perfume-recommender/backend/internal/scoring"
)

// RecommendRequest is the body of POST /api/recommend and of every websocket
// message on /api/recommend/stream.
type RecommendRequest struct {
	Engine      string `json:"engine"`
	Gender      string `json:"gender"`
	TimeUsage   string `json:"time_usage"`
	Description string `json:"description"`
	Exclusion   string `json:"exclusion"`
	TopN        int    `json:"top_n"`
}

// Query converts the request into an engine query.
func (r RecommendRequest) Query() scoring.Query {
	return scoring.Query{
		Gender:      r.Gender,
		TimeUsage:   r.TimeUsage,
		Description: r.Description,
		Exclusion:   r.Exclusion,
		TopN:        r.TopN,
	}
}

// ResultDTO is the API representation of one recommended perfume.
type ResultDTO struct {
	Rank            int      `json:"rank"`
	Brand           string   `json:"brand"`
	Name            string   `json:"name"`
	Gender          string   `json:"gender"`
	Rating          *float64 `json:"rating"`
	TimeUsage       string   `json:"time_usage"`
	OlfactoryFamily string   `json:"olfactory_family"`
	TopNotes        string   `json:"top_notes"`
	MiddleNotes     string   `json:"middle_notes"`
	BaseNotes       string   `json:"base_notes"`
	Country         string   `json:"country"`
	Similarity      float64  `json:"similarity"`
}

// RecommendResponse is the answer to a RecommendRequest. Results is empty, not
// null, when there is no recommendation and Reason then says why.
type RecommendResponse struct {
	Engine           string                `json:"engine"`
	RequestID        string                `json:"request_id"`
	Results          []ResultDTO           `json:"results"`
	Keywords         []string              `json:"keywords"`
	Excluded         []string              `json:"excluded"`
	Country          string                `json:"country,omitempty"`
	RatingFilter     *extract.RatingFilter `json:"rating_filter,omitempty"`
	Reason           string                `json:"reason,omitempty"`
	ProcessingTimeMs float64               `json:"processing_time_ms"`
}

// StatsResponse reports the catalog behind an engine.
type StatsResponse struct {
	Engine string `json:"engine"`
	catalog.Stats
}

// ConfigResponse lists the values a client can offer in its request form.
type ConfigResponse struct {
	Engines       []string `json:"engines"`
	DefaultEngine string   `json:"default_engine"`
	Genders       []string `json:"genders"`
	TimeUsages    []string `json:"time_usages"`
	Countries     []string `json:"countries"`
	DefaultTopN   int      `json:"default_top_n"`
}

// ErrorResponse is returned for rejected requests.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// FromResult maps a scored item to its DTO. rank is one-based.
func FromResult(rank int, r scoring.Result) ResultDTO {
	it := r.Item
	return ResultDTO{
		Rank:            rank,
		Brand:           it.Brand,
		Name:            it.Name,
		Gender:          it.Gender,
		Rating:          ratingPtr(it.Rating),
		TimeUsage:       it.TimeUsage,
		OlfactoryFamily: it.OlfactoryFamily,
		TopNotes:        it.TopNotes,
		MiddleNotes:     it.MiddleNotes,
		BaseNotes:       it.BaseNotes,
		Country:         it.Country,
		Similarity:      round4(r.Score),
	}
}

// FromOutcome maps an engine outcome to the response body.
func FromOutcome(engine, requestID string, out scoring.Outcome) RecommendResponse {
	results := make([]ResultDTO, 0, len(out.Results))
	for i, r := range out.Results {
		results = append(results, FromResult(i+1, r))
	}
	return RecommendResponse{
		Engine:       engine,
		RequestID:    requestID,
		Results:      results,
		Keywords:     nonNil(out.Keywords),
		Excluded:     nonNil(out.Excluded),
		Country:      out.Filters.Country,
		RatingFilter: out.Filters.Rating,
		Reason:       string(out.Reason),
	}
}

// JSON cannot carry NaN, a missing rating is null.
func ratingPtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
