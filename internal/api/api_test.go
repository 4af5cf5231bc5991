package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"perfume-recommender/backend/internal/catalog"
	"perfume-recommender/backend/internal/recommend"
)

func testRouter(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := catalog.New([]catalog.Item{
		{Brand: "A", Name: "Sunny", Gender: "wanita", TimeUsage: "siang", Country: "Indonesia", Rating: 4.6, CombinedFeatures: "fruity, sweet, floral"},
		{Brand: "B", Name: "Bloom", Gender: "wanita", TimeUsage: "siang", Country: "France", Rating: math.NaN(), CombinedFeatures: "floral, rose"},
		{Brand: "C", Name: "Mint", Gender: "wanita", TimeUsage: "siang", Country: "France", Rating: 3.2, CombinedFeatures: "mint, fresh"},
		{Brand: "D", Name: "Dusk", Gender: "pria", TimeUsage: "malam", Country: "Italy", Rating: 4.0, CombinedFeatures: "woody, amber"},
	})
	svc, err := recommend.NewDefaultService(recommend.Sources{Jaccard: cat, Cosine: cat}, 3)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	server, err := NewServer(Config{}, svc)
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	router, err := server.Router()
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return server, router
}

func postRecommend(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/recommend", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndConfig(t *testing.T) {
	_, router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var cfg ConfigResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.DefaultEngine != "jaccard" || len(cfg.Engines) != 2 {
		t.Fatalf("unexpected engines %+v", cfg)
	}
	if strings.Join(cfg.Countries, ",") != "indonesia,france,italy" {
		t.Fatalf("unexpected countries %v", cfg.Countries)
	}
	if cfg.DefaultTopN != 3 {
		t.Fatalf("expected default top n 3 got %d", cfg.DefaultTopN)
	}
}

func TestCatalogStats(t *testing.T) {
	_, router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/catalog/stats?engine=cosine", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var stats StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Engine != "cosine" || stats.Total != 4 || stats.ByGender["wanita"] != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/catalog/stats?engine=bm25", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown engine got %d", rec.Code)
	}
}

func TestRecommendEndpoint(t *testing.T) {
	_, router := testRouter(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantFirst  string
		wantReason string
	}{
		{
			name:       "jaccard",
			body:       `{"engine":"jaccard","gender":"wanita","time_usage":"siang","description":"floral rose","exclusion":"-"}`,
			wantStatus: http.StatusOK,
			wantFirst:  "Bloom",
		},
		{
			name:       "cosine default top n",
			body:       `{"engine":"cosine","gender":"wanita","time_usage":"siang","description":"floral rose"}`,
			wantStatus: http.StatusOK,
			wantFirst:  "Bloom",
		},
		{
			name:       "no candidates",
			body:       `{"gender":"unisex","time_usage":"siang","description":"floral"}`,
			wantStatus: http.StatusOK,
			wantReason: "no_candidates",
		},
		{
			name:       "unknown engine",
			body:       `{"engine":"bm25","gender":"wanita","time_usage":"siang","description":"floral"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed",
			body:       `{"engine":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postRecommend(t, router, tc.body)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			if tc.wantStatus != http.StatusOK {
				return
			}
			var resp RecommendResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.RequestID == "" || rec.Header().Get(requestIDHeader) != resp.RequestID {
				t.Fatalf("expected request id in body and header")
			}
			if resp.Results == nil {
				t.Fatalf("expected results array, got null")
			}
			if tc.wantFirst != "" {
				if len(resp.Results) == 0 || resp.Results[0].Name != tc.wantFirst {
					t.Fatalf("expected %s first got %+v", tc.wantFirst, resp.Results)
				}
				if resp.Results[0].Rank != 1 {
					t.Fatalf("expected rank 1 got %d", resp.Results[0].Rank)
				}
			}
			if resp.Reason != tc.wantReason {
				t.Fatalf("expected reason %q got %q", tc.wantReason, resp.Reason)
			}
		})
	}
}

func TestRecommendMissingRatingIsNull(t *testing.T) {
	_, router := testRouter(t)
	rec := postRecommend(t, router, `{"gender":"wanita","time_usage":"siang","description":"rose"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"rating":null`) {
		t.Fatalf("expected null rating in %s", rec.Body.String())
	}
}

func TestRecommendStream(t *testing.T) {
	server, router := testRouter(t)
	ts := httptest.NewServer(router)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/recommend/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	if err := conn.WriteJSON(RecommendRequest{Engine: "cosine", Gender: "wanita", TimeUsage: "siang", Description: "floral"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp RecommendResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Engine != "cosine" || len(resp.Results) == 0 {
		t.Fatalf("unexpected response %+v", resp)
	}

	if err := conn.WriteJSON(RecommendRequest{Engine: "bm25", Description: "floral"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var errResp ErrorResponse
	if err := conn.ReadJSON(&errResp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(errResp.Error, "unknown engine") {
		t.Fatalf("expected unknown engine error got %+v", errResp)
	}

	if server.Streams().Count() != 1 {
		t.Fatalf("expected one stream client got %d", server.Streams().Count())
	}
}

func TestFromResultRounding(t *testing.T) {
	if got := round4(0.123456); got != 0.1235 {
		t.Fatalf("expected 0.1235 got %f", got)
	}
	if ratingPtr(math.NaN()) != nil {
		t.Fatalf("expected nil for NaN rating")
	}
}
