package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"perfume-recommender/backend/internal/catalog"
	"perfume-recommender/backend/internal/recommend"
	"perfume-recommender/backend/internal/util"
)

// Config defines server options.
type Config struct {
	AllowedOrigins []string
}

// Server wires HTTP handlers to the recommendation service.
type Server struct {
	service        *recommend.Service
	allowedOrigins []string
	streams        *StreamHub
}

// NewServer constructs the API server.
func NewServer(cfg Config, service *recommend.Service) (*Server, error) {
	if service == nil {
		return nil, errors.New("recommendation service required")
	}
	origins := make([]string, 0, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return &Server{
		service:        service,
		allowedOrigins: origins,
		streams:        NewStreamHub(),
	}, nil
}

// Streams returns the websocket hub, for shutdown.
func (s *Server) Streams() *StreamHub {
	return s.streams
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowCredentials = true
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsCfg.ExposeHeaders = []string{requestIDHeader}
	r.Use(cors.New(corsCfg))

	r.GET("/api/healthz", s.handleHealth)
	r.GET("/api/config", s.handleConfig)

	api := r.Group("/api")
	{
		api.GET("/catalog/stats", s.handleCatalogStats)
		api.POST("/recommend", s.handleRecommend)
		api.GET("/recommend/stream", s.handleRecommendStream)
	}

	return r, nil
}

const requestIDHeader = "X-Request-ID"

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"stream_clients": s.streams.Count(),
	})
}

func (s *Server) handleConfig(c *gin.Context) {
	cat, err := s.service.Catalog("")
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, ConfigResponse{
		Engines:       s.service.Engines(),
		DefaultEngine: s.service.DefaultEngine(),
		Genders:       catalog.Genders,
		TimeUsages:    catalog.TimeUsages,
		Countries:     cat.Countries(),
		DefaultTopN:   s.service.DefaultTopN(),
	})
}

func (s *Server) handleCatalogStats(c *gin.Context) {
	engine := strings.TrimSpace(c.Query("engine"))
	cat, err := s.service.Catalog(engine)
	if err != nil {
		s.renderError(c, statusFor(err), err)
		return
	}
	if engine == "" {
		engine = s.service.DefaultEngine()
	}
	c.JSON(http.StatusOK, StatsResponse{
		Engine: strings.ToLower(engine),
		Stats:  cat.Stats(),
	})
}

func (s *Server) handleRecommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
		return
	}

	resp, err := s.recommend(req)
	c.Header(requestIDHeader, resp.RequestID)
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error(), RequestID: resp.RequestID})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// recommend runs req and stamps the response with a request id and timing.
// The id is set on the response even when err is non-nil.
func (s *Server) recommend(req RecommendRequest) (RecommendResponse, error) {
	timer := util.StartTimer()
	requestID := uuid.NewString()

	engine, err := s.service.Engine(req.Engine)
	if err != nil {
		return RecommendResponse{RequestID: requestID}, err
	}
	out, err := s.service.Recommend(engine.Name(), req.Query())
	if err != nil {
		return RecommendResponse{RequestID: requestID}, err
	}

	resp := FromOutcome(engine.Name(), requestID, out)
	resp.ProcessingTimeMs = timer.ElapsedMsFloat()
	logrus.WithFields(logrus.Fields{
		"request_id": requestID,
		"engine":     resp.Engine,
		"results":    len(resp.Results),
		"reason":     resp.Reason,
		"elapsed_ms": resp.ProcessingTimeMs,
	}).Info("recommendation request")
	return resp, nil
}

func statusFor(err error) int {
	if errors.Is(err, recommend.ErrUnknownEngine) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, ErrorResponse{Error: err.Error()})
}
