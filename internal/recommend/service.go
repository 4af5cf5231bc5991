package recommend

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"perfume-recommender/backend/internal/catalog"
	"perfume-recommender/backend/internal/scoring"
	"perfume-recommender/backend/internal/util"
)

// ErrUnknownEngine is returned for an engine name the service does not hold.
var ErrUnknownEngine = errors.New("unknown engine")

// Service dispatches queries to named scoring engines.
type Service struct {
	engines     map[string]scoring.Engine
	defaultName string
	defaultTopN int
}

// NewService registers the supplied engines. The first engine is the default
// used when a request names none.
func NewService(defaultTopN int, engines ...scoring.Engine) (*Service, error) {
	if len(engines) == 0 {
		return nil, errors.New("at least one engine is required")
	}
	if defaultTopN <= 0 {
		defaultTopN = scoring.DefaultTopN
	}
	s := &Service{
		engines:     make(map[string]scoring.Engine, len(engines)),
		defaultTopN: defaultTopN,
	}
	for _, e := range engines {
		if e == nil {
			return nil, errors.New("engine is nil")
		}
		name := normalizeName(e.Name())
		if _, dup := s.engines[name]; dup {
			return nil, fmt.Errorf("engine %q registered twice", name)
		}
		s.engines[name] = e
		if s.defaultName == "" {
			s.defaultName = name
		}
	}
	return s, nil
}

// Sources names the catalog behind each engine.
type Sources struct {
	Jaccard *catalog.Catalog
	Cosine  *catalog.Catalog
}

// NewDefaultService builds the Jaccard and cosine engines over their catalogs,
// Jaccard being the default.
func NewDefaultService(src Sources, defaultTopN int) (*Service, error) {
	if src.Jaccard == nil || src.Cosine == nil {
		return nil, errors.New("both catalogs are required")
	}
	timer := util.StartTimer()
	jac := scoring.NewJaccardEngine(src.Jaccard, nil)
	cos := scoring.NewCosineEngine(src.Cosine, nil)
	logrus.WithFields(logrus.Fields{
		"jaccard_rows":     src.Jaccard.Len(),
		"cosine_rows":      src.Cosine.Len(),
		"tfidf_terms":      cos.Vectorizer().Len(),
		"build_elapsed_ms": timer.ElapsedMs(),
	}).Info("recommendation engines ready")
	return NewService(defaultTopN, jac, cos)
}

// Engines returns the registered engine names, sorted.
func (s *Service) Engines() []string {
	names := make([]string, 0, len(s.engines))
	for name := range s.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultEngine returns the engine used when a request names none.
func (s *Service) DefaultEngine() string {
	return s.defaultName
}

// DefaultTopN returns the result count used when a request names none.
func (s *Service) DefaultTopN() int {
	return s.defaultTopN
}

// Engine looks up an engine by name; "" selects the default.
func (s *Service) Engine(name string) (scoring.Engine, error) {
	name = normalizeName(name)
	if name == "" {
		name = s.defaultName
	}
	e, ok := s.engines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
	return e, nil
}

// Recommend runs q on the named engine. The only error is ErrUnknownEngine;
// an empty outcome is a valid answer.
func (s *Service) Recommend(engine string, q scoring.Query) (scoring.Outcome, error) {
	e, err := s.Engine(engine)
	if err != nil {
		return scoring.Outcome{}, err
	}
	if q.TopN <= 0 {
		q.TopN = s.defaultTopN
	}

	timer := util.StartTimer()
	out := e.Recommend(q)
	entry := logrus.WithFields(logrus.Fields{
		"engine":     e.Name(),
		"gender":     q.Gender,
		"time_usage": q.TimeUsage,
		"keywords":   out.Keywords,
		"excluded":   out.Excluded,
		"results":    len(out.Results),
		"elapsed":    timer.Elapsed(),
	})
	if out.Empty() {
		entry.WithField("reason", out.Reason).Debug("no recommendation")
	} else {
		entry.Debug("recommendation served")
	}
	return out, nil
}

// RecommendFields is Recommend with the request given as separate fields.
func (s *Service) RecommendFields(engine, gender, timeUsage, description, exclusion string, topN int) (scoring.Outcome, error) {
	return s.Recommend(engine, scoring.Query{
		Gender:      gender,
		TimeUsage:   timeUsage,
		Description: description,
		Exclusion:   exclusion,
		TopN:        topN,
	})
}

// Catalog returns the catalog behind the named engine.
func (s *Service) Catalog(engine string) (*catalog.Catalog, error) {
	e, err := s.Engine(engine)
	if err != nil {
		return nil, err
	}
	return e.Catalog(), nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
