package listing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Dr-Musa/najah-realestate/internal/common/logger"
	"github.com/Dr-Musa/najah-realestate/internal/common/metrics"
	"github.com/Dr-Musa/najah-realestate/internal/models"
)

// Searcher performs the single outbound provider call of a run.
type Searcher interface {
	Search(ctx context.Context, prompt Prompt) ([]models.RawFragment, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, prompt Prompt) ([]models.RawFragment, error)

func (f SearcherFunc) Search(ctx context.Context, prompt Prompt) ([]models.RawFragment, error) {
	return f(ctx, prompt)
}

// Result describes one pipeline run. Listings is deduplicated and ranked.
type Result struct {
	RunID       string
	Query       string
	Mode        SearchMode
	Listings    []models.Listing
	Fragments   int
	Skipped     int
	Dropped     int
	Duplicates  int
	ProviderErr error
	Duration    time.Duration
}

type Pipeline struct {
	searcher  Searcher
	extractor *Extractor
	logger    logger.Logger
	now       func() time.Time
}

func NewPipeline(searcher Searcher, extractor *Extractor, log logger.Logger) *Pipeline {
	if extractor == nil {
		extractor = NewExtractor(nil)
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Pipeline{
		searcher:  searcher,
		extractor: extractor,
		logger:    log.With(map[string]interface{}{"component": "listing-pipeline"}),
		now:       time.Now,
	}
}

// Run executes one search. A provider failure never surfaces as an error:
// it is logged, recorded on the result and yields an empty listing batch.
func (p *Pipeline) Run(ctx context.Context, query string) (res Result) {
	start := p.now()
	intent := ParseIntent(query)
	res = Result{
		RunID:    uuid.New().String(),
		Query:    query,
		Mode:     intent.Mode,
		Listings: []models.Listing{},
	}
	log := p.logger.With(map[string]interface{}{
		"run_id": res.RunID,
		"mode":   intent.Mode.String(),
	})

	defer func() {
		res.Duration = p.now().Sub(start)
		metrics.SearchDuration.WithLabelValues(intent.Mode.String()).Observe(res.Duration.Seconds())
	}()

	fragments, err := p.searcher.Search(ctx, BuildPrompt(query, intent.Mode))
	if err != nil {
		res.ProviderErr = err
		metrics.SearchRuns.WithLabelValues(intent.Mode.String(), "provider_error").Inc()
		log.Warn("Search provider failed, returning empty result", map[string]interface{}{
			"error": err.Error(),
		})
		return res
	}

	res.Fragments = len(fragments)
	metrics.FragmentsReceived.Add(float64(len(fragments)))

	scored := make([]models.Listing, 0, len(fragments))
	for _, f := range fragments {
		if strings.TrimSpace(f.URI) == "" {
			res.Skipped++
			metrics.FragmentsDropped.WithLabelValues("no_uri").Inc()
			continue
		}

		draft, ok := p.extractor.Extract(f, intent)
		if !ok {
			res.Dropped++
			metrics.FragmentsDropped.WithLabelValues("phone_mismatch").Inc()
			log.Debug("Dropped fragment with mismatched phone", map[string]interface{}{
				"uri": f.URI,
			})
			continue
		}

		l := draft.Listing
		l.TrustScore = Score(draft, intent)
		l.TrustLevel, _ = TrustLevel(l.TrustScore)
		scored = append(scored, l)
	}

	unique := Dedupe(scored)
	res.Duplicates = len(scored) - len(unique)
	if res.Duplicates > 0 {
		metrics.FragmentsDropped.WithLabelValues("duplicate").Add(float64(res.Duplicates))
	}

	res.Listings = Rank(unique)
	for _, l := range res.Listings {
		metrics.TrustScores.WithLabelValues(string(l.Source)).Observe(float64(l.TrustScore))
	}
	metrics.ListingsReturned.Observe(float64(len(res.Listings)))
	metrics.SearchRuns.WithLabelValues(intent.Mode.String(), "ok").Inc()

	log.Info("Search run completed", map[string]interface{}{
		"fragments":  res.Fragments,
		"listings":   len(res.Listings),
		"dropped":    res.Dropped,
		"duplicates": res.Duplicates,
	})
	return res
}
