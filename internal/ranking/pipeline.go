// Package ranking turns prop lines into ranked, analyzed props.
package ranking

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/yourusername/prop-analyzer/internal/config"
	"github.com/yourusername/prop-analyzer/internal/estimator"
	"github.com/yourusername/prop-analyzer/internal/features"
	"github.com/yourusername/prop-analyzer/internal/logger"
	"github.com/yourusername/prop-analyzer/internal/metrics"
	"github.com/yourusername/prop-analyzer/internal/models"
	"github.com/yourusername/prop-analyzer/internal/scoring"
	"github.com/yourusername/prop-analyzer/internal/stats"
)

// DefaultMinGames is the fewest played games a prop needs to be analyzed
const DefaultMinGames = 5

// Options controls estimation and ordering
type Options struct {
	Strategy      models.Strategy
	RankBy        models.RankBy
	MinGames      int
	RecencyWindow int
	MovingWindow  int
	TableStep     float64
	Workers       int
	Logistic      estimator.LogisticOptions
}

// DefaultOptions returns the KDE strategy ranked by probability over the line
func DefaultOptions() Options {
	return Options{
		Strategy:      models.StrategyKDE,
		RankBy:        models.RankByProbability,
		MinGames:      DefaultMinGames,
		RecencyWindow: estimator.DefaultRecencyWindow,
		MovingWindow:  features.DefaultMovingWindow,
		TableStep:     estimator.DefaultTableStep,
		Workers:       1,
		Logistic:      estimator.DefaultLogisticOptions(),
	}
}

// OptionsFromConfig maps the analysis section onto pipeline options
func OptionsFromConfig(cfg config.AnalysisConfig) Options {
	opts := DefaultOptions()
	if cfg.Strategy != "" {
		opts.Strategy = models.Strategy(cfg.Strategy)
	}
	if cfg.RankBy != "" {
		opts.RankBy = models.RankBy(cfg.RankBy)
	}
	if cfg.MinGames > 0 {
		opts.MinGames = cfg.MinGames
	}
	if cfg.RecencyWindow > 0 {
		opts.RecencyWindow = cfg.RecencyWindow
	}
	if cfg.MovingWindow > 0 {
		opts.MovingWindow = cfg.MovingWindow
	}
	if cfg.TableStep > 0 {
		opts.TableStep = cfg.TableStep
	}
	if cfg.Workers > 0 {
		opts.Workers = cfg.Workers
	}
	return opts
}

// Report is the outcome of one pipeline run
type Report struct {
	Run     models.AnalysisRun    `json:"run"`
	Props   []models.AnalyzedProp `json:"props"`
	Skipped []models.Skip         `json:"skipped"`
}

// Pipeline analyzes and ranks props against a stats store
type Pipeline struct {
	opts   Options
	cache  *estimator.ModelCache
	logger *logger.AnalysisLogger
}

// NewPipeline creates a pipeline. A nil cache fits every model afresh.
func NewPipeline(opts Options, mc *estimator.ModelCache, log *logger.AnalysisLogger) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Strategy == "" {
		opts.Strategy = models.StrategyKDE
	}
	if opts.RankBy == "" {
		opts.RankBy = models.RankByProbability
	}
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = logger.NewAnalysisLogger(discard)
	}
	return &Pipeline{
		opts:   opts,
		cache:  mc,
		logger: log,
	}
}

// Options returns the effective options
func (p *Pipeline) Options() Options {
	return p.opts
}

// outcome is the per-prop result slot written by exactly one worker
type outcome struct {
	analyzed models.AnalyzedProp
	err      error
}

// Run analyzes every prop and returns them ranked. A prop that cannot be
// analyzed becomes a Skip and never aborts the run; only cancellation of ctx
// does.
func (p *Pipeline) Run(ctx context.Context, store *stats.Store, props []models.PropLine) (*Report, error) {
	started := time.Now()
	datasets := newDatasetMemo(store, p.opts.MovingWindow)

	results := make([]outcome, len(props))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i := range props {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ap, err := p.analyze(store, props[i], datasets)
			results[i] = outcome{analyzed: ap, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis run cancelled: %w", err)
	}

	report := &Report{
		Props:   make([]models.AnalyzedProp, 0, len(props)),
		Skipped: make([]models.Skip, 0),
	}
	for i, res := range results {
		prop := props[i]
		if res.err != nil {
			reason := models.ReasonFor(res.err)
			report.Skipped = append(report.Skipped, models.Skip{Prop: prop, Reason: reason, Detail: res.err.Error()})
			metrics.RecordPropSkipped(string(reason))
			p.logger.LogPropSkipped(prop.PlayerName, prop.StatType, prop.Line, string(reason), res.err)
			continue
		}
		report.Props = append(report.Props, res.analyzed)
		metrics.RecordPropAnalyzed()
		p.logger.LogPropAnalyzed(prop.PlayerName, prop.StatType, prop.Line,
			res.analyzed.ProbabilityOverLine, res.analyzed.Score, res.analyzed.Analysis.GamesPlayed)
	}

	Rank(report.Props, p.opts.RankBy)

	finished := time.Now()
	report.Run = models.AnalysisRun{
		ID:           uuid.New(),
		Strategy:     p.opts.Strategy,
		RankBy:       p.opts.RankBy,
		PropsInput:   len(props),
		PropsRanked:  len(report.Props),
		PropsSkipped: len(report.Skipped),
		StartedAt:    started.UTC(),
		FinishedAt:   finished.UTC(),
	}

	metrics.RecordPipelineRun(finished.Sub(started).Seconds(), len(report.Props), float64(finished.Unix()))
	p.logger.LogRunCompleted(report.Run.ID.String(), len(props), len(report.Props), len(report.Skipped), finished.Sub(started))
	return report, nil
}

// Rank orders props descending by the chosen key, keeping input order among
// ties, and numbers them from 1.
func Rank(props []models.AnalyzedProp, by models.RankBy) {
	key := func(ap *models.AnalyzedProp) float64 { return ap.ProbabilityOverLine }
	if by == models.RankByScore {
		key = func(ap *models.AnalyzedProp) float64 { return ap.Score }
	}

	sort.SliceStable(props, func(i, j int) bool {
		return key(&props[i]) > key(&props[j])
	})
	for i := range props {
		props[i].Rank = i + 1
	}
}

// analyze runs one prop end to end
func (p *Pipeline) analyze(store *stats.Store, prop models.PropLine, datasets *datasetMemo) (models.AnalyzedProp, error) {
	ps, err := store.Series(prop.PlayerName)
	if err != nil {
		return models.AnalyzedProp{}, err
	}

	st, err := models.ParseStatType(prop.StatType)
	if err != nil {
		return models.AnalyzedProp{}, err
	}

	if played := ps.GamesPlayed(); played < p.opts.MinGames {
		return models.AnalyzedProp{}, fmt.Errorf("%w: %d games played, need %d", models.ErrInsufficientData, played, p.opts.MinGames)
	}

	summary, err := scoring.Analyze(ps, st, prop.Line)
	if err != nil {
		return models.AnalyzedProp{}, err
	}

	ap := models.AnalyzedProp{
		Prop:     prop,
		StatType: st,
		Analysis: summary,
		Score:    scoring.Score(summary),
		Strategy: p.opts.Strategy,
	}

	switch p.opts.Strategy {
	case models.StrategyLogistic:
		clf := p.classifier(ps, st, datasets)
		m, err := p.logisticModel(clf, st, prop.Line)
		if err != nil {
			return models.AnalyzedProp{}, err
		}
		info := m.Info()
		ap.ProbabilityOverLine = m.Predict(clf.Next())
		ap.KeyProbabilities = estimator.KeyProbabilities(clf, prop.Line)
		ap.ModelInfo = &info
	default:
		kde, err := p.kdeModel(ps, st)
		if err != nil {
			return models.AnalyzedProp{}, err
		}
		ap.ProbabilityOverLine = kde.ProbabilityOver(prop.Line)
		ap.KeyProbabilities = estimator.KeyProbabilities(kde, prop.Line)
		ap.ProbabilityTable = kde.Table(p.opts.TableStep)
	}

	return ap, nil
}

// Table returns the probability table of one player and stat label under the
// configured strategy
func (p *Pipeline) Table(store *stats.Store, player, statLabel string) ([]models.ProbabilityPoint, error) {
	ps, err := store.Series(player)
	if err != nil {
		return nil, err
	}
	st, err := models.ParseStatType(statLabel)
	if err != nil {
		return nil, err
	}

	if p.opts.Strategy == models.StrategyLogistic {
		values, _ := ps.Values(st)
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: no played games for %s", models.ErrInsufficientData, player)
		}
		clf := p.classifier(ps, st, newDatasetMemo(store, p.opts.MovingWindow))
		return estimator.Table(clf, floats.Max(values), p.opts.TableStep), nil
	}

	kde, err := p.kdeModel(ps, st)
	if err != nil {
		return nil, err
	}
	return kde.Table(p.opts.TableStep), nil
}

// kdeModel fits or reuses the density model of one player and stat
func (p *Pipeline) kdeModel(ps *stats.PlayerStatSeries, st models.StatType) (*estimator.KDEModel, error) {
	key := estimator.ModelKey{Player: ps.Name, Stat: st, Strategy: models.StrategyKDE, Snapshot: ps.Fingerprint()}
	fit := func() (estimator.Fitted, error) {
		start := time.Now()
		values, minutes := ps.Values(st)
		m, err := estimator.FitKDE(values, minutes, p.opts.RecencyWindow)
		if err != nil {
			return nil, err
		}
		metrics.RecordModelFit(string(models.StrategyKDE), time.Since(start).Seconds())
		p.logger.LogModelFitted(key.String(), string(models.StrategyKDE), false, time.Since(start))
		return m, nil
	}

	if p.cache == nil {
		m, err := fit()
		if err != nil {
			return nil, err
		}
		return m.(*estimator.KDEModel), nil
	}

	m, hit, err := p.cache.GetOrFit(key, fit)
	if err != nil {
		return nil, err
	}
	if hit {
		metrics.RecordModelCacheHit()
		p.logger.LogModelFitted(key.String(), string(models.StrategyKDE), true, 0)
	}
	return m.(*estimator.KDEModel), nil
}

func (p *Pipeline) classifier(ps *stats.PlayerStatSeries, st models.StatType, datasets *datasetMemo) *estimator.Classifier {
	next := features.Build(ps, st, p.opts.MovingWindow).Next
	return estimator.NewClassifier(st, datasets.rows(st), datasets.store.Fingerprint(), next, p.cache, p.opts.Logistic)
}

// logisticModel returns the classifier model for the prop's own line
func (p *Pipeline) logisticModel(clf *estimator.Classifier, st models.StatType, line float64) (*estimator.LogisticModel, error) {
	start := time.Now()
	m, hit, err := clf.ModelFor(line)
	if err != nil {
		return nil, err
	}

	key := estimator.ModelKey{Stat: st, Strategy: models.StrategyLogistic, Threshold: line}
	if hit {
		metrics.RecordModelCacheHit()
	} else {
		metrics.RecordModelFit(string(models.StrategyLogistic), time.Since(start).Seconds())
	}
	p.logger.LogModelFitted(key.String(), string(models.StrategyLogistic), hit, time.Since(start))
	return m, nil
}

// datasetMemo builds each stat's cross-player training rows at most once per run
type datasetMemo struct {
	store  *stats.Store
	window int

	mu      sync.Mutex
	entries map[models.StatType]*datasetEntry
}

type datasetEntry struct {
	once sync.Once
	rows []features.Row
}

func newDatasetMemo(store *stats.Store, window int) *datasetMemo {
	return &datasetMemo{
		store:   store,
		window:  window,
		entries: make(map[models.StatType]*datasetEntry),
	}
}

func (d *datasetMemo) rows(st models.StatType) []features.Row {
	d.mu.Lock()
	entry, ok := d.entries[st]
	if !ok {
		entry = &datasetEntry{}
		d.entries[st] = entry
	}
	d.mu.Unlock()

	entry.once.Do(func() {
		entry.rows = features.Dataset(d.store, st, d.window)
	})
	return entry.rows
}

