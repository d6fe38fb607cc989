package eta

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"

	"github.com/SainandaG/badmintion-stringing/internal/types"
)

// Config contains predictor settings.
type Config struct {
	// MinSamples is the training threshold; below it the predictor stays in
	// fallback mode.
	MinSamples int
	// FallbackKmh is the assumed average speed when untrained.
	FallbackKmh float64
}

// DefaultConfig returns the default predictor settings.
func DefaultConfig() Config {
	return Config{
		MinSamples:  5,
		FallbackKmh: 30,
	}
}

// Predictor estimates trip duration in minutes from distance, a traffic
// level, and an agent performance score, using ordinary least squares over
// recorded trips. Until enough samples exist it falls back to a flat
// distance/speed estimate.
type Predictor struct {
	store  *SampleStore
	cfg    Config
	logger *slog.Logger

	mu      sync.RWMutex
	weights []float64 // intercept, distance, traffic, score
	trained bool
}

// NewPredictor creates a predictor backed by the given sample store.
func NewPredictor(store *SampleStore, cfg Config, logger *slog.Logger) *Predictor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinSamples < 2 {
		cfg.MinSamples = DefaultConfig().MinSamples
	}
	if cfg.FallbackKmh <= 0 {
		cfg.FallbackKmh = DefaultConfig().FallbackKmh
	}

	return &Predictor{
		store:  store,
		cfg:    cfg,
		logger: logger.With("component", "eta.predictor"),
	}
}

// Trained reports whether a model has been fitted.
func (p *Predictor) Trained() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.trained
}

// Train refits the model from all stored samples. With fewer than
// MinSamples observations the predictor returns to fallback mode and an
// ETA_NOT_TRAINED error is returned.
func (p *Predictor) Train(ctx context.Context) error {
	samples, err := p.store.Samples(ctx)
	if err != nil {
		return err
	}

	if len(samples) < p.cfg.MinSamples {
		p.mu.Lock()
		p.trained = false
		p.mu.Unlock()
		return types.NewError(types.ETA_NOT_TRAINED,
			"not enough samples to fit a model")
	}

	weights, ok := fitOLS(samples)
	if !ok {
		p.mu.Lock()
		p.trained = false
		p.mu.Unlock()
		return types.NewError(types.ETA_NOT_TRAINED,
			"sample matrix is singular, keeping fallback estimator")
	}

	p.mu.Lock()
	p.weights = weights
	p.trained = true
	p.mu.Unlock()

	p.logger.Info("eta model trained",
		"samples", len(samples),
		"intercept", weights[0],
		"distance_coef", weights[1])
	return nil
}

// Record stores a completed trip and refits the model. Training failure
// under the sample threshold is expected and not reported as an error.
func (p *Predictor) Record(ctx context.Context, sample Sample) error {
	if err := p.store.Add(ctx, sample); err != nil {
		return err
	}

	if err := p.Train(ctx); err != nil {
		var serr *types.StringingError
		if errors.As(err, &serr) && serr.Code == types.ETA_NOT_TRAINED {
			return nil
		}
		return err
	}
	return nil
}

// Predict estimates trip minutes. Negative model outputs clamp to the
// fallback estimate.
func (p *Predictor) Predict(distanceKm, trafficLevel, agentScore float64) float64 {
	p.mu.RLock()
	trained := p.trained
	weights := p.weights
	p.mu.RUnlock()

	fallback := distanceKm / p.cfg.FallbackKmh * 60

	if !trained {
		return fallback
	}

	minutes := weights[0] + weights[1]*distanceKm + weights[2]*trafficLevel + weights[3]*agentScore
	if minutes <= 0 || math.IsNaN(minutes) {
		return fallback
	}
	return minutes
}

// fitOLS solves the normal equations for minutes ~ 1 + distance + traffic +
// score. Returns ok=false when the system is singular (e.g. constant
// features).
func fitOLS(samples []Sample) ([]float64, bool) {
	const dims = 4

	// Accumulate X'X and X'y.
	var xtx [dims][dims]float64
	var xty [dims]float64
	for _, s := range samples {
		row := [dims]float64{1, s.DistanceKm, s.TrafficLevel, s.AgentScore}
		for i := 0; i < dims; i++ {
			for j := 0; j < dims; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] * s.Minutes
		}
	}

	// Gaussian elimination with partial pivoting.
	var a [dims][dims + 1]float64
	for i := 0; i < dims; i++ {
		copy(a[i][:dims], xtx[i][:])
		a[i][dims] = xty[i]
	}

	for col := 0; col < dims; col++ {
		pivot := col
		for r := col + 1; r < dims; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-10 {
			return nil, false
		}
		a[col], a[pivot] = a[pivot], a[col]

		for r := 0; r < dims; r++ {
			if r == col {
				continue
			}
			factor := a[r][col] / a[col][col]
			for c := col; c <= dims; c++ {
				a[r][c] -= factor * a[col][c]
			}
		}
	}

	weights := make([]float64, dims)
	for i := 0; i < dims; i++ {
		weights[i] = a[i][dims] / a[i][i]
	}
	return weights, true
}
