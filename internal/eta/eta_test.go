package eta

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SainandaG/badmintion-stringing/internal/types"
)

func testStore(t *testing.T) *SampleStore {
	t.Helper()
	store, err := OpenSampleStore(filepath.Join(t.TempDir(), "eta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSampleStoreRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, Sample{DistanceKm: 5, TrafficLevel: 2, AgentScore: 4, Minutes: 18}))
	require.NoError(t, store.Add(ctx, Sample{DistanceKm: 10, TrafficLevel: 1, AgentScore: 3, Minutes: 25}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	samples, err := store.Samples(ctx)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 5.0, samples[0].DistanceKm)
	assert.Equal(t, 25.0, samples[1].Minutes)
	assert.False(t, samples[0].CreatedAt.IsZero())
}

func TestSampleStoreHealth(t *testing.T) {
	store := testStore(t)
	assert.True(t, store.Health(context.Background()).IsHealthy())
}

func TestPredictorFallbackWhenUntrained(t *testing.T) {
	p := NewPredictor(testStore(t), DefaultConfig(), nil)

	assert.False(t, p.Trained())
	// 15 km at 30 km/h is 30 minutes.
	assert.InDelta(t, 30, p.Predict(15, 2, 3), 1e-9)
}

func TestTrainRequiresMinimumSamples(t *testing.T) {
	store := testStore(t)
	p := NewPredictor(store, Config{MinSamples: 3, FallbackKmh: 30}, nil)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, Sample{DistanceKm: 5, Minutes: 10}))
	err := p.Train(ctx)
	require.Error(t, err)

	var serr *types.StringingError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, types.ETA_NOT_TRAINED, serr.Code)
	assert.False(t, p.Trained())
}

func TestTrainRecoversLinearRelationship(t *testing.T) {
	store := testStore(t)
	p := NewPredictor(store, Config{MinSamples: 4, FallbackKmh: 30}, nil)
	ctx := context.Background()

	// minutes = 5 + 2*distance + 3*traffic - 1*score, exactly.
	gen := func(d, tr, sc float64) Sample {
		return Sample{
			DistanceKm:   d,
			TrafficLevel: tr,
			AgentScore:   sc,
			Minutes:      5 + 2*d + 3*tr - sc,
		}
	}
	for _, s := range []Sample{
		gen(1, 1, 1), gen(2, 3, 1), gen(5, 2, 4),
		gen(8, 1, 2), gen(12, 4, 5), gen(3, 2, 3),
	} {
		require.NoError(t, store.Add(ctx, s))
	}

	require.NoError(t, p.Train(ctx))
	require.True(t, p.Trained())

	assert.InDelta(t, 5+2*6+3*2-3, p.Predict(6, 2, 3), 0.01)
	assert.InDelta(t, 5+2*20+3*5-1, p.Predict(20, 5, 1), 0.01)
}

func TestTrainSingularMatrixKeepsFallback(t *testing.T) {
	store := testStore(t)
	p := NewPredictor(store, Config{MinSamples: 3, FallbackKmh: 30}, nil)
	ctx := context.Background()

	// All features identical: X'X is singular.
	for i := 0; i < 4; i++ {
		require.NoError(t, store.Add(ctx, Sample{DistanceKm: 5, TrafficLevel: 2, AgentScore: 3, Minutes: 20}))
	}

	err := p.Train(ctx)
	require.Error(t, err)
	assert.False(t, p.Trained())
	assert.InDelta(t, 10, p.Predict(5, 2, 3), 1e-9)
}

func TestRecordTrainsOnceThresholdReached(t *testing.T) {
	store := testStore(t)
	p := NewPredictor(store, Config{MinSamples: 3, FallbackKmh: 30}, nil)
	ctx := context.Background()

	// Below the threshold Record succeeds without training.
	require.NoError(t, p.Record(ctx, Sample{DistanceKm: 2, TrafficLevel: 1, AgentScore: 1, Minutes: 6}))
	assert.False(t, p.Trained())

	require.NoError(t, p.Record(ctx, Sample{DistanceKm: 4, TrafficLevel: 2, AgentScore: 3, Minutes: 11}))
	require.NoError(t, p.Record(ctx, Sample{DistanceKm: 9, TrafficLevel: 3, AgentScore: 2, Minutes: 24}))
	require.NoError(t, p.Record(ctx, Sample{DistanceKm: 6, TrafficLevel: 1, AgentScore: 5, Minutes: 14}))
	assert.True(t, p.Trained())
}

func TestPredictClampsNegativeToFallback(t *testing.T) {
	store := testStore(t)
	p := NewPredictor(store, Config{MinSamples: 2, FallbackKmh: 30}, nil)
	ctx := context.Background()

	// minutes = -5 + 0.5*distance: predictions go negative below 10 km.
	require.NoError(t, store.Add(ctx, Sample{DistanceKm: 20, TrafficLevel: 1, AgentScore: 1, Minutes: 5}))
	require.NoError(t, store.Add(ctx, Sample{DistanceKm: 30, TrafficLevel: 2, AgentScore: 0, Minutes: 10}))
	require.NoError(t, store.Add(ctx, Sample{DistanceKm: 40, TrafficLevel: 0, AgentScore: 2, Minutes: 15}))
	require.NoError(t, store.Add(ctx, Sample{DistanceKm: 50, TrafficLevel: 3, AgentScore: 1, Minutes: 20}))

	require.NoError(t, p.Train(ctx))

	// 1 km at the 30 km/h fallback speed is 2 minutes.
	assert.InDelta(t, 2, p.Predict(1, 0, 0), 0.01)
}
