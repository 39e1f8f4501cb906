package optimize

import (
	"context"
	"testing"

	"quantlab/internal/engine"
	"quantlab/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFolds_NonOverlapping(t *testing.T) {
	folds, err := BuildFolds(100, WalkForwardConfig{TrainRatio: 0.6, Folds: 4})
	require.NoError(t, err)

	want := []types.Fold{
		{Index: 0, Train: types.Range{Start: 0, End: 15}, Test: types.Range{Start: 15, End: 25}},
		{Index: 1, Train: types.Range{Start: 25, End: 40}, Test: types.Range{Start: 40, End: 50}},
		{Index: 2, Train: types.Range{Start: 50, End: 65}, Test: types.Range{Start: 65, End: 75}},
		{Index: 3, Train: types.Range{Start: 75, End: 90}, Test: types.Range{Start: 90, End: 100}},
	}
	assert.Equal(t, want, folds)
}

func TestBuildFolds_SingleFoldDefault(t *testing.T) {
	folds, err := BuildFolds(11, DefaultWalkForwardConfig())
	require.NoError(t, err)
	require.Len(t, folds, 1)
	assert.Equal(t, types.Range{Start: 0, End: 5}, folds[0].Train)
	assert.Equal(t, types.Range{Start: 5, End: 11}, folds[0].Test)
}

func TestBuildFolds_Rolling(t *testing.T) {
	folds, err := BuildFolds(100, WalkForwardConfig{TrainRatio: 0.5, Folds: 3, Mode: WindowRolling})
	require.NoError(t, err)
	require.Len(t, folds, 3)

	assert.Equal(t, 100, folds[2].Test.End)
	for i, f := range folds {
		assert.Equal(t, f.Train.End, f.Test.Start)
		assert.Equal(t, folds[0].Train.Len(), f.Train.Len())
		if i > 0 {
			assert.Equal(t, folds[i-1].Test.End, f.Test.Start, "test ranges are contiguous")
			assert.Greater(t, f.Train.Start, folds[i-1].Train.Start)
		}
	}
}

func TestBuildFolds_Errors(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		cfg     WalkForwardConfig
		wantErr error
	}{
		{name: "zero ratio", n: 100, cfg: WalkForwardConfig{TrainRatio: 0, Folds: 1}, wantErr: engine.ErrInvalidTrainRatio},
		{name: "ratio of one", n: 100, cfg: WalkForwardConfig{TrainRatio: 1, Folds: 1}, wantErr: engine.ErrInvalidTrainRatio},
		{name: "zero folds", n: 100, cfg: WalkForwardConfig{TrainRatio: 0.5}, wantErr: engine.ErrInvalidFolds},
		{name: "unknown mode", n: 100, cfg: WalkForwardConfig{TrainRatio: 0.5, Folds: 1, Mode: "expanding"}, wantErr: engine.ErrUnknownWindowMode},
		{name: "too short for folds", n: 10, cfg: WalkForwardConfig{TrainRatio: 0.5, Folds: 5}, wantErr: engine.ErrNotEnoughCandles},
		{name: "custom min bars", n: 40, cfg: WalkForwardConfig{TrainRatio: 0.5, Folds: 2, MinBars: 20}, wantErr: engine.ErrNotEnoughCandles},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildFolds(tc.n, tc.cfg)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCheckLeaks(t *testing.T) {
	overlapping := []types.Fold{
		{Index: 0, Train: types.Range{Start: 0, End: 10}, Test: types.Range{Start: 8, End: 12}},
	}
	assert.ErrorIs(t, checkLeaks(overlapping), engine.ErrLookAheadLeak)

	testPastNextTrain := []types.Fold{
		{Index: 0, Train: types.Range{Start: 0, End: 10}, Test: types.Range{Start: 10, End: 30}},
		{Index: 1, Train: types.Range{Start: 12, End: 20}, Test: types.Range{Start: 20, End: 25}},
	}
	assert.ErrorIs(t, checkLeaks(testPastNextTrain), engine.ErrLookAheadLeak)

	ok := []types.Fold{
		{Index: 0, Train: types.Range{Start: 0, End: 10}, Test: types.Range{Start: 10, End: 15}},
		{Index: 1, Train: types.Range{Start: 5, End: 15}, Test: types.Range{Start: 15, End: 20}},
	}
	assert.NoError(t, checkLeaks(ok))
}

func TestWalkForward_Validate(t *testing.T) {
	series := waveSeries(200)
	o := newTestOptimizer(t, Config{Workers: 4})
	wf, err := NewWalkForward(o, WalkForwardConfig{TrainRatio: 0.7, Folds: 3})
	require.NoError(t, err)

	res, err := wf.Validate(context.Background(), series, windowFactory, testGrid())
	require.NoError(t, err)

	require.Len(t, res.Folds, 3)
	assert.Equal(t, "window", res.StrategyName)
	assert.Equal(t, string(WindowNonOverlapping), res.Mode)
	assert.Equal(t, 3, res.OutOfSample.Folds)

	totalTrades := 0
	var sumReturn float64
	for _, f := range res.Folds {
		require.NotNil(t, f.Test)
		assert.True(t, f.TrainEnd.Before(f.TestStart), "fold %d", f.Fold.Index)
		assert.Equal(t, series.Candles[f.Fold.Test.Start].Timestamp, f.TestStart)
		assert.Equal(t, series.Candles[f.Fold.Test.Last()].Timestamp, f.TestEnd)
		assert.Len(t, f.Test.EquityCurve, f.Fold.Test.Len())
		assert.Equal(t, f.BestParams, f.Test.Params)
		assert.Equal(t, 9, f.Candidates)
		totalTrades += f.Test.Metrics.TradeCount
		sumReturn += f.Test.Metrics.TotalReturn
	}
	assert.Equal(t, totalTrades, res.OutOfSample.TotalTrades)
	assert.InDelta(t, sumReturn/3, res.OutOfSample.TotalReturn, 1e-12)
}

func TestWalkForward_BestParamsComeFromTrainOnly(t *testing.T) {
	series := waveSeries(150)
	o := newTestOptimizer(t, Config{Workers: 2})
	wf, err := NewWalkForward(o, WalkForwardConfig{TrainRatio: 0.5, Folds: 2, Mode: WindowRolling})
	require.NoError(t, err)

	res, err := wf.Validate(context.Background(), series, windowFactory, testGrid())
	require.NoError(t, err)

	for _, f := range res.Folds {
		ranked, err := o.Search(context.Background(), series.Slice(f.Fold.Train), windowFactory, testGrid())
		require.NoError(t, err)
		assert.Equal(t, ranked[0].Params, f.BestParams)
		assert.Equal(t, ranked[0].Metrics, f.TrainMetrics)
	}
}

func TestWalkForward_Errors(t *testing.T) {
	o := newTestOptimizer(t, Config{})

	_, err := NewWalkForward(o, WalkForwardConfig{TrainRatio: 1.2, Folds: 1})
	assert.ErrorIs(t, err, engine.ErrInvalidTrainRatio)

	wf, err := NewWalkForward(o, WalkForwardConfig{TrainRatio: 0.5, Folds: 4})
	require.NoError(t, err)

	_, err = wf.Validate(context.Background(), waveSeries(12), windowFactory, testGrid())
	assert.ErrorIs(t, err, engine.ErrNotEnoughCandles)

	_, err = wf.Validate(context.Background(), waveSeries(100), windowFactory, types.ParamGrid{})
	assert.ErrorIs(t, err, engine.ErrEmptyParamGrid)

	unknown := waveSeries(100)
	unknown.Interval = "7"
	_, err = wf.Validate(context.Background(), unknown, windowFactory, testGrid())
	assert.ErrorIs(t, err, engine.ErrUnknownInterval)
}

func TestNewWalkForward_RequiresOptimizer(t *testing.T) {
	wf, err := NewWalkForward(nil, DefaultWalkForwardConfig())
	assert.Nil(t, wf)
	assert.Error(t, err)
}

func TestAggregateFolds_Empty(t *testing.T) {
	assert.Equal(t, types.AggregateMetrics{}, AggregateFolds(nil))
}
