package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"coglab/domain/core"
	"coglab/domain/trial"
)

func TestOutcomeStore_RecordAndList(t *testing.T) {
	store := NewOutcomeStore()
	ctx := context.Background()
	runA := core.RunID("run-a")
	runB := core.RunID("run-b")

	for i := 0; i < 3; i++ {
		err := store.Record(ctx, trial.TrialOutcome{RunID: runA, Index: i, Response: "r", Correct: true, LatencyMS: 500})
		assert.NoError(t, err)
	}
	assert.NoError(t, store.Record(ctx, trial.TrialOutcome{RunID: runB, Index: 0, Response: trial.ResponseNone}))

	outcomesA, err := store.ListByRun(ctx, runA)
	assert.NoError(t, err)
	assert.Len(t, outcomesA, 3)
	for i, o := range outcomesA {
		assert.Equal(t, i, o.Index)
	}

	outcomesB, err := store.ListByRun(ctx, runB)
	assert.NoError(t, err)
	assert.Len(t, outcomesB, 1)

	missing, err := store.ListByRun(ctx, core.RunID("missing"))
	assert.NoError(t, err)
	assert.Empty(t, missing)
}

func TestOutcomeStore_ListReturnsCopy(t *testing.T) {
	store := NewOutcomeStore()
	ctx := context.Background()
	runID := core.RunID("run")

	assert.NoError(t, store.Record(ctx, trial.TrialOutcome{RunID: runID, Response: "r"}))

	first, _ := store.ListByRun(ctx, runID)
	first[0].Response = "mutated"

	second, _ := store.ListByRun(ctx, runID)
	assert.Equal(t, "r", second[0].Response)
}
