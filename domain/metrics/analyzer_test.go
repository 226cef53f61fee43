package metrics

import (
	"math"
	"reflect"
	"testing"

	"coglab/domain/core"
	"coglab/domain/trial"
)

func outcome(cond trial.Condition, latency core.Millis, correct bool) trial.TrialOutcome {
	resp := "r"
	if !correct {
		resp = trial.ResponseNone
	}
	return trial.TrialOutcome{
		Condition: cond,
		Response:  resp,
		Correct:   correct,
		LatencyMS: latency,
	}
}

func TestAnalyze_EmptyOutcomes(t *testing.T) {
	analyzer := NewAnalyzer(DefaultAnalyzerConfig())
	result := analyzer.Analyze(nil)

	if result.SampleCount != 0 || result.MeanRT != 0 || result.Accuracy != 0 {
		t.Errorf("expected zeroed result, got %+v", result)
	}
	if result.QualityScore != 0 {
		t.Errorf("expected quality 0 for no data, got %d", result.QualityScore)
	}
	if result.Contrast != nil {
		t.Errorf("expected no contrast for empty input, got %+v", result.Contrast)
	}
}

func TestAnalyze_SmallSampleScenario(t *testing.T) {
	// Three outcomes: 250ms correct, 260ms correct, 5000ms timeout.
	analyzer := NewAnalyzer(DefaultAnalyzerConfig())
	outcomes := []trial.TrialOutcome{
		outcome(trial.ConditionCongruent, 250, true),
		outcome(trial.ConditionCongruent, 260, true),
		outcome(trial.ConditionCongruent, 5000, false),
	}

	result := analyzer.Analyze(outcomes)

	if math.Abs(result.MeanRT-1836.6667) > 0.01 {
		t.Errorf("mean RT = %.4f, want 1836.6667", result.MeanRT)
	}
	if result.MedianRT != 260 {
		t.Errorf("median RT = %.1f, want 260", result.MedianRT)
	}
	if math.Abs(result.Accuracy-2.0/3.0) > 1e-9 {
		t.Errorf("accuracy = %.4f, want 0.6667", result.Accuracy)
	}
	// With n=3 no point can deviate more than sqrt(2) population sigmas
	// from the mean, so the strict 3-sigma rule flags nothing here even
	// though 5000ms is visibly extreme.
	if result.OutlierCount != 0 {
		t.Errorf("outlier count = %d, want 0 under the 3-sigma rule", result.OutlierCount)
	}
	// Deductions: accuracy below 0.70 (-30) and sample below 20 (-30).
	if result.QualityScore != 40 {
		t.Errorf("quality score = %d, want 40", result.QualityScore)
	}
}

func TestAnalyze_OutlierDetection(t *testing.T) {
	analyzer := NewAnalyzer(DefaultAnalyzerConfig())
	outcomes := make([]trial.TrialOutcome, 0, 21)
	for i := 0; i < 20; i++ {
		outcomes = append(outcomes, outcome(trial.ConditionCongruent, 500, true))
	}
	outcomes = append(outcomes, outcome(trial.ConditionCongruent, 10000, true))

	result := analyzer.Analyze(outcomes)
	if result.OutlierCount != 1 {
		t.Errorf("outlier count = %d, want 1", result.OutlierCount)
	}
	// Outliers are flagged, not removed: the mean still reflects the
	// full sample.
	if result.MeanRT <= 500 {
		t.Errorf("mean RT = %.1f should include the extreme sample", result.MeanRT)
	}
	if result.SampleCount != 21 {
		t.Errorf("sample count = %d, want 21", result.SampleCount)
	}
}

func TestAnalyze_ContrastAbsentForSingleCondition(t *testing.T) {
	analyzer := NewAnalyzer(DefaultAnalyzerConfig())
	outcomes := []trial.TrialOutcome{
		outcome(trial.ConditionCongruent, 400, true),
		outcome(trial.ConditionCongruent, 450, true),
	}

	result := analyzer.Analyze(outcomes)
	if result.Contrast != nil {
		t.Errorf("expected absent contrast when only one condition is represented, got %+v", result.Contrast)
	}
}

func TestAnalyze_ContrastEffect(t *testing.T) {
	analyzer := NewAnalyzer(DefaultAnalyzerConfig())
	outcomes := []trial.TrialOutcome{
		outcome(trial.ConditionCongruent, 500, true),
		outcome(trial.ConditionCongruent, 520, true),
		outcome(trial.ConditionIncongruent, 600, true),
		outcome(trial.ConditionIncongruent, 640, true),
		outcome(trial.ConditionNeutral, 550, true),
	}

	result := analyzer.Analyze(outcomes)
	if result.Contrast == nil {
		t.Fatal("expected contrast effect, got nil")
	}
	c := result.Contrast
	if c.ConditionA != trial.ConditionCongruent || c.ConditionB != trial.ConditionIncongruent {
		t.Errorf("contrast pair = (%s, %s), want (congruent, incongruent)", c.ConditionA, c.ConditionB)
	}
	if math.Abs(c.DeltaMS-110) > 1e-9 {
		t.Errorf("delta = %.1f, want 110 (620 - 510)", c.DeltaMS)
	}
	if c.CountA != 2 || c.CountB != 2 {
		t.Errorf("group counts = (%d, %d), want (2, 2)", c.CountA, c.CountB)
	}
	if c.PValue <= 0 || c.PValue > 1 {
		t.Errorf("p-value = %f outside (0, 1]", c.PValue)
	}
	if c.TStat <= 0 {
		t.Errorf("t statistic = %f, want positive for slower incongruent group", c.TStat)
	}
}

func TestAnalyze_QualityDeductions(t *testing.T) {
	cases := []struct {
		name      string
		outcomes  func() []trial.TrialOutcome
		wantScore int
	}{
		{
			// 20 fast trials: mean below plausible window (-20).
			name: "implausibly fast mean",
			outcomes: func() []trial.TrialOutcome {
				out := make([]trial.TrialOutcome, 0, 20)
				for i := 0; i < 20; i++ {
					out = append(out, outcome(trial.ConditionCongruent, 100, true))
				}
				return out
			},
			wantScore: 80,
		},
		{
			// 20 clean trials: no deductions at all.
			name: "clean run",
			outcomes: func() []trial.TrialOutcome {
				out := make([]trial.TrialOutcome, 0, 20)
				for i := 0; i < 20; i++ {
					out = append(out, outcome(trial.ConditionCongruent, 600, true))
				}
				return out
			},
			wantScore: 100,
		},
		{
			// Low accuracy, implausibly fast mean, and a small sample
			// stack to 100-30-20-30.
			name: "stacked deductions",
			outcomes: func() []trial.TrialOutcome {
				out := make([]trial.TrialOutcome, 0, 10)
				for i := 0; i < 10; i++ {
					out = append(out, outcome(trial.ConditionCongruent, 100, false))
				}
				return out
			},
			wantScore: 20,
		},
	}

	analyzer := NewAnalyzer(DefaultAnalyzerConfig())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := analyzer.Analyze(tc.outcomes())
			if result.QualityScore != tc.wantScore {
				t.Errorf("quality score = %d, want %d", result.QualityScore, tc.wantScore)
			}
		})
	}
}

func TestAnalyze_IdempotentAcrossCalls(t *testing.T) {
	analyzer := NewAnalyzer(DefaultAnalyzerConfig())
	outcomes := []trial.TrialOutcome{
		outcome(trial.ConditionCongruent, 480, true),
		outcome(trial.ConditionIncongruent, 610, true),
		outcome(trial.ConditionIncongruent, 700, false),
	}

	first := analyzer.Analyze(outcomes)
	second := analyzer.Analyze(outcomes)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated analysis differs:\n%+v\n%+v", first, second)
	}
}
