package metrics

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"coglab/domain/trial"
)

// ContrastEffect is the condition-contrast summary for a designated pair
// of conditions. Present on an AnalysisResult only when both conditions
// have at least one outcome.
type ContrastEffect struct {
	ConditionA trial.Condition `json:"condition_a"`
	ConditionB trial.Condition `json:"condition_b"`
	MeanA      float64         `json:"mean_a_ms"`
	MeanB      float64         `json:"mean_b_ms"`
	CountA     int             `json:"count_a"`
	CountB     int             `json:"count_b"`
	// DeltaMS is mean(B) - mean(A), e.g. incongruent minus congruent.
	DeltaMS float64 `json:"delta_ms"`
	// TStat and PValue come from Welch's unequal-variance t-test.
	// PValue is 1.0 when either group is too small to test.
	TStat  float64 `json:"t_stat"`
	PValue float64 `json:"p_value"`
}

// AnalysisResult is a derived, read-only snapshot computed from a
// complete or partial outcome sequence. Recomputed on demand.
type AnalysisResult struct {
	SampleCount  int             `json:"sample_count"`
	MeanRT       float64         `json:"mean_rt_ms"`
	MedianRT     float64         `json:"median_rt_ms"`
	Accuracy     float64         `json:"accuracy"`
	Contrast     *ContrastEffect `json:"contrast,omitempty"`
	OutlierCount int             `json:"outlier_count"`
	QualityScore int             `json:"quality_score"`
}

// AnalyzerConfig carries the quality-score thresholds and the designated
// contrast pair.
type AnalyzerConfig struct {
	// ContrastA/ContrastB designate the contrast pair; the effect is
	// mean(B) - mean(A).
	ContrastA trial.Condition
	ContrastB trial.Condition
	// Plausible mean RT window in milliseconds.
	PlausibleRTMin float64
	PlausibleRTMax float64
	// OutlierSigma is the deviation threshold in population standard
	// deviations.
	OutlierSigma float64
	// MaxOutlierFraction is the tolerated share of outlier trials.
	MaxOutlierFraction float64
	// MinSampleSize is the smallest run considered adequately powered.
	MinSampleSize int
}

// DefaultAnalyzerConfig returns the standard thresholds for an
// interference design.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		ContrastA:          trial.ConditionCongruent,
		ContrastB:          trial.ConditionIncongruent,
		PlausibleRTMin:     300,
		PlausibleRTMax:     2000,
		OutlierSigma:       3.0,
		MaxOutlierFraction: 0.10,
		MinSampleSize:      20,
	}
}

// Analyzer computes AnalysisResults from outcome sequences. Stateless;
// safe for concurrent use.
type Analyzer struct {
	cfg AnalyzerConfig
}

// NewAnalyzer creates an analyzer with the given thresholds.
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze computes summary statistics over the outcome sequence.
// Empty input is not an error: it yields a zeroed result with quality 0.
// Timeout outcomes are included in the latency statistics (they carry
// the response window as their recorded latency); outliers are counted
// but never removed from the other statistics, so raw exports and the
// summary always describe the same sample.
func (a *Analyzer) Analyze(outcomes []trial.TrialOutcome) AnalysisResult {
	n := len(outcomes)
	if n == 0 {
		return AnalysisResult{}
	}

	latencies := make([]float64, 0, n)
	correct := 0
	byCondition := make(map[trial.Condition][]float64)
	for _, o := range outcomes {
		l := float64(o.LatencyMS)
		latencies = append(latencies, l)
		byCondition[o.Condition] = append(byCondition[o.Condition], l)
		if o.Correct {
			correct++
		}
	}

	mean, _ := stats.Mean(latencies)
	median, _ := stats.Median(latencies)
	// Population (not sample) deviation: the run is the whole population
	// of interest for outlier flagging.
	stddev, _ := stats.StandardDeviationPopulation(latencies)

	outliers := 0
	if stddev > 0 {
		for _, l := range latencies {
			if math.Abs(l-mean) > a.cfg.OutlierSigma*stddev {
				outliers++
			}
		}
	}

	result := AnalysisResult{
		SampleCount:  n,
		MeanRT:       mean,
		MedianRT:     median,
		Accuracy:     float64(correct) / float64(n),
		OutlierCount: outliers,
	}
	result.Contrast = a.contrast(byCondition)
	result.QualityScore = a.qualityScore(result)
	return result
}

// contrast computes the designated condition-contrast effect, or nil
// when the pair is not both represented.
func (a *Analyzer) contrast(byCondition map[trial.Condition][]float64) *ContrastEffect {
	groupA := byCondition[a.cfg.ContrastA]
	groupB := byCondition[a.cfg.ContrastB]
	if len(groupA) == 0 || len(groupB) == 0 {
		return nil
	}

	meanA, _ := stats.Mean(groupA)
	meanB, _ := stats.Mean(groupB)
	effect := &ContrastEffect{
		ConditionA: a.cfg.ContrastA,
		ConditionB: a.cfg.ContrastB,
		MeanA:      meanA,
		MeanB:      meanB,
		CountA:     len(groupA),
		CountB:     len(groupB),
		DeltaMS:    meanB - meanA,
		PValue:     1.0,
	}
	effect.TStat, effect.PValue = welchTTest(groupA, groupB)
	return effect
}

// welchTTest computes Welch's unequal-variance t-statistic and two-sided
// p-value. Groups smaller than two observations cannot be tested and
// report t=0, p=1.
func welchTTest(groupA, groupB []float64) (float64, float64) {
	nA, nB := float64(len(groupA)), float64(len(groupB))
	if nA < 2 || nB < 2 {
		return 0, 1.0
	}

	meanA, _ := stats.Mean(groupA)
	meanB, _ := stats.Mean(groupB)
	varA, _ := stats.SampleVariance(groupA)
	varB, _ := stats.SampleVariance(groupB)

	se := math.Sqrt(varA/nA + varB/nB)
	if se == 0 {
		return 0, 1.0
	}
	t := (meanB - meanA) / se

	// Welch-Satterthwaite degrees of freedom.
	num := math.Pow(varA/nA+varB/nB, 2)
	den := math.Pow(varA/nA, 2)/(nA-1) + math.Pow(varB/nB, 2)/(nB-1)
	if den == 0 {
		return t, 1.0
	}
	df := num / den

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * tDist.CDF(-math.Abs(t))
	return t, p
}

// qualityScore applies the bounded heuristic deductions.
func (a *Analyzer) qualityScore(r AnalysisResult) int {
	score := 100
	if r.Accuracy < 0.70 {
		score -= 30
	}
	if r.MeanRT < a.cfg.PlausibleRTMin || r.MeanRT > a.cfg.PlausibleRTMax {
		score -= 20
	}
	if float64(r.OutlierCount)/float64(r.SampleCount) > a.cfg.MaxOutlierFraction {
		score -= 20
	}
	if r.SampleCount < a.cfg.MinSampleSize {
		score -= 30
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
