package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"coglab/adapters/rng"
	"coglab/domain/design"
	"coglab/domain/metrics"
	"coglab/domain/trial"
	"coglab/internal/testkit"
)

var (
	flagTrials       int
	flagParticipants int
	flagSeed         int64
	flagConditions   []string
	flagRandomize    bool
)

func main() {
	root := &cobra.Command{
		Use:   "simulate",
		Short: "Run simulated participants through the trial engine and print the analysis",
		RunE:  runSimulation,
	}
	root.Flags().IntVar(&flagTrials, "trials", 60, "trials per participant")
	root.Flags().IntVar(&flagParticipants, "participants", 1, "number of simulated participants")
	root.Flags().Int64Var(&flagSeed, "seed", 42, "base seed for design generation and behavior")
	root.Flags().StringSliceVar(&flagConditions, "conditions", []string{"congruent", "incongruent", "neutral"}, "condition tags")
	root.Flags().BoolVar(&flagRandomize, "randomize", true, "shuffle trial order")

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	conditions := make([]trial.Condition, len(flagConditions))
	for i, c := range flagConditions {
		conditions[i] = trial.Condition(c)
	}

	cfg := trial.StudyConfig{
		Task:       trial.TaskColorWord,
		TrialCount: flagTrials,
		Conditions: conditions,
		Randomize:  flagRandomize,
		Timing:     trial.DefaultTiming(),
		Seed:       flagSeed,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	streams := rng.New()
	analyzer := metrics.NewAnalyzer(metrics.DefaultAnalyzerConfig())
	wrongTokens := []string{"r", "g", "b", "y"}

	for p := 0; p < flagParticipants; p++ {
		designRNG := streams.Stream(fmt.Sprintf("design:%d", p), cfg.Seed)
		seq, err := design.Generate(cfg, designRNG, nil)
		if err != nil {
			return err
		}

		behaviorRNG := streams.Stream(fmt.Sprintf("behavior:%d", p), cfg.Seed)
		participant := testkit.NewSimulatedParticipant(testkit.DefaultParticipantModel(), behaviorRNG)
		outcomes := participant.SynthesizeOutcomes(seq, cfg.Timing.ResponseWindow(), wrongTokens)

		result := analyzer.Analyze(outcomes)
		printResult(p, result)
	}
	return nil
}

func printResult(participant int, r metrics.AnalysisResult) {
	w := os.Stdout
	fmt.Fprintf(w, "participant %d\n", participant)
	fmt.Fprintf(w, "  trials:    %d\n", r.SampleCount)
	fmt.Fprintf(w, "  mean RT:   %.1fms (median %.1fms)\n", r.MeanRT, r.MedianRT)
	fmt.Fprintf(w, "  accuracy:  %.1f%%\n", r.Accuracy*100)
	fmt.Fprintf(w, "  outliers:  %d\n", r.OutlierCount)
	fmt.Fprintf(w, "  quality:   %d/100\n", r.QualityScore)
	if r.Contrast != nil {
		fmt.Fprintf(w, "  contrast:  %s-%s = %+.1fms (t=%.2f, p=%.4f, n=%d/%d)\n",
			r.Contrast.ConditionB, r.Contrast.ConditionA, r.Contrast.DeltaMS,
			r.Contrast.TStat, r.Contrast.PValue, r.Contrast.CountA, r.Contrast.CountB)
	}
}
