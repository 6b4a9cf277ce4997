package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/feature"
	"github.com/pbanos/arbor/feature/yaml"
)

type splitCmdConfig struct {
	*rootCmdConfig
	setInput         string
	metadataInput    string
	setOutput        string
	splitOutput      string
	splitProbability int
	seed             int64
}

func splitCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &splitCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a set into two sets",
		Long:  `Split a set into an output set and a split set, for instance to hold out a test set from a training set`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx := context.Background()
			config.Logf("Reading features from metadata at %s...", config.metadataInput)
			features, err := yaml.ReadFeaturesFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			samples, err := config.readSamples(ctx, config.setInput, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			seed := config.seed
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			kept, split := splitSamples(samples, config.splitProbability, rand.New(rand.NewSource(seed)))
			for i, out := range []struct {
				location string
				samples  []dataset.Sample
			}{{config.setOutput, kept}, {config.splitOutput, split}} {
				if err = config.writeSamples(ctx, out.location, features, out.samples); err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(4 + i)
				}
			}
			config.Logf("Input set with %d samples was split into sets with %d and %d samples", len(samples), len(kept), len(split))
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.setInput), "input", "i", "", dataSourceHelp+" to read the set from (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(config.setOutput), "output", "o", "", dataSourceHelp+" to dump the output set to (defaults to STDOUT in CSV)")
	cmd.PersistentFlags().IntVarP(&(config.splitProbability), "split-probability", "p", 20, "probability as percent integer that a sample of the set will be assigned to the split set")
	cmd.PersistentFlags().StringVarP(&(config.splitOutput), "split-output", "s", "", dataSourceHelp+" to dump the split set to (required)")
	cmd.PersistentFlags().Int64Var(&(config.seed), "seed", 0, "seed for the assignment of samples (defaults to 0: seeded from the clock)")
	return cmd
}

func (scc *splitCmdConfig) Validate() error {
	if scc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if scc.splitOutput == "" {
		return fmt.Errorf("required split-output flag was not set")
	}
	if scc.splitProbability <= 0 || scc.splitProbability > 100 {
		return fmt.Errorf("split-probability flag was set to an invalid value: it must be set to an integer between 1 and 100")
	}
	return nil
}

func (scc *splitCmdConfig) writeSamples(ctx context.Context, location string, features []feature.Feature, samples []dataset.Sample) error {
	w, closer, err := scc.sampleWriter(ctx, location, features)
	if err != nil {
		return err
	}
	defer closer()
	if _, err = w.Write(ctx, samples); err != nil {
		return err
	}
	return w.Flush()
}

// splitSamples assigns each sample to the split set with the given percent
// probability and to the kept set otherwise, preserving their order.
func splitSamples(samples []dataset.Sample, percent int, rnd *rand.Rand) (kept, split []dataset.Sample) {
	for _, s := range samples {
		if 100*rnd.Float64() < float64(percent) {
			split = append(split, s)
		} else {
			kept = append(kept, s)
		}
	}
	return kept, split
}
