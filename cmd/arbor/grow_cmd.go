package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/feature"
	"github.com/pbanos/arbor/feature/yaml"
	"github.com/pbanos/arbor/model"
	"github.com/pbanos/arbor/tree"
)

type growCmdConfig struct {
	*rootCmdConfig
	dataInput          string
	metadataInput      string
	output             string
	treeType           string
	classFeature       string
	targetFeatures     string
	nodeKind           string
	splitSearch        string
	maxDepth           uint
	minSamples         uint
	splittingSteps     uint
	removeFeature      bool
	minError           float64
	scaling            bool
	nullRejection      bool
	nullRejectionCoeff float64
	workers            int
	seed               int64
}

func growCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &growCmdConfig{rootCmdConfig: rootConfig}
	defaults := tree.DefaultParams()
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a tree from a set of data",
		Long:  `Grow a decision, cluster or regression tree from a set of data and save it as a model.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx := context.Background()
			features, err := yaml.ReadFeaturesFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			samples, err := config.readSamples(ctx, config.dataInput, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			m, err := config.train(ctx, features, samples)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(8)
			}
			config.Logf("Done")
			config.Logf("%v", m)
			err = config.saveModel(ctx, m, config.output)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(9)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", dataSourceHelp+" with data to use to grow the tree (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file to which the model will be written, or a redis://HOST:PORT[/ID] URL of a Redis store to keep it in (defaults to STDOUT)")
	cmd.PersistentFlags().StringVarP(&(config.treeType), "type", "t", "decision", "type of tree to grow: decision, cluster or regression")
	cmd.PersistentFlags().StringVarP(&(config.classFeature), "class-feature", "c", "", "name of the feature a decision tree should predict (required for decision trees)")
	cmd.PersistentFlags().StringVar(&(config.targetFeatures), "targets", "", "comma separated names of the features a regression tree should predict (required for regression trees)")
	cmd.PersistentFlags().StringVar(&(config.nodeKind), "node", "threshold", "node type for decision trees: threshold or cluster")
	cmd.PersistentFlags().StringVar(&(config.splitSearch), "split-search", defaults.SplitSearch.String(), "how threshold nodes look for splits: iterative or random")
	cmd.PersistentFlags().UintVar(&(config.maxDepth), "max-depth", defaults.MaxDepth, "depth at which nodes stop being split")
	cmd.PersistentFlags().UintVar(&(config.minSamples), "min-samples", defaults.MinSamplesPerNode, "minimum number of samples a node needs to be split")
	cmd.PersistentFlags().UintVar(&(config.splittingSteps), "steps", defaults.NumSplittingSteps, "number of thresholds or sampled features evaluated per split")
	cmd.PersistentFlags().BoolVar(&(config.removeFeature), "remove-feature", defaults.RemoveFeatureAfterSplit, "disallow reusing a feature below the node that splits on it")
	cmd.PersistentFlags().Float64Var(&(config.minError), "min-error", defaults.MinRMSErrorPerNode, "cluster and regression nodes whose best split has an error at or below this become leaves")
	cmd.PersistentFlags().BoolVar(&(config.scaling), "scaling", false, "rescale inputs into [0,1] with the ranges of the training data")
	cmd.PersistentFlags().BoolVar(&(config.nullRejection), "null-rejection", false, "reject decision tree predictions for samples far from the training samples of their leaf")
	cmd.PersistentFlags().Float64Var(&(config.nullRejectionCoeff), "null-rejection-coeff", 3, "number of standard deviations over the mean distance at which predictions are rejected")
	cmd.PersistentFlags().IntVar(&(config.workers), "workers", 0, "limit to concurrent cluster split evaluations (defaults to 0: one per CPU)")
	cmd.PersistentFlags().Int64Var(&(config.seed), "seed", 0, "seed for random split searches (defaults to 0: seeded from the clock)")
	return cmd
}

func (gcc *growCmdConfig) Validate() error {
	if gcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	switch gcc.treeType {
	case "decision":
		if gcc.classFeature == "" {
			return fmt.Errorf("required class-feature flag was not set")
		}
		if gcc.nodeKind != "threshold" && gcc.nodeKind != "cluster" {
			return fmt.Errorf("unknown node type %s, valid ones are threshold and cluster", gcc.nodeKind)
		}
	case "regression":
		if gcc.targetFeatures == "" {
			return fmt.Errorf("required targets flag was not set")
		}
	case "cluster":
	default:
		return fmt.Errorf("unknown tree type %s, valid ones are decision, cluster and regression", gcc.treeType)
	}
	_, err := tree.ParseSplitSearch(gcc.splitSearch)
	return err
}

func (gcc *growCmdConfig) modelConfig() model.Config {
	c := model.DefaultConfig()
	c.Params = tree.Params{
		MinSamplesPerNode:       gcc.minSamples,
		MaxDepth:                gcc.maxDepth,
		NumSplittingSteps:       gcc.splittingSteps,
		RemoveFeatureAfterSplit: gcc.removeFeature,
		MinRMSErrorPerNode:      gcc.minError,
	}
	c.Params.SplitSearch, _ = tree.ParseSplitSearch(gcc.splitSearch)
	c.UseScaling = gcc.scaling
	c.Workers = gcc.workers
	if gcc.seed != 0 {
		c.Rand = rand.New(rand.NewSource(gcc.seed))
	}
	c.Logger = gcc.Logger()
	return c
}

func (gcc *growCmdConfig) train(ctx context.Context, features []feature.Feature, samples []dataset.Sample) (model.Model, error) {
	switch gcc.treeType {
	case "decision":
		class, err := feature.ClassFeature(features, gcc.classFeature)
		if err != nil {
			return nil, err
		}
		inputs, err := feature.Inputs(features, class.Name())
		if err != nil {
			return nil, err
		}
		data, err := dataset.NewClassificationDataFromSamples(samples, inputs, class)
		if err != nil {
			return nil, err
		}
		dt := model.NewDecisionTree()
		dt.Config = gcc.modelConfig()
		if gcc.nodeKind == "cluster" {
			dt.NodeKind = tree.DecisionTreeClusterNode
		}
		dt.UseNullRejection = gcc.nullRejection
		dt.NullRejectionCoeff = gcc.nullRejectionCoeff
		gcc.Logf("Growing decision tree from a set with %d samples and %d features to predict %s ...", data.NumSamples(), len(inputs), class.Name())
		return dt, dt.Train(ctx, data)
	case "regression":
		targets, err := targetFeatures(features, gcc.targetFeatures)
		if err != nil {
			return nil, err
		}
		inputs, err := feature.Inputs(features, feature.Names(targets)...)
		if err != nil {
			return nil, err
		}
		data, err := dataset.NewRegressionDataFromSamples(samples, inputs, targets)
		if err != nil {
			return nil, err
		}
		rt := model.NewRegressionTree()
		rt.Config = gcc.modelConfig()
		gcc.Logf("Growing regression tree from a set with %d samples and %d features to predict %s ...", data.NumSamples(), len(inputs), gcc.targetFeatures)
		return rt, rt.Train(ctx, data)
	}
	inputs, err := feature.Inputs(features)
	if err != nil {
		return nil, err
	}
	data, err := dataset.NewUnlabeledDataFromSamples(samples, inputs)
	if err != nil {
		return nil, err
	}
	ct := model.NewClusterTree()
	ct.Config = gcc.modelConfig()
	gcc.Logf("Growing cluster tree from a set with %d samples and %d features...", data.NumSamples(), len(inputs))
	return ct, ct.Train(ctx, data)
}

// targetFeatures takes a comma separated list of feature names and returns
// the continuous features with those names.
func targetFeatures(features []feature.Feature, names string) ([]feature.Feature, error) {
	var targets []feature.Feature
	for _, name := range strings.Split(names, ",") {
		f := feature.Find(features, strings.TrimSpace(name))
		if f == nil {
			return nil, fmt.Errorf("target feature '%s' is not defined", name)
		}
		if _, ok := f.(*feature.ContinuousFeature); !ok {
			return nil, fmt.Errorf("target feature '%s' is not continuous", name)
		}
		targets = append(targets, f)
	}
	return targets, nil
}
