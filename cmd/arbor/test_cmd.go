package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/feature"
	"github.com/pbanos/arbor/feature/yaml"
	"github.com/pbanos/arbor/model"
)

type testCmdConfig struct {
	*rootCmdConfig
	modelInput     string
	dataInput      string
	metadataInput  string
	classFeature   string
	targetFeatures string
}

func testCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &testCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the performance of a model",
		Long:  `Test the performance of a decision or regression tree model against a test data set`,
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
			m, err := config.loadModel(ctx, config.modelInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			samples, err := config.readSamples(ctx, config.dataInput, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			config.Logf("Testing model against testset with %d samples...", len(samples))
			result, err := config.test(m, features, samples)
			if err != nil {
				fmt.Fprintf(os.Stderr, "testing model: %v\n", err)
				os.Exit(6)
			}
			config.Logf("Done")
			fmt.Println(result)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", dataSourceHelp+" with data to test the model against (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(config.modelInput), "model", "M", "", modelLocationHelp+" (required)")
	cmd.PersistentFlags().StringVarP(&(config.classFeature), "class-feature", "c", "", "name of the feature a decision tree predicts (required for decision trees)")
	cmd.PersistentFlags().StringVar(&(config.targetFeatures), "targets", "", "comma separated names of the features a regression tree predicts (required for regression trees)")
	return cmd
}

func (tcc *testCmdConfig) Validate() error {
	if tcc.modelInput == "" {
		return fmt.Errorf("required model flag was not set")
	}
	if tcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	return nil
}

func (tcc *testCmdConfig) test(m model.Model, features []feature.Feature, samples []dataset.Sample) (string, error) {
	switch m := m.(type) {
	case *model.DecisionTree:
		class, err := feature.ClassFeature(features, tcc.classFeature)
		if err != nil {
			return "", err
		}
		inputs, err := feature.Inputs(features, class.Name())
		if err != nil {
			return "", err
		}
		data, err := dataset.NewClassificationDataFromSamples(samples, inputs, class)
		if err != nil {
			return "", err
		}
		accuracy, errorCount, err := m.Test(data)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%f success rate, failed to make a prediction for %d samples", accuracy, errorCount), nil
	case *model.RegressionTree:
		targets, err := targetFeatures(features, tcc.targetFeatures)
		if err != nil {
			return "", err
		}
		inputs, err := feature.Inputs(features, feature.Names(targets)...)
		if err != nil {
			return "", err
		}
		data, err := dataset.NewRegressionDataFromSamples(samples, inputs, targets)
		if err != nil {
			return "", err
		}
		rmse, errorCount, err := m.Test(data)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%f root mean squared error, failed to make a prediction for %d samples", rmse, errorCount), nil
	}
	return "", fmt.Errorf("cannot test a %T: only decision and regression trees can be tested", m)
}
