package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/dataset/inputsample"
	"github.com/pbanos/arbor/feature"
	"github.com/pbanos/arbor/feature/yaml"
	"github.com/pbanos/arbor/model"
)

type predictCmdConfig struct {
	*rootCmdConfig
	modelInput     string
	dataInput      string
	metadataInput  string
	output         string
	classFeature   string
	targetFeatures string
	clusterFeature string
	interactive    bool
}

type stdoutFeatureValueRequester struct{}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict values for samples with a model",
		Long:  `Predict the class, cluster or target values of a set of samples with a model and write the samples along their predictions`,
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
			p, err := config.predictor(m, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			samples, err := config.samples(ctx, features, p)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			w, closer, err := config.sampleWriter(ctx, config.output, append(append([]feature.Feature{}, p.inputs...), p.outputs...))
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(7)
			}
			defer closer()
			config.Logf("Predicting values for %d samples...", len(samples))
			for i, s := range samples {
				ps, err := p.predict(s)
				if err != nil {
					fmt.Fprintf(os.Stderr, "predicting sample %d: %v\n", i, err)
					os.Exit(8)
				}
				if _, err = w.Write(ctx, []dataset.Sample{ps}); err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(9)
				}
			}
			if err = w.Flush(); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(9)
			}
			config.Logf("Done")
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", dataSourceHelp+" with the samples to predict values for (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(config.modelInput), "model", "M", "", modelLocationHelp+" (required)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", dataSourceHelp+" to write the samples along their predictions to (defaults to STDOUT in CSV)")
	cmd.PersistentFlags().StringVarP(&(config.classFeature), "class-feature", "c", "", "name of the feature a decision tree predicts (required for decision trees)")
	cmd.PersistentFlags().StringVar(&(config.targetFeatures), "targets", "", "comma separated names of the features a regression tree predicts (required for regression trees)")
	cmd.PersistentFlags().BoolVar(&(config.interactive), "interactive", false, "ask for the input values of a single sample on STDIN instead of reading samples from the input")
	cmd.PersistentFlags().StringVar(&(config.clusterFeature), "cluster-feature", "cluster", "name of the output feature holding the cluster of each sample for cluster trees")
	return cmd
}

func (pcc *predictCmdConfig) Validate() error {
	if pcc.modelInput == "" {
		return fmt.Errorf("required model flag was not set")
	}
	if pcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	return nil
}

/*
predictor holds the input features a model takes, the features its
predictions are written as and a function to predict the values of those
features for a sample.
*/
type predictor struct {
	inputs, outputs []feature.Feature
	values          func([]float64) ([]interface{}, error)
}

func (p *predictor) predict(s dataset.Sample) (dataset.Sample, error) {
	x, err := dataset.Vector(s, p.inputs)
	if err != nil {
		return nil, err
	}
	values, err := p.values(x)
	if err != nil {
		return nil, err
	}
	result := make(map[string]interface{}, len(p.inputs)+len(p.outputs))
	for i, f := range p.inputs {
		result[f.Name()] = x[i]
	}
	for i, f := range p.outputs {
		result[f.Name()] = values[i]
	}
	return dataset.NewSample(result), nil
}

func (pcc *predictCmdConfig) predictor(m model.Model, features []feature.Feature) (*predictor, error) {
	switch m := m.(type) {
	case *model.DecisionTree:
		class, err := feature.ClassFeature(features, pcc.classFeature)
		if err != nil {
			return nil, err
		}
		inputs, err := feature.Inputs(features, class.Name())
		if err != nil {
			return nil, err
		}
		return &predictor{inputs, []feature.Feature{class}, func(x []float64) ([]interface{}, error) {
			cp, err := m.Predict(x)
			if err != nil {
				return nil, err
			}
			if cp.Rejected {
				return []interface{}{nil}, nil
			}
			value, err := class.Value(cp.Label)
			if err != nil {
				return nil, err
			}
			return []interface{}{value}, nil
		}}, nil
	case *model.RegressionTree:
		targets, err := targetFeatures(features, pcc.targetFeatures)
		if err != nil {
			return nil, err
		}
		inputs, err := feature.Inputs(features, feature.Names(targets)...)
		if err != nil {
			return nil, err
		}
		return &predictor{inputs, targets, func(x []float64) ([]interface{}, error) {
			y, err := m.Predict(x)
			if err != nil {
				return nil, err
			}
			values := make([]interface{}, len(y))
			for i, v := range y {
				values[i] = v
			}
			return values, nil
		}}, nil
	case *model.ClusterTree:
		inputs, err := feature.Inputs(features, pcc.clusterFeature)
		if err != nil {
			return nil, err
		}
		return &predictor{inputs, []feature.Feature{feature.NewContinuousFeature(pcc.clusterFeature)}, func(x []float64) ([]interface{}, error) {
			cp, err := m.Predict(x)
			if err != nil {
				return nil, err
			}
			return []interface{}{float64(cp.Label)}, nil
		}}, nil
	}
	return nil, fmt.Errorf("cannot predict with a %T", m)
}

func (pcc *predictCmdConfig) samples(ctx context.Context, features []feature.Feature, p *predictor) ([]dataset.Sample, error) {
	if pcc.interactive {
		return []dataset.Sample{inputsample.New(os.Stdin, p.inputs, stdoutFeatureValueRequester{})}, nil
	}
	return pcc.readSamples(ctx, pcc.dataInput, features)
}

func (stdoutFeatureValueRequester) RequestValueFor(f feature.Feature) error {
	switch f := f.(type) {
	case *feature.DiscreteFeature:
		fmt.Fprintf(os.Stderr, "Please provide the sample's %s:\n(valid values are %v)\n", f.Name(), f.AvailableValues())
	default:
		fmt.Fprintf(os.Stderr, "Please provide the sample's %s:\n(valid values are real numbers)\n", f.Name())
	}
	return nil
}

func (stdoutFeatureValueRequester) RejectValueFor(f feature.Feature, value string, err error) error {
	fmt.Fprintf(os.Stderr, "%q is not a valid value for the sample's %s: %v\n", value, f.Name(), err)
	return nil
}
