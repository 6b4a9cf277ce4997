package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbanos/arbor/feature"
	"github.com/pbanos/arbor/feature/yaml"
	"github.com/pbanos/arbor/tree/json"
)

type treeCmdConfig struct {
	*rootCmdConfig
	modelInput    string
	metadataInput string
	exclude       string
	format        string
}

func treeCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &treeCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the tree of a model",
		Long:  `Print the tree of a model as indented text or as JSON`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx := context.Background()
			names, err := config.featureNames()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			m, err := config.loadModel(ctx, config.modelInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			if !m.Trained() {
				fmt.Fprintln(os.Stderr, "model is not trained")
				os.Exit(4)
			}
			if config.format == "json" {
				err = json.WriteJSONTree(ctx, m.Tree(), names, os.Stdout)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(5)
				}
				return
			}
			fmt.Print(m.Tree().Describe(names))
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.modelInput), "model", "M", "", modelLocationHelp+" (required)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the features the model was grown with, to name features instead of numbering them")
	cmd.PersistentFlags().StringVar(&(config.exclude), "exclude", "", "comma separated names of features in the metadata that are not model inputs, like class or target features")
	cmd.PersistentFlags().StringVarP(&(config.format), "format", "f", "text", "output format: text or json")
	return cmd
}

func (tcc *treeCmdConfig) Validate() error {
	if tcc.modelInput == "" {
		return fmt.Errorf("required model flag was not set")
	}
	if tcc.format != "text" && tcc.format != "json" {
		return fmt.Errorf("unknown format %s, valid ones are text and json", tcc.format)
	}
	return nil
}

func (tcc *treeCmdConfig) featureNames() ([]string, error) {
	if tcc.metadataInput == "" {
		return nil, nil
	}
	features, err := yaml.ReadFeaturesFromFile(tcc.metadataInput)
	if err != nil {
		return nil, err
	}
	var exclude []string
	if tcc.exclude != "" {
		exclude = strings.Split(tcc.exclude, ",")
	}
	inputs, err := feature.Inputs(features, exclude...)
	if err != nil {
		return nil, err
	}
	return feature.Names(inputs), nil
}
