package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/engine/clustering"
	"keyword-intelligence/internal/engine/intent"
	"keyword-intelligence/internal/store"
)

// app carries the per-invocation engine state. Classifications live in an
// in-memory store for the lifetime of one command.
type app struct {
	logLevel  string
	output    string
	modelPath string

	log        logger.Logger
	classifier *intent.Classifier
	engine     *clustering.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "kwintel",
		Short:         "Offline keyword intent, clustering and cannibalization analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level written to stderr")
	flags.StringVarP(&a.output, "output", "o", "json", "output format: json or yaml")
	flags.StringVar(&a.modelPath, "model", "", "intent model snapshot to load instead of the bootstrap model")

	root.AddCommand(
		newClassifyCmd(a),
		newClusterCmd(a),
		newTrainCmd(a),
		newEvaluateCmd(a),
		newCannibalizationCmd(a),
		newRegistryCmd(),
	)
	return root
}

func (a *app) init() error {
	switch a.output {
	case "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format %q", a.output)
	}

	a.log = logger.NewStructured(a.logLevel, "console")
	a.classifier = intent.NewClassifier(store.NewMemoryStore(), nil, a.log)
	a.engine = clustering.NewEngine(nil, a.log)

	if a.modelPath == "" {
		return nil
	}
	snap, err := readSnapshot(a.modelPath)
	if err != nil {
		return err
	}
	return a.classifier.LoadSnapshot(snap)
}

func (a *app) render(w io.Writer, v interface{}) error {
	if a.output == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(toYAMLValue(v)); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// toYAMLValue routes v through JSON so YAML output keeps the json field names.
func toYAMLValue(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}
