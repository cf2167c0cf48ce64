package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"keyword-intelligence/internal/engine/clustering"
	"keyword-intelligence/internal/engine/intent"
	"keyword-intelligence/internal/models"
	"keyword-intelligence/pkg/registry"
)

const defaultProject = "cli"

func newClassifyCmd(a *app) *cobra.Command {
	var (
		project string
		file    string
	)
	cmd := &cobra.Command{
		Use:   "classify [keyword...]",
		Short: "Classify keywords into search intents",
		RunE: func(cmd *cobra.Command, args []string) error {
			keywords := args
			if file != "" {
				fromFile, err := readKeywords(file)
				if err != nil {
					return err
				}
				keywords = append(keywords, fromFile...)
			}
			if len(keywords) == 0 {
				return fmt.Errorf("no keywords given")
			}

			results := make([]*models.IntentClassification, 0, len(keywords))
			for _, kw := range keywords {
				c, err := a.classifier.Classify(cmd.Context(), project, kw, intent.ClassifyOptions{})
				if err != nil {
					return fmt.Errorf("classify %q: %w", kw, err)
				}
				results = append(results, c)
			}
			return a.render(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVar(&project, "project", defaultProject, "project scope for the classifications")
	cmd.Flags().StringVarP(&file, "file", "f", "", "keyword list (text, YAML or JSON)")
	return cmd
}

func newClusterCmd(a *app) *cobra.Command {
	var (
		file   string
		method string
		opts   = clustering.DefaultOptions()
	)
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Group a keyword list into clusters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			keywords, err := readKeywords(file)
			if err != nil {
				return err
			}
			result, err := a.engine.Cluster(keywords, clustering.Method(method), opts)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), result)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "", "keyword list (text, YAML or JSON)")
	f.StringVarP(&method, "method", "m", string(clustering.MethodSemantic), "semantic, intent, topic or hierarchical")
	f.Float64Var(&opts.Threshold, "threshold", opts.Threshold, "similarity threshold")
	f.IntVar(&opts.MinClusterSize, "min-size", opts.MinClusterSize, "smallest cluster kept")
	f.IntVar(&opts.MaxClusterSize, "max-size", opts.MaxClusterSize, "largest hierarchical cluster")
	f.IntVar(&opts.NumTopics, "topics", 0, "topic count for the topic method, 0 derives it")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

type trainResult struct {
	Metrics   *models.ModelMetrics `json:"metrics"`
	ModelPath string               `json:"modelPath,omitempty"`
}

func newTrainCmd(a *app) *cobra.Command {
	var data, out string
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train an intent model on a labelled dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dataset, err := readDataset(data)
			if err != nil {
				return err
			}
			model, metrics, err := a.classifier.TrainModel(cmd.Context(), dataset)
			if err != nil {
				return err
			}

			result := trainResult{Metrics: metrics}
			if out != "" {
				if err := writeSnapshot(out, model.Snapshot()); err != nil {
					return fmt.Errorf("write model: %w", err)
				}
				result.ModelPath = out
			}
			return a.render(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "labelled dataset (YAML or JSON list of keyword/intent)")
	cmd.Flags().StringVar(&out, "out", "", "write the trained model snapshot here")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newEvaluateCmd(a *app) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score the loaded intent model against a labelled dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dataset, err := readDataset(data)
			if err != nil {
				return err
			}
			metrics, err := a.classifier.Evaluate(cmd.Context(), dataset)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), metrics)
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "labelled dataset (YAML or JSON list of keyword/intent)")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newCannibalizationCmd(a *app) *cobra.Command {
	var (
		file string
		opts clustering.CannibalizationOptions
	)
	cmd := &cobra.Command{
		Use:     "cannibalization",
		Aliases: []string{"cannibal"},
		Short:   "Find keyword pairs competing for the same URLs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rankings, err := readRankings(file)
			if err != nil {
				return err
			}
			report, err := a.engine.DetectCannibalization(rankings, opts)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), report)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&file, "rankings", "r", "", "rankings file (YAML or JSON list of keyword/urls)")
	f.Float64Var(&opts.SimilarityThreshold, "similarity", clustering.DefaultCannibalizationSimilarity, "keyword similarity floor")
	f.Float64Var(&opts.URLOverlapThreshold, "overlap", clustering.DefaultURLOverlapThreshold, "URL overlap floor")
	_ = cmd.MarkFlagRequired("rankings")
	return cmd
}

func newRegistryCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage the activity registry used to validate job payloads",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "configs/activity-registry.json", "registry file")

	export := &cobra.Command{
		Use:   "export",
		Short: "Write the built-in registry to --path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := registry.Default()
			if err := reg.WriteFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d activities to %s\n", len(reg.Activities), path)
			return nil
		},
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check task types are unique and every schema compiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("load registry: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			for _, taskType := range registry.Default().TaskTypes() {
				if _, ok := reg.Find(taskType); !ok {
					return fmt.Errorf("registry validation failed: missing task type %s", taskType)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <task-type> <field> <value>",
		Short: "Update one field of an activity (version, timeout, retries, description)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadOrDefault(path)
			if err != nil {
				return fmt.Errorf("load registry: %w", err)
			}
			if err := setActivityField(reg, args[0], args[1], args[2]); err != nil {
				return err
			}
			reg.LastUpdated = time.Now().UTC().Format("2006-01-02")
			if err := reg.WriteFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s to %s\n", args[0], args[1], args[2])
			return nil
		},
	}

	cmd.AddCommand(export, validate, set)
	return cmd
}

func setActivityField(reg *registry.ActivityRegistry, taskType, field, value string) error {
	a, ok := reg.Find(taskType)
	if !ok {
		return fmt.Errorf("activity with task type %s not found", taskType)
	}
	switch field {
	case "version":
		a.Version = value
	case "description":
		a.Description = value
	case "displayName":
		a.DisplayName = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		a.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil || retries < 0 {
			return fmt.Errorf("invalid retries value %q", value)
		}
		a.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}
