package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"sparsevec/internal/chunker"
	"sparsevec/internal/cluster"
	"sparsevec/internal/config"
	"sparsevec/internal/domain"
	"sparsevec/internal/embedding"
	"sparsevec/internal/embedding/tfidf"
	"sparsevec/internal/labeler"
	"sparsevec/internal/logging"
	"sparsevec/internal/service"
	"sparsevec/internal/tui"
	"sparsevec/internal/vectorstore/memory"
)

var (
	cfgPath  string
	logLevel string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sparsevec",
		Short:         "Cluster and search text with sparse term vectors",
		Long:          `Splits text files into passages, turns them into TF-IDF sparse vectors, clusters them with k-means and tags every passage with its cluster label.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file (default: $SPARSEVEC_CONFIG, ./config.yaml, ~/.config/sparsevec/config.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	root.AddCommand(newClusterCmd(), newQueryCmd(), newConfigCmd())
	return root
}

func newClusterCmd() *cobra.Command {
	var (
		k      int
		rule   string
		useTUI bool
	)
	cmd := &cobra.Command{
		Use:   "cluster <file.txt|glob>...",
		Short: "Cluster passages of the given text files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if k > 0 {
				cfg.Cluster.K = k
			}
			if rule != "" {
				cfg.Cluster.Rule = rule
			}
			svc, err := buildService(cfg, logger)
			if err != nil {
				return err
			}
			clusters, err := svc.Ingest(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("ingest failed: %w", err)
			}
			if useTUI {
				_, err := tea.NewProgram(tui.New(svc, clusters, cfg.Search.TopK)).Run()
				return err
			}
			printClusters(cmd, clusters)
			return nil
		},
	}
	cmd.Flags().IntVar(&k, "k", 0, "Number of clusters (overrides config)")
	cmd.Flags().StringVar(&rule, "rule", "", "Assignment rule: nearest, closest or dot (overrides config)")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "Browse clusters interactively")
	return cmd
}

func newQueryCmd() *cobra.Command {
	var (
		text string
		topK int
	)
	cmd := &cobra.Command{
		Use:   "query --text <query> <file.txt|glob>...",
		Short: "Rank passages of the given text files against a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" {
				return fmt.Errorf("--text is required")
			}
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if topK <= 0 {
				topK = cfg.Search.TopK
			}
			svc, err := buildService(cfg, logger)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := svc.Ingest(ctx, args); err != nil {
				return fmt.Errorf("ingest failed: %w", err)
			}
			res, err := svc.Query(ctx, text, topK)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Cluster >= 0 {
				fmt.Fprintf(out, "cluster %d: %s\n", res.Cluster, res.Label)
			}
			for i, m := range res.Matches {
				fmt.Fprintf(out, "%d. [%.4f] (%s) %s\n", i+1, m.Score, m.Tag, m.Passage.Text)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "Query text")
	cmd.Flags().IntVar(&topK, "top-k", 0, "Number of passages to return (overrides config)")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultUserConfigPath()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default configuration written to %s\n", path)
			return nil
		},
	})
	return cmd
}

func loadConfig() (*config.AppConfig, *slog.Logger, error) {
	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// buildService assembles components from configuration.
func buildService(cfg *config.AppConfig, logger *slog.Logger) (*service.ClusterServiceImpl, error) {
	var emb embedding.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.NewEmbedder()
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var ch domain.Chunker
	switch cfg.Chunker.Type {
	case "sentence", "":
		ch = chunker.NewSentenceChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences)
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Chunker.Type)
	}

	clusterRule, err := cluster.ParseRule(cfg.Cluster.Rule)
	if err != nil {
		return nil, err
	}
	searchRule, err := cluster.ParseRule(cfg.Search.Rule)
	if err != nil {
		return nil, err
	}

	return service.NewClusterService(
		ch,
		emb,
		memory.NewStorage(searchRule),
		labeler.NewTopTermsLabeler(cfg.Tagging.LabelTerms),
		service.Options{
			Cluster: cluster.Config{
				K:             cfg.Cluster.K,
				MaxIterations: cfg.Cluster.MaxIterations,
				MinRatio:      cfg.Cluster.PruneRatio(),
				Rule:          clusterRule,
				Workers:       cfg.Cluster.Workers,
			},
			Threshold: cfg.Tagging.Threshold,
			Logger:    logger,
		},
	), nil
}

func printClusters(cmd *cobra.Command, clusters []domain.Cluster) {
	out := cmd.OutOrStdout()
	for _, c := range clusters {
		fmt.Fprintf(out, "cluster %d: %s (%d passages)\n", c.Index, c.Label, len(c.Passages))
		fmt.Fprintf(out, "  center %s\n", c.Center.TopString(5))
		for _, p := range c.Passages {
			fmt.Fprintf(out, "  - %s\n", p.Text)
		}
	}
}
