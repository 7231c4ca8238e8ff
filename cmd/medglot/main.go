// Command medglot runs the medicine-content translation pipeline.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dawalabs/medglot"
	"github.com/dawalabs/medglot/cache"
	"github.com/dawalabs/medglot/ledger"
	"github.com/dawalabs/medglot/provider"
	"github.com/dawalabs/medglot/store"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "medglot",
		Short: "AI-assisted medicine-content translation pipeline",
		Long: `medglot translates medicine catalog records into regional languages
via an AI generation service, preserving field structure and never
overwriting content that is already complete.

Examples:
  medglot translate --input medicines.csv --target bengali
  medglot keywords  --input medicines.csv --target gujarati
  medglot meta      --input meta.csv      --target hindi
  medglot report    --input medicines.csv --output incomplete_route_names.json`,
		Version:       medglot.FullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.medglot.yaml)")
	pf.String("input", "", "CSV file of candidate item codes or catalog URLs")
	pf.String("target", "", "target language (e.g. bengali, hindi, gujarati)")
	pf.String("database-dsn", "", "Postgres connection string")
	pf.String("openai-key", "", "OpenAI API key")
	pf.String("openai-model", "gpt-4o", "OpenAI model")
	pf.String("openai-base-url", "", "custom OpenAI base URL")
	pf.String("redis-url", "", "Redis URL for the keyword cache (optional)")
	pf.String("ledger-dir", "logs", "directory for usage and incident ledgers")
	pf.Int("retries", 0, "retry attempts for retryable service failures")
	pf.Int("rpm", 0, "maximum service requests per minute (0 = unlimited)")

	cobra.CheckErr(viper.BindPFlag("input", pf.Lookup("input")))
	cobra.CheckErr(viper.BindPFlag("target", pf.Lookup("target")))
	cobra.CheckErr(viper.BindPFlag("database.dsn", pf.Lookup("database-dsn")))
	cobra.CheckErr(viper.BindPFlag("openai.api_key", pf.Lookup("openai-key")))
	cobra.CheckErr(viper.BindPFlag("openai.model", pf.Lookup("openai-model")))
	cobra.CheckErr(viper.BindPFlag("openai.base_url", pf.Lookup("openai-base-url")))
	cobra.CheckErr(viper.BindPFlag("redis.url", pf.Lookup("redis-url")))
	cobra.CheckErr(viper.BindPFlag("ledger.dir", pf.Lookup("ledger-dir")))
	cobra.CheckErr(viper.BindPFlag("retries", pf.Lookup("retries")))
	cobra.CheckErr(viper.BindPFlag("rpm", pf.Lookup("rpm")))

	rootCmd.AddCommand(newTranslateCommand())
	rootCmd.AddCommand(newKeywordsCommand())
	rootCmd.AddCommand(newMetaCommand())
	rootCmd.AddCommand(newReportCommand())

	return rootCmd
}

func initConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".medglot")
	}

	viper.SetEnvPrefix("MEDGLOT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
	return nil
}

// runtime bundles the dependencies every subcommand needs.
type runtime struct {
	log        *zap.Logger
	store      medglot.Store
	client     medglot.Client
	ledger     medglot.UsageLedger
	cache      medglot.KeywordCache
	target     medglot.Language
	candidates []medglot.Candidate
	cleanup    func()
}

func setup(ctx context.Context, needTarget bool) (*runtime, error) {
	log, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	rt := &runtime{log: log}
	rt.cleanup = func() { _ = log.Sync() }

	var target medglot.Language
	if needTarget {
		code := viper.GetString("target")
		var ok bool
		target, ok = medglot.LookupLanguage(code)
		if !ok {
			return nil, fmt.Errorf("unsupported target language %q", code)
		}
	}
	rt.target = target

	input := viper.GetString("input")
	if input == "" {
		return nil, fmt.Errorf("--input is required")
	}
	f, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	rt.candidates, err = medglot.ReadCandidates(f)
	_ = f.Close()
	if err != nil {
		return nil, err
	}
	if len(rt.candidates) == 0 {
		return nil, fmt.Errorf("no candidates found in %s", input)
	}

	dsn := viper.GetString("database.dsn")
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is required (--database-dsn or MEDGLOT_DATABASE_DSN)")
	}
	db, err := store.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	prev := rt.cleanup
	rt.cleanup = func() { _ = db.Close(); prev() }
	rt.store = store.NewPostgresStore(db)

	key := viper.GetString("openai.api_key")
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("OpenAI API key required (--openai-key or OPENAI_API_KEY)")
	}

	var client medglot.Client = provider.NewOpenAIClient(provider.OpenAIConfig{
		APIKey:  key,
		Model:   viper.GetString("openai.model"),
		BaseURL: viper.GetString("openai.base_url"),
	})
	// The limiter wraps the raw client so every attempt is paced, including
	// the ones the retrier issues.
	if rpm := viper.GetInt("rpm"); rpm > 0 {
		client = medglot.NewLimitedClient(client, medglot.NewRateLimiter(rpm))
	}
	client = provider.NewBreakerClient(client, provider.BreakerConfig{})
	if retries := viper.GetInt("retries"); retries > 0 {
		cfg := medglot.DefaultRetryConfig()
		cfg.MaxRetries = retries
		client = medglot.NewRetryableClient(client, cfg)
	}
	rt.client = client

	rt.ledger = ledger.NewFileLedger(viper.GetString("ledger.dir"))

	if url := viper.GetString("redis.url"); url != "" {
		rc, err := cache.NewRedisCache(cache.RedisConfig{URL: url})
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		rt.cache = rc
	} else {
		rt.cache = cache.NewMemoryCache(0)
	}

	return rt, nil
}

func newTranslateCommand() *cobra.Command {
	var reportPath string

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate candidate records into the target language",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx, true)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			orc := medglot.NewOrchestrator(rt.store, rt.client, rt.target,
				medglot.WithLedger(rt.ledger),
				medglot.WithKeywordCacheOption(rt.cache),
				medglot.WithLogger(rt.log),
			)

			report, err := orc.Run(ctx, rt.candidates)
			if err != nil {
				return err
			}

			rt.log.Info("run finished",
				zap.Int("done", report.Done),
				zap.Int("skipped", report.Skipped),
				zap.Int("failed", report.Failed))

			if len(report.IncompleteSources) > 0 && reportPath != "" {
				if err := medglot.WriteIncompleteReport(reportPath, report.IncompleteSources); err != nil {
					return err
				}
				rt.log.Info("incomplete-source report written",
					zap.String("path", reportPath),
					zap.Int("routes", len(report.IncompleteSources)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reportPath, "incomplete-report", "incomplete_route_names.json",
		"path for the incomplete-source JSON report")
	return cmd
}

func newKeywordsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keywords",
		Short: "Resolve or generate keyword sets for every candidate",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx, true)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			kp := medglot.NewKeywordProvider(rt.store, rt.client, rt.target,
				medglot.WithKeywordCache(rt.cache),
				medglot.WithKeywordLedger(rt.ledger),
			)

			routes, err := resolveRoutes(ctx, rt)
			if err != nil {
				return err
			}
			for _, route := range routes {
				if _, err := kp.Resolve(ctx, route); err != nil {
					rt.log.Error("keywords failed", zap.String("route", route), zap.Error(err))
					continue
				}
				rt.log.Info("keywords ready", zap.String("route", route))
			}
			return nil
		},
	}
}

func newMetaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "meta",
		Short: "Generate meta title and description for every candidate",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx, true)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			gen := medglot.NewMetaGenerator(rt.store, rt.client, rt.target, rt.ledger)

			routes, err := resolveRoutes(ctx, rt)
			if err != nil {
				return err
			}
			for _, route := range routes {
				if err := gen.Generate(ctx, route); err != nil {
					rt.log.Error("meta failed", zap.String("route", route), zap.Error(err))
					continue
				}
				rt.log.Info("meta saved", zap.String("route", route))
			}
			return nil
		},
	}
}

func newReportCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "List candidates whose source content is incomplete",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx, false)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			rep := medglot.NewIncompleteReport(rt.store, medglot.SourceLanguage)
			routes, err := rep.Collect(ctx, rt.candidates)
			if err != nil {
				return err
			}
			if len(routes) == 0 {
				rt.log.Info("all source content is complete")
				return nil
			}

			if err := medglot.WriteIncompleteReport(outPath, routes); err != nil {
				return err
			}
			rt.log.Info("report written", zap.String("path", outPath), zap.Int("routes", len(routes)))
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "output", "incomplete_route_names.json", "report output path")
	return cmd
}

// resolveRoutes turns the candidate list into route keys, dropping
// candidates that resolve to nothing.
func resolveRoutes(ctx context.Context, rt *runtime) ([]string, error) {
	var codes []string
	for _, c := range rt.candidates {
		if c.RouteKey == "" && c.ItemCode != "" {
			codes = append(codes, c.ItemCode)
		}
	}

	routeMap := map[string]string{}
	if len(codes) > 0 {
		var err error
		routeMap, err = rt.store.RouteKeys(ctx, codes)
		if err != nil {
			return nil, err
		}
	}

	var out []string
	for _, c := range rt.candidates {
		switch {
		case c.RouteKey != "":
			out = append(out, c.RouteKey)
		case routeMap[c.ItemCode] != "":
			out = append(out, routeMap[c.ItemCode])
		default:
			rt.log.Warn("no route key for item code", zap.String("code", c.ItemCode))
		}
	}
	return out, nil
}
