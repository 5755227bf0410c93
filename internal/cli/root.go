package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/relcontext/internal/cache"
	"github.com/ppiankov/relcontext/internal/logging"
	"github.com/ppiankov/relcontext/internal/model"
	"github.com/ppiankov/relcontext/internal/parser"
	"github.com/ppiankov/relcontext/internal/pipeline"
)

const version = "relcontext v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "relcontext",
	Short: "Relcontext - relation contexts from parsed, entity-annotated text",
	Long: `Relcontext aligns annotated entity mentions with constituent and
dependency parses and extracts, for every mention pair in a sentence,
the tree fragments connecting the two mentions.

Output is one relation instance per pair, as JSON lines or as input
lines for a tree-kernel learner.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.relcontext/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// envKeys are the settings that may come from RELCONTEXT_* variables,
// e.g. RELCONTEXT_PARSER_URL.
var envKeys = []string{
	"parser.url", "parser.annotators", "parser.timeout", "parser.http_proxy", "parser.https_proxy",
	"parser.requests_per_second", "parser.burst",
	"cache.enabled", "cache.dir",
	"output.format",
	"concurrency.workers",
	"log.level", "log.format",
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".relcontext"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("RELCONTEXT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file and environment over the defaults.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// newPipeline wires the parser client, its annotation cache and the
// extraction pipeline from cfg.
func newPipeline(cfg *model.Config) (*pipeline.Pipeline, *zap.Logger, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	client, err := parser.NewClient(cfg.Parser,
		parser.WithCache(cache.New(cfg.Cache)),
		parser.WithLogger(logger.Named("parser")),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("parser client: %w", err)
	}
	return pipeline.NewPipeline(cfg, client, logger.Named("pipeline")), logger, nil
}
