package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/relcontext/internal/pipeline"
)

var (
	annotationPath string
	outputFormat   string
	outPath        string
	timeout        time.Duration
	noCache        bool
	parserURL      string
	httpProxy      string
	httpsProxy     string
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <document>",
	Short: "Extract relation instances from one annotated document",
	Long: `Extract reads one annotated document (.json, or an ACE .apf.xml/.sgm
pair), parses it, aligns the entity mentions with the parse trees and
writes one relation instance per mention pair.

A pre-computed parser annotation is taken from --annotation, or from
<document>.corenlp.json when that file exists; otherwise the text is sent
to the configured parser server.

Example:
  relcontext extract doc.json
  relcontext extract APW20001001.apf.xml --format kernel --out doc.kernel
  relcontext extract doc.json --annotation doc.corenlp.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&annotationPath, "annotation", "", "pre-computed parser annotation (CoreNLP JSON)")
	extractCmd.Flags().StringVar(&outputFormat, "format", "json", "output format (json, kernel)")
	extractCmd.Flags().StringVar(&outPath, "out", "", "output path (default: stdout)")
	addParserFlags(extractCmd)
}

// addParserFlags registers the flags shared by commands that may call
// the parser server.
func addParserFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable annotation cache")
	cmd.Flags().StringVar(&parserURL, "parser-url", "", "parser server URL (overrides config)")
	cmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	cmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	docPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyParserFlags(cmd, cfg)
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = outputFormat
	}

	renderer, err := pipeline.NewRenderer(cfg.Output.Format)
	if err != nil {
		return err
	}
	p, logger, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("extracting", zap.String("document", docPath), zap.String("format", cfg.Output.Format))
	report, err := p.ProcessFileWithAnnotation(ctx, docPath, annotationPath)
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	if outPath == "" {
		if err := renderer.Render(os.Stdout, report); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	} else if err := renderer.RenderFile(report, outPath); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if cfg.Output.Verbose {
		printStats(report.Stats)
	}
	return nil
}
