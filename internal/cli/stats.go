package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/relcontext/internal/model"
)

// applyParserFlags lets explicitly set command flags override the
// loaded parser and cache settings.
func applyParserFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("parser-url") {
		cfg.Parser.URL = parserURL
	}
	if flags.Changed("http-proxy") {
		cfg.Parser.HTTPProxy = httpProxy
	}
	if flags.Changed("https-proxy") {
		cfg.Parser.HTTPSProxy = httpsProxy
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
}

func printStats(s model.Stats) {
	fmt.Fprintf(os.Stderr, "  Sentences:        %d (%d dropped)\n", s.Sentences, s.DroppedSentences)
	fmt.Fprintf(os.Stderr, "  Mentions:         %d (%d unassigned)\n", s.Mentions, s.Unassigned)
	fmt.Fprintf(os.Stderr, "  Pairs:            %d\n", s.Pairs)
	fmt.Fprintf(os.Stderr, "  Out of sentence:  %d\n", s.OutOfSentence)
	fmt.Fprintf(os.Stderr, "  Untagged:         %d\n", s.Untagged)
	fmt.Fprintf(os.Stderr, "  Instances:        %d positive, %d negative\n", s.Positive, s.Negative)
	fmt.Fprintf(os.Stderr, "\n")
}
