package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ppiankov/relcontext/internal/model"
	"github.com/ppiankov/relcontext/internal/tree"
)

// Output formats.
const (
	FormatJSON   = "json"
	FormatKernel = "kernel"
)

// Renderer writes relation instances as JSON lines or tree-kernel lines.
type Renderer struct {
	format string
}

// NewRenderer creates a renderer for format. Unknown formats are
// rejected.
func NewRenderer(format string) (*Renderer, error) {
	switch format {
	case "", FormatJSON:
		return &Renderer{format: FormatJSON}, nil
	case FormatKernel:
		return &Renderer{format: FormatKernel}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// Ext returns the file extension for the renderer's format.
func (r *Renderer) Ext() string {
	if r.format == FormatKernel {
		return ".kernel"
	}
	return ".jsonl"
}

// Render writes every instance of report to w, one per line.
func (r *Renderer) Render(w io.Writer, report *model.Report) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for i := range report.Instances {
		inst := &report.Instances[i]
		if r.format == FormatKernel {
			if _, err := bw.WriteString(KernelLine(inst) + "\n"); err != nil {
				return err
			}
			continue
		}
		if err := enc.Encode(inst); err != nil {
			return fmt.Errorf("encode instance %s: %w", inst.ID, err)
		}
	}
	return bw.Flush()
}

// RenderFile writes report to path, creating parent directories.
func (r *Renderer) RenderFile(report *model.Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := r.Render(f, report); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// KernelLine formats an instance for a tree-kernel learner: the two
// trees followed by the sequences, each sequence as a flat FAKEROOT
// tree.
//
//	<type> |BT| <constituent> |BT| <dependency>
//	  |BT| <words> |BT| <tags> |BT| <relations>
//	  |BT| <path words> |BT| <path> |BT| <path tags> |ET|
func KernelLine(inst *model.Instance) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(inst.TypeIndex))
	b.WriteString(" |BT| ")
	b.WriteString(inst.Constituent)
	b.WriteString(" |BT| ")
	b.WriteString(inst.Dependency)
	for _, seq := range [][]string{inst.Words, inst.Tags, inst.Relations, inst.PathWords, inst.Path, inst.PathTags} {
		b.WriteString(" |BT| ")
		writeSequence(&b, seq)
	}
	b.WriteString(" |ET|")
	return b.String()
}

func writeSequence(b *strings.Builder, seq []string) {
	b.WriteString("(FAKEROOT")
	for _, label := range seq {
		b.WriteString(" (")
		b.WriteString(tree.EscapeLabel(label))
		b.WriteString(")")
	}
	b.WriteString(")")
}
