// Package corpus reads annotated documents from disk.
package corpus

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ppiankov/relcontext/internal/model"
)

// ErrUnknownFormat is returned for files Load cannot dispatch.
var ErrUnknownFormat = errors.New("unknown document format")

// Load reads a document, choosing the reader by file name: ".json" for
// JSON documents, ".apf.xml" or ".sgm" for ACE annotation pairs.
func Load(path string) (*model.Document, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".json"):
		return LoadJSON(path)
	case strings.HasSuffix(lower, ".apf.xml"):
		return LoadACE(path)
	case strings.HasSuffix(lower, ".sgm"):
		return LoadACE(strings.TrimSuffix(path, filepath.Ext(path)) + ".apf.xml")
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}
