// Package corpus reads the document corpus consumed by ingestion: a
// directory of plain-text files, one document per file. How those files are
// produced (scraping, export, manual drop) is outside this system, the
// directory is the contract.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/54b3r/newsrag-go/internal/rag"
)

// ReadDir reads every *.txt file under dir (non-recursive) and returns one
// Document per file, ordered by file name for reproducible ingestion runs.
// The document's SourceID is the file base name, including extension, so it
// stays stable across machines with different directory prefixes.
// Empty files are skipped.
func ReadDir(dir string) ([]rag.Document, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("corpus: bad directory pattern: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("corpus: no *.txt files found in %s", dir)
	}
	sort.Strings(paths)

	docs := make([]rag.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("corpus: read %s: %w", path, err)
		}
		if len(data) == 0 {
			continue
		}
		docs = append(docs, rag.Document{
			SourceID: filepath.Base(path),
			Text:     string(data),
		})
	}

	return docs, nil
}
