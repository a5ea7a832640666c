package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/leadlens/leadlens/internal/model"
)

// FileSource replays a saved candidate list from a JSON file. It serves
// offline runs and tests; the query string is ignored beyond logging.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed candidate source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Search loads every candidate from the file, regardless of query.
func (s *FileSource) Search(ctx context.Context, query string) ([]model.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("discovery: read candidate file: %w", err)
	}
	var candidates []model.Candidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("discovery: parse candidate file %s: %w", s.path, err)
	}
	return candidates, nil
}
