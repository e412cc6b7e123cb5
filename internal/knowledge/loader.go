package knowledge

import (
	"context"
	"fmt"
	"os"
)

// LoadFile ingests a knowledge text file at startup. A missing file is
// not an error since deployments may seed the knowledge base over the
// API instead. Chunks are appended to whatever is already stored.
func (s *Store) LoadFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		fmt.Printf("[KNOWLEDGE] No knowledge file at %s, skipping startup load\n", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read knowledge file %s: %v", path, err)
	}

	count, err := s.AddDocument(ctx, string(data))
	if err != nil {
		return err
	}

	fmt.Printf("[KNOWLEDGE] Loaded %d chunks from %s\n", count, path)
	return nil
}
