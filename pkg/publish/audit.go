package publish

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// AuditWriter dumps every flushed operation array to disk as a JSON
// artifact. The files are an audit trail only; nothing reads them back.
type AuditWriter struct {
	dir string
}

// NewAuditWriter creates a writer rooted at dir, creating it if needed.
func NewAuditWriter(dir string) (*AuditWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}
	return &AuditWriter{dir: dir}, nil
}

// Write serializes the edit's operations. The filename is deterministic
// from the operation count and the caller's record label.
func (w *AuditWriter) Write(edit Edit, label string) (string, error) {
	data, err := json.MarshalIndent(edit.Ops, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode audit artifact: %w", err)
	}

	name := fmt.Sprintf("publish_%d_op_%s.txt", len(edit.Ops), label)
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write audit artifact: %w", err)
	}
	return path, nil
}
