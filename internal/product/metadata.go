package product

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/climate-grid-etl/internal/domain"
)

// WriteMetadata writes doc as indented JSON to {dir}/{name} and returns the path.
func WriteMetadata(doc domain.MetadataDocument, dir, name string) (string, error) {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}
	return path, nil
}
