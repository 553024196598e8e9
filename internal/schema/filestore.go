package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/akave-ai/alephweb/internal/model"
)

// FileStore holds schema documents loaded once from a directory of JSON files.
// Each document is keyed by its "id" (or "$id") field, else by its file name
// without extension.
type FileStore struct {
	docs map[string]model.SchemaDescriptor
}

// LoadFileStore reads every *.json file under root in fsys.
func LoadFileStore(fsys fs.FS, root string) (*FileStore, error) {
	docs := make(map[string]model.SchemaDescriptor)
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".json" {
			return nil
		}
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		var doc model.SchemaDescriptor
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("decode %s: %w", p, err)
		}
		id := documentID(doc)
		if id == "" {
			id = strings.TrimSuffix(path.Base(p), ".json")
		}
		if _, dup := docs[id]; dup {
			return fmt.Errorf("duplicate schema id %q in %s", id, p)
		}
		docs[id] = doc
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load schemata: %w", err)
	}
	return &FileStore{docs: docs}, nil
}

func documentID(doc model.SchemaDescriptor) string {
	for _, key := range []string{"id", "$id"} {
		if id, ok := doc[key].(string); ok && id != "" {
			return id
		}
	}
	return ""
}

// Schemata returns the loaded documents. The map must not be modified.
func (s *FileStore) Schemata(context.Context) (map[string]model.SchemaDescriptor, error) {
	return s.docs, nil
}

// Len returns the number of loaded documents.
func (s *FileStore) Len() int {
	return len(s.docs)
}
