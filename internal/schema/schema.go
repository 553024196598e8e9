// Package schema projects externally owned schema documents into the view
// served by the metadata endpoint.
package schema

import (
	"context"
	"strings"

	"github.com/akave-ai/alephweb/internal/model"
)

// Terminator ends every schema identifier exposed to clients.
const Terminator = "#"

// Store is a read-only source of schema documents keyed by identifier.
type Store interface {
	Schemata(ctx context.Context) (map[string]model.SchemaDescriptor, error)
}

// MapStore is a Store over a fixed map.
type MapStore map[string]model.SchemaDescriptor

func (m MapStore) Schemata(context.Context) (map[string]model.SchemaDescriptor, error) {
	return m, nil
}

// NormalizeID appends the terminator unless id already ends with it.
func NormalizeID(id string) string {
	if strings.HasSuffix(id, Terminator) {
		return id
	}
	return id + Terminator
}

// Project builds the client view of desc. Missing or mistyped optional
// fields come out as nil (inline as false); an absent plural falls back to title.
func Project(id string, desc model.SchemaDescriptor) model.SchemaView {
	title := stringField(desc, "title")
	// only an absent plural falls back; an explicit null stays null
	plural := title
	if _, ok := desc["plural"]; ok {
		plural = stringField(desc, "plural")
	}
	inline, _ := desc["inline"].(bool)
	return model.SchemaView{
		ID:          NormalizeID(id),
		Title:       title,
		FaIcon:      stringField(desc, "faIcon"),
		Plural:      plural,
		Description: stringField(desc, "description"),
		Inline:      inline,
	}
}

// Views returns the projection of every schema in store, keyed by normalized id.
// When two stored ids normalize to the same key, the one already ending in
// the terminator wins.
func Views(ctx context.Context, store Store) (map[string]model.SchemaView, error) {
	docs, err := store.Schemata(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.SchemaView, len(docs))
	for id, desc := range docs {
		key := NormalizeID(id)
		if _, taken := out[key]; taken && id != key {
			continue
		}
		out[key] = Project(id, desc)
	}
	return out, nil
}

func stringField(desc model.SchemaDescriptor, key string) *string {
	s, ok := desc[key].(string)
	if !ok {
		return nil
	}
	return &s
}
