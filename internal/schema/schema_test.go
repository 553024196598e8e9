package schema

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/akave-ai/alephweb/internal/model"
)

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"schema", "schema#"},
		{"schema#", "schema#"},
		{"/entity/person.json", "/entity/person.json#"},
		{"", "#"},
	}
	for _, tt := range tests {
		got := NormalizeID(tt.in)
		if got != tt.want {
			t.Fatalf("NormalizeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if NormalizeID(got) != got {
			t.Fatalf("NormalizeID is not idempotent for %q", tt.in)
		}
		if strings.HasSuffix(got, Terminator+Terminator) {
			t.Fatalf("double terminator for %q", tt.in)
		}
	}
}

func TestViews_TitleOnlyDescriptor(t *testing.T) {
	views, err := Views(context.Background(), MapStore{"schema": {"title": "Person"}})
	if err != nil {
		t.Fatalf("views: %v", err)
	}
	v, ok := views["schema#"]
	if !ok {
		t.Fatalf("views = %v", views)
	}
	if v.ID != "schema#" {
		t.Fatalf("id = %q", v.ID)
	}
	if v.Title == nil || *v.Title != "Person" {
		t.Fatalf("title = %v", v.Title)
	}
	if v.Plural == nil || *v.Plural != "Person" {
		t.Fatalf("plural = %v", v.Plural)
	}
	if v.FaIcon != nil || v.Description != nil || v.Inline {
		t.Fatalf("view = %+v", v)
	}
}

func TestProject_AllFields(t *testing.T) {
	v := Project("/entity/company.json#", model.SchemaDescriptor{
		"title":       "Company",
		"plural":      "Companies",
		"faIcon":      "fa-building",
		"description": "A legal entity",
		"inline":      true,
	})
	if *v.Plural != "Companies" || *v.FaIcon != "fa-building" || *v.Description != "A legal entity" || !v.Inline {
		t.Fatalf("view = %+v", v)
	}
}

func TestProject_ToleratesMissingAndMistypedFields(t *testing.T) {
	v := Project("x", model.SchemaDescriptor{"title": 12, "inline": "yes"})
	if v.Title != nil || v.Plural != nil || v.Inline {
		t.Fatalf("view = %+v", v)
	}
	empty := Project("y", nil)
	if empty.ID != "y#" || empty.Title != nil {
		t.Fatalf("view = %+v", empty)
	}
}

func TestProject_ExplicitNullPlural(t *testing.T) {
	v := Project("x", model.SchemaDescriptor{"title": "Person", "plural": nil})
	if v.Plural != nil {
		t.Fatalf("plural = %q, want nil", *v.Plural)
	}
	v = Project("x", model.SchemaDescriptor{"title": "Person"})
	if v.Plural == nil || *v.Plural != "Person" {
		t.Fatalf("plural = %v, want Person", v.Plural)
	}
}

func TestViews_PrefersTerminatedID(t *testing.T) {
	store := MapStore{
		"a":  {"title": "plain"},
		"a#": {"title": "terminated"},
	}
	for i := 0; i < 20; i++ {
		views, err := Views(context.Background(), store)
		if err != nil {
			t.Fatalf("views: %v", err)
		}
		if len(views) != 1 || *views["a#"].Title != "terminated" {
			t.Fatalf("views = %+v", views)
		}
	}
}

func TestViews_PluralFallsBackForAll(t *testing.T) {
	store := MapStore{
		"a": {"title": "A"},
		"b": {"title": "B", "plural": "Bs"},
		"c": {},
	}
	views, err := Views(context.Background(), store)
	if err != nil {
		t.Fatalf("views: %v", err)
	}
	for id, desc := range store {
		v := views[NormalizeID(id)]
		if _, has := desc["plural"]; has {
			continue
		}
		if (v.Plural == nil) != (v.Title == nil) || (v.Plural != nil && *v.Plural != *v.Title) {
			t.Fatalf("%s: plural %v != title %v", id, v.Plural, v.Title)
		}
	}
}

type failingStore struct{}

func (failingStore) Schemata(context.Context) (map[string]model.SchemaDescriptor, error) {
	return nil, errors.New("db down")
}

func TestViews_StoreError(t *testing.T) {
	if _, err := Views(context.Background(), failingStore{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadFileStore(t *testing.T) {
	fsys := fstest.MapFS{
		"schema/person.json":       {Data: []byte(`{"id": "/entity/person.json#", "title": "Person"}`)},
		"schema/nested/thing.json": {Data: []byte(`{"title": "Thing"}`)},
		"schema/README.md":         {Data: []byte("ignored")},
	}
	store, err := LoadFileStore(fsys, "schema")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	docs, _ := store.Schemata(context.Background())
	if store.Len() != 2 {
		t.Fatalf("docs = %v", docs)
	}
	if docs["/entity/person.json#"]["title"] != "Person" {
		t.Fatalf("docs = %v", docs)
	}
	if docs["thing"]["title"] != "Thing" {
		t.Fatalf("docs = %v", docs)
	}
}

func TestLoadFileStore_Errors(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"bad json", fstest.MapFS{"s/a.json": {Data: []byte("{")}}},
		{"duplicate id", fstest.MapFS{
			"s/a.json": {Data: []byte(`{"id": "x"}`)},
			"s/b.json": {Data: []byte(`{"id": "x"}`)},
		}},
		{"missing dir", fstest.MapFS{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFileStore(tt.fsys, "s"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
