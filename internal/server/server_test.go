package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/akave-ai/alephweb/internal/config"
	"github.com/akave-ai/alephweb/internal/schema"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	static := t.TempDir()
	if err := os.WriteFile(filepath.Join(static, "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}
	return &config.Config{
		Primary: config.Primary{Env: "test"},
		Server:  config.ServerConfig{Port: "0"},
		Auth:    config.AuthConfig{Source: "static", Keys: []string{"adminkey=root:Root:admin", "userkey=jane"}},
		Telemetry: &config.TelemetryConfig{
			Sinks:       []string{"log"},
			QueueSize:   16,
			EmitTimeout: time.Second,
		},
		Cache:         config.CacheConfig{MaxAge: 60},
		UI:            config.UIConfig{StaticDir: static, Title: "Aleph"},
		Observability: config.DefaultObservabilityConfig(),
	}
}

func get(s *Server, target, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if apiKey != "" {
		req.Header.Set("Authorization", "ApiKey "+apiKey)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func TestServer_Routes(t *testing.T) {
	var logs bytes.Buffer
	s, err := New(context.Background(), testConfig(t), Deps{
		Logger:   zerolog.New(&logs),
		Schemata: schema.MapStore{"schema": {"title": "Person"}},
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	for _, p := range []string{"/", "/search", "/help/a/b", "/entities/1", "/tabular/1/2", "/text/x"} {
		rec := get(s, p, "")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<title>Aleph</title>") {
			t.Errorf("%s: %d", p, rec.Code)
		}
	}

	rec := get(s, "/api/1/metadata", "")
	var meta map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &meta); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	schemata, _ := meta["schemata"].(map[string]any)
	if meta["status"] != "ok" || schemata["schema#"] == nil {
		t.Fatalf("metadata = %v", meta)
	}

	if rec := get(s, "/static/app.js", ""); rec.Code != http.StatusOK {
		t.Fatalf("static: %d", rec.Code)
	}

	rec = get(s, "/api/1/telemetry/status", "userkey")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status as user: %d", rec.Code)
	}
	var denied map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &denied); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if denied["status"] != "error" || denied["roles"] == nil {
		t.Fatalf("denied = %v", denied)
	}

	if rec := get(s, "/api/1/telemetry/status", "adminkey"); rec.Code != http.StatusOK {
		t.Fatalf("status as admin: %d", rec.Code)
	}
	if rec := get(s, "/api/1/nothing", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route: %d", rec.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	out := logs.String()
	if !strings.Contains(out, `"origin":"alephweb.views.metadata"`) {
		t.Errorf("metadata request not reported:\n%s", out)
	}
	if !strings.Contains(out, `"role":"jane"`) {
		t.Errorf("role not reported:\n%s", out)
	}
	if strings.Contains(out, "alephweb.views.static") {
		t.Errorf("static request reported:\n%s", out)
	}
	if strings.Contains(out, "userkey") || strings.Contains(out, "adminkey") {
		t.Errorf("api key leaked into logs:\n%s", out)
	}
	stats := s.Reporter.Stats()
	if stats.Reported != 10 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestServer_QueryAPIKeyNotLogged(t *testing.T) {
	var logs bytes.Buffer
	s, err := New(context.Background(), testConfig(t), Deps{
		Logger:   zerolog.New(&logs),
		Schemata: schema.MapStore{},
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	if rec := get(s, "/api/1/metadata?api_key=userkey", ""); rec.Code != http.StatusOK {
		t.Fatalf("metadata: %d", rec.Code)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	out := logs.String()
	if !strings.Contains(out, `"role":"jane"`) {
		t.Fatalf("query key did not authenticate:\n%s", out)
	}
	if strings.Contains(out, "userkey") {
		t.Fatalf("api key written to log sink:\n%s", out)
	}
}

func TestNew_RejectsUnknownSink(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.Sinks = []string{"carrier-pigeon"}
	_, err := New(context.Background(), cfg, Deps{Logger: zerolog.Nop(), Schemata: schema.MapStore{}})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_LoadsSchemaDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.Schema = config.SchemaConfig{Source: "file", Dir: t.TempDir()}
	doc := `{"id": "https://aleph.example/entity.json", "title": "Entity"}`
	if err := os.WriteFile(filepath.Join(cfg.Schema.Dir, "entity.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := New(context.Background(), cfg, Deps{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Shutdown(context.Background())

	rec := get(s, "/api/1/metadata", "")
	if !strings.Contains(rec.Body.String(), `"https://aleph.example/entity.json#"`) {
		t.Fatalf("metadata = %s", rec.Body.String())
	}
}

func TestNew_MissingSchemaDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.Schema = config.SchemaConfig{Source: "file", Dir: filepath.Join(t.TempDir(), "absent")}
	s, err := New(context.Background(), cfg, Deps{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Shutdown(context.Background())

	rec := get(s, "/api/1/metadata", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"schemata":{}`) {
		t.Fatalf("%d %s", rec.Code, rec.Body.String())
	}
}
