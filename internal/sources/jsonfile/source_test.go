package jsonfile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const sampleExport = `{
  "channels": [
    {"id": "caracol-hd", "name": "Caracol TV HD", "streamUrl": "http://example.com/caracol", "category": "news"},
    {"id": "cnn", "name": "CNN Internacional", "streamUrl": "http://example.com/cnn", "metadata": {"source": "custom"}}
  ]
}`

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.json")
	if err := os.WriteFile(path, []byte(sampleExport), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	source := New(Config{Name: "CSV", Path: path})
	channels, err := source.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(channels))
	}
	if channels[0].Metadata.Source != "csv" {
		t.Fatalf("missing source metadata must default to source name, got %q", channels[0].Metadata.Source)
	}
	if channels[1].Metadata.Source != "custom" {
		t.Fatalf("explicit source metadata must be kept, got %q", channels[1].Metadata.Source)
	}
	if channels[0].Metadata.SourceFile != path {
		t.Fatalf("source file must record the load path, got %q", channels[0].Metadata.SourceFile)
	}
}

func TestLoadBareArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.json")
	payload := `[{"id": "c1", "name": "Canal Uno", "streamUrl": "http://example.com/1"}]`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	channels, err := New(Config{Name: "m3u", Path: path}).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(channels) != 1 || channels[0].Name != "Canal Uno" {
		t.Fatalf("unexpected channels: %+v", channels)
	}
}

func TestLoadFromHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("unexpected accept header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleExport))
	}))
	defer server.Close()

	source := New(Config{Name: "remote", Path: server.URL})
	if kind := source.Info().Kind; kind != "http" {
		t.Fatalf("expected http kind, got %q", kind)
	}
	channels, err := source.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(channels))
	}
}

func TestLoadHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	if _, err := New(Config{Name: "remote", Path: server.URL}).Load(context.Background()); err == nil {
		t.Fatalf("expected error on non-200 status")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := New(Config{Name: "csv", Path: "/does/not/exist.json"}).Load(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := New(Config{Name: "csv", Path: path}).Load(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	source := New(Config{Name: "csv"})
	if source.Info().Enabled {
		t.Fatalf("source without a path must report disabled")
	}
	if _, err := source.Load(context.Background()); err == nil {
		t.Fatalf("expected error without a path")
	}
}
