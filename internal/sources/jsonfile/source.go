// Package jsonfile loads channel records from JSON exports, either local
// files or HTTP endpoints. The exchange format is a JSON array of channel
// objects, optionally wrapped in a {"channels": [...]} envelope.
package jsonfile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"iptvstream/catalogservice/internal/domain"
)

const (
	defaultUserAgent   = "iptv-catalog-service/1.0"
	defaultHTTPTimeout = 20 * time.Second
	maxPayloadBytes    = 64 << 20
)

type Config struct {
	Name      string
	Label     string
	Path      string
	UserAgent string
	Client    *http.Client
}

// Source reads one JSON channel export per Load call. Loads are stateless,
// so a Source is safe for concurrent use.
type Source struct {
	name      string
	label     string
	path      string
	userAgent string
	client    *http.Client
	remote    bool
}

type envelope struct {
	Channels []domain.Channel `json:"channels"`
}

func New(cfg Config) *Source {
	name := strings.ToLower(strings.TrimSpace(cfg.Name))
	label := strings.TrimSpace(cfg.Label)
	if label == "" {
		label = name
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	path := strings.TrimSpace(cfg.Path)
	return &Source{
		name:      name,
		label:     label,
		path:      path,
		userAgent: userAgent,
		client:    client,
		remote:    strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"),
	}
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) Info() domain.SourceInfo {
	kind := "file"
	if s.remote {
		kind = "http"
	}
	return domain.SourceInfo{
		Name:    s.name,
		Label:   s.label,
		Kind:    kind,
		Enabled: s.path != "",
	}
}

func (s *Source) Load(ctx context.Context) ([]domain.Channel, error) {
	if s.path == "" {
		return nil, fmt.Errorf("source %q has no path configured", s.name)
	}

	var (
		data []byte
		err  error
	)
	if s.remote {
		data, err = s.fetch(ctx)
	} else {
		data, err = os.ReadFile(s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("load source %q: %w", s.name, err)
	}

	channels, err := decodeChannels(data)
	if err != nil {
		return nil, fmt.Errorf("decode source %q: %w", s.name, err)
	}

	for i := range channels {
		if channels[i].Metadata.Source == "" {
			channels[i].Metadata.Source = s.name
		}
		if channels[i].Metadata.SourceFile == "" {
			channels[i].Metadata.SourceFile = s.path
		}
	}
	return channels, nil
}

func (s *Source) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
}

// decodeChannels accepts both a bare array and the channels envelope.
func decodeChannels(data []byte) ([]domain.Channel, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var channels []domain.Channel
		if err := json.Unmarshal(data, &channels); err != nil {
			return nil, err
		}
		return channels, nil
	}
	var wrapped envelope
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Channels, nil
}
