package dedup

import (
	"fmt"
	"strings"
	"testing"

	"iptvstream/catalogservice/internal/domain"
)

func testChannel(name, streamURL, source string) domain.Channel {
	return domain.Channel{
		Name:      name,
		StreamURL: streamURL,
		Metadata:  domain.ChannelMetadata{Source: source},
	}
}

func TestDeduplicateDisabledPassesThrough(t *testing.T) {
	cfg := domain.DefaultDeduplicationConfig()
	cfg.Enabled = false
	engine := NewEngine(cfg, nil)

	input := []domain.Channel{
		testChannel("Caracol TV HD", "http://a/1", "m3u"),
		testChannel("Caracol TV SD", "http://b/2", "m3u"),
	}
	out, metrics := engine.Deduplicate(input)
	if len(out) != 2 {
		t.Fatalf("disabled engine must not remove channels, got %d", len(out))
	}
	if metrics.DuplicatesFound != 0 || metrics.DuplicatesRemoved != 0 {
		t.Fatalf("disabled engine must report zero duplicates: %+v", metrics)
	}
	if metrics.TotalChannels != 2 {
		t.Fatalf("total channels = %d, want 2", metrics.TotalChannels)
	}
}

func TestDeduplicateUpgradesSDToHD(t *testing.T) {
	engine := NewEngine(domain.DefaultDeduplicationConfig(), nil)

	out, metrics := engine.Deduplicate([]domain.Channel{
		testChannel("CARACOL TV SD", "http://a/1", "m3u"),
		testChannel("CARACOL TV HD", "http://b/2", "m3u"),
	})
	if len(out) != 1 {
		t.Fatalf("expected one survivor, got %d", len(out))
	}
	if out[0].Name != "CARACOL TV HD" {
		t.Fatalf("HD record must survive, got %q", out[0].Name)
	}
	if metrics.DuplicatesFound != 1 || metrics.DuplicatesRemoved != 1 {
		t.Fatalf("expected one duplicate: %+v", metrics)
	}
	if metrics.HDUpgrades != 1 {
		t.Fatalf("HD upgrades = %d, want 1", metrics.HDUpgrades)
	}
	if metrics.DuplicatesByType["name_similarity"] != 1 {
		t.Fatalf("unexpected match type breakdown: %v", metrics.DuplicatesByType)
	}
}

func TestDeduplicateProtectsHDRegardlessOfOrder(t *testing.T) {
	engine := NewEngine(domain.DefaultDeduplicationConfig(), nil)

	out, metrics := engine.Deduplicate([]domain.Channel{
		testChannel("CARACOL TV HD", "http://a/1", "m3u"),
		testChannel("CARACOL TV SD", "http://b/2", "m3u"),
	})
	if len(out) != 1 || out[0].Name != "CARACOL TV HD" {
		t.Fatalf("HD record must survive either input order, got %+v", out)
	}
	if metrics.HDUpgrades != 0 {
		t.Fatalf("protecting HD is not an upgrade: %+v", metrics)
	}
}

func TestDeduplicateIsIdempotent(t *testing.T) {
	engine := NewEngine(domain.DefaultDeduplicationConfig(), nil)

	input := []domain.Channel{
		testChannel("CARACOL TV SD", "http://a/1", "m3u"),
		testChannel("CARACOL TV HD", "http://b/2", "m3u"),
		testChannel("CNN Internacional", "http://c/3", "csv"),
		testChannel("105 - CNN Internacional", "http://d/4", "m3u"),
		testChannel("Discovery Channel", "http://e/5", "csv"),
	}
	first, _ := engine.Deduplicate(input)
	second, metrics := engine.Deduplicate(first)
	if len(second) != len(first) {
		t.Fatalf("second pass removed channels: %d vs %d", len(second), len(first))
	}
	if metrics.DuplicatesFound != 0 {
		t.Fatalf("second pass must find nothing: %+v", metrics)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("second pass reordered survivors at %d", i)
		}
	}
}

func TestDeduplicateStripsNumericPrefixes(t *testing.T) {
	engine := NewEngine(domain.DefaultDeduplicationConfig(), nil)

	out, metrics := engine.Deduplicate([]domain.Channel{
		testChannel("105 - CNN", "http://a/1", "m3u"),
		testChannel("CNN", "http://b/2", "csv"),
	})
	if len(out) != 1 {
		t.Fatalf("prefix variants must collapse, got %d survivors", len(out))
	}
	if metrics.DeduplicationRate != "50.00%" {
		t.Fatalf("rate = %q, want \"50.00%%\"", metrics.DeduplicationRate)
	}
}

func TestDeduplicateThresholdIsInclusive(t *testing.T) {
	// 3 edits over 20 runes scores exactly the default 0.85 threshold.
	engine := NewEngine(domain.DefaultDeduplicationConfig(), nil)

	out, _ := engine.Deduplicate([]domain.Channel{
		testChannel("abcdefghijklmnopqrst", "http://a/1", "m3u"),
		testChannel("abcdefghijklmnopqxyz", "http://b/2", "m3u"),
	})
	if len(out) != 1 {
		t.Fatalf("similarity at the threshold must count as a match, got %d survivors", len(out))
	}
}

func TestDeduplicateExactStreamURLMatch(t *testing.T) {
	engine := NewEngine(domain.DefaultDeduplicationConfig(), nil)

	out, metrics := engine.Deduplicate([]domain.Channel{
		testChannel("Caracol Television", "http://host/live/77", "m3u"),
		testChannel("Caracol Bogota Feed", "http://host/live/77", "csv"),
	})
	if len(out) != 1 {
		t.Fatalf("identical stream URLs must collapse, got %d survivors", len(out))
	}
	if metrics.DuplicatesByType["stream_url"] != 1 {
		t.Fatalf("unexpected match type breakdown: %v", metrics.DuplicatesByType)
	}
}

func TestDeduplicateURLSimilarityIgnoresTokens(t *testing.T) {
	engine := NewEngine(domain.DefaultDeduplicationConfig(), nil)

	out, metrics := engine.Deduplicate([]domain.Channel{
		testChannel("Caracol Television", "http://host/live/77?token=aaa", "m3u"),
		testChannel("Caracol Bogota Feed", "http://host/live/77?token=bbb", "csv"),
	})
	if len(out) != 1 {
		t.Fatalf("token-only URL variants must collapse, got %d survivors", len(out))
	}
	if metrics.DuplicatesByType["url_similarity"] != 1 {
		t.Fatalf("unexpected match type breakdown: %v", metrics.DuplicatesByType)
	}
}

func TestDeduplicateSourcePriority(t *testing.T) {
	cfg := domain.DefaultDeduplicationConfig()
	cfg.Strategy = domain.StrategyPrioritizeSource
	engine := NewEngine(cfg, nil)

	out, metrics := engine.Deduplicate([]domain.Channel{
		testChannel("Canal Uno", "http://a/1", "m3u"),
		testChannel("Canal 1", "http://b/2", "csv"),
	})
	if len(out) != 1 {
		t.Fatalf("expected one survivor, got %d", len(out))
	}
	if out[0].Metadata.Source != "csv" {
		t.Fatalf("csv source must win, got %q", out[0].Metadata.Source)
	}
	if metrics.SourceConflicts != 1 {
		t.Fatalf("source conflicts = %d, want 1", metrics.SourceConflicts)
	}
}

func TestDeduplicateIDExactMode(t *testing.T) {
	cfg := domain.DefaultDeduplicationConfig()
	cfg.Criteria = domain.MatchIDExact
	engine := NewEngine(cfg, nil)

	a := testChannel("Caracol HD", "http://a/1", "m3u")
	a.ID = "caracol"
	b := testChannel("Caracol SD", "http://b/2", "csv")
	b.ID = "caracol"
	c := testChannel("Caracol Internacional", "http://c/3", "csv")
	c.ID = "caracol-int"

	out, metrics := engine.Deduplicate([]domain.Channel{a, b, c})
	if len(out) != 2 {
		t.Fatalf("expected two survivors, got %d", len(out))
	}
	if metrics.DuplicatesByType["id"] != 1 {
		t.Fatalf("unexpected match type breakdown: %v", metrics.DuplicatesByType)
	}
}

func TestDeduplicateIDExactIgnoresSimilarNames(t *testing.T) {
	cfg := domain.DefaultDeduplicationConfig()
	cfg.Criteria = domain.MatchIDExact
	engine := NewEngine(cfg, nil)

	a := testChannel("Caracol TV HD", "http://a/1", "m3u")
	a.ID = "c1"
	b := testChannel("Caracol TV SD", "http://b/2", "m3u")
	b.ID = "c2"

	out, _ := engine.Deduplicate([]domain.Channel{a, b})
	if len(out) != 2 {
		t.Fatalf("distinct IDs must never collapse in id_exact mode, got %d", len(out))
	}
}

func TestDeduplicateEmptyIDsNeverCollide(t *testing.T) {
	cfg := domain.DefaultDeduplicationConfig()
	cfg.Criteria = domain.MatchIDExact
	engine := NewEngine(cfg, nil)

	out, _ := engine.Deduplicate([]domain.Channel{
		testChannel("Caracol TV", "http://a/1", "m3u"),
		testChannel("Discovery", "http://b/2", "m3u"),
	})
	if len(out) != 2 {
		t.Fatalf("empty IDs must not collide, got %d survivors", len(out))
	}
}

func TestDeduplicateIgnoreFilesBypass(t *testing.T) {
	cfg := domain.DefaultDeduplicationConfig()
	cfg.IgnoreFiles = []string{"local_"}
	engine := NewEngine(cfg, nil)

	protectedChannel := testChannel("Caracol TV HD", "http://a/1", "m3u")
	protectedChannel.Metadata.SourceFile = "lists/local_test.m3u"

	out, metrics := engine.Deduplicate([]domain.Channel{
		testChannel("Caracol TV HD", "http://b/2", "m3u"),
		protectedChannel,
	})
	if len(out) != 2 {
		t.Fatalf("ignored files must bypass deduplication, got %d survivors", len(out))
	}
	if metrics.DuplicatesFound != 0 {
		t.Fatalf("bypassed channels must not count as duplicates: %+v", metrics)
	}
}

func TestDeduplicateKeepLastReplacesInPlace(t *testing.T) {
	cfg := domain.DefaultDeduplicationConfig()
	cfg.Strategy = domain.StrategyKeepLast
	engine := NewEngine(cfg, nil)

	out, _ := engine.Deduplicate([]domain.Channel{
		testChannel("Caracol TV SD", "http://a/1", "m3u"),
		testChannel("Discovery Channel", "http://b/2", "csv"),
		testChannel("Caracol TV HD", "http://c/3", "csv"),
	})
	if len(out) != 2 {
		t.Fatalf("expected two survivors, got %d", len(out))
	}
	// keep_last takes the newest record but preserves first-seen position.
	if out[0].Name != "Caracol TV HD" || out[1].Name != "Discovery Channel" {
		t.Fatalf("unexpected survivor order: %q, %q", out[0].Name, out[1].Name)
	}
}

func TestDeduplicateMetricsConsistency(t *testing.T) {
	engine := NewEngine(domain.DefaultDeduplicationConfig(), nil)

	bases := []string{"Caracol", "Discovery", "Natgeo", "Telemundo"}
	input := make([]domain.Channel, 0, 2*len(bases))
	for _, base := range bases {
		host := strings.ToLower(base)
		input = append(input,
			testChannel(base+" HD", fmt.Sprintf("http://%s.example.com/hd", host), "m3u"),
			testChannel(base+" SD", fmt.Sprintf("http://%s.example.net/sd", host), "csv"),
		)
	}
	out, metrics := engine.Deduplicate(input)

	if metrics.DuplicatesFound != metrics.DuplicatesRemoved {
		t.Fatalf("found and removed must move in lockstep: %+v", metrics)
	}
	if got := len(input) - len(out); got != metrics.DuplicatesRemoved {
		t.Fatalf("removed count %d does not match shrink %d", metrics.DuplicatesRemoved, got)
	}
	if metrics.ProcessingTimeMS < 1 {
		t.Fatalf("processing time must be at least 1ms, got %d", metrics.ProcessingTimeMS)
	}
	total := 0
	for _, count := range metrics.DuplicatesByType {
		total += count
	}
	if total != metrics.DuplicatesFound {
		t.Fatalf("type breakdown %v does not sum to %d", metrics.DuplicatesByType, metrics.DuplicatesFound)
	}
}
