package dedup

import (
	"fmt"
	"time"

	"iptvstream/catalogservice/internal/domain"
)

// Metrics accumulates the outcome of a single deduplication run. A Metrics
// value is owned by exactly one run; concurrent runs must use independent
// instances.
type Metrics struct {
	totalChannels     int
	duplicatesFound   int
	duplicatesRemoved int
	hdUpgrades        int
	sourceConflicts   int
	startedAt         time.Time
	finishedAt        time.Time
	bySource          map[string]int
	byType            map[string]int
	byStrategy        map[string]int
}

func newMetrics() *Metrics {
	return &Metrics{
		bySource:   make(map[string]int),
		byType:     make(map[string]int),
		byStrategy: make(map[string]int),
	}
}

func (m *Metrics) start(totalChannels int) {
	m.totalChannels = totalChannels
	m.startedAt = time.Now()
}

func (m *Metrics) finish() {
	m.finishedAt = time.Now()
}

// recordDuplicate registers one detected duplicate: exactly one record is
// removed per detection, so found and removed move in lockstep.
func (m *Metrics) recordDuplicate(incoming domain.Channel, matchType string, resolution domain.ConflictResolution) {
	m.duplicatesFound++
	m.duplicatesRemoved++
	m.bySource[incoming.Metadata.SourceTag()]++
	m.byType[matchType]++
	m.byStrategy[resolution.Strategy]++

	switch resolution.Strategy {
	case strategyUpgradeSDToHD, strategyUpgradeGenericToHD, strategyNumberedHDUpgrade, strategyQualityFieldUpgrade:
		if resolution.ShouldReplace {
			m.hdUpgrades++
		}
	case strategySourcePriority:
		m.sourceConflicts++
	}
}

// Snapshot finalizes the accumulator into the exported view. Processing time
// is reported as at least 1ms so rates stay meaningful on tiny catalogs.
func (m *Metrics) Snapshot() domain.MetricsSnapshot {
	elapsed := m.finishedAt.Sub(m.startedAt).Milliseconds()
	if elapsed < 1 {
		elapsed = 1
	}

	rate := "0.00%"
	if m.totalChannels > 0 {
		rate = fmt.Sprintf("%.2f%%", float64(m.duplicatesRemoved)/float64(m.totalChannels)*100)
	}

	return domain.MetricsSnapshot{
		TotalChannels:       m.totalChannels,
		DuplicatesFound:     m.duplicatesFound,
		DuplicatesRemoved:   m.duplicatesRemoved,
		HDUpgrades:          m.hdUpgrades,
		SourceConflicts:     m.sourceConflicts,
		ProcessingTimeMS:    elapsed,
		DeduplicationRate:   rate,
		DuplicatesBySource:  copyCounts(m.bySource),
		DuplicatesByType:    copyCounts(m.byType),
		ConflictResolutions: copyCounts(m.byStrategy),
	}
}

func copyCounts(counts map[string]int) map[string]int {
	out := make(map[string]int, len(counts))
	for key, value := range counts {
		out[key] = value
	}
	return out
}
