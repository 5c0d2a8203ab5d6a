package dedup

import (
	"iptvstream/catalogservice/internal/domain"
)

// Strategy taxonomy labels. These drive metrics breakdowns and audit logs;
// callers never branch on them.
const (
	strategyNotDuplicate         = "not_duplicate"
	strategyKeepFirst            = "keep_first"
	strategyKeepLast             = "keep_last"
	strategySourcePriority       = "source_priority"
	strategyHDUpgradeDisabled    = "hd_upgrade_disabled"
	strategyProtectHDFromSD      = "protect_hd_from_sd"
	strategyUpgradeSDToHD        = "upgrade_sd_to_hd"
	strategyUpgradeGenericToHD   = "upgrade_generic_to_hd"
	strategyProtectHDFromGeneric = "protect_hd_from_generic"
	strategyPatternPriority      = "pattern_priority"
	strategyNumberedHDUpgrade    = "numbered_hd_upgrade"
	strategyNumberedSDUpgrade    = "numbered_sd_upgrade"
	strategySDVariantPriority    = "sd_variant_priority"
	strategyNameSpecificity      = "name_specificity"
	strategyQualityFieldUpgrade  = "quality_field_upgrade"
	strategyQualityFieldProtect  = "quality_field_protect"
	strategyHDKeepExisting       = "hd_keep_existing"
)

// Resolver decides which of two duplicate records survives.
type Resolver struct {
	cfg domain.DeduplicationConfig
}

// NewResolver builds a resolver for one run's configuration.
func NewResolver(cfg domain.DeduplicationConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

// hdRule is one step of the HD cascade. Rules are evaluated top to bottom;
// the first rule that applies wins, so the priority order is data.
type hdRule struct {
	name  string
	apply func(existing, incoming domain.Channel) (domain.ConflictResolution, bool)
}

// Resolve re-verifies the duplicate predicate before deciding. A resolver
// call on a non-duplicate pair is a no-op rather than an error; the engine
// only calls it on confirmed duplicates, but the double check is kept on
// purpose so a direct caller cannot corrupt a catalog by accident.
func (r *Resolver) Resolve(existing, incoming domain.Channel) domain.ConflictResolution {
	if duplicate, _ := IsDuplicate(existing, incoming, r.cfg); !duplicate {
		return keep(existing, strategyNotDuplicate)
	}

	switch r.cfg.Strategy {
	case domain.StrategyKeepFirst:
		return keep(existing, strategyKeepFirst)
	case domain.StrategyKeepLast:
		return replace(incoming, strategyKeepLast)
	case domain.StrategyPrioritizeSource:
		if resolution, decided := r.resolveBySource(existing, incoming); decided {
			return resolution
		}
		return r.resolveByQuality(existing, incoming)
	case domain.StrategyCustom:
		if resolution, decided := r.resolveBySource(existing, incoming); decided {
			return resolution
		}
		if resolution := r.resolveByQuality(existing, incoming); resolution.ShouldReplace {
			return resolution
		}
		return keep(existing, strategyHDKeepExisting)
	default:
		return r.resolveByQuality(existing, incoming)
	}
}

// resolveBySource compares provenance against the configured priority list.
// Lower index wins; unknown sources rank below every configured one. A tie
// (same rank) is not a decision and falls through to the HD cascade.
func (r *Resolver) resolveBySource(existing, incoming domain.Channel) (domain.ConflictResolution, bool) {
	existingRank := r.sourceRank(existing.Metadata.SourceTag())
	incomingRank := r.sourceRank(incoming.Metadata.SourceTag())
	if existingRank == incomingRank {
		return domain.ConflictResolution{}, false
	}
	if incomingRank < existingRank {
		return replace(incoming, strategySourcePriority), true
	}
	return keep(existing, strategySourcePriority), true
}

func (r *Resolver) sourceRank(source string) int {
	for i, candidate := range r.cfg.SourcePriority {
		if candidate == source {
			return i
		}
	}
	return len(r.cfg.SourcePriority)
}

func (r *Resolver) resolveByQuality(existing, incoming domain.Channel) domain.ConflictResolution {
	if !r.cfg.EnableHDUpgrade {
		return keep(existing, strategyHDUpgradeDisabled)
	}
	for _, rule := range hdCascade {
		if resolution, applies := rule.apply(existing, incoming); applies {
			return resolution
		}
	}
	return keep(existing, strategyHDKeepExisting)
}

// hdCascade is the ordered HD decision cascade of the prioritize_hd strategy.
var hdCascade = []hdRule{
	{
		name: strategyProtectHDFromSD,
		apply: func(existing, incoming domain.Channel) (domain.ConflictResolution, bool) {
			if IsHighQuality(existing.Name) && IsLowQuality(incoming.Name) && !IsHighQuality(incoming.Name) {
				return keep(existing, strategyProtectHDFromSD), true
			}
			return domain.ConflictResolution{}, false
		},
	},
	{
		name: strategyUpgradeSDToHD,
		apply: func(existing, incoming domain.Channel) (domain.ConflictResolution, bool) {
			if IsLowQuality(existing.Name) && !IsHighQuality(existing.Name) && IsHighQuality(incoming.Name) {
				return replace(incoming, strategyUpgradeSDToHD), true
			}
			return domain.ConflictResolution{}, false
		},
	},
	{
		name: strategyUpgradeGenericToHD,
		apply: func(existing, incoming domain.Channel) (domain.ConflictResolution, bool) {
			if !HasQualityPattern(existing.Name) && IsHighQuality(incoming.Name) {
				return replace(incoming, strategyUpgradeGenericToHD), true
			}
			return domain.ConflictResolution{}, false
		},
	},
	{
		name: strategyProtectHDFromGeneric,
		apply: func(existing, incoming domain.Channel) (domain.ConflictResolution, bool) {
			if IsHighQuality(existing.Name) && !HasQualityPattern(incoming.Name) {
				return keep(existing, strategyProtectHDFromGeneric), true
			}
			return domain.ConflictResolution{}, false
		},
	},
	{
		name: strategyPatternPriority,
		apply: func(existing, incoming domain.Channel) (domain.ConflictResolution, bool) {
			if !HasQualityPattern(existing.Name) || !HasQualityPattern(incoming.Name) {
				return domain.ConflictResolution{}, false
			}
			return resolveByPatternPriority(existing, incoming), true
		},
	},
	{
		name: strategyQualityFieldUpgrade,
		apply: func(existing, incoming domain.Channel) (domain.ConflictResolution, bool) {
			// Neither name carries a lexical pattern: fall back to the
			// coarse quality field.
			if HasQualityPattern(existing.Name) || HasQualityPattern(incoming.Name) {
				return domain.ConflictResolution{}, false
			}
			existingHigh := existing.Quality.IsHigh()
			incomingHigh := incoming.Quality.IsHigh()
			if !existingHigh && incomingHigh {
				return replace(incoming, strategyQualityFieldUpgrade), true
			}
			if existingHigh && !incomingHigh {
				return keep(existing, strategyQualityFieldProtect), true
			}
			return domain.ConflictResolution{}, false
		},
	},
}

// resolveByPatternPriority maps both names to a static rank. An HD-family
// rank categorically beats an SD-family rank regardless of numeric magnitude;
// otherwise the higher rank wins and equal non-zero ranks go to the
// tie-breaker.
func resolveByPatternPriority(existing, incoming domain.Channel) domain.ConflictResolution {
	existingType := PatternTypeOf(existing.Name)
	incomingType := PatternTypeOf(incoming.Name)
	existingRank := PatternPriority(existingType)
	incomingRank := PatternPriority(incomingType)

	switch {
	case existingRank >= hdFamilyFloor && incomingRank <= sdFamilyCeiling:
		return keep(existing, strategyPatternPriority)
	case incomingRank >= hdFamilyFloor && existingRank <= sdFamilyCeiling:
		return replace(incoming, strategyPatternPriority)
	case incomingRank > existingRank:
		return replace(incoming, strategyPatternPriority)
	case existingRank > incomingRank:
		return keep(existing, strategyPatternPriority)
	default:
		return breakPatternTie(existing, incoming, existingType)
	}
}

const (
	hdFamilyFloor   = 75
	sdFamilyCeiling = 25
)

// breakPatternTie handles equal non-zero pattern ranks: numbered patterns by
// extracted number, SD variants by variant rank, then raw name length as a
// specificity heuristic, else keep the existing record.
func breakPatternTie(existing, incoming domain.Channel, pattern PatternType) domain.ConflictResolution {
	switch pattern {
	case PatternNumberedHD:
		existingNumber := ExtractHDNumber(existing.Name)
		incomingNumber := ExtractHDNumber(incoming.Name)
		if incomingNumber > existingNumber {
			return replace(incoming, strategyNumberedHDUpgrade)
		}
		if existingNumber > incomingNumber {
			return keep(existing, strategyNumberedHDUpgrade)
		}
	case PatternNumberedSD:
		existingNumber := ExtractSDNumber(existing.Name)
		incomingNumber := ExtractSDNumber(incoming.Name)
		if incomingNumber > existingNumber {
			return replace(incoming, strategyNumberedSDUpgrade)
		}
		if existingNumber > incomingNumber {
			return keep(existing, strategyNumberedSDUpgrade)
		}
	case PatternSDVariant:
		existingRank := SDVariantPriority(ExtractSDVariant(existing.Name))
		incomingRank := SDVariantPriority(ExtractSDVariant(incoming.Name))
		if incomingRank > existingRank {
			return replace(incoming, strategySDVariantPriority)
		}
		if existingRank > incomingRank {
			return keep(existing, strategySDVariantPriority)
		}
	}

	if len(incoming.Name) > len(existing.Name) {
		return replace(incoming, strategyNameSpecificity)
	}
	if len(existing.Name) > len(incoming.Name) {
		return keep(existing, strategyNameSpecificity)
	}
	return keep(existing, strategyHDKeepExisting)
}

func keep(existing domain.Channel, strategy string) domain.ConflictResolution {
	return domain.ConflictResolution{ShouldReplace: false, Selected: existing, Strategy: strategy}
}

func replace(incoming domain.Channel, strategy string) domain.ConflictResolution {
	return domain.ConflictResolution{ShouldReplace: true, Selected: incoming, Strategy: strategy}
}
