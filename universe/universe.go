// Package universe selects the set of tradeable instruments for a run.
package universe

import (
	"github.com/raykavin/mirrortrade/core"

	"github.com/samber/lo"
)

// Filter selects instruments quoted in a single quote asset, open for
// trading, excluding the leader pair used as the correlation benchmark.
type Filter struct {
	quoteAsset string
	leaderPair string
}

// New creates a symbol universe filter
func New(quoteAsset, leaderPair string) Filter {
	return Filter{quoteAsset: quoteAsset, leaderPair: leaderPair}
}

// Select returns the eligible pair identifiers, preserving catalog order
func (f Filter) Select(catalog []core.AssetInfo) []string {
	eligible := lo.Filter(catalog, func(info core.AssetInfo, _ int) bool {
		return info.QuoteAsset == f.quoteAsset &&
			info.IsTradeable() &&
			info.Pair != f.leaderPair
	})

	return lo.Map(eligible, func(info core.AssetInfo, _ int) string {
		return info.Pair
	})
}
