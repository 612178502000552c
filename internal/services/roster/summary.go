package roster

import (
	"context"
	"sort"

	"github.com/mcoot/arise-roster/internal/model"
)

// BeltCount is one bar of the belt-rank histogram
type BeltCount struct {
	BeltRank string `json:"beltRank"`
	Count    int    `json:"count"`
}

// Summary holds aggregate roster counts
type Summary struct {
	TotalPlayers int         `json:"totalPlayers"`
	BeltRanks    []BeltCount `json:"beltRanks"`
	NCCIDs       []string    `json:"nccIds"`
}

// Summary aggregates the roster visible to the session
func (s *Service) Summary(ctx context.Context, session *model.Session) (*Summary, error) {
	players, err := s.List(ctx, session)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	summary := &Summary{
		TotalPlayers: len(players),
		BeltRanks:    []BeltCount{},
		NCCIDs:       []string{},
	}
	for _, p := range players {
		counts[p.BeltRank]++
		if p.NCCRef != "" {
			summary.NCCIDs = append(summary.NCCIDs, p.NCCRef)
		}
	}
	for rank, n := range counts {
		summary.BeltRanks = append(summary.BeltRanks, BeltCount{BeltRank: rank, Count: n})
	}
	sort.Slice(summary.BeltRanks, func(i, j int) bool {
		a, b := summary.BeltRanks[i], summary.BeltRanks[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.BeltRank < b.BeltRank
	})
	return summary, nil
}
