package symstash

import (
	"cmp"
	"slices"

	"github.com/aweris/symstash/internal/sdk"
)

const (
	maxFuzzyMatches = 10
	noMatchScore    = 99999
)

type fuzzyCandidate struct {
	score int
	newer bool
	info  SDKInfo
}

// FuzzyMatchSDKID ranks the locally held databases by how closely they
// resemble id and returns the best ten. Ties prefer databases not newer than
// id, then newer identities over older ones. Databases that do not match at
// all sort last. An id that does not parse has no matches.
func (s *Stash) FuzzyMatchSDKID(id string) ([]SDKInfo, error) {
	state, err := s.state.Cached()
	if err != nil {
		return nil, err
	}

	target, err := sdk.Parse(id)
	if err != nil {
		s.logger.Debug("fuzzy match on invalid id", "id", id, "error", err)
		return []SDKInfo{}, nil
	}

	infos := state.Infos()
	candidates := make([]fuzzyCandidate, 0, len(infos))
	for _, info := range infos {
		score, ok := target.FuzzyMatch(info)
		if !ok {
			score = noMatchScore
		}
		candidates = append(candidates, fuzzyCandidate{
			score: score,
			newer: sdk.Compare(info, target) > 0,
			info:  info,
		})
	}

	slices.SortFunc(candidates, func(a, b fuzzyCandidate) int {
		return cmp.Or(
			cmp.Compare(a.score, b.score),
			compareBool(a.newer, b.newer),
			sdk.Compare(b.info, a.info),
		)
	})

	n := min(len(candidates), maxFuzzyMatches)
	matches := make([]SDKInfo, 0, n)
	for _, c := range candidates[:n] {
		matches = append(matches, c.info)
	}
	return matches, nil
}

// false sorts before true
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
