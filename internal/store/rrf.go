package store

import (
	"sort"
	"strconv"
)

// DefaultRRFConstant is the standard RRF smoothing parameter (k=60),
// empirically validated across domains (used by Azure AI Search, OpenSearch).
const DefaultRRFConstant = 60

// ftsHit is one full-text search result prior to fusion.
type ftsHit struct {
	ID    string
	Score float64
}

// fusedHit is a single chunk ID's combined ranking after RRF, with both
// branch ranks preserved for inspection/debugging.
type fusedHit struct {
	ID       string
	RRFScore float64
	FTSRank  int // 1-indexed, 0 if absent
	VecRank  int // 1-indexed, 0 if absent
}

// fuseRRF combines FTS and vector result lists with Reciprocal Rank Fusion:
// RRFScore(d) = Σ 1/(k + rank_i). Ties are broken by ascending numeric chunk
// ID for determinism (chunk IDs are auto-incrementing row IDs, so this also
// reflects insertion order).
func fuseRRF(fts []ftsHit, vec []*VectorResult, k int) []fusedHit {
	if k <= 0 {
		k = DefaultRRFConstant
	}
	if len(fts) == 0 && len(vec) == 0 {
		return nil
	}

	scores := make(map[string]*fusedHit, len(fts)+len(vec))
	get := func(id string) *fusedHit {
		if h, ok := scores[id]; ok {
			return h
		}
		h := &fusedHit{ID: id}
		scores[id] = h
		return h
	}

	for rank, r := range fts {
		h := get(r.ID)
		h.FTSRank = rank + 1
		h.RRFScore += 1.0 / float64(k+rank+1)
	}
	for rank, r := range vec {
		h := get(r.ID)
		h.VecRank = rank + 1
		h.RRFScore += 1.0 / float64(k+rank+1)
	}

	out := make([]fusedHit, 0, len(scores))
	for _, h := range scores {
		out = append(out, *h)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].RRFScore != out[j].RRFScore {
			return out[i].RRFScore > out[j].RRFScore
		}
		return chunkIDLess(out[i].ID, out[j].ID)
	})

	return out
}

// chunkIDLess compares two string-encoded int64 chunk IDs numerically.
func chunkIDLess(a, b string) bool {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}
