package ordering

import (
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/yungbote/pearls-backend/internal/domain/content"
	"github.com/yungbote/pearls-backend/internal/pipeline/filter"
)

type Mode string

const (
	ModeCorpus Mode = "corpus"
	ModeNewest Mode = "newest"
	ModeRandom Mode = "random"
)

// ParseMode falls back to corpus order for anything unrecognized.
func ParseMode(raw string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeNewest:
		return ModeNewest
	case ModeRandom, "shuffle":
		return ModeRandom
	default:
		return ModeCorpus
	}
}

// Permutation is a shuffled list of corpus thread ids.
type Permutation []string

// NewPermutation runs Fisher-Yates over ids with a deterministic source, so the
// same seed and the same corpus always give the same order.
func NewPermutation(ids []string, seed uint64) Permutation {
	out := make(Permutation, len(ids))
	copy(out, ids)
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := len(out) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func (p Permutation) positions() map[string]int {
	pos := make(map[string]int, len(p))
	for i, id := range p {
		if _, ok := pos[id]; !ok {
			pos[id] = i
		}
	}
	return pos
}

// Threads returns a reordered copy. Threads missing from perm keep their
// relative order after every permuted thread.
func Threads(threads []content.ResolvedThread, mode Mode, perm Permutation) []content.ResolvedThread {
	out := make([]content.ResolvedThread, len(threads))
	copy(out, threads)
	switch mode {
	case ModeNewest:
		keys := make([]int64, len(out))
		for i := range out {
			keys[i] = threadTime(&out[i])
		}
		idx := identity(len(out))
		sort.SliceStable(idx, func(a, b int) bool { return keys[idx[a]] > keys[idx[b]] })
		return gather(out, idx)
	case ModeRandom:
		pos := perm.positions()
		idx := identity(len(out))
		sort.SliceStable(idx, func(a, b int) bool {
			return rank(pos, out[idx[a]].ID) < rank(pos, out[idx[b]].ID)
		})
		return gather(out, idx)
	default:
		return out
	}
}

// Items orders the flat view. Random mode groups items by their thread's
// permuted position and keeps tweet order inside a thread.
func Items(items []filter.Item, mode Mode, perm Permutation) []filter.Item {
	out := make([]filter.Item, len(items))
	copy(out, items)
	switch mode {
	case ModeNewest:
		sort.SliceStable(out, func(a, b int) bool {
			return content.ParseDate(out[a].Date).After(content.ParseDate(out[b].Date))
		})
	case ModeRandom:
		pos := perm.positions()
		sort.SliceStable(out, func(a, b int) bool {
			return rank(pos, out[a].ThreadID) < rank(pos, out[b].ThreadID)
		})
	}
	return out
}

func rank(pos map[string]int, id string) int {
	if p, ok := pos[id]; ok {
		return p
	}
	return len(pos)
}

func threadTime(t *content.ResolvedThread) int64 {
	if ts := content.ParseDate(t.Date); !ts.IsZero() {
		return ts.Unix()
	}
	for _, tw := range t.Tweets {
		if tw.Timestamp > 0 {
			return tw.Timestamp
		}
	}
	return 0
}

func identity(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func gather(src []content.ResolvedThread, idx []int) []content.ResolvedThread {
	out := make([]content.ResolvedThread, len(idx))
	for i, j := range idx {
		out[i] = src[j]
	}
	return out
}
