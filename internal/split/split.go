package split

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"posecorpus/internal/services"
)

// Subset tags an example index.
type Subset uint8

const (
	Excluded Subset = iota
	Train
	Dev
	Test
)

// Subsets lists the written subsets in output order.
var Subsets = []Subset{Train, Dev, Test}

func (s Subset) String() string {
	switch s {
	case Train:
		return "train"
	case Dev:
		return "dev"
	case Test:
		return "test"
	default:
		return "excluded"
	}
}

// ParseSubset maps a subset name onto a Subset.
func ParseSubset(value string) (Subset, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "train":
		return Train, nil
	case "dev":
		return Dev, nil
	case "test":
		return Test, nil
	case "excluded":
		return Excluded, nil
	}
	return Excluded, fmt.Errorf("unknown subset %q", value)
}

// Params configures Assign.
type Params struct {
	Total int
	// TrainSize caps the candidate pool at TrainSize+2*DevTestSize when set.
	TrainSize   *int
	DevTestSize int
	DryRun      bool
}

// Assignment maps every example index to its subset.
type Assignment []Subset

// NewRand returns the generator Assign draws from for seed.
func NewRand(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// Assign computes the split for p.
func Assign(p Params, rng *rand.Rand) (Assignment, error) {
	if p.Total < 0 {
		return nil, configError(fmt.Sprintf("negative example count %d", p.Total))
	}
	if p.DevTestSize < 0 {
		return nil, configError(fmt.Sprintf("devtest size must be >= 0, got %d", p.DevTestSize))
	}
	if p.TrainSize != nil && *p.TrainSize < 0 {
		return nil, configError(fmt.Sprintf("train size must be >= 0, got %d", *p.TrainSize))
	}

	out := make(Assignment, p.Total)

	var pool []int
	if p.TrainSize == nil {
		pool = identity(p.Total)
	} else {
		required := *p.TrainSize + 2*p.DevTestSize
		if p.Total < required {
			return nil, configError(fmt.Sprintf(
				"train size %d plus 2 x devtest size %d needs %d examples, only %d available",
				*p.TrainSize, p.DevTestSize, required, p.Total))
		}
		if p.DryRun {
			pool = identity(required)
		} else {
			pool = sample(identity(p.Total), required, rng)
		}
	}

	for _, idx := range pool {
		out[idx] = Train
	}
	if p.DevTestSize == 0 {
		return out, nil
	}
	if 2*p.DevTestSize > len(pool) {
		return nil, configError(fmt.Sprintf(
			"devtest size %d needs %d examples, only %d available", p.DevTestSize, 2*p.DevTestSize, len(pool)))
	}

	dev := sample(pool, p.DevTestSize, rng)
	for _, idx := range dev {
		out[idx] = Dev
	}
	rest := make([]int, 0, len(pool)-len(dev))
	for _, idx := range pool {
		if out[idx] == Train {
			rest = append(rest, idx)
		}
	}
	for _, idx := range sample(rest, p.DevTestSize, rng) {
		out[idx] = Test
	}
	return out, nil
}

// sample draws k distinct elements of from, in draw order. from is not
// modified.
func sample(from []int, k int, rng *rand.Rand) []int {
	work := append([]int(nil), from...)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(work)-i)
		work[i], work[j] = work[j], work[i]
	}
	return work[:k]
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func configError(message string) error {
	return services.Wrap(services.ErrConfiguration, "split", "assign", message, nil)
}

// Counts returns the number of indices per subset, Excluded included.
func (a Assignment) Counts() map[Subset]int {
	counts := map[Subset]int{Excluded: 0, Train: 0, Dev: 0, Test: 0}
	for _, s := range a {
		counts[s]++
	}
	return counts
}

// Indices returns the indices tagged s in ascending order.
func (a Assignment) Indices(s Subset) []int {
	var out []int
	for idx, got := range a {
		if got == s {
			out = append(out, idx)
		}
	}
	return out
}

// At returns the subset of idx; indices outside the universe are Excluded.
func (a Assignment) At(idx int) Subset {
	if idx < 0 || idx >= len(a) {
		return Excluded
	}
	return a[idx]
}

// ContiguousPrefix returns the length of the leading run of non-excluded
// indices.
func (a Assignment) ContiguousPrefix() int {
	for idx, s := range a {
		if s == Excluded {
			return idx
		}
	}
	return len(a)
}
