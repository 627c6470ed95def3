// Package variant implements document-scoped, seeded random selection.
//
// Every draw is keyed by the address of the construct requesting it. The
// first Select for an address runs the draw and commits its result; every
// later Select for the same address returns the committed value without
// consulting the generator again. Regrown replacement groups and copies
// therefore see the values they saw before.
package variant

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zclconf/go-cty/cty"
)

// DefaultMaxExcludedFraction is used when a document does not configure one.
const DefaultMaxExcludedFraction = 0.75

// maxAttempts bounds rejection sampling for one draw.
const maxAttempts = 1000

// ErrExhausted is returned when rejection sampling finds no admissible draw.
var ErrExhausted = errors.New("no admissible value left after exclusions")

// ExclusionError reports a domain that is excluded beyond the configured
// limit.
type ExclusionError struct {
	Excluded int
	Total    int
	Limit    float64
}

func (e *ExclusionError) Error() string {
	return fmt.Sprintf("exclusions remove %d of %d possible values, more than the allowed fraction %g", e.Excluded, e.Total, e.Limit)
}

// Config fixes the outcome of every draw in a document.
type Config struct {
	Index               int
	Seed                string
	MaxExcludedFraction float64

	// Samples, when set, counts committed draws.
	Samples prometheus.Counter
}

// DrawFunc produces a value from a seeded generator.
type DrawFunc func(r *rand.Rand) (cty.Value, error)

// Sampler commits one draw per address.
type Sampler struct {
	cfg       Config
	committed map[string]cty.Value
}

// New creates a sampler for one document session.
func New(cfg Config) *Sampler {
	if cfg.MaxExcludedFraction <= 0 {
		cfg.MaxExcludedFraction = DefaultMaxExcludedFraction
	}
	return &Sampler{cfg: cfg, committed: make(map[string]cty.Value)}
}

// MaxExcludedFraction returns the exclusion limit in effect.
func (s *Sampler) MaxExcludedFraction() float64 { return s.cfg.MaxExcludedFraction }

// Index returns the variant index.
func (s *Sampler) Index() int { return s.cfg.Index }

// Select returns the committed value for addr, running draw on first use.
// A failed draw commits nothing.
func (s *Sampler) Select(addr string, draw DrawFunc) (cty.Value, error) {
	if v, ok := s.committed[addr]; ok {
		return v, nil
	}
	v, err := draw(s.rng(addr))
	if err != nil {
		return cty.NilVal, err
	}
	s.committed[addr] = v
	if s.cfg.Samples != nil {
		s.cfg.Samples.Inc()
	}
	return v, nil
}

// Committed returns the value committed for addr, if any.
func (s *Sampler) Committed(addr string) (cty.Value, bool) {
	v, ok := s.committed[addr]
	return v, ok
}

// Commitments returns the committed addresses in sorted order.
func (s *Sampler) Commitments() []string {
	out := make([]string, 0, len(s.committed))
	for k := range s.committed {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// rng derives an independent generator for addr from the document seed
// and variant index.
func (s *Sampler) rng(addr string) *rand.Rand {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00%d\x00%s", s.cfg.Seed, s.cfg.Index, addr)
	a := h.Sum64()
	h.Write([]byte{0xff})
	return rand.New(rand.NewPCG(a, h.Sum64()))
}
