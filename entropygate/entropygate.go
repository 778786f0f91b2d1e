// Package entropygate estimates the Shannon information content of a set
// of source byte arrays and rejects material too weak to derive keys from.
package entropygate

import (
	"fmt"
	"math"
)

const (
	// MinLength is the minimum total accumulated byte count.
	MinLength = 100
	// MaxLength is the maximum total accumulated byte count.
	MaxLength = 10000000
	// MinInformationBits is the minimum required information content.
	MinInformationBits = 128
)

// Gate accumulates a 256-way histogram over one or more source byte
// arrays and reports Shannon entropy statistics over the total.
type Gate struct {
	histogram [256]uint64
	count     uint64
}

// New returns an empty Gate.
func New() *Gate {
	return &Gate{}
}

// AddBytes folds b into the running histogram.
func (g *Gate) AddBytes(b []byte) {
	for _, v := range b {
		g.histogram[v]++
	}
	g.count += uint64(len(b))
}

// Count returns the total number of bytes accumulated so far.
func (g *Gate) Count() uint64 {
	return g.count
}

// Entropy returns the Shannon entropy, in bits per symbol, of the
// accumulated histogram: -sum(p_i * log2(p_i)).
func (g *Gate) Entropy() float64 {
	if g.count == 0 {
		return 0
	}
	var h float64
	n := float64(g.count)
	for _, c := range g.histogram {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

// InformationInBits returns round(entropy * count): the total estimated
// information content of the accumulated bytes.
func (g *Gate) InformationInBits() int64 {
	return int64(math.Round(g.Entropy() * float64(g.count)))
}

// RelativeEntropy returns entropy / 8, the maximum entropy over 256
// symbols being 8 bits.
func (g *Gate) RelativeEntropy() float64 {
	return g.Entropy() * 0.125
}

// Check validates a complete set of source byte arrays against the
// construction-time gate policy: no array may be empty, the total length
// must fall in [MinLength, MaxLength], and the information content must
// reach MinInformationBits.
func Check(sources [][]byte) error {
	for i, s := range sources {
		if len(s) == 0 {
			return fmt.Errorf("%d. source byte array has 0 length", i+1)
		}
	}

	g := New()
	for _, s := range sources {
		g.AddBytes(s)
	}

	if g.Count() < MinLength || g.Count() > MaxLength {
		return fmt.Errorf("source byte array length %d is not in the allowed range [%d, %d]", g.Count(), MinLength, MaxLength)
	}

	if g.InformationInBits() < MinInformationBits {
		entropy := g.Entropy()
		if entropy <= 0.0001 {
			return fmt.Errorf("no information provided, there are only identical byte values in the source bytes")
		}
		needed := int64(math.Ceil(float64(MinInformationBits)/entropy)) + 1
		return fmt.Errorf("information content of source bytes is too small, increase length to at least %d", needed)
	}

	return nil
}
