package fixtures

// LCG is the 64-bit linear congruential generator used for seeded fixtures.
// It is deliberately tiny and fully specified so generated values are stable
// across Go releases and platforms.
type LCG struct {
	state uint64
}

// NewLCG returns a generator positioned at seed.
func NewLCG(seed uint64) *LCG {
	return &LCG{state: seed}
}

func (g *LCG) next() uint64 {
	g.state = g.state*6364136223846793005 + 1
	return g.state >> 33
}

// Uint32 returns the next 31-bit value widened to uint32.
func (g *LCG) Uint32() uint32 {
	return uint32(g.next())
}

// Float64 returns a value in [0, 1).
func (g *LCG) Float64() float64 {
	return float64(g.next()) / float64(uint64(1)<<31)
}

// IntRange returns an integer in [lo, hi).
func (g *LCG) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + int(g.next()%uint64(hi-lo))
}
