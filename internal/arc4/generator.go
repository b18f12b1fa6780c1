package arc4

// generator is one keystream generator: a 256-byte S-block plus its x/y
// running indices. A Cipher composes two of them, advanced in lockstep.
// Indices are byte-typed so every mod-256 step is implicit wraparound and
// no table access can ever leave the 256-entry range.
type generator struct {
	s    [256]byte
	x, y byte
}

// seed fills the S-block from a linear congruential sequence keyed by the
// 4-byte IV: r masks the output, x0 is the start value, and the remaining
// two bytes select the multiplier and increment from the constant tables.
// The parameters guarantee a full-period sequence mod 256, so the freshly
// seeded S-block is already a permutation of 0..255.
func (g *generator) seed(iv [IVSize]byte) {
	r := iv[0]
	x := iv[1]
	a := lcrMultipliers[int(iv[2])%len(lcrMultipliers)]
	c := lcrIncrements[int(iv[3])%len(lcrIncrements)]

	for i := range g.s {
		x = a*x + c
		g.s[i] = r ^ x
	}
}

// schedule mixes the key into the S-block (classical KSA swaps), then runs
// 256 discarded PRGA steps to reduce correlation between the first output
// bytes and the key. The post-warm-up x/y stay as the live indices.
func (g *generator) schedule(key []byte) {
	var j byte
	for i := range 256 {
		j += g.s[i] + key[i%len(key)]
		g.s[i], g.s[j] = g.s[j], g.s[i]
	}

	for range 256 {
		g.step()
	}
}

// step is one PRGA advancement: exactly one swap per call.
func (g *generator) step() {
	g.x++
	g.y += g.s[g.x]
	g.s[g.x], g.s[g.y] = g.s[g.y], g.s[g.x]
}

// next advances one step and returns the generator's keystream byte.
func (g *generator) next() byte {
	g.step()
	return g.s[g.s[g.x]+g.s[g.y]]
}

// reset zeroes the S-block and indices.
func (g *generator) reset() {
	clear(g.s[:])
	g.x, g.y = 0, 0
}
