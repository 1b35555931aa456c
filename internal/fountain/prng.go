package fountain

// prng is a xorshift32 generator. Its state transition and seeding rule
// are part of the wire contract: encoder and decoder MUST derive
// identical source-index sets for the same repair index, so nothing here
// may change without breaking compatibility with previously encoded
// streams.
type prng struct {
	state uint32
}

// newPRNG seeds a xorshift32 generator for repair index r.
// state = (r*2654435761 + 1) | 1 — the |1 guarantees a nonzero seed,
// since xorshift32 is stuck at zero forever if ever seeded with zero.
func newPRNG(r uint32) *prng {
	state := (r*2654435761 + 1) | 1
	return &prng{state: state}
}

// next advances the generator and returns the post-update state.
func (p *prng) next() uint32 {
	x := p.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	p.state = x
	return x
}
