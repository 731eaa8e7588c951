package brackets

import "math/rand/v2"

// Shuffler reorders player ids reproducibly: the same seed always yields the same order.
// Not suitable for anything security related.
type Shuffler struct {
	rng *rand.Rand
}

func NewShuffler(seed int64) *Shuffler {
	return &Shuffler{rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

// Shuffle returns a shuffled copy; the input slice is left untouched.
func (s *Shuffler) Shuffle(ids []int) []int {
	out := make([]int, len(ids))
	copy(out, ids)
	s.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
