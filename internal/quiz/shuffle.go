package quiz

import (
	"math/rand/v2"
)

// Shuffler produces the randomized choice set for a question. It is not safe
// for concurrent use; give each session its own.
type Shuffler struct {
	r *rand.Rand
}

// NewShuffler returns a deterministic shuffler for the given seed.
func NewShuffler(seed uint64) *Shuffler {
	return &Shuffler{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomShuffler returns a shuffler seeded from the runtime's random source.
func NewRandomShuffler() *Shuffler {
	return &Shuffler{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// Choices decodes the correct and incorrect answers of q and returns them in
// random order. Every answer appears exactly once.
func (s *Shuffler) Choices(q Question, decode Decoder) []string {
	out := make([]string, 0, len(q.IncorrectAnswers)+1)
	for _, a := range q.IncorrectAnswers {
		out = append(out, decode(a))
	}
	out = append(out, decode(q.CorrectAnswer))

	// Fisher-Yates
	s.r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
