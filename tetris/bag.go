package tetris

import "math/rand/v2"

// Randomizer decides which tetromino comes next.
type Randomizer interface {
	Next() Shape
	Reset()
}

// Bag is the 7-bag randomizer from https://tetris.wiki/Random_Generator: every
// shape is drawn exactly once per shuffled bag.
type Bag struct {
	rnd *rand.Rand
	bag []Shape
}

// NewBag returns an empty bag. A nil rnd uses a randomly seeded source.
func NewBag(rnd *rand.Rand) *Bag {
	return &Bag{rnd: orRandom(rnd)}
}

func (b *Bag) Next() Shape {
	if len(b.bag) == 0 {
		b.bag = append(b.bag, allShapes[:]...)
		b.rnd.Shuffle(len(b.bag), func(i, j int) {
			b.bag[i], b.bag[j] = b.bag[j], b.bag[i]
		})
	}
	s := b.bag[0]
	b.bag = b.bag[1:]
	return s
}

// Reset throws away the remaining pieces of the current bag.
func (b *Bag) Reset() { b.bag = nil }

// Uniform draws every shape independently with equal probability.
type Uniform struct {
	rnd *rand.Rand
}

func NewUniform(rnd *rand.Rand) *Uniform {
	return &Uniform{rnd: orRandom(rnd)}
}

func (u *Uniform) Next() Shape { return allShapes[u.rnd.IntN(len(allShapes))] }
func (u *Uniform) Reset()      {}

func orRandom(rnd *rand.Rand) *rand.Rand {
	if rnd != nil {
		return rnd
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec
}
