package actions

import (
	"math/rand"

	"github.com/sarchlab/eventsim/sim"
)

// Walker moves one step left or right at random every Interval until it has
// made MaxMoves moves.
type Walker struct {
	Label    string
	Interval sim.VTimeInSec
	MaxMoves int
	Position int
	Moves    int

	rng *rand.Rand
}

// NewWalker creates a Walker. Walkers created with the same seed walk the
// same path.
func NewWalker(
	label string,
	interval sim.VTimeInSec,
	maxMoves int,
	seed int64,
) *Walker {
	return &Walker{
		Label:    label,
		Interval: interval,
		MaxMoves: maxMoves,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Name returns the label of the action.
func (w *Walker) Name() string {
	return w.Label
}

// Execute moves the walker.
func (w *Walker) Execute(now sim.VTimeInSec) sim.Disposition[sim.VTimeInSec] {
	if w.rng.Intn(2) == 0 {
		w.Position--
	} else {
		w.Position++
	}

	w.Moves++

	if w.Moves >= w.MaxMoves {
		return sim.Delete[sim.VTimeInSec]()
	}

	return sim.Reschedule(now + w.Interval)
}
