// Profiling:
// go build ./profile/frames
// go tool pprof -http=":8000" -nodefraction=0.001 ./frames mem.pprof

package main

import (
	"context"
	"math/rand/v2"

	"github.com/pkg/profile"

	"github.com/edwinsyarief/kansoku"
	"github.com/edwinsyarief/kansoku/scene"
)

// discard drops every frame after touching each view once.
type discard struct{ n int }

func (d *discard) Flush(c *kansoku.FrameChanges) error {
	d.n += c.NewObjects.Len() + c.Transforms.Len() + len(c.RemovedObjects)
	for range c.ObjectChanges.All() {
		d.n++
	}
	for range c.MeshRenderers.All() {
		d.n++
	}
	return nil
}

func main() {
	rounds := 20
	frames := 500
	objects := 10000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, frames, objects)
	p.Stop()
}

func run(rounds, frames, numObjects int) {
	const arrays = 8
	ctx := context.Background()
	for r := range rounds {
		rng := rand.New(rand.NewPCG(uint64(r), 0))
		s := scene.New(numObjects)
		s.Populate(rng, arrays, numObjects)
		tr := kansoku.NewTracker(s, s.Assets(), &discard{}, kansoku.DefaultOptions())

		for range frames {
			s.Step(rng, numObjects/20, arrays)
			if err := tr.Update(ctx); err != nil {
				panic(err)
			}
		}
		tr.Close()
	}
}
