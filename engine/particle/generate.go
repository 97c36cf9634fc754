package particle

import (
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
)

// fillFunc writes particle i using the chunk's random source.
type fillFunc func(r *rand.Rand, i int)

// generate fills count particles in fixed-size chunks on up to workers goroutines.
// Each chunk draws from its own PCG stream seeded with (seed, chunk index), so the output
// depends only on seed and chunkSize, never on scheduling or the worker count.
func generate(count, chunkSize, workers int, seed uint64, fill fillFunc) error {
	if count <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = count
	}

	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}

	for chunk, start := 0, 0; start < count; chunk, start = chunk+1, start+chunkSize {
		end := min(start+chunkSize, count)
		r := rand.New(rand.NewPCG(seed, uint64(chunk)))
		g.Go(func() error {
			for i := start; i < end; i++ {
				fill(r, i)
			}
			return nil
		})
	}
	return g.Wait()
}

// uniform returns a value in [lo, hi).
func uniform(r *rand.Rand, lo, hi float32) float32 {
	return lo + r.Float32()*(hi-lo)
}
