package zen

import (
	"pipelined.dev/signal"

	"github.com/dudk/zen/mixer"
)

// alloc returns a silent block buffer from the pool of the context.
func (c *Context) alloc() []float64 {
	b := (*c.pool.Alloc())[0]
	mixer.Zero(b)
	return b
}

// free returns block buffers to the pool. The shared silent buffer is
// never pooled.
func (c *Context) free(buffers ...[]float64) {
	for _, b := range buffers {
		if len(b) == 0 || &b[0] == &c.zero[0] {
			continue
		}
		s := signal.Float64{b}
		c.pool.Free(&s)
	}
}
