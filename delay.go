package zen

import (
	"math"

	"github.com/pkg/errors"

	"github.com/dudk/zen/message"
)

// Delayline is the ring buffer of a delwrite~ object read by delread~ and
// vd~. It holds whole blocks: the delay requested at creation rounded up
// to the block size, plus one block.
type Delayline struct {
	owner     ObjectID
	blockSize int
	buffer    []float64
	head      int
	written   message.Timestamp
	ready     bool
}

func newDelayline(owner ObjectID, blockSize, frames int) *Delayline {
	blocks := (frames+blockSize-1)/blockSize + 1
	return &Delayline{
		owner:     owner,
		blockSize: blockSize,
		buffer:    make([]float64, blocks*blockSize),
	}
}

// Len returns the length of the ring buffer in samples.
func (d *Delayline) Len() int {
	return len(d.buffer)
}

// Write stores samples [from, to) of the current block. The write head
// moves on when the block is complete.
func (d *Delayline) Write(env *Env, in []float64, from, to int) {
	for i := from; i < to; i++ {
		d.buffer[(d.head+i)%len(d.buffer)] = in[i]
	}
	if to == d.blockSize {
		d.head = (d.head + d.blockSize) % len(d.buffer)
		d.written = env.BlockStart()
		d.ready = true
	}
}

// base returns the buffer position of the first sample of the current
// block and the shortest delay readable from it. A reader processed before
// the writer of the same block is one block late.
func (d *Delayline) base(env *Env) (int, float64) {
	if d.ready && d.written == env.BlockStart() {
		return d.head - d.blockSize, 0
	}
	return d.head, float64(d.blockSize)
}

func (d *Delayline) clamp(delay, min float64) float64 {
	return math.Max(min, math.Min(delay, float64(len(d.buffer)-d.blockSize)))
}

func (d *Delayline) at(pos int) float64 {
	n := len(d.buffer)
	return d.buffer[((pos%n)+n)%n]
}

// Read fills out[from:to] with the signal delayed by a constant number of
// samples.
func (d *Delayline) Read(env *Env, out []float64, from, to int, delay float64) {
	base, min := d.base(env)
	offset := int(d.clamp(delay, min))
	for i := from; i < to; i++ {
		out[i] = d.at(base + i - offset)
	}
}

// ReadVariable fills out[from:to] with the signal delayed by delays[i]
// samples, interpolating linearly between samples.
func (d *Delayline) ReadVariable(env *Env, out, delays []float64, from, to int) {
	base, min := d.base(env)
	for i := from; i < to; i++ {
		pos := float64(base+i) - d.clamp(delays[i], min)
		x0 := math.Floor(pos)
		dx := pos - x0
		y0 := d.at(int(x0))
		y1 := d.at(int(x0) + 1)
		out[i] = y0 + (y1-y0)*dx
	}
}

func (c *Context) registerDelayline(name string, id ObjectID, frames int) (*Delayline, error) {
	if _, ok := c.delaylines[name]; ok {
		c.printErr("delwrite~ with duplicate name \"%s\" registered.", name)
		return nil, errors.Errorf("delay line %s already exists", name)
	}
	d := newDelayline(id, c.config.BlockSize, frames)
	c.delaylines[name] = d
	return d, nil
}

func (c *Context) unregisterDelayline(name string, id ObjectID) {
	if d, ok := c.delaylines[name]; ok && d.owner == id {
		delete(c.delaylines, name)
	}
}
