// Package pool caches signal pools shared by every context with the same
// block layout.
package pool

import (
	"sync"

	"pipelined.dev/signal/pool"
)

type key struct {
	blockSize   int
	numChannels int
}

var m = struct {
	sync.Mutex
	pools map[key]*pool.Pool
}{
	pools: map[key]*pool.Pool{},
}

// Get returns the pool of numChannels buffers of blockSize frames. Pools
// are cached, so multiple calls with the same layout return the same
// instance.
func Get(blockSize, numChannels int) *pool.Pool {
	m.Lock()
	defer m.Unlock()
	k := key{blockSize, numChannels}
	if p, ok := m.pools[k]; ok {
		return p
	}

	p := pool.New(numChannels, blockSize)
	m.pools[k] = p
	return p
}
