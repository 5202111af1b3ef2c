// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mempool

import (
	"math"
	"sync"

	"github.com/ixy-languages/ixy.go/ixyerr"
)

// The pool registry is process-wide mutable state, touched only during
// setup and teardown: a packet buffer carries only its pool's numeric
// identifier, so completing a tx descriptor requires looking the owning
// pool back up by id. The hot rx_batch/tx_batch path never calls into
// this file.
var (
	registryMu sync.Mutex
	registry   = map[uint32]*Pool{}
	reversed   bool
)

// Register assigns this pool a fresh process-wide identifier and adds
// it to the registry. The first pool ever registered gets id 0;
// thereafter ids increment from the highest existing one until they
// would overflow 32 bits, at which point allocation switches to
// decrementing from the lowest existing id. Register fails with
// ixyerr.ResourceExhausted once both ends have met.
func (p *Pool) Register() error {
	registryMu.Lock()
	defer registryMu.Unlock()

	if p.registered {
		return nil
	}
	id, err := nextID()
	if err != nil {
		return err
	}
	p.id = id
	p.registered = true
	registry[id] = p

	// The pool identifier is immutable after registration, so every
	// buffer's back-reference is only now well-defined; stamp it into
	// every buffer, not just the ones currently on the free-list, so
	// tx completion can resolve any in-flight buffer back to this pool.
	for i := uint32(0); i < p.capacity; i++ {
		p.Buffer(i).SetPoolID(id)
	}
	return nil
}

// Deregister removes this pool from the registry, but only if the
// registry entry for its id still refers to this exact pool.
func (p *Pool) Deregister() {
	registryMu.Lock()
	defer registryMu.Unlock()

	if !p.registered {
		return
	}
	if cur, ok := registry[p.id]; ok && cur == p {
		delete(registry, p.id)
	}
	p.registered = false
}

// Find looks up a registered pool by id.
func Find(id uint32) (*Pool, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	p, ok := registry[id]
	return p, ok
}

func nextID() (uint32, error) {
	const op = "mempool.Register"
	if len(registry) == 0 {
		return 0, nil
	}
	if !reversed {
		max := maxKeyLocked()
		if max == math.MaxUint32 {
			reversed = true
		} else {
			return max + 1, nil
		}
	}
	min := minKeyLocked()
	if min == 0 {
		return 0, ixyerr.New(ixyerr.ResourceExhausted, op, "memory pool identifiers exhausted")
	}
	return min - 1, nil
}

func maxKeyLocked() uint32 {
	var max uint32
	first := true
	for k := range registry {
		if first || k > max {
			max, first = k, false
		}
	}
	return max
}

func minKeyLocked() uint32 {
	var min uint32
	first := true
	for k := range registry {
		if first || k < min {
			min, first = k, false
		}
	}
	return min
}
