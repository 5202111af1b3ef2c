// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mempool implements the packet buffer memory pool: a
// preallocated, DMA-backed array of fixed-size packet buffers plus a
// LIFO free-list. A Pool is owned by exactly one polling thread and is
// never safe for concurrent Get/Free from multiple goroutines — see the
// package registry for the one piece of state that is process-wide.
package mempool

import (
	"unsafe"

	"github.com/ixy-languages/ixy.go/ixyerr"
	"github.com/ixy-languages/ixy.go/ixylog"
	"github.com/ixy-languages/ixy.go/memory"
	"github.com/ixy-languages/ixy.go/packet"
)

// Pool is a contiguous DMA region carved into Capacity() buffers of
// equal PacketSize(), each reachable in constant time from its index.
// Get/Free are a plain LIFO over an in-process slice: no atomics, no
// locks. Callers that need to share a Pool across threads must add
// their own synchronization; this package provides none on the hot
// path by design (see Register/Deregister for the one exception).
type Pool struct {
	id         uint32
	registered bool

	region     *memory.Region
	base       uintptr
	packetSize uint32
	capacity   uint32
	pw         int

	free []packet.Buffer
}

// New allocates capacity*packetSize bytes of huge-page-backed DMA
// memory, carves it into capacity buffers of packetSize bytes each,
// resolves every buffer's physical address, and pushes all of them onto
// the free-list. packetSize must be at least packet.HeaderSize.
func New(capacity, packetSize uint32) (*Pool, error) {
	const op = "mempool.New"
	if capacity == 0 {
		return nil, ixyerr.New(ixyerr.InvalidArgument, op, "capacity must be greater than zero")
	}
	if packetSize < packet.HeaderSize {
		return nil, ixyerr.New(ixyerr.InvalidArgument, op, "packet size must be at least packet.HeaderSize")
	}

	total := uintptr(capacity) * uintptr(packetSize)
	region, err := memory.Allocate(total, true, false)
	if err != nil {
		return nil, err
	}

	pw := memory.PointerWidth()
	p := &Pool{
		region:     region,
		base:       region.Virt,
		packetSize: packetSize,
		capacity:   capacity,
		pw:         pw,
		free:       make([]packet.Buffer, 0, capacity),
	}

	// The back-reference is opaque to the NIC and immutable from this
	// point on: it is the pool's own address, letting tx completion find
	// its owning pool without a registry lookup once the id is known.
	ref := uintptr(unsafe.Pointer(p))
	for i := uint32(0); i < capacity; i++ {
		virt := region.Virt + uintptr(i)*uintptr(packetSize)
		buf := packet.New(virt, pw)
		buf.SetPhysAddr(memory.VirtToPhys(virt))
		buf.SetPoolRef(ref)
		buf.SetSize(0)
		p.free = append(p.free, buf)
	}

	ixylog.Default().Info("memory pool created", "capacity", capacity, "packet_size", packetSize)
	return p, nil
}

// Capacity returns the fixed number of buffers in this pool.
func (p *Pool) Capacity() uint32 { return p.capacity }

// PacketSize returns the fixed size, in bytes, of every buffer.
func (p *Pool) PacketSize() uint32 { return p.packetSize }

// ID returns the pool's registry identifier. Only meaningful once
// Register has succeeded.
func (p *Pool) ID() uint32 { return p.id }

// Buffer returns the buffer at the given index without touching the
// free-list. Exposed for ring initialization, which needs every
// buffer's physical address up front.
func (p *Pool) Buffer(index uint32) packet.Buffer {
	virt := p.base + uintptr(index)*uintptr(p.packetSize)
	return packet.New(virt, p.pw)
}

// Get pops one buffer from the free-list. ok is false if the pool is
// empty.
func (p *Pool) Get() (buf packet.Buffer, ok bool) {
	n := len(p.free)
	if n == 0 {
		return packet.Empty(), false
	}
	buf = p.free[n-1]
	p.free = p.free[:n-1]
	return buf, true
}

// GetBulk pops up to n buffers into dst[offset:], stopping early if dst
// runs out of room or the pool runs out of buffers. It returns the
// number of buffers actually popped.
func (p *Pool) GetBulk(dst []packet.Buffer, offset, n int) int {
	k := n
	if room := len(dst) - offset; room < k {
		k = room
	}
	if avail := len(p.free); avail < k {
		k = avail
	}
	if k <= 0 {
		return 0
	}
	for i := 0; i < k; i++ {
		last := len(p.free) - 1
		dst[offset+i] = p.free[last]
		p.free = p.free[:last]
	}
	return k
}

// Free pushes one buffer back onto the free-list. If the pool is
// already at capacity the buffer is dropped silently: this only happens
// on programmer error (freeing a buffer twice) and is not fatal.
func (p *Pool) Free(buf packet.Buffer) {
	if uint32(len(p.free)) >= p.capacity {
		return
	}
	p.free = append(p.free, buf)
}

// FreeBulk pushes up to n buffers from src[offset:] back onto the
// free-list, stopping early if src runs out or the pool fills up. Each
// consumed slot in src is overwritten with packet.Empty() to guard
// against a later double-free. Returns the number of buffers pushed.
func (p *Pool) FreeBulk(src []packet.Buffer, offset, n int) int {
	k := n
	if avail := len(src) - offset; avail < k {
		k = avail
	}
	if room := int(p.capacity) - len(p.free); room < k {
		k = room
	}
	if k <= 0 {
		return 0
	}
	for i := 0; i < k; i++ {
		p.free = append(p.free, src[offset+i])
		src[offset+i] = packet.Empty()
	}
	return k
}

// Size returns the current number of buffers on the free-list.
func (p *Pool) Size() int { return len(p.free) }

// Release deregisters the pool and returns its DMA region to the
// kernel. The pool must not be used afterwards.
func (p *Pool) Release() error {
	p.Deregister()
	// Free the region exactly as Allocate returned it: Allocate rounds
	// size up to a huge-page multiple, and Free rejects any size that
	// doesn't match what it actually mapped.
	return memory.Free(p.region.Virt, p.region.Size, p.region.Huge)
}
