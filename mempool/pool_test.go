// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package mempool

import (
	"testing"

	"github.com/ixy-languages/ixy.go/packet"
)

// TestPoolConservation is property 1: a pool that starts and ends full
// reports size() == capacity and never hands out the same buffer twice
// in between.
func TestPoolConservation(t *testing.T) {
	p, err := New(64, 2048)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { p.Release() })

	if got := p.Size(); int(got) != 64 {
		t.Fatalf("Size() = %d, want 64", got)
	}

	dst := make([]packet.Buffer, 16)
	got := p.GetBulk(dst, 0, 16)
	if got != 16 {
		t.Fatalf("GetBulk = %d, want 16", got)
	}
	if p.Size() != 48 {
		t.Fatalf("Size() after GetBulk = %d, want 48", p.Size())
	}

	seen := map[uintptr]bool{}
	for _, b := range dst {
		if seen[b.Virt()] {
			t.Fatalf("buffer %#x handed out twice", b.Virt())
		}
		seen[b.Virt()] = true
	}

	freed := p.FreeBulk(dst, 0, 16)
	if freed != 16 {
		t.Fatalf("FreeBulk = %d, want 16", freed)
	}
	if p.Size() != 64 {
		t.Fatalf("Size() after FreeBulk = %d, want 64", p.Size())
	}
	for _, b := range dst {
		if b.IsValid() {
			t.Fatal("FreeBulk must null out consumed source slots")
		}
	}
}

func TestPoolGetEmpty(t *testing.T) {
	p, err := New(1, 2048)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { p.Release() })

	if _, ok := p.Get(); !ok {
		t.Fatal("first Get() on a fresh pool must succeed")
	}
	if _, ok := p.Get(); ok {
		t.Fatal("Get() on an empty pool must report ok=false")
	}
}

func TestPoolFreeBeyondCapacityIsSilent(t *testing.T) {
	p, err := New(1, 2048)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { p.Release() })

	buf, _ := p.Get()
	p.Free(buf)
	if p.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", p.Size())
	}
	// The pool is already full; a second Free of the same logical slot
	// must be dropped silently rather than growing past capacity.
	p.Free(buf)
	if p.Size() != 1 {
		t.Fatalf("Size() after over-free = %d, want 1 (dropped, not grown)", p.Size())
	}
}

// TestPoolPhysAddrStability is property 4: the physical address of every
// buffer is resolved once at construction and never changes afterwards.
func TestPoolPhysAddrStability(t *testing.T) {
	p, err := New(8, 2048)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { p.Release() })

	want := make([]uintptr, p.Capacity())
	for i := uint32(0); i < p.Capacity(); i++ {
		want[i] = p.Buffer(i).PhysAddr()
		if want[i] == 0 {
			t.Fatalf("buffer %d has a zero physical address", i)
		}
	}
	for i := uint32(0); i < p.Capacity(); i++ {
		if got := p.Buffer(i).PhysAddr(); got != want[i] {
			t.Fatalf("buffer %d PhysAddr changed: %#x -> %#x", i, want[i], got)
		}
	}
}

// TestIdentifierUniqueness is property 2.
func TestIdentifierUniqueness(t *testing.T) {
	pools := make([]*Pool, 4)
	ids := map[uint32]bool{}
	for i := range pools {
		p, err := New(1, 2048)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := p.Register(); err != nil {
			t.Fatalf("Register: %v", err)
		}
		t.Cleanup(func() { p.Release() })
		if ids[p.ID()] {
			t.Fatalf("duplicate pool id %d", p.ID())
		}
		ids[p.ID()] = true
		pools[i] = p
	}

	for _, p := range pools {
		if got, ok := Find(p.ID()); !ok || got != p {
			t.Fatalf("Find(%d) did not return the registered pool", p.ID())
		}
	}

	pools[1].Deregister()
	if _, ok := Find(pools[1].ID()); ok {
		t.Fatalf("Find(%d) succeeded after Deregister", pools[1].ID())
	}
}

// TestRegisterStampsBufferBackReferences confirms every buffer, not just
// ones still on the free-list, carries the owning pool's id once Register
// has run, and that Find resolves that id back to the pool.
func TestRegisterStampsBufferBackReferences(t *testing.T) {
	p, err := New(4, 2048)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { p.Release() })

	// Take one buffer off the free-list before registering, to confirm
	// Register reaches buffers regardless of free-list membership.
	inFlight, ok := p.Get()
	if !ok {
		t.Fatal("Get() on a fresh pool must succeed")
	}

	if err := p.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}

	for i := uint32(0); i < p.Capacity(); i++ {
		if got := p.Buffer(i).PoolID(); got != p.ID() {
			t.Fatalf("buffer %d PoolID() = %d, want %d", i, got, p.ID())
		}
	}
	if got := inFlight.PoolID(); got != p.ID() {
		t.Fatalf("in-flight buffer PoolID() = %d, want %d", got, p.ID())
	}
	if found, ok := Find(inFlight.PoolID()); !ok || found != p {
		t.Fatal("Find(buf.PoolID()) did not resolve back to the owning pool")
	}
}

// TestHugePagePool is scenario S1 at its full size (2048 buffers of 2048
// bytes): it exercises the full -> drain -> replenish -> full cycle the
// scenario describes, and skips on hosts where the pool cannot be built.
func TestHugePagePool(t *testing.T) {
	p, err := New(2048, 2048)
	if err != nil {
		t.Skipf("huge-page pool unavailable on this host: %v", err)
	}
	t.Cleanup(func() { p.Release() })

	if p.Size() != 2048 {
		t.Fatalf("Size() = %d, want 2048", p.Size())
	}
	for i := uint32(0); i < p.Capacity(); i++ {
		if p.Buffer(i).PhysAddr() == 0 {
			t.Fatalf("buffer %d has a zero physical address", i)
		}
	}

	dst := make([]packet.Buffer, 32)
	if got := p.GetBulk(dst, 0, 32); got != 32 {
		t.Fatalf("GetBulk = %d, want 32", got)
	}
	if got := p.FreeBulk(dst, 0, 32); got != 32 {
		t.Fatalf("FreeBulk = %d, want 32", got)
	}
	if p.Size() != 2048 {
		t.Fatalf("Size() after round-trip = %d, want 2048", p.Size())
	}
}
