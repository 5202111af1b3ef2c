// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package memory is the DMA memory manager: it allocates huge-page- or
// page-backed physically contiguous regions and resolves their virtual
// addresses to the physical (bus) addresses the NIC uses for DMA.
//
// Every operation here belongs to the setup/teardown path described in
// the framework's concurrency model: allocation blocks on file and mmap
// I/O, and the process-wide region registry is guarded by a mutex that
// the steady-state rx/tx path never touches.
package memory

import (
	"sync"

	"github.com/ixy-languages/ixy.go/ixyerr"
	"github.com/ixy-languages/ixy.go/ixylog"
)

// Region is an owned, physically addressable range of virtual memory.
// When Huge is true the region is made of whole huge pages, each of
// which is physically contiguous; a region of one huge page is therefore
// contiguous for its entire Size, while a larger one is not guaranteed
// to be contiguous across huge-page boundaries.
type Region struct {
	Virt uintptr
	Phys uintptr
	Size uintptr
	Huge bool
}

var (
	regionsMu sync.Mutex
	regions   = map[uintptr]*Region{}
)

// Allocate reserves size bytes of DMA-capable memory.
//
// When huge is true, size is rounded up to a whole number of huge pages
// mapped from a hugetlbfs file that is created, locked, and unlinked in
// the same call; the mapping remains valid after the file is removed. When
// huge is false, the region is an anonymous, page-aligned mapping with
// no contiguity guarantee beyond a single page.
//
// A contiguous request larger than one huge page fails with
// ixyerr.SizeTooLarge; contiguous requests that fit are always
// huge-page-backed regardless of the huge argument.
func Allocate(size uintptr, huge, contiguous bool) (*Region, error) {
	const op = "memory.Allocate"
	if size == 0 {
		return nil, ixyerr.New(ixyerr.InvalidArgument, op, "size must be greater than zero")
	}
	if contiguous {
		hp := HugePageSize()
		if hp <= 0 || size > uintptr(hp) {
			return nil, ixyerr.New(ixyerr.SizeTooLarge, op, "contiguous allocation exceeds one huge page")
		}
		huge = true
	}

	var (
		r   *Region
		err error
	)
	if huge {
		r, err = allocateHuge(size)
	} else {
		r, err = allocateAnon(size)
	}
	if err != nil {
		return nil, err
	}

	r.Phys = VirtToPhys(r.Virt)

	regionsMu.Lock()
	regions[r.Virt] = r
	regionsMu.Unlock()

	ixylog.Default().Info("dma region allocated",
		"virt", r.Virt, "phys", r.Phys, "size", r.Size, "huge", r.Huge)
	return r, nil
}

// Free releases a region previously returned by Allocate. address, size
// and huge must match the original allocation exactly; address values
// not produced by Allocate fail with ixyerr.InvalidAddress.
func Free(address, size uintptr, huge bool) error {
	const op = "memory.Free"

	regionsMu.Lock()
	r, ok := regions[address]
	if ok {
		delete(regions, address)
	}
	regionsMu.Unlock()

	if !ok {
		return ixyerr.New(ixyerr.InvalidAddress, op, "address was not produced by this allocator")
	}
	if r.Size != size || r.Huge != huge {
		// Put the bookkeeping entry back: the caller's request did not
		// match, so nothing has actually been freed yet.
		regionsMu.Lock()
		regions[address] = r
		regionsMu.Unlock()
		return ixyerr.New(ixyerr.InvalidArgument, op, "size/huge do not match the original allocation")
	}

	err := unmapRegion(r)
	if err != nil {
		return ixyerr.Wrap(ixyerr.OsError, op, err)
	}
	ixylog.Default().Info("dma region freed", "virt", address, "huge", huge)
	return nil
}
