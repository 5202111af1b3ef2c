// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memory

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ixy-languages/ixy.go/ixyerr"
)

// allocateAnon maps an anonymous, page-aligned range of memory. It has
// no huge-page contiguity guarantee and is available on every host that
// golang.org/x/sys/unix supports, not only Linux.
func allocateAnon(size uintptr) (*Region, error) {
	const op = "memory.allocateAnon"
	pageSize := uintptr(PageSize())
	mapSize := roundUp(size, pageSize)

	data, err := unix.Mmap(-1, 0, int(mapSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		if errors.Is(err, unix.ENOMEM) {
			return nil, ixyerr.Wrap(ixyerr.ResourceExhausted, op, err)
		}
		return nil, ixyerr.Wrap(ixyerr.OsError, op, err)
	}

	return &Region{
		Virt: uintptr(unsafe.Pointer(unsafe.SliceData(data))),
		Size: mapSize,
		Huge: false,
	}, nil
}

func roundUp(size, align uintptr) uintptr {
	return (size + align - 1) &^ (align - 1)
}

// unmapRegion releases the virtual memory backing r, unlocking it first
// if it was huge-page-backed and therefore pinned.
func unmapRegion(r *Region) error {
	data := unsafe.Slice((*byte)(unsafe.Pointer(r.Virt)), r.Size)
	if r.Huge {
		_ = unix.Munlock(data)
	}
	return unix.Munmap(data)
}
