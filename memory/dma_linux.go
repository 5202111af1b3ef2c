// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package memory

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ixy-languages/ixy.go/ixyerr"
)

var hugeFileSeq atomic.Uint64

// allocateHuge maps size bytes rounded up to a whole number of huge
// pages (a single huge page when size fits in one), backed by a uniquely
// named file under HugeTLBFSMountPoint. The file is created
// with O_CREAT|O_EXCL, exclusively flock'd to guard against a racing
// allocator reusing the same name, truncated to the mapping size, mapped
// MAP_SHARED, mlock'd, and finally unlinked: the mapping and the lock
// keep the memory resident after the directory entry is gone.
func allocateHuge(size uintptr) (*Region, error) {
	const op = "memory.allocateHuge"

	hp := HugePageSize()
	if hp <= 0 {
		return nil, ixyerr.New(ixyerr.NotSupported, op, "hugetlbfs is not mounted or its page size is unreadable")
	}
	mapSize := roundUp(size, uintptr(hp))

	path := fmt.Sprintf("%s/ixy-%d-%d", HugeTLBFSMountPoint, os.Getpid(), hugeFileSeq.Add(1))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		return nil, ixyerr.Wrap(ixyerr.OsError, op, err)
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		os.Remove(path)
		return nil, ixyerr.Wrap(ixyerr.OsError, op, err)
	}
	if err := f.Truncate(int64(mapSize)); err != nil {
		os.Remove(path)
		return nil, ixyerr.Wrap(ixyerr.OsError, op, err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(mapSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		os.Remove(path)
		if errors.Is(err, unix.ENOMEM) {
			return nil, ixyerr.Wrap(ixyerr.ResourceExhausted, op, err)
		}
		return nil, ixyerr.Wrap(ixyerr.OsError, op, err)
	}
	if err := unix.Mlock(data); err != nil {
		_ = unix.Munmap(data)
		os.Remove(path)
		return nil, ixyerr.Wrap(ixyerr.OsError, op, err)
	}
	if err := os.Remove(path); err != nil {
		_ = unix.Munlock(data)
		_ = unix.Munmap(data)
		return nil, ixyerr.Wrap(ixyerr.OsError, op, err)
	}

	return &Region{
		Virt: uintptr(unsafe.Pointer(unsafe.SliceData(data))),
		Size: mapSize,
		Huge: true,
	}, nil
}
