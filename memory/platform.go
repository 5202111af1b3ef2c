// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memory

import (
	"os"
	"sync"

	"github.com/ixy-languages/ixy.go/internal/platform"
)

var (
	pageSizeOnce sync.Once
	pageSize     int
)

// PageSize returns the size, in bytes, of a regular (non-huge) memory
// page on this host. The value is read once via the OS and cached.
func PageSize() int {
	pageSizeOnce.Do(func() {
		pageSize = os.Getpagesize()
	})
	return pageSize
}

// PointerWidth returns the width, in bytes, of a bus address as carried
// in the packet buffer prefix: 8 on every 64-bit target, 4 on 32-bit ones.
func PointerWidth() int {
	return platform.PointerWidth
}

// HugePageSize returns the size, in bytes, of a huge page as reported by
// /proc/meminfo, after confirming hugetlbfs is mounted via /etc/mtab.
//
// Returns -1 if hugetlbfs is not mounted, or if either file cannot be
// read (including on hosts where this query is not supported at all).
// Returns 0 if the unit suffix in /proc/meminfo is not recognized.
// The result is cached after the first call.
func HugePageSize() int64 {
	return hugePageSize()
}
