// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package memory

import (
	"encoding/binary"
	"os"
)

// pagemapPFNMask isolates the low 55 bits of a /proc/self/pagemap entry,
// which hold the physical page-frame number.
const pagemapPFNMask = (1 << 55) - 1

// VirtToPhys translates a virtual address in this process into its
// physical (bus) address by consulting /proc/self/pagemap.
//
// Returns 0 if the page is not present, or on any read failure. Callers
// must treat 0 as "translation unavailable", never as a legitimate
// physical address.
func VirtToPhys(virt uintptr) uintptr {
	pageSize := uintptr(PageSize())
	pageOffset := virt & (pageSize - 1)
	virtPage := virt - pageOffset

	f, err := os.Open("/proc/self/pagemap")
	if err != nil {
		return 0
	}
	defer f.Close()

	// /proc/self/pagemap entries are always 8 bytes wide regardless of
	// pointer_width: that's a kernel ABI constant, not the bus-address
	// width carried in the packet buffer prefix (see memory.PointerWidth).
	var buf [8]byte
	off := int64(virtPage/pageSize) * int64(len(buf))
	if _, err := f.ReadAt(buf[:], off); err != nil {
		return 0
	}

	entry := binary.NativeEndian.Uint64(buf[:])
	pfn := uintptr(entry & pagemapPFNMask)
	if pfn == 0 {
		return 0
	}
	return pfn*pageSize + pageOffset
}
