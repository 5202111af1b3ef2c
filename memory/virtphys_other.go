// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package memory

// VirtToPhys always returns 0: bus-address translation requires
// /proc/self/pagemap and is only supported on Linux.
func VirtToPhys(_ uintptr) uintptr {
	return 0
}
