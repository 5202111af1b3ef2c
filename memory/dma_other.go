// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package memory

import "github.com/ixy-languages/ixy.go/ixyerr"

// allocateHuge always fails on non-Linux hosts: huge-page allocation
// requires hugetlbfs, which this framework only speaks on Linux.
func allocateHuge(_ uintptr) (*Region, error) {
	return nil, ixyerr.New(ixyerr.NotSupported, "memory.allocateHuge", "huge pages are only supported on Linux")
}
