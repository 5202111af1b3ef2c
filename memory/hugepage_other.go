// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package memory

// HugeTLBFSMountPoint exists for API parity with the Linux build; it has
// no effect since huge-page queries are not supported on this host.
var HugeTLBFSMountPoint = "/mnt/huge"

// SetHugeTLBFSMountPoint exists for API parity with the Linux build.
func SetHugeTLBFSMountPoint(mount string) {
	HugeTLBFSMountPoint = mount
}

func hugePageSize() int64 {
	return -1
}
