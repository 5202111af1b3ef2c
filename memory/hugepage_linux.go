// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package memory

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
)

// HugeTLBFSMountPoint is the build-time constant mount point for the
// hugetlbfs filesystem backing this framework's huge-page allocations.
// It can be overridden for testing via SetHugeTLBFSMountPoint.
var HugeTLBFSMountPoint = "/mnt/huge"

// SetHugeTLBFSMountPoint overrides the configured hugetlbfs mount point.
// It also invalidates the cached huge page size so the next call to
// HugePageSize re-scans /etc/mtab and /proc/meminfo.
func SetHugeTLBFSMountPoint(mount string) {
	hugePageOnce = sync.Once{}
	HugeTLBFSMountPoint = mount
}

var (
	hugePageOnce sync.Once
	hugePageVal  int64
)

func hugePageSize() int64 {
	hugePageOnce.Do(func() {
		hugePageVal = probeHugePageSize(HugeTLBFSMountPoint)
	})
	return hugePageVal
}

func probeHugePageSize(mount string) int64 {
	if !hugetlbfsMounted(mount) {
		return -1
	}
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return -1
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "Hugepagesize:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return -1
		}
		n, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return -1
		}
		switch fields[2] {
		case "B":
			return n
		case "kB":
			return n * 1024
		case "MB":
			return n * 1024 * 1024
		case "GB":
			return n * 1024 * 1024 * 1024
		default:
			return 0
		}
	}
	if err := sc.Err(); err != nil {
		return -1
	}
	return -1
}

func hugetlbfsMounted(mount string) bool {
	f, err := os.Open("/etc/mtab")
	if err != nil {
		return false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		// fstab/mtab line shape: <device> <mountpoint> <fstype> ...
		if fields[0] == "hugetlbfs" && fields[1] == mount && fields[2] == "hugetlbfs" {
			return true
		}
	}
	return false
}
