// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package driver

import "github.com/ixy-languages/ixy.go/internal/platform"

// statsSize is the size in bytes of the four counter fields below.
const statsSize = 4 + 4 + 8 + 8

// statsPad rounds a Stats struct up to one cache line. A forwarder with
// several NICs typically keeps their Stats side by side in one slice
// while a separate monitoring goroutine reads them; padding keeps the
// polling thread writing device N's counters from sharing a cache line
// with whatever goroutine is reading device N+1's.
const statsPad = platform.CacheLineSize - statsSize

// Stats holds per-device monotonic packet and byte counters. Packet
// counts wrap at 2^32, byte counts at 2^64, matching unsigned integer
// overflow in Go; they only ever increase until Reset is called.
type Stats struct {
	RxPackets uint32
	TxPackets uint32
	RxBytes   uint64
	TxBytes   uint64
	_         [statsPad]byte
}

// AddRx accumulates a batch of received packets into the counters.
func (s *Stats) AddRx(packets uint32, bytes uint64) {
	s.RxPackets += packets
	s.RxBytes += bytes
}

// AddTx accumulates a batch of transmitted packets into the counters.
func (s *Stats) AddTx(packets uint32, bytes uint64) {
	s.TxPackets += packets
	s.TxBytes += bytes
}

// Reset zeroes all four counters.
func (s *Stats) Reset() {
	*s = Stats{}
}
