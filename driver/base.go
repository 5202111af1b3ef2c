// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package driver

import (
	"github.com/ixy-languages/ixy.go/mempool"
	"github.com/ixy-languages/ixy.go/packet"
	"github.com/ixy-languages/ixy.go/pci"
)

// Base is the per-NIC object every concrete driver embeds: it owns a
// PCI device, the memory pool feeding its rings, and optional
// statistics, and provides the rx_batch/tx_batch glue that pops buffers
// from the pool, hands them to the Backend, and returns completions to
// the pool. Everything specific to a NIC family lives behind Backend.
type Base struct {
	pciDevice *pci.Device
	pool      *mempool.Pool
	backend   Backend
	stats     *Stats
}

// NewBase wires together a PCI device, the memory pool its rings draw
// from, and the NIC-family backend that implements the register-level
// operations.
func NewBase(pciDevice *pci.Device, pool *mempool.Pool, backend Backend) *Base {
	return &Base{pciDevice: pciDevice, pool: pool, backend: backend}
}

// PCI returns the underlying PCI device.
func (b *Base) PCI() *pci.Device { return b.pciDevice }

// Pool returns the memory pool feeding this device's rings.
func (b *Base) Pool() *mempool.Pool { return b.pool }

// EnableStats attaches a Stats counter set to this device. Until called,
// ReadStats and ResetStats are no-ops: statistics are optional.
func (b *Base) EnableStats(s *Stats) { b.stats = s }

// IsSupported reports whether this device's (vendor, device) id pair
// appears in supported.
func (b *Base) IsSupported(supported []IDPair) (bool, error) {
	vid, err := b.pciDevice.VendorID()
	if err != nil {
		return false, err
	}
	did, err := b.pciDevice.DeviceID()
	if err != nil {
		return false, err
	}
	for _, pair := range supported {
		if pair.VendorID == vid && pair.DeviceID == did {
			return true, nil
		}
	}
	return false, nil
}

// ReadStats copies the current counters into out. It is a no-op if no
// Stats have been attached via EnableStats.
func (b *Base) ReadStats(out *Stats) {
	if b.stats == nil {
		return
	}
	*out = *b.stats
}

// ResetStats zeroes the attached counters, if any.
func (b *Base) ResetStats() {
	if b.stats == nil {
		return
	}
	b.stats.Reset()
}

// IsPromiscuous reports whether the device is in promiscuous mode.
func (b *Base) IsPromiscuous() (bool, error) { return b.backend.IsPromiscuous() }

// EnablePromiscuous puts the device into promiscuous mode.
func (b *Base) EnablePromiscuous() error { return b.backend.SetPromiscuous(true) }

// DisablePromiscuous takes the device out of promiscuous mode.
func (b *Base) DisablePromiscuous() error { return b.backend.SetPromiscuous(false) }

// LinkSpeed reports the current link speed in megabits/sec.
func (b *Base) LinkSpeed() (uint32, error) { return b.backend.LinkSpeedMbps() }

// RxBatch pulls up to length received packets into dst[offset:], then
// replenishes the descriptors it just drained with fresh buffers from
// the pool. It returns the number of packets actually produced and
// never errors just because there was no work: a quiet queue returns
// (0, nil).
func (b *Base) RxBatch(queue int, dst []packet.Buffer, offset, length int) (int, error) {
	n, err := b.backend.PollRx(queue, dst[offset:offset+length])
	if err != nil || n == 0 {
		return 0, err
	}

	if b.stats != nil {
		var bytes uint64
		for i := 0; i < n; i++ {
			bytes += uint64(dst[offset+i].Size())
		}
		b.stats.AddRx(uint32(n), bytes)
	}

	fresh := make([]packet.Buffer, n)
	got := b.pool.GetBulk(fresh, 0, n)
	if got == 0 {
		return n, nil
	}
	if _, err := b.backend.PostRx(queue, fresh[:got]); err != nil {
		return n, err
	}
	return n, nil
}

// TxBatch publishes up to length packets from src[offset:], then
// returns any descriptors the NIC has finished transmitting to the
// pool. It returns the number of packets actually published.
func (b *Base) TxBatch(queue int, src []packet.Buffer, offset, length int) (int, error) {
	posted, err := b.backend.PostTx(queue, src[offset:offset+length])
	if err != nil || posted == 0 {
		return 0, err
	}

	if b.stats != nil {
		var bytes uint64
		for i := 0; i < posted; i++ {
			bytes += uint64(src[offset+i].Size())
		}
		b.stats.AddTx(uint32(posted), bytes)
	}

	completed := make([]packet.Buffer, posted)
	m, err := b.backend.PollTx(queue, completed)
	if err != nil {
		return posted, err
	}
	if m > 0 {
		b.pool.FreeBulk(completed, 0, m)
	}
	return posted, nil
}
