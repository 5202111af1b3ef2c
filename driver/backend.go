// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package driver is the device base: the per-NIC lifecycle glue that
// owns a PCI device, a memory pool, and optional statistics, and
// dispatches rx_batch/tx_batch to a NIC-family Backend. Programming the
// actual ixgbe/virtio registers is out of scope for this framework —
// Backend is the seam a concrete driver fills in.
package driver

import "github.com/ixy-languages/ixy.go/packet"

// Backend is implemented once per NIC family (ixgbe, virtio, ...) and
// supplies the register-level operations Base cannot express
// generically: ring descriptor state, the promiscuous-mode bit, and the
// link-speed register.
type Backend interface {
	// IsPromiscuous reports the current promiscuous-mode state.
	IsPromiscuous() (bool, error)
	// SetPromiscuous enables or disables promiscuous mode.
	SetPromiscuous(enable bool) error
	// LinkSpeedMbps reports the current link speed in megabits/sec.
	LinkSpeedMbps() (uint32, error)

	// PollRx fills dst with packets the NIC has already written back on
	// queue, returning how many it produced. It never blocks: an empty
	// queue simply produces 0.
	PollRx(queue int, dst []packet.Buffer) (int, error)
	// PostRx hands fresh buffers to the receive ring on queue, replacing
	// the descriptors PollRx just drained, returning how many it
	// accepted.
	PostRx(queue int, buffers []packet.Buffer) (int, error)
	// PostTx publishes buffers to the transmit ring on queue, returning
	// how many it accepted.
	PostTx(queue int, buffers []packet.Buffer) (int, error)
	// PollTx collects buffers whose transmission has completed into dst,
	// returning how many it produced.
	PollTx(queue int, dst []packet.Buffer) (int, error)
}

// IDPair is one (vendor, device) identifier pair from a NIC family's
// supported-hardware list.
type IDPair struct {
	VendorID uint16
	DeviceID uint16
}
