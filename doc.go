// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ixy is a userspace driver framework for 10-gigabit Ethernet
// NICs (Intel 82599/ixgbe, with VirtIO as a secondary target) that
// bypasses the kernel network stack entirely.
//
// The framework provides the three subsystems a zero-copy forwarder
// needs to poll hardware rx/tx rings directly from user space:
//
//   - memory: huge-page-backed DMA allocation and virtual-to-physical
//     address translation.
//   - packet/mempool: fixed-layout packet buffers sharing their binary
//     format with NIC descriptors, preallocated into pools with a LIFO
//     free-list.
//   - pci: sysfs-driven configuration-space access, driver bind/unbind,
//     and BAR0 mapping.
//
// The driver package ties these together into a per-NIC Base that a
// concrete NIC-family driver (ixgbe, virtio) fills in via the Backend
// interface; programming the actual descriptor rings is outside this
// module's scope.
//
// Pools are single-thread-owned: nothing in this module synchronizes
// concurrent access to a pool's free-list, matching one polling thread
// per receive/transmit queue.
package ixy
