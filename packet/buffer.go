// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package packet implements the packet buffer: a typed, zero-copy view
// over a fixed region of DMA memory whose binary layout is dictated by
// the NIC descriptor ring, not by this package. See Buffer for the
// layout.
package packet

import (
	"sync/atomic"
	"unsafe"
)

// HeaderSize is the fixed prefix, in bytes, before packet payload begins
// in every buffer. NIC descriptors reference offset 0 of this prefix
// directly, so it can never change without breaking the wire format.
const HeaderSize = 64

// Buffer is a handle to one packet buffer living at a fixed offset
// inside a memory pool's DMA region. It carries no payload itself; all
// accessors read and write through Virt.
//
// Binary layout at Virt, pw = pointer width (4 or 8):
//
//	offset 0        pw bytes  physical address of this buffer
//	offset pw       pw bytes  owning memory-pool back-reference (opaque to NIC)
//	offset 2*pw     4 bytes   owning memory-pool identifier
//	offset 2*pw+4   4 bytes   current payload size
//	offset 2*pw+8   pad       headroom out to HeaderSize
//	offset 64       variable  packet payload
//
// The zero Buffer is the sentinel "empty" buffer: Virt is 0 and no
// accessor may be called on it.
type Buffer struct {
	virt uintptr
	pw   uintptr
}

// New returns a Buffer viewing the memory at virt. pointerWidth must be
// 4 or 8 and should come from memory.PointerWidth().
func New(virt uintptr, pointerWidth int) Buffer {
	return Buffer{virt: virt, pw: uintptr(pointerWidth)}
}

// Empty returns the sentinel empty buffer.
func Empty() Buffer { return Buffer{} }

// IsValid reports whether this buffer was produced by a pool, i.e. its
// virtual base is non-zero. Any buffer handed out by a Pool is valid for
// its entire lifetime; this is the only check performed.
func (b Buffer) IsValid() bool { return b.virt != 0 }

// Virt returns the virtual base address of this buffer's header prefix.
func (b Buffer) Virt() uintptr { return b.virt }

func (b Buffer) ptr(offset uintptr) unsafe.Pointer {
	return unsafe.Pointer(b.virt + offset)
}

// PhysAddr returns the physical (bus) address stored in the header
// prefix. This field is immutable after SetPhysAddr's single call during
// pool construction.
func (b Buffer) PhysAddr() uintptr {
	if b.pw == 8 {
		return uintptr(atomic.LoadUint64((*uint64)(b.ptr(0))))
	}
	return uintptr(atomic.LoadUint32((*uint32)(b.ptr(0))))
}

// SetPhysAddr writes the physical-address field. Callers other than the
// owning memory pool must never call this: the field is immutable once
// the pool has initialized it.
func (b Buffer) SetPhysAddr(addr uintptr) {
	if b.pw == 8 {
		atomic.StoreUint64((*uint64)(b.ptr(0)), uint64(addr))
	} else {
		atomic.StoreUint32((*uint32)(b.ptr(0)), uint32(addr))
	}
}

// PoolRef returns the owning pool's back-reference, a value opaque to
// the NIC and meaningful only to the pool registry.
func (b Buffer) PoolRef() uintptr {
	if b.pw == 8 {
		return uintptr(atomic.LoadUint64((*uint64)(b.ptr(b.pw))))
	}
	return uintptr(atomic.LoadUint32((*uint32)(b.ptr(b.pw))))
}

// SetPoolRef writes the pool back-reference. Immutable after pool
// registration; only the owning pool calls this.
func (b Buffer) SetPoolRef(ref uintptr) {
	if b.pw == 8 {
		atomic.StoreUint64((*uint64)(b.ptr(b.pw)), uint64(ref))
	} else {
		atomic.StoreUint32((*uint32)(b.ptr(b.pw)), uint32(ref))
	}
}

// PoolID returns the process-wide identifier of the owning memory pool.
func (b Buffer) PoolID() uint32 {
	return atomic.LoadUint32((*uint32)(b.ptr(2 * b.pw)))
}

// SetPoolID writes the owning pool's identifier. Immutable after
// registration; only the owning pool calls this.
func (b Buffer) SetPoolID(id uint32) {
	atomic.StoreUint32((*uint32)(b.ptr(2*b.pw)), id)
}

// Size returns the current payload size in bytes.
func (b Buffer) Size() uint32 {
	return atomic.LoadUint32((*uint32)(b.ptr(2*b.pw + 4)))
}

// SetSize sets the current payload size in bytes. The caller must keep
// it within [0, packet_size-HeaderSize]; SetSize performs no range check
// of its own, keeping the hot path free of it.
func (b Buffer) SetSize(size uint32) {
	atomic.StoreUint32((*uint32)(b.ptr(2*b.pw+4)), size)
}

func (b Buffer) dataPtr(offset uintptr) unsafe.Pointer {
	return unsafe.Pointer(b.virt + HeaderSize + offset)
}

// GetU8 reads one byte of payload at offset, relative to the data area.
func (b Buffer) GetU8(offset uintptr) uint8 {
	return *(*uint8)(b.dataPtr(offset))
}

// PutU8 writes one byte of payload at offset.
func (b Buffer) PutU8(offset uintptr, v uint8) {
	*(*uint8)(b.dataPtr(offset)) = v
}

// GetU16 reads a host-endian 16-bit value of payload at offset.
func (b Buffer) GetU16(offset uintptr) uint16 {
	return *(*uint16)(b.dataPtr(offset))
}

// PutU16 writes a host-endian 16-bit value of payload at offset.
func (b Buffer) PutU16(offset uintptr, v uint16) {
	*(*uint16)(b.dataPtr(offset)) = v
}

// GetU32 reads a host-endian 32-bit value of payload at offset.
func (b Buffer) GetU32(offset uintptr) uint32 {
	return *(*uint32)(b.dataPtr(offset))
}

// PutU32 writes a host-endian 32-bit value of payload at offset.
func (b Buffer) PutU32(offset uintptr, v uint32) {
	*(*uint32)(b.dataPtr(offset)) = v
}

// GetU64 reads a host-endian 64-bit value of payload at offset.
func (b Buffer) GetU64(offset uintptr) uint64 {
	return *(*uint64)(b.dataPtr(offset))
}

// PutU64 writes a host-endian 64-bit value of payload at offset.
func (b Buffer) PutU64(offset uintptr, v uint64) {
	*(*uint64)(b.dataPtr(offset)) = v
}

// GetU32Volatile reads payload at offset with acquire semantics, for
// fields the NIC may have just written back (status bits, lengths).
func (b Buffer) GetU32Volatile(offset uintptr) uint32 {
	return atomic.LoadUint32((*uint32)(b.dataPtr(offset)))
}

// PutU32Volatile writes payload at offset with release semantics, for
// fields the NIC is about to read (descriptor command words).
func (b Buffer) PutU32Volatile(offset uintptr, v uint32) {
	atomic.StoreUint32((*uint32)(b.dataPtr(offset)), v)
}

// GetU64Volatile reads payload at offset with acquire semantics.
func (b Buffer) GetU64Volatile(offset uintptr) uint64 {
	return atomic.LoadUint64((*uint64)(b.dataPtr(offset)))
}

// PutU64Volatile writes payload at offset with release semantics.
func (b Buffer) PutU64Volatile(offset uintptr, v uint64) {
	atomic.StoreUint64((*uint64)(b.dataPtr(offset)), v)
}
