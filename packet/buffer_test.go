// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package packet

import (
	"runtime"
	"testing"
	"unsafe"
)

func newTestBuffer(t *testing.T, pw int) Buffer {
	t.Helper()
	mem := make([]byte, HeaderSize+256)
	virt := uintptr(unsafe.Pointer(&mem[0]))
	t.Cleanup(func() { runtime.KeepAlive(mem) })
	return New(virt, pw)
}

func TestBufferEmptyIsInvalid(t *testing.T) {
	if Empty().IsValid() {
		t.Fatal("empty buffer must be invalid")
	}
	if Empty().Virt() != 0 {
		t.Fatal("empty buffer must have a zero virtual base")
	}
}

func TestBufferHeaderFields(t *testing.T) {
	for _, pw := range []int{4, 8} {
		buf := newTestBuffer(t, pw)
		if !buf.IsValid() {
			t.Fatalf("pw=%d: pool-constructed buffer must be valid", pw)
		}

		buf.SetPhysAddr(0xdeadbeef)
		if got := buf.PhysAddr(); got != 0xdeadbeef {
			t.Fatalf("pw=%d: PhysAddr() = %#x, want %#x", pw, got, 0xdeadbeef)
		}

		buf.SetPoolRef(0x1234)
		if got := buf.PoolRef(); got != 0x1234 {
			t.Fatalf("pw=%d: PoolRef() = %#x, want %#x", pw, got, 0x1234)
		}

		buf.SetPoolID(7)
		if got := buf.PoolID(); got != 7 {
			t.Fatalf("pw=%d: PoolID() = %d, want 7", pw, got)
		}

		buf.SetSize(0x11223344)
		if got := buf.Size(); got != 0x11223344 {
			t.Fatalf("pw=%d: Size() = %#x, want %#x", pw, got, 0x11223344)
		}
	}
}

// TestBufferPrefixEndianness is scenario S6: on a little-endian host, the
// four bytes at offset 2*pw+4 must read back as the little-endian
// encoding of the size field.
func TestBufferPrefixEndianness(t *testing.T) {
	buf := newTestBuffer(t, 8)
	buf.SetSize(0x11223344)

	base := (*[HeaderSize + 256]byte)(unsafe.Pointer(buf.Virt()))
	off := 2*8 + 4
	want := [4]byte{0x44, 0x33, 0x22, 0x11}
	got := [4]byte{base[off], base[off+1], base[off+2], base[off+3]}
	if got != want {
		t.Fatalf("size field bytes = %v, want %v (little-endian host assumed)", got, want)
	}
}

// TestBufferPayloadRoundTrip is property 3, spot-checked: for each scalar
// width (plain and volatile) at one offset each, put followed by get
// returns the written value.
func TestBufferPayloadRoundTrip(t *testing.T) {
	buf := newTestBuffer(t, 8)

	buf.PutU8(0, 0xAB)
	if got := buf.GetU8(0); got != 0xAB {
		t.Fatalf("GetU8(0) = %#x, want 0xAB", got)
	}

	buf.PutU16(2, 0xBEEF)
	if got := buf.GetU16(2); got != 0xBEEF {
		t.Fatalf("GetU16(2) = %#x, want 0xBEEF", got)
	}

	buf.PutU32(8, 0xCAFEBABE)
	if got := buf.GetU32(8); got != 0xCAFEBABE {
		t.Fatalf("GetU32(8) = %#x, want 0xCAFEBABE", got)
	}

	buf.PutU64(16, 0x0102030405060708)
	if got := buf.GetU64(16); got != 0x0102030405060708 {
		t.Fatalf("GetU64(16) = %#x, want 0x0102030405060708", got)
	}

	buf.PutU32Volatile(32, 0x99)
	if got := buf.GetU32Volatile(32); got != 0x99 {
		t.Fatalf("GetU32Volatile(32) = %#x, want 0x99", got)
	}

	buf.PutU64Volatile(40, 0x42)
	if got := buf.GetU64Volatile(40); got != 0x42 {
		t.Fatalf("GetU64Volatile(40) = %#x, want 0x42", got)
	}
}
