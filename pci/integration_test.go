// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package pci

import (
	"os"
	"testing"

	"github.com/ixy-languages/ixy.go/ixyerr"
)

// testDevice opens the first ixgbe NIC named by IXY_IXGBE_ADDR_1, or
// skips the test if no such hardware was made available to this run.
func testDevice(t *testing.T) *Device {
	t.Helper()
	addr := os.Getenv("IXY_IXGBE_ADDR_1")
	if addr == "" {
		t.Skip("IXY_IXGBE_ADDR_1 not set; no NIC available for integration test")
	}
	d, err := Open(addr, "ixgbe")
	if err != nil {
		t.Fatalf("Open(%s): %v", addr, err)
	}
	return d
}

// TestDMAEnableRoundTrip is scenario S2.
func TestDMAEnableRoundTrip(t *testing.T) {
	d := testDevice(t)
	defer d.Close()

	if err := d.EnableDMA(); err != nil {
		t.Fatalf("EnableDMA: %v", err)
	}
	if on, err := d.IsDMAEnabled(); err != nil || !on {
		t.Fatalf("IsDMAEnabled() = (%v, %v), want (true, nil)", on, err)
	}
	if err := d.DisableDMA(); err != nil {
		t.Fatalf("DisableDMA: %v", err)
	}
	if on, err := d.IsDMAEnabled(); err != nil || on {
		t.Fatalf("IsDMAEnabled() = (%v, %v), want (false, nil)", on, err)
	}
}

// TestPCIConfigParity is property 5.
func TestPCIConfigParity(t *testing.T) {
	d := testDevice(t)
	defer d.Close()

	if _, err := d.VendorID(); err != nil {
		t.Fatalf("VendorID: %v", err)
	}
	class, err := d.ClassID()
	if err != nil {
		t.Fatalf("ClassID: %v", err)
	}
	if class != 0x02 {
		t.Fatalf("ClassID() = %#x, want 0x02 (network controller)", class)
	}
}

// TestCloseInvalidates is scenario S5.
func TestCloseInvalidates(t *testing.T) {
	d := testDevice(t)

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := d.VendorID(); !ixyerr.Is(err, ixyerr.AlreadyClosed) {
		t.Fatalf("VendorID after Close = %v, want AlreadyClosed", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second Close = %v, want nil", err)
	}
}

// TestBindUnbindSequence is scenario S4: starting bound, unbind/bind
// must alternate ok/ENODEV correctly.
func TestBindUnbindSequence(t *testing.T) {
	d := testDevice(t)
	defer d.Close()

	if err := d.Bind(); err == nil {
		t.Fatal("Bind() on an already-bound device should surface the kernel's ENODEV")
	}
	if err := d.Unbind(); err != nil {
		t.Fatalf("Unbind() on a bound device: %v", err)
	}
	if err := d.Unbind(); err == nil {
		t.Fatal("second Unbind() should surface the kernel's ENODEV")
	}
	if err := d.Bind(); err != nil {
		t.Fatalf("Bind() after Unbind(): %v", err)
	}
}
