// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pci is the sysfs-driven PCI device abstraction: it reads
// configuration space, toggles bus-mastering (DMA), unbinds the kernel
// driver, and maps BAR0 for direct register access. Every operation
// here is a blocking setup-path syscall; none of it runs on the
// steady-state rx/tx path.
package pci

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"regexp"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/ixy-languages/ixy.go/ixyerr"
	"github.com/ixy-languages/ixy.go/ixylog"
)

var addrPattern = regexp.MustCompile(`^[0-9]{4}:[0-9]{2}:[0-9]{2}\.[0-9]$`)

const (
	sysfsDevicesDir = "/sys/bus/pci/devices"
	sysfsDriversDir = "/sys/bus/pci/drivers"

	offsetVendorID = 0x00
	offsetDeviceID = 0x02
	offsetCommand  = 0x04
	offsetClassID  = 0x0B
	offsetBAR0     = 0x10

	commandBusMaster = 1 << 2
)

// Device is a handle bound to one PCI address and driver name. It holds
// open handles to the device's config space, BAR0 resource file, and
// the driver's bind/unbind pseudo-files for as long as it is open.
type Device struct {
	mu sync.Mutex

	addr   string
	driver string

	config   *os.File
	resource *os.File
	bindF    *os.File
	unbindF  *os.File

	mapped      []byte
	unboundByUs bool
	closed      bool
}

// Open validates addr against the PCI address grammar (DDDD:BB:DD.F)
// and opens the four sysfs handles backing the device. On any failure
// all handles opened so far are released before returning.
func Open(addr, driver string) (*Device, error) {
	const op = "pci.Open"
	if !addrPattern.MatchString(addr) {
		return nil, ixyerr.New(ixyerr.InvalidArgument, op, "address must match DDDD:BB:DD.F")
	}

	devDir := fmt.Sprintf("%s/%s", sysfsDevicesDir, addr)
	drvDir := fmt.Sprintf("%s/%s", sysfsDriversDir, driver)

	config, err := os.OpenFile(devDir+"/config", os.O_RDWR, 0)
	if err != nil {
		return nil, ixyerr.Wrap(ixyerr.OsError, op, err)
	}
	resource, err := os.OpenFile(devDir+"/resource0", os.O_RDWR, 0)
	if err != nil {
		config.Close()
		return nil, ixyerr.Wrap(ixyerr.OsError, op, err)
	}
	bindF, err := os.OpenFile(drvDir+"/bind", os.O_WRONLY, 0)
	if err != nil {
		config.Close()
		resource.Close()
		return nil, ixyerr.Wrap(ixyerr.OsError, op, err)
	}
	unbindF, err := os.OpenFile(drvDir+"/unbind", os.O_WRONLY, 0)
	if err != nil {
		config.Close()
		resource.Close()
		bindF.Close()
		return nil, ixyerr.Wrap(ixyerr.OsError, op, err)
	}

	d := &Device{
		addr:     addr,
		driver:   driver,
		config:   config,
		resource: resource,
		bindF:    bindF,
		unbindF:  unbindF,
	}
	ixylog.Default().Info("pci device opened", "addr", addr, "driver", driver)
	return d, nil
}

// Addr returns the device's PCI address.
func (d *Device) Addr() string { return d.addr }

func (d *Device) checkOpen(op string) error {
	if d.closed {
		return ixyerr.New(ixyerr.AlreadyClosed, op, "device is closed")
	}
	return nil
}

// readConfig reads n bytes from config space at offset without
// disturbing any other reader's cursor (pread semantics). A short read
// is logged, not treated as a hard error: the PCI spec guarantees the
// fields this package reads fit within the first 64 bytes, which are
// always mapped.
func (d *Device) readConfig(op string, offset int64, n int) ([]byte, error) {
	if err := d.checkOpen(op); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	got, err := d.config.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, ixyerr.Wrap(ixyerr.OsError, op, err)
	}
	if got < n {
		ixylog.Default().Warn("short PCI config space read",
			"addr", d.addr, "offset", offset, "want", n, "got", got)
	}
	return buf, nil
}

func (d *Device) writeConfig(op string, offset int64, b []byte) error {
	if err := d.checkOpen(op); err != nil {
		return err
	}
	if _, err := d.config.WriteAt(b, offset); err != nil {
		return ixyerr.Wrap(ixyerr.OsError, op, err)
	}
	return nil
}

// VendorID reads the 16-bit vendor identifier at config offset 0x00.
func (d *Device) VendorID() (uint16, error) {
	b, err := d.readConfig("pci.Device.VendorID", offsetVendorID, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// DeviceID reads the 16-bit device identifier at config offset 0x02.
func (d *Device) DeviceID() (uint16, error) {
	b, err := d.readConfig("pci.Device.DeviceID", offsetDeviceID, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ClassID reads the base class code byte at config offset 0x0B. Network
// controllers report 0x02.
func (d *Device) ClassID() (uint8, error) {
	b, err := d.readConfig("pci.Device.ClassID", offsetClassID, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// IsDMAEnabled reports whether bus-mastering (bit 2 of the command
// register at offset 0x04) is set.
func (d *Device) IsDMAEnabled() (bool, error) {
	b, err := d.readConfig("pci.Device.IsDMAEnabled", offsetCommand, 2)
	if err != nil {
		return false, err
	}
	return binary.LittleEndian.Uint16(b)&commandBusMaster != 0, nil
}

// EnableDMA sets bus-mastering in the command register.
func (d *Device) EnableDMA() error {
	return d.setBusMaster(true)
}

// DisableDMA clears bus-mastering in the command register.
func (d *Device) DisableDMA() error {
	return d.setBusMaster(false)
}

func (d *Device) setBusMaster(enable bool) error {
	const op = "pci.Device.setBusMaster"
	b, err := d.readConfig(op, offsetCommand, 2)
	if err != nil {
		return err
	}
	cmd := binary.LittleEndian.Uint16(b)
	if enable {
		cmd |= commandBusMaster
	} else {
		cmd &^= commandBusMaster
	}
	binary.LittleEndian.PutUint16(b, cmd)
	return d.writeConfig(op, offsetCommand, b)
}

// IsMappable reports whether BAR0 is a memory BAR (as opposed to an I/O
// BAR), which is required before calling Map.
func (d *Device) IsMappable() (bool, error) {
	b, err := d.readConfig("pci.Device.IsMappable", offsetBAR0, 4)
	if err != nil {
		return false, err
	}
	bar := binary.LittleEndian.Uint32(b)
	return bar&1 == 0, nil
}

// Bind writes this device's address to the driver's bind file.
// Binding an already-bound device surfaces the kernel's ENODEV
// ("No such device") verbatim.
func (d *Device) Bind() error {
	const op = "pci.Device.Bind"
	if err := d.checkOpen(op); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.bindF.WriteAt([]byte(d.addr), 0); err != nil {
		return ixyerr.Wrap(ixyerr.OsError, op, err)
	}
	d.unboundByUs = false
	return nil
}

// Unbind writes this device's address to the driver's unbind file.
// Unbinding an already-unbound device surfaces the kernel's ENODEV
// verbatim; callers typically tolerate a double-unbind during setup.
func (d *Device) Unbind() error {
	const op = "pci.Device.Unbind"
	if err := d.checkOpen(op); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.unbindF.WriteAt([]byte(d.addr), 0); err != nil {
		return ixyerr.Wrap(ixyerr.OsError, op, err)
	}
	d.unboundByUs = true
	return nil
}

// Map mmaps BAR0 (resource0) read/write at its full file length and
// returns the mapping. Map always opens its own fresh handle to
// resource0, so it remains usable even after Close.
func (d *Device) Map() ([]byte, error) {
	const op = "pci.Device.Map"
	path := fmt.Sprintf("%s/%s/resource0", sysfsDevicesDir, d.addr)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, ixyerr.Wrap(ixyerr.OsError, op, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, ixyerr.Wrap(ixyerr.OsError, op, err)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, ixyerr.Wrap(ixyerr.OsError, op, err)
	}

	d.mu.Lock()
	d.mapped = data
	d.mu.Unlock()
	return data, nil
}

// Close releases the four sysfs handles and unmaps BAR0 if it was
// mapped. It is idempotent: closing an already-closed device succeeds.
// If this Device unbound the kernel driver itself, Close makes a
// best-effort attempt to rebind it.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}

	d.config.Close()
	d.resource.Close()
	d.bindF.Close()
	d.unbindF.Close()
	if d.mapped != nil {
		_ = unix.Munmap(d.mapped)
		d.mapped = nil
	}
	d.closed = true

	if d.unboundByUs {
		path := fmt.Sprintf("%s/%s/bind", sysfsDriversDir, d.driver)
		if f, err := os.OpenFile(path, os.O_WRONLY, 0); err == nil {
			_, _ = f.WriteAt([]byte(d.addr), 0)
			f.Close()
		}
	}

	ixylog.Default().Info("pci device closed", "addr", d.addr, "driver", d.driver)
	return nil
}
