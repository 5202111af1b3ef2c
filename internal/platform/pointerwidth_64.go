// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build amd64 || arm64 || loong64 || mips64 || mips64le || ppc64 || ppc64le || riscv64 || s390x || sparc64 || wasm

package platform

// PointerWidth is the width, in bytes, of a bus address field in the
// packet buffer prefix on this architecture. ixgbe and virtio descriptor
// rings carry 64-bit addresses on every platform ixy.go targets, so this
// is 8 everywhere except the 32-bit build below.
const PointerWidth = 8
