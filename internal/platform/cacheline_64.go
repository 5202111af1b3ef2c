// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build amd64 || arm64 || loong64 || mips64 || mips64le || ppc64 || ppc64le || riscv64 || s390x || sparc64 || wasm

package platform

// CacheLineSize is the L1 cache line size, in bytes, on this
// architecture. Used to pad driver.Stats so that the counters of
// adjacent devices never share a cache line.
const CacheLineSize = 64
