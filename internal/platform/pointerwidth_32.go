// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build 386 || arm || mips || mipsle || ppc || s390 || armbe || mipsbe || riscv32

package platform

// PointerWidth is the width, in bytes, of a bus address field in the
// packet buffer prefix on this architecture.
const PointerWidth = 4
