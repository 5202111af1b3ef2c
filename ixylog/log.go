// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ixylog provides the structured logger used on the framework's
// setup and teardown paths (DMA region allocation and release, memory
// pool creation, PCI device open/close and short config-space reads). It is never touched from rx_batch/tx_batch: the steady
// state never allocates and never logs.
package ixylog

import (
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	current = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

// SetDefault replaces the package-wide logger, e.g. to attach JSON
// output or a different level in a host application.
func SetDefault(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	current = l
}

// Default returns the current package-wide logger.
func Default() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}
