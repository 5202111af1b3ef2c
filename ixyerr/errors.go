// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ixyerr defines the error kinds shared by every layer of the
// framework: the memory manager, the packet buffer pool, and the PCI
// device abstraction all report failures through this single vocabulary
// so callers can pattern-match on Kind instead of parsing messages.
package ixyerr

import (
	"errors"

	"golang.org/x/xerrors"
)

// Kind classifies why an operation failed. It never changes the meaning
// of the underlying error, only how a caller should react to it.
type Kind int

const (
	// InvalidArgument marks a null, blank, or out-of-range parameter.
	// Surfaced to the caller; never retried.
	InvalidArgument Kind = iota
	// InvalidAddress marks a physical or virtual address that is zero
	// where it must not be, or a translation that resolved to zero.
	InvalidAddress
	// SizeTooLarge marks a contiguous allocation request bigger than a
	// single huge page.
	SizeTooLarge
	// ResourceExhausted marks exhaustion of a finite resource such as
	// memory-pool identifiers or the huge-page quota. Fatal for setup.
	ResourceExhausted
	// OsError wraps an underlying errno/I/O failure. Its message is
	// preserved verbatim so callers can match on substrings such as
	// "No such device" or "Permission denied".
	OsError
	// NotSupported marks an operation unavailable on this host, such as
	// huge-page allocation off Linux or without a mounted hugetlbfs.
	NotSupported
	// AlreadyClosed marks any operation attempted on a device after it
	// has been closed.
	AlreadyClosed
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case InvalidAddress:
		return "invalid address"
	case SizeTooLarge:
		return "size too large"
	case ResourceExhausted:
		return "resource exhausted"
	case OsError:
		return "os error"
	case NotSupported:
		return "not supported"
	case AlreadyClosed:
		return "already closed"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by every exported operation
// in this framework. Op names the failing operation (e.g. "dma.Allocate")
// for logs; Err carries the underlying cause, if any.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.String()
	}
	return xerrors.Errorf("%s: %s: %w", e.Op, e.Kind, e.Err).Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind with a plain message and no
// wrapped cause.
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Err: errors.New(msg)}
}

// Wrap builds an Error of the given kind around an existing error. It
// returns nil if err is nil, so call sites can write
// "return ixyerr.Wrap(ixyerr.OsError, op, err)" unconditionally.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err is an *Error of the given kind, unwrapping
// through any number of intermediate wrappers.
func Is(err error, kind Kind) bool {
	var e *Error
	if !xerrors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
