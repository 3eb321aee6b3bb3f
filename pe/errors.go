// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package pe

import (
	"fmt"
)

// TruncatedInputError is returned when fewer bytes remain in the input than
// a field requires. The decoder never pads a short read with zeros.
type TruncatedInputError struct {
	Offset int64 // where the read started
	Want   int
	Got    int
}

func (e *TruncatedInputError) Error() string {
	return fmt.Sprintf("truncated input at offset 0x%X: want %d bytes, got %d", e.Offset, e.Want, e.Got)
}

// InvalidWidthError is returned when an integer read is requested with a
// width outside 1..8 bytes.
type InvalidWidthError struct {
	Width int
}

func (e *InvalidWidthError) Error() string {
	return fmt.Sprintf("invalid integer width %d: must be between 1 and %d bytes", e.Width, maxWidth)
}

// UnknownOptionalHeaderMagicError is returned when an image carries a valid PE
// signature and optional header, but the optional header magic is neither
// PE32 nor PE32+. The COFF file header decoded before it remains valid.
type UnknownOptionalHeaderMagicError struct {
	Magic uint16
}

func (e *UnknownOptionalHeaderMagicError) Error() string {
	return fmt.Sprintf("unknown optional header magic 0x%04X", e.Magic)
}

// OpenError is returned by ParseFile when the input cannot be opened for
// reading.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("could not open %q for reading: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}
