// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package pe

import (
	"io"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

const maxWidth = 8

// Cursor is a positioned little-endian reader over a seekable byte source.
// Every read is checked against the bytes actually available.
type Cursor struct {
	r         io.ReadSeeker
	pos       int64
	bytesRead int64
	buf       [maxWidth]byte
}

// NewCursor returns a Cursor positioned at the start of r.
func NewCursor(r io.ReadSeeker) *Cursor {
	return &Cursor{r: r}
}

// Pos returns the absolute offset of the next read.
func (c *Cursor) Pos() int64 {
	return c.pos
}

// BytesRead returns the total number of bytes consumed so far, across seeks.
func (c *Cursor) BytesRead() int64 {
	return c.bytesRead
}

// Seek repositions c at the absolute offset off.
func (c *Cursor) Seek(off int64) error {
	if off < 0 {
		return errors.Errorf("seek to negative offset %d", off)
	}
	if _, err := c.r.Seek(off, io.SeekStart); err != nil {
		return errors.Wrapf(err, "seeking to 0x%X", off)
	}
	c.pos = off
	return nil
}

// ReadBytes reads exactly n bytes from the current position.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := c.fill(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadUint reads width bytes from the current position and interprets them as
// an unsigned little-endian integer. width must be between 1 and 8.
func (c *Cursor) ReadUint(width int) (uint64, error) {
	if width < 1 || width > maxWidth {
		return 0, &InvalidWidthError{Width: width}
	}

	buf := c.buf[:width]
	if err := c.fill(buf); err != nil {
		return 0, err
	}

	var v uint64
	for i, b := range buf {
		v |= uint64(b) << (8 * i)
	}
	return v, nil
}

func (c *Cursor) fill(buf []byte) error {
	start := c.pos
	n, err := io.ReadFull(c.r, buf)
	c.pos += int64(n)
	c.bytesRead += int64(n)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return &TruncatedInputError{Offset: start, Want: len(buf), Got: n}
		}
		return errors.Wrapf(err, "reading %d bytes at 0x%X", len(buf), start)
	}
	return nil
}

// fieldReader decodes a run of consecutive fields. The first error is kept
// and every later read becomes a no-op, so a record is decoded with a single
// error check at the end.
type fieldReader struct {
	c   *Cursor
	err error
}

func readField[T constraints.Unsigned](fr *fieldReader, width int, dst *T) {
	if fr.err != nil {
		return
	}
	v, err := fr.c.ReadUint(width)
	if err != nil {
		fr.err = err
		return
	}
	*dst = T(v)
}
