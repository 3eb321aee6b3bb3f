// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package pe decodes the headers of PE/COFF images and identifies archives.
// It reports header fields and the location of each data directory, but never
// reads section data or the contents of the tables the directories point to.
package pe

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Info is the result of a single parse. A nil header means decoding did not
// reach it, either because the container kind has no such header or because
// an earlier error stopped the parse.
type Info struct {
	Kind Kind

	// SignatureOffset is the value of the PE header pointer at offset 60.
	// It is only meaningful when the archive check did not match.
	SignatureOffset int64
	HasSignature    bool
	Layout          Layout

	FileHeader *FileHeader
	StdHeader  *OptionalStdHeader
	WinHeader  *OptionalWinHeader
	DataDirs   *DataDirectories
}

// IsArchive reports whether the input is a common-format archive.
func (nfo *Info) IsArchive() bool {
	return nfo.Kind == KindArchive
}

// IsPE reports whether the input carries a PE signature. This includes plain
// COFF results and images whose optional header could not be identified.
func (nfo *Info) IsPE() bool {
	return nfo.HasSignature
}

// IsCOFF reports whether the input is a COFF file without an optional header.
func (nfo *Info) IsCOFF() bool {
	return nfo.Kind == KindCOFF
}

// IsManaged reports whether the image has a CLR runtime header.
func (nfo *Info) IsManaged() bool {
	return nfo.DataDirs != nil && nfo.DataDirs.Managed()
}

// Option configures a parse.
type Option func(*parser)

// WithLogger makes the parser emit debug events to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *parser) {
		p.log = logger
	}
}

type parser struct {
	c    *Cursor
	log  zerolog.Logger
	info *Info
}

// Parse classifies r and decodes its headers in a single pass. The returned
// *Info is never nil: when err is non-nil it holds every record decoded
// before the failure, so callers can still report what was found.
func Parse(r io.ReadSeeker, opts ...Option) (*Info, error) {
	p := &parser{
		c:    NewCursor(r),
		log:  zerolog.Nop(),
		info: &Info{},
	}
	for _, opt := range opts {
		opt(p)
	}

	err := p.run()
	p.log.Debug().
		Stringer("kind", p.info.Kind).
		Int64("bytesRead", p.c.BytesRead()).
		Err(err).
		Msg("parse finished")
	return p.info, err
}

// ParseFile opens the file at path, parses it and closes it again. If the file
// cannot be opened the error is an *OpenError and the *Info is nil.
func ParseFile(path string, opts ...Option) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	defer f.Close()

	return Parse(f, opts...)
}

func (p *parser) run() error {
	if err := p.classify(); err != nil {
		return err
	}

	kind := p.info.Kind
	p.log.Debug().
		Stringer("kind", kind).
		Int64("signature", p.info.SignatureOffset).
		Bool("hasSignature", p.info.HasSignature).
		Msg("classified input")
	if kind != KindPE32 && kind != KindPE32Plus {
		return nil
	}

	p.info.Layout = ResolveLayout(p.info.SignatureOffset, kind)
	p.log.Debug().
		Int64("fileHeader", p.info.Layout.FileHeader).
		Int64("optionalStd", p.info.Layout.OptionalStd).
		Int64("optionalWin", p.info.Layout.OptionalWin).
		Int64("dataDirectories", p.info.Layout.DataDirectories).
		Msg("resolved layout")

	sh, err := p.decodeStdHeader()
	if err != nil {
		return errors.Wrap(err, "reading optional standard header")
	}
	p.info.StdHeader = sh

	wh, err := p.decodeWinHeader()
	if err != nil {
		return errors.Wrap(err, "reading optional Windows header")
	}
	p.info.WinHeader = wh

	dd, err := p.decodeDataDirectories(wh.NumberOfRvaAndSizes)
	if err != nil {
		return errors.Wrap(err, "reading data directories")
	}
	p.info.DataDirs = dd
	return nil
}
