// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package pe

import (
	"bytes"
	"strconv"

	"github.com/pkg/errors"
)

// Kind is the container kind of a parsed input.
type Kind int

const (
	KindNotRecognized Kind = iota
	KindArchive            // common archive format ("!<arch>")
	KindCOFF               // PE signature present but no optional header
	KindPE32
	KindPE32Plus
)

func (k Kind) String() string {
	switch k {
	case KindNotRecognized:
		return "NotRecognized"
	case KindArchive:
		return "Archive"
	case KindCOFF:
		return "COFF"
	case KindPE32:
		return "PE32"
	case KindPE32Plus:
		return "PE32+"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

var (
	archiveMagic = []byte("!<arch>")
	peSignature  = []byte("PE")
)

// classify inspects the magic bytes of the input and records how far the
// container could be identified. It stops as soon as the kind is known: an
// archive is identified from its first 7 bytes alone, and a missing PE
// signature or empty optional header ends classification before the
// optional header magic is read.
func (p *parser) classify() error {
	if err := p.c.Seek(0); err != nil {
		return err
	}
	head, err := p.c.ReadBytes(len(archiveMagic))
	if err != nil {
		return errors.Wrap(err, "reading archive magic")
	}
	if bytes.Equal(head, archiveMagic) {
		p.info.Kind = KindArchive
		return nil
	}

	if err := p.c.Seek(offsetIMAGE_DOS_HEADERe_lfanew); err != nil {
		return err
	}
	e_lfanew, err := p.c.ReadUint(sizeE_lfanew)
	if err != nil {
		return errors.Wrap(err, "reading PE header pointer")
	}
	sig := int64(e_lfanew)
	p.info.SignatureOffset = sig
	p.info.Layout = ResolveLayout(sig, KindNotRecognized)

	// The two NUL bytes that complete the signature are not checked.
	if err := p.c.Seek(sig); err != nil {
		return err
	}
	peMagic, err := p.c.ReadBytes(len(peSignature))
	if err != nil {
		return errors.Wrap(err, "reading PE signature")
	}
	if !bytes.Equal(peMagic, peSignature) {
		return nil
	}
	p.info.HasSignature = true

	fh, err := p.decodeFileHeader()
	if err != nil {
		return errors.Wrap(err, "reading COFF file header")
	}
	p.info.FileHeader = fh
	if fh.SizeOfOptionalHeader == 0 {
		p.info.Kind = KindCOFF
		return nil
	}

	if err := p.c.Seek(p.info.Layout.OptionalStd); err != nil {
		return err
	}
	magic, err := p.c.ReadUint(w16)
	if err != nil {
		return errors.Wrap(err, "reading optional header magic")
	}
	switch magic {
	case magicPE32:
		p.info.Kind = KindPE32
	case magicPE32Plus:
		p.info.Kind = KindPE32Plus
	default:
		return &UnknownOptionalHeaderMagicError{Magic: uint16(magic)}
	}
	return nil
}
