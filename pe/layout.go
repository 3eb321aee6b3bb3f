// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package pe

const (
	offsetIMAGE_DOS_HEADERe_lfanew = 60
	sizeE_lfanew                   = 4
	sizeSignature                  = 4

	magicPE32     = 0x010B
	magicPE32Plus = 0x020B
)

// Field widths in bytes.
const (
	w8  = 1
	w16 = 2
	w32 = 4
	w64 = 8
)

// Machine, NumberOfSections, TimeDateStamp, PointerToSymbolTable,
// NumberOfSymbols, SizeOfOptionalHeader, Characteristics.
const sizeFileHeader = w16 + w16 + w32 + w32 + w32 + w16 + w16

// Magic, linker version pair, SizeOfCode, SizeOfInitializedData,
// SizeOfUninitializedData, AddressOfEntryPoint, BaseOfCode.
const sizeStdHeaderCommon = w16 + w8 + w8 + w32 + w32 + w32 + w32 + w32

// BaseOfData only exists in PE32 images.
const sizeBaseOfData = w32

const sizeDataDirectory = w32 + w32

// wordSize returns the width of ImageBase and the stack/heap reserve and
// commit fields for k.
func (k Kind) wordSize() int {
	if k == KindPE32Plus {
		return w64
	}
	return w32
}

func stdHeaderSize(k Kind) int {
	if k == KindPE32 {
		return sizeStdHeaderCommon + sizeBaseOfData
	}
	return sizeStdHeaderCommon
}

func winHeaderSize(k Kind) int {
	word := k.wordSize()
	return word + // ImageBase
		w32 + w32 + // SectionAlignment, FileAlignment
		w16 + w16 + w16 + w16 + w16 + w16 + // OS, image, subsystem versions
		w32 + w32 + w32 + w32 + // Win32VersionValue, SizeOfImage, SizeOfHeaders, CheckSum
		w16 + w16 + // Subsystem, DllCharacteristics
		word + word + word + word + // stack reserve/commit, heap reserve/commit
		w32 + w32 // LoaderFlags, NumberOfRvaAndSizes
}

// Layout holds the absolute file offsets of each header region. OptionalWin
// and DataDirectories are only meaningful for KindPE32 and KindPE32Plus.
type Layout struct {
	Signature       int64
	FileHeader      int64
	OptionalStd     int64
	OptionalWin     int64
	DataDirectories int64
}

// ResolveLayout computes the header offsets for an image whose PE signature
// starts at sig. Every offset is the sum of the widths of the fields before
// it, so PE32+ gets its Windows header 4 bytes earlier (no BaseOfData) and its
// data directories 16 bytes later (five 8-byte words replace five 4-byte
// ones, less the missing BaseOfData).
func ResolveLayout(sig int64, kind Kind) Layout {
	l := Layout{
		Signature:   sig,
		FileHeader:  sig + sizeSignature,
		OptionalStd: sig + sizeSignature + sizeFileHeader,
	}
	if kind != KindPE32 && kind != KindPE32Plus {
		return l
	}
	l.OptionalWin = l.OptionalStd + int64(stdHeaderSize(kind))
	l.DataDirectories = l.OptionalWin + int64(winHeaderSize(kind))
	return l
}
