// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package pe

import (
	dpe "debug/pe"
	"time"
)

// FileHeader is the COFF file header that follows the PE signature.
type FileHeader struct {
	Machine              uint16
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      uint16
}

// Timestamp returns TimeDateStamp as a UTC time.
func (fh *FileHeader) Timestamp() time.Time {
	return time.Unix(int64(fh.TimeDateStamp), 0).UTC()
}

// OptionalStdHeader holds the standard fields of the optional header.
// BaseOfData is nil for PE32+ images, which do not have the field.
type OptionalStdHeader struct {
	Magic                   uint16
	MajorLinkerVersion      uint8
	MinorLinkerVersion      uint8
	SizeOfCode              uint32
	SizeOfInitializedData   uint32
	SizeOfUninitializedData uint32
	AddressOfEntryPoint     uint32
	BaseOfCode              uint32
	BaseOfData              *uint32
}

// OptionalWinHeader holds the Windows-specific fields of the optional header.
// ImageBase and the stack and heap sizes are 4 bytes wide on disk for PE32
// and 8 bytes wide for PE32+; both are held here at full width.
type OptionalWinHeader struct {
	ImageBase                   uint64
	SectionAlignment            uint32
	FileAlignment               uint32
	MajorOperatingSystemVersion uint16
	MinorOperatingSystemVersion uint16
	MajorImageVersion           uint16
	MinorImageVersion           uint16
	MajorSubsystemVersion       uint16
	MinorSubsystemVersion       uint16
	Win32VersionValue           uint32
	SizeOfImage                 uint32
	SizeOfHeaders               uint32
	CheckSum                    uint32
	Subsystem                   uint16
	DllCharacteristics          uint16
	SizeOfStackReserve          uint64
	SizeOfStackCommit           uint64
	SizeOfHeapReserve           uint64
	SizeOfHeapCommit            uint64
	LoaderFlags                 uint32
	NumberOfRvaAndSizes         uint32
}

// DataDirectory locates an auxiliary table by RVA and size.
type DataDirectory struct {
	VirtualAddress uint32
	Size           uint32
}

// DirectoryIndex identifies one of the data directory entries.
type DirectoryIndex int

const (
	DirExport           DirectoryIndex = dpe.IMAGE_DIRECTORY_ENTRY_EXPORT
	DirImport           DirectoryIndex = dpe.IMAGE_DIRECTORY_ENTRY_IMPORT
	DirResource         DirectoryIndex = dpe.IMAGE_DIRECTORY_ENTRY_RESOURCE
	DirException        DirectoryIndex = dpe.IMAGE_DIRECTORY_ENTRY_EXCEPTION
	DirCertificate      DirectoryIndex = dpe.IMAGE_DIRECTORY_ENTRY_SECURITY
	DirBaseRelocation   DirectoryIndex = dpe.IMAGE_DIRECTORY_ENTRY_BASERELOC
	DirDebug            DirectoryIndex = dpe.IMAGE_DIRECTORY_ENTRY_DEBUG
	DirArchitecture     DirectoryIndex = dpe.IMAGE_DIRECTORY_ENTRY_ARCHITECTURE
	DirGlobalPtr        DirectoryIndex = dpe.IMAGE_DIRECTORY_ENTRY_GLOBALPTR
	DirTLS              DirectoryIndex = dpe.IMAGE_DIRECTORY_ENTRY_TLS
	DirLoadConfig       DirectoryIndex = dpe.IMAGE_DIRECTORY_ENTRY_LOAD_CONFIG
	DirBoundImport      DirectoryIndex = dpe.IMAGE_DIRECTORY_ENTRY_BOUND_IMPORT
	DirIAT              DirectoryIndex = dpe.IMAGE_DIRECTORY_ENTRY_IAT
	DirDelayImport      DirectoryIndex = dpe.IMAGE_DIRECTORY_ENTRY_DELAY_IMPORT
	DirCLRRuntimeHeader DirectoryIndex = dpe.IMAGE_DIRECTORY_ENTRY_COM_DESCRIPTOR
	DirReserved         DirectoryIndex = 15

	NumDirectories = 16
)

// DataDirectories is the fixed, ordered table of data directories. Only the
// first Count entries were present on disk; the rest are zero.
type DataDirectories struct {
	Count   int
	Entries [NumDirectories]DataDirectory
}

// Get returns the entry at idx, or a zero DataDirectory if idx is out of
// range.
func (dd *DataDirectories) Get(idx DirectoryIndex) DataDirectory {
	if idx < 0 || int(idx) >= len(dd.Entries) {
		return DataDirectory{}
	}
	return dd.Entries[idx]
}

// Managed reports whether the image carries a CLR runtime header.
func (dd *DataDirectories) Managed() bool {
	return dd.Get(DirCLRRuntimeHeader).Size > 0
}

func (p *parser) decodeFileHeader() (*FileHeader, error) {
	if err := p.c.Seek(p.info.Layout.FileHeader); err != nil {
		return nil, err
	}

	fh := new(FileHeader)
	fr := &fieldReader{c: p.c}
	readField(fr, w16, &fh.Machine)
	readField(fr, w16, &fh.NumberOfSections)
	readField(fr, w32, &fh.TimeDateStamp)
	readField(fr, w32, &fh.PointerToSymbolTable)
	readField(fr, w32, &fh.NumberOfSymbols)
	readField(fr, w16, &fh.SizeOfOptionalHeader)
	readField(fr, w16, &fh.Characteristics)
	if fr.err != nil {
		return nil, fr.err
	}
	return fh, nil
}

func (p *parser) decodeStdHeader() (*OptionalStdHeader, error) {
	if err := p.c.Seek(p.info.Layout.OptionalStd); err != nil {
		return nil, err
	}

	sh := new(OptionalStdHeader)
	fr := &fieldReader{c: p.c}
	readField(fr, w16, &sh.Magic)
	readField(fr, w8, &sh.MajorLinkerVersion)
	readField(fr, w8, &sh.MinorLinkerVersion)
	readField(fr, w32, &sh.SizeOfCode)
	readField(fr, w32, &sh.SizeOfInitializedData)
	readField(fr, w32, &sh.SizeOfUninitializedData)
	readField(fr, w32, &sh.AddressOfEntryPoint)
	readField(fr, w32, &sh.BaseOfCode)
	if p.info.Kind == KindPE32 {
		var baseOfData uint32
		readField(fr, sizeBaseOfData, &baseOfData)
		sh.BaseOfData = &baseOfData
	}
	if fr.err != nil {
		return nil, fr.err
	}
	return sh, nil
}

func (p *parser) decodeWinHeader() (*OptionalWinHeader, error) {
	if err := p.c.Seek(p.info.Layout.OptionalWin); err != nil {
		return nil, err
	}

	word := p.info.Kind.wordSize()
	wh := new(OptionalWinHeader)
	fr := &fieldReader{c: p.c}
	readField(fr, word, &wh.ImageBase)
	readField(fr, w32, &wh.SectionAlignment)
	readField(fr, w32, &wh.FileAlignment)
	readField(fr, w16, &wh.MajorOperatingSystemVersion)
	readField(fr, w16, &wh.MinorOperatingSystemVersion)
	readField(fr, w16, &wh.MajorImageVersion)
	readField(fr, w16, &wh.MinorImageVersion)
	readField(fr, w16, &wh.MajorSubsystemVersion)
	readField(fr, w16, &wh.MinorSubsystemVersion)
	readField(fr, w32, &wh.Win32VersionValue)
	readField(fr, w32, &wh.SizeOfImage)
	readField(fr, w32, &wh.SizeOfHeaders)
	readField(fr, w32, &wh.CheckSum)
	readField(fr, w16, &wh.Subsystem)
	readField(fr, w16, &wh.DllCharacteristics)
	readField(fr, word, &wh.SizeOfStackReserve)
	readField(fr, word, &wh.SizeOfStackCommit)
	readField(fr, word, &wh.SizeOfHeapReserve)
	readField(fr, word, &wh.SizeOfHeapCommit)
	readField(fr, w32, &wh.LoaderFlags)
	readField(fr, w32, &wh.NumberOfRvaAndSizes)
	if fr.err != nil {
		return nil, fr.err
	}
	return wh, nil
}

func (p *parser) decodeDataDirectories(count uint32) (*DataDirectories, error) {
	if err := p.c.Seek(p.info.Layout.DataDirectories); err != nil {
		return nil, err
	}

	if maxCnt := uint32(NumDirectories); count > maxCnt {
		count = maxCnt
	}

	dd := &DataDirectories{Count: int(count)}
	fr := &fieldReader{c: p.c}
	for i := range dd.Entries[:count] {
		readField(fr, w32, &dd.Entries[i].VirtualAddress)
		readField(fr, w32, &dd.Entries[i].Size)
	}
	if fr.err != nil {
		return nil, fr.err
	}
	return dd, nil
}
