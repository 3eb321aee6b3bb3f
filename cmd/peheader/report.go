// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dblohm7/peheader/pe"
	"golang.org/x/exp/constraints"
)

// reporter renders parse results as text. The first write error is kept and
// later writes are dropped.
type reporter struct {
	w   io.Writer
	err error
}

func (r *reporter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func hexField[T constraints.Unsigned](r *reporter, v T, desc string) {
	r.printf("%10X %s\n", v, desc)
}

func (r *reporter) strField(s, desc string) {
	r.printf("%10s %s\n", s, desc)
}

func (r *reporter) labels(labels []string) {
	for _, l := range labels {
		r.printf("             %s\n", l)
	}
}

func versionPair(major, minor uint16) string {
	return fmt.Sprintf("%d.%02d", major, minor)
}

func (r *reporter) logo(path string) {
	r.printf("PE/COFF header dump\n\nDump of %s\n\n", path)
}

// headers prints every record the parse reached.
func (r *reporter) headers(nfo *pe.Info) {
	if !nfo.IsPE() {
		r.printf("Error: not a PE file\n")
		return
	}

	fh := nfo.FileHeader
	if fh == nil {
		return
	}
	r.printf("COFF FILE HEADER\n")
	hexField(r, fh.Machine, fmt.Sprintf("machine (%s)", pe.MachineLabel(fh.Machine)))
	hexField(r, fh.NumberOfSections, "number of sections")
	hexField(r, fh.TimeDateStamp, "time date stamp: "+fh.Timestamp().Format(time.ANSIC))
	hexField(r, fh.PointerToSymbolTable, "file pointer to symbol table")
	hexField(r, fh.NumberOfSymbols, "number of symbols")
	hexField(r, fh.SizeOfOptionalHeader, "size of optional header")
	hexField(r, fh.Characteristics, "characteristics")
	r.labels(pe.CharacteristicLabels(fh.Characteristics))

	if nfo.IsCOFF() {
		r.printf("COFF file\n")
		return
	}

	sh := nfo.StdHeader
	if sh == nil {
		return
	}
	wh := nfo.WinHeader

	r.printf("\nOPTIONAL STANDARD HEADER\n")
	magic := "magic # (PE32)"
	if nfo.Kind == pe.KindPE32Plus {
		magic = "magic # (PE32+)"
	}
	hexField(r, sh.Magic, magic)
	r.strField(fmt.Sprintf("%d.%02d", sh.MajorLinkerVersion, sh.MinorLinkerVersion), "linker version")
	hexField(r, sh.SizeOfCode, "size of code")
	hexField(r, sh.SizeOfInitializedData, "size of initialized data")
	hexField(r, sh.SizeOfUninitializedData, "size of uninitialized data")
	if wh != nil {
		hexField(r, sh.AddressOfEntryPoint, fmt.Sprintf("entry point (%08X)", wh.ImageBase+uint64(sh.AddressOfEntryPoint)))
	} else {
		hexField(r, sh.AddressOfEntryPoint, "entry point")
	}
	hexField(r, sh.BaseOfCode, "base of code")
	if sh.BaseOfData != nil {
		hexField(r, *sh.BaseOfData, "base of data")
	}

	if wh == nil {
		return
	}
	r.printf("\nOPTIONAL WINDOWS HEADER\n")
	hexField(r, wh.ImageBase, "image base")
	hexField(r, wh.SectionAlignment, "section alignment")
	hexField(r, wh.FileAlignment, "file alignment")
	r.strField(versionPair(wh.MajorOperatingSystemVersion, wh.MinorOperatingSystemVersion), "operating system version")
	r.strField(versionPair(wh.MajorImageVersion, wh.MinorImageVersion), "image version")
	r.strField(versionPair(wh.MajorSubsystemVersion, wh.MinorSubsystemVersion), "subsystem version")
	hexField(r, wh.Win32VersionValue, "Win32 version")
	hexField(r, wh.SizeOfImage, "size of image")
	hexField(r, wh.SizeOfHeaders, "size of headers")
	hexField(r, wh.CheckSum, "checksum")
	hexField(r, wh.Subsystem, pe.SubsystemLabel(wh.Subsystem))
	hexField(r, wh.DllCharacteristics, "DLL characteristics")
	r.labels(pe.DLLCharacteristicLabels(wh.DllCharacteristics))
	hexField(r, wh.SizeOfStackReserve, "size of stack reserve")
	hexField(r, wh.SizeOfStackCommit, "size of stack commit")
	hexField(r, wh.SizeOfHeapReserve, "size of heap reserve")
	hexField(r, wh.SizeOfHeapCommit, "size of heap commit")
	hexField(r, wh.LoaderFlags, "loader flags")
	hexField(r, wh.NumberOfRvaAndSizes, "number of directories")

	dd := nfo.DataDirs
	if dd == nil {
		return
	}
	r.printf("\nOPTIONAL DATA DIRECTORIES\n")
	for i := pe.DirectoryIndex(0); i < pe.NumDirectories; i++ {
		e := dd.Get(i)
		r.printf("%10X [%8X] RVA [size] of %s\n", e.VirtualAddress, e.Size, i)
	}
	r.printf("\n")
}

func boolWord(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func (r *reporter) summary(nfo *pe.Info) {
	r.printf("SUMMARY\n")
	r.printf("Archive: %s\n", boolWord(nfo.IsArchive()))
	r.printf("PE: %s\n", boolWord(nfo.IsPE()))
	r.printf("COFF: %s\n", boolWord(nfo.IsCOFF()))
	r.printf("Managed: %s\n", boolWord(nfo.IsManaged()))
}
