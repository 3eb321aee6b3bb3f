// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package pe

import (
	"bytes"
	dpe "debug/pe"
	"encoding/binary"
	"testing"
)

// testSigOffset is where the synthetic images place their PE signature.
const testSigOffset = 0x80

// encodeImage lays out an MS-DOS stub whose e_lfanew points at
// testSigOffset, the PE signature, fh, and then optHdr if it is non-nil.
// Encoding goes through encoding/binary and the debug/pe structs so that it
// shares no code with the decoder under test.
func encodeImage(t *testing.T, fh dpe.FileHeader, optHdr any) []byte {
	t.Helper()

	var buf bytes.Buffer
	stub := make([]byte, testSigOffset)
	stub[0], stub[1] = 'M', 'Z'
	binary.LittleEndian.PutUint32(stub[offsetIMAGE_DOS_HEADERe_lfanew:], testSigOffset)
	buf.Write(stub)
	buf.Write([]byte{'P', 'E', 0, 0})

	if err := binary.Write(&buf, binary.LittleEndian, fh); err != nil {
		t.Fatalf("encoding file header: %v", err)
	}
	if optHdr != nil {
		if err := binary.Write(&buf, binary.LittleEndian, optHdr); err != nil {
			t.Fatalf("encoding optional header: %v", err)
		}
	}
	return buf.Bytes()
}

func testDataDirectories() [16]dpe.DataDirectory {
	var dd [16]dpe.DataDirectory
	for i := range dd {
		dd[i] = dpe.DataDirectory{
			VirtualAddress: 0x1000*uint32(i+1) + uint32(i),
			Size:           0x10 * uint32(i+1),
		}
	}
	dd[DirReserved] = dpe.DataDirectory{}
	return dd
}

func testFileHeader32() dpe.FileHeader {
	return dpe.FileHeader{
		Machine:              dpe.IMAGE_FILE_MACHINE_I386,
		NumberOfSections:     4,
		TimeDateStamp:        0x53CD4A47,
		PointerToSymbolTable: 0x00012345,
		NumberOfSymbols:      0x21,
		SizeOfOptionalHeader: uint16(binary.Size(dpe.OptionalHeader32{})),
		Characteristics:      dpe.IMAGE_FILE_EXECUTABLE_IMAGE | dpe.IMAGE_FILE_32BIT_MACHINE,
	}
}

func testOptionalHeader32() dpe.OptionalHeader32 {
	dd := testDataDirectories()
	dd[DirCLRRuntimeHeader] = dpe.DataDirectory{}
	return dpe.OptionalHeader32{
		Magic:                       magicPE32,
		MajorLinkerVersion:          9,
		MinorLinkerVersion:          0,
		SizeOfCode:                  0x00003A00,
		SizeOfInitializedData:       0x00001C00,
		SizeOfUninitializedData:     0x00000200,
		AddressOfEntryPoint:         0x000012F0,
		BaseOfCode:                  0x00001000,
		BaseOfData:                  0x00005000,
		ImageBase:                   0x00400000,
		SectionAlignment:            0x1000,
		FileAlignment:               0x200,
		MajorOperatingSystemVersion: 5,
		MinorOperatingSystemVersion: 1,
		MajorImageVersion:           1,
		MinorImageVersion:           2,
		MajorSubsystemVersion:       5,
		MinorSubsystemVersion:       1,
		Win32VersionValue:           0,
		SizeOfImage:                 0x9000,
		SizeOfHeaders:               0x400,
		CheckSum:                    0x0001D2C3,
		Subsystem:                   dpe.IMAGE_SUBSYSTEM_WINDOWS_GUI,
		DllCharacteristics:          dpe.IMAGE_DLLCHARACTERISTICS_NX_COMPAT | dpe.IMAGE_DLLCHARACTERISTICS_DYNAMIC_BASE,
		SizeOfStackReserve:          0x00100000,
		SizeOfStackCommit:           0x00001000,
		SizeOfHeapReserve:           0x00200000,
		SizeOfHeapCommit:            0x00002000,
		LoaderFlags:                 0,
		NumberOfRvaAndSizes:         16,
		DataDirectory:               dd,
	}
}

func testFileHeader64() dpe.FileHeader {
	return dpe.FileHeader{
		Machine:              dpe.IMAGE_FILE_MACHINE_AMD64,
		NumberOfSections:     6,
		TimeDateStamp:        0x5F3C1B9E,
		PointerToSymbolTable: 0,
		NumberOfSymbols:      0,
		SizeOfOptionalHeader: uint16(binary.Size(dpe.OptionalHeader64{})),
		Characteristics:      dpe.IMAGE_FILE_EXECUTABLE_IMAGE | dpe.IMAGE_FILE_LARGE_ADDRESS_AWARE | dpe.IMAGE_FILE_DLL,
	}
}

// testOptionalHeader64 uses values above 32 bits for every 8-byte field so
// that a 4-byte read would visibly lose the high half.
func testOptionalHeader64() dpe.OptionalHeader64 {
	return dpe.OptionalHeader64{
		Magic:                       magicPE32Plus,
		MajorLinkerVersion:          14,
		MinorLinkerVersion:          36,
		SizeOfCode:                  0x0001A200,
		SizeOfInitializedData:       0x00012400,
		SizeOfUninitializedData:     0,
		AddressOfEntryPoint:         0x00014A30,
		BaseOfCode:                  0x00001000,
		ImageBase:                   0x00007FF6_12340000,
		SectionAlignment:            0x1000,
		FileAlignment:               0x200,
		MajorOperatingSystemVersion: 10,
		MinorOperatingSystemVersion: 0,
		MajorImageVersion:           10,
		MinorImageVersion:           0,
		MajorSubsystemVersion:       6,
		MinorSubsystemVersion:       2,
		Win32VersionValue:           0,
		SizeOfImage:                 0x00031000,
		SizeOfHeaders:               0x400,
		CheckSum:                    0x0003A51F,
		Subsystem:                   dpe.IMAGE_SUBSYSTEM_WINDOWS_CUI,
		DllCharacteristics:          0x8160,
		SizeOfStackReserve:          0x00000001_00100000,
		SizeOfStackCommit:           0x00000002_00001000,
		SizeOfHeapReserve:           0x00000003_00100000,
		SizeOfHeapCommit:            0x00000004_00001000,
		LoaderFlags:                 0,
		NumberOfRvaAndSizes:         16,
		DataDirectory:               testDataDirectories(),
	}
}

func wantFileHeader(fh dpe.FileHeader) *FileHeader {
	return &FileHeader{
		Machine:              fh.Machine,
		NumberOfSections:     fh.NumberOfSections,
		TimeDateStamp:        fh.TimeDateStamp,
		PointerToSymbolTable: fh.PointerToSymbolTable,
		NumberOfSymbols:      fh.NumberOfSymbols,
		SizeOfOptionalHeader: fh.SizeOfOptionalHeader,
		Characteristics:      fh.Characteristics,
	}
}

func wantDataDirectories(dd [16]dpe.DataDirectory, count int) *DataDirectories {
	want := &DataDirectories{Count: count}
	for i := 0; i < count; i++ {
		want.Entries[i] = DataDirectory{VirtualAddress: dd[i].VirtualAddress, Size: dd[i].Size}
	}
	return want
}

func wantHeaders32(oh dpe.OptionalHeader32) (*OptionalStdHeader, *OptionalWinHeader) {
	baseOfData := oh.BaseOfData
	std := &OptionalStdHeader{
		Magic:                   oh.Magic,
		MajorLinkerVersion:      oh.MajorLinkerVersion,
		MinorLinkerVersion:      oh.MinorLinkerVersion,
		SizeOfCode:              oh.SizeOfCode,
		SizeOfInitializedData:   oh.SizeOfInitializedData,
		SizeOfUninitializedData: oh.SizeOfUninitializedData,
		AddressOfEntryPoint:     oh.AddressOfEntryPoint,
		BaseOfCode:              oh.BaseOfCode,
		BaseOfData:              &baseOfData,
	}
	win := &OptionalWinHeader{
		ImageBase:                   uint64(oh.ImageBase),
		SectionAlignment:            oh.SectionAlignment,
		FileAlignment:               oh.FileAlignment,
		MajorOperatingSystemVersion: oh.MajorOperatingSystemVersion,
		MinorOperatingSystemVersion: oh.MinorOperatingSystemVersion,
		MajorImageVersion:           oh.MajorImageVersion,
		MinorImageVersion:           oh.MinorImageVersion,
		MajorSubsystemVersion:       oh.MajorSubsystemVersion,
		MinorSubsystemVersion:       oh.MinorSubsystemVersion,
		Win32VersionValue:           oh.Win32VersionValue,
		SizeOfImage:                 oh.SizeOfImage,
		SizeOfHeaders:               oh.SizeOfHeaders,
		CheckSum:                    oh.CheckSum,
		Subsystem:                   oh.Subsystem,
		DllCharacteristics:          oh.DllCharacteristics,
		SizeOfStackReserve:          uint64(oh.SizeOfStackReserve),
		SizeOfStackCommit:           uint64(oh.SizeOfStackCommit),
		SizeOfHeapReserve:           uint64(oh.SizeOfHeapReserve),
		SizeOfHeapCommit:            uint64(oh.SizeOfHeapCommit),
		LoaderFlags:                 oh.LoaderFlags,
		NumberOfRvaAndSizes:         oh.NumberOfRvaAndSizes,
	}
	return std, win
}

func wantHeaders64(oh dpe.OptionalHeader64) (*OptionalStdHeader, *OptionalWinHeader) {
	std := &OptionalStdHeader{
		Magic:                   oh.Magic,
		MajorLinkerVersion:      oh.MajorLinkerVersion,
		MinorLinkerVersion:      oh.MinorLinkerVersion,
		SizeOfCode:              oh.SizeOfCode,
		SizeOfInitializedData:   oh.SizeOfInitializedData,
		SizeOfUninitializedData: oh.SizeOfUninitializedData,
		AddressOfEntryPoint:     oh.AddressOfEntryPoint,
		BaseOfCode:              oh.BaseOfCode,
	}
	win := &OptionalWinHeader{
		ImageBase:                   oh.ImageBase,
		SectionAlignment:            oh.SectionAlignment,
		FileAlignment:               oh.FileAlignment,
		MajorOperatingSystemVersion: oh.MajorOperatingSystemVersion,
		MinorOperatingSystemVersion: oh.MinorOperatingSystemVersion,
		MajorImageVersion:           oh.MajorImageVersion,
		MinorImageVersion:           oh.MinorImageVersion,
		MajorSubsystemVersion:       oh.MajorSubsystemVersion,
		MinorSubsystemVersion:       oh.MinorSubsystemVersion,
		Win32VersionValue:           oh.Win32VersionValue,
		SizeOfImage:                 oh.SizeOfImage,
		SizeOfHeaders:               oh.SizeOfHeaders,
		CheckSum:                    oh.CheckSum,
		Subsystem:                   oh.Subsystem,
		DllCharacteristics:          oh.DllCharacteristics,
		SizeOfStackReserve:          oh.SizeOfStackReserve,
		SizeOfStackCommit:           oh.SizeOfStackCommit,
		SizeOfHeapReserve:           oh.SizeOfHeapReserve,
		SizeOfHeapCommit:            oh.SizeOfHeapCommit,
		LoaderFlags:                 oh.LoaderFlags,
		NumberOfRvaAndSizes:         oh.NumberOfRvaAndSizes,
	}
	return std, win
}
