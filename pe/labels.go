// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package pe

import (
	dpe "debug/pe"
)

// UnrecognizedLabel is returned by the label lookups for any code they do
// not know.
const UnrecognizedLabel = "No matching entry"

type codeLabel struct {
	code  uint16
	label string
}

var machineLabels = []codeLabel{
	{dpe.IMAGE_FILE_MACHINE_UNKNOWN, "UNKNOWN"},
	{dpe.IMAGE_FILE_MACHINE_AM33, "AM33"},
	{dpe.IMAGE_FILE_MACHINE_AMD64, "AMD64"},
	{dpe.IMAGE_FILE_MACHINE_ARM, "ARM"},
	{dpe.IMAGE_FILE_MACHINE_ARMNT, "ARMNT"},
	{dpe.IMAGE_FILE_MACHINE_ARM64, "ARM64"},
	{dpe.IMAGE_FILE_MACHINE_EBC, "EBC"},
	{dpe.IMAGE_FILE_MACHINE_I386, "I386"},
	{dpe.IMAGE_FILE_MACHINE_IA64, "IA64"},
	{dpe.IMAGE_FILE_MACHINE_LOONGARCH32, "LOONGARCH32"},
	{dpe.IMAGE_FILE_MACHINE_LOONGARCH64, "LOONGARCH64"},
	{dpe.IMAGE_FILE_MACHINE_M32R, "M32R"},
	{dpe.IMAGE_FILE_MACHINE_MIPS16, "MIPS16"},
	{dpe.IMAGE_FILE_MACHINE_MIPSFPU, "MIPSFPU"},
	{dpe.IMAGE_FILE_MACHINE_MIPSFPU16, "MIPSFPU16"},
	{dpe.IMAGE_FILE_MACHINE_POWERPC, "POWERPC"},
	{dpe.IMAGE_FILE_MACHINE_POWERPCFP, "POWERPCFP"},
	{dpe.IMAGE_FILE_MACHINE_R4000, "R4000"},
	{dpe.IMAGE_FILE_MACHINE_RISCV32, "RISCV32"},
	{dpe.IMAGE_FILE_MACHINE_RISCV64, "RISCV64"},
	{dpe.IMAGE_FILE_MACHINE_RISCV128, "RISCV128"},
	{dpe.IMAGE_FILE_MACHINE_SH3, "SH3"},
	{dpe.IMAGE_FILE_MACHINE_SH3DSP, "SH3DSP"},
	{dpe.IMAGE_FILE_MACHINE_SH4, "SH4"},
	{dpe.IMAGE_FILE_MACHINE_SH5, "SH5"},
	{dpe.IMAGE_FILE_MACHINE_THUMB, "THUMB"},
	{dpe.IMAGE_FILE_MACHINE_WCEMIPSV2, "WCEMIPSV2"},
}

// Subsystems 4-6 and 8 have no label.
var subsystemLabels = []codeLabel{
	{dpe.IMAGE_SUBSYSTEM_UNKNOWN, "An unknown subsystem"},
	{dpe.IMAGE_SUBSYSTEM_NATIVE, "Device drivers and native Windows processes"},
	{dpe.IMAGE_SUBSYSTEM_WINDOWS_GUI, "The Windows graphical user interface (GUI) subsystem"},
	{dpe.IMAGE_SUBSYSTEM_WINDOWS_CUI, "Windows CUI"},
	{dpe.IMAGE_SUBSYSTEM_POSIX_CUI, "The Posix character subsystem"},
	{dpe.IMAGE_SUBSYSTEM_WINDOWS_CE_GUI, "Windows CE"},
	{dpe.IMAGE_SUBSYSTEM_EFI_APPLICATION, "An Extensible Firmware Interface (EFI) application"},
	{dpe.IMAGE_SUBSYSTEM_EFI_BOOT_SERVICE_DRIVER, "An EFI driver with boot services"},
	{dpe.IMAGE_SUBSYSTEM_EFI_RUNTIME_DRIVER, "An EFI driver with run-time services"},
	{dpe.IMAGE_SUBSYSTEM_EFI_ROM, "An EFI ROM image"},
	{dpe.IMAGE_SUBSYSTEM_XBOX, "XBOX"},
}

// Ordered by ascending bit.
var characteristicLabels = []codeLabel{
	{dpe.IMAGE_FILE_RELOCS_STRIPPED, "Relocations stripped"},
	{dpe.IMAGE_FILE_EXECUTABLE_IMAGE, "Executable"},
	{dpe.IMAGE_FILE_LINE_NUMS_STRIPPED, "Line numbers stripped"},
	{dpe.IMAGE_FILE_LOCAL_SYMS_STRIPPED, "Symbols stripped"},
	{dpe.IMAGE_FILE_AGGRESIVE_WS_TRIM, "AGGRESSIVE_WS_TRIM"},
	{dpe.IMAGE_FILE_LARGE_ADDRESS_AWARE, "LARGE_ADDRESS_AWARE"},
	{0x0040, "Reserved for future use"},
	{dpe.IMAGE_FILE_BYTES_REVERSED_LO, "BYTES_REVERSED_LO"},
	{dpe.IMAGE_FILE_32BIT_MACHINE, "32 bit word machine"},
	{dpe.IMAGE_FILE_DEBUG_STRIPPED, "DEBUG_STRIPPED"},
	{dpe.IMAGE_FILE_REMOVABLE_RUN_FROM_SWAP, "REMOVABLE_RUN_FROM_SWAP"},
	{dpe.IMAGE_FILE_NET_RUN_FROM_SWAP, "NET_RUN_FROM_SWAP"},
	{dpe.IMAGE_FILE_SYSTEM, "SYSTEM"},
	{dpe.IMAGE_FILE_DLL, "DLL"},
	{dpe.IMAGE_FILE_UP_SYSTEM_ONLY, "UP_SYSTEM_ONLY"},
	{dpe.IMAGE_FILE_BYTES_REVERSED_HI, "BYTES_REVERSED_HI"},
}

// Ordered by ascending bit. 0x0010, 0x0020 and 0x4000 have no label.
var dllCharacteristicLabels = []codeLabel{
	{0x0001, "Reserved, must be zero (0x01)"},
	{0x0002, "Reserved, must be zero (0x02)"},
	{0x0004, "Reserved, must be zero (0x04)"},
	{0x0008, "Reserved, must be zero (0x08)"},
	{dpe.IMAGE_DLLCHARACTERISTICS_DYNAMIC_BASE, "Dynamic base"},
	{dpe.IMAGE_DLLCHARACTERISTICS_FORCE_INTEGRITY, "Code integrity checks are enforced"},
	{dpe.IMAGE_DLLCHARACTERISTICS_NX_COMPAT, "NX compatible"},
	{dpe.IMAGE_DLLCHARACTERISTICS_NO_ISOLATION, "Isolation aware, but do not isolate the image"},
	{dpe.IMAGE_DLLCHARACTERISTICS_NO_SEH, "No structured exception handler"},
	{dpe.IMAGE_DLLCHARACTERISTICS_NO_BIND, "Do not bind the image"},
	{0x1000, "Reserved, must be zero (0x1000)"},
	{dpe.IMAGE_DLLCHARACTERISTICS_WDM_DRIVER, "A WDM driver"},
	{dpe.IMAGE_DLLCHARACTERISTICS_TERMINAL_SERVER_AWARE, "Terminal Server Aware"},
}

var directoryLabels = [NumDirectories]string{
	DirExport:           "Export Directory",
	DirImport:           "Import Directory",
	DirResource:         "Resource Directory",
	DirException:        "Exception Directory",
	DirCertificate:      "Certificates Directory",
	DirBaseRelocation:   "Base Relocation Directory",
	DirDebug:            "Debug Directory",
	DirArchitecture:     "Architecture Directory",
	DirGlobalPtr:        "Global Pointer Directory",
	DirTLS:              "Thread Storage Directory",
	DirLoadConfig:       "Load Configuration Directory",
	DirBoundImport:      "Bound Import Directory",
	DirIAT:              "Import Address Table Directory",
	DirDelayImport:      "Delay Import Directory",
	DirCLRRuntimeHeader: "COM Descriptor Directory",
	DirReserved:         "Reserved Directory",
}

func lookup(table []codeLabel, code uint16) string {
	for _, e := range table {
		if e.code == code {
			return e.label
		}
	}
	return UnrecognizedLabel
}

func bitLabels(table []codeLabel, bits uint16) []string {
	var labels []string
	for _, e := range table {
		if bits&e.code != 0 {
			labels = append(labels, e.label)
		}
	}
	return labels
}

// MachineLabel returns the name of a COFF machine type.
func MachineLabel(machine uint16) string {
	return lookup(machineLabels, machine)
}

// SubsystemLabel returns a description of a Windows subsystem code.
func SubsystemLabel(subsystem uint16) string {
	return lookup(subsystemLabels, subsystem)
}

// CharacteristicLabels returns a label for every set bit of a COFF
// characteristics field, lowest bit first.
func CharacteristicLabels(characteristics uint16) []string {
	return bitLabels(characteristicLabels, characteristics)
}

// DLLCharacteristicLabels returns a label for every defined set bit of a DLL
// characteristics field, lowest bit first. Undefined bits are ignored.
func DLLCharacteristicLabels(characteristics uint16) []string {
	return bitLabels(dllCharacteristicLabels, characteristics)
}

func (d DirectoryIndex) String() string {
	if d < 0 || int(d) >= len(directoryLabels) {
		return UnrecognizedLabel
	}
	return directoryLabels[d]
}
