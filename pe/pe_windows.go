// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package pe

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// ParseFileHandle parses the headers from hfile, an open Win32 file handle.
// It does *not* consume hfile. The duplicate shares hfile's file pointer,
// which is left wherever the last header read ended.
func ParseFileHandle(hfile windows.Handle, opts ...Option) (*Info, error) {
	// Duplicate hfile so that we don't consume it.
	var hfileDup windows.Handle
	cp := windows.CurrentProcess()
	if err := windows.DuplicateHandle(
		cp,
		hfile,
		cp,
		&hfileDup,
		0,
		false,
		windows.DUPLICATE_SAME_ACCESS,
	); err != nil {
		return nil, errors.Wrap(err, "duplicating file handle")
	}

	f := os.NewFile(uintptr(hfileDup), "ParseFileHandle")
	defer f.Close()

	return Parse(f, opts...)
}
