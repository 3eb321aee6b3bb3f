// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Command peheader prints the headers of a PE/COFF image and a short summary
// of what kind of file it is.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/dblohm7/peheader/pe"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	exitOK          = 0
	exitOpenFailure = 1
	exitCLIError    = 2
)

type options struct {
	quiet    bool
	dump     bool
	logLevel string
}

func (o *options) addFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&o.quiet, "quiet", "q", false, "print summary only")
	fs.BoolVar(&o.dump, "dump", false, "dump the decoded records after the report")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level for diagnostics on stderr")
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:           "peheader <file> [-q]",
		Short:         "Dump PE/COFF headers",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          o.run,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	o.addFlags(cmd.Flags())
	return cmd
}

func (o *options) run(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Usage()
	}
	path := args[0]
	stdout := cmd.OutOrStdout()

	log, err := newLogger(cmd.ErrOrStderr(), o.logLevel)
	if err != nil {
		return err
	}

	r := &reporter{w: stdout}
	if !o.quiet {
		r.logo(path)
	}

	nfo, err := pe.ParseFile(path, pe.WithLogger(log))
	var openErr *pe.OpenError
	if errors.As(err, &openErr) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: Could not open \"%s\" for reading\n", path)
		log.Debug().Err(openErr.Err).Msg("open failed")
		return err
	}
	if err != nil {
		log.Warn().Err(err).Str("path", path).Stringer("kind", nfo.Kind).Msg("header decoding stopped early")
	}

	if !o.quiet {
		r.headers(nfo)
	}
	r.summary(nfo)
	if o.dump && r.err == nil {
		spew.Fdump(stdout, nfo)
	}
	return errors.Wrap(r.err, "writing report")
}

// dosStyleArgs rewrites the DOS-style switch spelling into its pflag form.
func dosStyleArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a == "/q" || a == "/Q" {
			a = "-q"
		}
		out[i] = a
	}
	return out
}

// wantsUsage reports whether arg is a help request such as -? or /?.
func wantsUsage(arg string) bool {
	return len(arg) > 1 && arg[1] == '?'
}

// run executes the command line in args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	if len(args) > 0 && wantsUsage(args[0]) {
		cmd.Usage()
		return exitOK
	}

	cmd.SetArgs(dosStyleArgs(args))
	err := cmd.Execute()
	if err == nil {
		return exitOK
	}

	var openErr *pe.OpenError
	if errors.As(err, &openErr) {
		return exitOpenFailure
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitCLIError
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
