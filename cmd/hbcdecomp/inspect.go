package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/dlclark/regexp2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dexter3k/hbcdecomp/hbc"
)

var heading = color.New(color.FgCyan, color.Bold)

func (a *app) headerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "header FILE",
		Short: "Print the file header and table sizes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.load(args[0])
			if err != nil {
				return err
			}
			if raw, _ := cmd.Flags().GetBool("raw"); raw {
				spew.Fdump(a.stdout, f.Header)
				return nil
			}
			printHeader(a.stdout, &f.Header)
			return nil
		},
	}
	cmd.Flags().Bool("raw", false, "dump the header struct as is")
	return cmd
}

func printHeader(w io.Writer, h *hbc.FileHeader) {
	heading.Fprintln(w, "File header")
	rows := []struct {
		name  string
		value interface{}
	}{
		{"version", h.Version},
		{"source hash", hex.EncodeToString(h.SourceHash[:])},
		{"file length", h.FileLength},
		{"global code index", h.GlobalCodeIndex},
		{"functions", h.FunctionCount},
		{"string kinds", h.StringKindCount},
		{"identifiers", h.IdentifierCount},
		{"strings", h.StringCount},
		{"overflow strings", h.OverflowStringCount},
		{"string storage", h.StringStorageSize},
		{"regexps", h.RegExpCount},
		{"regexp storage", h.RegExpStorageSize},
		{"array buffer", h.ArrayBufferSize},
		{"object key buffer", h.ObjKeyBufferSize},
		{"object value buffer", h.ObjValueBufferSize},
		{"cjs module offset", h.CjsModuleOffset},
		{"cjs modules", h.CjsModuleCount},
		{"debug info offset", fmt.Sprintf("%#x", h.DebugInfoOffset)},
		{"static builtins", h.Options.StaticBuiltins()},
		{"cjs statically resolved", h.Options.CjsModulesStaticallyResolved()},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %-24s %v\n", r.name, r.value)
	}
}

func (a *app) functionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "functions FILE",
		Short: "List function headers and exception handlers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%d strings\n", len(f.SmallStrings))
			fmt.Fprintf(a.stdout, "%d functions\n", len(f.FunctionHeaders))
			for i := range f.FunctionHeaders {
				if err := printFunctionSummary(a.stdout, f, uint32(i)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func printFunctionSummary(w io.Writer, f *hbc.File, i uint32) error {
	info, err := f.FunctionInfo(i)
	if err != nil {
		return err
	}
	name, err := f.FunctionName(i)
	if err != nil {
		return err
	}
	heading.Fprintf(w, "Function %d, %q, %d bytes", i, name, info.BytecodeSize)
	fmt.Fprintf(w, ": %d params, frame=%d, env=%d, read=%d, write=%d, strict=%v, prohibit=%s, offset=%08x\n",
		info.ParamCount,
		info.FrameSize,
		info.EnvironmentSize,
		info.HighestReadCacheIndex,
		info.HighestWriteCacheIndex,
		info.Flags.StrictMode(),
		info.Flags.ProhibitInvoke(),
		info.Offset,
	)
	handlers, err := f.ExceptionHandlers(i)
	if err != nil {
		return err
	}
	for _, h := range handlers {
		fmt.Fprintf(w, "  handler start=%06x end=%06x target=%06x\n", h.Start, h.End, h.Target)
	}
	return nil
}

func (a *app) stringsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strings FILE",
		Short: "Print the string table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var re *regexp2.Regexp
			if pattern, _ := cmd.Flags().GetString("match"); pattern != "" {
				var err error
				if re, err = regexp2.Compile(pattern, regexp2.ECMAScript); err != nil {
					return fmt.Errorf("--match: %w", err)
				}
			}
			f, err := a.load(args[0])
			if err != nil {
				return err
			}
			for i := range f.SmallStrings {
				s, err := f.String(uint32(i))
				if err != nil {
					return err
				}
				if re != nil {
					if ok, err := re.MatchString(s); err != nil {
						return err
					} else if !ok {
						continue
					}
				}
				kind, err := f.StringKindAt(uint32(i))
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "%6d %-10s %q\n", i, kind, s)
			}
			return nil
		},
	}
	cmd.Flags().String("match", "", "only print strings matching this JavaScript regular expression")
	return cmd
}
