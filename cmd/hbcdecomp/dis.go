package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/dexter3k/hbcdecomp/decode"
	"github.com/dexter3k/hbcdecomp/hbc"
	"github.com/dexter3k/hbcdecomp/ir"
)

func (a *app) disCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis FILE",
		Short: "Disassemble functions into statements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.load(args[0])
			if err != nil {
				return err
			}
			var fns []*ir.Function
			if cmd.Flags().Changed("function") {
				index, _ := cmd.Flags().GetUint32("function")
				fn, err := decode.FunctionAt(f, index)
				if err != nil {
					return err
				}
				fns = []*ir.Function{fn}
			} else {
				fns, err = decode.Program(cmd.Context(), f, a.decodeOptions())
				if err != nil {
					return err
				}
			}
			resolve := a.v.GetBool("resolve-strings")
			for _, fn := range fns {
				if err := printFunction(a.stdout, f, fn, resolve); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().Uint32P("function", "f", 0, "disassemble only this function index")
	cmd.Flags().Bool("resolve-strings", false, "print string literals in place of string ids")
	return cmd
}

func printFunction(w io.Writer, f *hbc.File, fn *ir.Function, resolve bool) error {
	if err := printFunctionSummary(w, f, fn.Index); err != nil {
		return err
	}
	if resolve {
		return fn.FprintStrings(w, f)
	}
	return fn.Fprint(w)
}
