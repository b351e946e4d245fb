package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/dexter3k/hbcdecomp/decode"
)

var green = color.New(color.FgGreen).SprintFunc()

func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify FILE",
		Short: "Decode every function and report all failures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.load(args[0])
			if err != nil {
				return err
			}
			err = decode.Verify(f)
			if err == nil {
				fmt.Fprintf(a.stdout, "%s: %d functions decoded\n", green("ok"), len(f.FunctionHeaders))
				return nil
			}
			var merr *multierror.Error
			if !errors.As(err, &merr) {
				return err
			}
			for _, e := range merr.Errors {
				fmt.Fprintf(a.stdout, "%s\n", red(e.Error()))
			}
			return fmt.Errorf("%d of %d functions failed to decode", len(merr.Errors), len(f.FunctionHeaders))
		},
	}
}
