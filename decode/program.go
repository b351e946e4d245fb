package decode

import (
	"context"
	"runtime"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dexter3k/hbcdecomp/hbc"
	"github.com/dexter3k/hbcdecomp/ir"
)

// Options configures Program.
type Options struct {
	// Workers bounds the number of functions decoded at once. Zero means
	// GOMAXPROCS.
	Workers int
	// Logger receives debug events; nil disables logging.
	Logger *zerolog.Logger
}

func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

// FunctionAt decodes function i of file.
func FunctionAt(file *hbc.File, i uint32) (*ir.Function, error) {
	info, err := file.FunctionInfo(i)
	if err != nil {
		return nil, &FunctionError{Index: i, Err: err}
	}
	code, err := file.Bytecode(i)
	if err != nil {
		return nil, &FunctionError{Index: i, Err: err}
	}
	fn, err := Function(code)
	if err != nil {
		return nil, &FunctionError{Index: i, Err: err}
	}
	fn.Index = i
	fn.Header = &file.FunctionHeaders[i]
	fn.Info = info
	return fn, nil
}

// Program decodes every function of file concurrently. The result is indexed
// by function id. The first failure cancels the remaining work and is
// returned as a *FunctionError.
func Program(ctx context.Context, file *hbc.File, opts Options) ([]*ir.Function, error) {
	log := opts.logger()
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]*ir.Function, len(file.FunctionHeaders))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range out {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn, err := FunctionAt(file, uint32(i))
			if err != nil {
				return err
			}
			log.Debug().
				Int("function", i).
				Uint32("offset", fn.Info.Offset).
				Int("statements", len(fn.Body)).
				Msg("decoded function")
			out[i] = fn
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Verify decodes every function and reports all failures rather than only
// the first.
func Verify(file *hbc.File) error {
	var result *multierror.Error
	for i := range file.FunctionHeaders {
		if _, err := FunctionAt(file, uint32(i)); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
