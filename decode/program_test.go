package decode_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexter3k/hbcdecomp/decode"
	"github.com/dexter3k/hbcdecomp/hbc"
	"github.com/dexter3k/hbcdecomp/internal/hbctest"
	"github.com/dexter3k/hbcdecomp/ir"
	"github.com/dexter3k/hbcdecomp/opcode"
)

func buildFile(t *testing.T, bodies ...[]byte) *hbc.File {
	t.Helper()
	b := hbctest.New()
	for _, code := range bodies {
		b.AddFunction(code)
	}
	f, _, err := hbc.Decode(b.Build())
	require.NoError(t, err)
	return f
}

func ret(r byte) []byte { return []byte{byte(opcode.Ret), r} }

func TestProgramDecodesEveryFunction(t *testing.T) {
	var bodies [][]byte
	for i := 0; i < 20; i++ {
		bodies = append(bodies, append([]byte{byte(opcode.LoadConstUInt8), 0, byte(i)}, ret(0)...))
	}
	f := buildFile(t, bodies...)

	logger := zerolog.Nop()
	fns, err := decode.Program(context.Background(), f, decode.Options{Workers: 3, Logger: &logger})
	require.NoError(t, err)
	require.Len(t, fns, 20)
	for i, fn := range fns {
		require.NotNil(t, fn)
		assert.Equal(t, uint32(i), fn.Index)
		assert.Same(t, &f.FunctionHeaders[i], fn.Header)
		assert.Equal(t, uint32(5), fn.Info.BytecodeSize)

		require.Len(t, fn.Body, 2)
		assert.Equal(t, ir.ExpressionStmt{
			Register: ir.ByteReg(0),
			Expr:     ir.Number{Kind: ir.NumberUInt8, Value: float64(i)},
		}, fn.Body[0])
	}
}

func TestProgramFailsWithFunctionIndex(t *testing.T) {
	f := buildFile(t, ret(0), ret(1), []byte{0xff}, ret(3))

	fns, err := decode.Program(context.Background(), f, decode.Options{})
	assert.Nil(t, fns)
	require.Error(t, err)

	var fe *decode.FunctionError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, uint32(2), fe.Index)
	assert.True(t, errors.Is(err, opcode.ErrUnknown))
}

func TestProgramCanceled(t *testing.T) {
	f := buildFile(t, ret(0), ret(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := decode.Program(ctx, f, decode.Options{Workers: 1})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestVerifyCollectsAllFailures(t *testing.T) {
	f := buildFile(t, ret(0), []byte{0xff}, ret(2), []byte{byte(opcode.GetById), 0})
	require.NoError(t, decode.Verify(buildFile(t, ret(0), ret(1))))

	err := decode.Verify(f)
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 2)

	var fe *decode.FunctionError
	require.True(t, errors.As(merr.Errors[0], &fe))
	assert.Equal(t, uint32(1), fe.Index)
	require.True(t, errors.As(merr.Errors[1], &fe))
	assert.Equal(t, uint32(3), fe.Index)
	assert.True(t, errors.Is(merr.Errors[1], decode.ErrTruncated))
}

func TestFunctionAtOutOfRange(t *testing.T) {
	f := buildFile(t, ret(0))
	_, err := decode.FunctionAt(f, 7)
	assert.True(t, errors.Is(err, hbc.ErrIndexOutOfRange))
}
