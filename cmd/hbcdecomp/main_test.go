package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexter3k/hbcdecomp/config"
	"github.com/dexter3k/hbcdecomp/hbc"
	"github.com/dexter3k/hbcdecomp/internal/hbctest"
	"github.com/dexter3k/hbcdecomp/opcode"
)

func loadString(dst byte, id uint16) []byte {
	code := []byte{byte(opcode.LoadConstString), dst, 0, 0}
	binary.LittleEndian.PutUint16(code[2:], id)
	return code
}

// writeFixture builds a two function file: a global function returning a
// string and a second function with an exception handler.
func writeFixture(t *testing.T, dir string, extra ...[]byte) string {
	t.Helper()
	b := hbctest.New()
	b.AddString("global")
	b.AddIdentifier("inner")
	b.AddString("hello")

	b.AddFunction(append(loadString(0, 2), byte(opcode.Ret), 0))
	b.AddFunction([]byte{
		byte(opcode.Catch), 1,
		byte(opcode.LoadConstUndefined), 0,
		byte(opcode.Ret), 0,
	})
	b.Functions[1].Info.FunctionName = 1
	b.Functions[1].Handlers = []hbc.ExceptionHandler{{Start: 0, End: 2, Target: 4}}
	for _, code := range extra {
		b.AddFunction(code)
	}

	path := filepath.Join(dir, "bundle.hbc")
	require.NoError(t, os.WriteFile(path, b.Build(), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, config.FileName)
	require.NoError(t, os.WriteFile(cfg, []byte("[output]\ncolor = \"never\"\n"), 0644))

	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.Execute()
	return stdout.String(), err
}

func TestHeaderCommand(t *testing.T) {
	path := writeFixture(t, t.TempDir())
	out, err := run(t, "header", path)
	require.NoError(t, err)
	assert.Contains(t, out, "File header")
	assert.Regexp(t, `version\s+74`, out)
	assert.Regexp(t, `functions\s+2`, out)
	assert.Regexp(t, `strings\s+3`, out)

	out, err = run(t, "header", "--raw", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Magic:")
	assert.Contains(t, out, "FunctionCount: (uint32) 2")
}

func TestFunctionsCommand(t *testing.T) {
	out, err := run(t, "functions", writeFixture(t, t.TempDir()))
	require.NoError(t, err)
	assert.Contains(t, out, "3 strings\n2 functions\n")
	assert.Contains(t, out, `Function 0, "global", 6 bytes: 1 params, frame=8, env=0`)
	assert.Contains(t, out, `Function 1, "inner", 6 bytes`)
	assert.Contains(t, out, "handler start=000000 end=000002 target=000004")
}

func TestStringsCommand(t *testing.T) {
	out, err := run(t, "strings", writeFixture(t, t.TempDir()))
	require.NoError(t, err)
	assert.Regexp(t, `0 String\s+"global"`, out)
	assert.Regexp(t, `1 Identifier\s+"inner"`, out)
}

func TestDisCommand(t *testing.T) {
	path := writeFixture(t, t.TempDir())

	out, err := run(t, "dis", path)
	require.NoError(t, err)
	assert.Contains(t, out, "000000: r0 = s2\n000004: return r0\n")
	assert.Contains(t, out, "000000: r1 = catch()\n")

	out, err = run(t, "dis", "--function", "0", "--resolve-strings", path)
	require.NoError(t, err)
	assert.Contains(t, out, "000000: r0 = \"hello\"\n")
	assert.NotContains(t, out, "catch()")
}

func TestDisUnknownFunction(t *testing.T) {
	_, err := run(t, "dis", "--function", "9", writeFixture(t, t.TempDir()))
	assert.ErrorIs(t, err, hbc.ErrIndexOutOfRange)
}

func TestExportJSON(t *testing.T) {
	out, err := run(t, "export", "--format", "json", writeFixture(t, t.TempDir()))
	require.NoError(t, err)

	var doc exportFile
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, uint32(74), doc.Version)
	assert.Equal(t, []string{"global", "inner", "hello"}, doc.Strings)
	require.Len(t, doc.Functions, 2)
	assert.Equal(t, "inner", doc.Functions[1].Name)
	assert.Equal(t, []hbc.ExceptionHandler{{Start: 0, End: 2, Target: 4}}, doc.Functions[1].Handlers)
	assert.Equal(t, []exportStatement{{0, "r0 = s2"}, {4, "return r0"}}, doc.Functions[0].Statements)
}

func TestExportCBORFromEnvironment(t *testing.T) {
	t.Setenv("HBC_FORMAT", "cbor")
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.cbor")
	_, err := run(t, "export", "-o", dst, writeFixture(t, dir))
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	var doc exportFile
	require.NoError(t, cbor.Unmarshal(data, &doc))
	require.Len(t, doc.Functions, 2)
	assert.Equal(t, "global", doc.Functions[0].Name)
	assert.True(t, doc.Functions[0].Strict)
}

func TestVerifyCommand(t *testing.T) {
	out, err := run(t, "verify", writeFixture(t, t.TempDir()))
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 2 functions decoded")

	out, err = run(t, "verify", writeFixture(t, t.TempDir(), []byte{0xff}, []byte{byte(opcode.GetById), 0}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 4 functions failed")
	assert.Contains(t, out, "function 2:")
	assert.Contains(t, out, "function 3:")
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.hbc")
	require.NoError(t, os.WriteFile(path, []byte("not a bytecode file at all"), 0644))
	_, err := run(t, "header", path)
	assert.ErrorIs(t, err, hbc.ErrBadMagic)
}

func TestUnknownColorMode(t *testing.T) {
	_, err := run(t, "--color", "rainbow", "header", writeFixture(t, t.TempDir()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rainbow")
}

func TestStringsMatch(t *testing.T) {
	out, err := run(t, "strings", "--match", "^(?:in|he)", writeFixture(t, t.TempDir()))
	require.NoError(t, err)
	assert.NotContains(t, out, "global")
	assert.Contains(t, out, `"inner"`)
	assert.Contains(t, out, `"hello"`)

	_, err = run(t, "strings", "--match", "(", writeFixture(t, t.TempDir()))
	assert.Error(t, err)
}

func TestCompressedInput(t *testing.T) {
	dir := t.TempDir()
	raw, err := os.ReadFile(writeFixture(t, dir))
	require.NoError(t, err)

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zstPath := filepath.Join(dir, "bundle.hbc.zst")
	require.NoError(t, os.WriteFile(zstPath, enc.EncodeAll(raw, nil), 0644))
	require.NoError(t, enc.Close())

	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	_, err = w.Write(raw)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	gzPath := filepath.Join(dir, "bundle.hbc.gz")
	require.NoError(t, os.WriteFile(gzPath, gz.Bytes(), 0644))

	for _, path := range []string{zstPath, gzPath} {
		out, err := run(t, "verify", path)
		require.NoError(t, err, path)
		assert.Contains(t, out, "ok: 2 functions decoded")
	}
}
