package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/fxamacker/cbor/v2"
	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"

	"github.com/dexter3k/hbcdecomp/decode"
	"github.com/dexter3k/hbcdecomp/hbc"
	"github.com/dexter3k/hbcdecomp/ir"
)

// exportFile is the serialized form of a decoded file.
type exportFile struct {
	Version         uint32           `json:"version"`
	SourceHash      string           `json:"source_hash"`
	GlobalCodeIndex uint32           `json:"global_code_index"`
	StaticBuiltins  bool             `json:"static_builtins"`
	Strings         []string         `json:"strings"`
	Functions       []exportFunction `json:"functions"`
}

type exportFunction struct {
	Index           uint32                 `json:"index"`
	Name            string                 `json:"name"`
	Offset          uint32                 `json:"offset"`
	ParamCount      uint32                 `json:"param_count"`
	FrameSize       uint32                 `json:"frame_size"`
	EnvironmentSize uint32                 `json:"environment_size"`
	Strict          bool                   `json:"strict"`
	Prohibit        string                 `json:"prohibit"`
	Handlers        []hbc.ExceptionHandler `json:"handlers,omitempty"`
	Statements      []exportStatement      `json:"statements"`
}

type exportStatement struct {
	Offset uint32 `json:"offset"`
	Text   string `json:"text"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("hbcdecomp: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

func buildExport(f *hbc.File, fns []*ir.Function) (*exportFile, error) {
	out := &exportFile{
		Version:         f.Header.Version,
		SourceHash:      hex.EncodeToString(f.Header.SourceHash[:]),
		GlobalCodeIndex: f.Header.GlobalCodeIndex,
		StaticBuiltins:  f.Header.Options.StaticBuiltins(),
		Strings:         make([]string, len(f.SmallStrings)),
	}
	for i := range out.Strings {
		s, err := f.String(uint32(i))
		if err != nil {
			return nil, err
		}
		out.Strings[i] = s
	}
	for _, fn := range fns {
		name, err := f.FunctionName(fn.Index)
		if err != nil {
			return nil, err
		}
		handlers, err := f.ExceptionHandlers(fn.Index)
		if err != nil {
			return nil, err
		}
		ef := exportFunction{
			Index:           fn.Index,
			Name:            name,
			Offset:          fn.Info.Offset,
			ParamCount:      fn.Info.ParamCount,
			FrameSize:       fn.Info.FrameSize,
			EnvironmentSize: fn.Info.EnvironmentSize,
			Strict:          fn.Info.Flags.StrictMode(),
			Prohibit:        fn.Info.Flags.ProhibitInvoke().String(),
			Handlers:        handlers,
			Statements:      make([]exportStatement, len(fn.Body)),
		}
		for i, stmt := range fn.Body {
			ef.Statements[i] = exportStatement{Offset: fn.Offsets[i], Text: stmt.String()}
		}
		out.Functions = append(out.Functions, ef)
	}
	return out, nil
}

func (a *app) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the decoded file as JSON or CBOR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.load(args[0])
			if err != nil {
				return err
			}
			fns, err := decode.Program(cmd.Context(), f, a.decodeOptions())
			if err != nil {
				return err
			}
			doc, err := buildExport(f, fns)
			if err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("output")
			data, err := encodeExport(doc, a.v.GetString("format"), path == "" && !color.NoColor)
			if err != nil {
				return err
			}
			if path == "" {
				_, err = a.stdout.Write(data)
				return err
			}
			return os.WriteFile(path, data, 0644)
		},
	}
	cmd.Flags().String("format", "", "json or cbor")
	cmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")
	return cmd
}

func encodeExport(doc *exportFile, format string, pretty bool) ([]byte, error) {
	switch format {
	case "json":
		var data []byte
		var err error
		if pretty {
			data, err = prettyjson.Marshal(doc)
		} else {
			data, err = json.MarshalIndent(doc, "", "  ")
		}
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "cbor":
		return cborEncMode.Marshal(doc)
	}
	return nil, fmt.Errorf("unknown output format: %s", format)
}
