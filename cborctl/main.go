package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	cbor "github.com/shapewire/cbor.go/codec"
	"github.com/shapewire/cbor.go/cborctl/gen"
)

// CLI defines the cborctl command-line interface.
type CLI struct {
	Dump     DumpCmd     `cmd:"" help:"Render a CBOR document in RFC 8949 diagnostic notation."`
	Validate ValidateCmd `cmd:"" help:"Check a CBOR document for well-formedness."`
	Gen      GenCmd      `cmd:"" help:"Generate Go shape tables from a JSON shape model."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("cborctl"),
		kong.Description("Inspect CBOR documents and generate shape tables."),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

// DumpCmd renders every item of the input document, one per line.
type DumpCmd struct {
	Input string `arg:"" optional:"" default:"-" help:"Input file ('-' for stdin)"`
	Hex   bool   `short:"x" help:"Treat input as hex text instead of raw bytes"`
}

func (c *DumpCmd) Run() error {
	data, err := readInput(c.Input, c.Hex)
	if err != nil {
		return err
	}
	total := len(data)
	for len(data) > 0 {
		diag, rest, err := cbor.DiagBytes(data)
		if err != nil {
			return fmt.Errorf("at byte offset %d: %w", total-len(data), err)
		}
		fmt.Println(diag)
		data = rest
	}
	return nil
}

// ValidateCmd checks every item in the input document.
type ValidateCmd struct {
	Input string `arg:"" optional:"" default:"-" help:"Input file ('-' for stdin)"`
	Hex   bool   `short:"x" help:"Treat input as hex text instead of raw bytes"`
}

func (c *ValidateCmd) Run() error {
	data, err := readInput(c.Input, c.Hex)
	if err != nil {
		return err
	}
	if err := cbor.ValidateDocument(data); err != nil {
		return fmt.Errorf("not well-formed: %w", err)
	}
	items, err := cbor.SplitSequenceBytes(data)
	if err != nil {
		return err
	}
	fmt.Printf("ok: %d item(s), %d byte(s)\n", len(items), len(data))
	return nil
}

// GenCmd generates a Go source file of shape table definitions.
type GenCmd struct {
	Input   string `arg:"" help:"JSON shape model file"`
	Output  string `short:"o" help:"Output file (defaults to {input}_shapes.go)"`
	Package string `short:"p" help:"Package name for the generated file" default:"shapes"`
}

func (c *GenCmd) Run() error {
	out := c.Output
	if strings.TrimSpace(out) == "" {
		out = strings.TrimSuffix(c.Input, ".json") + "_shapes.go"
	}
	return gen.Run(c.Input, out, gen.Options{Package: c.Package})
}

func readInput(path string, asHex bool) ([]byte, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if asHex {
		clean := strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
				return -1
			}
			return r
		}, string(data))
		return hex.DecodeString(clean)
	}
	return data, nil
}
