// Package gen turns a JSON shape model into a Go source file of shape table
// definitions for the codec's shape-driven writer.
//
// The model maps shape names to definitions:
//
//	{
//	  "shapes": {
//	    "DeviceName": {"type": "string"},
//	    "Tags":       {"type": "list", "member": "DeviceName"},
//	    "Attributes": {"type": "map", "value": "DeviceName"},
//	    "Device": {
//	      "type": "structure",
//	      "members": [
//	        {"name": "name", "wire": "n", "target": "DeviceName"},
//	        {"name": "tags", "target": "Tags"}
//	      ]
//	    }
//	  }
//	}
//
// Scalar types are integer, long, float, double, boolean, string, blob and
// timestamp. A structure member's optional "wire" overrides the key it is
// encoded under; a map's optional "key" names a key shape (text keys when
// absent). Generated tables declare one exported var per shape; aggregate
// shapes are wired in an init function, so mutually recursive definitions
// are fine.
package gen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/template"

	"golang.org/x/tools/imports"

	tmplfs "github.com/shapewire/cbor.go/cborctl/gen/templates"
)

// Options configures a generation run.
type Options struct {
	// Package names the generated package.
	Package string
}

// Model is the root of the JSON shape model.
type Model struct {
	Shapes map[string]ShapeDef `json:"shapes"`
}

// ShapeDef is one shape definition in the model.
type ShapeDef struct {
	Type    string      `json:"type"`
	Member  string      `json:"member,omitempty"`  // list element target
	Key     string      `json:"key,omitempty"`     // map key target, empty for text keys
	Value   string      `json:"value,omitempty"`   // map value target
	Members []MemberDef `json:"members,omitempty"` // structure fields
}

// MemberDef names one structure field and its target shape. Wire optionally
// overrides the key the field is encoded under.
type MemberDef struct {
	Name   string `json:"name"`
	Wire   string `json:"wire,omitempty"`
	Target string `json:"target"`
}

var scalarKinds = map[string]string{
	"integer":   "ShapeInteger",
	"long":      "ShapeLong",
	"float":     "ShapeFloat",
	"double":    "ShapeDouble",
	"boolean":   "ShapeBoolean",
	"string":    "ShapeString",
	"blob":      "ShapeBlob",
	"timestamp": "ShapeTimestamp",
}

// Run reads the model at inputPath and writes the generated Go file to
// outputPath.
func Run(inputPath, outputPath string, opts Options) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	var model Model
	if err := json.Unmarshal(raw, &model); err != nil {
		return fmt.Errorf("parse model %q: %w", inputPath, err)
	}
	out, err := Generate(&model, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, out, 0o644)
}

type shapeVar struct {
	Name   string
	Kind   string // scalar kind const, empty for aggregates
	Type   string // ScalarDef, ListDef, MapDef, StructDef
	Key    string // map key target var, empty for text keys
	Elem   string // list/map target var
	Fields []MemberDef
}

type templateData struct {
	Package string
	Shapes  []shapeVar
}

// Generate renders the model to formatted Go source.
func Generate(model *Model, opts Options) ([]byte, error) {
	if opts.Package == "" {
		opts.Package = "shapes"
	}
	if len(model.Shapes) == 0 {
		return nil, fmt.Errorf("model declares no shapes")
	}

	names := make([]string, 0, len(model.Shapes))
	for name := range model.Shapes {
		names = append(names, name)
	}
	sort.Strings(names)

	data := templateData{Package: opts.Package}
	for _, name := range names {
		def := model.Shapes[name]
		sv := shapeVar{Name: name}
		switch def.Type {
		case "list":
			if _, ok := model.Shapes[def.Member]; !ok {
				return nil, fmt.Errorf("shape %q: unknown member target %q", name, def.Member)
			}
			sv.Type = "ListDef"
			sv.Elem = def.Member
		case "map":
			if _, ok := model.Shapes[def.Value]; !ok {
				return nil, fmt.Errorf("shape %q: unknown value target %q", name, def.Value)
			}
			if def.Key != "" {
				if _, ok := model.Shapes[def.Key]; !ok {
					return nil, fmt.Errorf("shape %q: unknown key target %q", name, def.Key)
				}
				sv.Key = def.Key
			}
			sv.Type = "MapDef"
			sv.Elem = def.Value
		case "structure":
			for _, m := range def.Members {
				if _, ok := model.Shapes[m.Target]; !ok {
					return nil, fmt.Errorf("shape %q: member %q has unknown target %q", name, m.Name, m.Target)
				}
			}
			sv.Type = "StructDef"
			sv.Fields = def.Members
		default:
			kind, ok := scalarKinds[def.Type]
			if !ok {
				return nil, fmt.Errorf("shape %q: unknown type %q", name, def.Type)
			}
			sv.Type = "ScalarDef"
			sv.Kind = kind
		}
		data.Shapes = append(data.Shapes, sv)
	}

	tmpl, err := template.ParseFS(tmplfs.FS, "*.go.tpl")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "shapes.go.tpl", data); err != nil {
		return nil, err
	}

	formatted, err := imports.Process("shapes.go", buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w", err)
	}
	return formatted, nil
}
