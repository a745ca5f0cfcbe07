// Package relations loads the authored relationship table and joins it
// against the catalog.
package relations

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/okian/marquee/internal/domain/model"
)

//go:embed relationships.hcl
var embedded []byte

// hclFile mirrors the relationship table layout.
type hclFile struct {
	Relationships []hclRelationship `hcl:"relationship,block"`
}

type hclRelationship struct {
	Type string  `hcl:"type,label"`
	From string  `hcl:"from"`
	To   string  `hcl:"to"`
	Side *string `hcl:"side,optional"`
}

// Embedded returns the relationship table compiled into the binary.
func Embedded() ([]model.Relationship, error) {
	return Parse(embedded, "relationships.hcl")
}

// Parse decodes an HCL relationship table. The bare identifiers top and
// bottom are available for side.
func Parse(src []byte, filename string) ([]model.Relationship, error) {
	const op = "relations.parse"

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrDecode, diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			string(model.SideTop):    cty.StringVal(string(model.SideTop)),
			string(model.SideBottom): cty.StringVal(string(model.SideBottom)),
		},
	}

	var f hclFile
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &f); diags.HasErrors() {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrDecode, diags.Error())
	}

	out := make([]model.Relationship, 0, len(f.Relationships))
	for i, r := range f.Relationships {
		rel := model.Relationship{
			Type: model.RelationType(r.Type),
			From: strings.TrimSpace(r.From),
			To:   strings.TrimSpace(r.To),
		}
		if !rel.Type.Valid() {
			return nil, fmt.Errorf("%s: block %d: %w: %q", op, i, ErrUnknownType, r.Type)
		}
		if rel.From == "" || rel.To == "" {
			return nil, fmt.Errorf("%s: block %d: %w: empty title", op, i, ErrInvalid)
		}
		if r.Side != nil {
			rel.Side = model.Side(*r.Side)
			if !rel.Side.Valid() {
				return nil, fmt.Errorf("%s: block %d: %w: side %q", op, i, ErrInvalid, *r.Side)
			}
		}
		out = append(out, rel)
	}
	return out, nil
}

// DefaultSide is the side used when a relationship does not name one.
// Same-line continuations sit above the axis, cross-title links below.
func DefaultSide(t model.RelationType) model.Side {
	switch t {
	case model.RelationSequel, model.RelationSpinoff:
		return model.SideTop
	default:
		return model.SideBottom
	}
}

// Resolve joins relationships to catalog ids by exact title. Tuples whose
// from or to title is absent are returned in dropped and left out of conns.
func Resolve(rels []model.Relationship, titles []model.Title) (conns []model.Connection, dropped []model.Relationship) {
	ids := make(map[string]string, len(titles))
	for _, t := range titles {
		if _, dup := ids[t.Name]; !dup {
			ids[t.Name] = t.ID
		}
	}

	conns = make([]model.Connection, 0, len(rels))
	for _, r := range rels {
		from, okFrom := ids[r.From]
		to, okTo := ids[r.To]
		if !okFrom || !okTo {
			dropped = append(dropped, r)
			continue
		}
		side := r.Side
		if side == "" {
			side = DefaultSide(r.Type)
		}
		conns = append(conns, model.Connection{Type: r.Type, FromID: from, ToID: to, Side: side})
	}
	return conns, dropped
}
