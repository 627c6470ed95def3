package hcldoc

import (
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/reactidoc/internal/config"
	"github.com/specialistvlad/reactidoc/internal/nodeid"
	"github.com/zclconf/go-cty/cty/gocty"
)

// DefaultMaxExcludedFraction is used when the variant block omits it.
const DefaultMaxExcludedFraction = 0.75

type translator struct {
	diags   hcl.Diagnostics
	counter int
}

func (t *translator) component(block *hclsyntax.Block) *config.Component {
	c := &config.Component{
		Type:       block.Type,
		Attributes: make(map[string]*config.Attribute, len(block.Body.Attributes)),
		DefRange:   block.DefRange(),
		Range:      block.Range(),
	}

	switch n := len(block.Labels); {
	case n == 0:
		t.counter++
		c.Name = fmt.Sprintf("_%s%d", block.Type, t.counter)
	case n > 2:
		t.diags = append(t.diags, &hcl.Diagnostic{
			Severity: hcl.DiagWarning,
			Summary:  "Compound name has too many parts",
			Detail: fmt.Sprintf("A %s block takes a name and an optional label; %d extra part(s) ignored.",
				block.Type, n-2),
			Subject: block.LabelRanges[2].Ptr(),
		})
		fallthrough
	default:
		c.Name = block.Labels[0]
		if n >= 2 {
			c.Label = block.Labels[1]
		}
	}

	for name, attr := range block.Body.Attributes {
		c.Attributes[name] = &config.Attribute{Name: name, Expr: attr.Expr, Range: attr.SrcRange}
	}
	for _, child := range block.Body.Blocks {
		c.Children = append(c.Children, t.component(child))
	}
	return c
}

func (t *translator) variant(block *hclsyntax.Block) *config.Variant {
	v := &config.Variant{MaxExcludedFraction: DefaultMaxExcludedFraction, Range: block.DefRange()}
	for name, attr := range block.Body.Attributes {
		val, diags := attr.Expr.Value(nil)
		t.diags = append(t.diags, diags...)
		if diags.HasErrors() || val.IsNull() {
			continue
		}
		var err error
		switch name {
		case "index":
			err = gocty.FromCtyValue(val, &v.Index)
		case "seed":
			err = gocty.FromCtyValue(val, &v.Seed)
		case "max_excluded_fraction":
			var f float64
			if err = gocty.FromCtyValue(val, &f); err == nil && (f < 0 || f > 1 || math.IsNaN(f)) {
				err = fmt.Errorf("must be between 0 and 1")
			}
			if err == nil {
				v.MaxExcludedFraction = f
			}
		default:
			t.diags = append(t.diags, &hcl.Diagnostic{
				Severity: hcl.DiagWarning,
				Summary:  "Unsupported variant setting",
				Detail:   fmt.Sprintf("%q is not a variant setting and is ignored.", name),
				Subject:  attr.SrcRange.Ptr(),
			})
			continue
		}
		if err != nil {
			t.diags = append(t.diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid variant setting",
				Detail:   fmt.Sprintf("%s: %s.", name, err),
				Subject:  attr.SrcRange.Ptr(),
			})
		}
	}
	return v
}

// checkNames rejects names that cannot form an address and duplicate names
// among the components sharing one naming scope. Components inside template
// constructs get their own scope per instance, so duplicates are only
// checked outside them.
func (t *translator) checkNames(root *config.Component) {
	seen := map[string]hcl.Range{}
	var walk func(c *config.Component, scoped bool)
	walk = func(c *config.Component, scoped bool) {
		if !nodeid.ValidName(c.Name) {
			t.diags = append(t.diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid component name",
				Detail:   fmt.Sprintf("%q must start with a letter or underscore and contain only letters, digits, '_' or '-'.", c.Name),
				Subject:  c.DefRange.Ptr(),
			})
		}
		if !scoped {
			if prev, dup := seen[c.Name]; dup {
				t.diags = append(t.diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate component name",
					Detail:   fmt.Sprintf("%q is already defined at %s.", c.Name, prev),
					Subject:  c.DefRange.Ptr(),
				})
			}
			seen[c.Name] = c.DefRange
		}
		childScoped := scoped || templateTypes[c.Type]
		for _, ch := range c.Children {
			walk(ch, childScoped)
		}
	}
	walk(root, false)
}

// templateTypes are the constructs whose children are instantiated per
// replacement group rather than once.
var templateTypes = map[string]bool{
	"repeat": true,
	"select": true,
	"option": true,
}
