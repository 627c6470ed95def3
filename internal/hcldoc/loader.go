// Package hcldoc is the HCL implementation of config.Loader.
//
// Every block is a component: the block type is the component type and the
// first label its name. Attributes stay unevaluated so the engine can record
// the references they make. A top-level `variant` block configures
// randomization. When a file holds anything other than a single `document`
// block, the top-level components are wrapped in an implicit document.
package hcldoc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/reactidoc/internal/config"
	"github.com/specialistvlad/reactidoc/internal/ctxlog"
	"github.com/specialistvlad/reactidoc/internal/fsutil"
)

const (
	variantBlock  = "variant"
	documentBlock = "document"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL document loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load parses every .hcl file under the given paths, in path order, and
// merges their top-level blocks into one document.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Document, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	var bodies []*hclsyntax.Body
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		bodies = append(bodies, hclFile.Body.(*hclsyntax.Body))
	}
	return l.translate(ctx, bodies)
}

// Parse translates a single in-memory source.
func (l *Loader) Parse(ctx context.Context, filename string, src []byte) (*config.Document, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL source %s: %w", filename, diags)
	}
	return l.translate(ctx, []*hclsyntax.Body{file.Body.(*hclsyntax.Body)})
}

func (l *Loader) translate(ctx context.Context, bodies []*hclsyntax.Body) (*config.Document, error) {
	logger := ctxlog.FromContext(ctx)
	t := &translator{}
	doc := &config.Document{}

	var top []*config.Component
	var rootRange hcl.Range
	for _, body := range bodies {
		if len(body.Attributes) > 0 {
			for _, attr := range body.Attributes {
				t.diags = append(t.diags, &hcl.Diagnostic{
					Severity: hcl.DiagWarning,
					Summary:  "Top-level attribute ignored",
					Detail:   fmt.Sprintf("Attribute %q is outside any component and has no effect.", attr.Name),
					Subject:  attr.SrcRange.Ptr(),
				})
			}
		}
		rootRange = body.SrcRange
		for _, block := range body.Blocks {
			if block.Type == variantBlock {
				if doc.Variant != nil {
					t.diags = append(t.diags, &hcl.Diagnostic{
						Severity: hcl.DiagError,
						Summary:  "Duplicate variant block",
						Detail:   "Only one variant block is allowed per document.",
						Subject:  block.DefRange().Ptr(),
					})
					continue
				}
				doc.Variant = t.variant(block)
				continue
			}
			top = append(top, t.component(block))
		}
	}

	if len(top) == 1 && top[0].Type == documentBlock {
		doc.Root = top[0]
	} else {
		doc.Root = &config.Component{
			Type:       documentBlock,
			Name:       config.DefaultRootName,
			Attributes: map[string]*config.Attribute{},
			Children:   top,
			DefRange:   rootRange,
			Range:      rootRange,
		}
	}
	if doc.Variant == nil {
		doc.Variant = &config.Variant{MaxExcludedFraction: DefaultMaxExcludedFraction}
	}

	t.checkNames(doc.Root)
	if t.diags.HasErrors() {
		return nil, t.diags
	}

	doc.Diagnostics = t.diags
	logger.Debug("HCL loading complete.", "root", doc.Root.Name, "warnings", len(t.diags))
	return doc, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			found, err := fsutil.FindDocuments(path)
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}
		} else if filepath.Ext(path) == fsutil.DocumentExt {
			add(path)
		}
	}
	return allFiles, nil
}
