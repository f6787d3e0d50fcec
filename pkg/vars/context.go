// Package vars holds the variable context that drives template
// rendering: an order-preserving variable map parsed from the
// template's pastry.json, the recursive override merge, and the
// variable-shape dispatch used by the prompting pass.
package vars

import (
	"encoding/json"
	"os"

	"github.com/arthur-debert/pastry/pkg/errors"
)

// ReservedKey is the single top-level context key all template
// variables live under.
const ReservedKey = "pastry"

// DefinitionFile is the variable-definition file found at the
// template root.
const DefinitionFile = "pastry.json"

// PrivatePrefix marks keys that are carried through the context
// unmodified and never prompted for.
const PrivatePrefix = "_"

// Reserved private keys
const (
	// KeyTemplate names the output directory; set by the pipeline to
	// the template directory's base name unless the definition file
	// supplies its own value. A mapping value selects a nested template.
	KeyTemplate = "_template"

	// KeyExtensions lists extension identifiers loaded into the
	// render environment.
	KeyExtensions = "_extensions"

	// KeyCopyWithoutRender lists glob patterns for files copied
	// verbatim, never rendered.
	KeyCopyWithoutRender = "_copy_without_render"

	// KeyExtraContext holds global values injected into every render.
	KeyExtraContext = "_extra_context"

	// KeyPrompts maps variable names to custom prompt labels.
	KeyPrompts = "_prompts"

	// KeyRepoDir records the resolved template source directory.
	KeyRepoDir = "_repo_dir"

	// KeyOutputDir records the caller's output directory.
	KeyOutputDir = "_output_dir"
)

// Context is the variable set driving a single generation run. It
// wraps one top-level mapping holding the reserved key.
type Context struct {
	root *OrderedMap
}

// New creates an empty Context with the reserved mapping in place
func New() *Context {
	root := NewOrderedMap()
	root.Set(ReservedKey, NewOrderedMap())
	return &Context{root: root}
}

// FromRoot wraps an already-built top-level mapping (replay load)
func FromRoot(root *OrderedMap) (*Context, error) {
	v, ok := root.Get(ReservedKey)
	if !ok {
		return nil, errors.Newf(errors.ErrContextDecode, "context is missing the %q key", ReservedKey)
	}
	if _, ok := v.(*OrderedMap); !ok {
		return nil, errors.Newf(errors.ErrContextDecode, "context key %q is not a mapping", ReservedKey)
	}
	return &Context{root: root}, nil
}

// Root returns the top-level mapping
func (c *Context) Root() *OrderedMap {
	return c.root
}

// Vars returns the reserved variable mapping
func (c *Context) Vars() *OrderedMap {
	v, _ := c.root.Get(ReservedKey)
	return v.(*OrderedMap)
}

// Data converts the full context into plain nested maps for the
// template engine.
func (c *Context) Data() map[string]interface{} {
	return c.root.ToMap()
}

// Extensions returns the identifiers listed under _extensions
func (c *Context) Extensions() []string {
	raw, ok := c.Vars().Get(KeyExtensions)
	if !ok {
		return nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// CopyWithoutRender returns the glob patterns listed under
// _copy_without_render.
func (c *Context) CopyWithoutRender() []string {
	raw, ok := c.Vars().Get(KeyCopyWithoutRender)
	if !ok {
		return nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// ExtraContext returns the globals mapping under _extra_context, or nil
func (c *Context) ExtraContext() map[string]interface{} {
	raw, ok := c.Vars().Get(KeyExtraContext)
	if !ok {
		return nil
	}
	if om, ok := raw.(*OrderedMap); ok {
		return om.ToMap()
	}
	if m, ok := raw.(map[string]interface{}); ok {
		return m
	}
	return nil
}

// PromptLabels returns the per-variable prompt label overrides
// declared under _prompts.
func (c *Context) PromptLabels() map[string]string {
	raw, ok := c.Vars().Get(KeyPrompts)
	if !ok {
		return nil
	}
	om, ok := raw.(*OrderedMap)
	if !ok {
		return nil
	}
	out := make(map[string]string)
	for _, k := range om.Keys() {
		if v, ok := om.Get(k); ok {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
	}
	return out
}

// GenerateContext parses the variable-definition file and applies the
// default and override variable sets via the recursive merge. Later
// sources win at the leaf level; nested keys absent from an override
// are preserved from the base.
// Overlays may be plain maps or *OrderedMap values; nil overlays are
// ignored.
func GenerateContext(contextFile string, defaults, overrides interface{}) (*Context, error) {
	data, err := os.ReadFile(contextFile)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %q", contextFile)
	}

	obj := NewOrderedMap()
	if err := json.Unmarshal(data, obj); err != nil {
		return nil, errors.Wrapf(err, errors.ErrContextDecode,
			"JSON decoding error while loading %q", contextFile)
	}

	ctx := New()
	ctx.root.Set(ReservedKey, obj)

	ApplyOverwrites(obj, defaults)
	ApplyOverwrites(obj, overrides)

	return ctx, nil
}
