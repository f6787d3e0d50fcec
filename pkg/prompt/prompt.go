// Package prompt runs the interactive pass that turns a parsed
// variable definition into a fully resolved context.
package prompt

import (
	"fmt"
	"os"

	"github.com/arthur-debert/pastry/pkg/errors"
	"github.com/arthur-debert/pastry/pkg/logging"
	"github.com/arthur-debert/pastry/pkg/render"
	"github.com/arthur-debert/pastry/pkg/vars"
)

// ForConfig walks the reserved variable mapping in insertion order and
// resolves every non-private variable, writing results back into the
// context in place. Private keys are copied through untouched.
//
// In no-input mode every field takes its computed default: the first
// option of a list, the raw value of a boolean or mapping, and the
// rendered default of a scalar. No blocking calls are made.
func ForConfig(ctx *vars.Context, env *render.Env, asker Asker, noInput bool) error {
	logger := logging.GetLogger("prompt")
	varsMap := ctx.Vars()
	labels := ctx.PromptLabels()

	for _, key := range varsMap.Keys() {
		raw, _ := varsMap.Get(key)
		spec := vars.SpecOf(key, raw)

		if spec.Private() {
			continue
		}

		label := key
		if custom, ok := labels[key]; ok {
			label = custom
		}

		val, err := resolveVariable(ctx, env, asker, spec, label, noInput)
		if err != nil {
			if errors.IsErrorCode(err, errors.ErrUndefinedVariable) {
				return errors.Wrapf(err, errors.ErrUndefinedVariable,
					"unable to render variable %q", key).WithDetail("variable", key)
			}
			return err
		}

		varsMap.Set(key, val)
		logger.Debug().Str("variable", key).Msg("variable resolved")
	}

	return nil
}

func resolveVariable(ctx *vars.Context, env *render.Env, asker Asker, spec vars.VariableSpec, label string, noInput bool) (interface{}, error) {
	switch spec.Kind {
	case vars.KindChoice:
		return resolveChoice(ctx, env, asker, spec, label, noInput)

	case vars.KindBoolean:
		if noInput {
			return spec.Raw, nil
		}
		return asker.Confirm(label, spec.Raw.(bool))

	case vars.KindStructured, vars.KindNestedTemplate:
		if noInput {
			return spec.Raw, nil
		}
		def, _ := spec.Raw.(*vars.OrderedMap)
		return asker.Structured(label, def)

	default:
		val, err := renderVariable(env, spec.Raw, ctx.Data())
		if err != nil {
			return nil, err
		}
		if noInput {
			return val, nil
		}
		str, ok := val.(string)
		if !ok {
			str = fmt.Sprint(val)
		}
		return asker.Text(label, str)
	}
}

func resolveChoice(ctx *vars.Context, env *render.Env, asker Asker, spec vars.VariableSpec, label string, noInput bool) (interface{}, error) {
	options := spec.Raw.([]interface{})
	if len(options) == 0 {
		return nil, errors.Newf(errors.ErrInvalidInput, "variable %q has an empty options list", spec.Key)
	}

	rendered := make([]string, len(options))
	for i, opt := range options {
		val, err := renderVariable(env, opt, ctx.Data())
		if err != nil {
			return nil, err
		}
		if s, ok := val.(string); ok {
			rendered[i] = s
		} else {
			rendered[i] = fmt.Sprint(val)
		}
	}

	if noInput {
		return rendered[0], nil
	}
	return asker.Select(label, rendered, rendered[0])
}

// renderVariable renders a raw default against the context so far, so
// a later field's default may reference an earlier field's
// already-resolved value. Non-string values pass through unchanged.
func renderVariable(env *render.Env, raw interface{}, data map[string]interface{}) (interface{}, error) {
	s, ok := raw.(string)
	if !ok {
		return raw, nil
	}
	return env.Render("variable", s, data)
}

// ChooseNestedTemplate handles a _template value that is a mapping of
// option name to nested template location: the user picks one
// (no-input picks the first), the mapping is replaced by the chosen
// path string, and the path is returned. A non-mapping _template
// passes through and "" is returned.
func ChooseNestedTemplate(ctx *vars.Context, asker Asker, noInput bool) (string, error) {
	varsMap := ctx.Vars()
	raw, ok := varsMap.Get(vars.KeyTemplate)
	if !ok {
		return "", nil
	}
	mapping, ok := raw.(*vars.OrderedMap)
	if !ok {
		return "", nil
	}

	keys := mapping.Keys()
	if len(keys) == 0 {
		return "", nil
	}

	chosenKey := keys[0]
	if !noInput {
		var err error
		chosenKey, err = asker.Select(vars.KeyTemplate, keys, keys[0])
		if err != nil {
			return "", err
		}
	}

	chosen, _ := mapping.Get(chosenKey)
	path := nestedTemplatePath(chosen)
	if path == "" {
		return "", errors.Newf(errors.ErrInvalidInput,
			"nested template option %q does not name a path", chosenKey)
	}

	varsMap.Set(vars.KeyTemplate, path)
	return path, nil
}

func nestedTemplatePath(option interface{}) string {
	switch v := option.(type) {
	case string:
		return v
	case *vars.OrderedMap:
		if p, ok := v.Get("path"); ok {
			if s, ok := p.(string); ok {
				return s
			}
		}
	}
	return ""
}

// AndDelete asks whether a previously downloaded copy at path should
// be deleted and re-fetched. No-input mode deletes without asking.
// Returns true when the caller should re-fetch, false to reuse the
// existing copy.
func AndDelete(path string, asker Asker, noInput bool) (bool, error) {
	if noInput {
		return true, removeAll(path)
	}

	okToDelete, err := asker.Confirm(
		fmt.Sprintf("You have downloaded %s before. Is it okay to delete and re-download it?", path), true)
	if err != nil {
		return false, err
	}
	if okToDelete {
		return true, removeAll(path)
	}

	okToReuse, err := asker.Confirm("Do you want to re-use the existing version?", true)
	if err != nil {
		return false, err
	}
	if okToReuse {
		return false, nil
	}

	return false, errors.New(errors.ErrInvalidInput, "aborted: existing download neither deleted nor reused")
}

func removeAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %q", path)
	}
	return nil
}
