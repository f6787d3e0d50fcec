// Package render builds the one template environment used for every
// name and content render in a generation run: directory names, file
// names, file contents and hook scripts all go through the same Env.
package render

import (
	goerrors "errors"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/arthur-debert/pastry/pkg/errors"
	"github.com/arthur-debert/pastry/pkg/logging"
	"github.com/arthur-debert/pastry/pkg/vars"
)

// Env is a configured template environment. It is immutable after
// construction and shared read-only for the rest of the run.
type Env struct {
	funcs   template.FuncMap
	globals map[string]interface{}
}

// NewEnv builds the environment from the context: base functions,
// extension function sets named under _extensions, and globals from
// _extra_context.
func NewEnv(ctx *vars.Context) (*Env, error) {
	logger := logging.GetLogger("render")

	funcs := baseFuncs()
	for _, name := range ctx.Extensions() {
		ext, err := lookupExtension(name)
		if err != nil {
			return nil, err
		}
		for fname, fn := range ext {
			funcs[fname] = fn
		}
		logger.Debug().Str("extension", name).Msg("loaded extension")
	}

	return &Env{
		funcs:   funcs,
		globals: ctx.ExtraContext(),
	}, nil
}

// NewEmptyEnv builds an environment with only the base functions and
// no globals. The template locator uses it to best-effort render
// candidate directory names against an empty context.
func NewEmptyEnv() *Env {
	return &Env{funcs: baseFuncs()}
}

// Render parses text as a template and executes it against data.
// Missing keys are errors: no unresolved expression may silently
// survive into generated output.
func (e *Env) Render(name, text string, data map[string]interface{}) (string, error) {
	tmpl, err := template.New(name).Funcs(e.funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", syntaxError(name, err)
	}

	merged := data
	if len(e.globals) > 0 {
		merged = make(map[string]interface{}, len(data)+len(e.globals))
		for k, v := range e.globals {
			merged[k] = v
		}
		for k, v := range data {
			merged[k] = v
		}
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, merged); err != nil {
		return "", execError(name, err)
	}
	return sb.String(), nil
}

// HasTemplateSyntax reports whether a string contains template
// expressions at all.
func HasTemplateSyntax(s string) bool {
	return strings.Contains(s, "{{")
}

var (
	missingKeyRe = regexp.MustCompile(`no entry for key "([^"]+)"`)
	lineRe       = regexp.MustCompile(`template: [^:]*:(\d+)`)
	nilPointerRe = regexp.MustCompile(`nil pointer evaluating [^.]*\.(\S+)`)
)

// UndefinedName extracts the offending variable name from an
// undefined-variable error, or "" when the error is something else.
// The detail may sit on any error in the chain since wrapping layers
// add their own details on top.
func UndefinedName(err error) string {
	for err != nil {
		if details := errors.GetErrorDetails(err); details != nil {
			if name, ok := details["variable"].(string); ok {
				return name
			}
		}
		err = goerrors.Unwrap(err)
	}
	return ""
}

func syntaxError(name string, err error) error {
	line := 0
	if m := lineRe.FindStringSubmatch(err.Error()); m != nil {
		line, _ = strconv.Atoi(m[1])
	}
	return errors.Wrapf(err, errors.ErrTemplateSyntax, "template syntax error in %q", name).
		WithDetail("source", name).
		WithDetail("line", line)
}

func execError(name string, err error) error {
	msg := err.Error()
	if m := missingKeyRe.FindStringSubmatch(msg); m != nil {
		return errors.Wrapf(err, errors.ErrUndefinedVariable, "undefined variable in %q", name).
			WithDetail("variable", m[1]).
			WithDetail("source", name)
	}
	if m := nilPointerRe.FindStringSubmatch(msg); m != nil {
		return errors.Wrapf(err, errors.ErrUndefinedVariable, "undefined variable in %q", name).
			WithDetail("variable", m[1]).
			WithDetail("source", name)
	}
	return errors.Wrapf(err, errors.ErrTemplateSyntax, "template execution failed in %q", name).
		WithDetail("source", name)
}
