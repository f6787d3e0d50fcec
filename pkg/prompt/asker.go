package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/pastry/pkg/errors"
	"github.com/arthur-debert/pastry/pkg/vars"
)

// Asker is the prompting boundary: four primitive asks, each returning
// a validated value. Implementations re-ask on invalid input.
type Asker interface {
	// Text asks for free text, offering def as the editable default.
	Text(label, def string) (string, error)

	// Confirm asks a yes/no question. Accepted truthy tokens are
	// 1/true/t/yes/y/on, falsy 0/false/f/no/n/off, case-insensitive.
	Confirm(label string, def bool) (bool, error)

	// Select asks the user to pick one of options; def must be one of
	// them. The first option wins when the user just hits enter.
	Select(label string, options []string, def string) (string, error)

	// Structured asks for a JSON object, offering def serialized as
	// the default.
	Structured(label string, def *vars.OrderedMap) (*vars.OrderedMap, error)

	// Secret asks for a value without echoing it.
	Secret(label string) (string, error)
}

// ParseBoolToken converts a yes/no answer to a bool. The token
// vocabulary is fixed; anything else is an invalid response.
func ParseBoolToken(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, errors.Newf(errors.ErrInvalidInput, "invalid yes/no response %q", s)
	}
}

// TerminalAsker prompts on the terminal via pterm interactive
// components.
type TerminalAsker struct{}

// NewTerminalAsker creates the production Asker
func NewTerminalAsker() *TerminalAsker {
	return &TerminalAsker{}
}

// Interactive reports whether stdin is attached to a terminal.
// Callers force no-input behavior when it is not.
func Interactive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Text implements Asker
func (a *TerminalAsker) Text(label, def string) (string, error) {
	return pterm.DefaultInteractiveTextInput.
		WithDefaultValue(def).
		Show(label)
}

// Confirm implements Asker. It reads a token answer rather than using
// a toggle so that the full truthy/falsy vocabulary is accepted, and
// re-asks on anything outside it.
func (a *TerminalAsker) Confirm(label string, def bool) (bool, error) {
	defText := "no"
	if def {
		defText = "yes"
	}
	for {
		answer, err := pterm.DefaultInteractiveTextInput.
			WithDefaultValue(defText).
			Show(fmt.Sprintf("%s [yes/no]", label))
		if err != nil {
			return false, err
		}
		val, perr := ParseBoolToken(answer)
		if perr != nil {
			pterm.Warning.Println("Please answer yes or no")
			continue
		}
		return val, nil
	}
}

// Select implements Asker
func (a *TerminalAsker) Select(label string, options []string, def string) (string, error) {
	if len(options) == 0 {
		return "", errors.New(errors.ErrInvalidInput, "options list must not be empty")
	}
	if def == "" {
		def = options[0]
	}
	return pterm.DefaultInteractiveSelect.
		WithOptions(options).
		WithDefaultOption(def).
		Show(label)
}

// Structured implements Asker. Invalid JSON re-asks.
func (a *TerminalAsker) Structured(label string, def *vars.OrderedMap) (*vars.OrderedMap, error) {
	defText := "{}"
	if def != nil {
		if data, err := def.MarshalJSON(); err == nil {
			defText = string(data)
		}
	}
	for {
		answer, err := pterm.DefaultInteractiveTextInput.
			WithDefaultValue(defText).
			Show(label)
		if err != nil {
			return nil, err
		}
		parsed := vars.NewOrderedMap()
		if jerr := json.Unmarshal([]byte(answer), parsed); jerr != nil {
			pterm.Warning.Println("Please enter a valid JSON object")
			continue
		}
		return parsed, nil
	}
}

// Secret implements Asker
func (a *TerminalAsker) Secret(label string) (string, error) {
	return pterm.DefaultInteractiveTextInput.
		WithMask("*").
		Show(label)
}
