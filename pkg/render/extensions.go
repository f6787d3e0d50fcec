package render

import (
	"crypto/rand"
	"math/big"
	"text/template"
	"time"

	"github.com/arthur-debert/pastry/pkg/errors"
	"github.com/arthur-debert/pastry/pkg/registry"
)

// Extensions contribute extra template functions. Templates opt in by
// listing extension identifiers under _extensions in pastry.json.

var extensions = registry.New[template.FuncMap]()

// RegisterExtension makes an extension's function set available under
// the given identifier. Registering an existing identifier replaces it.
func RegisterExtension(name string, funcs template.FuncMap) {
	extensions.Register(name, funcs)
}

// Extensions lists the registered extension identifiers
func Extensions() []string {
	return extensions.List()
}

func lookupExtension(name string) (template.FuncMap, error) {
	funcs, ok := extensions.Lookup(name)
	if !ok {
		return nil, errors.Newf(errors.ErrUnknownExtension, "unknown extension %q", name)
	}
	return funcs, nil
}

func init() {
	RegisterExtension("time", template.FuncMap{
		"now": func() string { return time.Now().Format("2006-01-02") },
		"year": func() string {
			return time.Now().Format("2006")
		},
	})

	RegisterExtension("random", template.FuncMap{
		"randomAscii": randomAscii,
	})
}

const asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomAscii(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, n)
	max := big.NewInt(int64(len(asciiLetters)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			out[i] = asciiLetters[0]
			continue
		}
		out[i] = asciiLetters[idx.Int64()]
	}
	return string(out)
}
