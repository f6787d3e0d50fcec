package render

import (
	"regexp"
	"strings"
	"text/template"
	"unicode"
)

// baseFuncs returns the function set available to every template.
// Argument order puts the subject string last so the functions
// compose in pipelines: {{ .pastry.project_name | lower | replace " " "_" }}.
func baseFuncs() template.FuncMap {
	return template.FuncMap{
		"lower":      strings.ToLower,
		"upper":      strings.ToUpper,
		"title":      titleCase,
		"trim":       strings.TrimSpace,
		"replace":    func(old, new, s string) string { return strings.ReplaceAll(s, old, new) },
		"trimPrefix": func(prefix, s string) string { return strings.TrimPrefix(s, prefix) },
		"trimSuffix": func(suffix, s string) string { return strings.TrimSuffix(s, suffix) },
		"snake":      snakeCase,
		"camel":      camelCase,
		"kebab":      kebabCase,
		"slug":       slugify,
	}
}

func titleCase(s string) string {
	prev := ' '
	return strings.Map(func(r rune) rune {
		defer func() { prev = r }()
		if unicode.IsSpace(prev) || prev == '-' || prev == '_' {
			return unicode.ToUpper(r)
		}
		return unicode.ToLower(r)
	}, s)
}

var wordSplitRe = regexp.MustCompile(`[\s_-]+`)

func words(s string) []string {
	return wordSplitRe.Split(strings.TrimSpace(s), -1)
}

func snakeCase(s string) string {
	return strings.ToLower(strings.Join(words(s), "_"))
}

func kebabCase(s string) string {
	return strings.ToLower(strings.Join(words(s), "-"))
}

func camelCase(s string) string {
	parts := words(s)
	var sb strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			sb.WriteString(strings.ToLower(p))
			continue
		}
		sb.WriteString(strings.ToUpper(p[:1]))
		sb.WriteString(strings.ToLower(p[1:]))
	}
	return sb.String()
}

var (
	nonSlugRe = regexp.MustCompile(`[^a-z0-9-]+`)
	dashRunRe = regexp.MustCompile(`-+`)
)

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = nonSlugRe.ReplaceAllString(s, "")
	s = dashRunRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
