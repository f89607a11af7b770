package skill

import "strings"

// Delimiter separates skill bodies in a composed block. It is not Markdown,
// YAML or HTML syntax, so renderers pass it through untouched.
const Delimiter = "\n\n§§§\n\n"

// Compose builds the prompt block: alwaysOn first, then domain skills in
// the order given, then presentation skills. Skills with an empty body are
// skipped entirely.
func Compose(loader Loader, alwaysOn Name, selected []Name, categoryOf func(Name) Category) string {
	if categoryOf == nil {
		categoryOf = CategoryOf
	}

	var domain, presentation []Name
	for _, name := range selected {
		if categoryOf(name) == CategoryPresentation {
			presentation = append(presentation, name)
			continue
		}
		domain = append(domain, name)
	}

	ordered := make([]Name, 0, 1+len(selected))
	ordered = append(ordered, alwaysOn)
	ordered = append(ordered, domain...)
	ordered = append(ordered, presentation...)

	bodies := make([]string, 0, len(ordered))
	for _, name := range ordered {
		if body := loader.Load(name); body != "" {
			bodies = append(bodies, body)
		}
	}
	return strings.Join(bodies, Delimiter)
}
