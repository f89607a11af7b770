package skill

// Name identifies a skill document.
type Name string

const (
	AlwaysOn        Name = "always_on"
	TaskPlanning    Name = "task_planning"
	TaskDeletion    Name = "task_deletion"
	StatusReporting Name = "status_reporting"
	OutputFormat    Name = "output_format"
)

// Category controls where a skill lands in the composed block.
type Category int

const (
	CategoryBaseline Category = iota
	CategoryDomain
	CategoryPresentation
)

func (c Category) String() string {
	switch c {
	case CategoryBaseline:
		return "baseline"
	case CategoryDomain:
		return "domain"
	case CategoryPresentation:
		return "presentation"
	default:
		return "unknown"
	}
}

// Definition describes one catalog entry.
type Definition struct {
	Name        Name
	Description string
	Category    Category
	Triggers    []string
}

// catalog is ordered; the order of selectable entries is the keyword
// classifier's output order.
var catalog = []Definition{
	{
		Name:        AlwaysOn,
		Description: "Baseline rules that apply to all goals.",
		Category:    CategoryBaseline,
	},
	{
		Name:        TaskPlanning,
		Description: "Use when the goal asks to plan, organize, or sequence work.",
		Category:    CategoryDomain,
		Triggers:    []string{"plan", "planning", "organize", "prioritize", "schedule", "sequence", "roadmap"},
	},
	{
		Name:        TaskDeletion,
		Description: "Use when the goal asks to delete, remove, or clean up tasks.",
		Category:    CategoryDomain,
		Triggers:    []string{"delete", "remove", "purge", "clean up", "clear out", "get rid of"},
	},
	{
		Name:        StatusReporting,
		Description: "Use when the goal asks for progress or status updates.",
		Category:    CategoryDomain,
		Triggers:    []string{"status", "progress", "report", "how far along", "what's left", "overview"},
	},
	{
		Name:        OutputFormat,
		Description: "Use when the goal asks for a specific response format.",
		Category:    CategoryPresentation,
		Triggers:    []string{"markdown", "table", "json", "csv", "bullet", "bullets", "bullet points", "numbered list", "format"},
	},
}

var byName = func() map[Name]Definition {
	m := make(map[Name]Definition, len(catalog))
	for _, def := range catalog {
		m[def.Name] = def
	}
	return m
}()

// Catalog returns every known skill, always-on first.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	for i, def := range catalog {
		def.Triggers = append([]string(nil), def.Triggers...)
		out[i] = def
	}
	return out
}

// Selectable returns the closed set of names a classifier may return,
// in declaration order.
func Selectable() []Name {
	names := make([]Name, 0, len(catalog)-1)
	for _, def := range catalog {
		if def.Name != AlwaysOn {
			names = append(names, def.Name)
		}
	}
	return names
}

// Parse reports whether s names a selectable skill.
func Parse(s string) (Name, bool) {
	n := Name(s)
	if !n.Selectable() {
		return "", false
	}
	return n, true
}

// Selectable reports membership in the selectable enumeration.
func (n Name) Selectable() bool {
	if n == AlwaysOn {
		return false
	}
	_, ok := byName[n]
	return ok
}

// Known reports whether n is in the catalog at all.
func (n Name) Known() bool {
	_, ok := byName[n]
	return ok
}

// Lookup returns the catalog definition for n.
func Lookup(n Name) (Definition, bool) {
	def, ok := byName[n]
	return def, ok
}

// CategoryOf maps a name to its category. Unknown names are treated as
// domain skills.
func CategoryOf(n Name) Category {
	if def, ok := byName[n]; ok {
		return def.Category
	}
	return CategoryDomain
}

// DefaultTriggers returns a copy of the built-in trigger table.
func DefaultTriggers() map[Name][]string {
	out := make(map[Name][]string, len(catalog))
	for _, def := range catalog {
		if len(def.Triggers) == 0 {
			continue
		}
		out[def.Name] = append([]string(nil), def.Triggers...)
	}
	return out
}
