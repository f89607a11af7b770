package skill

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Skill is a loaded, read-only reasoning document.
type Skill struct {
	Name     Name
	Body     string
	AlwaysOn bool
}

// Loader resolves a skill name to its body.
type Loader interface {
	Load(name Name) string
}

// Store is an immutable snapshot of skill documents. It is safe for
// concurrent use because nothing writes to it after Open returns.
type Store struct {
	skills map[Name]Skill
}

// Open reads <name>.md for every catalog entry from fsys. Missing or
// unreadable documents are skipped; Load returns "" for them.
func Open(fsys fs.FS, logger zerolog.Logger) *Store {
	log := logger.With().Str("component", "skill-store").Logger()
	s := &Store{skills: make(map[Name]Skill, len(catalog))}
	if fsys == nil {
		log.Warn().Msg("no skill filesystem configured")
		return s
	}

	for _, def := range catalog {
		path := FileName(def.Name)
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Debug().Str("skill", string(def.Name)).Msg("skill document absent")
			} else {
				log.Warn().Err(err).Str("skill", string(def.Name)).Msg("skill document unreadable")
			}
			continue
		}
		body := strings.TrimSpace(string(data))
		if body == "" {
			log.Debug().Str("skill", string(def.Name)).Msg("skill document empty")
			continue
		}
		s.skills[def.Name] = Skill{
			Name:     def.Name,
			Body:     body,
			AlwaysOn: def.Name == AlwaysOn,
		}
	}

	log.Debug().Int("loaded", len(s.skills)).Msg("skill store ready")
	return s
}

// OpenDir opens a store rooted at dir.
func OpenDir(dir string, logger zerolog.Logger) *Store {
	return Open(os.DirFS(dir), logger)
}

// FileName returns the document path for a skill within a store filesystem.
func FileName(n Name) string {
	return string(n) + ".md"
}

// Load returns the body for name, or "" when it is not available.
func (s *Store) Load(name Name) string {
	if s == nil {
		return ""
	}
	return s.skills[name].Body
}

// Get returns the loaded skill for name.
func (s *Store) Get(name Name) (Skill, bool) {
	if s == nil {
		return Skill{}, false
	}
	sk, ok := s.skills[name]
	return sk, ok
}

// Has reports whether a non-empty body is loaded for name.
func (s *Store) Has(name Name) bool {
	_, ok := s.Get(name)
	return ok
}
