package toml

import (
	"fmt"

	"github.com/localpad/localpad/internal/application"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int             `toml:"version"`
	Profiles []profileSchema `toml:"profiles"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported profiles schema version %d (current %d)", s.Version, currentSchemaVersion)
	}
	return nil
}

type profileSchema struct {
	Name         string        `toml:"name"`
	Title        string        `toml:"title"`
	Fields       []fieldSchema `toml:"fields"`
	SearchFields []string      `toml:"search_fields,omitempty"`
	DefaultSort  string        `toml:"default_sort,omitempty"`
	SortDesc     bool          `toml:"sort_desc,omitempty"`
}

type fieldSchema struct {
	Name     string   `toml:"name"`
	Kind     string   `toml:"kind"`
	Required bool     `toml:"required,omitempty"`
	Enum     []string `toml:"enum,omitempty"`
}

func toSchema(profile application.Profile) profileSchema {
	fields := make([]fieldSchema, 0, len(profile.Fields))
	for _, def := range profile.Fields {
		fields = append(fields, fieldSchema{
			Name:     def.Name,
			Kind:     string(def.Kind),
			Required: def.Required,
			Enum:     def.Enum,
		})
	}

	return profileSchema{
		Name:         profile.Name,
		Title:        profile.Title,
		Fields:       fields,
		SearchFields: profile.SearchFields,
		DefaultSort:  profile.DefaultSort,
		SortDesc:     profile.SortDesc,
	}
}

func fromSchema(entry profileSchema) (application.Profile, error) {
	fields := make([]application.FieldDef, 0, len(entry.Fields))
	for _, f := range entry.Fields {
		kind := application.FieldKind(f.Kind)
		if !kind.Valid() {
			return application.Profile{}, fmt.Errorf("profile %q: field %q has unknown kind %q", entry.Name, f.Name, f.Kind)
		}
		fields = append(fields, application.FieldDef{
			Name:     f.Name,
			Kind:     kind,
			Required: f.Required,
			Enum:     f.Enum,
		})
	}

	return application.Profile{
		Name:         entry.Name,
		Title:        entry.Title,
		Fields:       fields,
		SearchFields: entry.SearchFields,
		DefaultSort:  entry.DefaultSort,
		SortDesc:     entry.SortDesc,
	}, nil
}
