package application

import (
	"fmt"
	"strings"

	"github.com/localpad/localpad/internal/domain"
)

type FieldKind string

const (
	KindString FieldKind = "string"
	KindNumber FieldKind = "number"
	KindBool   FieldKind = "bool"
	KindDate   FieldKind = "date"
	KindEnum   FieldKind = "enum"
)

func (k FieldKind) Valid() bool {
	switch k {
	case KindString, KindNumber, KindBool, KindDate, KindEnum:
		return true
	default:
		return false
	}
}

type FieldDef struct {
	Name     string
	Kind     FieldKind
	Required bool
	Enum     []string
}

// Profile describes one pad: its field schema, which fields free-text
// search runs over, and where its collection lives in the key-value store.
type Profile struct {
	Name         string
	Title        string
	Fields       []FieldDef
	SearchFields []string
	DefaultSort  string
	SortDesc     bool
}

func (p Profile) StorageKey() string {
	return "pads/" + p.Name + "/records"
}

func (p Profile) fieldDef(name string) (FieldDef, bool) {
	for _, def := range p.Fields {
		if def.Name == name {
			return def, true
		}
	}
	return FieldDef{}, false
}

// Validate checks caller-supplied fields against the profile schema before
// they reach the store: required fields present, no unknown fields, scalar
// values of the declared kind. Failures wrap domain.ErrValidation.
func (p Profile) Validate(fields domain.Fields) error {
	for _, def := range p.Fields {
		value, ok := fields[def.Name]
		if !ok {
			if def.Required {
				return fmt.Errorf("%w: missing required field %q", domain.ErrValidation, def.Name)
			}
			continue
		}
		if err := checkFieldValue(def, value); err != nil {
			return err
		}
	}

	for name := range fields {
		if _, ok := p.fieldDef(name); !ok {
			return fmt.Errorf("%w: unknown field %q", domain.ErrValidation, name)
		}
	}

	return nil
}

// ValidatePartial checks only the supplied fields, for updates that merge
// into an existing record.
func (p Profile) ValidatePartial(fields domain.Fields) error {
	for name, value := range fields {
		def, ok := p.fieldDef(name)
		if !ok {
			return fmt.Errorf("%w: unknown field %q", domain.ErrValidation, name)
		}
		if err := checkFieldValue(def, value); err != nil {
			return err
		}
	}
	return nil
}

func checkFieldValue(def FieldDef, value any) error {
	switch def.Kind {
	case KindString:
		if _, ok := value.(string); !ok {
			return kindError(def, value)
		}
	case KindNumber:
		switch value.(type) {
		case float64, float32, int, int64:
		default:
			return kindError(def, value)
		}
	case KindBool:
		if _, ok := value.(bool); !ok {
			return kindError(def, value)
		}
	case KindDate:
		text, ok := value.(string)
		if !ok {
			return kindError(def, value)
		}
		if _, valid := domain.ParseInstant(text); !valid {
			return fmt.Errorf("%w: field %q: %q is not an ISO-8601 date", domain.ErrValidation, def.Name, text)
		}
	case KindEnum:
		text, ok := value.(string)
		if !ok {
			return kindError(def, value)
		}
		for _, allowed := range def.Enum {
			if text == allowed {
				return nil
			}
		}
		return fmt.Errorf("%w: field %q: %q not in [%s]", domain.ErrValidation, def.Name, text, strings.Join(def.Enum, ", "))
	default:
		return fmt.Errorf("%w: field %q has unsupported kind %q", domain.ErrValidation, def.Name, def.Kind)
	}

	return nil
}

func kindError(def FieldDef, value any) error {
	return fmt.Errorf("%w: field %q: %T is not a %s", domain.ErrValidation, def.Name, value, def.Kind)
}

// FindProfile looks a profile up by name.
func FindProfile(profiles []Profile, name string) (Profile, bool) {
	for _, p := range profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// BuiltinProfiles returns the pads that ship with the CLI.
func BuiltinProfiles() []Profile {
	return []Profile{
		{
			Name:  "todo",
			Title: "To-Do",
			Fields: []FieldDef{
				{Name: "title", Kind: KindString, Required: true},
				{Name: "done", Kind: KindBool},
				{Name: "priority", Kind: KindEnum, Enum: []string{"low", "medium", "high"}},
				{Name: "due", Kind: KindDate},
			},
			SearchFields: []string{"title"},
			DefaultSort:  "due",
		},
		{
			Name:  "books",
			Title: "Book Library",
			Fields: []FieldDef{
				{Name: "title", Kind: KindString, Required: true},
				{Name: "author", Kind: KindString},
				{Name: "status", Kind: KindEnum, Enum: []string{"unread", "reading", "finished"}},
				{Name: "rating", Kind: KindNumber},
			},
			SearchFields: []string{"title", "author"},
			DefaultSort:  "title",
		},
		{
			Name:  "expenses",
			Title: "Expense Tracker",
			Fields: []FieldDef{
				{Name: "description", Kind: KindString, Required: true},
				{Name: "amount", Kind: KindNumber, Required: true},
				{Name: "category", Kind: KindEnum, Enum: []string{"food", "transport", "housing", "leisure", "other"}},
				{Name: "date", Kind: KindDate},
			},
			SearchFields: []string{"description"},
			DefaultSort:  "date",
			SortDesc:     true,
		},
		{
			Name:  "habits",
			Title: "Habit Tracker",
			Fields: []FieldDef{
				{Name: "name", Kind: KindString, Required: true},
				{Name: "streak", Kind: KindNumber},
				{Name: "last_done", Kind: KindDate},
			},
			SearchFields: []string{"name"},
			DefaultSort:  "streak",
			SortDesc:     true,
		},
		{
			Name:  "recipes",
			Title: "Recipe Saver",
			Fields: []FieldDef{
				{Name: "name", Kind: KindString, Required: true},
				{Name: "cuisine", Kind: KindString},
				{Name: "minutes", Kind: KindNumber},
				{Name: "notes", Kind: KindString},
			},
			SearchFields: []string{"name", "cuisine", "notes"},
			DefaultSort:  "name",
		},
		{
			Name:  "facts",
			Title: "Saved Facts",
			Fields: []FieldDef{
				{Name: "text", Kind: KindString, Required: true},
				{Name: "source", Kind: KindString},
			},
			SearchFields: []string{"text"},
		},
		{
			Name:  "chat",
			Title: "Chat",
			Fields: []FieldDef{
				{Name: "text", Kind: KindString, Required: true},
				{Name: "conversation", Kind: KindString},
				{Name: "status", Kind: KindEnum, Enum: []string{"pending", "sent", "discarded"}},
			},
			SearchFields: []string{"text"},
		},
	}
}
