package toml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localpad/localpad/internal/application"
)

func TestRepositorySaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	repo := NewRepository(path)

	want := []application.Profile{
		{
			Name:  "plants",
			Title: "Plant Care",
			Fields: []application.FieldDef{
				{Name: "species", Kind: application.KindString, Required: true},
				{Name: "watered", Kind: application.KindDate},
				{Name: "light", Kind: application.KindEnum, Enum: []string{"low", "medium", "bright"}},
			},
			SearchFields: []string{"species"},
			DefaultSort:  "watered",
			SortDesc:     true,
		},
	}

	require.NoError(t, repo.Save(want))

	got, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRepositoryLoadMissingFile(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "profiles.toml"))

	profiles, err := repo.Load()
	require.NoError(t, err)
	assert.Nil(t, profiles)
}

func TestRepositoryLoadRejectsNewerSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = 99\n"), 0o600))

	_, err := NewRepository(path).Load()
	require.ErrorContains(t, err, "unsupported profiles schema version")
}

func TestRepositoryLoadDefaultsMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	body := `
[[profiles]]
name = "notes"
title = "Notes"

[[profiles.fields]]
name = "text"
kind = "string"
required = true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	profiles, err := NewRepository(path).Load()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "notes", profiles[0].Name)
	require.Len(t, profiles[0].Fields, 1)
	assert.True(t, profiles[0].Fields[0].Required)
}

func TestRepositoryLoadRejectsUnknownFieldKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	body := `
version = 1

[[profiles]]
name = "bad"
title = "Bad"

[[profiles.fields]]
name = "x"
kind = "geojson"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	_, err := NewRepository(path).Load()
	require.ErrorContains(t, err, `unknown kind "geojson"`)
}

func TestRepositorySaveOverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	repo := NewRepository(path)

	require.NoError(t, repo.Save([]application.Profile{{Name: "one", Title: "One"}}))
	require.NoError(t, repo.Save([]application.Profile{{Name: "two", Title: "Two"}}))

	got, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "two", got[0].Name)
}
