package domain

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultBasePackage is the base content package most mod lists build on
const DefaultBasePackage = "Vanilla"

// ModList is a named profile: a base content package plus member mods in load order
type ModList struct {
	ProfileName string   `json:"profileName"`
	BasePackage string   `json:"basePackage"`
	Mods        []string `json:"mods"` // load order, first loads first
}

// Clone returns a copy that shares no slices with l
func (l ModList) Clone() ModList {
	out := l
	out.Mods = slices.Clone(l.Mods)
	return out
}

// Contains reports whether modID is a member of the list
func (l ModList) Contains(modID string) bool {
	return slices.Contains(l.Mods, modID)
}

// Validate checks the list's own preconditions: a name and no duplicate members
func (l ModList) Validate() error {
	if strings.TrimSpace(l.ProfileName) == "" {
		return fmt.Errorf("%w: profile name is required", ErrValidation)
	}
	seen := make(map[string]bool, len(l.Mods))
	for _, m := range l.Mods {
		if seen[m] {
			return fmt.Errorf("%w: duplicate mod %q in profile %q", ErrValidation, m, l.ProfileName)
		}
		seen[m] = true
	}
	return nil
}

// Profile is the UI-side view of a mod list
type Profile struct {
	Name        string
	BasePackage string
	EnabledMods []string
}

// ModList converts the profile to its wire form
func (p Profile) ModList() ModList {
	base := p.BasePackage
	if base == "" {
		base = DefaultBasePackage
	}
	return ModList{
		ProfileName: p.Name,
		BasePackage: base,
		Mods:        slices.Clone(p.EnabledMods),
	}
}

// ExportedProfile is the YAML-serializable format for sharing
type ExportedProfile struct {
	Name        string   `yaml:"name"`
	BasePackage string   `yaml:"base_package"`
	Mods        []string `yaml:"mods"`
}
