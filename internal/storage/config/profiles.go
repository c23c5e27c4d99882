package config

import (
	"fmt"
	"os"
	"path/filepath"

	"barobaro/internal/domain"

	"gopkg.in/yaml.v3"
)

// ExportProfile encodes a mod list in the portable YAML format
func ExportProfile(list domain.ModList) ([]byte, error) {
	exported := domain.ExportedProfile{
		Name:        list.ProfileName,
		BasePackage: list.BasePackage,
		Mods:        list.Mods,
	}

	data, err := yaml.Marshal(&exported)
	if err != nil {
		return nil, fmt.Errorf("marshaling exported profile: %w", err)
	}

	return data, nil
}

// ImportProfile decodes a portable profile and validates it
func ImportProfile(data []byte) (domain.ModList, error) {
	var exported domain.ExportedProfile
	if err := yaml.Unmarshal(data, &exported); err != nil {
		return domain.ModList{}, fmt.Errorf("parsing exported profile: %w", err)
	}

	list := domain.Profile{
		Name:        exported.Name,
		BasePackage: exported.BasePackage,
		EnabledMods: exported.Mods,
	}.ModList()
	if err := list.Validate(); err != nil {
		return domain.ModList{}, err
	}
	return list, nil
}

// WriteProfileFile exports list to path, creating parent directories
func WriteProfileFile(path string, list domain.ModList) error {
	data, err := ExportProfile(list)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating profile dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}
	return nil
}

// ReadProfileFile imports a profile from a validated YAML path
func ReadProfileFile(path string) (domain.ModList, error) {
	clean, err := ParseYAMLPath(path)
	if err != nil {
		return domain.ModList{}, err
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		return domain.ModList{}, fmt.Errorf("reading profile: %w", err)
	}
	return ImportProfile(data)
}
