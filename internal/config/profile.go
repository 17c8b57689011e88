package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProfileFileName is looked up in the folder being collected.
const ProfileFileName = ".foldkit"

type profile struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

type profileFile struct {
	Include  []string           `yaml:"include"`
	Exclude  []string           `yaml:"exclude"`
	Default  string             `yaml:"default_profile"`
	Profiles map[string]profile `yaml:"profiles"`
}

// RuleSet is the include/exclude pattern list resolved from a profile file.
type RuleSet struct {
	Include []string
	Exclude []string
}

func readProfileFile(path string) (*profileFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &pf, nil
}

// ReadRules resolves the rules for name. The top-level lists always apply.
// When name is empty the file's default_profile is used; a name that does
// not exist falls back to the "default" profile.
func ReadRules(path, name string) (*RuleSet, error) {
	pf, err := readProfileFile(path)
	if err != nil {
		return nil, err
	}

	rules := &RuleSet{
		Include: append([]string{}, pf.Include...),
		Exclude: append([]string{}, pf.Exclude...),
	}
	if name == "" {
		name = pf.Default
	}
	if prof, ok := pf.Profiles[name]; ok {
		rules.Include = append(rules.Include, prof.Include...)
		rules.Exclude = append(rules.Exclude, prof.Exclude...)
	} else if prof, ok := pf.Profiles["default"]; ok {
		rules.Include = append(rules.Include, prof.Include...)
		rules.Exclude = append(rules.Exclude, prof.Exclude...)
	}
	return rules, nil
}

// ProfileInfo reports which profiles a file defines.
func ProfileInfo(path, name string) (hasProfiles bool, hasProfile bool, hasDefault bool, err error) {
	pf, err := readProfileFile(path)
	if err != nil {
		return false, false, false, err
	}
	if len(pf.Profiles) == 0 {
		return false, false, false, nil
	}
	_, hasProfile = pf.Profiles[name]
	_, hasDefault = pf.Profiles["default"]
	return true, hasProfile, hasDefault, nil
}

// ProfileNames lists the profiles defined in a file.
func ProfileNames(path string) ([]string, error) {
	pf, err := readProfileFile(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(pf.Profiles))
	for name := range pf.Profiles {
		names = append(names, name)
	}
	return names, nil
}

// SetDefaultProfile stores name as default_profile, keeping every other key
// of the file. The file is created when missing.
func SetDefaultProfile(path, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("profile name must not be empty")
	}

	var cfg map[string]any
	data, err := os.ReadFile(path)
	if err == nil {
		if len(strings.TrimSpace(string(data))) > 0 {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	} else if !os.IsNotExist(err) {
		return err
	}
	if cfg == nil {
		cfg = make(map[string]any)
	}
	cfg["default_profile"] = name

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	return os.WriteFile(path, out, perm)
}
