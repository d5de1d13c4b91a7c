package main

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/weiihann/bencher/workload"
)

// profile is a decoded benchmark profile. Top-level keys name persistent
// flags; tables are named after workload commands and hold their flags.
// Keys use the long flag name with '-' replaced by '_'.
type profile map[string]any

// globalKeys lists the persistent flags a profile may set.
var globalKeys = []string{"seed", "json", "detail", "gc-percent", "log-level"}

func loadProfile(path string) (profile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("profile path is empty")
	}
	if filepath.Ext(path) != ".toml" {
		return nil, fmt.Errorf("profile must be a .toml file: %s", path)
	}

	var p profile
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	return p, nil
}

// validate checks every key of the profile against the flags of root and
// its workload commands, not only the command being run.
func (p profile) validate(root *cobra.Command) error {
	kinds := workload.Kinds()

	for _, key := range slices.Sorted(maps.Keys(p)) {
		section, ok := p[key].(map[string]any)
		if !ok {
			if !slices.Contains(globalKeys, flagName(key)) {
				return fmt.Errorf("unknown key %q in profile", key)
			}

			continue
		}

		if !slices.Contains(kinds, workload.Kind(key)) {
			return fmt.Errorf("unknown section [%s] in profile", key)
		}

		sub, _, err := root.Find([]string{key})
		if err != nil || sub == root {
			return fmt.Errorf("unknown section [%s] in profile", key)
		}

		flags := sub.LocalNonPersistentFlags()
		for _, name := range slices.Sorted(maps.Keys(section)) {
			if flags.Lookup(flagName(name)) == nil {
				return fmt.Errorf("unknown key %q in profile", key+"."+name)
			}
		}
	}

	return nil
}

// apply sets the flags of cmd named by the profile. Flags given on the
// command line keep their value.
func (p profile) apply(cmd *cobra.Command) error {
	if err := p.validate(cmd.Root()); err != nil {
		return err
	}

	global := make(map[string]any)

	for key, value := range p {
		if _, ok := value.(map[string]any); !ok {
			global[key] = value
		}
	}

	if err := applyFlags(cmd.Root().PersistentFlags(), "", global); err != nil {
		return err
	}

	section, _ := p[cmd.Name()].(map[string]any)

	return applyFlags(cmd.LocalNonPersistentFlags(), cmd.Name(), section)
}

func applyFlags(flags *pflag.FlagSet, section string, values map[string]any) error {
	for _, key := range slices.Sorted(maps.Keys(values)) {
		qualified := key
		if section != "" {
			qualified = section + "." + key
		}

		f := flags.Lookup(flagName(key))
		if f == nil {
			return fmt.Errorf("unknown key %q in profile", qualified)
		}
		if f.Changed {
			continue
		}

		raw, err := flagValue(values[key])
		if err != nil {
			return fmt.Errorf("profile %s: %w", qualified, err)
		}

		if err := flags.Set(f.Name, raw); err != nil {
			return fmt.Errorf("profile %s: %w", qualified, err)
		}
	}

	return nil
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func flagValue(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("unsupported value %v (%T)", v, v)
	}
}
