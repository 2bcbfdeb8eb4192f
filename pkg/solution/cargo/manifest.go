package cargo

import (
	"github.com/BurntSushi/toml"
)

type cargoFile struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
	Workspace *struct {
		Members []string `toml:"members"`
		Exclude []string `toml:"exclude"`
	} `toml:"workspace"`
	Dependencies      map[string]any            `toml:"dependencies"`
	DevDependencies   map[string]any            `toml:"dev-dependencies"`
	BuildDependencies map[string]any            `toml:"build-dependencies"`
	Target            map[string]map[string]any `toml:"target"`
}

var depTables = map[string]bool{
	"dependencies":       true,
	"dev-dependencies":   true,
	"build-dependencies": true,
}

// dependency is a declared crate dependency.
type dependency struct {
	name    string
	version string
}

// orderedDeps returns dependency names in the order they appear in the
// file. Target-specific tables ([target.'cfg(unix)'.dependencies]) are
// included.
func orderedDeps(cf *cargoFile, md toml.MetaData) []dependency {
	var out []dependency
	for _, key := range md.Keys() {
		var table, name string
		switch {
		case len(key) == 2 && depTables[key[0]]:
			table, name = key[0], key[1]
		case len(key) == 4 && key[0] == "target" && depTables[key[2]]:
			table, name = key[2], key[3]
		default:
			continue
		}
		out = append(out, dependency{name: name, version: versionOf(lookup(cf, key, table), name)})
	}
	return out
}

func lookup(cf *cargoFile, key toml.Key, table string) map[string]any {
	if key[0] == "target" {
		if t, ok := cf.Target[key[1]]; ok {
			if m, ok := t[table].(map[string]any); ok {
				return m
			}
		}
		return nil
	}
	switch table {
	case "dependencies":
		return cf.Dependencies
	case "dev-dependencies":
		return cf.DevDependencies
	default:
		return cf.BuildDependencies
	}
}

func versionOf(table map[string]any, name string) string {
	switch v := table[name].(type) {
	case string:
		return v
	case map[string]any:
		if s, ok := v["version"].(string); ok {
			return s
		}
	}
	return ""
}
