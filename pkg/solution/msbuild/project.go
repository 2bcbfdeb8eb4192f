package msbuild

import (
	"encoding/xml"
	"io"
	"path/filepath"
	"strings"

	"github.com/matzehuels/slngraph/pkg/solution"
)

// projectXML is the subset of an MSBuild project file the workspace reads.
type projectXML struct {
	Sdk            string          `xml:"Sdk,attr"`
	SdkElements    []sdkElement    `xml:"Sdk"`
	PropertyGroups []propertyGroup `xml:"PropertyGroup"`
	ItemGroups     []itemGroup     `xml:"ItemGroup"`
}

type sdkElement struct {
	Name string `xml:"Name,attr"`
}

type propertyGroup struct {
	EnableDefaultCompileItems string `xml:"EnableDefaultCompileItems"`
}

type itemGroup struct {
	Items []item `xml:",any"`
}

type item struct {
	XMLName     xml.Name
	Include     string `xml:"Include,attr"`
	Remove      string `xml:"Remove,attr"`
	Version     string `xml:"Version,attr"`
	VersionElem string `xml:"Version"`
}

// Definition is a parsed project file.
type Definition struct {
	Path       string
	SDKStyle   bool
	References []solution.Reference
	// DefaultCompileItems is true when sources are globbed from the
	// project directory.
	DefaultCompileItems bool
	CompileInclude      []string
	CompileRemove       []string
}

// ParseProject reads an MSBuild project file. References are returned in
// document order, duplicates included.
func ParseProject(r io.Reader, path string) (*Definition, error) {
	var px projectXML
	if err := xml.NewDecoder(r).Decode(&px); err != nil {
		return nil, err
	}

	def := &Definition{
		Path:     path,
		SDKStyle: px.Sdk != "" || len(px.SdkElements) > 0,
	}
	def.DefaultCompileItems = def.SDKStyle
	for _, pg := range px.PropertyGroups {
		if strings.EqualFold(strings.TrimSpace(pg.EnableDefaultCompileItems), "false") {
			def.DefaultCompileItems = false
		}
	}

	for _, ig := range px.ItemGroups {
		for _, it := range ig.Items {
			include := strings.TrimSpace(it.Include)
			switch it.XMLName.Local {
			case "PackageReference":
				if include == "" {
					continue // Update/Remove items modify existing references
				}
				def.References = append(def.References, solution.Reference{
					Display: include,
					Kind:    solution.RefPackage,
					Version: firstNonEmpty(it.Version, strings.TrimSpace(it.VersionElem)),
				})
			case "Reference":
				if include == "" {
					continue
				}
				name, version := parseAssemblyName(include)
				def.References = append(def.References, solution.Reference{
					Display: name,
					Kind:    solution.RefAssembly,
					Version: version,
				})
			case "ProjectReference":
				if include == "" {
					continue
				}
				def.References = append(def.References, solution.Reference{
					Display: projectRefName(include),
					Kind:    solution.RefProject,
				})
			case "FrameworkReference":
				if include == "" {
					continue
				}
				def.References = append(def.References, solution.Reference{
					Display: include,
					Kind:    solution.RefFramework,
				})
			case "Compile":
				if include != "" {
					def.CompileInclude = append(def.CompileInclude, splitItems(include)...)
				}
				if it.Remove != "" {
					def.CompileRemove = append(def.CompileRemove, splitItems(it.Remove)...)
				}
			}
		}
	}
	return def, nil
}

// parseAssemblyName splits "System.Data, Version=4.0.0.0, Culture=neutral"
// into the simple name and version.
func parseAssemblyName(include string) (name, version string) {
	parts := strings.Split(include, ",")
	name = strings.TrimSpace(parts[0])
	for _, p := range parts[1:] {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if ok && strings.EqualFold(strings.TrimSpace(k), "Version") {
			version = strings.TrimSpace(v)
		}
	}
	return name, version
}

func projectRefName(include string) string {
	p := strings.ReplaceAll(include, `\`, "/")
	base := p[strings.LastIndex(p, "/")+1:]
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func splitItems(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ";") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ReplaceAll(p, `\`, "/"))
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
