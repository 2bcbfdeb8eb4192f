package vs

import (
	"encoding/xml"
	"io"
	"path/filepath"
	"strings"

	"github.com/matzehuels/slngraph/pkg/errors"
)

// slnxNode is any element of a .slnx document. Child elements are kept
// in document order.
type slnxNode struct {
	XMLName     xml.Name
	Name        string     `xml:"Name,attr"`
	Path        string     `xml:"Path,attr"`
	DisplayName string     `xml:"DisplayName,attr"`
	Children    []slnxNode `xml:",any"`
}

// ParseSLNX reads the XML solution format:
//
//	<Solution>
//	  <Folder Name="/src/">
//	    <Project Path="src/Web/Web.csproj" />
//	  </Folder>
//	  <Folder Name="/src/libs/" />
//	</Solution>
//
// Folder nesting follows the folder names; a folder whose parent path is
// not declared gets an implicit parent.
func ParseSLNX(r io.Reader, path string) (*Solution, error) {
	var root slnxNode
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	if root.XMLName.Local != "Solution" {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "%s: root element is <%s>, want <Solution>", path, root.XMLName.Local)
	}

	b := &slnxBuilder{
		sol:     &Solution{name: baseName(path), path: path},
		dir:     filepath.Dir(path),
		folders: map[string]*Folder{},
	}
	for _, n := range root.Children {
		switch n.XMLName.Local {
		case "Project":
			if err := b.addProject(nil, n); err != nil {
				return nil, err
			}
		case "Folder":
			if err := b.addFolder(n); err != nil {
				return nil, err
			}
		}
	}
	return b.sol, nil
}

type slnxBuilder struct {
	sol     *Solution
	dir     string
	folders map[string]*Folder
}

func (b *slnxBuilder) addFolder(n slnxNode) error {
	key := normalizeFolder(n.Name)
	if key == "/" {
		return errors.New(errors.ErrCodeInvalidFormat, "%s: folder without name", b.sol.path)
	}
	f := b.folder(key)
	for _, c := range n.Children {
		if c.XMLName.Local != "Project" {
			continue
		}
		if err := b.addProject(f, c); err != nil {
			return err
		}
	}
	return nil
}

// folder returns the folder for a normalized "/a/b/" key, creating it and
// its ancestors on first use.
func (b *slnxBuilder) folder(key string) *Folder {
	if f, ok := b.folders[key]; ok {
		return f
	}
	trimmed := strings.Trim(key, "/")
	name := trimmed[strings.LastIndex(trimmed, "/")+1:]
	f := &Folder{name: name}
	b.folders[key] = f

	parentKey := "/" + strings.TrimSuffix(trimmed[:len(trimmed)-len(name)], "/")
	if parentKey == "/" {
		b.sol.top = append(b.sol.top, f)
	} else {
		b.folder(parentKey + "/").add(f)
	}
	return f
}

func (b *slnxBuilder) addProject(parent *Folder, n slnxNode) error {
	if strings.TrimSpace(n.Path) == "" {
		return errors.New(errors.ErrCodeInvalidFormat, "%s: project without Path", b.sol.path)
	}
	path := resolve(b.dir, n.Path)
	name := n.DisplayName
	if name == "" {
		name = baseName(path)
	}
	p := &Project{name: name, path: path}
	if parent == nil {
		b.sol.top = append(b.sol.top, p)
	} else {
		parent.add(p)
	}
	return nil
}

func normalizeFolder(name string) string {
	name = strings.Trim(strings.ReplaceAll(name, `\`, "/"), "/")
	if name == "" {
		return "/"
	}
	return "/" + name + "/"
}
