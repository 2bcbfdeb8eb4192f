package vs

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/matzehuels/slngraph/pkg/errors"
	"github.com/matzehuels/slngraph/pkg/solution"
)

// FolderTypeGUID is the project type GUID of solution folders.
const FolderTypeGUID = "2150E333-8FDC-42A3-9474-1A3956D46DE8"

var (
	projectLineRe = regexp.MustCompile(`^Project\("\{([0-9A-Fa-f-]+)\}"\)\s*=\s*"([^"]*)"\s*,\s*"([^"]*)"\s*,\s*"\{([0-9A-Fa-f-]+)\}"`)
	nestingLineRe = regexp.MustCompile(`^\{([0-9A-Fa-f-]+)\}\s*=\s*\{([0-9A-Fa-f-]+)\}$`)
)

// Open parses a .sln or .slnx file.
func Open(path string) (*Solution, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", path)
	}
	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "solution %s does not exist", path)
		}
		return nil, errors.Wrap(errors.ErrCodeHostUnavailable, err, "open %s", path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(abs)) {
	case ".sln":
		return ParseSLN(f, abs)
	case ".slnx":
		return ParseSLNX(f, abs)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "%s is not a solution file", path)
	}
}

type slnEntry struct {
	guid   string
	name   string
	path   string
	folder bool
}

// ParseSLN reads the text solution format. path is the absolute path of
// the solution file; project paths resolve against its directory.
func ParseSLN(r io.Reader, path string) (*Solution, error) {
	var (
		entries  []slnEntry
		parentOf = map[string]string{}
		inNested bool
		lineNo   int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		switch {
		case strings.HasPrefix(line, "Project("):
			m := projectLineRe.FindStringSubmatch(line)
			if m == nil {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "%s:%d: malformed project line", path, lineNo)
			}
			e := slnEntry{guid: strings.ToUpper(m[4]), name: m[2]}
			if strings.EqualFold(m[1], FolderTypeGUID) {
				e.folder = true
			} else {
				e.path = resolve(filepath.Dir(path), m[3])
			}
			entries = append(entries, e)
		case strings.HasPrefix(line, "GlobalSection(NestedProjects)"):
			inNested = true
		case inNested && line == "EndGlobalSection":
			inNested = false
		case inNested && line != "":
			m := nestingLineRe.FindStringSubmatch(line)
			if m == nil {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "%s:%d: malformed nesting line", path, lineNo)
			}
			parentOf[strings.ToUpper(m[1])] = strings.ToUpper(m[2])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeHostUnavailable, err, "read %s", path)
	}
	return buildSLN(path, entries, parentOf)
}

func buildSLN(path string, entries []slnEntry, parentOf map[string]string) (*Solution, error) {
	nodes := make(map[string]solution.Project, len(entries))
	folders := make(map[string]*Folder)
	for _, e := range entries {
		if _, dup := nodes[e.guid]; dup {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "%s: duplicate project GUID {%s}", path, e.guid)
		}
		if e.folder {
			f := &Folder{name: e.name}
			folders[e.guid] = f
			nodes[e.guid] = f
		} else {
			nodes[e.guid] = &Project{name: e.name, path: e.path}
		}
	}

	for child, parent := range parentOf {
		if _, ok := nodes[child]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "%s: nesting refers to unknown entry {%s}", path, child)
		}
		if _, ok := folders[parent]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "%s: entry {%s} nested under unknown folder {%s}", path, child, parent)
		}
		seen := map[string]bool{child: true}
		for p, ok := parent, true; ok; p, ok = parentOf[p] {
			if seen[p] {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "%s: folder nesting cycle at {%s}", path, p)
			}
			seen[p] = true
		}
	}

	sol := &Solution{name: baseName(path), path: path}
	for _, e := range entries {
		if parent, ok := parentOf[e.guid]; ok {
			folders[parent].add(nodes[e.guid])
			continue
		}
		sol.top = append(sol.top, nodes[e.guid])
	}
	return sol, nil
}

var _ solution.Solution = (*Solution)(nil)
