package vs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/slngraph/pkg/errors"
	"github.com/matzehuels/slngraph/pkg/solution"
)

const shopSLN = `
Microsoft Visual Studio Solution File, Format Version 12.00
# Visual Studio Version 17
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Shop.Web", "src\Shop.Web\Shop.Web.csproj", "{11111111-1111-1111-1111-111111111111}"
EndProject
Project("{2150E333-8FDC-42A3-9474-1A3956D46DE8}") = "libs", "libs", "{22222222-2222-2222-2222-222222222222}"
EndProject
Project("{9A19103F-16F7-4668-BE54-9A1E7A4F7556}") = "Shop.Core", "src\Shop.Core\Shop.Core.csproj", "{33333333-3333-3333-3333-333333333333}"
EndProject
Project("{2150E333-8FDC-42A3-9474-1A3956D46DE8}") = "inner", "inner", "{44444444-4444-4444-4444-444444444444}"
EndProject
Project("{9A19103F-16F7-4668-BE54-9A1E7A4F7556}") = "Shop.Data", "src\Shop.Data\Shop.Data.csproj", "{55555555-5555-5555-5555-555555555555}"
EndProject
Global
	GlobalSection(SolutionConfigurationPlatforms) = preSolution
		Debug|Any CPU = Debug|Any CPU
	EndGlobalSection
	GlobalSection(NestedProjects) = preSolution
		{33333333-3333-3333-3333-333333333333} = {22222222-2222-2222-2222-222222222222}
		{44444444-4444-4444-4444-444444444444} = {22222222-2222-2222-2222-222222222222}
		{55555555-5555-5555-5555-555555555555} = {44444444-4444-4444-4444-444444444444}
	EndGlobalSection
EndGlobal
`

func names(t *testing.T, nodes []solution.Project) []string {
	t.Helper()
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}

func children(t *testing.T, p solution.Project) []solution.Project {
	t.Helper()
	c, err := p.Children(context.Background())
	require.NoError(t, err)
	return c
}

func TestParseSLN(t *testing.T) {
	dir := t.TempDir()
	sol, err := ParseSLN(strings.NewReader(shopSLN), filepath.Join(dir, "Shop.sln"))
	require.NoError(t, err)

	assert.Equal(t, "Shop", sol.Name())
	top, err := sol.TopLevel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Shop.Web", "libs"}, names(t, top))

	web := top[0]
	assert.Equal(t, solution.KindProject, web.Kind())
	assert.Equal(t, filepath.Join(dir, "src", "Shop.Web", "Shop.Web.csproj"), web.FilePath())

	libs := top[1]
	assert.Equal(t, solution.KindFolder, libs.Kind())
	assert.Empty(t, libs.FilePath())
	libsChildren := children(t, libs)
	assert.Equal(t, []string{"Shop.Core", "inner"}, names(t, libsChildren))
	assert.Equal(t, []string{"Shop.Data"}, names(t, children(t, libsChildren[1])))
}

func TestParseSLNErrors(t *testing.T) {
	header := "Microsoft Visual Studio Solution File, Format Version 12.00\n"
	folder := `Project("{2150E333-8FDC-42A3-9474-1A3956D46DE8}") = "f", "f", "{AAAAAAAA-0000-0000-0000-000000000001}"` + "\nEndProject\n"
	folder2 := `Project("{2150E333-8FDC-42A3-9474-1A3956D46DE8}") = "g", "g", "{AAAAAAAA-0000-0000-0000-000000000002}"` + "\nEndProject\n"
	nested := func(lines ...string) string {
		return "Global\n\tGlobalSection(NestedProjects) = preSolution\n\t\t" +
			strings.Join(lines, "\n\t\t") + "\n\tEndGlobalSection\nEndGlobal\n"
	}

	tests := []struct {
		name  string
		input string
	}{
		{"malformed project", header + `Project("{X}") = broken` + "\n"},
		{"dangling parent", header + folder + nested("{AAAAAAAA-0000-0000-0000-000000000001} = {BBBBBBBB-0000-0000-0000-000000000009}")},
		{"unknown child", header + folder + nested("{BBBBBBBB-0000-0000-0000-000000000009} = {AAAAAAAA-0000-0000-0000-000000000001}")},
		{"cycle", header + folder + folder2 + nested(
			"{AAAAAAAA-0000-0000-0000-000000000001} = {AAAAAAAA-0000-0000-0000-000000000002}",
			"{AAAAAAAA-0000-0000-0000-000000000002} = {AAAAAAAA-0000-0000-0000-000000000001}")},
		{"duplicate guid", header + folder + folder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSLN(strings.NewReader(tt.input), "/x/Bad.sln")
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "got %v", err)
		})
	}
}

func TestParseSLNX(t *testing.T) {
	const doc = `<Solution>
  <Configurations><Platform Name="Any CPU" /></Configurations>
  <Project Path="tools\Gen\Gen.csproj" />
  <Folder Name="/src/">
    <File Path="README.md" />
    <Project Path="src/Web/Web.csproj" />
  </Folder>
  <Folder Name="/src/libs/deep/">
    <Project Path="src/Core/Core.csproj" DisplayName="Core.Lib" />
  </Folder>
</Solution>`

	dir := t.TempDir()
	sol, err := ParseSLNX(strings.NewReader(doc), filepath.Join(dir, "Shop.slnx"))
	require.NoError(t, err)

	top, err := sol.TopLevel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Gen", "src"}, names(t, top))
	assert.Equal(t, filepath.Join(dir, "tools", "Gen", "Gen.csproj"), top[0].FilePath())

	src := children(t, top[1])
	assert.Equal(t, []string{"Web", "libs"}, names(t, src))
	deep := children(t, src[1])
	assert.Equal(t, []string{"deep"}, names(t, deep))
	assert.Equal(t, []string{"Core.Lib"}, names(t, children(t, deep[0])))
}

func TestParseSLNXErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"not xml":      "<Solution",
		"wrong root":   "<Project />",
		"project path": `<Solution><Project /></Solution>`,
		"folder name":  `<Solution><Folder Name="/" /></Solution>`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSLNX(strings.NewReader(doc), "/x/Bad.slnx")
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "got %v", err)
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Shop.sln")
	require.NoError(t, os.WriteFile(path, []byte(shopSLN), 0o644))

	sol, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, sol.FilePath())

	_, err = Open(filepath.Join(dir, "missing.sln"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, nil, 0o644))
	_, err = Open(txt)
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported))
}

func TestTopLevelCancelled(t *testing.T) {
	sol, err := ParseSLN(strings.NewReader(shopSLN), "/x/Shop.sln")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sol.TopLevel(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
