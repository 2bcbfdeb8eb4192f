package scanner

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/slngraph/pkg/errors"
	"github.com/matzehuels/slngraph/pkg/solution"
	"github.com/matzehuels/slngraph/pkg/solution/memory"
)

func quietLogger() *log.Logger { return log.New(io.Discard) }

func names(records []ProjectRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestScan_TopLevelOnly(t *testing.T) {
	sol := memory.New("App")
	sol.AddProject("Web", "/src/Web/Web.csproj").Refs("Api", "Newtonsoft.Json")
	sol.AddProject("Api", "/src/Api/Api.csproj").Refs("Core")
	sol.AddProject("Core", "/src/Core/Core.csproj")

	res, err := New(sol, quietLogger()).Scan(context.Background(), sol)
	require.NoError(t, err)

	assert.Equal(t, []string{"Web", "Api", "Core"}, names(res.Records))
	assert.Empty(t, res.Failures)
	assert.Equal(t, "/src/Web/Web.csproj", res.Records[0].FilePath)
	assert.Equal(t, []string{"Api", "Newtonsoft.Json"}, res.Records[0].Dependencies)
	assert.NotNil(t, res.Records[2].Dependencies, "projects without references get an empty list")
	assert.Equal(t, "App", res.Solution)
	assert.NotEqual(t, uuid.Nil, res.ID)
}

func TestScan_NestedFolders(t *testing.T) {
	sol := memory.New("App")
	sol.AddProject("First", "/first.csproj")
	src := sol.AddFolder("src")
	libs := src.AddFolder("libs")
	libs.AddProject("Deep", "/deep.csproj")
	libs.AddFolder("empty")
	src.AddProject("Mid", "/mid.csproj")
	sol.AddProject("Last", "/last.csproj")

	res, err := New(sol, quietLogger()).Scan(context.Background(), sol)
	require.NoError(t, err)

	assert.Equal(t, []string{"First", "Deep", "Mid", "Last"}, names(res.Records))
	assert.Empty(t, res.Failures)
}

func TestScan_SameProjectInTwoFolders(t *testing.T) {
	sol := memory.New("App")
	sol.AddFolder("a").AddProject("Shared", "/shared.csproj")
	sol.AddFolder("b").AddProject("Shared", "/shared.csproj")

	res, err := New(sol, quietLogger()).Scan(context.Background(), sol)
	require.NoError(t, err)

	assert.Equal(t, []string{"Shared"}, names(res.Records))
	assert.Equal(t, 1, sol.Opened("/shared.csproj"))
}

func TestScan_PartialFailure(t *testing.T) {
	sol := memory.New("App")
	sol.AddProject("Good", "/good.csproj").Refs("libX")
	sol.AddProject("Broken", "/broken.csproj")
	sol.AddProject("AlsoGood", "/also.csproj")
	cause := stderrors.New("malformed project file")
	sol.Fail("/broken.csproj", cause)

	res, err := New(sol, quietLogger()).Scan(context.Background(), sol)
	require.NoError(t, err)

	assert.Equal(t, []string{"Good", "AlsoGood"}, names(res.Records))
	require.Len(t, res.Failures, 1)
	f := res.Failures[0]
	assert.Equal(t, "Broken", f.Project)
	assert.Equal(t, "/broken.csproj", f.Path)
	assert.ErrorIs(t, f, cause)
	assert.True(t, errors.Is(f, errors.ErrCodeProjectLoad))
	assert.False(t, errors.Fatal(f))
	assert.Len(t, res.Records, 2)
}

func TestScan_BrokenDocumentFailsProject(t *testing.T) {
	sol := memory.New("App")
	sol.AddProject("P", "/p.csproj").
		Types("A").
		BrokenDocument("/p/bad.cs", stderrors.New("unreadable"))

	res, err := New(sol, quietLogger()).Scan(context.Background(), sol)
	require.NoError(t, err)

	assert.Empty(t, res.Records)
	require.Len(t, res.Failures, 1)
	assert.Contains(t, res.Failures[0].Error(), "/p/bad.cs")
}

func TestScan_FolderEnumerationFailure(t *testing.T) {
	sol := memory.New("App")
	f := sol.AddFolder("broken")
	f.AddProject("Hidden", "/hidden.csproj")
	f.FailChildren(stderrors.New("access denied"))
	sol.AddProject("Visible", "/visible.csproj")

	res, err := New(sol, quietLogger()).Scan(context.Background(), sol)
	require.NoError(t, err)

	assert.Equal(t, []string{"Visible"}, names(res.Records))
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "broken", res.Failures[0].Project)
}

func TestScan_TopLevelFailureIsFatal(t *testing.T) {
	sol := memory.New("App")
	sol.FailTopLevel(stderrors.New("solution locked"))

	_, err := New(sol, quietLogger()).Scan(context.Background(), sol)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeHostUnavailable))
}

func TestScan_NoWorkspace(t *testing.T) {
	sol := memory.New("App")
	_, err := (&Scanner{Logger: quietLogger()}).Scan(context.Background(), sol)
	assert.True(t, errors.Is(err, errors.ErrCodeHostUnavailable))
}

func TestScan_DeclaredTypes(t *testing.T) {
	sol := memory.New("App")
	sol.AddProject("P", "/p.csproj").
		Types("Program", "Startup").
		Document("/p/more.cs",
			solution.Declaration{Name: "IService", Kind: solution.DeclInterface},
			solution.Declaration{Name: "Point", Kind: solution.DeclStruct},
			solution.Declaration{Name: "Color", Kind: solution.DeclEnum},
			solution.Declaration{Name: "Person", Kind: solution.DeclRecord},
		)

	res, err := New(sol, quietLogger()).Scan(context.Background(), sol)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, []string{"Program", "Startup", "Point", "Person"}, res.Records[0].DeclaredTypes)
}

func TestScan_DuplicateDependenciesKept(t *testing.T) {
	sol := memory.New("App")
	sol.AddProject("P", "/p.csproj").Refs("libX", "libX")

	res, err := New(sol, quietLogger()).Scan(context.Background(), sol)
	require.NoError(t, err)
	assert.Equal(t, []string{"libX", "libX"}, res.Records[0].Dependencies)
}

func TestScan_WorkersPreserveOrder(t *testing.T) {
	sol := memory.New("App")
	var want []string
	for i := range 40 {
		name := fmt.Sprintf("P%02d", i)
		path := "/" + name + ".csproj"
		if i%3 == 0 {
			sol.AddFolder("f"+name).AddProject(name, path)
		} else {
			sol.AddProject(name, path)
		}
		if i%7 == 0 {
			sol.Fail(path, stderrors.New("broken"))
			continue
		}
		want = append(want, name)
	}

	s := New(sol, quietLogger())
	s.Workers = 8
	res, err := s.Scan(context.Background(), sol)
	require.NoError(t, err)

	assert.Equal(t, want, names(res.Records))
	require.Len(t, res.Failures, 6)
	assert.Equal(t, "P00", res.Failures[0].Project)
	assert.Equal(t, "P35", res.Failures[5].Project)
}

func TestScan_Cancelled(t *testing.T) {
	sol := memory.New("App")
	sol.AddProject("P", "/p.csproj")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		s := New(sol, quietLogger())
		s.Workers = workers
		_, err := s.Scan(ctx, sol)
		assert.ErrorIs(t, err, context.Canceled, "workers=%d", workers)
	}
}

func TestScan_EmptySolution(t *testing.T) {
	sol := memory.New("Empty")

	res, err := New(sol, quietLogger()).Scan(context.Background(), sol)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Failures)
}
