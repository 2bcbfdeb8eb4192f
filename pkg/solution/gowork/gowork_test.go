package gowork

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/slngraph/pkg/errors"
	"github.com/matzehuels/slngraph/pkg/solution"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func workspaceFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "go.work"), "go 1.23\n\nuse (\n\t./api\n\t./core\n\t./gone\n)\n")
	writeFile(t, filepath.Join(dir, "api", "go.mod"), `module example.com/api

go 1.23

require (
	golang.org/x/sync v0.10.0 // indirect
	example.com/core v0.0.0
	github.com/go-chi/chi/v5 v5.2.3
)
`)
	writeFile(t, filepath.Join(dir, "api", "server.go"), `package api

type Server struct{}
type Handler interface{ Serve() }
type Port int

func run() {
	type local struct{}
}
`)
	writeFile(t, filepath.Join(dir, "api", "vendor", "x", "x.go"), "package x\ntype Vendored struct{}\n")
	writeFile(t, filepath.Join(dir, "api", "testdata", "t.go"), "not go")
	writeFile(t, filepath.Join(dir, "api", "plugin", "go.mod"), "module example.com/api/plugin\n")
	writeFile(t, filepath.Join(dir, "api", "plugin", "p.go"), "package plugin\n")
	writeFile(t, filepath.Join(dir, "core", "go.mod"), "module example.com/core\n\ngo 1.23\n")
	writeFile(t, filepath.Join(dir, "core", "core.go"), "package core\n")
	return dir
}

func TestOpenWork(t *testing.T) {
	dir := workspaceFixture(t)
	sol, err := Open(filepath.Join(dir, "go.work"))
	require.NoError(t, err)

	top, err := sol.TopLevel(context.Background())
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "example.com/api", top[0].Name())
	assert.Equal(t, "example.com/core", top[1].Name())
	assert.Equal(t, "./gone", top[2].Name())
	assert.Equal(t, filepath.Join(dir, "core", "go.mod"), top[1].FilePath())

	_, err = NewWorkspace().OpenProject(context.Background(), top[2].FilePath())
	assert.Error(t, err, "module without go.mod fails to open")
}

func TestOpenProject(t *testing.T) {
	dir := workspaceFixture(t)
	comp, err := NewWorkspace().OpenProject(context.Background(), filepath.Join(dir, "api", "go.mod"))
	require.NoError(t, err)

	var refs []string
	for _, r := range comp.References() {
		refs = append(refs, r.Display)
	}
	assert.Equal(t, []string{"example.com/core", "github.com/go-chi/chi/v5", "golang.org/x/sync"}, refs)

	docs := comp.Documents()
	require.Len(t, docs, 1)
	decls, err := docs[0].Declarations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []solution.Declaration{
		{Name: "Server", Kind: solution.DeclStruct},
		{Name: "Handler", Kind: solution.DeclInterface},
		{Name: "Port", Kind: solution.DeclType},
		{Name: "local", Kind: solution.DeclStruct},
	}, decls)
}

func TestOpenGoMod(t *testing.T) {
	dir := workspaceFixture(t)
	sol, err := Open(filepath.Join(dir, "core", "go.mod"))
	require.NoError(t, err)
	assert.Equal(t, "example.com/core", sol.Name())
	top, _ := sol.TopLevel(context.Background())
	assert.Len(t, top, 1)
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(filepath.Join(dir, "go.work"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))

	writeFile(t, filepath.Join(dir, "go.mod"), "go 1.23\n")
	_, err = Open(filepath.Join(dir, "go.mod"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))

	writeFile(t, filepath.Join(dir, "other.txt"), "")
	_, err = Open(filepath.Join(dir, "other.txt"))
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported))
}

func TestBrokenGoFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "go.mod"), "module m\n")
	writeFile(t, filepath.Join(dir, "bad.go"), "package m\nfunc {")

	comp, err := NewWorkspace().OpenProject(context.Background(), filepath.Join(dir, "go.mod"))
	require.NoError(t, err)
	require.Len(t, comp.Documents(), 1)
	_, err = comp.Documents()[0].Declarations(context.Background())
	assert.Error(t, err)
}
