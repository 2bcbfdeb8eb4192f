package cli

import (
	"io"
	"os"
	"strings"
	"testing"
)

// captureStdout returns what fn prints to stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestPrintSuccess(t *testing.T) {
	out := captureStdout(t, func() { printSuccess("Rendered %s", "graph.dot") })

	if !strings.Contains(out, iconSuccess) {
		t.Errorf("output %q missing success icon", out)
	}
	if !strings.HasSuffix(out, " Rendered graph.dot\n") {
		t.Errorf("output %q missing message", out)
	}
}
