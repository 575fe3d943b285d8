package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshuapare/segalloc/heap/trace"
	"github.com/joshuapare/segalloc/internal/format"
)

// resetFlags restores every flag to its default between tests.
func resetFlags() {
	verbose = false
	quiet = false
	jsonOut = false
	logJSON = false
	useMmap = false
	maxHeap = 20 << 20
	chunk = format.ChunkSize
	runJobs = 2
	runCheckEvery = 0
	checkEvery = 0
	checkDump = ""
	checkImage = false
	genOutput = ""
	genSeed = trace.DefaultGenOptions.Seed
	genIDs = trace.DefaultGenOptions.NumIDs
	genMaxSize = trace.DefaultGenOptions.MaxSize
	genReallocPct = trace.DefaultGenOptions.ReallocPct
}

// writeTrace writes a generated trace into a temp dir and returns its path.
func writeTrace(t *testing.T, name string, opts trace.GenOptions) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := trace.Create(path, trace.Generate(opts)); err != nil {
		t.Fatalf("failed to write trace: %v", err)
	}
	return path
}

// writeText writes raw trace text into a temp dir and returns its path.
func writeText(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write trace: %v", err)
	}
	return path
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	// Drain concurrently so large outputs cannot fill the pipe.
	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		_, _ = buf.ReadFrom(r)
		close(done)
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	<-done

	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result any
	if err := jsonAPI.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}
