package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// execute runs the CLI in process and returns what it wrote.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestRunExpression(t *testing.T) {
	out, _, err := execute(t, "", "run", "-e", "1 + 2")
	require.NoError(t, err)
	require.Equal(t, "3\n", out)
}

func TestRunStdin(t *testing.T) {
	out, _, err := execute(t, "'a' + 'b'", "run")
	require.NoError(t, err)
	require.Equal(t, "ab\n", out)

	// The root command runs piped input too.
	out, _, err = execute(t, "1 > 5 ? 'yes' 'no'")
	require.NoError(t, err)
	require.Equal(t, "no\n", out)
}

func TestRunStats(t *testing.T) {
	_, errOut, err := execute(t, "", "run", "--stats", "-e", "1 + 2")
	require.NoError(t, err)
	require.Contains(t, errOut, "7 steps")
}

func TestRunFilesBorrow(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.wp", "↓shapes\narea(4)")
	shapes := writeFile(t, dir, "shapes.wp", "↑ƒ area(side•#) side · side")
	out, _, err := execute(t, "", "run", main, shapes)
	require.NoError(t, err)
	require.Equal(t, "16\n", out)
}

func TestRunRefusesHardConflicts(t *testing.T) {
	_, errOut, err := execute(t, "", "run", "-e", "[1 2 3")
	require.Error(t, err)
	require.Contains(t, errOut, "UnclosedDelimiter")
}

func TestRunException(t *testing.T) {
	_, _, err := execute(t, "", "run", "--steps", "3", "-e", "1 + 2 + 3")
	require.Error(t, err)
	require.Contains(t, err.Error(), "StepLimit")
}

func TestRunKeys(t *testing.T) {
	out, _, err := execute(t, "", "run", "--keys", "a,b", "-e", "clicks: 0 … ∆ Key() … clicks + 1\nclicks")
	require.NoError(t, err)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.wp", "1 + 2")
	bad := writeFile(t, dir, "bad.wp", "[1 2 3")
	out, _, err := execute(t, "", "check", good, bad)
	require.Error(t, err)
	require.Contains(t, out, "bad.wp:1:1: hard UnclosedDelimiter")
	require.NotContains(t, out, "good.wp")
	require.Contains(t, err.Error(), "bad.wp: 1 hard conflict")

	_, _, err = execute(t, "", "check", good)
	require.NoError(t, err)
}

func TestTokens(t *testing.T) {
	out, _, err := execute(t, "1 + 2", "tokens")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	require.Contains(t, lines[1], `" "`)
	require.Contains(t, lines[1], `"+"`)
}

func TestFmt(t *testing.T) {
	out, _, err := execute(t, "1 * 2  \n", "fmt")
	require.NoError(t, err)
	require.Equal(t, "1 × 2\n", out)

	dir := t.TempDir()
	path := writeFile(t, dir, "a.wp", "x: 1 -> ''\nx")
	out, _, err = execute(t, "", "fmt", "-l", path)
	require.NoError(t, err)
	require.Equal(t, path+"\n", out)

	_, _, err = execute(t, "", "fmt", "-w", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "x: 1 → ''\nx\n", string(data))
}

func TestProjectCommands(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "projects.bolt")
	src := writeFile(t, dir, "main.wp", "1")

	out, _, err := execute(t, "", "--store", "bolt", "--db", db, "project", "save", "--name", "demo", src)
	require.NoError(t, err)
	id := strings.TrimSpace(out)

	writeFile(t, dir, "main.wp", "2")
	_, _, err = execute(t, "", "--store", "bolt", "--db", db, "project", "save", "--id", id, src)
	require.NoError(t, err)

	out, _, err = execute(t, "", "--store", "bolt", "--db", db, "project", "list")
	require.NoError(t, err)
	require.Contains(t, out, id)
	require.Contains(t, out, "demo")

	out, _, err = execute(t, "", "--store", "bolt", "--db", db, "project", "history", id, "main")
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)
	require.True(t, strings.HasPrefix(out, "v2"))

	outDir := filepath.Join(dir, "out")
	_, _, err = execute(t, "", "--store", "bolt", "--db", db, "project", "load", "-d", outDir, id)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(outDir, "main.wp"))
	require.NoError(t, err)
	require.Equal(t, "2", string(data))
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "wordplay.yaml", "limits:\n  steps: 3\nlog:\n  level: error\n")
	_, _, err := execute(t, "", "--config", cfg, "run", "-e", "1 + 2 + 3")
	require.Error(t, err)

	// Flags override the file.
	out, _, err := execute(t, "", "--config", cfg, "--steps", "100", "run", "-e", "1 + 2 + 3")
	require.NoError(t, err)
	require.Equal(t, "6\n", out)

	_, _, err = execute(t, "", "--config", filepath.Join(dir, "missing.yaml"), "run", "-e", "1")
	require.Error(t, err)

	bad := writeFile(t, dir, "bad.yaml", "log:\n  level: loud\n")
	_, _, err = execute(t, "", "--config", bad, "run", "-e", "1")
	require.Error(t, err)
}

func TestREPLKeepsDefinitions(t *testing.T) {
	out, _, err := execute(t, "x: 2\nx · 3\n", "repl")
	require.NoError(t, err)
	require.Contains(t, out, "6\n")
}

func TestSourceName(t *testing.T) {
	require.Equal(t, "shapes", sourceName("/tmp/lib/shapes.wp"))
	require.Equal(t, "main", sourceName("main"))
}
