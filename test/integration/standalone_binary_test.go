package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildStandaloneBinary builds the CLI and copies it into an empty directory
// so nothing from the repository is reachable at runtime.
func buildStandaloneBinary(t *testing.T) (binary, dir string) {
	t.Helper()

	goMod, err := exec.Command("go", "env", "GOMOD").Output()
	require.NoError(t, err, "go env GOMOD")
	repoRoot := filepath.Dir(strings.TrimSpace(string(goMod)))
	require.NotEqual(t, ".", repoRoot, "go env GOMOD returned empty")

	built := filepath.Join(t.TempDir(), "appraisals")
	build := exec.Command("go", "build", "-o", built, "./cmd/appraisals")
	build.Dir = repoRoot
	build.Env = os.Environ()
	out, err := build.CombinedOutput()
	require.NoError(t, err, "go build:\n%s", out)

	data, err := os.ReadFile(built)
	require.NoError(t, err)

	dir = t.TempDir()
	binary = filepath.Join(dir, "appraisals")
	require.NoError(t, os.WriteFile(binary, data, 0o755))
	return binary, dir
}

func runIn(t *testing.T, dir, binary string, args ...string) string {
	t.Helper()
	cmd := exec.Command(binary, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "%s %s:\n%s", filepath.Base(binary), strings.Join(args, " "), out)
	return string(out)
}

func TestStandaloneBinaryRunsOutsideRepo(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("standalone binary copy/exec test is unix-focused")
	}
	binary, dir := buildStandaloneBinary(t)

	runIn(t, dir, binary, "version")
	assert.Contains(t, runIn(t, dir, binary, "--help"), "forms")

	// The form catalog is embedded, so the schema prints without any files on disk.
	schema := runIn(t, dir, binary, "forms", "rental", "--output", "json")
	assert.Contains(t, schema, `"propertyType"`)
	assert.Contains(t, schema, `"rental"`)
	assert.NotContains(t, schema, `"Land"`)
}
