package activity

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/briangreenhill/mapty/internal/tracker"
	"github.com/briangreenhill/mapty/internal/workout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := NewCLI(&out, &bytes.Buffer{}, discardLogger()).Run(context.Background(), args)
	return out.String(), err
}

func useTempDB(t *testing.T) {
	t.Helper()
	t.Setenv("MAPTY_STORAGE_BACKEND", "sqlite")
	t.Setenv("MAPTY_STORAGE_PATH", filepath.Join(t.TempDir(), "mapty.db"))
}

func TestCLI_AddAndList(t *testing.T) {
	useTempDB(t)

	out, err := runCLI(t, "add", "running", "--lat", "51.51", "--lng", "-0.1",
		"--distance", "5", "--duration", "25", "--cadence", "170")
	require.NoError(t, err)
	assert.Contains(t, out, "marker at (51.51, -0.1): 🏃‍♂️ Running on")
	assert.Regexp(t, `Workout \S+ added\n$`, out)

	out, err = runCLI(t, "add", "cycling", "--lat", "51.52", "--lng", "-0.2",
		"--distance", "20", "--duration", "60", "--elevation", "300")
	require.NoError(t, err)
	assert.Contains(t, out, "20.0 km/h")
	assert.NotContains(t, out, "Running on", "only the new workout is echoed")

	out, err = runCLI(t, "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Running on"))
	assert.True(t, strings.HasPrefix(lines[1], "Cycling on"))
}

func TestCLI_ListEmpty(t *testing.T) {
	useTempDB(t)

	out, err := runCLI(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "No workouts yet\n", out)
}

func TestCLI_AddInvalid(t *testing.T) {
	useTempDB(t)

	out, err := runCLI(t, "add", "running", "--lat", "1", "--lng", "2",
		"--distance", "5", "--duration", "abc", "--cadence", "170")
	require.ErrorIs(t, err, workout.ErrInvalidInput)
	assert.Contains(t, out, "error: Inputs have to be positive numbers")

	out, err = runCLI(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "No workouts yet\n", out)
}

func TestCLI_AddWithoutLocation(t *testing.T) {
	useTempDB(t)
	t.Setenv("MAPTY_MAP_LOCATE", "none")

	out, err := runCLI(t, "add", "running", "--lat", "1", "--lng", "2",
		"--distance", "5", "--duration", "25", "--cadence", "170")
	require.ErrorIs(t, err, tracker.ErrMapUnavailable)
	assert.Contains(t, out, "error: Couldn't get your current position.")
}

func TestCLI_QuotaExceeded(t *testing.T) {
	useTempDB(t)
	t.Setenv("MAPTY_STORAGE_QUOTA_BYTES", "32")

	out, err := runCLI(t, "add", "running", "--lat", "1", "--lng", "2",
		"--distance", "5", "--duration", "25", "--cadence", "170")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "was not saved")
	assert.Contains(t, out, "warn: Changes not saved.")
}

func TestCLI_Show(t *testing.T) {
	useTempDB(t)
	t.Setenv("MAPTY_IDS_SCHEME", "uuid")

	out, err := runCLI(t, "add", "running", "--lat", "51.51", "--lng", "-0.1",
		"--distance", "5", "--duration", "25", "--cadence", "170")
	require.NoError(t, err)
	fields := strings.Fields(out[strings.LastIndex(out, "Workout "):])
	require.Len(t, fields, 3)
	id := fields[1]

	out, err = runCLI(t, "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "map centered on (51.51, -0.1)")
	assert.Contains(t, out, "["+id+"]")

	_, err = runCLI(t, "show", "missing")
	assert.ErrorIs(t, err, tracker.ErrNotFound)
}

func TestCLI_Import(t *testing.T) {
	useTempDB(t)
	path := filepath.Join(t.TempDir(), "run.gpx")
	require.NoError(t, os.WriteFile(path, []byte(morningRun()), 0o644))

	out, err := runCLI(t, "import", "--gpx", path, "--type", "cycling")
	require.NoError(t, err)
	assert.Contains(t, out, "marker at (51.5, -0.12): 🚴‍♀️ Cycling on")

	_, err = runCLI(t, "import", "--gpx", path, "--type", "running")
	assert.ErrorIs(t, err, workout.ErrInvalidInput, "running needs a cadence")
}

func TestCLI_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "mapty.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("storage:\n  backend: badger\n  path: "+filepath.Join(dir, "badger")+"\n  codec: msgpack\n"), 0o644))

	_, err := runCLI(t, "--config", cfg, "add", "cycling", "--lat", "1", "--lng", "2",
		"--distance", "20", "--duration", "60", "--elevation", "300")
	require.NoError(t, err)

	out, err := runCLI(t, "--config", cfg, "list")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Cycling on"))
}

func TestCLI_AddRejectsUnrealPosition(t *testing.T) {
	useTempDB(t)
	t.Setenv("MAPTY_STORAGE_CODEC", "msgpack")

	out, err := runCLI(t, "add", "running", "--lat", "NaN", "--lng", "2",
		"--distance", "5", "--duration", "25", "--cadence", "170")
	require.ErrorIs(t, err, workout.ErrInvalidInput)
	assert.Contains(t, out, "error: Inputs have to be positive numbers")

	out, err = runCLI(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "No workouts yet\n", out)
}
