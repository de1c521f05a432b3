package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/permissions-helper/pkg/permissions"
)

const testDevice = `
device:
  os_version: "17.2"
  states:
    camera: authorized
    photo_library: restricted
  prompts:
    microphone: authorized
    location: authorized_when_in_use
`

func writeDevice(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "permhelper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// runCLI runs the CLI without colors against the given device file.
func runCLI(t *testing.T, device string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--no-color", "--quiet", "--config", device}, args...)
	err := run(full, &stdout, &stderr)
	return stdout.String(), err
}

func fields(line string) []string {
	return strings.Fields(line)
}

func TestHelpAndVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(nil, &out, &out))
	for _, name := range []string{"status", "has", "request", "settings", "catalog", "watch"} {
		assert.Contains(t, out.String(), name)
	}

	out.Reset()
	require.NoError(t, run([]string{"--version"}, &out, &out))
	assert.Contains(t, out.String(), "permhelper version")

	out.Reset()
	require.NoError(t, run([]string{"request", "--help"}, &out, &out))
	assert.Contains(t, out.String(), "--timeout")
}

func TestUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"revoke"}, &out, &out)
	assert.EqualError(t, err, "unknown command: revoke")
}

func TestStatusCommand(t *testing.T) {
	device := writeDevice(t, testDevice)

	out, err := runCLI(t, device, "status", "CAMERA", "PHOTO_LIBRARY", "RECORD_AUDIO", "READ_SMS", "READ_EXTERNAL_STORAGE")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"CAMERA", "granted"}, fields(lines[0]))
	assert.Equal(t, []string{"PHOTO_LIBRARY", "restricted"}, fields(lines[1]))
	assert.Equal(t, []string{"RECORD_AUDIO", "undetermined"}, fields(lines[2]))
	assert.Equal(t, []string{"READ_SMS", "denied"}, fields(lines[3]))
	assert.Equal(t, []string{"READ_EXTERNAL_STORAGE", "granted"}, fields(lines[4]))

	out, err = runCLI(t, device, "status", "--all")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 15)
}

func TestStatusErrors(t *testing.T) {
	device := writeDevice(t, testDevice)

	_, err := runCLI(t, device, "status", "BOGUS_PERMISSION")
	assert.ErrorIs(t, err, permissions.ErrUnknownPermission)
	assert.EqualError(t, err, "'BOGUS_PERMISSION' is not a recognized permission string.")

	_, err = runCLI(t, device, "status")
	assert.Error(t, err)

	_, err = runCLI(t, device, "status", "--bogus-flag")
	assert.Error(t, err)
}

func TestMissingDeviceFileIsEmptyDevice(t *testing.T) {
	out, err := runCLI(t, filepath.Join(t.TempDir(), "absent.yaml"), "status", "CAMERA")
	require.NoError(t, err)
	assert.Equal(t, []string{"CAMERA", "undetermined"}, fields(out))
}

func TestHasCommand(t *testing.T) {
	device := writeDevice(t, testDevice)

	out, err := runCLI(t, device, "has", "CAMERA", "WRITE_EXTERNAL_STORAGE")
	require.NoError(t, err)
	assert.Contains(t, out, "true")
	assert.NotContains(t, out, "false")

	out, err = runCLI(t, device, "has", "CAMERA", "VIBRATE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VIBRATE")
	assert.Contains(t, out, "false")
}

func TestRequestCommand(t *testing.T) {
	device := writeDevice(t, testDevice)

	out, err := runCLI(t, device, "request", "--timeout", "5s", "RECORD_AUDIO", "ACCESS_FINE_LOCATION", "CAMERA", "READ_CONTACTS")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"RECORD_AUDIO: granted",
		"ACCESS_FINE_LOCATION: granted",
		"CAMERA: granted",
		"READ_CONTACTS: denied",
	}, "\n")+"\n", out)
}

func TestRequestUnansweredLocationTimesOut(t *testing.T) {
	device := writeDevice(t, "device:\n  states:\n    location: not_determined\n")

	_, err := runCLI(t, device, "request", "-t", "20ms", "ALWAYS_LOCATION")
	assert.ErrorIs(t, err, permissions.ErrTimeout)
}

func TestSettingsCommand(t *testing.T) {
	device := writeDevice(t, testDevice)

	out, err := runCLI(t, device, "settings")
	require.NoError(t, err)
	assert.Equal(t, "opened\n", out)

	out, err = runCLI(t, device, "--os-version", "9.3", "settings")
	require.NoError(t, err)
	assert.Equal(t, "unavailable\n", out)
}

func TestCatalogCommand(t *testing.T) {
	device := writeDevice(t, testDevice)

	out, err := runCLI(t, device, "--os-version", "8.4", "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "Platform: iOS 8.4")
	assert.Contains(t, out, "Settings: requires 10.0")

	rows := map[string]string{}
	for _, line := range strings.Split(out, "\n") {
		if f := fields(line); len(f) > 0 {
			rows[f[0]] = line
		}
	}
	assert.Contains(t, rows["READ_CONTACTS"], "unsupported")
	assert.Contains(t, rows["READ_CONTACTS"], "requires 9.0")
	assert.Contains(t, rows["READ_CONTACTS"], "synonym of WRITE_CONTACTS")
	assert.Contains(t, rows["ACCESS_COARSE_LOCATION"], "reported as WHEN_IN_USE_LOCATION")
	assert.Contains(t, rows["CAMERA"], "callback")
	assert.Contains(t, rows["ALWAYS_LOCATION"], "delegate")

	_, err = runCLI(t, device, "--os-version", "eight", "catalog")
	assert.Error(t, err)
}

func TestCatalogFlag(t *testing.T) {
	device := writeDevice(t, "device:\n  states:\n    bluetooth: authorized\n")
	catalog := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(catalog, []byte(`
platform: testos
capabilities:
  bluetooth: {delivery: callback, translation: grant}
permissions:
  - {name: VIBRATE, tier: native, capability: bluetooth}
  - {name: CAMERA, tier: unsupported}
`), 0o644))

	out, err := runCLI(t, device, "--catalog", catalog, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "Platform: testos latest")
	rows := map[string][]string{}
	for _, line := range strings.Split(out, "\n") {
		if f := fields(line); len(f) > 0 {
			rows[f[0]] = f
		}
	}
	assert.Equal(t, []string{"VIBRATE", "native", "bluetooth", "callback", "-"}, rows["VIBRATE"])
	assert.Equal(t, []string{"CAMERA", "unsupported", "-", "-", "-"}, rows["CAMERA"])
	assert.NotContains(t, rows, "READ_SMS")

	out, err = runCLI(t, device, "--catalog", catalog, "status", "VIBRATE")
	require.NoError(t, err)
	assert.Equal(t, []string{"VIBRATE", "granted"}, fields(out))

	// bluetooth is not an iOS capability.
	_, err = runCLI(t, device, "status", "VIBRATE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown iOS capability "bluetooth"`)

	_, err = runCLI(t, device, "--catalog", filepath.Join(t.TempDir(), "absent.yaml"), "catalog")
	assert.Error(t, err)

	broken := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("capabilities:\n  camera: {delivery: teleport}\n"), 0o644))
	_, err = runCLI(t, device, "--catalog", broken, "catalog")
	assert.ErrorIs(t, err, permissions.ErrInvalidCatalog)
}

func TestAndroidPlatform(t *testing.T) {
	device := writeDevice(t, `
device:
  platform: Android
  os_version: "13"
  states:
    read_sms: authorized
    camera: denied
  prompts:
    camera: authorized
`)
	out, err := runCLI(t, device, "status", "READ_SMS", "PHOTO_LIBRARY", "ALWAYS_LOCATION")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"READ_SMS", "granted"}, fields(lines[0]))
	assert.Equal(t, []string{"PHOTO_LIBRARY", "denied"}, fields(lines[1]))
	assert.Equal(t, []string{"ALWAYS_LOCATION", "undetermined"}, fields(lines[2]))

	// A denied Android permission is asked for again.
	out, err = runCLI(t, device, "request", "CAMERA")
	require.NoError(t, err)
	assert.Equal(t, "CAMERA: granted\n", out)

	out, err = runCLI(t, device, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "Platform: Android 13")
	assert.Contains(t, out, "reported as ACCESS_FINE_LOCATION")

	// The --platform flag overrides the device file.
	_, err = runCLI(t, device, "--platform", "iOS", "status", "READ_SMS")
	assert.Error(t, err, "read_sms is not an iOS capability")

	_, err = runCLI(t, device, "--platform", "webos", "status", "CAMERA")
	assert.Error(t, err)
}

// lockedBuffer is written by the watch goroutine and read by the test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchCompletesPendingLocationRequest(t *testing.T) {
	device := writeDevice(t, "device:\n  states:\n    location: not_determined\n")
	var out lockedBuffer
	var discard bytes.Buffer
	env, err := newEnv(globalOptions{configPath: device, quiet: true}, &out, &discard)
	require.NoError(t, err)
	defer env.Close()

	// Nothing answers the prompt until the device file changes.
	results := make(chan permissions.Status, 1)
	env.Service.RequestPermission("WHEN_IN_USE_LOCATION", func(s permissions.Status, err error) {
		results <- s
	})
	require.Equal(t, 1, env.Service.Pending())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, env, []string{"WHEN_IN_USE_LOCATION"}) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "initial:")
	}, time.Second, 5*time.Millisecond)

	var status permissions.Status
	require.Eventually(t, func() bool {
		_ = os.WriteFile(device, []byte("device:\n  states:\n    location: authorized_when_in_use\n"), 0o644)
		select {
		case status = <-results:
			return true
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, permissions.StatusGranted, status)
	assert.Zero(t, env.Service.Pending())

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "location authorization changed: authorized_when_in_use")
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop")
	}
}
