package permissions

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupAdvisories(t *testing.T) {
	tests := []struct {
		name Name
		want []AdvisoryKind
	}{
		{Camera, nil},
		{ReadContacts, []AdvisoryKind{AdviceSynonyms}},
		{WriteContacts, []AdvisoryKind{AdviceSynonyms}},
		{AccessCoarseLocation, []AdvisoryKind{AdviceMergedSupport}},
		{AccessFineLocation, []AdvisoryKind{AdviceMergedSupport}},
		{ReadExternalStorage, []AdvisoryKind{AdviceUnneeded}},
		{Vibrate, []AdvisoryKind{AdviceUnsupported}},
	}
	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			svc, platform, diag := newTestService(t)
			platform.setState(CapabilityCamera, NativeAuthorized)
			platform.setState(CapabilityContacts, NativeAuthorized)
			platform.setState(CapabilityLocationWhenInUse, NativeAuthorizedAlways)

			_, err := svc.GetPermissionStatus(string(tt.name))
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, diag.kinds())
			} else {
				assert.Equal(t, tt.want, diag.kinds())
			}
		})
	}
}

func TestAdvisoriesNeverAlterStatus(t *testing.T) {
	catalog, err := NewCatalog("17.2")
	require.NoError(t, err)

	quiet := newFakePlatform()
	loud := newFakePlatform()
	for _, p := range []*fakePlatform{quiet, loud} {
		p.setState(CapabilityContacts, NativeRestricted)
		p.setState(CapabilityLocationAlways, NativeAuthorizedWhenInUse)
	}
	a := NewService(catalog, quiet, WithDiagnostics(nil))
	defer a.Close()
	b := NewService(catalog, loud, WithDiagnostics(&recordingDiagnostics{}))
	defer b.Close()

	for _, name := range vocabulary {
		sa, err := a.GetPermissionStatus(string(name))
		require.NoError(t, err)
		sb, err := b.GetPermissionStatus(string(name))
		require.NoError(t, err)
		assert.Equal(t, sa, sb, name)
	}
}

func TestVersionGatedAdvisory(t *testing.T) {
	catalog, err := NewCatalog("8.4")
	require.NoError(t, err)
	platform := newFakePlatform()
	platform.setState(CapabilityContacts, NativeAuthorized)
	diag := &recordingDiagnostics{}
	svc := NewService(catalog, platform, WithDiagnostics(diag))
	defer svc.Close()

	status, err := svc.GetPermissionStatus("READ_CONTACTS")
	require.NoError(t, err)
	assert.Equal(t, StatusDenied, status, "gated capability reports denied")

	var got capture
	svc.RequestPermission("WRITE_CONTACTS", got.callback)
	require.Equal(t, 1, got.count())
	assert.Equal(t, StatusDenied, got.statuses[0])
	assert.Zero(t, platform.osCalls())

	var versionAdvice *Advisory
	for i, a := range diag.advisories {
		if a.Kind == AdviceUnsupportedVersion {
			versionAdvice = &diag.advisories[i]
			break
		}
	}
	require.NotNil(t, versionAdvice)
	assert.Equal(t, "8.4", versionAdvice.OSVersion)
	assert.Equal(t, "9.0", versionAdvice.RequiredVersion)
	assert.Equal(t, "'READ_CONTACTS' is unsupported on iOS 8.4. Required: iOS 9.0 or higher.", versionAdvice.Message())
	assert.NotContains(t, diag.kinds(), AdviceUnsupported)
}

func TestAdvisoryMessages(t *testing.T) {
	tests := []struct {
		a    Advisory
		want string
	}{
		{
			Advisory{Kind: AdviceSynonyms, Name: ReadContacts, Related: []Name{ReadContacts, WriteContacts}, Platform: "iOS"},
			"Permissions 'READ_CONTACTS' and 'WRITE_CONTACTS' are synonymous on iOS.",
		},
		{
			Advisory{Kind: AdviceMergedSupport, Name: AccessFineLocation, Related: []Name{WhenInUseLocation}, Platform: "iOS"},
			"Permission 'ACCESS_FINE_LOCATION' on iOS is treated as 'WHEN_IN_USE_LOCATION'.",
		},
		{
			Advisory{Kind: AdviceUnneeded, Name: ReadExternalStorage, Platform: "iOS"},
			"Requesting the 'READ_EXTERNAL_STORAGE' permission on iOS is unnecessary.",
		},
		{
			Advisory{Kind: AdviceUnsupported, Name: Vibrate, Platform: "iOS"},
			"'VIBRATE' is unsupported on iOS.",
		},
		{
			Advisory{Kind: AdviceForegroundOnly},
			"Location services granted for foreground use only.",
		},
		{
			Advisory{Kind: AdviceSettingsUnavailable, Platform: "iOS", RequiredVersion: "10.0"},
			"'openSettings' is only available on iOS 10.0 or greater.",
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.a.Message())
	}
	assert.Contains(t, Advisory{Kind: AdviceOrphanedRequest, Capability: CapabilityLocationAlways, RequestID: "abc"}.Message(), "abc")
}

func TestLogDiagnosticsLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	d := LogDiagnostics{Logger: logger}
	d.Advise(Advisory{Kind: AdviceUnneeded, Name: ReadExternalStorage, Platform: "iOS"})
	d.Advise(Advisory{Kind: AdviceUnsupported, Name: Vibrate, Platform: "iOS"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "level=info")
	assert.Contains(t, lines[0], "permission=READ_EXTERNAL_STORAGE")
	assert.Contains(t, lines[0], "advisory=unneeded")
	assert.Contains(t, lines[1], "level=warning")
	assert.Contains(t, lines[1], "permission=VIBRATE")
	assert.Contains(t, lines[1], "advisory=unsupported")
}

func TestAdvisoryKindString(t *testing.T) {
	assert.Equal(t, "synonyms", AdviceSynonyms.String())
	assert.Equal(t, "foreground_only", AdviceForegroundOnly.String())
	assert.Equal(t, "settings_unavailable", AdviceSettingsUnavailable.String())
	assert.Equal(t, "AdvisoryKind(42)", AdvisoryKind(42).String())
}

func TestDiagnosticsFunc(t *testing.T) {
	var got []AdvisoryKind
	svc, _, _ := newTestService(t)
	svc.diagnostics = DiagnosticsFunc(func(a Advisory) { got = append(got, a.Kind) })

	_, err := svc.GetPermissionStatus("CALL_PHONE")
	require.NoError(t, err)
	assert.Equal(t, []AdvisoryKind{AdviceUnsupported}, got)
}
