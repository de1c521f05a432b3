package permissions

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// AdvisoryKind identifies an informational diagnostic.
type AdvisoryKind int

const (
	// AdviceSynonyms: the name shares its capability with other names.
	AdviceSynonyms AdvisoryKind = iota
	// AdviceMergedSupport: the name is reported as a coarser permission.
	AdviceMergedSupport
	// AdviceUnneeded: the permission does not exist on the platform and is emulated as granted.
	AdviceUnneeded
	// AdviceUnsupported: the platform provides no control for the permission.
	AdviceUnsupported
	// AdviceUnsupportedVersion: the capability needs a newer OS version.
	AdviceUnsupportedVersion
	// AdviceForegroundOnly: location is authorized for foreground use only.
	AdviceForegroundOnly
	// AdviceOrphanedRequest: a pending request was replaced and will never complete.
	AdviceOrphanedRequest
	// AdviceSettingsUnavailable: the settings deep-link is not available.
	AdviceSettingsUnavailable
)

var advisoryKindNames = [...]string{
	AdviceSynonyms:            "synonyms",
	AdviceMergedSupport:       "merged_support",
	AdviceUnneeded:            "unneeded",
	AdviceUnsupported:         "unsupported",
	AdviceUnsupportedVersion:  "unsupported_version",
	AdviceForegroundOnly:      "foreground_only",
	AdviceOrphanedRequest:     "orphaned_request",
	AdviceSettingsUnavailable: "settings_unavailable",
}

func (k AdvisoryKind) String() string {
	if k >= 0 && int(k) < len(advisoryKindNames) {
		return advisoryKindNames[k]
	}
	return fmt.Sprintf("AdvisoryKind(%d)", int(k))
}

// Advisory is a diagnostic message. Advisories never alter a returned status.
type Advisory struct {
	Kind       AdvisoryKind
	Name       Name
	Capability Capability
	// Related holds the synonym group or the merge target.
	Related  []Name
	Platform string
	// OSVersion and RequiredVersion are set for version advisories.
	OSVersion       string
	RequiredVersion string
	// RequestID identifies the orphaned pending request.
	RequestID string
}

// Warning reports whether the advisory describes degraded behavior rather
// than a neutral mapping.
func (a Advisory) Warning() bool {
	switch a.Kind {
	case AdviceUnsupported, AdviceUnsupportedVersion, AdviceForegroundOnly,
		AdviceOrphanedRequest, AdviceSettingsUnavailable:
		return true
	}
	return false
}

// Message renders the advisory as a human-readable sentence.
func (a Advisory) Message() string {
	switch a.Kind {
	case AdviceSynonyms:
		return fmt.Sprintf("Permissions %s are synonymous on %s.", quoteNames(a.Related), a.Platform)
	case AdviceMergedSupport:
		target := Name("")
		if len(a.Related) > 0 {
			target = a.Related[0]
		}
		return fmt.Sprintf("Permission '%s' on %s is treated as '%s'.", a.Name, a.Platform, target)
	case AdviceUnneeded:
		return fmt.Sprintf("Requesting the '%s' permission on %s is unnecessary.", a.Name, a.Platform)
	case AdviceUnsupported:
		return fmt.Sprintf("'%s' is unsupported on %s.", a.Name, a.Platform)
	case AdviceUnsupportedVersion:
		return fmt.Sprintf("'%s' is unsupported on %s %s. Required: %s %s or higher.",
			a.Name, a.Platform, a.OSVersion, a.Platform, a.RequiredVersion)
	case AdviceForegroundOnly:
		return "Location services granted for foreground use only."
	case AdviceOrphanedRequest:
		return fmt.Sprintf("Pending %s request %s was replaced before the OS answered; it will never complete.",
			a.Capability, a.RequestID)
	case AdviceSettingsUnavailable:
		return fmt.Sprintf("'openSettings' is only available on %s %s or greater.", a.Platform, a.RequiredVersion)
	}
	return fmt.Sprintf("advisory %d for '%s'", int(a.Kind), a.Name)
}

func quoteNames(names []Name) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + string(n) + "'"
	}
	return strings.Join(quoted, " and ")
}

// Diagnostics receives advisories.
type Diagnostics interface {
	Advise(a Advisory)
}

// NopDiagnostics discards advisories.
type NopDiagnostics struct{}

// Advise implements Diagnostics.
func (NopDiagnostics) Advise(Advisory) {}

// LogDiagnostics writes advisories through logrus: neutral mappings at info
// level, degraded behavior at warn level.
type LogDiagnostics struct {
	// Logger receives the entries. Nil uses the logrus standard logger.
	Logger *logrus.Logger
}

// Advise implements Diagnostics.
func (d LogDiagnostics) Advise(a Advisory) {
	logger := d.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	fields := logrus.Fields{"advisory": a.Kind.String()}
	if a.Name != "" {
		fields["permission"] = string(a.Name)
	}
	if a.Capability != "" {
		fields["capability"] = string(a.Capability)
	}
	entry := logger.WithFields(fields)
	if a.Warning() {
		entry.Warn(a.Message())
		return
	}
	entry.Info(a.Message())
}

// DiagnosticsFunc adapts a function to Diagnostics.
type DiagnosticsFunc func(Advisory)

// Advise implements Diagnostics.
func (f DiagnosticsFunc) Advise(a Advisory) { f(a) }
