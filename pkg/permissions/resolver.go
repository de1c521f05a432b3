package permissions

import (
	"fmt"

	"github.com/go-drift/permissions-helper/pkg/errors"
)

// TranslationKind names the table that maps a framework's native states to
// a Status. Catalog documents declare one per capability.
type TranslationKind string

const (
	// TranslationMedia is for frameworks with the four-state
	// not determined/restricted/denied/authorized enumeration.
	TranslationMedia TranslationKind = "media"
	// TranslationLocationAlways is for background location.
	TranslationLocationAlways TranslationKind = "location_always"
	// TranslationLocationWhenInUse is for foreground location.
	TranslationLocationWhenInUse TranslationKind = "location_when_in_use"
	// TranslationGrant is for frameworks that only report whether access is
	// held. They cannot tell a refusal from a permission never asked for, so
	// a denied capability is prompted again on request.
	TranslationGrant TranslationKind = "grant"
)

// Native enumerations differ in cardinality between frameworks, so each
// table lists only the states its framework reports.
var (
	mediaTranslation = map[NativeState]Status{
		NativeNotDetermined: StatusUndetermined,
		NativeRestricted:    StatusRestricted,
		NativeDenied:        StatusDenied,
		NativeAuthorized:    StatusGranted,
	}

	// Foreground-only authorization does not satisfy a background request.
	locationAlwaysTranslation = map[NativeState]Status{
		NativeNotDetermined:       StatusUndetermined,
		NativeRestricted:          StatusRestricted,
		NativeDenied:              StatusDenied,
		NativeAuthorizedAlways:    StatusGranted,
		NativeAuthorizedWhenInUse: StatusRestricted,
	}

	locationWhenInUseTranslation = map[NativeState]Status{
		NativeNotDetermined:       StatusUndetermined,
		NativeRestricted:          StatusRestricted,
		NativeDenied:              StatusDenied,
		NativeAuthorizedAlways:    StatusGranted,
		NativeAuthorizedWhenInUse: StatusGranted,
	}

	grantTranslation = map[NativeState]Status{
		NativeNotDetermined: StatusUndetermined,
		NativeDenied:        StatusDenied,
		NativeAuthorized:    StatusGranted,
	}

	translationTables = map[TranslationKind]map[NativeState]Status{
		TranslationMedia:             mediaTranslation,
		TranslationLocationAlways:    locationAlwaysTranslation,
		TranslationLocationWhenInUse: locationWhenInUseTranslation,
		TranslationGrant:             grantTranslation,
	}

	// defaultTranslations applies to catalog capabilities that declare no
	// translation.
	defaultTranslations = map[Capability]TranslationKind{
		CapabilityCamera:            TranslationMedia,
		CapabilityPhotoLibrary:      TranslationMedia,
		CapabilityContacts:          TranslationMedia,
		CapabilityMicrophone:        TranslationMedia,
		CapabilityLocationAlways:    TranslationLocationAlways,
		CapabilityLocationWhenInUse: TranslationLocationWhenInUse,
	}
)

// translate maps a native state through the capability's table. States the
// capability cannot report are reported as parse errors and fail closed.
func (s *Service) translate(e Entry, state NativeState) Status {
	status, ok := s.catalog.table(e.Capability)[state]
	if !ok {
		errors.Report(&errors.Error{
			Op:         "permissions.translate",
			Kind:       errors.KindParsing,
			Permission: string(e.Name),
			Err: &errors.ParseError{
				Source:   string(e.Capability),
				DataType: "NativeState",
				Got:      string(state),
			},
		})
		return StatusDenied
	}
	if e.Capability == CapabilityLocationAlways && state == NativeAuthorizedWhenInUse {
		s.advise(Advisory{Kind: AdviceForegroundOnly, Name: e.Name, Capability: e.Capability})
	}
	return status
}

// GetPermissionStatus returns the current status of a logical permission.
// It never prompts the user.
func (s *Service) GetPermissionStatus(name string) (Status, error) {
	e, err := s.lookup(name)
	if err != nil {
		return StatusUndetermined, err
	}
	return s.currentStatus(e)
}

// HasPermission reports whether a logical permission is currently granted.
func (s *Service) HasPermission(name string) (bool, error) {
	status, err := s.GetPermissionStatus(name)
	if err != nil {
		return false, err
	}
	return status == StatusGranted, nil
}

func (s *Service) currentStatus(e Entry) (Status, error) {
	switch e.Tier {
	case TierEmulatedGranted:
		return StatusGranted, nil
	case TierUnsupported:
		return StatusDenied, nil
	}
	state, err := s.platform.AuthorizationState(e.Capability)
	if err != nil {
		return StatusUndetermined, &errors.Error{
			Op:         "permissions.status",
			Kind:       errors.KindPlatform,
			Permission: string(e.Name),
			Err:        fmt.Errorf("query %s: %w", e.Capability, err),
		}
	}
	return s.translate(e, state), nil
}
