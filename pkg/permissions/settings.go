package permissions

import "github.com/go-drift/permissions-helper/pkg/errors"

// OpenSettings opens the app's page in the system settings. It returns false
// when the OS version does not support programmatic settings navigation or
// the platform could not open it. No permission state is read or changed.
func (s *Service) OpenSettings() bool {
	if !s.catalog.SettingsSupported() {
		s.advise(Advisory{
			Kind:            AdviceSettingsUnavailable,
			OSVersion:       s.catalog.OSVersion(),
			RequiredVersion: s.catalog.SettingsMinOSVersion(),
		})
		return false
	}
	opened, err := s.platform.OpenSettings()
	if err != nil {
		errors.Report(&errors.Error{
			Op:   "permissions.openSettings",
			Kind: errors.KindPlatform,
			Err:  err,
		})
		return false
	}
	return opened
}
