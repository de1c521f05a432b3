// Package permissions maps a platform-agnostic permission vocabulary onto the
// capabilities of the target platform and reconciles the OS authorization
// callbacks into a single request/response contract.
//
// A Service is built from a Catalog and a Platform:
//
//	catalog, err := permissions.NewCatalog("17.2")
//	svc := permissions.NewService(catalog, native)
//	defer svc.Close()
//
//	status, err := svc.GetPermissionStatus("CAMERA")
//
// Names that the platform has no concept of are emulated as granted; names
// the platform cannot control are reported as denied. Unknown names are
// always an error, never a status.
package permissions

import "fmt"

// Status is the canonical result of a permission query or request.
// The underlying value is an identity for the wire encoding only; callers
// must not rely on ordering between statuses.
type Status int

const (
	// StatusUndetermined indicates the user has never been asked.
	StatusUndetermined Status = iota
	// StatusRestricted indicates system policy blocks access and the user cannot change it.
	StatusRestricted
	// StatusDenied indicates the user or policy denied access.
	StatusDenied
	// StatusGranted indicates access is authorized.
	StatusGranted
)

var statusNames = [...]string{
	StatusUndetermined: "undetermined",
	StatusRestricted:   "restricted",
	StatusDenied:       "denied",
	StatusGranted:      "granted",
}

func (s Status) String() string {
	if s.Valid() {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Valid reports whether s is one of the four canonical statuses.
func (s Status) Valid() bool {
	return s >= StatusUndetermined && s <= StatusGranted
}

// Terminal reports whether s is a settled answer that no OS prompt will change.
func (s Status) Terminal() bool {
	return s != StatusUndetermined
}

// ParseStatus returns the status named by s.
func ParseStatus(s string) (Status, error) {
	for i, name := range statusNames {
		if name == s {
			return Status(i), nil
		}
	}
	return StatusUndetermined, fmt.Errorf("unknown permission status %q", s)
}
