package platform

import (
	"fmt"

	"github.com/go-drift/permissions-helper/pkg/errors"
	"github.com/go-drift/permissions-helper/pkg/permissions"
)

// Channel names used to reach the OS permission frameworks.
const (
	NativeChannelName   = "permissions_helper/native"
	LocationChannelName = "permissions_helper/location"
)

// NativePlatform implements permissions.Platform by calling native code over
// platform channels.
//
// Native methods on permissions_helper/native take {"capability": string}
// and answer with {"status": string} using the permissions.NativeState
// names, or {"granted": bool} for frameworks that only report a boolean.
// Location authorization changes arrive as {"status": string} events.
type NativePlatform struct {
	channel  *MethodChannel
	location *EventChannel
}

// NewNativePlatform registers the native method and location event channels.
func NewNativePlatform() *NativePlatform {
	return &NativePlatform{
		channel:  NewMethodChannel(NativeChannelName),
		location: NewEventChannel(LocationChannelName),
	}
}

// NewService builds a permissions.Service for the running OS: it asks the
// native side for the platform and OS version, builds the built-in catalog
// for them and subscribes to location changes.
func NewService(opts ...permissions.Option) (*permissions.Service, error) {
	native := NewNativePlatform()
	platform, version, err := native.deviceInfo()
	if err != nil {
		return nil, err
	}
	catalog, err := permissions.NewPlatformCatalog(platform, version)
	if err != nil {
		return nil, err
	}
	return permissions.NewService(catalog, native, opts...), nil
}

// AuthorizationState implements permissions.Platform.
func (p *NativePlatform) AuthorizationState(c permissions.Capability) (permissions.NativeState, error) {
	result, err := p.channel.Invoke("authorizationStatus", map[string]any{"capability": string(c)})
	if err != nil {
		return "", err
	}
	return p.parseState("authorizationStatus", result)
}

// RequestAccess implements permissions.Platform. It blocks until the native
// prompt is answered and then invokes done.
func (p *NativePlatform) RequestAccess(c permissions.Capability, done func(permissions.NativeState)) error {
	result, err := p.channel.Invoke("requestAccess", map[string]any{"capability": string(c)})
	if err != nil {
		return err
	}
	state, err := p.parseState("requestAccess", result)
	if err != nil {
		return err
	}
	done(state)
	return nil
}

// RequestAuthorization implements permissions.Platform.
func (p *NativePlatform) RequestAuthorization(c permissions.Capability) error {
	_, err := p.channel.Invoke("requestAuthorization", map[string]any{"capability": string(c)})
	return err
}

// SubscribeLocationChanges implements permissions.Platform. Malformed events
// are reported and dropped.
func (p *NativePlatform) SubscribeLocationChanges(fn func(permissions.NativeState)) func() {
	sub := p.location.Listen(EventHandler{
		OnEvent: func(data any) {
			state, err := p.parseLocationEvent(data)
			if err != nil {
				errors.Report(&errors.Error{
					Op:      "platform.locationChange",
					Kind:    errors.KindParsing,
					Channel: LocationChannelName,
					Err:     err,
				})
				return
			}
			fn(state)
		},
		OnError: func(err error) {
			errors.Report(&errors.Error{
				Op:      "platform.locationStream",
				Kind:    errors.KindPlatform,
				Channel: LocationChannelName,
				Err:     err,
			})
		},
	})
	return sub.Cancel
}

// OpenSettings implements permissions.Platform. Native answers {"opened": bool}.
func (p *NativePlatform) OpenSettings() (bool, error) {
	result, err := p.channel.Invoke("openSettings", nil)
	if err != nil {
		return false, err
	}
	opened, ok := parseBool(parseMap(result)["opened"])
	if !ok {
		return false, p.parseError("openSettings", "SettingsResult", result)
	}
	return opened, nil
}

// OSVersion returns the running OS version, e.g. "17.2". Native answers
// {"version": string, "platform": string}; a missing platform means iOS.
func (p *NativePlatform) OSVersion() (string, error) {
	_, version, err := p.deviceInfo()
	return version, err
}

func (p *NativePlatform) deviceInfo() (platform, version string, err error) {
	result, err := p.channel.Invoke("osVersion", nil)
	if err != nil {
		return "", "", err
	}
	m := parseMap(result)
	version = parseString(m["version"])
	if version == "" {
		return "", "", p.parseError("osVersion", "OSVersion", result)
	}
	platform = parseString(m["platform"])
	if platform == "" {
		platform = permissions.PlatformIOS
	}
	return platform, version, nil
}

func (p *NativePlatform) parseState(method string, result any) (permissions.NativeState, error) {
	m := parseMap(result)
	if raw, ok := m["status"].(string); ok {
		state, err := permissions.ParseNativeState(raw)
		if err != nil {
			return "", p.parseError(method, "NativeState", result)
		}
		return state, nil
	}
	if granted, ok := parseBool(m["granted"]); ok {
		return permissions.NativeStateFromBool(granted), nil
	}
	return "", p.parseError(method, "NativeState", result)
}

func (p *NativePlatform) parseLocationEvent(data any) (permissions.NativeState, error) {
	raw := parseString(parseMap(data)["status"])
	state, err := permissions.ParseNativeState(raw)
	if err != nil {
		return "", &errors.ParseError{Source: LocationChannelName, DataType: "NativeState", Got: data}
	}
	return state, nil
}

func (p *NativePlatform) parseError(method, dataType string, got any) error {
	return &errors.Error{
		Op:      "platform." + method,
		Kind:    errors.KindParsing,
		Channel: NativeChannelName,
		Err: &errors.ParseError{
			Source:   fmt.Sprintf("%s.%s", NativeChannelName, method),
			DataType: dataType,
			Got:      got,
		},
	}
}
