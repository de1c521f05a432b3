package permissions

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Platforms with a built-in catalog.
const (
	PlatformIOS     = "iOS"
	PlatformAndroid = "Android"
)

var (
	//go:embed catalog_ios.yaml
	iosCatalog []byte
	//go:embed catalog_android.yaml
	androidCatalog []byte

	builtinCatalogs = map[string][]byte{
		strings.ToLower(PlatformIOS):     iosCatalog,
		strings.ToLower(PlatformAndroid): androidCatalog,
	}
)

// Tier classifies how a logical name is supported on the target platform.
type Tier string

const (
	// TierNative names query and request a real OS capability.
	TierNative Tier = "native"
	// TierEmulatedGranted names have no meaning on the platform and always report granted.
	TierEmulatedGranted Tier = "emulated_granted"
	// TierUnsupported names have no platform control and always report denied.
	TierUnsupported Tier = "unsupported"
)

// Entry is the catalog record for one logical permission name.
type Entry struct {
	Name Name
	Tier Tier

	// Capability and Delivery are set for native entries, and kept for
	// entries downgraded by version gating.
	Capability Capability
	Delivery   Delivery

	// SynonymGroup is shared by names that alias one capability.
	SynonymGroup string
	// MergedInto names the coarser logical permission this name is reported as.
	MergedInto Name

	// MinOSVersion is the capability's minimum OS version, if any.
	MinOSVersion string
	// VersionGated is true when a native entry was downgraded to
	// TierUnsupported because the OS version is below MinOSVersion.
	VersionGated bool
}

// Catalog is the immutable table of logical permission names for one platform
// and OS version.
type Catalog struct {
	platform          string
	osVersion         string
	entries           map[Name]Entry
	order             []Name
	groups            map[string][]Name
	delivery          map[Capability]Delivery
	translation       map[Capability]TranslationKind
	settingsMinOS     string
	settingsSupported bool
}

type catalogDoc struct {
	Platform string `yaml:"platform"`
	Settings struct {
		MinOS string `yaml:"min_os"`
	} `yaml:"settings"`
	Capabilities map[Capability]struct {
		Delivery    Delivery        `yaml:"delivery"`
		Translation TranslationKind `yaml:"translation"`
		MinOS       string          `yaml:"min_os"`
	} `yaml:"capabilities"`
	Permissions []struct {
		Name         Name       `yaml:"name"`
		Tier         Tier       `yaml:"tier"`
		Capability   Capability `yaml:"capability"`
		SynonymGroup string     `yaml:"synonym_group"`
		MergedInto   Name       `yaml:"merged_into"`
	} `yaml:"permissions"`
}

// NewCatalog builds the built-in iOS catalog for the given OS version.
// An empty osVersion disables version gating.
func NewCatalog(osVersion string) (*Catalog, error) {
	return NewPlatformCatalog(PlatformIOS, osVersion)
}

// NewPlatformCatalog builds the built-in catalog of a platform, matched
// case-insensitively against PlatformIOS and PlatformAndroid.
func NewPlatformCatalog(platform, osVersion string) (*Catalog, error) {
	data, ok := builtinCatalogs[strings.ToLower(strings.TrimSpace(platform))]
	if !ok {
		return nil, fmt.Errorf("no built-in catalog for platform %q", platform)
	}
	return LoadCatalog(data, osVersion)
}

// LoadCatalog parses and validates a catalog document for the given OS version.
func LoadCatalog(data []byte, osVersion string) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	current := ""
	if strings.TrimSpace(osVersion) != "" {
		v, err := canonicalVersion(osVersion)
		if err != nil {
			return nil, fmt.Errorf("os version: %w", err)
		}
		current = v
	}

	c := &Catalog{
		platform:          doc.Platform,
		osVersion:         strings.TrimSpace(osVersion),
		entries:           make(map[Name]Entry, len(doc.Permissions)),
		groups:            make(map[string][]Name),
		delivery:          make(map[Capability]Delivery, len(doc.Capabilities)),
		translation:       make(map[Capability]TranslationKind, len(doc.Capabilities)),
		settingsMinOS:     doc.Settings.MinOS,
		settingsSupported: true,
	}

	gated := make(map[Capability]bool)
	for id, capDoc := range doc.Capabilities {
		kind := capDoc.Translation
		if kind == "" {
			kind = defaultTranslations[id]
		}
		if _, ok := translationTables[kind]; !ok {
			if kind == "" {
				return nil, fmt.Errorf("%w: capability %q declares no translation", ErrInvalidCatalog, id)
			}
			return nil, fmt.Errorf("%w: capability %q has unknown translation %q", ErrInvalidCatalog, id, kind)
		}
		switch capDoc.Delivery {
		case DeliveryCallback:
		case DeliveryDelegate:
			// Only location authorization changes are delivered to pending requests.
			if !id.IsLocation() {
				return nil, fmt.Errorf("%w: capability %q cannot use delegate delivery", ErrInvalidCatalog, id)
			}
		default:
			return nil, fmt.Errorf("%w: capability %q has unknown delivery %q", ErrInvalidCatalog, id, capDoc.Delivery)
		}
		c.delivery[id] = capDoc.Delivery
		c.translation[id] = kind
		below, err := versionBelow(current, capDoc.MinOS)
		if err != nil {
			return nil, fmt.Errorf("%w: capability %q: %v", ErrInvalidCatalog, id, err)
		}
		gated[id] = below
	}

	below, err := versionBelow(current, doc.Settings.MinOS)
	if err != nil {
		return nil, fmt.Errorf("%w: settings: %v", ErrInvalidCatalog, err)
	}
	c.settingsSupported = !below

	for _, p := range doc.Permissions {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: permission without a name", ErrInvalidCatalog)
		}
		if _, dup := c.entries[p.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate permission %q", ErrInvalidCatalog, p.Name)
		}
		e := Entry{
			Name:         p.Name,
			Tier:         p.Tier,
			SynonymGroup: p.SynonymGroup,
			MergedInto:   p.MergedInto,
		}
		switch p.Tier {
		case TierNative:
			delivery, ok := c.delivery[p.Capability]
			if !ok {
				return nil, fmt.Errorf("%w: permission %q bound to undeclared capability %q", ErrInvalidCatalog, p.Name, p.Capability)
			}
			e.Capability = p.Capability
			e.Delivery = delivery
			e.MinOSVersion = doc.Capabilities[p.Capability].MinOS
			if gated[p.Capability] {
				e.Tier = TierUnsupported
				e.VersionGated = true
			}
		case TierEmulatedGranted, TierUnsupported:
			if p.Capability != "" {
				return nil, fmt.Errorf("%w: %s permission %q cannot bind capability %q", ErrInvalidCatalog, p.Tier, p.Name, p.Capability)
			}
		default:
			return nil, fmt.Errorf("%w: permission %q has unknown tier %q", ErrInvalidCatalog, p.Name, p.Tier)
		}
		c.entries[p.Name] = e
		c.order = append(c.order, p.Name)
		if e.SynonymGroup != "" {
			c.groups[e.SynonymGroup] = append(c.groups[e.SynonymGroup], e.Name)
		}
	}

	for _, name := range c.order {
		e := c.entries[name]
		if e.MergedInto == "" {
			continue
		}
		target, ok := c.entries[e.MergedInto]
		if !ok {
			return nil, fmt.Errorf("%w: permission %q merged into unknown %q", ErrInvalidCatalog, name, e.MergedInto)
		}
		if target.Capability != e.Capability {
			return nil, fmt.Errorf("%w: permission %q merged into %q with a different capability", ErrInvalidCatalog, name, e.MergedInto)
		}
	}
	for _, names := range c.groups {
		sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	}
	return c, nil
}

// Resolve returns the entry for a logical name.
func (c *Catalog) Resolve(name string) (Entry, error) {
	e, ok := c.entries[Name(name)]
	if !ok {
		return Entry{}, &UnknownNameError{Name: name}
	}
	return e, nil
}

// Names returns every logical name in catalog order.
func (c *Catalog) Names() []Name {
	return append([]Name(nil), c.order...)
}

// Synonyms returns all names sharing name's synonym group, including name
// itself, sorted. It returns nil when name has no synonyms.
func (c *Catalog) Synonyms(name Name) []Name {
	e, ok := c.entries[name]
	if !ok || e.SynonymGroup == "" {
		return nil
	}
	return append([]Name(nil), c.groups[e.SynonymGroup]...)
}

// Delivery returns how the OS reports request outcomes for a capability.
func (c *Catalog) Delivery(capability Capability) (Delivery, bool) {
	d, ok := c.delivery[capability]
	return d, ok
}

// Translation returns the translation table kind of a capability.
func (c *Catalog) Translation(capability Capability) (TranslationKind, bool) {
	kind, ok := c.translation[capability]
	return kind, ok
}

// Capabilities returns the declared capabilities, sorted.
func (c *Catalog) Capabilities() []Capability {
	out := make([]Capability, 0, len(c.delivery))
	for id := range c.delivery {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// reprompts reports whether a denied capability is asked for again on request.
func (c *Catalog) reprompts(capability Capability) bool {
	return c.translation[capability] == TranslationGrant
}

func (c *Catalog) table(capability Capability) map[NativeState]Status {
	return translationTables[c.translation[capability]]
}

// Platform returns the platform the catalog describes.
func (c *Catalog) Platform() string {
	return c.platform
}

// OSVersion returns the OS version the catalog was built for.
func (c *Catalog) OSVersion() string {
	return c.osVersion
}

// SettingsSupported reports whether the OS version allows opening app settings.
func (c *Catalog) SettingsSupported() bool {
	return c.settingsSupported
}

// SettingsMinOSVersion returns the minimum OS version for the settings deep-link.
func (c *Catalog) SettingsMinOSVersion() string {
	return c.settingsMinOS
}

// canonicalVersion turns an OS version such as "9.3.5" into semver form.
func canonicalVersion(v string) (string, error) {
	sv := "v" + strings.TrimPrefix(strings.TrimSpace(v), "v")
	if !semver.IsValid(sv) {
		return "", fmt.Errorf("malformed version %q", v)
	}
	return sv, nil
}

// versionBelow reports whether current is older than minimum. An empty
// current or minimum never gates.
func versionBelow(current, minimum string) (bool, error) {
	if strings.TrimSpace(minimum) == "" {
		return false, nil
	}
	floor, err := canonicalVersion(minimum)
	if err != nil {
		return false, err
	}
	if current == "" {
		return false, nil
	}
	return semver.Compare(current, floor) < 0, nil
}
