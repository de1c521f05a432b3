package permissions

import "sync"

// Service is the permission subsystem for one platform. It owns the pending
// request registry for delegate-delivery capabilities: the registry is
// created with the Service, entries are removed as the OS answers, and
// nothing survives the process.
type Service struct {
	catalog     *Catalog
	platform    Platform
	diagnostics Diagnostics
	pending     *pendingRegistry

	unsubscribe func()
	closeOnce   sync.Once
}

// Option configures a Service.
type Option func(*Service)

// WithDiagnostics routes advisories to d. The default is LogDiagnostics.
func WithDiagnostics(d Diagnostics) Option {
	return func(s *Service) {
		if d == nil {
			d = NopDiagnostics{}
		}
		s.diagnostics = d
	}
}

// NewService creates a Service and subscribes it to the platform's location
// authorization changes. Call Close to unsubscribe.
func NewService(catalog *Catalog, platform Platform, opts ...Option) *Service {
	s := &Service{
		catalog:     catalog,
		platform:    platform,
		diagnostics: LogDiagnostics{},
		pending:     newPendingRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.unsubscribe = platform.SubscribeLocationChanges(s.HandleLocationAuthorizationChange)
	return s
}

// Catalog returns the catalog the Service resolves names against.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Pending returns the number of requests waiting for an OS notification.
func (s *Service) Pending() int {
	return s.pending.len()
}

// Close unsubscribes from location changes. Requests still pending are
// never completed.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
	})
}

// lookup resolves a name and emits the advisories that apply to it.
func (s *Service) lookup(name string) (Entry, error) {
	e, err := s.catalog.Resolve(name)
	if err != nil {
		return Entry{}, err
	}
	if group := s.catalog.Synonyms(e.Name); len(group) > 1 {
		s.advise(Advisory{Kind: AdviceSynonyms, Name: e.Name, Capability: e.Capability, Related: group})
	}
	if e.MergedInto != "" {
		s.advise(Advisory{Kind: AdviceMergedSupport, Name: e.Name, Capability: e.Capability, Related: []Name{e.MergedInto}})
	}
	switch {
	case e.Tier == TierEmulatedGranted:
		s.advise(Advisory{Kind: AdviceUnneeded, Name: e.Name})
	case e.VersionGated:
		s.advise(Advisory{
			Kind:            AdviceUnsupportedVersion,
			Name:            e.Name,
			Capability:      e.Capability,
			OSVersion:       s.catalog.OSVersion(),
			RequiredVersion: e.MinOSVersion,
		})
	case e.Tier == TierUnsupported:
		s.advise(Advisory{Kind: AdviceUnsupported, Name: e.Name})
	}
	return e, nil
}

func (s *Service) advise(a Advisory) {
	if a.Platform == "" {
		a.Platform = s.catalog.Platform()
	}
	s.diagnostics.Advise(a)
}
