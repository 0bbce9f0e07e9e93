package deps

// Language groups the registry fetcher and manifest readers of one ecosystem.
type Language struct {
	Name            string                     // Ecosystem name (e.g., "python")
	Registry        RegistryType               // Registry the ecosystem resolves against
	ManifestFiles   []string                   // Manifest file names the readers handle
	NewFetcher      func(opts Options) Fetcher // Builds the registry fetcher
	ManifestReaders func() []ManifestReader    // Bundled manifest readers
}

// Fetcher builds the language's registry fetcher with opts.
func (l *Language) Fetcher(opts Options) Fetcher {
	if l.NewFetcher == nil {
		return nil
	}
	return l.NewFetcher(opts.WithDefaults())
}

// Readers returns the language's manifest readers.
func (l *Language) Readers() []ManifestReader {
	if l.ManifestReaders == nil {
		return nil
	}
	return l.ManifestReaders()
}

// HasManifests reports whether the language bundles manifest readers.
func (l *Language) HasManifests() bool {
	return l.ManifestReaders != nil
}

// FindLanguage returns the Language with the given name from the provided list, or nil if not found.
func FindLanguage(name string, languages []*Language) *Language {
	for _, lang := range languages {
		if lang.Name == name {
			return lang
		}
	}
	return nil
}

// NewRegistryFor builds a Registry holding one fetcher per language.
func NewRegistryFor(opts Options, languages ...*Language) *Registry {
	fetchers := make([]Fetcher, 0, len(languages))
	for _, l := range languages {
		fetchers = append(fetchers, l.Fetcher(opts))
	}
	return NewRegistry(fetchers...)
}
