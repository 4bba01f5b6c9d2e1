package dftl

// Config holds the coordinator's tunables. It is a plain struct — loading
// it from a file or flags is outside this module's scope; the demo binary
// in cmd/dftlsim does that for its own purposes.
type Config struct {
	// AddressablePages is N: the number of addressable logical pages.
	AddressablePages int64

	// EntriesPerTranslationPage is E, the fan-out of one translation page.
	EntriesPerTranslationPage int64

	// CacheThreshold is the maximum number of resident CMT entries before
	// eviction kicks in.
	CacheThreshold int

	// SeparateMappingPages steers mapping writes into a distinct tag so a
	// block manager can segregate translation pages from data pages.
	SeparateMappingPages bool

	// UseLargeMappingTag selects the block-manager variant that wants a
	// tag beyond the addressable range (AddressablePages+1) for mapping
	// writes instead of the default tag of 1 (§4.D.7). Most block
	// managers leave this false.
	UseLargeMappingTag bool

	// SupportTrim, if set, makes Trim eagerly invalidate the CMT entry
	// instead of returning ErrTrimUnsupported; the owning GTD slot is not
	// changed. Default false preserves the original behavior.
	SupportTrim bool
}

// DefaultConfig returns the spec's defaults.
func DefaultConfig(addressablePages int64) Config {
	return Config{
		AddressablePages:          addressablePages,
		EntriesPerTranslationPage: 1024,
		CacheThreshold:            0, // caller must size this to the workload
		SeparateMappingPages:      true,
	}
}

// MappingTag returns the tag a mapping write should carry under this
// configuration.
func (c Config) MappingTag() int {
	if !c.SeparateMappingPages {
		return 0
	}
	if c.UseLargeMappingTag {
		return int(c.AddressablePages) + 1
	}
	return 1
}
