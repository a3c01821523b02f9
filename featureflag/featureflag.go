package featureflag

import "strings"

// FeatureFlag is a lookup map for features that are enabled.
type FeatureFlag map[Flag]struct{}

// New returns feature flags initialized with a list of flags. Names are
// trimmed and upper-cased; empty names are ignored.
func New(flags []string) FeatureFlag {
	featureFlag := make(FeatureFlag)
	for _, f := range flags {
		f = strings.ToUpper(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		featureFlag[Flag(f)] = struct{}{}
	}
	return featureFlag
}

// IsSet reports whether flag is enabled.
func (f FeatureFlag) IsSet(flag Flag) bool {
	_, ok := f[flag]
	return ok
}

// IfSet runs do if flag is enabled.
func (f FeatureFlag) IfSet(flag Flag, do func()) {
	if !f.IsSet(flag) {
		return
	}
	do()
}

// IfNotSet runs do if flag is not enabled.
func (f FeatureFlag) IfNotSet(flag Flag, do func()) {
	if f.IsSet(flag) {
		return
	}
	do()
}

// Strings returns the enabled flag names.
func (f FeatureFlag) Strings() []string {
	names := make([]string, 0, len(f))
	for flag := range f {
		names = append(names, string(flag))
	}
	return names
}
