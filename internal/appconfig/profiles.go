package appconfig

import (
	"sort"
	"strings"
)

// ProfileName identifies a warm-up/run preset.
type ProfileName string

const (
	ProfileQuick    ProfileName = "quick"
	ProfileStandard ProfileName = "standard"
	ProfileThorough ProfileName = "thorough"
)

// DefaultSeed feeds seeded fixtures when neither the config nor --seed
// names one. It is recorded in the report like any other seed.
const DefaultSeed uint64 = 42

// RunProfile is a named preset of warm-up and measured run counts plus the
// seed used when none is configured.
type RunProfile struct {
	Name   ProfileName
	Warmup int
	Runs   int
	Seed   uint64
}

var profiles = map[ProfileName]RunProfile{
	ProfileQuick:    {Name: ProfileQuick, Warmup: 1, Runs: 3, Seed: DefaultSeed},
	ProfileStandard: {Name: ProfileStandard, Warmup: 3, Runs: 10, Seed: DefaultSeed},
	ProfileThorough: {Name: ProfileThorough, Warmup: 10, Runs: 100, Seed: DefaultSeed},
}

// ProfileFor selects a preset by name.
// Behavior:
//   - empty string => standard (default)
//   - unknown string => standard (default); Validate reports it
func ProfileFor(name string) RunProfile {
	if p, ok := profiles[normalizeProfileName(name)]; ok {
		return p
	}
	return profiles[ProfileStandard]
}

// KnownProfile reports whether name selects a preset.
func KnownProfile(name string) bool {
	_, ok := profiles[normalizeProfileName(name)]
	return ok
}

// ProfileNames lists the presets in alphabetical order.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

func normalizeProfileName(name string) ProfileName {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", "_")
	return ProfileName(n)
}
