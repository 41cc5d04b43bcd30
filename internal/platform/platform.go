// Package platform defines the closed set of plugin platform tags and the build
// targets they map to.
//
// Every tag maps to exactly one artifact sub path inside a package directory.
// Tags that serve the same logical platform (for example the legacy and OpenXR
// Android builds) share a Group; at most one member of a group may be enabled.
package platform

import (
	"fmt"
	"strings"
)

// Platform identifies one (OS, backend) combination an artifact targets.
type Platform int

const (
	Android Platform = iota
	AndroidUniversal
	AndroidOpenXR
	OSXUniversal
	Win
	Win64
	Win64OpenXR
)

var all = []Platform{
	Android,
	AndroidUniversal,
	AndroidOpenXR,
	OSXUniversal,
	Win,
	Win64,
	Win64OpenXR,
}

// All returns every platform tag in declaration order.
func All() []Platform {
	out := make([]Platform, len(all))
	copy(out, all)
	return out
}

// String returns the tag name, which is also the artifact's directory name.
func (p Platform) String() string {
	switch p {
	case Android:
		return "Android"
	case AndroidUniversal:
		return "AndroidUniversal"
	case AndroidOpenXR:
		return "AndroidOpenXR"
	case OSXUniversal:
		return "OSXUniversal"
	case Win:
		return "Win"
	case Win64:
		return "Win64"
	case Win64OpenXR:
		return "Win64OpenXR"
	default:
		panic(fmt.Sprintf("platform: unsupported tag %d", int(p)))
	}
}

// SubPath returns the artifact path relative to a package root.
func (p Platform) SubPath() string {
	switch p {
	case Android, AndroidUniversal, AndroidOpenXR:
		return p.String() + "/OVRPlugin.aar"
	case OSXUniversal:
		return p.String() + "/OVRPlugin.bundle"
	case Win, Win64, Win64OpenXR:
		return p.String() + "/OVRPlugin.dll"
	default:
		panic(fmt.Sprintf("platform: no artifact path for unsupported tag %d", int(p)))
	}
}

// BuildTarget returns the build target the artifact is compiled for.
func (p Platform) BuildTarget() BuildTarget {
	switch p {
	case Android, AndroidUniversal, AndroidOpenXR:
		return TargetAndroid
	case OSXUniversal:
		return TargetStandaloneOSX
	case Win:
		return TargetStandaloneWindows
	case Win64, Win64OpenXR:
		return TargetStandaloneWindows64
	default:
		panic(fmt.Sprintf("platform: no build target for unsupported tag %d", int(p)))
	}
}

// Group returns the logical platform the tag belongs to.
func (p Platform) Group() Group {
	switch p {
	case Android, AndroidUniversal, AndroidOpenXR:
		return GroupAndroid
	case OSXUniversal:
		return GroupOSX
	case Win:
		return GroupWin
	case Win64, Win64OpenXR:
		return GroupWin64
	default:
		panic(fmt.Sprintf("platform: no group for unsupported tag %d", int(p)))
	}
}

// IsOpenXR reports whether the artifact is built against the OpenXR backend.
func (p Platform) IsOpenXR() bool {
	switch p {
	case AndroidOpenXR, Win64OpenXR:
		return true
	case Android, AndroidUniversal, OSXUniversal, Win, Win64:
		return false
	default:
		panic(fmt.Sprintf("platform: unsupported tag %d", int(p)))
	}
}

// ParsePlatform parses a tag name case-insensitively.
func ParsePlatform(name string) (Platform, error) {
	for _, p := range all {
		if strings.EqualFold(p.String(), name) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown platform %q", name)
}

// Group is a logical platform whose variants are mutually exclusive.
type Group string

const (
	GroupAndroid Group = "android"
	GroupOSX     Group = "osx"
	GroupWin     Group = "win"
	GroupWin64   Group = "win64"
)

// Members returns the tags belonging to g, in declaration order.
func (g Group) Members() []Platform {
	var out []Platform
	for _, p := range all {
		if p.Group() == g {
			out = append(out, p)
		}
	}
	return out
}

// ExclusiveGroups returns every group that has more than one variant.
func ExclusiveGroups() []Group {
	return []Group{GroupAndroid, GroupWin64}
}
