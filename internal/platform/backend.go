package platform

import (
	"fmt"
	"strings"
)

// Backend is the runtime API an artifact variant is built against.
type Backend int

const (
	BackendLegacy Backend = iota
	BackendOpenXR
)

func (b Backend) String() string {
	switch b {
	case BackendLegacy:
		return "legacy"
	case BackendOpenXR:
		return "openxr"
	default:
		panic(fmt.Sprintf("platform: unsupported backend %d", int(b)))
	}
}

// ParseBackend parses "legacy" or "openxr" case-insensitively.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "legacy":
		return BackendLegacy, nil
	case "openxr":
		return BackendOpenXR, nil
	default:
		return 0, fmt.Errorf("unknown backend %q (want legacy or openxr)", name)
	}
}

// Variant returns the member of an exclusive group built for b. The android
// legacy variant is AndroidUniversal; the pre-universal Android build is never
// a switch target.
func (g Group) Variant(b Backend) (Platform, bool) {
	switch {
	case g == GroupAndroid && b == BackendLegacy:
		return AndroidUniversal, true
	case g == GroupAndroid && b == BackendOpenXR:
		return AndroidOpenXR, true
	case g == GroupWin64 && b == BackendLegacy:
		return Win64, true
	case g == GroupWin64 && b == BackendOpenXR:
		return Win64OpenXR, true
	default:
		return 0, false
	}
}
