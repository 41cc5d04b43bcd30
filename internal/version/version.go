// Package version parses and orders plugin package versions.
//
// A Version is two to four dot separated numbers (major.minor[.patch[.revision]]).
// Anything else parses to Unknown, which orders below every parsed version and
// equal to itself. Ordering is delegated to golang.org/x/mod/semver on the
// canonical vMAJOR.MINOR.PATCH form, so the revision never affects selection.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a parsed plugin version. The zero value is Unknown.
type Version struct {
	Major    int
	Minor    int
	Patch    int
	Revision int

	parts int
}

// Unknown is the sentinel for versions that could not be determined.
var Unknown = Version{}

// MinimumOpenXR is the first release whose OpenXR backend is production ready.
var MinimumOpenXR = MustParse("1.63.0")

// Parse parses s. It returns Unknown and false when s is not a version.
func Parse(s string) (Version, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "v"), "V")

	fields := strings.Split(s, ".")
	if len(fields) < 2 || len(fields) > 4 {
		return Unknown, false
	}

	nums := make([]int, 4)
	for i, f := range fields {
		if f == "" || strings.TrimLeft(f, "0123456789") != "" {
			return Unknown, false
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return Unknown, false
		}
		nums[i] = n
	}

	return Version{
		Major:    nums[0],
		Minor:    nums[1],
		Patch:    nums[2],
		Revision: nums[3],
		parts:    len(fields),
	}, true
}

// MustParse is like Parse but panics on invalid input.
func MustParse(s string) Version {
	v, ok := Parse(s)
	if !ok {
		panic(fmt.Sprintf("version: cannot parse %q", s))
	}
	return v
}

// Known reports whether v was parsed successfully.
func (v Version) Known() bool {
	return v.parts > 0
}

func (v Version) canonical() string {
	if !v.Known() {
		return ""
	}
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or +1. Unknown is lower than any known version.
func (v Version) Compare(other Version) int {
	return semver.Compare(v.canonical(), other.canonical())
}

// Equal reports whether v and other select the same release.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// Less reports whether v orders strictly before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// AtLeast reports whether v is known and not older than min.
func (v Version) AtLeast(min Version) bool {
	return v.Known() && v.Compare(min) >= 0
}

// String renders the version with as many components as were parsed, or
// "(Unknown)" for the sentinel.
func (v Version) String() string {
	switch v.parts {
	case 0:
		return "(Unknown)"
	case 2:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	case 3:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	default:
		return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Revision)
	}
}

// MarshalText renders known versions and an empty string for Unknown.
func (v Version) MarshalText() ([]byte, error) {
	if !v.Known() {
		return []byte{}, nil
	}
	return []byte(v.String()), nil
}

// UnmarshalText parses text; unparsable input yields Unknown without error.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, _ := Parse(string(text))
	*v = parsed
	return nil
}
