package platform

import "fmt"

// BuildTarget is the player build an artifact can be imported for.
type BuildTarget string

const (
	TargetAndroid             BuildTarget = "Android"
	TargetStandaloneOSX       BuildTarget = "StandaloneOSX"
	TargetStandaloneWindows   BuildTarget = "StandaloneWindows"
	TargetStandaloneWindows64 BuildTarget = "StandaloneWindows64"
)

// Targets returns every build target.
func Targets() []BuildTarget {
	return []BuildTarget{
		TargetAndroid,
		TargetStandaloneOSX,
		TargetStandaloneWindows,
		TargetStandaloneWindows64,
	}
}

// ParseTarget parses a build target name.
func ParseTarget(name string) (BuildTarget, error) {
	for _, t := range Targets() {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown build target %q", name)
}
