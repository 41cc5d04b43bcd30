package compat

import (
	"fmt"

	"github.com/danieljhkim/pluginsync/internal/importmeta"
	"github.com/danieljhkim/pluginsync/internal/platform"
)

// editorTarget keys the per-target data the host process reads for itself.
const editorTarget platform.BuildTarget = "Editor"

// ShouldEnable decides whether artifact p of a freshly enabled package is
// switched on. useOpenXR is the backend already resolved for p's group.
func ShouldEnable(p platform.Platform, useOpenXR bool, caps Capabilities) bool {
	switch p {
	case platform.Android:
		return !caps.AndroidUniversal
	case platform.AndroidUniversal:
		return !useOpenXR && caps.AndroidUniversal
	case platform.AndroidOpenXR:
		return useOpenXR && caps.AndroidUniversal
	case platform.OSXUniversal, platform.Win:
		return true
	case platform.Win64:
		return !useOpenXR
	case platform.Win64OpenXR:
		return useOpenXR
	default:
		panic(fmt.Sprintf("compat: no enable rule for platform %d", int(p)))
	}
}

// EnabledSettings returns import metadata for p. Everything starts disabled;
// when on, the build target and the host are switched on together with the
// CPU/OS data the platform needs.
func EnabledSettings(p platform.Platform, on bool, caps Capabilities) *importmeta.Settings {
	s := importmeta.New(p)
	if !on {
		return s
	}

	s.SetTarget(p.BuildTarget(), true)

	switch p {
	case platform.Android:
		s.SetHost(true, "", "")
		if !caps.AndroidUniversal {
			s.SetTargetData(platform.TargetAndroid, importmeta.CPUOS{CPU: "ARMv7"})
		}
	case platform.AndroidUniversal, platform.AndroidOpenXR:
		s.SetHost(true, "", "")
	case platform.OSXUniversal:
		s.SetHost(true, "AnyCPU", "OSX")
		s.SetTargetData(editorTarget, importmeta.CPUOS{CPU: "AnyCPU", OS: "OSX"})
	case platform.Win:
		s.SetHost(true, "X86", "Windows")
	case platform.Win64, platform.Win64OpenXR:
		s.SetHost(true, "X86_64", "Windows")
		s.SetTargetData(editorTarget, importmeta.CPUOS{CPU: "X86_64", OS: "Windows"})
	default:
		panic(fmt.Sprintf("compat: no settings for platform %d", int(p)))
	}
	return s
}
