package ik

import (
	"sort"

	"github.com/openmanip/go-armctl/pkg/kinematics"
)

// presets are the named Cartesian targets exposed to callers. All of them
// are reachable and pass the stock safety checker, as do straight-line paths
// between any pair.
var presets = map[string]kinematics.Point{
	"home":    {X: 0, Y: 0.34, Z: 0.30},
	"left":    {X: -0.22, Y: 0.30, Z: 0.26},
	"right":   {X: 0.22, Y: 0.30, Z: 0.26},
	"center":  {X: 0, Y: 0.32, Z: 0.20},
	"high":    {X: 0, Y: 0.28, Z: 0.42},
	"pickup":  {X: 0.16, Y: 0.38, Z: 0.18},
	"forward": {X: 0, Y: 0.42, Z: 0.24},
	"back":    {X: 0, Y: 0.26, Z: 0.36},
}

// Preset looks up a named Cartesian target.
func Preset(name string) (kinematics.Point, bool) {
	p, ok := presets[name]
	return p, ok
}

// PresetNames returns all preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
