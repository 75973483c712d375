package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openmanip/go-armctl/pkg/joint"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arm.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProfile_Defaults(t *testing.T) {
	path := writeProfile(t, "{}\n")

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}

	limits := p.JointLimits()
	if limits != joint.DefaultLimits() {
		t.Errorf("limits = %+v, want defaults", limits)
	}
	checker := p.Checker()
	if checker.BaseRadius != 0.09 || checker.Clearance != 0.05 {
		t.Errorf("geometry = %v/%v, want stock", checker.BaseRadius, checker.Clearance)
	}
	if len(p.SequenceLibrary()) == 0 {
		t.Error("sequence library empty, want built-ins")
	}
}

func TestLoadProfile_Overrides(t *testing.T) {
	path := writeProfile(t, `
joints:
  - {min: -170, max: 170}
  - {min: -85, max: 85}
  - {min: -120, max: 120}
  - {min: -180, max: 180}
  - {min: -90, max: 90}
  - {min: -180, max: 180}
coupling:
  shoulder_elbow_min: -150
  shoulder_elbow_max: 150
  elbow_forward_max: 110
geometry:
  base_radius: 0.12
  clearance: 0.08
sequences:
  - name: bow
    keyframes:
      - angles: [0, 40, 60, 0, -10, 0]
        duration_ms: 500
        gripper: true
      - angles: [0, 0, 0, 0, 0, 0]
        duration_ms: 800
`)

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}

	limits := p.JointLimits()
	if limits.Joints[joint.Base].Min != -170 || limits.Joints[joint.Shoulder].Max != 85 {
		t.Errorf("joint ranges not applied: %+v", limits.Joints)
	}
	if limits.ShoulderElbowMax != 150 || limits.ElbowForwardMax != 110 {
		t.Errorf("coupling not applied: %+v", limits)
	}
	// Unset coupling field keeps its default.
	if limits.WristCoupledMax != 180 {
		t.Errorf("WristCoupledMax = %v, want default 180", limits.WristCoupledMax)
	}

	checker := p.Checker()
	if checker.BaseRadius != 0.12 || checker.Clearance != 0.08 {
		t.Errorf("geometry = %v/%v", checker.BaseRadius, checker.Clearance)
	}

	lib := p.SequenceLibrary()
	seq, ok := lib.Get("bow")
	if !ok {
		t.Fatal("bow sequence missing")
	}
	if len(seq.Keyframes) != 2 {
		t.Fatalf("bow has %d keyframes, want 2", len(seq.Keyframes))
	}
	kf := seq.Keyframes[0]
	if kf.Pose != (joint.Vector{0, 40, 60, 0, -10, 0}) {
		t.Errorf("keyframe pose = %v", kf.Pose)
	}
	if kf.Gripper == nil || !*kf.Gripper {
		t.Error("keyframe gripper not set")
	}
	if seq.Keyframes[1].Gripper != nil {
		t.Error("second keyframe gripper should be nil")
	}
	// Built-ins survive alongside the override.
	if _, ok := lib.Get("wave"); !ok {
		t.Error("built-in wave dropped")
	}
}

func TestLoadProfile_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad joint count": `
joints:
  - {min: -10, max: 10}
`,
		"inverted range": `
joints:
  - {min: 10, max: -10}
  - {min: -85, max: 85}
  - {min: -120, max: 120}
  - {min: -180, max: 180}
  - {min: -90, max: 90}
  - {min: -180, max: 180}
`,
		"empty sequence name": `
sequences:
  - name: ""
    keyframes:
      - angles: [0, 0, 0, 0, 0, 0]
        duration_ms: 100
`,
		"no keyframes": `
sequences:
  - name: empty
    keyframes: []
`,
		"zero duration": `
sequences:
  - name: bad
    keyframes:
      - angles: [0, 0, 0, 0, 0, 0]
        duration_ms: 0
`,
		"not yaml": "joints: [unclosed\n",
	}
	for name, content := range cases {
		path := writeProfile(t, content)
		if _, err := LoadProfile(path); err == nil {
			t.Errorf("%s: accepted, want error", name)
		}
	}
}

func TestLoadProfile_MissingFile(t *testing.T) {
	if _, err := LoadProfile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("ARMCTL_HTTP_PORT", "")
	t.Setenv("ARMCTL_LOG_LEVEL", "")

	if got := HTTPPort(); got != DefaultHTTPPort {
		t.Errorf("HTTPPort = %q, want %q", got, DefaultHTTPPort)
	}
	if got := LogLevel(); got != "info" {
		t.Errorf("LogLevel = %q, want info", got)
	}

	t.Setenv("ARMCTL_HTTP_PORT", "9999")
	if got := HTTPPort(); got != "9999" {
		t.Errorf("HTTPPort = %q, want 9999", got)
	}
}
