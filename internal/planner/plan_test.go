package planner

import (
	"testing"

	"github.com/danieljhkim/pluginsync/internal/platform"
)

func TestNewPlan(t *testing.T) {
	plan := NewPlan()

	if plan.Target != nil {
		t.Errorf("expected no target, got %v", plan.Target)
	}
	if plan.Operations == nil {
		t.Error("expected Operations to be initialized")
	}
	if plan.Skipped == nil {
		t.Error("expected Skipped to be initialized")
	}
	if !plan.IsEmpty() {
		t.Error("expected new plan to be empty")
	}
}

func TestPlan_AddOperation(t *testing.T) {
	plan := NewPlan()

	plan.AddOperation(Operation{Type: OpDisable, Package: "1.0.0", Platform: platform.Win64})
	if len(plan.Operations) != 1 {
		t.Errorf("expected 1 operation, got %d", len(plan.Operations))
	}
	if plan.IsEmpty() {
		t.Error("expected plan with an operation not to be empty")
	}

	plan.AddOperation(Operation{Type: OpInstall, Package: "1.2.0", Platform: platform.Win64})
	plan.AddOperation(Operation{Type: OpConfigure, Package: "1.2.0", Platform: platform.Win64})
	if plan.Operations[2].Type != OpConfigure {
		t.Errorf("expected operation type %q, got %q", OpConfigure, plan.Operations[2].Type)
	}
}

func TestPlan_Count(t *testing.T) {
	tests := []struct {
		name string
		ops  []string
		typ  string
		want int
	}{
		{name: "empty", ops: nil, typ: OpDisable, want: 0},
		{name: "only disables", ops: []string{OpDisable, OpDisable}, typ: OpDisable, want: 2},
		{name: "mixed", ops: []string{OpDisable, OpInstall, OpConfigure, OpInstall, OpConfigure}, typ: OpInstall, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := NewPlan()
			for _, typ := range tt.ops {
				plan.AddOperation(Operation{Type: typ})
			}
			if got := plan.Count(tt.typ); got != tt.want {
				t.Errorf("Count(%q) = %d, want %d", tt.typ, got, tt.want)
			}
		})
	}
}

func TestPlan_AddSkip(t *testing.T) {
	plan := NewPlan()
	plan.AddSkip(Skip{Package: "1.0.0", Platform: platform.OSXUniversal, Reason: "artifact not found in package"})

	if len(plan.Skipped) != 1 {
		t.Fatalf("expected 1 skip, got %d", len(plan.Skipped))
	}
	if plan.Skipped[0].Platform != platform.OSXUniversal {
		t.Errorf("expected skipped platform OSXUniversal, got %s", plan.Skipped[0].Platform)
	}
	if !plan.IsEmpty() {
		t.Error("skips alone should not make a plan non-empty")
	}
}

func TestOperationConstants(t *testing.T) {
	if OpDisable != "disable" {
		t.Errorf("OpDisable = %q, want %q", OpDisable, "disable")
	}
	if OpInstall != "install" {
		t.Errorf("OpInstall = %q, want %q", OpInstall, "install")
	}
	if OpConfigure != "configure" {
		t.Errorf("OpConfigure = %q, want %q", OpConfigure, "configure")
	}
}
