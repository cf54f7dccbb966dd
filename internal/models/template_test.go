package models

import "testing"

// TestDetectFocus verifies focus classification from tags and equipment.
func TestDetectFocus(t *testing.T) {
	tests := []struct {
		name      string
		tags      []string
		equipment []string
		want      Focus
	}{
		{"no equipment is bodyweight", []string{"push"}, nil, FocusBodyweight},
		{"bodyweight-only equipment", []string{"push"}, []string{"bodyweight"}, FocusBodyweight},
		{"bodyweight case-insensitive", nil, []string{"Bodyweight"}, FocusBodyweight},
		{"power tag", []string{"explosive"}, []string{"barbell"}, FocusPower},
		{"power tag case-insensitive", []string{"Plyometric"}, []string{"box"}, FocusPower},
		{"reactive tag", []string{"reactive"}, []string{"hurdles"}, FocusPower},
		{"default strength", []string{"hinge"}, []string{"barbell"}, FocusStrength},
		{"equipment beats power tag absence", nil, []string{"dumbbell"}, FocusStrength},
		{"no equipment beats power tag", []string{"explosive"}, nil, FocusBodyweight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFocus(tt.tags, tt.equipment); got != tt.want {
				t.Errorf("DetectFocus(%v, %v) = %s, want %s", tt.tags, tt.equipment, got, tt.want)
			}
		})
	}
}
