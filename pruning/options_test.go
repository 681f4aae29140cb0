package pruning

import "testing"

func TestMethodNames(t *testing.T) {
	if got := ByNoiseRate.String(); got != "prune_by_noise_rate" {
		t.Errorf("ByNoiseRate = %q", got)
	}
	if got := ByClass.String(); got != "prune_by_class" {
		t.Errorf("ByClass = %q", got)
	}
	if got := Both.String(); got != "both" {
		t.Errorf("Both = %q", got)
	}
	if got := InverseNMDotS.String(); got != "inverse_nm_dot_s" {
		t.Errorf("InverseNMDotS = %q", got)
	}
	if got := CalibrateConfidentJoint.String(); got != "calibrate_confident_joint" {
		t.Errorf("CalibrateConfidentJoint = %q", got)
	}
}

func TestOptionsNormalized(t *testing.T) {
	got := Options{}.normalized()
	if got.FracNoise != 1 {
		t.Errorf("FracNoise = %v, want 1", got.FracNoise)
	}
	if got.MinExamplesPerClass != 5 {
		t.Errorf("MinExamplesPerClass = %d, want 5", got.MinExamplesPerClass)
	}

	kept := Options{FracNoise: 0.3, MinExamplesPerClass: 1}.normalized()
	if kept.FracNoise != 0.3 {
		t.Errorf("FracNoise = %v, want 0.3", kept.FracNoise)
	}
	if kept.MinExamplesPerClass != 1 {
		t.Errorf("MinExamplesPerClass = %d, want 1", kept.MinExamplesPerClass)
	}
}
