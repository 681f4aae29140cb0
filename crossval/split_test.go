package crossval

import (
	"reflect"
	"testing"

	"github.com/YuminosukeSato/cleango/pkg/errors"
)

func TestNewStratifiedKFold_DefaultSplits(t *testing.T) {
	skf := NewStratifiedKFold(0, false, 0)
	if skf.NSplits != 5 {
		t.Errorf("NSplits = %d, want default 5", skf.NSplits)
	}
}

func TestStratifiedKFold_Split_NoShuffle(t *testing.T) {
	// Interleaved labels: class 0 at even indices, class 1 at odd.
	s := []int{0, 1, 0, 1, 0, 1, 0, 1}
	skf := NewStratifiedKFold(2, false, 0)

	folds, err := skf.Split(s)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(folds) != 2 {
		t.Fatalf("got %d folds, want 2", len(folds))
	}

	wantHoldout := [][]int{
		{0, 2, 1, 3},
		{4, 6, 5, 7},
	}
	wantTrain := [][]int{
		{4, 5, 6, 7},
		{0, 1, 2, 3},
	}
	for i := range folds {
		if !reflect.DeepEqual(folds[i].HoldoutIndices, wantHoldout[i]) {
			t.Errorf("fold %d holdout = %v, want %v", i, folds[i].HoldoutIndices, wantHoldout[i])
		}
		if !reflect.DeepEqual(folds[i].TrainIndices, wantTrain[i]) {
			t.Errorf("fold %d train = %v, want %v", i, folds[i].TrainIndices, wantTrain[i])
		}
	}
}

func TestStratifiedKFold_Split_RemainderSpreadsOverLeadingFolds(t *testing.T) {
	// Class 0 has 5 members, class 1 has 3. With 3 splits the extra two
	// class-0 examples land in the first two folds.
	s := []int{0, 0, 0, 0, 0, 1, 1, 1}
	skf := NewStratifiedKFold(3, false, 0)

	folds, err := skf.Split(s)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	wantHoldout := [][]int{
		{0, 1, 5},
		{2, 3, 6},
		{4, 7},
	}
	for i := range folds {
		if !reflect.DeepEqual(folds[i].HoldoutIndices, wantHoldout[i]) {
			t.Errorf("fold %d holdout = %v, want %v", i, folds[i].HoldoutIndices, wantHoldout[i])
		}
	}
}

func TestStratifiedKFold_Split_PartitionsAllSamples(t *testing.T) {
	s := make([]int, 30)
	for i := range s {
		s[i] = i % 3
	}
	skf := NewStratifiedKFold(5, true, 42)

	folds, err := skf.Split(s)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	seen := make([]int, len(s))
	for i, fold := range folds {
		if len(fold.TrainIndices)+len(fold.HoldoutIndices) != len(s) {
			t.Errorf("fold %d covers %d samples, want %d",
				i, len(fold.TrainIndices)+len(fold.HoldoutIndices), len(s))
		}
		for _, idx := range fold.HoldoutIndices {
			seen[idx]++
		}
	}
	for idx, count := range seen {
		if count != 1 {
			t.Errorf("sample %d held out %d times, want exactly once", idx, count)
		}
	}
}

func TestStratifiedKFold_Split_PreservesClassProportions(t *testing.T) {
	// 20 of class 0, 10 of class 1, 5 folds: every holdout should carry
	// exactly 4 and 2.
	s := make([]int, 30)
	for i := 20; i < 30; i++ {
		s[i] = 1
	}
	skf := NewStratifiedKFold(5, true, 7)

	folds, err := skf.Split(s)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	for i, fold := range folds {
		counts := [2]int{}
		for _, idx := range fold.HoldoutIndices {
			counts[s[idx]]++
		}
		if counts[0] != 4 || counts[1] != 2 {
			t.Errorf("fold %d holdout class counts = %v, want [4 2]", i, counts)
		}
	}
}

func TestStratifiedKFold_Split_DeterministicForSeed(t *testing.T) {
	s := make([]int, 40)
	for i := range s {
		s[i] = i % 4
	}

	first, err := NewStratifiedKFold(4, true, 99).Split(s)
	if err != nil {
		t.Fatalf("first Split failed: %v", err)
	}
	second, err := NewStratifiedKFold(4, true, 99).Split(s)
	if err != nil {
		t.Fatalf("second Split failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("same seed produced different folds")
	}
}

func TestStratifiedKFold_Split_Validation(t *testing.T) {
	tests := []struct {
		name    string
		s       []int
		nSplits int
	}{
		{name: "empty labels", s: []int{}, nSplits: 2},
		{name: "negative label", s: []int{0, 1, -1, 0}, nSplits: 2},
		{name: "gap in classes", s: []int{0, 0, 2, 2}, nSplits: 2},
		{name: "class smaller than folds", s: []int{0, 0, 0, 1}, nSplits: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStratifiedKFold(tt.nSplits, false, 0).Split(tt.s)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var vErr *errors.ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("error type = %T, want *ValidationError", err)
			}
		})
	}
}
