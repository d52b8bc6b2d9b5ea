package layout

import (
	"errors"
	"slices"
	"testing"
)

func TestSequentialPacksTightly(t *testing.T) {
	offsets, total := Sequential([]int{4, 1})
	if !slices.Equal(offsets, []int{0, 4}) {
		t.Fatalf("expected offsets [0 4], got %v", offsets)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
}

func TestSequentialEmpty(t *testing.T) {
	offsets, total := Sequential(nil)
	if offsets != nil || total != 0 {
		t.Fatalf("expected empty layout, got %v %d", offsets, total)
	}
}

func TestUnionTakesLargestVariant(t *testing.T) {
	offsets, total := Union([][]int{{4}, {1, 1}, nil})
	if total != 4 {
		t.Fatalf("expected size 4, got %d", total)
	}
	if !slices.Equal(offsets[1], []int{0, 1}) {
		t.Fatalf("second variant must start at 0, got %v", offsets[1])
	}
	if len(offsets[2]) != 0 {
		t.Fatalf("unit variant must have no offsets, got %v", offsets[2])
	}
}

func TestTargetCheckOverflow(t *testing.T) {
	target := Target{Name: "tiny", PtrSize: 2, MaxSize: 16}
	err := target.Check("Big", 17)
	var le *LayoutError
	if !errors.As(err, &le) || le.Kind != LayoutErrSizeOverflow {
		t.Fatalf("expected overflow error, got %v", err)
	}
	if err := target.Check("Ok", 16); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
