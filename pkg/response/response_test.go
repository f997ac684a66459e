package response

import (
	"reflect"
	"testing"
)

func TestCapErrors(t *testing.T) {
	errs := []string{"a", "b", "c", "d", "e"}

	if got := CapErrors(errs, 5); !reflect.DeepEqual(got, errs) {
		t.Errorf("under the cap: %v, want unchanged", got)
	}
	if got := CapErrors(nil, 5); len(got) != 0 {
		t.Errorf("nil input: %v, want empty", got)
	}

	got := CapErrors(errs, 3)
	want := []string{"a", "b", "c", "+2 more"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("capped = %v, want %v", got, want)
	}
}
