package batches

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestStatusNotPatchable(t *testing.T) {
	// Status moves through phase change requests only; neither the patch
	// request nor the repository field set may carry it.
	for _, typ := range []reflect.Type{
		reflect.TypeOf(UpdateRequest{}),
		reflect.TypeOf(UpdateFields{}),
	} {
		if _, found := typ.FieldByName("Status"); found {
			t.Errorf("%s carries a Status field", typ.Name())
		}
	}

	var req UpdateRequest
	body := []byte(`{"name":"Wave 5","status":"completed"}`)
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Name == nil || *req.Name != "Wave 5" {
		t.Errorf("name not bound: %+v", req)
	}
}
