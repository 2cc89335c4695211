package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf_WrappedError(t *testing.T) {
	base := errors.New("connection refused")
	err := Wrap(KindNetwork, base, "failed to fetch feed")

	if KindOf(err) != KindNetwork {
		t.Errorf("Expected network kind, got %s", KindOf(err))
	}

	if !errors.Is(err, base) {
		t.Error("Expected wrapped error to match base via errors.Is")
	}
}

func TestKindOf_NestedWrapping(t *testing.T) {
	base := Wrap(KindStorage, errors.New("disk full"), "failed to store item")
	outer := fmt.Errorf("ingestion failed: %w", base)

	if KindOf(outer) != KindStorage {
		t.Errorf("Expected storage kind through fmt.Errorf wrapping, got %s", KindOf(outer))
	}
}

func TestKindOf_UnclassifiedError(t *testing.T) {
	err := errors.New("something went wrong")

	if KindOf(err) != KindUnknown {
		t.Errorf("Expected unknown kind for plain error, got %s", KindOf(err))
	}
}

func TestWrap_NilError(t *testing.T) {
	if Wrap(KindParse, nil, "should be nil") != nil {
		t.Error("Wrapping nil should return nil")
	}
}

func TestIsKind(t *testing.T) {
	err := New(KindConfig, "missing keywords file")

	if !IsKind(err, KindConfig) {
		t.Error("Expected configuration kind match")
	}
	if IsKind(err, KindNetwork) {
		t.Error("Did not expect network kind match")
	}
}
