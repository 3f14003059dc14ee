package errors

import (
	"io"
	"testing"
)

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrap(ErrConfigInvalid, "refresh_rate must be positive")
	if !Is(err, ErrConfigInvalid) {
		t.Error("wrapped sentinel must survive errors.Is")
	}
	want := "refresh_rate must be positive: invalid configuration"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("wrapping nil must stay nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("wrapping nil must stay nil")
	}
}

func TestStoreErrorUnwrap(t *testing.T) {
	err := NewStoreError("archive", "s1", "save_equity", io.ErrClosedPipe)
	if !Is(err, io.ErrClosedPipe) {
		t.Error("StoreError must unwrap to its cause")
	}

	var storeErr *StoreError
	if !As(err, &storeErr) {
		t.Fatal("errors.As must find the StoreError")
	}
	if storeErr.Session != "s1" || storeErr.Op != "save_equity" {
		t.Errorf("fields: %+v", storeErr)
	}
}
