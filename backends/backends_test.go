package backends_test

import (
	"errors"
	"testing"

	"github.com/botirk38/playersim/backends"
	"github.com/botirk38/playersim/types"
)

func TestBackendFactory(t *testing.T) {
	factory := &backends.BackendFactory[string, []types.PlayerResult]{}

	for _, bt := range []types.BackendType{types.BackendLRU, types.BackendFIFO, types.BackendLFU} {
		t.Run(string(bt), func(t *testing.T) {
			backend, err := factory.NewBackend(bt, types.BackendConfig{Capacity: 4})
			if err != nil {
				t.Fatalf("Failed to create %s backend: %v", bt, err)
			}
			defer func() { _ = backend.Close() }()
		})
	}
}

func TestBackendErrorCases(t *testing.T) {
	factory := &backends.BackendFactory[string, string]{}

	_, err := factory.NewBackend("unsupported", types.BackendConfig{})
	if !errors.Is(err, backends.ErrUnsupportedBackend) {
		t.Errorf("Expected ErrUnsupportedBackend, got %v", err)
	}

	_, err = factory.NewBackend(types.BackendNone, types.BackendConfig{})
	if !errors.Is(err, backends.ErrUnsupportedBackend) {
		t.Errorf("Expected none to be rejected by the factory, got %v", err)
	}
}
