package log

import (
	"sync"
	"testing"
)

func TestDefaultLogger(t *testing.T) {
	original := defaultLogger
	defer func() { defaultLogger = original }()

	t.Run("returns configured logger", func(t *testing.T) {
		custom := Discard()
		SetDefaultLogger(custom)

		if DefaultLogger() != custom {
			t.Error("DefaultLogger did not return the configured logger")
		}
	})

	t.Run("initializes lazily", func(t *testing.T) {
		defaultLogger = nil

		first := DefaultLogger()
		if first == nil {
			t.Fatal("DefaultLogger returned nil")
		}
		if DefaultLogger() != first {
			t.Error("DefaultLogger should return the same instance once initialized")
		}
	})
}

func TestDefaultLoggerConcurrentAccess(t *testing.T) {
	original := defaultLogger
	defer func() { defaultLogger = original }()
	SetDefaultLogger(Discard())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if DefaultLogger() == nil {
				t.Error("DefaultLogger returned nil")
			}
		}()
	}
	wg.Wait()
}
