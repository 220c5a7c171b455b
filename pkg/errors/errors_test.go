package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", fmt.Errorf("parsing limit: %w", ErrInvalidInput), http.StatusBadRequest},
		{"store unavailable", Unavailable("/idx/dict", os.ErrNotExist), http.StatusServiceUnavailable},
		{"timeout", fmt.Errorf("%w: %w", ErrTimeout, context.DeadlineExceeded), http.StatusServiceUnavailable},
		{"corrupt", fmt.Errorf("looking up term: %w", Corruptf("record %d short", 4)), http.StatusInternalServerError},
		{"capacity", CapacityExceeded(12), http.StatusInternalServerError},
		{"app error status wins", New(ErrInvalidInput, http.StatusTeapot, "odd"), http.StatusTeapot},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusCode(tt.err))
		})
	}
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("reading postings: %w", Corruptf("record %d has %d fields", 3, 1))
	assert.True(t, Is(err, ErrCorruptIndex))
	assert.Equal(t, "corrupt index: record 3 has 1 fields", errors.Unwrap(err).Error())

	var appErr *AppError
	assert.True(t, As(err, &appErr))

	unavailable := Unavailable("/idx/map", os.ErrPermission)
	assert.True(t, Is(unavailable, ErrStoreUnavailable))
	assert.True(t, Is(unavailable, os.ErrPermission))
	assert.Contains(t, unavailable.Error(), "/idx/map")
}

func TestCapacityExceededMessage(t *testing.T) {
	err := CapacityExceeded(7)
	assert.True(t, Is(err, ErrCapacityExceeded))
	assert.Contains(t, err.Error(), "capacity 7")
}
