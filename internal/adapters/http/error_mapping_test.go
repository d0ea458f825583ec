package httpadapter

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/servvia/health-assistant/internal/core/domain"
)

func TestMapErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", domain.WrapError(domain.ErrInvalidInput, "answer query", errors.New("empty")), http.StatusBadRequest},
		{"profile not found", domain.WrapError(domain.ErrProfileNotFound, "profile.get", errors.New("no rows")), http.StatusNotFound},
		{"temporary", domain.WrapError(domain.ErrTemporary, "nats publish", errors.New("no servers")), http.StatusServiceUnavailable},
		{"wrapped deeper", fmt.Errorf("handler: %w", domain.WrapError(domain.ErrInvalidInput, "op", errors.New("bad"))), http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapErrorToHTTPStatus(tt.err); got != tt.want {
				t.Fatalf("mapErrorToHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
