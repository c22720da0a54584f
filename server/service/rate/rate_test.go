package rate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestResolve(t *testing.T) {
	tests := []struct {
		name                      string
		client, employee, manager *float64
		want                      float64
	}{
		{"client wins", ptr(55), ptr(42), ptr(37), 55},
		{"zero client falls through", ptr(0), ptr(42), ptr(37), 42},
		{"nil client falls through", nil, ptr(42), ptr(37), 42},
		{"manager fallback", nil, nil, ptr(37), 37},
		{"zero employee falls through", nil, ptr(0), ptr(37), 37},
		{"zero manager is kept", nil, nil, ptr(0), 0},
		{"nothing set", nil, nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.client, tt.employee, tt.manager))
		})
	}
}
