package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlindvall/korjournal/internal/domain"
)

func f(v float64) *float64 { return &v }

func TestOdoDelta(t *testing.T) {
	tests := []struct {
		name     string
		startOdo *float64
		endOdo   *float64
		want     *float64
	}{
		{"both present", f(100), f(150), f(50)},
		{"rounded to one decimal", f(100), f(112.345), f(12.3)},
		{"rounds half up", f(0), f(0.25), f(0.3)},
		{"equal readings", f(100), f(100), f(0)},
		{"end before start", f(100), f(90), nil},
		{"missing start", nil, f(150), nil},
		{"missing end", f(100), nil, nil},
		{"both missing", nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.OdoDelta(tt.startOdo, tt.endOdo)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}
