package units

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in      string
		want    Unit
		wantErr bool
	}{
		{"", Pixel, false},
		{"px", Pixel, false},
		{" IN ", Inch, false},
		{"mm", Millimeter, false},
		{"cm", Centimeter, false},
		{"pt", Point, false},
		{"pc", Pica, false},
		{"ft", Foot, false},
		{"furlong", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUnit(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownUnit))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToInches(t *testing.T) {
	tests := []struct {
		unit Unit
		dpi  float64
		in   float64
		want float64
	}{
		{Pixel, 96, 96, 1},
		{Pixel, 300, 150, 0.5},
		{Inch, 0, 2.5, 2.5},
		{Millimeter, 0, 25.4, 1},
		{Centimeter, 0, 5.08, 2},
		{Point, 0, 36, 0.5},
		{Pica, 0, 3, 0.5},
		{Foot, 0, 0.5, 6},
	}

	for _, tt := range tests {
		t.Run(string(tt.unit), func(t *testing.T) {
			conv, err := ToInches(tt.unit, tt.dpi)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, conv(tt.in), 1e-12)
			assert.InDelta(t, 2*conv(tt.in), conv(2*tt.in), 1e-12)
		})
	}
}

func TestToInches_Errors(t *testing.T) {
	_, err := ToInches(Pixel, 0)
	assert.True(t, errors.Is(err, ErrInvalidDPI))

	_, err = ToInches(Pixel, -72)
	assert.True(t, errors.Is(err, ErrInvalidDPI))

	_, err = ToInches(Unit("yd"), 96)
	assert.True(t, errors.Is(err, ErrUnknownUnit))
}
