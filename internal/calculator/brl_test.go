package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "1350", want: "R$ 1.350,00"},
		{in: "105300", want: "R$ 105.300,00"},
		{in: "16.2", want: "R$ 16,20"},
		{in: "0", want: "R$ 0,00"},
		{in: "1234567.891", want: "R$ 1.234.567,89"},
		{in: "-2", want: "-R$ 2,00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBRL(dec(tt.in)))
		})
	}
}

func TestParseBRL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "R$ 1.350,00", want: "1350"},
		{in: "13,50", want: "13.5"},
		{in: "1350.5", want: "1350.5"},
		{in: "-R$ 2,00", want: "-2"},
		{in: "R$ 1.350", want: "1350"},
		{in: "1.000.000", want: "1000000"},
		{in: "1.5", want: "1.5"},
		{in: "1.3500", want: "1.35"},
		{in: "R$ 105.300,00", want: "105300"},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBRL(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tt.want)), "ParseBRL(%q) = %s, want %s", tt.in, got, tt.want)
		})
	}
}

func TestBRLRoundTrip(t *testing.T) {
	got, err := ParseBRL(FormatBRL(dec("4321.09")))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("4321.09")))
}
