package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecksToDust(t *testing.T) {
	assert.Equal(t, "0.000000000000001", SpecksToDust(1))
	assert.Equal(t, "1.000000000000000", SpecksToDust(1_000_000_000_000_000))
	assert.Equal(t, "2.500000000000000", SpecksToDust(2_500_000_000_000_000))
	assert.Equal(t, "0.000000000000000", SpecksToDust(0))
}

func TestGroupThousands(t *testing.T) {
	tests := map[uint64]string{
		0:          "0",
		999:        "999",
		1000:       "1,000",
		12500:      "12,500",
		1234567:    "1,234,567",
		1000000000: "1,000,000,000",
	}
	for n, want := range tests {
		assert.Equal(t, want, GroupThousands(n))
	}
}

func TestParseAmount(t *testing.T) {
	n, err := ParseAmount(" 5000 ")
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), n)

	for _, bad := range []string{"", "-1", "1.5", "lots"} {
		_, err := ParseAmount(bad)
		assert.Error(t, err, bad)
	}
}

func TestNormalizeHexSeed(t *testing.T) {
	seed, err := NormalizeHexSeed("  0xABCDEF0123456789ABCDEF0123456789 ")
	require.NoError(t, err)
	assert.Equal(t, "abcdef0123456789abcdef0123456789", seed)

	for _, bad := range []string{"", "0x", "zz", "00", "0011223344556677"} {
		_, err := NormalizeHexSeed(bad)
		assert.Error(t, err, bad)
	}
}
