package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDropsToXRP(t *testing.T) {
	cases := map[uint64]string{
		0:             "0",
		1:             "0.000001",
		1_500_000:     "1.5",
		10_000_000:    "10",
		24_981_836:    "24.981836",
		MaxDrops:      "100000000000",
		1_000_000_001: "1000.000001",
	}
	for drops, want := range cases {
		assert.Equal(t, want, DropsToXRP(drops), "drops %d", drops)
	}
}

func TestXRPToDrops(t *testing.T) {
	cases := map[string]uint64{
		"1.5":       1_500_000,
		"0":         0,
		".5":        500_000,
		"10":        10_000_000,
		"0.000001":  1,
		"2.1000000": 2_100_000,
		" 3 ":       3_000_000,
	}
	for xrp, want := range cases {
		got, err := XRPToDrops(xrp)
		require.NoError(t, err, xrp)
		assert.Equal(t, want, got, xrp)
	}

	for _, bad := range []string{"", "-1", "1.0000001", "1.2.3", "abc", "1e6", "100000000001"} {
		_, err := XRPToDrops(bad)
		assert.Error(t, err, bad)
	}
}

func TestDropsStringToXRP(t *testing.T) {
	got, err := DropsStringToXRP("99999988")
	require.NoError(t, err)
	assert.Equal(t, "99.999988", got)

	_, err = DropsStringToXRP("1.5")
	assert.Error(t, err)
}

func TestDropsRoundTrip(t *testing.T) {
	for _, m := range []uint64{0, 1, 9, 10, 999_999, 1_000_000, 1_234_567, 40_000_000_000, MaxDrops - 1} {
		display := DropsToXRP(m)
		back, err := XRPToDrops(display)
		require.NoError(t, err)
		assert.Equal(t, m, back)
		assert.Equal(t, display, DropsToXRP(back))
	}
}
