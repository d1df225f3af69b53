package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateFee(t *testing.T) {
	assert.Equal(t, uint64(12), estimateFee(10, 10))
	assert.Equal(t, uint64(10), estimateFee(10, 1))
	assert.Equal(t, uint64(6000), estimateFee(10, 5000))
	assert.Equal(t, uint64(13), estimateFee(10, 11))
	assert.Equal(t, uint64(maxFeeDrops), estimateFee(10, 5_000_000))
}

func TestIsFinalPreliminary(t *testing.T) {
	for _, code := range []string{"temBAD_FEE", "tefPAST_SEQ", "telINSUF_FEE_P"} {
		assert.True(t, isFinalPreliminary(code), code)
	}
	for _, code := range []string{"tesSUCCESS", "terQUEUED", "tecNO_LINE"} {
		assert.False(t, isFinalPreliminary(code), code)
	}
}
