package crypto

import (
	"bytes"
	"strings"
	"testing"

	"github.com/AlexZinkM/xrp-genie/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// genesis account of every fresh ledger, derived from "masterpassphrase"
const (
	genesisSeed    = "snoPBrXtMeMyMHUVTgbuqAfg1SUTb"
	genesisAddress = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
)

func TestDeriveKeypairSecp256k1(t *testing.T) {
	kp, err := DeriveKeypair(genesisSeed)
	require.NoError(t, err)
	assert.Equal(t, Secp256k1, kp.Type)
	assert.Equal(t, genesisAddress, kp.Address())
	assert.Len(t, kp.Public, 33)
	assert.True(t, strings.HasPrefix(kp.PrivateKeyHex(), "00"))
	assert.Len(t, kp.PrivateKeyHex(), 66)
}

func TestDeriveKeypairEd25519(t *testing.T) {
	seed, err := EncodeSeed(bytes.Repeat([]byte{7}, 16), Ed25519)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(seed, "sEd"))

	kp, err := DeriveKeypair(seed)
	require.NoError(t, err)
	assert.Equal(t, Ed25519, kp.Type)
	assert.Equal(t, byte(0xED), kp.Public[0])
	assert.True(t, strings.HasPrefix(kp.PrivateKeyHex(), "ED"))

	again, err := DeriveKeypair(seed)
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), again.Address())
}

func TestSeedRoundTrip(t *testing.T) {
	for _, kt := range []KeyType{Ed25519, Secp256k1} {
		seed, err := GenerateSeed(kt)
		require.NoError(t, err)

		_, got, err := DecodeSeed(seed)
		require.NoError(t, err)
		assert.Equal(t, kt, got)
	}

	_, _, err := DecodeSeed("sNotARealSeed")
	assert.Error(t, err)
	_, _, err = DecodeSeed(genesisAddress)
	assert.Error(t, err)
}

func TestSignVerify(t *testing.T) {
	for _, kt := range []KeyType{Ed25519, Secp256k1} {
		seed, err := GenerateSeed(kt)
		require.NoError(t, err)
		kp, err := DeriveKeypair(seed)
		require.NoError(t, err)

		msg := []byte("STX\x00payload")
		sig, err := kp.Sign(msg)
		require.NoError(t, err)
		assert.True(t, Verify(kp.Public, msg, sig), kt)
		assert.False(t, Verify(kp.Public, []byte("other"), sig), kt)

		kp.Zero()
		_, err = kp.Sign(msg)
		assert.Error(t, err)
	}
}

func TestAddress(t *testing.T) {
	assert.True(t, IsValidAddress(genesisAddress))
	assert.False(t, IsValidAddress("rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTX"))
	assert.False(t, IsValidAddress(""))

	id, err := DecodeAddress(genesisAddress)
	require.NoError(t, err)
	assert.Len(t, id, 20)

	back, err := EncodeAddress(id)
	require.NoError(t, err)
	assert.Equal(t, genesisAddress, back)
}

func TestXAddress(t *testing.T) {
	tag := uint32(12345)
	for _, testnet := range []bool{true, false} {
		x, err := EncodeXAddress(genesisAddress, &tag, testnet)
		require.NoError(t, err)
		if testnet {
			assert.True(t, strings.HasPrefix(x, "T"))
		} else {
			assert.True(t, strings.HasPrefix(x, "X"))
		}

		addr, gotTag, gotTestnet, err := DecodeXAddress(x)
		require.NoError(t, err)
		assert.Equal(t, genesisAddress, addr)
		require.NotNil(t, gotTag)
		assert.Equal(t, tag, *gotTag)
		assert.Equal(t, testnet, gotTestnet)
	}

	x, err := EncodeXAddress(genesisAddress, nil, true)
	require.NoError(t, err)
	_, gotTag, _, err := DecodeXAddress(x)
	require.NoError(t, err)
	assert.Nil(t, gotTag)
}

func TestWalletFromSeed(t *testing.T) {
	w, kp, err := WalletFromSeed(genesisSeed, model.NetworkTestnet)
	require.NoError(t, err)
	assert.Equal(t, genesisAddress, w.Address)
	assert.Equal(t, genesisAddress, w.ClassicAddress)
	assert.Equal(t, kp.PublicKeyHex(), w.PublicKey)
	assert.True(t, w.HasKeyMaterial())
	assert.False(t, w.Public().HasKeyMaterial())

	w, _, err = GenerateWallet(Ed25519, model.NetworkTestnet)
	require.NoError(t, err)
	assert.True(t, IsValidAddress(w.Address))
}
