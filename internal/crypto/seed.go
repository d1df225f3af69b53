package crypto

import (
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
)

// KeyType is the signature algorithm of a key pair
type KeyType string

const (
	Ed25519   KeyType = "ed25519"
	Secp256k1 KeyType = "secp256k1"
)

const entropyLen = 16

var (
	secp256k1SeedVersion = []byte{0x21}
	ed25519SeedVersion   = []byte{0x01, 0xE1, 0x4B}
)

// EncodeSeed encodes 16 bytes of entropy as a family seed ("s..." or "sEd...")
func EncodeSeed(entropy []byte, keyType KeyType) (string, error) {
	if len(entropy) != entropyLen {
		return "", errors.Errorf("seed entropy must be %d bytes", entropyLen)
	}
	switch keyType {
	case Ed25519:
		return encodeCheck(ed25519SeedVersion, entropy), nil
	case Secp256k1:
		return encodeCheck(secp256k1SeedVersion, entropy), nil
	}
	return "", errors.Errorf("unknown key type %q", keyType)
}

// DecodeSeed returns the entropy of a family seed and the key type it encodes
func DecodeSeed(seed string) ([]byte, KeyType, error) {
	if entropy, err := decodeCheck(seed, ed25519SeedVersion, entropyLen); err == nil {
		return entropy, Ed25519, nil
	}
	entropy, err := decodeCheck(seed, secp256k1SeedVersion, entropyLen)
	if err != nil {
		return nil, "", errors.Wrap(err, "invalid seed")
	}
	return entropy, Secp256k1, nil
}

// GenerateSeed creates a new random family seed
func GenerateSeed(keyType KeyType) (string, error) {
	return generateSeed(rand.Reader, keyType)
}

func generateSeed(r io.Reader, keyType KeyType) (string, error) {
	entropy := make([]byte, entropyLen)
	if _, err := io.ReadFull(r, entropy); err != nil {
		return "", errors.Wrap(err, "failed to read entropy")
	}
	return EncodeSeed(entropy, keyType)
}
