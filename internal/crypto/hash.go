package crypto

import (
	"crypto/sha256"
	"crypto/sha512"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // account ids are defined over RIPEMD-160
)

// Sha512Half returns the first 32 bytes of SHA-512, the ledger's standard hash
func Sha512Half(data ...[]byte) []byte {
	h := sha512.New()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)[:32]
}

// AccountID returns RIPEMD160(SHA256(publicKey))
func AccountID(publicKey []byte) []byte {
	sum := sha256.Sum256(publicKey)
	r := ripemd160.New()
	r.Write(sum[:])
	return r.Sum(nil)
}
