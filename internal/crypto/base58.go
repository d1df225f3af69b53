package crypto

import (
	"bytes"
	"crypto/sha256"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// ledgerAlphabet is the base58 dictionary used for every encoded ledger identifier
var ledgerAlphabet = base58.NewAlphabet("rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz")

var errChecksum = errors.New("checksum mismatch")

func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:4]
}

func encodeCheck(version, payload []byte) string {
	buf := make([]byte, 0, len(version)+len(payload)+4)
	buf = append(buf, version...)
	buf = append(buf, payload...)
	buf = append(buf, checksum(buf)...)
	return base58.EncodeAlphabet(buf, ledgerAlphabet)
}

// decodeCheck decodes s and returns the bytes between the version prefix and the checksum
func decodeCheck(s string, version []byte, payloadLen int) ([]byte, error) {
	raw, err := base58.DecodeAlphabet(s, ledgerAlphabet)
	if err != nil {
		return nil, errors.Wrap(err, "base58 decode")
	}
	if len(raw) != len(version)+payloadLen+4 {
		return nil, errors.Errorf("unexpected length %d", len(raw))
	}
	body, sum := raw[:len(raw)-4], raw[len(raw)-4:]
	if !bytes.Equal(checksum(body), sum) {
		return nil, errChecksum
	}
	if !bytes.Equal(body[:len(version)], version) {
		return nil, errors.New("unexpected version prefix")
	}
	return body[len(version):], nil
}
