package crypto

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const accountIDLen = 20

var (
	accountVersion = []byte{0x00}

	xAddressMainnet = []byte{0x05, 0x44}
	xAddressTestnet = []byte{0x04, 0x93}
)

// EncodeAddress encodes a 20 byte account id as a classic "r..." address
func EncodeAddress(accountID []byte) (string, error) {
	if len(accountID) != accountIDLen {
		return "", errors.Errorf("account id must be %d bytes, got %d", accountIDLen, len(accountID))
	}
	return encodeCheck(accountVersion, accountID), nil
}

// AddressFromPublicKey derives the classic address of a 33 byte public key
func AddressFromPublicKey(publicKey []byte) string {
	addr, _ := EncodeAddress(AccountID(publicKey))
	return addr
}

// DecodeAddress returns the 20 byte account id of a classic address
func DecodeAddress(address string) ([]byte, error) {
	id, err := decodeCheck(address, accountVersion, accountIDLen)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid address %q", address)
	}
	return id, nil
}

// IsValidAddress reports whether address is a well formed classic address
func IsValidAddress(address string) bool {
	_, err := DecodeAddress(address)
	return err == nil
}

// EncodeXAddress packs a classic address and optional destination tag into the X-address form
func EncodeXAddress(address string, tag *uint32, testnet bool) (string, error) {
	id, err := DecodeAddress(address)
	if err != nil {
		return "", err
	}
	prefix := xAddressMainnet
	if testnet {
		prefix = xAddressTestnet
	}

	payload := make([]byte, 0, accountIDLen+9)
	payload = append(payload, id...)
	tail := make([]byte, 9)
	if tag != nil {
		tail[0] = 1
		binary.LittleEndian.PutUint32(tail[1:5], *tag)
	}
	payload = append(payload, tail...)
	return encodeCheck(prefix, payload), nil
}

// DecodeXAddress unpacks an X-address into its classic address, tag and network
func DecodeXAddress(xAddress string) (address string, tag *uint32, testnet bool, err error) {
	body, err := decodeCheck(xAddress, xAddressMainnet, accountIDLen+9)
	if err != nil {
		body, err = decodeCheck(xAddress, xAddressTestnet, accountIDLen+9)
		if err != nil {
			return "", nil, false, errors.Wrapf(err, "invalid x-address %q", xAddress)
		}
		testnet = true
	}

	address, err = EncodeAddress(body[:accountIDLen])
	if err != nil {
		return "", nil, false, err
	}
	tail := body[accountIDLen:]
	switch tail[0] {
	case 0:
	case 1:
		t := binary.LittleEndian.Uint32(tail[1:5])
		tag = &t
	default:
		return "", nil, false, errors.Errorf("invalid x-address flag %d", tail[0])
	}
	return address, tag, testnet, nil
}
