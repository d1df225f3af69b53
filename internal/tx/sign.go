package tx

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"

	"github.com/AlexZinkM/xrp-genie/internal/crypto"
)

var (
	prefixTransactionID = []byte{0x54, 0x58, 0x4E, 0x00} // "TXN\0"
	prefixSigning       = []byte{0x53, 0x54, 0x58, 0x00} // "STX\0"
)

// SigningData returns the bytes a single signer signs
func SigningData(t *Transaction) ([]byte, error) {
	body, err := Encode(t, true)
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, prefixSigning...), body...), nil
}

// Hash returns the transaction id of a signed blob
func Hash(blob []byte) string {
	return strings.ToUpper(hex.EncodeToString(crypto.Sha512Half(prefixTransactionID, blob)))
}

// Signed is a signed transaction ready for submission
type Signed struct {
	TxBlob string
	Hash   string
}

// Sign signs t with kp in place and returns the submission blob and its hash
func Sign(t *Transaction, kp *crypto.Keypair) (*Signed, error) {
	if t.Account != kp.Address() {
		return nil, errors.Errorf("key pair does not control account %s", t.Account)
	}
	t.SigningPubKey = kp.PublicKeyHex()
	t.TxnSignature = ""

	data, err := SigningData(t)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode transaction for signing")
	}
	sig, err := kp.Sign(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}
	t.TxnSignature = strings.ToUpper(hex.EncodeToString(sig))

	blob, err := Encode(t, false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode signed transaction")
	}
	return &Signed{
		TxBlob: strings.ToUpper(hex.EncodeToString(blob)),
		Hash:   Hash(blob),
	}, nil
}

// VerifySignature checks the single signature of a decoded transaction
func VerifySignature(t *Transaction) (bool, error) {
	pub, err := hex.DecodeString(t.SigningPubKey)
	if err != nil {
		return false, errors.Wrap(err, "invalid SigningPubKey")
	}
	sig, err := hex.DecodeString(t.TxnSignature)
	if err != nil {
		return false, errors.Wrap(err, "invalid TxnSignature")
	}
	if crypto.AddressFromPublicKey(pub) != t.Account {
		return false, nil
	}
	data, err := SigningData(t)
	if err != nil {
		return false, err
	}
	return crypto.Verify(pub, data, sig), nil
}
