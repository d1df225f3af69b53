package crypto

import (
	"crypto/ed25519"
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pkg/errors"
)

const ed25519Prefix = 0xED

// Keypair is a derived signing key. The private half never leaves the process.
type Keypair struct {
	Type    KeyType
	Public  []byte // 33 bytes, 0xED prefixed for ed25519
	private []byte // 32 bytes
}

// DeriveKeypair derives the account key pair of a family seed
func DeriveKeypair(seed string) (*Keypair, error) {
	entropy, keyType, err := DecodeSeed(seed)
	if err != nil {
		return nil, err
	}
	if keyType == Ed25519 {
		return ed25519Keypair(entropy), nil
	}
	return secp256k1Keypair(entropy)
}

func ed25519Keypair(entropy []byte) *Keypair {
	priv := ed25519.NewKeyFromSeed(Sha512Half(entropy))
	pub := append([]byte{ed25519Prefix}, priv.Public().(ed25519.PublicKey)...)
	return &Keypair{Type: Ed25519, Public: pub, private: priv.Seed()}
}

// secp256k1Keypair follows the family generator: a root key from the seed plus an
// intermediate key derived from the root public key, summed mod n.
func secp256k1Keypair(entropy []byte) (*Keypair, error) {
	root, err := deriveScalar(entropy, nil)
	if err != nil {
		return nil, err
	}
	rootPub := secp256k1.NewPrivateKey(root).PubKey().SerializeCompressed()

	// account index 0
	inter, err := deriveScalar(rootPub, []byte{0, 0, 0, 0})
	if err != nil {
		return nil, err
	}

	var sum secp256k1.ModNScalar
	sum.Set(root).Add(inter)
	priv := secp256k1.NewPrivateKey(&sum)
	b := priv.Key.Bytes()
	return &Keypair{
		Type:    Secp256k1,
		Public:  priv.PubKey().SerializeCompressed(),
		private: b[:],
	}, nil
}

func deriveScalar(base, account []byte) (*secp256k1.ModNScalar, error) {
	seq := make([]byte, 4)
	for i := uint32(0); i < 0xffffffff; i++ {
		binary.BigEndian.PutUint32(seq, i)
		var k secp256k1.ModNScalar
		overflow := k.SetByteSlice(Sha512Half(base, account, seq))
		if !overflow && !k.IsZero() {
			return &k, nil
		}
	}
	return nil, errors.New("no valid secp256k1 scalar")
}

// Address returns the classic address of the key pair
func (k *Keypair) Address() string {
	return AddressFromPublicKey(k.Public)
}

// PublicKeyHex returns the public key as upper-case hex
func (k *Keypair) PublicKeyHex() string {
	return strings.ToUpper(hex.EncodeToString(k.Public))
}

// PrivateKeyHex returns the 33 byte private key form: "ED" or "00" followed by 64 hex digits
func (k *Keypair) PrivateKeyHex() string {
	prefix := "00"
	if k.Type == Ed25519 {
		prefix = "ED"
	}
	return prefix + strings.ToUpper(hex.EncodeToString(k.private))
}

// Sign signs the signing data of a transaction.
// ed25519 signs the data itself, secp256k1 signs its SHA-512Half with a DER encoded signature.
func (k *Keypair) Sign(message []byte) ([]byte, error) {
	if len(k.private) == 0 {
		return nil, errors.New("key material has been cleared")
	}
	switch k.Type {
	case Ed25519:
		return ed25519.Sign(ed25519.NewKeyFromSeed(k.private), message), nil
	case Secp256k1:
		priv := secp256k1.PrivKeyFromBytes(k.private)
		return ecdsa.Sign(priv, Sha512Half(message)).Serialize(), nil
	}
	return nil, errors.Errorf("unknown key type %q", k.Type)
}

// Zero wipes the private key
func (k *Keypair) Zero() {
	for i := range k.private {
		k.private[i] = 0
	}
	k.private = nil
}

// Verify checks signature over message for a 33 byte ledger public key
func Verify(publicKey, message, signature []byte) bool {
	if len(publicKey) == 33 && publicKey[0] == ed25519Prefix {
		return ed25519.Verify(ed25519.PublicKey(publicKey[1:]), message, signature)
	}
	pub, err := secp256k1.ParsePubKey(publicKey)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return false
	}
	return sig.Verify(Sha512Half(message), pub)
}
