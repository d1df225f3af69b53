package tx

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/AlexZinkM/xrp-genie/internal/crypto"
	"github.com/AlexZinkM/xrp-genie/internal/model"
)

// SignMessage signs message by embedding it in a never-submitted AccountSet memo.
// This is a convention of this library, not a ledger primitive: verifiers must use VerifyMessage.
func SignMessage(kp *crypto.Keypair, message string) (*model.SignedMessage, error) {
	t := NewMessageSign(kp.Address(), kp.PublicKeyHex(), message)
	signed, err := Sign(t, kp)
	if err != nil {
		return nil, err
	}
	return &model.SignedMessage{
		Message:   message,
		Signature: t.TxnSignature,
		PublicKey: t.SigningPubKey,
		TxBlob:    signed.TxBlob,
	}, nil
}

// VerifyMessage checks a SignedMessage produced by SignMessage and returns the signing address
func VerifyMessage(m *model.SignedMessage) (string, error) {
	t, err := DecodeHex(m.TxBlob)
	if err != nil {
		return "", err
	}
	if t.TransactionType != TypeAccountSet || len(t.Memos) != 1 {
		return "", errors.New("blob is not a signed message")
	}
	memo := t.Memos[0].Memo
	if memo.MemoType != hexText(messageMemoType) || memo.MemoData != hexText(m.Message) {
		return "", errors.New("signed message does not match")
	}
	if m.Signature != "" && !strings.EqualFold(m.Signature, t.TxnSignature) {
		return "", errors.New("signature does not match blob")
	}
	if m.PublicKey != "" && !strings.EqualFold(m.PublicKey, t.SigningPubKey) {
		return "", errors.New("public key does not match blob")
	}
	ok, err := VerifySignature(t)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New("invalid signature")
	}
	return t.Account, nil
}
