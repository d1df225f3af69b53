package tx

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/AlexZinkM/xrp-genie/internal/common"
	"github.com/AlexZinkM/xrp-genie/internal/crypto"
)

// serialized type codes
const (
	stUInt16    = 1
	stUInt32    = 2
	stAmount    = 6
	stBlob      = 7
	stAccountID = 8
	stObject    = 14
	stArray     = 15
)

type fieldID struct {
	typ, nth int
}

var (
	fTransactionType    = fieldID{stUInt16, 2}
	fNetworkID          = fieldID{stUInt32, 1}
	fFlags              = fieldID{stUInt32, 2}
	fSourceTag          = fieldID{stUInt32, 3}
	fSequence           = fieldID{stUInt32, 4}
	fDestinationTag     = fieldID{stUInt32, 14}
	fLastLedgerSequence = fieldID{stUInt32, 27}
	fSetFlag            = fieldID{stUInt32, 33}
	fClearFlag          = fieldID{stUInt32, 34}
	fAmount             = fieldID{stAmount, 1}
	fLimitAmount        = fieldID{stAmount, 3}
	fFee                = fieldID{stAmount, 8}
	fSigningPubKey      = fieldID{stBlob, 3}
	fTxnSignature       = fieldID{stBlob, 4}
	fMemoType           = fieldID{stBlob, 12}
	fMemoData           = fieldID{stBlob, 13}
	fMemoFormat         = fieldID{stBlob, 14}
	fAccount            = fieldID{stAccountID, 1}
	fDestination        = fieldID{stAccountID, 3}
	fMemo               = fieldID{stObject, 10}
	fMemos              = fieldID{stArray, 9}
)

const (
	objectEnd = 0xE1
	arrayEnd  = 0xF1

	amountIssuedBit   uint64 = 1 << 63
	amountPositiveBit uint64 = 1 << 62
	exponentBias             = 97
	mantissaMask      uint64 = 1<<54 - 1
	zeroIssuedAmount         = amountIssuedBit
)

type field struct {
	id   fieldID
	data []byte
}

// fieldList accumulates encoded fields and writes them in canonical order
type fieldList []field

func (l *fieldList) add(id fieldID, data []byte) {
	*l = append(*l, field{id: id, data: data})
}

func (l *fieldList) uint32(id fieldID, v uint32) {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	l.add(id, b)
}

func (l fieldList) bytes() []byte {
	sort.SliceStable(l, func(i, j int) bool {
		if l[i].id.typ != l[j].id.typ {
			return l[i].id.typ < l[j].id.typ
		}
		return l[i].id.nth < l[j].id.nth
	})
	var buf bytes.Buffer
	for _, f := range l {
		buf.Write(fieldHeader(f.id))
		buf.Write(f.data)
	}
	return buf.Bytes()
}

func fieldHeader(id fieldID) []byte {
	switch {
	case id.typ < 16 && id.nth < 16:
		return []byte{byte(id.typ<<4 | id.nth)}
	case id.typ < 16:
		return []byte{byte(id.typ << 4), byte(id.nth)}
	case id.nth < 16:
		return []byte{byte(id.nth), byte(id.typ)}
	}
	return []byte{0, byte(id.typ), byte(id.nth)}
}

// Encode serialises tx in the ledger's canonical binary format.
// With forSigning set the signature field is left out.
func Encode(tx *Transaction, forSigning bool) ([]byte, error) {
	code, ok := typeCodes[tx.TransactionType]
	if !ok {
		return nil, errors.Errorf("transaction type %q cannot be encoded", tx.TransactionType)
	}

	var fields fieldList
	tt := make([]byte, 2)
	binary.BigEndian.PutUint16(tt, code)
	fields.add(fTransactionType, tt)

	if tx.NetworkID != 0 {
		fields.uint32(fNetworkID, tx.NetworkID)
	}
	fields.uint32(fFlags, tx.Flags)
	if tx.SourceTag != nil {
		fields.uint32(fSourceTag, *tx.SourceTag)
	}
	fields.uint32(fSequence, tx.Sequence)
	if tx.DestinationTag != nil {
		fields.uint32(fDestinationTag, *tx.DestinationTag)
	}
	if tx.LastLedgerSequence != 0 {
		fields.uint32(fLastLedgerSequence, tx.LastLedgerSequence)
	}
	if tx.SetFlag != nil {
		fields.uint32(fSetFlag, *tx.SetFlag)
	}
	if tx.ClearFlag != nil {
		fields.uint32(fClearFlag, *tx.ClearFlag)
	}

	for _, a := range []struct {
		id     fieldID
		amount *Amount
	}{{fAmount, tx.Amount}, {fLimitAmount, tx.LimitAmount}} {
		if a.amount == nil {
			continue
		}
		b, err := encodeAmount(a.amount)
		if err != nil {
			return nil, err
		}
		fields.add(a.id, b)
	}

	fee, err := feeAmount(tx.Fee)
	if err != nil {
		return nil, err
	}
	fields.add(fFee, fee)

	if err := fields.blob(fSigningPubKey, tx.SigningPubKey, true); err != nil {
		return nil, err
	}
	if !forSigning && tx.TxnSignature != "" {
		if err := fields.blob(fTxnSignature, tx.TxnSignature, false); err != nil {
			return nil, err
		}
	}

	if tx.Account == "" {
		return nil, errors.New("transaction has no Account")
	}
	if err := fields.account(fAccount, tx.Account); err != nil {
		return nil, err
	}
	if tx.Destination != "" {
		if err := fields.account(fDestination, tx.Destination); err != nil {
			return nil, err
		}
	}

	if len(tx.Memos) > 0 {
		memos, err := encodeMemos(tx.Memos)
		if err != nil {
			return nil, err
		}
		fields.add(fMemos, memos)
	}

	return fields.bytes(), nil
}

func (l *fieldList) blob(id fieldID, hexValue string, allowEmpty bool) error {
	if hexValue == "" && !allowEmpty {
		return nil
	}
	raw, err := hex.DecodeString(hexValue)
	if err != nil {
		return errors.Wrapf(err, "field %d/%d is not hex", id.typ, id.nth)
	}
	l.add(id, append(encodeLength(len(raw)), raw...))
	return nil
}

func (l *fieldList) account(id fieldID, address string) error {
	accountID, err := crypto.DecodeAddress(address)
	if err != nil {
		return err
	}
	l.add(id, append(encodeLength(len(accountID)), accountID...))
	return nil
}

func feeAmount(fee string) ([]byte, error) {
	if fee == "" {
		return nil, errors.New("transaction has no Fee")
	}
	drops, err := strconv.ParseUint(fee, 10, 64)
	if err != nil {
		return nil, errors.Errorf("invalid fee %q", fee)
	}
	return encodeAmount(XRP(drops))
}

func encodeMemos(memos []MemoEnvelope) ([]byte, error) {
	var buf bytes.Buffer
	for _, m := range memos {
		var inner fieldList
		for _, f := range []struct {
			id    fieldID
			value string
		}{{fMemoType, m.Memo.MemoType}, {fMemoData, m.Memo.MemoData}, {fMemoFormat, m.Memo.MemoFormat}} {
			if err := inner.blob(f.id, f.value, false); err != nil {
				return nil, err
			}
		}
		buf.Write(fieldHeader(fMemo))
		buf.Write(inner.bytes())
		buf.WriteByte(objectEnd)
	}
	buf.WriteByte(arrayEnd)
	return buf.Bytes(), nil
}

func encodeAmount(a *Amount) ([]byte, error) {
	out := make([]byte, 8, 48)
	if a.IsNative() {
		if a.Drops > common.MaxDrops {
			return nil, errors.Errorf("amount %d drops exceeds total supply", a.Drops)
		}
		binary.BigEndian.PutUint64(out, a.Drops|amountPositiveBit)
		return out, nil
	}

	v, err := common.ParseIssuedValue(a.Value)
	if err != nil {
		return nil, err
	}
	bits := zeroIssuedAmount
	if !v.IsZero() {
		bits = amountIssuedBit | uint64(v.Exponent+exponentBias)<<54 | v.Mantissa
		if !v.Negative {
			bits |= amountPositiveBit
		}
	}
	binary.BigEndian.PutUint64(out, bits)

	currency, err := currencyBytes(a.Currency)
	if err != nil {
		return nil, err
	}
	issuer, err := crypto.DecodeAddress(a.Issuer)
	if err != nil {
		return nil, err
	}
	out = append(out, currency...)
	return append(out, issuer...), nil
}

func currencyBytes(code string) ([]byte, error) {
	out := make([]byte, 20)
	switch {
	case common.IsHexCurrency(code):
		raw, err := hex.DecodeString(code)
		if err != nil {
			return nil, err
		}
		return raw, nil
	case len(code) == 3 && strings.ToUpper(code) != common.NativeCurrency:
		copy(out[12:], code)
		return out, nil
	}
	encoded, err := common.EncodeCurrency(code)
	if err != nil {
		return nil, err
	}
	return currencyBytes(encoded)
}

// encodeLength writes a variable length prefix
func encodeLength(n int) []byte {
	switch {
	case n <= 192:
		return []byte{byte(n)}
	case n <= 12480:
		n -= 193
		return []byte{byte(193 + n>>8), byte(n & 0xff)}
	}
	n -= 12481
	return []byte{byte(241 + n>>16), byte(n >> 8 & 0xff), byte(n & 0xff)}
}
