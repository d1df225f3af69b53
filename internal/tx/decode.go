package tx

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/AlexZinkM/xrp-genie/internal/common"
	"github.com/AlexZinkM/xrp-genie/internal/crypto"
)

var typeNames = func() map[uint16]Type {
	m := make(map[uint16]Type, len(typeCodes))
	for name, code := range typeCodes {
		m[code] = name
	}
	return m
}()

type decoder struct {
	r *bytes.Reader
}

// Decode parses a canonical binary transaction. Only the fields this package
// produces are understood, anything else is an error.
func Decode(blob []byte) (*Transaction, error) {
	d := decoder{r: bytes.NewReader(blob)}
	t := &Transaction{}
	for d.r.Len() > 0 {
		id, err := d.header()
		if err != nil {
			return nil, err
		}
		if err := d.field(t, id); err != nil {
			return nil, errors.Wrapf(err, "field %d/%d", id.typ, id.nth)
		}
	}
	if t.TransactionType == "" {
		return nil, errors.New("blob has no TransactionType")
	}
	return t, nil
}

// DecodeHex parses a hex encoded blob
func DecodeHex(blob string) (*Transaction, error) {
	raw, err := hex.DecodeString(blob)
	if err != nil {
		return nil, errors.Wrap(err, "blob is not hex")
	}
	return Decode(raw)
}

func (d decoder) next() (byte, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, errors.New("unexpected end of blob")
	}
	return b, nil
}

func (d decoder) read(n int) ([]byte, error) {
	if n > d.r.Len() {
		return nil, errors.New("unexpected end of blob")
	}
	out := make([]byte, n)
	_, _ = d.r.Read(out)
	return out, nil
}

func (d decoder) header() (fieldID, error) {
	b, err := d.next()
	if err != nil {
		return fieldID{}, err
	}
	id := fieldID{typ: int(b >> 4), nth: int(b & 0x0f)}
	if id.typ == 0 {
		t, err := d.next()
		if err != nil {
			return fieldID{}, err
		}
		id.typ = int(t)
	}
	if id.nth == 0 {
		n, err := d.next()
		if err != nil {
			return fieldID{}, err
		}
		id.nth = int(n)
	}
	return id, nil
}

func (d decoder) length() (int, error) {
	b1, err := d.next()
	if err != nil {
		return 0, err
	}
	switch {
	case b1 <= 192:
		return int(b1), nil
	case b1 <= 240:
		b2, err := d.next()
		if err != nil {
			return 0, err
		}
		return 193 + int(b1-193)*256 + int(b2), nil
	}
	rest, err := d.read(2)
	if err != nil {
		return 0, err
	}
	return 12481 + int(b1-241)*65536 + int(rest[0])*256 + int(rest[1]), nil
}

func (d decoder) uint32() (uint32, error) {
	b, err := d.read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d decoder) blob() (string, error) {
	n, err := d.length()
	if err != nil {
		return "", err
	}
	b, err := d.read(n)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

func (d decoder) account() (string, error) {
	n, err := d.length()
	if err != nil {
		return "", err
	}
	b, err := d.read(n)
	if err != nil {
		return "", err
	}
	return crypto.EncodeAddress(b)
}

func (d decoder) amount() (*Amount, error) {
	head, err := d.read(8)
	if err != nil {
		return nil, err
	}
	bits := binary.BigEndian.Uint64(head)
	if bits&amountIssuedBit == 0 {
		return XRP(bits &^ amountPositiveBit), nil
	}

	rest, err := d.read(40)
	if err != nil {
		return nil, err
	}
	value := "0"
	if bits != zeroIssuedAmount {
		v := common.IssuedValue{
			Mantissa: bits & mantissaMask,
			Exponent: int(bits>>54&0xff) - exponentBias,
			Negative: bits&amountPositiveBit == 0,
		}
		value = v.String()
	}
	issuer, err := crypto.EncodeAddress(rest[20:])
	if err != nil {
		return nil, err
	}
	return Issued(currencyCode(rest[:20]), issuer, value), nil
}

// currencyCode returns the three letter form for standard codes and hex otherwise
func currencyCode(raw []byte) string {
	standard := true
	for i, b := range raw {
		if (i < 12 || i > 14) && b != 0 {
			standard = false
			break
		}
	}
	if standard && raw[12] != 0 {
		return string(raw[12:15])
	}
	return strings.ToUpper(hex.EncodeToString(raw))
}

func (d decoder) field(t *Transaction, id fieldID) error {
	var err error
	switch id {
	case fTransactionType:
		b, rerr := d.read(2)
		if rerr != nil {
			return rerr
		}
		name, ok := typeNames[binary.BigEndian.Uint16(b)]
		if !ok {
			return errors.Errorf("unknown transaction type %d", binary.BigEndian.Uint16(b))
		}
		t.TransactionType = name
	case fNetworkID:
		t.NetworkID, err = d.uint32()
	case fFlags:
		t.Flags, err = d.uint32()
	case fSequence:
		t.Sequence, err = d.uint32()
	case fLastLedgerSequence:
		t.LastLedgerSequence, err = d.uint32()
	case fSourceTag, fDestinationTag, fSetFlag, fClearFlag:
		v, rerr := d.uint32()
		if rerr != nil {
			return rerr
		}
		switch id {
		case fSourceTag:
			t.SourceTag = &v
		case fDestinationTag:
			t.DestinationTag = &v
		case fSetFlag:
			t.SetFlag = &v
		default:
			t.ClearFlag = &v
		}
	case fAmount:
		t.Amount, err = d.amount()
	case fLimitAmount:
		t.LimitAmount, err = d.amount()
	case fFee:
		fee, rerr := d.amount()
		if rerr != nil {
			return rerr
		}
		if !fee.IsNative() {
			return errors.New("fee must be native")
		}
		t.Fee = strconv.FormatUint(fee.Drops, 10)
	case fSigningPubKey:
		t.SigningPubKey, err = d.blob()
	case fTxnSignature:
		t.TxnSignature, err = d.blob()
	case fAccount:
		t.Account, err = d.account()
	case fDestination:
		t.Destination, err = d.account()
	case fMemos:
		t.Memos, err = d.memos()
	default:
		return errors.New("unsupported field")
	}
	return err
}

func (d decoder) memos() ([]MemoEnvelope, error) {
	var out []MemoEnvelope
	for {
		b, err := d.next()
		if err != nil {
			return nil, err
		}
		if b == arrayEnd {
			return out, nil
		}
		if err := d.r.UnreadByte(); err != nil {
			return nil, err
		}
		id, err := d.header()
		if err != nil {
			return nil, err
		}
		if id != fMemo {
			return nil, errors.Errorf("unexpected array element %d/%d", id.typ, id.nth)
		}
		memo, err := d.memo()
		if err != nil {
			return nil, err
		}
		out = append(out, MemoEnvelope{Memo: memo})
	}
}

func (d decoder) memo() (Memo, error) {
	var m Memo
	for {
		b, err := d.next()
		if err != nil {
			return m, err
		}
		if b == objectEnd {
			return m, nil
		}
		if err := d.r.UnreadByte(); err != nil {
			return m, err
		}
		id, err := d.header()
		if err != nil {
			return m, err
		}
		v, err := d.blob()
		if err != nil {
			return m, err
		}
		switch id {
		case fMemoType:
			m.MemoType = v
		case fMemoData:
			m.MemoData = v
		case fMemoFormat:
			m.MemoFormat = v
		default:
			return m, errors.Errorf("unexpected memo field %d/%d", id.typ, id.nth)
		}
	}
}
