package tx

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/xrp-genie/internal/crypto"
	"github.com/AlexZinkM/xrp-genie/internal/model"
)

const genesisSeed = "snoPBrXtMeMyMHUVTgbuqAfg1SUTb"

func TestEncodeLength(t *testing.T) {
	for _, n := range []int{0, 1, 192, 193, 500, 12480, 12481, 20000, 918744} {
		enc := encodeLength(n)
		d := decoder{r: bytes.NewReader(enc)}
		got, err := d.length()
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
	assert.Len(t, encodeLength(192), 1)
	assert.Len(t, encodeLength(193), 2)
	assert.Len(t, encodeLength(12481), 3)
}

func TestFieldHeader(t *testing.T) {
	assert.Equal(t, []byte{0x12}, fieldHeader(fTransactionType))
	assert.Equal(t, []byte{0x20, 0x1B}, fieldHeader(fLastLedgerSequence))
	assert.Equal(t, []byte{0x61}, fieldHeader(fAmount))
	assert.Equal(t, []byte{0x81}, fieldHeader(fAccount))
	assert.Equal(t, []byte{0xF9}, fieldHeader(fMemos))
	assert.Equal(t, []byte{0x01, 0x10}, fieldHeader(fieldID{16, 1}))
	assert.Equal(t, []byte{0x00, 0x10, 0x10}, fieldHeader(fieldID{16, 16}))
}

func TestEncodePaymentLayout(t *testing.T) {
	p, err := NewPayment(alice, &model.PaymentIntent{Destination: issuer, Amount: "1"})
	require.NoError(t, err)
	p.Fee = "12"
	p.Sequence = 7
	p.SigningPubKey = "ED" + "00000000000000000000000000000000000000000000000000000000000000"

	b, err := Encode(p, true)
	require.NoError(t, err)
	// TransactionType=0, Flags=0, Sequence=7
	assert.Equal(t, []byte{0x12, 0x00, 0x00, 0x22, 0, 0, 0, 0, 0x24, 0, 0, 0, 7}, b[:13])
	// Amount: 1,000,000 drops with the positive bit
	assert.Equal(t, []byte{0x61, 0x40, 0, 0, 0, 0, 0x0F, 0x42, 0x40}, b[13:22])
	// Fee: 12 drops
	assert.Equal(t, []byte{0x68, 0x40, 0, 0, 0, 0, 0, 0, 0x0C}, b[22:31])
}

// Published ledger vectors. The Payment is the signing data of a minimal XRP payment,
// the OfferCreate blob and hash come from the serialization walkthrough of the ledger docs.
const (
	vectorPaymentSigningData = "53545800" +
		"120000" +
		"2280000000" +
		"2400000001" +
		"6140000000000003E8" +
		"68400000000000000A" +
		"7321ED5F5AC8B98974A3CA843326D9B88CEBD0560177B973EE0B149F782CFAA06DC66A" +
		"81145B812C9D57731E27A2DA8B1830195F88EF32A3B6" +
		"8314B5F762798A53D543A014CAF8B297CFF8F2F937E8"

	vectorOfferCreateBlob = "120007220008000024001ABED82A2380BF2C2019001ABED764D55920AC93914000" +
		"00000000000000000000000055534400000000000A20B3C85F482532A9578DBB3950B85CA06594D1" +
		"65400000037E11D60068400000000000000A732103EE83BB432547885C219634A1BC407A9DB0474145" +
		"D69737D09CCDC63E1DEE7FE3744630440220143759437C04F7B61F012563AFE90D8DAFC46E86035E1D" +
		"965A9CED282C97D4CE02204CFD241E86F17E011298FC1A39B63386C74306A5DE047E213B0F29EFA457" +
		"1C2C8114DD76483FACDEE26E60D8A586BB58D09F27045C46"
	vectorOfferCreateHash = "73734B611DDA23D3F5F62E20A173B78AB8406AC5015094DA53F53D39B9EDB06C"

	// TakerPays of the OfferCreate: 7072.8 USD issued by rvYAfWj5gh67oV6fW32ZzP3Aw4Eubs59B
	vectorIssuedAmount = "D55920AC93914000" +
		"0000000000000000000000005553440000000000" +
		"0A20B3C85F482532A9578DBB3950B85CA06594D1"
	vectorSigningPubKey = "03EE83BB432547885C219634A1BC407A9DB0474145D69737D09CCDC63E1DEE7FE3"
)

func TestPaymentSigningDataVector(t *testing.T) {
	p := &Transaction{
		TransactionType: TypePayment,
		Account:         "r9LqNeG6qHxjeUocjvVki2XR35weJ9mZgQ",
		Destination:     "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
		Amount:          XRP(1000),
		Fee:             "10",
		Flags:           0x80000000,
		Sequence:        1,
		SigningPubKey:   "ED5F5AC8B98974A3CA843326D9B88CEBD0560177B973EE0B149F782CFAA06DC66A",
		TxnSignature:    "30440220718D264EF05CAED7C781FF6DE298DCAC68D002562C9BF3A07C1E721B420C0DAB02203A5A4779EF4D2CCC7BC3EF886676D803A9981B928D3B8ACA483B80ECA3CD7B9B",
	}

	data, err := SigningData(p)
	require.NoError(t, err)
	assert.Equal(t, vectorPaymentSigningData, strings.ToUpper(hex.EncodeToString(data)))

	// the signed form carries the signature between the public key and the account
	blob, err := Encode(p, false)
	require.NoError(t, err)
	want := strings.Replace(vectorPaymentSigningData[8:], "8114",
		"7446"+p.TxnSignature+"8114", 1)
	assert.Equal(t, want, strings.ToUpper(hex.EncodeToString(blob)))

	decoded, err := Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, p, decoded)
}

func TestTrustSetIssuedAmountVector(t *testing.T) {
	ts := &Transaction{
		TransactionType: TypeTrustSet,
		Account:         "rMBzp8CgpE441cp5PVyA9rpVV7oT8hP3ys",
		LimitAmount:     Issued("USD", "rvYAfWj5gh67oV6fW32ZzP3Aw4Eubs59B", "7072.8"),
		Fee:             "10",
		Flags:           TfSetNoRipple,
		Sequence:        1752792,
		SigningPubKey:   vectorSigningPubKey,
	}

	blob, err := Encode(ts, true)
	require.NoError(t, err)
	want := "120014" +
		"2200020000" +
		"24001ABED8" +
		"63" + vectorIssuedAmount +
		"68400000000000000A" +
		"7321" + vectorSigningPubKey +
		"8114DD76483FACDEE26E60D8A586BB58D09F27045C46"
	assert.Equal(t, want, strings.ToUpper(hex.EncodeToString(blob)))

	// the issued amount bytes are the ones the OfferCreate fixture carries for TakerPays
	assert.Contains(t, vectorOfferCreateBlob, "64"+vectorIssuedAmount)

	decoded, err := Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, "USD", decoded.LimitAmount.Currency)
	assert.Equal(t, "rvYAfWj5gh67oV6fW32ZzP3Aw4Eubs59B", decoded.LimitAmount.Issuer)
	again, err := Encode(decoded, true)
	require.NoError(t, err)
	assert.Equal(t, blob, again)
}

func TestSignedTransactionHashVector(t *testing.T) {
	blob, err := hex.DecodeString(vectorOfferCreateBlob)
	require.NoError(t, err)
	assert.Equal(t, vectorOfferCreateHash, Hash(blob))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tag := uint32(99)
	p, err := NewPayment(alice, &model.PaymentIntent{Destination: issuer, Amount: "2.5", DestinationTag: &tag})
	require.NoError(t, err)
	p.Fee = "10"
	p.Sequence = 5
	p.LastLedgerSequence = 1_000_020
	p.NetworkID = 21338
	p.Memos = []MemoEnvelope{NewMemo("note", "hello")}

	ts, err := NewTrustSet(alice, &model.TrustLineIntent{Issuer: issuer, Currency: "USDC", Limit: "1000000000"})
	require.NoError(t, err)
	ts.Fee = "12"
	ts.Sequence = 6

	usd, err := NewPayment(alice, &model.PaymentIntent{Destination: issuer, Amount: "0.001", Currency: "USD", Issuer: issuer})
	require.NoError(t, err)
	usd.Fee = "12"

	for _, want := range []*Transaction{p, ts, usd} {
		b, err := Encode(want, false)
		require.NoError(t, err)
		got, err := Decode(b)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte{0x12})
	assert.Error(t, err)
	_, err = DecodeHex("zz")
	assert.Error(t, err)
	_, err = Decode([]byte{0x12, 0x00, 0x63})
	assert.Error(t, err)
}

func TestSignAndVerify(t *testing.T) {
	kp, err := crypto.DeriveKeypair(genesisSeed)
	require.NoError(t, err)

	p, err := NewPayment(kp.Address(), &model.PaymentIntent{Destination: issuer, Amount: "1"})
	require.NoError(t, err)
	p.Fee = "12"
	p.Sequence = 1

	signed, err := Sign(p, kp)
	require.NoError(t, err)
	assert.Len(t, signed.Hash, 64)

	decoded, err := DecodeHex(signed.TxBlob)
	require.NoError(t, err)
	ok, err := VerifySignature(decoded)
	require.NoError(t, err)
	assert.True(t, ok)

	decoded.Amount.Drops++
	ok, err = VerifySignature(decoded)
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := NewPayment(issuer, &model.PaymentIntent{Destination: alice, Amount: "1"})
	require.NoError(t, err)
	other.Fee = "12"
	_, err = Sign(other, kp)
	assert.Error(t, err)
}

func TestSignMessage(t *testing.T) {
	for _, kt := range []crypto.KeyType{crypto.Ed25519, crypto.Secp256k1} {
		seed, err := crypto.GenerateSeed(kt)
		require.NoError(t, err)
		kp, err := crypto.DeriveKeypair(seed)
		require.NoError(t, err)

		m, err := SignMessage(kp, "hello ledger")
		require.NoError(t, err)
		assert.Equal(t, "hello ledger", m.Message)
		assert.NotEmpty(t, m.Signature)

		addr, err := VerifyMessage(m)
		require.NoError(t, err)
		assert.Equal(t, kp.Address(), addr)

		tampered := *m
		tampered.Message = "hello ledgeR"
		_, err = VerifyMessage(&tampered)
		assert.Error(t, err)
	}
}
