package tx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/xrp-genie/internal/model"
)

const (
	alice  = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
	issuer = "rHuGNhqTG32mfmAvWA8hUyWRLV3tCSwKQt"
)

func TestNewPaymentNative(t *testing.T) {
	p, err := NewPayment(alice, &model.PaymentIntent{Destination: issuer, Amount: "1.5"})
	require.NoError(t, err)
	assert.Equal(t, TypePayment, p.TransactionType)
	require.NotNil(t, p.Amount)
	assert.True(t, p.Amount.IsNative())
	assert.Equal(t, uint64(1_500_000), p.Amount.Drops)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"TransactionType":"Payment","Account":"`+alice+`","Destination":"`+issuer+`","Amount":"1500000"}`, string(raw))
}

func TestNewPaymentIssued(t *testing.T) {
	p, err := NewPayment(alice, &model.PaymentIntent{Destination: issuer, Amount: "10.50", Currency: "USDC", Issuer: issuer})
	require.NoError(t, err)
	assert.False(t, p.Amount.IsNative())
	assert.Equal(t, "5553444300000000000000000000000000000000", p.Amount.Currency)
	assert.Equal(t, "10.5", p.Amount.Value)
}

func TestNewPaymentInvalid(t *testing.T) {
	cases := []*model.PaymentIntent{
		{Destination: "nope", Amount: "1"},
		{Destination: issuer, Amount: "0"},
		{Destination: issuer, Amount: "-1"},
		{Destination: issuer, Amount: "1.0000001"},
		{Destination: alice, Amount: "1"},
		{Destination: issuer, Amount: "1", Currency: "USD", Issuer: "bad"},
		{Destination: issuer, Amount: "0", Currency: "USD", Issuer: issuer},
	}
	for _, c := range cases {
		_, err := NewPayment(alice, c)
		assert.Error(t, err, "%+v", c)
	}
}

func TestNewTrustSet(t *testing.T) {
	ts, err := NewTrustSet(alice, &model.TrustLineIntent{Issuer: issuer, Currency: "USDC", Limit: "1000000000"})
	require.NoError(t, err)
	assert.Equal(t, TypeTrustSet, ts.TransactionType)
	assert.Equal(t, TfSetNoRipple, ts.Flags&TfSetNoRipple)
	require.NotNil(t, ts.LimitAmount)
	assert.Equal(t, issuer, ts.LimitAmount.Issuer)
	assert.Equal(t, "1000000000", ts.LimitAmount.Value)
	assert.Equal(t, "5553444300000000000000000000000000000000", ts.LimitAmount.Currency)

	_, err = NewTrustSet(alice, &model.TrustLineIntent{Issuer: issuer, Currency: "USD"})
	assert.Error(t, err)
	_, err = NewTrustSet(alice, &model.TrustLineIntent{Issuer: alice, Currency: "USD", Limit: "1"})
	assert.Error(t, err)
	_, err = NewTrustSet(alice, &model.TrustLineIntent{Issuer: issuer, Currency: "XRP", Limit: "1"})
	assert.Error(t, err)
}

func TestSignInIsNotEncodable(t *testing.T) {
	raw, err := json.Marshal(NewSignIn())
	require.NoError(t, err)
	assert.JSONEq(t, `{"TransactionType":"SignIn"}`, string(raw))

	_, err = Encode(NewSignIn(), false)
	assert.Error(t, err)
}

func TestAmountJSON(t *testing.T) {
	var a Amount
	require.NoError(t, json.Unmarshal([]byte(`"25"`), &a))
	assert.True(t, a.IsNative())
	assert.Equal(t, uint64(25), a.Drops)
	assert.Equal(t, "0.000025", a.Display())

	require.NoError(t, json.Unmarshal([]byte(`{"currency":"USD","issuer":"`+issuer+`","value":"1.2"}`), &a))
	assert.False(t, a.IsNative())
	assert.Equal(t, "1.2", a.Display())

	assert.Error(t, json.Unmarshal([]byte(`"1.5"`), &a))
	assert.Error(t, json.Unmarshal([]byte(`{"value":"1"}`), &a))
}
