package tx

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"github.com/AlexZinkM/xrp-genie/internal/common"
)

// Amount is either a native amount in drops or an issued-currency amount.
// Native amounts serialise as a drops string, issued ones as {currency, issuer, value}.
type Amount struct {
	Drops    uint64
	Currency string
	Issuer   string
	Value    string
}

// XRP returns a native amount
func XRP(drops uint64) *Amount {
	return &Amount{Drops: drops}
}

// Issued returns an issued-currency amount
func Issued(currency, issuer, value string) *Amount {
	return &Amount{Currency: currency, Issuer: issuer, Value: value}
}

// IsNative reports whether the amount is XRP
func (a *Amount) IsNative() bool {
	return a.Currency == ""
}

// Display returns the human readable value: XRP for native amounts, the value otherwise
func (a *Amount) Display() string {
	if a.IsNative() {
		return common.DropsToXRP(a.Drops)
	}
	return a.Value
}

type issuedJSON struct {
	Currency string `json:"currency"`
	Issuer   string `json:"issuer,omitempty"`
	Value    string `json:"value"`
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if a.IsNative() {
		return json.Marshal(strconv.FormatUint(a.Drops, 10))
	}
	return json.Marshal(issuedJSON{Currency: a.Currency, Issuer: a.Issuer, Value: a.Value})
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var drops string
	if err := json.Unmarshal(data, &drops); err == nil {
		n, err := strconv.ParseUint(drops, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid drops amount %q", drops)
		}
		*a = Amount{Drops: n}
		return nil
	}

	var issued issuedJSON
	if err := json.Unmarshal(data, &issued); err != nil {
		return errors.Wrap(err, "amount is neither drops nor an issued amount")
	}
	if issued.Currency == "" {
		return errors.New("issued amount without currency")
	}
	*a = Amount{Currency: issued.Currency, Issuer: issued.Issuer, Value: issued.Value}
	return nil
}
