package model

// Wallet is the account identity held by a signing backend.
// Key material is only present for identities owned by the local-key backend.
type Wallet struct {
	Address        string `json:"address"`
	ClassicAddress string `json:"classicAddress,omitempty"`
	XAddress       string `json:"xAddress,omitempty"`
	Seed           string `json:"seed,omitempty"`
	PrivateKey     string `json:"privateKey,omitempty"`
	PublicKey      string `json:"publicKey,omitempty"`
}

// HasKeyMaterial reports whether the identity carries a seed or a private key
func (w *Wallet) HasKeyMaterial() bool {
	return w.Seed != "" || w.PrivateKey != ""
}

// Public returns a copy of the identity without secrets
func (w *Wallet) Public() *Wallet {
	return &Wallet{
		Address:        w.Address,
		ClassicAddress: w.ClassicAddress,
		XAddress:       w.XAddress,
		PublicKey:      w.PublicKey,
	}
}
