package crypto

import "github.com/AlexZinkM/xrp-genie/internal/model"

// GenerateWallet creates a new random identity with its key material
func GenerateWallet(keyType KeyType, network model.Network) (*model.Wallet, *Keypair, error) {
	seed, err := GenerateSeed(keyType)
	if err != nil {
		return nil, nil, err
	}
	return WalletFromSeed(seed, network)
}

// WalletFromSeed imports an identity from a family seed
func WalletFromSeed(seed string, network model.Network) (*model.Wallet, *Keypair, error) {
	kp, err := DeriveKeypair(seed)
	if err != nil {
		return nil, nil, err
	}
	address := kp.Address()
	xAddress, err := EncodeXAddress(address, nil, network.IsTestnet())
	if err != nil {
		return nil, nil, err
	}
	return &model.Wallet{
		Address:        address,
		ClassicAddress: address,
		XAddress:       xAddress,
		Seed:           seed,
		PrivateKey:     kp.PrivateKeyHex(),
		PublicKey:      kp.PublicKeyHex(),
	}, kp, nil
}
