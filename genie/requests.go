package genie

import (
	"context"

	"github.com/pkg/errors"

	"github.com/AlexZinkM/xrp-genie/internal/provider"
)

// CreateSignInRequest creates a sign-in request without waiting for approval (xaman)
func (g *Genie) CreateSignInRequest(ctx context.Context) (*SigningRequest, error) {
	x, err := g.xamanBackend("CreateSignInRequest")
	if err != nil {
		return nil, err
	}
	return x.CreateSignInRequest(ctx)
}

// CreatePaymentRequest creates an XRP payment request without waiting for approval (xaman)
func (g *Genie) CreatePaymentRequest(ctx context.Context, destination, amount string) (*SigningRequest, error) {
	x, err := g.xamanBackend("CreatePaymentRequest")
	if err != nil {
		return nil, err
	}
	return x.CreatePaymentRequest(ctx, "", destination, amount)
}

// CreatePaymentRequestFrom is CreatePaymentRequest for a given source account (xaman)
func (g *Genie) CreatePaymentRequestFrom(ctx context.Context, from, destination, amount string) (*SigningRequest, error) {
	x, err := g.xamanBackend("CreatePaymentRequest")
	if err != nil {
		return nil, err
	}
	return x.CreatePaymentRequest(ctx, from, destination, amount)
}

// CreateTrustSetRequest creates a trust line request without waiting for approval (xaman)
func (g *Genie) CreateTrustSetRequest(ctx context.Context, intent *TrustLineIntent) (*SigningRequest, error) {
	x, err := g.xamanBackend("CreateTrustSetRequest")
	if err != nil {
		return nil, err
	}
	return x.CreateTrustSetRequest(ctx, intent)
}

// CheckRequestStatus polls a signing request once (xaman)
func (g *Genie) CheckRequestStatus(ctx context.Context, id string) (*SigningRequestState, error) {
	x, err := g.xamanBackend("CheckRequestStatus")
	if err != nil {
		return nil, err
	}
	return x.CheckRequestStatus(ctx, id)
}

// AwaitRequest waits until a signing request is resolved or ctx is done.
// Cancelling ctx leaves the request on the relay.
func (g *Genie) AwaitRequest(ctx context.Context, id string) (*SigningRequestState, error) {
	x, err := g.xamanBackend("AwaitRequest")
	if err != nil {
		return nil, err
	}
	return x.AwaitRequest(ctx, id)
}

// QRCode returns the scannable code of a signing request as a base64 PNG (xaman)
func (g *Genie) QRCode(req *SigningRequest) (string, error) {
	if _, err := g.xamanBackend("QRCode"); err != nil {
		return "", err
	}
	return provider.QRCode(req)
}

// RenderQR returns the scannable code of a signing request as terminal text (xaman)
func (g *Genie) RenderQR(req *SigningRequest) (string, error) {
	if _, err := g.xamanBackend("RenderQR"); err != nil {
		return "", err
	}
	return provider.RenderQR(req)
}

// DeepLink returns the link that opens a signing request in the app (xaman)
func (g *Genie) DeepLink(req *SigningRequest) (string, error) {
	if _, err := g.xamanBackend("DeepLink"); err != nil {
		return "", err
	}
	if req == nil || req.DeepLink == "" {
		return "", errors.New("signing request has no deep link")
	}
	return req.DeepLink, nil
}

func (g *Genie) xamanBackend(op string) (*provider.Xaman, error) {
	x, ok := g.backend.(*provider.Xaman)
	if !ok {
		return nil, onlyFor(op, ProviderXaman)
	}
	return x, nil
}

func (g *Genie) faucetBackend(op string) (*provider.Faucet, error) {
	f, ok := g.backend.(*provider.Faucet)
	if !ok {
		return nil, onlyFor(op, ProviderFaucet)
	}
	return f, nil
}
