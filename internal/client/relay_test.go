package client_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/AlexZinkM/xrp-genie/internal/client"
	"github.com/AlexZinkM/xrp-genie/internal/model"
	"github.com/AlexZinkM/xrp-genie/internal/test"
	"github.com/AlexZinkM/xrp-genie/internal/tx"
)

func newXumm(t *testing.T, relay *test.FakeRelay) *client.XummClient {
	t.Helper()
	c, err := client.NewXummClient(relay.APIKey, relay.APISecret,
		client.WithXummBaseURL(relay.URL()),
		client.WithXummRateLimit(rate.Inf, 1),
	)
	require.NoError(t, err)
	return c
}

func TestNewXummClientNeedsCredentials(t *testing.T) {
	_, err := client.NewXummClient("key", "")
	assert.True(t, errors.Is(err, model.ErrConfig))
	_, err = client.NewXummClient("", "secret")
	assert.True(t, errors.Is(err, model.ErrConfig))
}

func TestCreateAndPollPayload(t *testing.T) {
	relay := test.NewFakeRelay("key", "secret")
	defer relay.Close()
	relay.Script(model.RequestCreated, model.RequestPending, model.RequestSigned)
	relay.SignWith("rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", "tesSUCCESS")
	c := newXumm(t, relay)
	ctx := context.Background()

	req, err := c.CreatePayload(ctx, tx.NewSignIn(), false)
	require.NoError(t, err)
	assert.Equal(t, model.RequestCreated, req.Status)
	assert.Contains(t, req.DeepLink, req.ID)
	assert.Contains(t, req.QRImageURL, req.ID)
	assert.Equal(t, []map[string]any{{"TransactionType": "SignIn"}}, relay.Created())

	want := []model.RequestStatus{model.RequestCreated, model.RequestPending, model.RequestSigned}
	for _, status := range want {
		state, err := c.GetPayload(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, status, state.Status)
	}

	state, err := c.GetPayload(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, state.Signed)
	assert.True(t, state.Resolved)
	assert.Equal(t, "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", state.Account)
	assert.False(t, state.ExpiresAt.IsZero())
}

func TestPayloadErrors(t *testing.T) {
	relay := test.NewFakeRelay("key", "secret")
	defer relay.Close()
	ctx := context.Background()

	bad, err := client.NewXummClient("key", "wrong", client.WithXummBaseURL(relay.URL()))
	require.NoError(t, err)
	_, err = bad.CreatePayload(ctx, tx.NewSignIn(), false)
	var statusErr *client.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 403, statusErr.StatusCode)
	assert.False(t, statusErr.Temporary())

	c := newXumm(t, relay)
	_, err = c.GetPayload(ctx, "not-a-uuid")
	assert.Error(t, err)

	state, err := c.GetPayload(ctx, "c1a5b9b6-0d3e-4a2b-9d55-9f1d9d3e4f70")
	require.NoError(t, err)
	assert.Equal(t, model.RequestExpired, state.Status)

	req, err := c.CreatePayload(ctx, tx.NewSignIn(), false)
	require.NoError(t, err)
	relay.FailNextPolls(1)
	_, err = c.GetPayload(ctx, req.ID)
	require.True(t, errors.As(err, &statusErr))
	assert.True(t, statusErr.Temporary())
}
