package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestFeedTokenRoundTrip(t *testing.T) {
	keyring.MockInit()

	tok, err := GetFeedToken("sheets")
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, SetFeedToken("sheets", "  secret-token "))
	tok, err = GetFeedToken("sheets")
	require.NoError(t, err)
	assert.Equal(t, "secret-token", tok)

	require.NoError(t, DeleteFeedToken("sheets"))
	require.NoError(t, DeleteFeedToken("sheets"))
	tok, err = GetFeedToken("sheets")
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestFeedTokenRequiresAccount(t *testing.T) {
	keyring.MockInit()

	tok, err := GetFeedToken(" ")
	require.NoError(t, err)
	assert.Empty(t, tok)

	assert.ErrorIs(t, SetFeedToken("", "x"), ErrNoAccount)
	assert.ErrorIs(t, DeleteFeedToken(""), ErrNoAccount)
	assert.Error(t, SetFeedToken("sheets", " "))
}
