package attest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSigner_RoundTrip(t *testing.T) {
	signer, err := NewSigner("attestation-secret-key")
	require.NoError(t, err)

	payload := []byte(`{"walletAddress":"0xabc","riskScore":42}`)
	token, err := signer.Sign(payload)
	require.NoError(t, err)
	require.Equal(t, 3, len(strings.Split(token, ".")))

	got, err := signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestSigner_RejectsWrongKey(t *testing.T) {
	signer, err := NewSigner("attestation-secret-key")
	require.NoError(t, err)
	other, err := NewSigner("different-key")
	require.NoError(t, err)

	token, err := signer.Sign([]byte("payload"))
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.Error(t, err)
}

func TestSigner_RejectsTamperedToken(t *testing.T) {
	signer, err := NewSigner("attestation-secret-key")
	require.NoError(t, err)

	token, err := signer.Sign([]byte(`{"riskScore":42}`))
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	parts[1] = "eyJyaXNrU2NvcmUiOjk5fQ"
	_, err = signer.Verify(strings.Join(parts, "."))
	require.Error(t, err)

	_, err = signer.Verify("not-a-jws")
	require.Error(t, err)
}

func TestNewSigner_EmptyKey(t *testing.T) {
	_, err := NewSigner("")
	require.Error(t, err)
}
