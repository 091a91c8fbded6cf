package crypto

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// personalMessagePrefix is the EIP-191 prefix wallets apply before hashing
// a personal_sign payload.
const personalMessagePrefix = "\x19Ethereum Signed Message:\n"

// IsValidAddress reports whether s is a 0x-prefixed 20-byte hex address.
// common.IsHexAddress alone also accepts bare 40-hex strings, so the
// prefix is checked explicitly.
func IsValidAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// NormalizeAddress lower-cases an address for storage and comparison.
func NormalizeAddress(s string) string {
	return strings.ToLower(s)
}

// PersonalMessageHash hashes message the way personal_sign does.
func PersonalMessageHash(message string) common.Hash {
	data := fmt.Sprintf("%s%d%s", personalMessagePrefix, len(message), message)
	return ethcrypto.Keccak256Hash([]byte(data))
}

// RecoverPersonalSigner recovers the address that produced signature over
// message. Signature is 65 hex-encoded bytes, 0x prefix optional, V in
// either 0/1 or 27/28 form.
func RecoverPersonalSigner(message, signature string) (common.Address, error) {
	sigBytes, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return common.Address{}, fmt.Errorf("malformed signature hex: %w", err)
	}
	if len(sigBytes) != 65 {
		return common.Address{}, fmt.Errorf("invalid signature length %d, want 65", len(sigBytes))
	}

	// Wallets emit V as 27/28; SigToPub expects 0/1.
	if sigBytes[64] >= 27 {
		sigBytes[64] -= 27
	}

	pubKey, err := ethcrypto.SigToPub(PersonalMessageHash(message).Bytes(), sigBytes)
	if err != nil {
		return common.Address{}, fmt.Errorf("signature recovery failed: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*pubKey), nil
}

// VerifyPersonalSignature reports whether signature over message was produced
// by the key behind claimedAddress, comparing case-insensitively. Recovery
// errors fail closed: the result is (false, err), never a silent accept.
func VerifyPersonalSignature(claimedAddress, message, signature string) (bool, error) {
	if !IsValidAddress(claimedAddress) {
		return false, fmt.Errorf("malformed address %q", claimedAddress)
	}
	recovered, err := RecoverPersonalSigner(message, signature)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(recovered.Hex(), claimedAddress), nil
}

// SignPersonalMessage signs message the way a wallet extension would:
// EIP-191 prefix, V offset to 27/28, 0x-prefixed hex output. The inverse of
// VerifyPersonalSignature, used by the client adapter and tests.
func SignPersonalMessage(message string, key *ecdsa.PrivateKey) (string, error) {
	sig, err := ethcrypto.Sign(PersonalMessageHash(message).Bytes(), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}
	sig[64] += 27
	return "0x" + hex.EncodeToString(sig), nil
}
