// Package issuer owns the platform's signing identity: the Ed25519 key pair,
// the DID derived from it, and the published DID Document. The private key
// stays inside Identity; only signing operations are exposed.
package issuer

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/multiformats/go-multibase"
)

// ed25519MulticodecPrefix is the multicodec varint prefix for Ed25519 public keys (0xed01).
var ed25519MulticodecPrefix = []byte{0xed, 0x01}

// Identity is the trust anchor for every credential issued by this process.
type Identity struct {
	did        string
	publicKey  ed25519.PublicKey
	privateKey ed25519.PrivateKey
}

// Generate creates a fresh Ed25519 identity and derives its DID.
func Generate() (*Identity, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate issuer key: %w", err)
	}
	return fromKeyPair(pub, priv)
}

// FromSeed builds an identity from a hex-encoded 32-byte Ed25519 seed.
// The same seed always yields the same DID.
func FromSeed(seedHex string) (*Identity, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("decode issuer seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("issuer seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return fromKeyPair(priv.Public().(ed25519.PublicKey), priv)
}

func fromKeyPair(pub ed25519.PublicKey, priv ed25519.PrivateKey) (*Identity, error) {
	did, err := DeriveDID(pub)
	if err != nil {
		return nil, err
	}
	return &Identity{did: did, publicKey: pub, privateKey: priv}, nil
}

// DeriveDID creates a did:key DID from an Ed25519 public key.
// The key is encoded as multibase base58btc with the 0xed01 multicodec prefix,
// so the DID is deterministically derivable from the public key alone.
func DeriveDID(publicKey ed25519.PublicKey) (string, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return "", fmt.Errorf("invalid Ed25519 public key length %d", len(publicKey))
	}

	prefixed := make([]byte, 0, len(ed25519MulticodecPrefix)+len(publicKey))
	prefixed = append(prefixed, ed25519MulticodecPrefix...)
	prefixed = append(prefixed, publicKey...)

	encoded, err := multibase.Encode(multibase.Base58BTC, prefixed)
	if err != nil {
		return "", fmt.Errorf("multibase encode: %w", err)
	}

	return "did:key:" + encoded, nil
}

// DID returns the issuer's DID.
func (i *Identity) DID() string {
	return i.did
}

// PublicKey returns the issuer's Ed25519 public key.
func (i *Identity) PublicKey() ed25519.PublicKey {
	return i.publicKey
}

// VerificationMethodID returns the key reference embedded in credential proofs.
func (i *Identity) VerificationMethodID() string {
	return i.did + "#key-1"
}

// Sign signs the message with the issuer's private key.
func (i *Identity) Sign(message []byte) []byte {
	return ed25519.Sign(i.privateKey, message)
}

// SigningKey exposes the private key to the credential signer.
// It must not be handed to any other component.
func (i *Identity) SigningKey() ed25519.PrivateKey {
	return i.privateKey
}
