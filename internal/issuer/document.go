package issuer

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"

	dErrors "gympass/pkg/domain-errors"
)

const didContextV1 = "https://www.w3.org/ns/did/v1"

// documentContext is the fixed @context published with the issuer's DID Document.
var documentContext = []string{
	didContextV1,
	"https://w3id.org/security/suites/ed25519-2020/v1",
	"https://w3id.org/security/suites/x25519-2020/v1",
}

// VerificationMethod is an entry in a DID Document's verificationMethod array.
type VerificationMethod struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Controller   string `json:"controller"`
	PublicKeyPem string `json:"publicKeyPem"`
}

// Document is the W3C DID Document published for the issuer.
type Document struct {
	Context              []string             `json:"@context"`
	ID                   string               `json:"id"`
	VerificationMethod   []VerificationMethod `json:"verificationMethod"`
	Authentication       []string             `json:"authentication"`
	AssertionMethod      []string             `json:"assertionMethod"`
	KeyAgreement         []string             `json:"keyAgreement"`
	CapabilityInvocation []string             `json:"capabilityInvocation"`
	CapabilityDelegation []string             `json:"capabilityDelegation"`
}

// Document builds the DID Document for this identity. The five verification
// relationship arrays each reference the single #key-1 method.
func (i *Identity) Document() (*Document, error) {
	pemKey, err := encodePublicKeyPEM(i)
	if err != nil {
		return nil, err
	}

	keyID := i.VerificationMethodID()
	keyRefs := []string{keyID}

	return &Document{
		Context: documentContext,
		ID:      i.did,
		VerificationMethod: []VerificationMethod{{
			ID:           keyID,
			Type:         "Ed25519VerificationKey2020",
			Controller:   i.did,
			PublicKeyPem: pemKey,
		}},
		Authentication:       keyRefs,
		AssertionMethod:      keyRefs,
		KeyAgreement:         keyRefs,
		CapabilityInvocation: keyRefs,
		CapabilityDelegation: keyRefs,
	}, nil
}

func encodePublicKeyPEM(i *Identity) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(i.publicKey)
	if err != nil {
		return "", fmt.Errorf("marshal public key: %w", err)
	}
	block := &pem.Block{Type: "PUBLIC KEY", Bytes: der}
	return string(pem.EncodeToMemory(block)), nil
}

// ValidateDocument checks the structural invariants a DID Document must hold
// before it is trusted: the DID v1 context, an id, and fully populated
// verification methods.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return dErrors.New(dErrors.CodeValidation, "did document is required")
	}
	if len(doc.Context) == 0 {
		return dErrors.New(dErrors.CodeValidation, "did document missing @context")
	}
	hasDIDContext := false
	for _, uri := range doc.Context {
		if uri == didContextV1 {
			hasDIDContext = true
			break
		}
	}
	if !hasDIDContext {
		return dErrors.New(dErrors.CodeValidation, "did document missing W3C DID v1 context")
	}
	if doc.ID == "" {
		return dErrors.New(dErrors.CodeValidation, "did document missing id")
	}
	if len(doc.VerificationMethod) == 0 {
		return dErrors.New(dErrors.CodeValidation, "did document has no verification methods")
	}
	for _, vm := range doc.VerificationMethod {
		if vm.ID == "" || vm.Type == "" || vm.Controller == "" || vm.PublicKeyPem == "" {
			return dErrors.New(dErrors.CodeValidation, "verification method missing required fields")
		}
	}
	return nil
}
