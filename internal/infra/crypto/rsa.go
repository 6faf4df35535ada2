package crypto

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"

	"signet/internal/domain"
)

// Service signs and verifies with RSASSA-PKCS1-v1_5 over a SHA-256 digest.
// Keys are taken in their stored PEM form.
type Service struct{}

func (s *Service) Sign(privateKeyPEM string, payload []byte) ([]byte, error) {
	if privateKeyPEM == "" {
		return nil, fmt.Errorf("%w: %v", domain.ErrMissingKey, errEmptyKey)
	}
	key, err := ParsePrivateKeyPEM(privateKeyPEM)
	if err != nil {
		return nil, err
	}
	return SignPKCS1v15(key, payload)
}

// Verify reports whether sig is a valid signature of payload under the
// public key. An error is returned only for unusable key material.
func (s *Service) Verify(publicKeyPEM string, payload []byte, sig []byte) (bool, error) {
	if publicKeyPEM == "" {
		return false, fmt.Errorf("%w: %v", domain.ErrMissingKey, errEmptyKey)
	}
	key, err := ParsePublicKeyPEM(publicKeyPEM)
	if err != nil {
		return false, err
	}
	return VerifyPKCS1v15(key, payload, sig), nil
}

func SignPKCS1v15(key *rsa.PrivateKey, payload []byte) ([]byte, error) {
	digest := sha256.Sum256(payload)
	// PKCS#1 v1.5 signing is deterministic; no random source is needed.
	sig, err := rsa.SignPKCS1v15(nil, key, crypto.SHA256, digest[:])
	if err != nil {
		return nil, fmt.Errorf("rsa sign: %w", err)
	}
	return sig, nil
}

func VerifyPKCS1v15(key *rsa.PublicKey, payload []byte, sig []byte) bool {
	digest := sha256.Sum256(payload)
	return rsa.VerifyPKCS1v15(key, crypto.SHA256, digest[:], sig) == nil
}
