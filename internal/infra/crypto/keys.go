package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"

	"signet/internal/domain"
)

const (
	pemTypePublicKey  = "PUBLIC KEY"
	pemTypePrivateKey = "PRIVATE KEY"
)

// Provisioner generates one RSA key pair per call. The zero value draws from
// crypto/rand and uses domain.RSAKeyBits.
type Provisioner struct {
	Random io.Reader
	Bits   int
}

func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

func (p *Provisioner) GenerateKeyPair() (domain.KeyPair, error) {
	random := io.Reader(rand.Reader)
	bits := domain.RSAKeyBits
	if p != nil {
		if p.Random != nil {
			random = p.Random
		}
		if p.Bits > 0 {
			bits = p.Bits
		}
	}

	key, err := rsa.GenerateKey(random, bits)
	if err != nil {
		return domain.KeyPair{}, fmt.Errorf("%w: %v", domain.ErrKeyGeneration, err)
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return domain.KeyPair{}, fmt.Errorf("%w: marshal pkcs8: %v", domain.ErrKeyGeneration, err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return domain.KeyPair{}, fmt.Errorf("%w: marshal spki: %v", domain.ErrKeyGeneration, err)
	}
	return domain.KeyPair{
		PublicKeyPEM:  string(pem.EncodeToMemory(&pem.Block{Type: pemTypePublicKey, Bytes: pubDER})),
		PrivateKeyPEM: string(pem.EncodeToMemory(&pem.Block{Type: pemTypePrivateKey, Bytes: privDER})),
	}, nil
}

// ParsePublicKeyPEM decodes a SubjectPublicKeyInfo PEM holding an RSA key.
func ParsePublicKeyPEM(value string) (*rsa.PublicKey, error) {
	block, err := decodePEM(value, pemTypePublicKey)
	if err != nil {
		return nil, err
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidKeyMaterial, err)
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: public key is not RSA", domain.ErrInvalidKeyMaterial)
	}
	return pub, nil
}

// ParsePrivateKeyPEM decodes a PKCS#8 PEM holding an RSA key.
func ParsePrivateKeyPEM(value string) (*rsa.PrivateKey, error) {
	block, err := decodePEM(value, pemTypePrivateKey)
	if err != nil {
		return nil, err
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidKeyMaterial, err)
	}
	priv, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: private key is not RSA", domain.ErrInvalidKeyMaterial)
	}
	return priv, nil
}

func decodePEM(value string, wantType string) (*pem.Block, error) {
	block, _ := pem.Decode([]byte(value))
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block", domain.ErrInvalidKeyMaterial)
	}
	if block.Type != wantType {
		return nil, fmt.Errorf("%w: unexpected PEM type %q", domain.ErrInvalidKeyMaterial, block.Type)
	}
	return block, nil
}

var errEmptyKey = errors.New("empty key")
