package crypto

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"strings"
	"sync"
	"testing"

	"signet/internal/domain"
)

var (
	fixtureOnce sync.Once
	fixturePair domain.KeyPair
	fixtureErr  error
)

// testKeyPair returns a shared 2048-bit pair; generation dominates test time.
func testKeyPair(t *testing.T) domain.KeyPair {
	t.Helper()
	fixtureOnce.Do(func() {
		fixturePair, fixtureErr = NewProvisioner().GenerateKeyPair()
	})
	if fixtureErr != nil {
		t.Fatalf("generate key pair: %v", fixtureErr)
	}
	return fixturePair
}

func TestGenerateKeyPair_Formats(t *testing.T) {
	pair := testKeyPair(t)

	pubBlock, _ := pem.Decode([]byte(pair.PublicKeyPEM))
	if pubBlock == nil || pubBlock.Type != "PUBLIC KEY" {
		t.Fatalf("expected SubjectPublicKeyInfo PEM, got %q", pair.PublicKeyPEM)
	}
	privBlock, _ := pem.Decode([]byte(pair.PrivateKeyPEM))
	if privBlock == nil || privBlock.Type != "PRIVATE KEY" {
		t.Fatal("expected PKCS#8 PEM private key")
	}

	priv, err := x509.ParsePKCS8PrivateKey(privBlock.Bytes)
	if err != nil {
		t.Fatalf("parse pkcs8: %v", err)
	}
	rsaPriv, ok := priv.(*rsa.PrivateKey)
	if !ok {
		t.Fatalf("expected RSA private key, got %T", priv)
	}
	if rsaPriv.N.BitLen() != domain.RSAKeyBits {
		t.Fatalf("expected %d-bit modulus, got %d", domain.RSAKeyBits, rsaPriv.N.BitLen())
	}

	pub, err := ParsePublicKeyPEM(pair.PublicKeyPEM)
	if err != nil {
		t.Fatalf("parse public key: %v", err)
	}
	if pub.N.Cmp(rsaPriv.N) != 0 || pub.E != rsaPriv.E {
		t.Fatal("public key does not match private key")
	}
}

func TestGenerateKeyPair_Independent(t *testing.T) {
	p := &Provisioner{Bits: 1024}
	first, err := p.GenerateKeyPair()
	if err != nil {
		t.Fatalf("first pair: %v", err)
	}
	second, err := p.GenerateKeyPair()
	if err != nil {
		t.Fatalf("second pair: %v", err)
	}
	if first.PublicKeyPEM == second.PublicKeyPEM || first.PrivateKeyPEM == second.PrivateKeyPEM {
		t.Fatal("expected independent key pairs")
	}
}

func TestGenerateKeyPair_PrimitiveFailure(t *testing.T) {
	// Moduli below 1024 bits are refused by crypto/rsa.
	p := &Provisioner{Bits: 512}
	pair, err := p.GenerateKeyPair()
	if !errors.Is(err, domain.ErrKeyGeneration) {
		t.Fatalf("expected ErrKeyGeneration, got %v", err)
	}
	if pair.PublicKeyPEM != "" || pair.PrivateKeyPEM != "" {
		t.Fatal("no key material may be returned on failure")
	}
}

func TestService_SignVerify(t *testing.T) {
	pair := testKeyPair(t)
	svc := &Service{}
	payload := []byte("hello")

	sig, err := svc.Sign(pair.PrivateKeyPEM, payload)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if len(sig) != domain.RSAKeyBits/8 {
		t.Fatalf("expected %d byte signature, got %d", domain.RSAKeyBits/8, len(sig))
	}

	again, err := svc.Sign(pair.PrivateKeyPEM, payload)
	if err != nil {
		t.Fatalf("sign again: %v", err)
	}
	if !bytes.Equal(sig, again) {
		t.Fatal("PKCS#1 v1.5 signatures must be deterministic")
	}

	ok, err := svc.Verify(pair.PublicKeyPEM, payload, sig)
	if err != nil || !ok {
		t.Fatalf("expected valid signature, ok=%v err=%v", ok, err)
	}

	tampered := append([]byte(nil), payload...)
	tampered[0] ^= 0x01
	ok, err = svc.Verify(pair.PublicKeyPEM, tampered, sig)
	if err != nil || ok {
		t.Fatalf("expected tampered payload to fail, ok=%v err=%v", ok, err)
	}
}

func TestService_VerifyWrongKey(t *testing.T) {
	pair := testKeyPair(t)
	other, err := (&Provisioner{Bits: 1024}).GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate other: %v", err)
	}
	svc := &Service{}
	sig, err := svc.Sign(pair.PrivateKeyPEM, []byte("hello"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	ok, err := svc.Verify(other.PublicKeyPEM, []byte("hello"), sig)
	if err != nil || ok {
		t.Fatalf("expected wrong key to fail, ok=%v err=%v", ok, err)
	}
}

func TestService_KeyMaterialErrors(t *testing.T) {
	svc := &Service{}
	if _, err := svc.Sign("", []byte("x")); !errors.Is(err, domain.ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
	if _, err := svc.Verify("", []byte("x"), []byte("y")); !errors.Is(err, domain.ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
	if _, err := svc.Verify("not a pem", []byte("x"), []byte("y")); !errors.Is(err, domain.ErrInvalidKeyMaterial) {
		t.Fatalf("expected ErrInvalidKeyMaterial, got %v", err)
	}

	pair := testKeyPair(t)
	// A private key PEM handed to the public key parser has the wrong type.
	if _, err := ParsePublicKeyPEM(pair.PrivateKeyPEM); !errors.Is(err, domain.ErrInvalidKeyMaterial) {
		t.Fatalf("expected ErrInvalidKeyMaterial, got %v", err)
	}
	corrupted := strings.Replace(pair.PublicKeyPEM, "MII", "MIX", 1)
	if _, err := ParsePublicKeyPEM(corrupted); !errors.Is(err, domain.ErrInvalidKeyMaterial) {
		t.Fatalf("expected ErrInvalidKeyMaterial for corrupted DER, got %v", err)
	}
}
