package domain

import "time"

// Principal is a registered identity holding one RSA key pair.
// PublicKeyPEM and PrivateKeyPEM are written together in a single insert and
// never change afterwards.
type Principal struct {
	ID            string
	Email         string
	Name          string
	PublicKeyPEM  string
	PrivateKeyPEM string
	CreatedAt     time.Time
}

func (p Principal) HasPublicKey() bool {
	return p.PublicKeyPEM != ""
}

func (p Principal) HasPrivateKey() bool {
	return p.PrivateKeyPEM != ""
}

// PublicView returns a copy without private key material, safe to hand to
// callers outside the signing boundary.
func (p Principal) PublicView() Principal {
	p.PrivateKeyPEM = ""
	return p
}

// SignedMessage is the immutable record of one signing event.
type SignedMessage struct {
	ID          string
	SignatoryID string
	Content     string
	Signature   string // base64url, unpadded
	Timestamp   time.Time
}
