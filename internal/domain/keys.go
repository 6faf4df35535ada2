package domain

// RSAKeyBits is the modulus length of every provisioned principal key.
const RSAKeyBits = 2048

// KeyPair holds a freshly generated key pair in its storage form:
// SubjectPublicKeyInfo PEM and PKCS#8 PEM.
type KeyPair struct {
	PublicKeyPEM  string
	PrivateKeyPEM string
}
