package session

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const rootKeyLen = 32

var sealInfo = []byte("quizhub/session/v1")

func randBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// deriveSealKey derives the sealing key from the stored root key via
// HKDF-SHA256 so the root key itself never touches the AEAD.
func deriveSealKey(root []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, root, nil, sealInfo)
	key := make([]byte, chacha20poly1305.KeySize)
	_, err := r.Read(key)
	return key, err
}

// seal encrypts plaintext with XChaCha20-Poly1305 and a random nonce,
// returning nonce||ciphertext.
func seal(root, plaintext []byte) ([]byte, error) {
	key, err := deriveSealKey(root)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce, err := randBytes(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	out = append(out, aead.Seal(nil, nonce, plaintext, nil)...)
	return out, nil
}

// open decrypts a blob produced by seal.
func open(root, blob []byte) ([]byte, error) {
	if len(blob) < chacha20poly1305.NonceSizeX {
		return nil, errors.New("sealed blob too short")
	}
	key, err := deriveSealKey(root)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := blob[:chacha20poly1305.NonceSizeX]
	ct := blob[chacha20poly1305.NonceSizeX:]
	return aead.Open(nil, nonce, ct, nil)
}
