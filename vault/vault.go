package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
)

// Vault performs reversible symmetric encryption of stored secrets.
// Key and IV are derived once from a master-key string, so the machine
// that encrypted a value can decrypt it again without storing key
// material anywhere.
type Vault struct {
	key []byte
	iv  []byte
}

// New derives the AES key and IV from the master-key string. The same
// string always yields the same key, which is the whole point: pass a
// fixed string in tests, a machine-derived one in production.
func New(masterKey string) *Vault {
	key := sha256.Sum256([]byte(masterKey))
	iv := sha256.Sum256([]byte(masterKey + "_iv"))
	return &Vault{key: key[:], iv: iv[:aes.BlockSize]}
}

// DefaultMasterKey builds the machine-specific master key used when the
// config does not supply one.
func DefaultMasterKey() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("Streamline_Master_Key_Hostname_%s", host)
}

// Encrypt returns the base64 ciphertext of plain, or "" for empty input.
func (v *Vault) Encrypt(plain string) string {
	if plain == "" {
		return ""
	}
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return ""
	}
	padded := pad([]byte(plain))
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, v.iv).CryptBlocks(out, padded)
	return base64.StdEncoding.EncodeToString(out)
}

// Decrypt returns "" on any failure. Callers must treat empty as "could
// not decrypt", never as a valid empty secret.
func (v *Vault) Decrypt(ciphertext string) string {
	if ciphertext == "" {
		return ""
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return ""
	}
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return ""
	}
	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, v.iv).CryptBlocks(out, raw)
	plain, err := unpad(out)
	if err != nil {
		return ""
	}
	return string(plain)
}

// PKCS#7 padding.

func pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty input")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, errors.New("bad padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("bad padding")
		}
	}
	return data[:len(data)-n], nil
}
