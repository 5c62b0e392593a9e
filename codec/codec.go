//go:generate go run go.uber.org/mock/mockgen -source=codec.go -destination=../mocks/mock_codec.go -package=mocks
package codec

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"fmt"
	"unicode/utf8"

	"secure-chat/errors"
)

// KeySize is the required length of both the key and the initialization vector.
const KeySize = 16

type ICodec interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// AESCodec encrypts message bodies with AES-128-CBC and PKCS#7 padding.
// Ciphertext is hex encoded. The same key and IV are used for every message,
// so equal plaintexts produce equal ciphertexts.
type AESCodec struct {
	block cipher.Block
	iv    []byte
}

// NewAESCodec copies key and iv. Both must be exactly KeySize bytes.
func NewAESCodec(key, iv []byte) (*AESCodec, error) {
	if len(key) != KeySize || len(iv) != KeySize {
		return nil, errors.ErrInvalidKeyLength
	}
	block, err := aes.NewCipher(bytes.Clone(key))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidKeyLength, err)
	}
	return &AESCodec{block: block, iv: bytes.Clone(iv)}, nil
}

func (c *AESCodec) Encrypt(plaintext string) (string, error) {
	padded := pad([]byte(plaintext), c.block.BlockSize())
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(out, padded)
	return hex.EncodeToString(out), nil
}

// Decrypt never reports the underlying cipher failure to the caller,
// only that the record could not be decrypted.
func (c *AESCodec) Decrypt(ciphertext string) (string, error) {
	raw, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext is not hex encoded", errors.ErrCrypto)
	}
	size := c.block.BlockSize()
	if len(raw) == 0 || len(raw)%size != 0 {
		return "", fmt.Errorf("%w: ciphertext has an invalid length", errors.ErrCrypto)
	}
	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(out, raw)
	plain, ok := unpad(out, size)
	if !ok {
		return "", fmt.Errorf("%w: ciphertext is malformed", errors.ErrCrypto)
	}
	if !utf8.Valid(plain) {
		return "", fmt.Errorf("%w: plaintext is not valid utf-8", errors.ErrCrypto)
	}
	return string(plain), nil
}

func pad(data []byte, size int) []byte {
	n := size - len(data)%size
	return append(bytes.Clone(data), bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, size int) ([]byte, bool) {
	n := int(data[len(data)-1])
	if n == 0 || n > size || n > len(data) {
		return nil, false
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, false
		}
	}
	return data[:len(data)-n], true
}
