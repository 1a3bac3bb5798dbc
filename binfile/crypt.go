// Copyright 2026 The Sigkit Authors
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package binfile

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// newAEAD wraps key for record sealing. The key must be exactly
// chacha20poly1305.KeySize (32) bytes.
func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("binfile: encryption key must be %d bytes, have %d", chacha20poly1305.KeySize, len(key))
	}
	return chacha20poly1305.NewX(key)
}

// seal encrypts src and returns nonce||ciphertext.
func seal(aead cipher.AEAD, src []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(src)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, src, nil), nil
}

// open reverses seal.
func open(aead cipher.AEAD, box []byte) ([]byte, error) {
	ns := aead.NonceSize()
	if len(box) < ns+aead.Overhead() {
		return nil, fmt.Errorf("binfile: sealed payload too short (%d bytes)", len(box))
	}
	return aead.Open(nil, box[:ns], box[ns:], nil)
}
