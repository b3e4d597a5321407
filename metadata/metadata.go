// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package metadata

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blinklabs-io/gouroboros/cbor"
)

const (
	// MetadataLabel is the reserved transaction metadata label for
	// token metadata (CIP-25).
	MetadataLabel = 721

	// MaxStringLength is the per-string limit inside a metadata
	// document. Longer strings are chunked into arrays.
	MaxStringLength = 64

	// DefaultMaxDocumentBytes bounds the encoded metadata document
	// for a single transaction.
	DefaultMaxDocumentBytes = 16384
)

var ErrMetadataTooLarge = errors.New("metadata document too large")

// sensitiveKeys are extra-map keys that must never reach the chain
// or a client. They cover raw internal database identifiers and
// contact details.
var sensitiveKeys = map[string]struct{}{
	"studentDbId":  {},
	"educatorDbId": {},
	"userId":       {},
	"userDbId":     {},
	"email":        {},
	"phone":        {},
}

// SensitiveKey reports whether a metadata field key is in the
// sensitive set and must be stripped before the document leaves the
// service.
func SensitiveKey(key string) bool {
	_, sensitive := sensitiveKeys[key]
	return sensitive
}

// Document is the structured metadata attached to a mint. Only the
// enumerated fields plus the filtered Extra map are ever serialized.
type Document struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	MediaType   string `json:"media_type,omitempty"`
	Course      string `json:"course,omitempty"`
	Educator    string `json:"educator,omitempty"`
	Recipient   string `json:"recipient,omitempty"`
	IssuedAt    string `json:"issued_at,omitempty"`
	// Extra carries additional ledger-standard fields. Keys listed
	// in sensitiveKeys are dropped during composition.
	Extra map[string]any `json:"extra,omitempty"`
}

// Entry pairs an asset name with its document for batch
// composition.
type Entry struct {
	AssetName string
	Document  Document
}

// Composer builds the on-chain metadata payload under the reserved
// label. Composition is deterministic: identical inputs yield
// byte-identical CBOR, which makes retries idempotent.
type Composer struct {
	maxBytes int
}

func NewComposer(maxBytes int) *Composer {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDocumentBytes
	}
	return &Composer{maxBytes: maxBytes}
}

// MaxBytes returns the configured document size limit.
func (c *Composer) MaxBytes() int {
	return c.maxBytes
}

// Compose builds the label-721 payload for a single asset and
// returns its CBOR encoding.
func (c *Composer) Compose(
	policyIdHex string,
	assetName string,
	doc Document,
) ([]byte, error) {
	return c.ComposeBatch(
		policyIdHex,
		[]Entry{{AssetName: assetName, Document: doc}},
	)
}

// ComposeBatch builds one label-721 payload covering every entry
// under the shared policy id. The whole payload is rejected with
// ErrMetadataTooLarge when it exceeds the size limit; callers split
// the batch rather than have entries silently dropped.
func (c *Composer) ComposeBatch(
	policyIdHex string,
	entries []Entry,
) ([]byte, error) {
	if len(entries) == 0 {
		return nil, errors.New("no metadata entries")
	}
	assets := make(map[string]any, len(entries))
	for _, entry := range entries {
		if entry.AssetName == "" {
			return nil, errors.New("metadata entry missing asset name")
		}
		assets[entry.AssetName] = buildAssetDocument(entry.Document)
	}
	payload := map[uint64]any{
		MetadataLabel: map[string]any{
			policyIdHex: assets,
		},
	}
	// gouroboros encodes maps with deterministic key ordering, so
	// identical inputs produce identical bytes here.
	docCbor, err := cbor.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	if len(docCbor) > c.maxBytes {
		return nil, fmt.Errorf(
			"%w: %d bytes, limit is %d",
			ErrMetadataTooLarge,
			len(docCbor),
			c.maxBytes,
		)
	}
	return docCbor, nil
}

func buildAssetDocument(doc Document) map[string]any {
	out := make(map[string]any)
	setString := func(key, value string) {
		if value == "" {
			return
		}
		out[key] = chunkString(value)
	}
	setString("name", doc.Name)
	setString("description", doc.Description)
	setString("image", doc.Image)
	setString("mediaType", doc.MediaType)
	setString("course", doc.Course)
	setString("educator", doc.Educator)
	setString("recipient", doc.Recipient)
	setString("issuedAt", doc.IssuedAt)
	for key, value := range doc.Extra {
		if SensitiveKey(key) {
			continue
		}
		if _, exists := out[key]; exists {
			continue
		}
		if s, ok := value.(string); ok {
			out[key] = chunkString(s)
			continue
		}
		out[key] = value
	}
	return out
}

// chunkString splits strings longer than the per-string limit into
// an array of chunks, as wallets and explorers expect for this
// metadata convention. Chunks break on rune boundaries so every
// chunk stays valid UTF-8.
func chunkString(s string) any {
	if len(s) <= MaxStringLength {
		return s
	}
	var chunks []string
	var buf strings.Builder
	for _, r := range s {
		if buf.Len()+utf8.RuneLen(r) > MaxStringLength {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
		buf.WriteRune(r)
	}
	if buf.Len() > 0 {
		chunks = append(chunks, buf.String())
	}
	return chunks
}
