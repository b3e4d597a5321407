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

package identity

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
)

const (
	// MaxAssetNameLength is the ledger limit for asset names in bytes.
	MaxAssetNameLength = 32

	// shortHashLength is the number of hex characters of the identity
	// hash appended to the sanitized course prefix.
	shortHashLength = 16
)

// Script type tags prepended to the policy script bytes before
// hashing, matching the ledger's script hash namespacing.
const (
	ScriptTagNative   = 0x00
	ScriptTagPlutusV1 = 0x01
	ScriptTagPlutusV2 = 0x02
	ScriptTagPlutusV3 = 0x03
)

var ErrInvalidIdentityInput = errors.New("invalid identity input")

// Scheme derives stable (policy id, asset name) pairs for
// certificate and violation tokens. All derivations are pure: the
// same inputs always produce the same output.
type Scheme struct {
	policyId lcommon.Blake2b224
}

// NewScheme computes the policy id for the given minting script and
// returns a scheme bound to it. The script is never evaluated here,
// only hashed.
func NewScheme(policyScript []byte, scriptTag uint8) (*Scheme, error) {
	if len(policyScript) == 0 {
		return nil, fmt.Errorf(
			"%w: empty policy script",
			ErrInvalidIdentityInput,
		)
	}
	hashInput := make([]byte, 0, len(policyScript)+1)
	hashInput = append(hashInput, scriptTag)
	hashInput = append(hashInput, policyScript...)
	return &Scheme{
		policyId: lcommon.Blake2b224Hash(hashInput),
	}, nil
}

// PolicyId returns the policy id for all assets minted under this
// scheme.
func (s *Scheme) PolicyId() lcommon.Blake2b224 {
	return s.policyId
}

// CertificateAssetName derives the asset name for a course
// completion certificate.
func (s *Scheme) CertificateAssetName(
	courseId string,
	studentId string,
) ([]byte, error) {
	if courseId == "" || studentId == "" {
		return nil, fmt.Errorf(
			"%w: course and student identifiers are required",
			ErrInvalidIdentityInput,
		)
	}
	return s.deriveName(courseId, courseId, studentId)
}

// ViolationAssetName derives the asset name for a recorded policy
// violation token. The violation type participates in the
// derivation so that distinct violations for the same (course,
// student) pair receive distinct tokens.
func (s *Scheme) ViolationAssetName(
	courseId string,
	studentId string,
	violationType string,
) ([]byte, error) {
	if courseId == "" || studentId == "" || violationType == "" {
		return nil, fmt.Errorf(
			"%w: course, student and violation type are required",
			ErrInvalidIdentityInput,
		)
	}
	return s.deriveName(courseId, courseId, studentId, violationType)
}

// Fingerprint returns the CIP-14 display fingerprint for an asset
// name under this scheme's policy.
func (s *Scheme) Fingerprint(assetName []byte) string {
	fingerprint := lcommon.NewAssetFingerprint(
		s.policyId.Bytes(),
		assetName,
	)
	return fingerprint.String()
}

// deriveName builds "<sanitized prefix>_<short hash>" where the
// short hash covers every identity component. Free text never lands
// in the name unsanitized; anything outside [A-Za-z0-9] is dropped
// from the prefix.
func (s *Scheme) deriveName(
	prefix string,
	components ...string,
) ([]byte, error) {
	hashInput := strings.Join(components, "\x1f")
	identityHash := lcommon.Blake2b224Hash([]byte(hashInput))
	shortHash := hex.EncodeToString(
		identityHash.Bytes(),
	)[:shortHashLength]

	name := sanitizePrefix(prefix) + "_" + shortHash
	if len(name) > MaxAssetNameLength {
		return nil, fmt.Errorf(
			"%w: derived asset name is %d bytes, limit is %d",
			ErrInvalidIdentityInput,
			len(name),
			MaxAssetNameLength,
		)
	}
	return []byte(name), nil
}

func sanitizePrefix(s string) string {
	var buf strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9':
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
