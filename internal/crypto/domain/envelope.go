package domain

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Format identifies which wire form an envelope was parsed from.
//
// Three generations of the format are in circulation:
//
//	FormatCurrent          v{N}.{algo}:{ivHex}:{tagHex}:{ctHex}
//	FormatLegacyVersioned  v{N}:{ivHex}:{tagHex}:{ctHex}
//	FormatLegacyBare       {ivHex}:{tagHex}:{ctHex}
//
// Parsing always produces exactly one of these variants, so callers can handle
// the three cases exhaustively instead of re-probing the string.
type Format int

const (
	// FormatCurrent carries an explicit key version and algorithm identifier.
	FormatCurrent Format = iota
	// FormatLegacyVersioned carries a key version but no algorithm; the
	// algorithm defaults to the current one.
	FormatLegacyVersioned
	// FormatLegacyBare predates versioning entirely; key version 1 and the
	// current algorithm are assumed.
	FormatLegacyBare
)

// String returns the wire name of the format.
func (f Format) String() string {
	switch f {
	case FormatCurrent:
		return "current"
	case FormatLegacyVersioned:
		return "legacy_versioned"
	case FormatLegacyBare:
		return "legacy_bare"
	default:
		return "unknown"
	}
}

// Envelope is the parsed form of a versioned ciphertext string.
//
// The envelope binds the key version and algorithm used for encryption to the
// IV, authentication tag and ciphertext, so stored values keep decrypting
// across key rotations and algorithm migrations.
type Envelope struct {
	KeyVersion uint
	Algorithm  Algorithm
	Format     Format
	IV         []byte
	AuthTag    []byte
	Ciphertext []byte
}

// envelopePrefixRe matches the versioned prefixes: "v{N}." followed by an
// algorithm identifier, or bare "v{N}:". An input without the prefix is the
// oldest, bare format.
var envelopePrefixRe = regexp.MustCompile(`^v(\d+)(?:\.([a-z0-9]+))?:`)

// ParseEnvelope parses an envelope string in any supported wire form.
//
// defaultAlg supplies the algorithm for the two legacy forms, which predate
// algorithm tagging. The remainder after the recognized prefix (if any) must
// split into exactly three hex fields: IV, authentication tag and ciphertext.
//
// Field byte lengths are not validated here; they depend on the algorithm
// parameters and are checked by the encryption service before decryption.
//
// Returns ErrInvalidEnvelopeFormat if the shape or hex encoding is invalid.
func ParseEnvelope(content string, defaultAlg Algorithm) (Envelope, error) {
	envelope := Envelope{
		KeyVersion: 1,
		Algorithm:  defaultAlg,
		Format:     FormatLegacyBare,
	}

	rest := content
	if match := envelopePrefixRe.FindStringSubmatch(content); match != nil {
		version, err := strconv.ParseUint(match[1], 10, 32)
		if err != nil {
			return Envelope{}, fmt.Errorf("%w: key version %q: %v", ErrInvalidEnvelopeFormat, match[1], err)
		}
		envelope.KeyVersion = uint(version)
		if match[2] != "" {
			envelope.Algorithm = Algorithm(match[2])
			envelope.Format = FormatCurrent
		} else {
			envelope.Format = FormatLegacyVersioned
		}
		rest = content[len(match[0]):]
	}

	parts := strings.Split(rest, ":")
	if len(parts) != 3 {
		return Envelope{}, fmt.Errorf(
			"%w: expected 3 fields 'iv:tag:ciphertext', got %d",
			ErrInvalidEnvelopeFormat,
			len(parts),
		)
	}

	var err error
	if envelope.IV, err = hex.DecodeString(parts[0]); err != nil {
		return Envelope{}, fmt.Errorf("%w: iv is not valid hex: %v", ErrInvalidEnvelopeFormat, err)
	}
	if envelope.AuthTag, err = hex.DecodeString(parts[1]); err != nil {
		return Envelope{}, fmt.Errorf("%w: auth tag is not valid hex: %v", ErrInvalidEnvelopeFormat, err)
	}
	if envelope.Ciphertext, err = hex.DecodeString(parts[2]); err != nil {
		return Envelope{}, fmt.Errorf("%w: ciphertext is not valid hex: %v", ErrInvalidEnvelopeFormat, err)
	}

	return envelope, nil
}

// Legacy reports whether the envelope was parsed from one of the legacy forms.
func (e Envelope) Legacy() bool {
	return e.Format != FormatCurrent
}

// NeedsMigration reports whether the envelope should be re-encrypted to match
// the given current key version and algorithm. True for any legacy form, and
// for current-form envelopes whose version or algorithm differs.
func (e Envelope) NeedsMigration(currentVersion uint, currentAlg Algorithm) bool {
	return e.Legacy() || e.KeyVersion != currentVersion || e.Algorithm != currentAlg
}

// String serializes the envelope in the current wire form:
// "v{N}.{algo}:{ivHex}:{tagHex}:{ctHex}". Legacy forms are never written,
// only read.
func (e Envelope) String() string {
	return fmt.Sprintf(
		"v%d.%s:%s:%s:%s",
		e.KeyVersion,
		e.Algorithm,
		hex.EncodeToString(e.IV),
		hex.EncodeToString(e.AuthTag),
		hex.EncodeToString(e.Ciphertext),
	)
}
