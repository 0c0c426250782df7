package service

import (
	"context"
	"fmt"

	cryptoDomain "github.com/skilder/keyvault/internal/crypto/domain"
	apperrors "github.com/skilder/keyvault/internal/errors"
)

// Defaults for new encryptions.
const (
	// DefaultKeyVersion is the key version used for new envelopes.
	DefaultKeyVersion uint = 2
	// DefaultAlgorithm is the algorithm used for new envelopes.
	DefaultAlgorithm = cryptoDomain.AES256GCM
)

// Encryptor turns plaintext strings into versioned envelope strings and back.
//
// Every operation is a single-shot stateless transform: each call resolves its
// own key through the injected KeyResolver and generates its own IV, so
// concurrent calls need no coordination. Decryption tolerates the two legacy
// envelope forms produced by earlier versions of the system, while encryption
// always writes the current form.
type Encryptor struct {
	resolver         KeyResolver
	currentVersion   uint
	currentAlgorithm cryptoDomain.Algorithm
}

// NewEncryptor creates an encryptor that encrypts under the given current key
// version and algorithm, resolving key material through resolver.
//
// Returns ErrUnsupportedAlgorithm if the algorithm is outside the supported
// set, or an invalid-input error if the version is zero.
func NewEncryptor(
	resolver KeyResolver,
	currentVersion uint,
	currentAlgorithm cryptoDomain.Algorithm,
) (*Encryptor, error) {
	if !currentAlgorithm.Valid() {
		return nil, fmt.Errorf("%w: %q", cryptoDomain.ErrUnsupportedAlgorithm, currentAlgorithm)
	}
	if currentVersion < 1 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "current key version must be at least 1")
	}

	return &Encryptor{
		resolver:         resolver,
		currentVersion:   currentVersion,
		currentAlgorithm: currentAlgorithm,
	}, nil
}

// CurrentVersion returns the key version used for new encryptions.
func (e *Encryptor) CurrentVersion() uint {
	return e.currentVersion
}

// CurrentAlgorithm returns the algorithm used for new encryptions.
func (e *Encryptor) CurrentAlgorithm() cryptoDomain.Algorithm {
	return e.currentAlgorithm
}

// Encrypt encrypts plaintext under the current key version and algorithm and
// returns the envelope string "v{N}.{algo}:{ivHex}:{tagHex}:{ctHex}".
//
// The plaintext may be empty or contain arbitrary UTF-8; it is encrypted as
// raw bytes. Failures wrap the underlying cause with "encryption failed".
func (e *Encryptor) Encrypt(ctx context.Context, plaintext string) (string, error) {
	return e.EncryptWith(ctx, plaintext, e.currentVersion, e.currentAlgorithm)
}

// EncryptWith encrypts plaintext under an explicit key version and algorithm.
// Used by re-encryption tooling; regular callers should use Encrypt.
func (e *Encryptor) EncryptWith(
	ctx context.Context,
	plaintext string,
	version uint,
	alg cryptoDomain.Algorithm,
) (string, error) {
	envelope, err := e.encrypt(ctx, []byte(plaintext), version, alg)
	if err != nil {
		return "", apperrors.Wrap(err, "encryption failed")
	}
	return envelope.String(), nil
}

// encrypt performs the unwrapped encryption transform.
func (e *Encryptor) encrypt(
	ctx context.Context,
	plaintext []byte,
	version uint,
	alg cryptoDomain.Algorithm,
) (cryptoDomain.Envelope, error) {
	if _, err := alg.Params(); err != nil {
		return cryptoDomain.Envelope{}, fmt.Errorf("%w: %q", err, alg)
	}

	key, err := e.resolver.Resolve(ctx, version)
	if err != nil {
		return cryptoDomain.Envelope{}, err
	}
	defer cryptoDomain.Zero(key)

	aead, err := NewAEAD(key, alg)
	if err != nil {
		return cryptoDomain.Envelope{}, err
	}

	ciphertext, iv, tag, err := aead.Encrypt(plaintext)
	if err != nil {
		return cryptoDomain.Envelope{}, err
	}

	return cryptoDomain.Envelope{
		KeyVersion: version,
		Algorithm:  alg,
		Format:     cryptoDomain.FormatCurrent,
		IV:         iv,
		AuthTag:    tag,
		Ciphertext: ciphertext,
	}, nil
}

// Decrypt parses an envelope string in any supported wire form and returns the
// original plaintext.
//
// On success the returned string is byte-for-byte identical to what was passed
// to Encrypt. Failures wrap the underlying cause with "decryption failed":
// ErrInvalidEnvelopeFormat for shape or field-length problems, ErrKeyNotSet or
// ErrInvalidKeySize for key configuration problems, ErrUnsupportedAlgorithm
// for unknown algorithm tags, and ErrAuthenticationFailed when the tag does
// not verify (tampering, corruption, or a wrong key for the claimed version).
func (e *Encryptor) Decrypt(ctx context.Context, envelope string) (string, error) {
	plaintext, err := e.decrypt(ctx, envelope)
	if err != nil {
		return "", apperrors.Wrap(err, "decryption failed")
	}
	return string(plaintext), nil
}

// decrypt performs the unwrapped decryption transform.
func (e *Encryptor) decrypt(ctx context.Context, content string) ([]byte, error) {
	envelope, err := cryptoDomain.ParseEnvelope(content, e.currentAlgorithm)
	if err != nil {
		return nil, err
	}

	params, err := envelope.Algorithm.Params()
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, envelope.Algorithm)
	}

	if len(envelope.IV) != params.IVLength {
		return nil, fmt.Errorf(
			"%w: iv must be %d bytes, got %d",
			cryptoDomain.ErrInvalidEnvelopeFormat,
			params.IVLength,
			len(envelope.IV),
		)
	}
	if len(envelope.AuthTag) != params.AuthTagLength {
		return nil, fmt.Errorf(
			"%w: auth tag must be %d bytes, got %d",
			cryptoDomain.ErrInvalidEnvelopeFormat,
			params.AuthTagLength,
			len(envelope.AuthTag),
		)
	}

	key, err := e.resolver.Resolve(ctx, envelope.KeyVersion)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)

	aead, err := NewAEAD(key, envelope.Algorithm)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Decrypt(envelope.Ciphertext, envelope.IV, envelope.AuthTag)
	if err != nil {
		// The exact cipher error is not disclosed; a failed open always means
		// the tag did not verify for this key and envelope.
		return nil, cryptoDomain.ErrAuthenticationFailed
	}

	return plaintext, nil
}

// ReEncrypt decrypts an envelope in any supported form and re-encrypts the
// recovered plaintext under the current key version and algorithm. Used to
// migrate stored ciphertexts forward after key rotation or algorithm
// migration. Failures wrap the underlying cause with "re-encryption failed".
func (e *Encryptor) ReEncrypt(ctx context.Context, envelope string) (string, error) {
	plaintext, err := e.decrypt(ctx, envelope)
	if err != nil {
		return "", apperrors.Wrap(err, "re-encryption failed")
	}
	defer cryptoDomain.Zero(plaintext)

	reEncrypted, err := e.encrypt(ctx, plaintext, e.currentVersion, e.currentAlgorithm)
	if err != nil {
		return "", apperrors.Wrap(err, "re-encryption failed")
	}

	return reEncrypted.String(), nil
}

// NeedsMigration reports whether an envelope should be re-encrypted: true for
// any legacy form, or when its key version or algorithm differs from the
// current defaults. Pure parse inspection; no cryptographic work and no key
// resolution.
func (e *Encryptor) NeedsMigration(envelope string) (bool, error) {
	parsed, err := cryptoDomain.ParseEnvelope(envelope, e.currentAlgorithm)
	if err != nil {
		return false, err
	}
	return parsed.NeedsMigration(e.currentVersion, e.currentAlgorithm), nil
}

// Inspect parses an envelope without decrypting it. Used by migration tooling
// and the inspect endpoint to report version, algorithm and format.
func (e *Encryptor) Inspect(envelope string) (cryptoDomain.Envelope, error) {
	return cryptoDomain.ParseEnvelope(envelope, e.currentAlgorithm)
}
