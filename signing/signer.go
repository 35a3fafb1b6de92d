package signing

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"

	"github.com/meshnetd/go-meshminer/common/types"
)

// Domain separates signatures by purpose so a signature produced for one
// cannot be replayed for another.
type Domain byte

const (
	// PROOF is the domain for work proof submissions.
	PROOF Domain = 0
	// ADMIN is the domain for administrative messages.
	ADMIN Domain = 1
)

// String returns the string representation of a domain.
func (d Domain) String() string {
	switch d {
	case PROOF:
		return "PROOF"
	case ADMIN:
		return "ADMIN"
	default:
		return "UNKNOWN"
	}
}

type edSignerOption struct {
	priv   PrivateKey
	prefix []byte
}

// EdSignerOptionFunc modifies EdSigner.
type EdSignerOptionFunc func(*edSignerOption) error

// WithPrefix sets the prefix used by EdSigner. This usually is the Network ID.
func WithPrefix(prefix []byte) EdSignerOptionFunc {
	return func(opt *edSignerOption) error {
		opt.prefix = prefix
		return nil
	}
}

// WithPrivateKey sets the private key used by EdSigner.
func WithPrivateKey(priv PrivateKey) EdSignerOptionFunc {
	return func(opt *edSignerOption) error {
		if opt.priv != nil {
			return errors.New("invalid option WithPrivateKey: private key already set")
		}
		if len(priv) != ed25519.PrivateKeySize {
			return errors.New("could not create EdSigner: invalid key length")
		}
		keyPair := ed25519.NewKeyFromSeed(priv[:32])
		if !bytes.Equal(keyPair[32:], Public(priv)) {
			return errors.New("private and public do not match")
		}
		opt.priv = priv
		return nil
	}
}

// FromFile loads a hex-encoded private key from a file.
func FromFile(path string) EdSignerOptionFunc {
	return func(opt *edSignerOption) error {
		if opt.priv != nil {
			return errors.New("invalid option FromFile: private key already set")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to open key file at %s: %w", path, err)
		}
		if n := hex.DecodedLen(len(data)); n != PrivateKeySize {
			return fmt.Errorf("invalid key size %d/%d for %s", n, PrivateKeySize, filepath.Base(path))
		}
		dst := make([]byte, PrivateKeySize)
		n, err := hex.Decode(dst, data)
		if err != nil || n != PrivateKeySize {
			return fmt.Errorf("decoding private key in %s: %w", filepath.Base(path), err)
		}
		return WithPrivateKey(dst)(opt)
	}
}

// WithKeyFromRand sets the private key used by EdSigner using predictable randomness source.
func WithKeyFromRand(rand io.Reader) EdSignerOptionFunc {
	return func(opt *edSignerOption) error {
		_, priv, err := ed25519.GenerateKey(rand)
		if err != nil {
			return fmt.Errorf("could not generate key pair: %w", err)
		}
		opt.priv = priv
		return nil
	}
}

// EdSigner represents an ED25519 signer.
type EdSigner struct {
	priv   PrivateKey
	prefix []byte
}

// NewEdSigner returns an auto-generated ed signer.
func NewEdSigner(opts ...EdSignerOptionFunc) (*EdSigner, error) {
	cfg := &edSignerOption{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.priv == nil {
		_, priv, err := ed25519.GenerateKey(nil)
		if err != nil {
			return nil, fmt.Errorf("could not generate key pair: %w", err)
		}
		cfg.priv = priv
	}
	return &EdSigner{
		priv:   cfg.priv,
		prefix: cfg.prefix,
	}, nil
}

// Sign signs the provided message in the given domain.
func (es *EdSigner) Sign(d Domain, m []byte) types.EdSignature {
	msg := make([]byte, 0, len(es.prefix)+1+len(m))
	msg = append(msg, es.prefix...)
	msg = append(msg, byte(d))
	msg = append(msg, m...)

	return *(*[types.EdSignatureSize]byte)(ed25519.Sign(es.priv, msg))
}

// RigID returns the rig ID of the signer.
func (es *EdSigner) RigID() types.RigID {
	return types.BytesToRigID(es.PublicKey().Bytes())
}

// PublicKey returns the public key of the signer.
func (es *EdSigner) PublicKey() *PublicKey {
	return NewPublicKey(Public(es.priv))
}

// PrivateKey returns private key.
func (es *EdSigner) PrivateKey() PrivateKey {
	return es.priv
}

// Prefix returns the signing prefix.
func (es *EdSigner) Prefix() []byte {
	return es.prefix
}

// Matches implements the gomock.Matcher interface for testing.
func (es *EdSigner) Matches(x any) bool {
	if other, ok := x.(*EdSigner); ok {
		return bytes.Equal(es.priv, other.priv)
	}
	return false
}

func (es *EdSigner) String() string {
	return es.RigID().ShortString()
}
