// Package sim is an in-process stand-in for the external homomorphic
// capability, used by dev mode and tests. It keeps plaintexts in memory and
// enforces the same contract the real capability would: proof-gated
// ingestion, per-operation cost metering, and the grant-then-use permission
// rule on stored operands.
//
// Nothing in here is real cryptography; the attestation tag only lets tests
// exercise the verification failure path deterministically.
package sim

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"

	"golang.org/x/crypto/blake2b"

	"duesgate/internal/fhe"
	"duesgate/pkg/platform/sentinel"
)

const nonceLen = 12

type entry struct {
	value uint64
	kind  fhe.Kind
	// scope is the meter under which the handle was produced. Handles are
	// freely usable within their producing operation; any later reference
	// requires a standing self-grant via the policy.
	scope *fhe.Meter
}

// Simulator implements fhe.Capability over an in-memory plaintext table.
type Simulator struct {
	mu      sync.Mutex
	key     []byte
	policy  fhe.UsePolicy
	counter uint64
	entries map[fhe.HandleID]entry
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithKey fixes the attestation key for deterministic tests.
func WithKey(key []byte) Option {
	return func(s *Simulator) {
		s.key = append([]byte(nil), key...)
	}
}

// New creates a simulator. The policy is consulted for every stored operand;
// it must be the access-control manager so the grant-then-use invariant holds.
func New(policy fhe.UsePolicy, opts ...Option) *Simulator {
	s := &Simulator{
		policy:  policy,
		entries: make(map[fhe.HandleID]entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.key == nil {
		s.key = make([]byte, 32)
		if _, err := rand.Read(s.key); err != nil {
			panic(fmt.Sprintf("sim: read random key: %v", err))
		}
	}
	return s
}

// Encrypt builds an attested ciphertext for a plaintext value, playing the
// role of the client-side SDK that encrypts and proves off-system. Tests and
// the dev tooling use it; the core never does.
func (s *Simulator) Encrypt(value uint32) fhe.AttestedCiphertext {
	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		panic(fmt.Sprintf("sim: read nonce: %v", err))
	}
	ct := make([]byte, nonceLen+4)
	copy(ct, nonce)
	pad := s.pad(nonce)
	binary.BigEndian.PutUint32(ct[nonceLen:], value^pad)
	return fhe.AttestedCiphertext{
		Ciphertext: ct,
		Proof:      s.attestTag(ct),
	}
}

func (s *Simulator) pad(nonce []byte) uint32 {
	h := blake2b.Sum256(append(append([]byte("pad:"), s.key...), nonce...))
	return binary.BigEndian.Uint32(h[:4])
}

func (s *Simulator) attestTag(ciphertext []byte) []byte {
	h := blake2b.Sum256(append(append([]byte("attest:"), s.key...), ciphertext...))
	return h[:]
}

func (s *Simulator) Ingest(ctx context.Context, att fhe.AttestedCiphertext) (fhe.Handle, error) {
	if err := charge(ctx, fhe.CostIngest); err != nil {
		return fhe.Handle{}, err
	}
	if len(att.Ciphertext) != nonceLen+4 {
		return fhe.Handle{}, fmt.Errorf("ingest: %w", sentinel.ErrProofInvalid)
	}
	if !hmac.Equal(att.Proof, s.attestTag(att.Ciphertext)) {
		return fhe.Handle{}, fmt.Errorf("ingest: %w", sentinel.ErrProofInvalid)
	}
	pad := s.pad(att.Ciphertext[:nonceLen])
	value := binary.BigEndian.Uint32(att.Ciphertext[nonceLen:]) ^ pad
	return s.newHandle(ctx, uint64(value), fhe.KindUint32), nil
}

func (s *Simulator) Lift(ctx context.Context, value uint32) (fhe.Handle, error) {
	if err := charge(ctx, fhe.CostLift); err != nil {
		return fhe.Handle{}, err
	}
	return s.newHandle(ctx, uint64(value), fhe.KindUint32), nil
}

func (s *Simulator) Zero(ctx context.Context) (fhe.Handle, error) {
	if err := charge(ctx, fhe.CostZero); err != nil {
		return fhe.Handle{}, err
	}
	return s.newHandle(ctx, 0, fhe.KindUint32), nil
}

func (s *Simulator) Add(ctx context.Context, a, b fhe.Handle) (fhe.Handle, error) {
	if err := charge(ctx, fhe.CostAdd); err != nil {
		return fhe.Handle{}, err
	}
	av, err := s.operand(ctx, a, fhe.KindUint32)
	if err != nil {
		return fhe.Handle{}, err
	}
	bv, err := s.operand(ctx, b, fhe.KindUint32)
	if err != nil {
		return fhe.Handle{}, err
	}
	// Wrapping uint32 addition per the encrypted integer width.
	sum := uint32(av) + uint32(bv)
	return s.newHandle(ctx, uint64(sum), fhe.KindUint32), nil
}

func (s *Simulator) Ge(ctx context.Context, a, b fhe.Handle) (fhe.Handle, error) {
	if err := charge(ctx, fhe.CostGe); err != nil {
		return fhe.Handle{}, err
	}
	av, err := s.operand(ctx, a, fhe.KindUint32)
	if err != nil {
		return fhe.Handle{}, err
	}
	bv, err := s.operand(ctx, b, fhe.KindUint32)
	if err != nil {
		return fhe.Handle{}, err
	}
	var result uint64
	if av >= bv {
		result = 1
	}
	return s.newHandle(ctx, result, fhe.KindBool), nil
}

func (s *Simulator) Select(ctx context.Context, cond, ifTrue, ifFalse fhe.Handle) (fhe.Handle, error) {
	if err := charge(ctx, fhe.CostSelect); err != nil {
		return fhe.Handle{}, err
	}
	cv, err := s.operand(ctx, cond, fhe.KindBool)
	if err != nil {
		return fhe.Handle{}, err
	}
	if ifTrue.Kind != ifFalse.Kind {
		return fhe.Handle{}, fmt.Errorf("select: branch kinds differ: %w", sentinel.ErrInvalidState)
	}
	tv, err := s.operand(ctx, ifTrue, ifTrue.Kind)
	if err != nil {
		return fhe.Handle{}, err
	}
	fv, err := s.operand(ctx, ifFalse, ifFalse.Kind)
	if err != nil {
		return fhe.Handle{}, err
	}
	result := fv
	if cv != 0 {
		result = tv
	}
	return s.newHandle(ctx, result, ifTrue.Kind), nil
}

// Reveal returns the plaintext behind a handle. Only the out-of-band
// decryption oracle calls this, after checking its own access grant; the
// core never does.
func (s *Simulator) Reveal(_ context.Context, id fhe.HandleID) (uint64, fhe.Kind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return 0, 0, fmt.Errorf("reveal %s: %w", id, sentinel.ErrNotFound)
	}
	return e.value, e.kind, nil
}

func (s *Simulator) newHandle(ctx context.Context, value uint64, kind fhe.Kind) fhe.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], s.counter)
	// The tag binds the instance key and a counter, nothing value-derived.
	id := fhe.HandleID(blake2b.Sum256(append(append([]byte("handle:"), s.key...), buf[:]...)))
	scope, _ := fhe.MeterFrom(ctx)
	s.entries[id] = entry{value: value, kind: kind, scope: scope}
	return fhe.Handle{ID: id, Kind: kind}
}

// operand resolves a handle, enforcing kind agreement and the grant-then-use
// rule: handles produced under an earlier operation meter are only usable
// when the policy confirms a standing self-grant.
func (s *Simulator) operand(ctx context.Context, h fhe.Handle, want fhe.Kind) (uint64, error) {
	s.mu.Lock()
	e, ok := s.entries[h.ID]
	s.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("operand %s: %w", h.ID, sentinel.ErrNotFound)
	}
	if e.kind != want {
		return 0, fmt.Errorf("operand %s: kind mismatch: %w", h.ID, sentinel.ErrInvalidState)
	}
	current, _ := fhe.MeterFrom(ctx)
	if e.scope != nil && e.scope == current {
		return e.value, nil
	}
	if e.scope == nil && current == nil {
		// Unmetered context (tests wiring handles directly).
		return e.value, nil
	}
	if s.policy == nil {
		return 0, fmt.Errorf("operand %s: no use policy: %w", h.ID, sentinel.ErrPermissionMissing)
	}
	allowed, err := s.policy.SystemMayUse(ctx, h.ID)
	if err != nil {
		return 0, fmt.Errorf("operand %s: use policy: %w", h.ID, err)
	}
	if !allowed {
		return 0, fmt.Errorf("operand %s: %w", h.ID, sentinel.ErrPermissionMissing)
	}
	return e.value, nil
}

// charge debits the operation meter carried in ctx; an unmetered context
// charges nothing.
func charge(ctx context.Context, cost uint64) error {
	if m, ok := fhe.MeterFrom(ctx); ok {
		return m.Charge(cost)
	}
	return nil
}

var _ fhe.Capability = (*Simulator)(nil)
