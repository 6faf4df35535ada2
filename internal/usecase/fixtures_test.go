package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"signet/internal/domain"
	"signet/internal/infra/crypto"
)

var (
	keyFixtureOnce sync.Once
	keyFixtures    []domain.KeyPair
	keyFixtureErr  error
)

// testKeyPairs returns three shared 2048-bit pairs.
func testKeyPairs(t *testing.T) []domain.KeyPair {
	t.Helper()
	keyFixtureOnce.Do(func() {
		provisioner := crypto.NewProvisioner()
		for i := 0; i < 3; i++ {
			pair, err := provisioner.GenerateKeyPair()
			if err != nil {
				keyFixtureErr = err
				return
			}
			keyFixtures = append(keyFixtures, pair)
		}
	})
	if keyFixtureErr != nil {
		t.Fatalf("generate key pairs: %v", keyFixtureErr)
	}
	return keyFixtures
}

func testPrincipal(id, email string, pair domain.KeyPair) domain.Principal {
	return domain.Principal{
		ID:            id,
		Email:         email,
		Name:          id,
		PublicKeyPEM:  pair.PublicKeyPEM,
		PrivateKeyPEM: pair.PrivateKeyPEM,
		CreatedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func fixedClock() time.Time {
	return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
}

type stubPrincipalRepo struct {
	mu        sync.Mutex
	byID      map[string]domain.Principal
	order     []string
	err       error
	getCalls  int
	listCalls int
	creates   int
}

func newStubPrincipalRepo(principals ...domain.Principal) *stubPrincipalRepo {
	r := &stubPrincipalRepo{byID: map[string]domain.Principal{}}
	for _, p := range principals {
		r.byID[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	return r
}

func (r *stubPrincipalRepo) Get(ctx context.Context, id string) (domain.Principal, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	if r.err != nil {
		return domain.Principal{}, false, r.err
	}
	p, ok := r.byID[id]
	return p, ok, nil
}

func (r *stubPrincipalRepo) Create(ctx context.Context, principal domain.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, existing := range r.byID {
		if existing.Email == principal.Email {
			return fmt.Errorf("%w: %s", domain.ErrPrincipalExists, principal.Email)
		}
	}
	r.creates++
	r.byID[principal.ID] = principal
	r.order = append(r.order, principal.ID)
	return nil
}

func (r *stubPrincipalRepo) ListAll(ctx context.Context) ([]domain.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Principal, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *stubPrincipalRepo) reads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getCalls + r.listCalls
}

type stubMessageRepo struct {
	mu       sync.Mutex
	byID     map[string]domain.SignedMessage
	err      error
	getCalls int
}

func newStubMessageRepo(msgs ...domain.SignedMessage) *stubMessageRepo {
	r := &stubMessageRepo{byID: map[string]domain.SignedMessage{}}
	for _, m := range msgs {
		r.byID[m.ID] = m
	}
	return r
}

func (r *stubMessageRepo) Get(ctx context.Context, id string) (domain.SignedMessage, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	if r.err != nil {
		return domain.SignedMessage{}, false, r.err
	}
	m, ok := r.byID[id]
	return m, ok, nil
}

func (r *stubMessageRepo) Create(ctx context.Context, msg domain.SignedMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.byID[msg.ID] = msg
	return nil
}

type recordingSink struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	err     error
	panics  bool
	ctxErrs []error
}

func (s *recordingSink) Append(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error) {
	if s.panics {
		panic("sink exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	if s.err != nil {
		return domain.AuditEntry{}, s.err
	}
	s.entries = append(s.entries, entry)
	return entry, nil
}

func (s *recordingSink) snapshot() []domain.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuditEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *recordingSink) last(t *testing.T) domain.AuditEntry {
	t.Helper()
	entries := s.snapshot()
	if len(entries) == 0 {
		t.Fatal("expected at least one audit entry")
	}
	return entries[len(entries)-1]
}

type stubIndex struct {
	mu      sync.Mutex
	entries map[string]string
	err     error
	puts    int
}

func newStubIndex() *stubIndex {
	return &stubIndex{entries: map[string]string{}}
}

func (i *stubIndex) Put(ctx context.Context, sig []byte, principalID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.puts++
	if i.err != nil {
		return i.err
	}
	i.entries[string(sig)] = principalID
	return nil
}

func (i *stubIndex) Lookup(ctx context.Context, sig []byte) (string, bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.err != nil {
		return "", false, i.err
	}
	id, ok := i.entries[string(sig)]
	return id, ok, nil
}

// countingCrypto records which public keys were tried.
type countingCrypto struct {
	inner    CryptoService
	mu       sync.Mutex
	verified []string
}

func (c *countingCrypto) Sign(privateKeyPEM string, payload []byte) ([]byte, error) {
	return c.inner.Sign(privateKeyPEM, payload)
}

func (c *countingCrypto) Verify(publicKeyPEM string, payload []byte, sig []byte) (bool, error) {
	c.mu.Lock()
	c.verified = append(c.verified, publicKeyPEM)
	c.mu.Unlock()
	return c.inner.Verify(publicKeyPEM, payload, sig)
}

func (c *countingCrypto) verifyCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.verified)
}

type stubProvisioner struct {
	pair  domain.KeyPair
	err   error
	calls int
}

func (p *stubProvisioner) GenerateKeyPair() (domain.KeyPair, error) {
	p.calls++
	return p.pair, p.err
}

var errBoom = errors.New("boom")
