package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"signet/internal/domain"
)

func newRegister(repo PrincipalRepository, keys KeyProvisioner, sink *recordingSink) *RegisterPrincipal {
	return &RegisterPrincipal{
		Principals: repo,
		Keys:       keys,
		Audit:      NewAuditBridge(sink, fixedClock, zerolog.Nop()),
		Clock:      fixedClock,
		NewID:      func() string { return "principal-1" },
	}
}

func TestRegisterPrincipal_CreatesWithBothKeys(t *testing.T) {
	pair := testKeyPairs(t)[0]
	repo := newStubPrincipalRepo()
	sink := &recordingSink{}
	uc := newRegister(repo, &stubProvisioner{pair: pair}, sink)

	p, err := uc.Execute(context.Background(), RegisterPrincipalRequest{Email: "  A@X.com ", Name: " Alice "})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if p.Email != "a@x.com" || p.Name != "Alice" {
		t.Fatalf("expected normalized email and name, got %q %q", p.Email, p.Name)
	}
	if p.PublicKeyPEM != pair.PublicKeyPEM || p.PrivateKeyPEM != pair.PrivateKeyPEM {
		t.Fatal("expected both keys on the returned principal")
	}
	stored, found, _ := repo.Get(context.Background(), p.ID)
	if !found || !stored.HasPublicKey() || !stored.HasPrivateKey() {
		t.Fatalf("expected stored principal to carry both keys, got %+v", stored)
	}
	if !p.CreatedAt.Equal(fixedClock()) {
		t.Fatalf("expected created_at from clock, got %v", p.CreatedAt)
	}

	entry := sink.last(t)
	if entry.Action != domain.AuditActionRegister || entry.Outcome != domain.AuditOutcomeSuccess {
		t.Fatalf("expected REGISTER success audit, got %+v", entry)
	}
	if entry.PrincipalID == nil || *entry.PrincipalID != p.ID {
		t.Fatalf("expected audit to reference principal %s", p.ID)
	}
}

func TestRegisterPrincipal_KeyGenerationFailureCreatesNothing(t *testing.T) {
	repo := newStubPrincipalRepo()
	sink := &recordingSink{}
	uc := newRegister(repo, &stubProvisioner{err: errBoom}, sink)

	_, err := uc.Execute(context.Background(), RegisterPrincipalRequest{Email: "a@x.com"})
	if !errors.Is(err, domain.ErrKeyGeneration) {
		t.Fatalf("expected ErrKeyGeneration, got %v", err)
	}
	if repo.creates != 0 {
		t.Fatalf("expected no principal to be created, got %d", repo.creates)
	}
	if entry := sink.last(t); entry.Outcome != domain.AuditOutcomeFailure {
		t.Fatalf("expected failure audit, got %+v", entry)
	}
}

func TestRegisterPrincipal_PartialPairRejected(t *testing.T) {
	pair := testKeyPairs(t)[0]
	repo := newStubPrincipalRepo()
	uc := newRegister(repo, &stubProvisioner{pair: domain.KeyPair{PublicKeyPEM: pair.PublicKeyPEM}}, &recordingSink{})

	_, err := uc.Execute(context.Background(), RegisterPrincipalRequest{Email: "a@x.com"})
	if !errors.Is(err, domain.ErrKeyGeneration) {
		t.Fatalf("expected ErrKeyGeneration, got %v", err)
	}
	if repo.creates != 0 {
		t.Fatal("expected no principal with a single key")
	}
}

func TestRegisterPrincipal_InvalidEmailSkipsKeyGeneration(t *testing.T) {
	keys := &stubProvisioner{}
	uc := newRegister(newStubPrincipalRepo(), keys, &recordingSink{})

	_, err := uc.Execute(context.Background(), RegisterPrincipalRequest{Email: "nope"})
	if !errors.Is(err, domain.ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if keys.calls != 0 {
		t.Fatal("expected no key generation for an invalid email")
	}
}

func TestRegisterPrincipal_DuplicateEmail(t *testing.T) {
	pair := testKeyPairs(t)[0]
	repo := newStubPrincipalRepo(testPrincipal("existing", "a@x.com", pair))
	uc := newRegister(repo, &stubProvisioner{pair: pair}, &recordingSink{})

	_, err := uc.Execute(context.Background(), RegisterPrincipalRequest{Email: "A@x.com"})
	if !errors.Is(err, domain.ErrPrincipalExists) {
		t.Fatalf("expected ErrPrincipalExists, got %v", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"a@x.com", "a@x.com", true},
		{"  Bob@Example.ORG\n", "bob@example.org", true},
		{"", "", false},
		{"   ", "", false},
		{"no-at-sign", "", false},
		{"@x.com", "", false},
		{"a@", "", false},
		{"a@b@c", "", false},
		{"a b@x.com", "", false},
	}
	for _, tc := range cases {
		got, err := NormalizeEmail(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("NormalizeEmail(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
			}
			continue
		}
		if !errors.Is(err, domain.ErrInvalidEmail) {
			t.Fatalf("NormalizeEmail(%q): expected ErrInvalidEmail, got %v", tc.in, err)
		}
	}
}
