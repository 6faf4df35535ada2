package usecase

import (
	"context"
	"iter"

	"github.com/rs/zerolog"

	"signet/internal/domain"
)

// FullScan tries every principal in store order. Each iteration fetches a
// fresh snapshot, so principals created mid-scan may or may not be seen.
// Cost is O(number of principals) per verification.
type FullScan struct {
	Principals PrincipalRepository
}

func (s FullScan) Candidates(ctx context.Context, _ []byte) iter.Seq2[domain.Principal, error] {
	return func(yield func(domain.Principal, error) bool) {
		s.scan(ctx, "", yield)
	}
}

func (s FullScan) scan(ctx context.Context, skipID string, yield func(domain.Principal, error) bool) {
	principals, err := s.Principals.ListAll(ctx)
	if err != nil {
		yield(domain.Principal{}, err)
		return
	}
	for _, p := range principals {
		if skipID != "" && p.ID == skipID {
			continue
		}
		if !yield(p, nil) {
			return
		}
	}
}

// IndexedCandidates tries the principal recorded for the signature at sign
// time first, then falls back to a full scan of everyone else. A hit that
// verifies never touches ListAll; a miss or an index failure costs the same
// as FullScan. Outcomes are identical to FullScan.
type IndexedCandidates struct {
	Index      SignatureIndex
	Principals PrincipalRepository
	Logger     zerolog.Logger
}

func (s *IndexedCandidates) Candidates(ctx context.Context, sig []byte) iter.Seq2[domain.Principal, error] {
	return func(yield func(domain.Principal, error) bool) {
		hinted := ""
		if s.Index != nil {
			id, found, err := s.Index.Lookup(ctx, sig)
			switch {
			case err != nil:
				s.Logger.Warn().Err(err).Msg("signature index lookup failed; falling back to full scan")
			case found:
				p, ok, err := s.Principals.Get(ctx, id)
				if err != nil {
					yield(domain.Principal{}, err)
					return
				}
				if ok {
					hinted = p.ID
					if !yield(p, nil) {
						return
					}
				}
			}
		}
		FullScan{Principals: s.Principals}.scan(ctx, hinted, yield)
	}
}
