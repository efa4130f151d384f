package multisig

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/bitvaultorg/libmultisig-go/network"
)

// walletIDSeq is the store counter name behind wallet ID generation.
const walletIDSeq = "wallet"

// newWalletID generates a unique wallet identifier: the store's atomic
// counter, zero-padded and prefixed, pushed through a one-way hash and
// base58-encoded. Uniqueness holds as long as the counter is strictly
// increasing and never reused, which the store guarantees.
func (s *Service) newWalletID() (string, error) {
	seq, err := s.store.NextSequence(walletIDSeq)
	if err != nil {
		return "", fmt.Errorf("multisig: wallet id sequence: %w", err)
	}
	digest := sha256.Sum256([]byte(fmt.Sprintf("wlt:%012d", seq)))
	return base58.Encode(digest[:]), nil
}

// CreateWallet registers an m-of-n multisig wallet over the ordered
// participants. All validation happens before any store write: a rejected
// request leaves no trace. Only public key material is stored.
func (s *Service) CreateWallet(ctx context.Context, m, n int, name string, participants []Participant) (*Wallet, error) {
	if m <= 0 || n <= 0 || m > n {
		return nil, fmt.Errorf("%w: %d-of-%d", ErrInvalidThreshold, m, n)
	}
	if len(participants) != n {
		return nil, fmt.Errorf("%w: got %d participants, want %d", ErrParticipantCount, len(participants), n)
	}
	seen := make(map[string]bool, n)
	for i, p := range participants {
		if p.PublicKey == "" {
			return nil, fmt.Errorf("%w: participant %d has empty public key", ErrInvalidParameter, i)
		}
		if seen[p.PublicKey] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateParticipant, p.PublicKey)
		}
		seen[p.PublicKey] = true
	}

	w := &Wallet{
		Name:         name,
		M:            m,
		N:            n,
		Participants: participants,
		CreatedAt:    time.Now().UTC(),
	}

	// The script engine validates each key as a real EC point while
	// deriving the address, so a malformed key also fails before any
	// store write.
	address, witnessScript, err := s.script.DeriveMultisigAddress(m, w.pubKeys())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	w.Address = address
	w.WitnessScript = witnessScript

	id, err := s.newWalletID()
	if err != nil {
		return nil, err
	}
	w.ID = id

	if err := s.saveWallet(w); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("wallet_id", w.ID).
		Str("address", w.Address).
		Int("m", m).
		Int("n", n).
		Msg("multisig wallet created")
	return w, nil
}

// GetWallet returns the stored wallet descriptor. Read-only.
func (s *Service) GetWallet(ctx context.Context, walletID string) (*Wallet, error) {
	if walletID == "" {
		return nil, fmt.Errorf("%w: empty wallet id", ErrInvalidParameter)
	}
	return s.loadWallet(walletID)
}

// ListWallets returns every registered wallet, in no particular order.
func (s *Service) ListWallets(ctx context.Context) ([]*Wallet, error) {
	var wallets []*Wallet
	err := s.store.Iterate(walletKeyPrefix, func(key string, value []byte) error {
		var w Wallet
		if err := json.Unmarshal(value, &w); err != nil {
			return fmt.Errorf("multisig: decode wallet at %q: %w", key, err)
		}
		wallets = append(wallets, &w)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wallets, nil
}

// WalletBalance returns the wallet address's confirmed and unconfirmed
// balance from the blockchain client.
func (s *Service) WalletBalance(ctx context.Context, walletID string) (*network.Balance, error) {
	w, err := s.loadWallet(walletID)
	if err != nil {
		return nil, err
	}
	bal, err := s.chain.GetBalance(ctx, w.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: balance query: %w", ErrUpstream, err)
	}
	return bal, nil
}

// WalletHistory returns one page of the wallet address's transaction
// history from the blockchain client.
func (s *Service) WalletHistory(ctx context.Context, walletID string, page int) ([]*network.HistoryItem, error) {
	w, err := s.loadWallet(walletID)
	if err != nil {
		return nil, err
	}
	items, err := s.chain.GetAddressHistory(ctx, w.Address, page)
	if err != nil {
		return nil, fmt.Errorf("%w: history query: %w", ErrUpstream, err)
	}
	return items, nil
}
