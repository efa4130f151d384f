package multisig

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/bitvaultorg/libmultisig-go/network"
	"github.com/bitvaultorg/libmultisig-go/script"
	"github.com/bitvaultorg/libmultisig-go/store"
)

var testParams = &chaincfg.RegressionNetParams

// testUTXOID is a syntactically valid txid for mock unspent outputs.
var testUTXOID = strings.Repeat("ab", 32)

// fixture wires a Service over a MemStore, the real witness script engine
// and a mock chain with one 100k sat unspent output on the wallet address.
type fixture struct {
	svc          *Service
	store        *store.MemStore
	chain        *network.MockChainService
	keys         []*btcec.PrivateKey
	participants []Participant
}

func newFixture(t *testing.T, n int) *fixture {
	t.Helper()

	keys := make([]*btcec.PrivateKey, n)
	participants := make([]Participant, n)
	for i := range keys {
		key, err := btcec.NewPrivateKey()
		require.NoError(t, err)
		keys[i] = key
		participants[i] = Participant{
			PublicKey: hex.EncodeToString(key.PubKey().SerializeCompressed()),
			UserID:    fmt.Sprintf("user-%d", i+1),
		}
	}

	chain := &network.MockChainService{
		ListUnspentFn: func(ctx context.Context, address string) ([]*network.UTXO, error) {
			return []*network.UTXO{
				{TxID: testUTXOID, Vout: 0, Amount: 100_000, Address: address, Confirmations: 3},
			}, nil
		},
		EstimateFeeRateFn: func(ctx context.Context, targetBlocks int) (float64, error) {
			return 0, network.ErrFeeUnavailable
		},
	}

	st := store.NewMemStore()
	svc := New(st, script.NewWitnessEngine(testParams), chain, Options{Log: zerolog.Nop()})
	return &fixture{
		svc:          svc,
		store:        st,
		chain:        chain,
		keys:         keys,
		participants: participants,
	}
}

// createWallet registers an m-of-n wallet over the fixture keys.
func (f *fixture) createWallet(t *testing.T, m int) *Wallet {
	t.Helper()
	w, err := f.svc.CreateWallet(context.Background(), m, len(f.keys), "test wallet", f.participants)
	require.NoError(t, err)
	return w
}

// initiate starts a spend of 500 sat to a fresh P2WPKH address.
func (f *fixture) initiate(t *testing.T, walletID string) *TxSummary {
	t.Helper()
	summary, err := f.svc.InitiateTransaction(context.Background(), walletID, InitiateRequest{
		Recipient: newRecipientAddress(t),
		Amount:    500,
		FeeRate:   1.0,
	})
	require.NoError(t, err)
	return summary
}

// signAll produces the fixture key's signatures over every input digest of
// the transaction, in input order.
func (f *fixture) signAll(t *testing.T, txID string, key *btcec.PrivateKey) SignatureSubmission {
	t.Helper()
	digests, err := f.svc.UnsignedDigests(context.Background(), txID)
	require.NoError(t, err)

	sigs := make([]string, len(digests))
	for i, d := range digests {
		raw, err := hex.DecodeString(d)
		require.NoError(t, err)
		der := ecdsa.Sign(key, raw).Serialize()
		sigs[i] = hex.EncodeToString(append(der, byte(txscript.SigHashAll)))
	}
	return SignatureSubmission{
		PublicKey:  hex.EncodeToString(key.PubKey().SerializeCompressed()),
		Signatures: sigs,
	}
}

// newRecipientAddress derives a fresh P2WPKH regtest address.
func newRecipientAddress(t *testing.T) string {
	t.Helper()
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	addr, err := btcutil.NewAddressWitnessPubKeyHash(
		btcutil.Hash160(key.PubKey().SerializeCompressed()), testParams)
	require.NoError(t, err)
	return addr.EncodeAddress()
}
