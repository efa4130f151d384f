// Package script provides the script-engine capability behind the multisig
// lifecycle core: witness multisig address derivation, construction and
// mutation of the partially-signed transaction artifact, per-input signing
// digests, signature application and final extraction of the raw wire
// transaction.
package script

import (
	"github.com/btcsuite/btcd/btcutil/psbt"

	"github.com/bitvaultorg/libmultisig-go/txsize"
)

// Utxo is an unspent output consumed as a transaction input.
type Utxo struct {
	TxID   string `json:"txid"`
	Vout   uint32 `json:"vout"`
	Amount uint64 `json:"amount"` // satoshis
}

// Artifact is the partially-signed transaction being assembled. It wraps a
// PSBT packet together with the witness data every input of the wallet
// shares, and is always owned by exactly one operation at a time: callers
// load it from the store, mutate it, and write it back.
type Artifact struct {
	Packet *psbt.Packet

	witnessScript []byte
	pkScript      []byte
}

// InputCount returns the number of inputs in the artifact.
func (a *Artifact) InputCount() int {
	return len(a.Packet.UnsignedTx.TxIn)
}

// Engine is the capability boundary the lifecycle core programs against.
// Implementations validate signatures before attaching them; a failed
// ApplySignature must leave the artifact unchanged.
type Engine interface {
	// DeriveMultisigAddress derives the wallet address and witness script
	// for an m-of-n multisig over the ordered hex-encoded public keys.
	DeriveMultisigAddress(m int, pubKeys []string) (address, witnessScript string, err error)

	// NewUnsigned creates an empty unsigned artifact for the m-of-n
	// multisig over the ordered hex-encoded public keys.
	NewUnsigned(m int, pubKeys []string) (*Artifact, error)

	// AddInput appends an input spending the given unspent output.
	AddInput(a *Artifact, utxo Utxo) error

	// AddOutput appends an output paying satoshis to address.
	AddOutput(a *Artifact, address string, satoshis uint64) error

	// Serialize encodes the artifact for persistence.
	Serialize(a *Artifact) ([]byte, error)

	// Deserialize decodes a persisted artifact.
	Deserialize(data []byte) (*Artifact, error)

	// SignableDigest returns the digest a signer must sign for the input
	// at inputIndex.
	SignableDigest(a *Artifact, inputIndex int) ([]byte, error)

	// ApplySignature validates the hex-encoded signature for inputIndex
	// against the input digest and the hex-encoded public key, then
	// attaches it to the artifact. The artifact is unchanged on error.
	ApplySignature(a *Artifact, inputIndex int, pubKey, signature string) error

	// FinalizeAndExtract finalizes every input and returns the raw
	// broadcast-ready transaction hex. Valid only once the artifact
	// carries a complete signature set.
	FinalizeAndExtract(a *Artifact) (string, error)

	// ClassifyAddress returns the script class of an address.
	ClassifyAddress(address string) (txsize.ScriptClass, error)
}
