package script

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/bitvaultorg/libmultisig-go/txsize"
)

// maxMultisigKeys is the largest key count expressible with a single
// OP_N opcode in a CHECKMULTISIG script.
const maxMultisigKeys = 16

// WitnessEngine implements Engine for native witness-script-hash (P2WSH)
// multisig on a btcd chain parameter set.
type WitnessEngine struct {
	params *chaincfg.Params
}

// Compile-time interface check.
var _ Engine = (*WitnessEngine)(nil)

// NewWitnessEngine creates a script engine for the given network parameters.
func NewWitnessEngine(params *chaincfg.Params) *WitnessEngine {
	return &WitnessEngine{params: params}
}

// parsePubKeys decodes and validates the ordered hex public keys, returning
// both the parsed keys and their address form for script construction.
func (e *WitnessEngine) parsePubKeys(pubKeys []string) ([]*btcutil.AddressPubKey, error) {
	addrs := make([]*btcutil.AddressPubKey, len(pubKeys))
	for i, pk := range pubKeys {
		raw, err := hex.DecodeString(pk)
		if err != nil {
			return nil, fmt.Errorf("%w: key %d is not hex: %w", ErrInvalidPubKey, i, err)
		}
		parsed, err := btcec.ParsePubKey(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: key %d: %w", ErrInvalidPubKey, i, err)
		}
		addr, err := btcutil.NewAddressPubKey(parsed.SerializeCompressed(), e.params)
		if err != nil {
			return nil, fmt.Errorf("%w: key %d: %w", ErrInvalidPubKey, i, err)
		}
		addrs[i] = addr
	}
	return addrs, nil
}

// multisigScript builds the m-of-n CHECKMULTISIG witness script and the
// P2WSH address committing to it.
func (e *WitnessEngine) multisigScript(m int, pubKeys []string) (btcutil.Address, []byte, error) {
	if m <= 0 || m > len(pubKeys) || len(pubKeys) > maxMultisigKeys {
		return nil, nil, fmt.Errorf("%w: %d-of-%d", ErrInvalidThreshold, m, len(pubKeys))
	}
	addrs, err := e.parsePubKeys(pubKeys)
	if err != nil {
		return nil, nil, err
	}
	witnessScript, err := txscript.MultiSigScript(addrs, m)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: multisig script: %w", ErrScriptBuild, err)
	}
	scriptHash := sha256.Sum256(witnessScript)
	addr, err := btcutil.NewAddressWitnessScriptHash(scriptHash[:], e.params)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: witness script hash address: %w", ErrScriptBuild, err)
	}
	return addr, witnessScript, nil
}

// DeriveMultisigAddress derives the P2WSH address and witness script for an
// m-of-n multisig over the ordered hex-encoded public keys.
func (e *WitnessEngine) DeriveMultisigAddress(m int, pubKeys []string) (string, string, error) {
	addr, witnessScript, err := e.multisigScript(m, pubKeys)
	if err != nil {
		return "", "", err
	}
	return addr.EncodeAddress(), hex.EncodeToString(witnessScript), nil
}

// NewUnsigned creates an empty unsigned artifact for the multisig wallet.
func (e *WitnessEngine) NewUnsigned(m int, pubKeys []string) (*Artifact, error) {
	addr, witnessScript, err := e.multisigScript(m, pubKeys)
	if err != nil {
		return nil, err
	}
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: wallet pkScript: %w", ErrScriptBuild, err)
	}
	packet, err := psbt.NewFromUnsignedTx(wire.NewMsgTx(2))
	if err != nil {
		return nil, fmt.Errorf("%w: new packet: %w", ErrScriptBuild, err)
	}
	return &Artifact{
		Packet:        packet,
		witnessScript: witnessScript,
		pkScript:      pkScript,
	}, nil
}

// AddInput appends an input spending the given wallet unspent output. The
// input carries the witness UTXO, the wallet witness script and the sighash
// type, so any co-signer holding only the artifact can produce and verify
// signatures.
func (e *WitnessEngine) AddInput(a *Artifact, utxo Utxo) error {
	if len(a.witnessScript) == 0 || len(a.pkScript) == 0 {
		return fmt.Errorf("%w: artifact has no wallet script", ErrInvalidArtifact)
	}
	hash, err := chainhash.NewHashFromStr(utxo.TxID)
	if err != nil {
		return fmt.Errorf("%w: utxo txid %q: %w", ErrScriptBuild, utxo.TxID, err)
	}
	a.Packet.UnsignedTx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, utxo.Vout), nil, nil))
	a.Packet.Inputs = append(a.Packet.Inputs, psbt.PInput{
		WitnessUtxo:   wire.NewTxOut(int64(utxo.Amount), a.pkScript),
		WitnessScript: a.witnessScript,
		SighashType:   txscript.SigHashAll,
	})
	return nil
}

// AddOutput appends an output paying satoshis to address.
func (e *WitnessEngine) AddOutput(a *Artifact, address string, satoshis uint64) error {
	addr, err := btcutil.DecodeAddress(address, e.params)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidAddress, address, err)
	}
	if !addr.IsForNet(e.params) {
		return fmt.Errorf("%w: %q is not for network %s", ErrInvalidAddress, address, e.params.Name)
	}
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return fmt.Errorf("%w: output pkScript: %w", ErrScriptBuild, err)
	}
	a.Packet.UnsignedTx.AddTxOut(wire.NewTxOut(int64(satoshis), pkScript))
	a.Packet.Outputs = append(a.Packet.Outputs, psbt.POutput{})
	return nil
}

// Serialize encodes the artifact in the PSBT wire format.
func (e *WitnessEngine) Serialize(a *Artifact) ([]byte, error) {
	var buf bytes.Buffer
	if err := a.Packet.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("%w: serialize: %w", ErrInvalidArtifact, err)
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a persisted artifact and recovers the wallet witness
// data from its first input.
func (e *WitnessEngine) Deserialize(data []byte) (*Artifact, error) {
	packet, err := psbt.NewFromRawBytes(bytes.NewReader(data), false)
	if err != nil {
		return nil, fmt.Errorf("%w: deserialize: %w", ErrInvalidArtifact, err)
	}
	a := &Artifact{Packet: packet}
	if len(packet.Inputs) > 0 {
		a.witnessScript = packet.Inputs[0].WitnessScript
		if packet.Inputs[0].WitnessUtxo != nil {
			a.pkScript = packet.Inputs[0].WitnessUtxo.PkScript
		}
	}
	return a, nil
}

// prevOutFetcher assembles the previous-output view BIP143 hashing needs
// from the witness UTXOs carried by the artifact.
func prevOutFetcher(a *Artifact) (*txscript.MultiPrevOutFetcher, error) {
	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for i, txIn := range a.Packet.UnsignedTx.TxIn {
		if a.Packet.Inputs[i].WitnessUtxo == nil {
			return nil, fmt.Errorf("%w: input %d has no witness utxo", ErrInvalidArtifact, i)
		}
		fetcher.AddPrevOut(txIn.PreviousOutPoint, a.Packet.Inputs[i].WitnessUtxo)
	}
	return fetcher, nil
}

// SignableDigest returns the BIP143 sighash a signer must sign for the
// input at inputIndex.
func (e *WitnessEngine) SignableDigest(a *Artifact, inputIndex int) ([]byte, error) {
	if inputIndex < 0 || inputIndex >= a.InputCount() {
		return nil, fmt.Errorf("%w: input %d of %d", ErrInputRange, inputIndex, a.InputCount())
	}
	in := &a.Packet.Inputs[inputIndex]
	if len(in.WitnessScript) == 0 || in.WitnessUtxo == nil {
		return nil, fmt.Errorf("%w: input %d missing witness data", ErrInvalidArtifact, inputIndex)
	}
	fetcher, err := prevOutFetcher(a)
	if err != nil {
		return nil, err
	}
	sigHashes := txscript.NewTxSigHashes(a.Packet.UnsignedTx, fetcher)
	digest, err := txscript.CalcWitnessSigHash(in.WitnessScript, sigHashes,
		txscript.SigHashAll, a.Packet.UnsignedTx, inputIndex, in.WitnessUtxo.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: sighash for input %d: %w", ErrScriptBuild, inputIndex, err)
	}
	return digest, nil
}

// ApplySignature validates signature (hex DER with trailing sighash byte)
// for inputIndex against the input digest and pubKey, then attaches it as a
// partial signature. The artifact is unchanged on any error.
func (e *WitnessEngine) ApplySignature(a *Artifact, inputIndex int, pubKey, signature string) error {
	if inputIndex < 0 || inputIndex >= a.InputCount() {
		return fmt.Errorf("%w: input %d of %d", ErrInputRange, inputIndex, a.InputCount())
	}

	rawKey, err := hex.DecodeString(pubKey)
	if err != nil {
		return fmt.Errorf("%w: not hex: %w", ErrInvalidPubKey, err)
	}
	parsedKey, err := btcec.ParsePubKey(rawKey)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPubKey, err)
	}
	compressed := parsedKey.SerializeCompressed()

	in := &a.Packet.Inputs[inputIndex]
	if !bytes.Contains(in.WitnessScript, compressed) {
		return fmt.Errorf("%w: input %d", ErrUnknownSigner, inputIndex)
	}
	for _, ps := range in.PartialSigs {
		if bytes.Equal(ps.PubKey, compressed) {
			return fmt.Errorf("%w: input %d already signed by this key", ErrDuplicateSignature, inputIndex)
		}
	}

	rawSig, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: not hex: %w", ErrInvalidSignature, err)
	}
	if len(rawSig) < 10 {
		return fmt.Errorf("%w: %d bytes is too short", ErrInvalidSignature, len(rawSig))
	}
	if txscript.SigHashType(rawSig[len(rawSig)-1]) != txscript.SigHashAll {
		return fmt.Errorf("%w: sighash type 0x%02x, want SIGHASH_ALL", ErrInvalidSignature, rawSig[len(rawSig)-1])
	}
	parsedSig, err := ecdsa.ParseDERSignature(rawSig[:len(rawSig)-1])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	digest, err := e.SignableDigest(a, inputIndex)
	if err != nil {
		return err
	}
	if !parsedSig.Verify(digest, parsedKey) {
		return fmt.Errorf("%w: verification failed for input %d", ErrInvalidSignature, inputIndex)
	}

	in.PartialSigs = append(in.PartialSigs, &psbt.PartialSig{
		PubKey:    compressed,
		Signature: rawSig,
	})
	return nil
}

// FinalizeAndExtract finalizes every input and returns the raw
// broadcast-ready transaction hex.
func (e *WitnessEngine) FinalizeAndExtract(a *Artifact) (string, error) {
	if err := psbt.MaybeFinalizeAll(a.Packet); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFinalize, err)
	}
	finalTx, err := psbt.Extract(a.Packet)
	if err != nil {
		return "", fmt.Errorf("%w: extract: %w", ErrFinalize, err)
	}
	var buf bytes.Buffer
	if err := finalTx.Serialize(&buf); err != nil {
		return "", fmt.Errorf("%w: serialize final tx: %w", ErrFinalize, err)
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

// ClassifyAddress returns the script class of an address on the engine's
// network.
func (e *WitnessEngine) ClassifyAddress(address string) (txsize.ScriptClass, error) {
	addr, err := btcutil.DecodeAddress(address, e.params)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidAddress, address, err)
	}
	if !addr.IsForNet(e.params) {
		return "", fmt.Errorf("%w: %q is not for network %s", ErrInvalidAddress, address, e.params.Name)
	}
	switch addr.(type) {
	case *btcutil.AddressPubKeyHash:
		return txsize.P2PKH, nil
	case *btcutil.AddressScriptHash:
		return txsize.P2SH, nil
	case *btcutil.AddressWitnessPubKeyHash:
		return txsize.P2WPKH, nil
	case *btcutil.AddressWitnessScriptHash:
		return txsize.P2WSH, nil
	case *btcutil.AddressTaproot:
		return txsize.P2TR, nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedAddress, addr)
	}
}
