// Package txsize estimates the virtual size of a transaction from its
// input and output script-type composition, using the segregated-witness
// weight model (vsize = ceil(weight / 4)). It is a pure computation with
// no chain access; fee = ceil(vsize * feeRate) is left to the caller.
package txsize

import "fmt"

// ScriptClass identifies a standard output script type.
type ScriptClass string

const (
	P2PKH  ScriptClass = "p2pkh"
	P2SH   ScriptClass = "p2sh"
	P2WPKH ScriptClass = "p2wpkh"
	P2WSH  ScriptClass = "p2wsh"
	P2TR   ScriptClass = "p2tr"
)

// Serialized script lengths for each standard output type.
const (
	p2pkhScriptLen  = 25
	p2shScriptLen   = 23
	p2wpkhScriptLen = 22
	p2wshScriptLen  = 34
	p2trScriptLen   = 34
)

const (
	// outPointSize is txid (32) + vout index (4).
	outPointSize = 32 + 4

	// sequenceSize is the per-input nSequence field.
	sequenceSize = 4

	// p2pkhSigScriptLen is a signature push (1+73) plus a compressed
	// pubkey push (1+33), the worst case for a P2PKH scriptSig.
	p2pkhSigScriptLen = 108

	// sigWitnessItemSize is a witness stack item holding a maximum-length
	// DER signature with its trailing sighash byte, plus the item length.
	sigWitnessItemSize = 1 + 73

	// keySpendWitnessSize is a taproot key-spend witness: item count,
	// length byte and 64-byte Schnorr signature.
	keySpendWitnessSize = 1 + 1 + 64

	// p2wpkhWitnessSize is item count + signature item + compressed
	// pubkey item.
	p2wpkhWitnessSize = 1 + sigWitnessItemSize + 1 + 33
)

// varIntSize returns the serialized size of a Bitcoin variable-length integer.
func varIntSize(n int) int {
	switch {
	case n < 0xfd:
		return 1
	case n <= 0xffff:
		return 3
	default:
		return 5
	}
}

// multisigScriptLen is the length of an m-of-n CHECKMULTISIG script over
// compressed public keys: OP_m, n pushes of 33 bytes, OP_n, OP_CHECKMULTISIG.
func multisigScriptLen(n int) int {
	return 1 + n*(1+33) + 1 + 1
}

// multisigWitnessSize is the witness for spending an m-of-n P2WSH input:
// item count, the empty item consumed by CHECKMULTISIG's off-by-one, m
// signature items and the witness script item.
func multisigWitnessSize(m, n int) int {
	scriptLen := multisigScriptLen(n)
	return varIntSize(m+2) + 1 + m*sigWitnessItemSize + varIntSize(scriptLen) + scriptLen
}

// outputSize returns the serialized size of one output of the given class.
func outputSize(class ScriptClass) (int, error) {
	var scriptLen int
	switch class {
	case P2PKH:
		scriptLen = p2pkhScriptLen
	case P2SH:
		scriptLen = p2shScriptLen
	case P2WPKH:
		scriptLen = p2wpkhScriptLen
	case P2WSH:
		scriptLen = p2wshScriptLen
	case P2TR:
		scriptLen = p2trScriptLen
	default:
		return 0, fmt.Errorf("%w: output class %q", ErrUnsupportedClass, class)
	}
	return 8 + varIntSize(scriptLen) + scriptLen, nil
}

// inputSize returns the base (non-witness) and witness sizes of one input of
// the given class. P2WSH and P2SH inputs are sized as m-of-n multisig
// spends; P2SH is assumed to wrap a P2WSH multisig script.
func inputSize(class ScriptClass, m, n int) (base, witness int, err error) {
	switch class {
	case P2PKH:
		return outPointSize + varIntSize(p2pkhSigScriptLen) + p2pkhSigScriptLen + sequenceSize, 0, nil
	case P2WPKH:
		return outPointSize + 1 + sequenceSize, p2wpkhWitnessSize, nil
	case P2WSH:
		return outPointSize + 1 + sequenceSize, multisigWitnessSize(m, n), nil
	case P2SH:
		// Nested P2SH-P2WSH: the scriptSig is a single push of the
		// 34-byte witness program.
		return outPointSize + varIntSize(35) + 35 + sequenceSize, multisigWitnessSize(m, n), nil
	case P2TR:
		return outPointSize + 1 + sequenceSize, keySpendWitnessSize, nil
	default:
		return 0, 0, fmt.Errorf("%w: input class %q", ErrUnsupportedClass, class)
	}
}

// Estimate returns the estimated virtual size in vbytes of a transaction
// spending the given input composition into the given output composition,
// with multisig inputs sized as m-of-n spends.
//
// The recipient output is counted on top of the outputs map, and exactly one
// witness-script-hash change output back to the wallet is always accounted
// for: the P2WSH output count is forced to at least one, or to at least two
// when the recipient itself is P2WSH, so destination and change never share
// a slot in the estimate.
func Estimate(m, n int, inputs map[ScriptClass]int, outputs map[ScriptClass]int, recipient ScriptClass) (int, error) {
	if m <= 0 || n <= 0 || m > n {
		return 0, fmt.Errorf("%w: threshold %d-of-%d", ErrInvalidParams, m, n)
	}
	if n > 16 {
		return 0, fmt.Errorf("%w: %d keys exceeds the 16-key script limit", ErrInvalidParams, n)
	}

	outs := make(map[ScriptClass]int, len(outputs)+2)
	for class, count := range outputs {
		if count < 0 {
			return 0, fmt.Errorf("%w: negative output count for %q", ErrInvalidParams, class)
		}
		outs[class] = count
	}
	outs[recipient]++

	// Forced change output back to the multisig wallet address.
	wantChange := 1
	if recipient == P2WSH {
		wantChange = 2
	}
	if outs[P2WSH] < wantChange {
		outs[P2WSH] = wantChange
	}

	var (
		inputCount   int
		base         int
		witnessTotal int
	)
	for class, count := range inputs {
		if count < 0 {
			return 0, fmt.Errorf("%w: negative input count for %q", ErrInvalidParams, class)
		}
		ib, iw, err := inputSize(class, m, n)
		if err != nil {
			return 0, err
		}
		base += count * ib
		witnessTotal += count * iw
		inputCount += count
	}
	if inputCount == 0 {
		return 0, fmt.Errorf("%w: no inputs", ErrInvalidParams)
	}

	outputCount := 0
	for class, count := range outs {
		ob, err := outputSize(class)
		if err != nil {
			return 0, err
		}
		base += count * ob
		outputCount += count
	}

	// Version, in/out counts and locktime.
	base += 4 + varIntSize(inputCount) + varIntSize(outputCount) + 4

	weight := base * 4
	if witnessTotal > 0 {
		// Segwit marker and flag count once, at one weight unit each.
		weight += 2 + witnessTotal
	}
	return (weight + 3) / 4, nil
}
