package script

import "github.com/bitvaultorg/libmultisig-go/txsize"

// MockEngine is a test double for Engine.
// All function fields must be set before the corresponding method is called.
type MockEngine struct {
	DeriveMultisigAddressFn func(m int, pubKeys []string) (string, string, error)
	NewUnsignedFn           func(m int, pubKeys []string) (*Artifact, error)
	AddInputFn              func(a *Artifact, utxo Utxo) error
	AddOutputFn             func(a *Artifact, address string, satoshis uint64) error
	SerializeFn             func(a *Artifact) ([]byte, error)
	DeserializeFn           func(data []byte) (*Artifact, error)
	SignableDigestFn        func(a *Artifact, inputIndex int) ([]byte, error)
	ApplySignatureFn        func(a *Artifact, inputIndex int, pubKey, signature string) error
	FinalizeAndExtractFn    func(a *Artifact) (string, error)
	ClassifyAddressFn       func(address string) (txsize.ScriptClass, error)
}

// Compile-time interface check.
var _ Engine = (*MockEngine)(nil)

func (m *MockEngine) DeriveMultisigAddress(mReq int, pubKeys []string) (string, string, error) {
	return m.DeriveMultisigAddressFn(mReq, pubKeys)
}
func (m *MockEngine) NewUnsigned(mReq int, pubKeys []string) (*Artifact, error) {
	return m.NewUnsignedFn(mReq, pubKeys)
}
func (m *MockEngine) AddInput(a *Artifact, utxo Utxo) error {
	return m.AddInputFn(a, utxo)
}
func (m *MockEngine) AddOutput(a *Artifact, address string, satoshis uint64) error {
	return m.AddOutputFn(a, address, satoshis)
}
func (m *MockEngine) Serialize(a *Artifact) ([]byte, error) {
	return m.SerializeFn(a)
}
func (m *MockEngine) Deserialize(data []byte) (*Artifact, error) {
	return m.DeserializeFn(data)
}
func (m *MockEngine) SignableDigest(a *Artifact, inputIndex int) ([]byte, error) {
	return m.SignableDigestFn(a, inputIndex)
}
func (m *MockEngine) ApplySignature(a *Artifact, inputIndex int, pubKey, signature string) error {
	return m.ApplySignatureFn(a, inputIndex, pubKey, signature)
}
func (m *MockEngine) FinalizeAndExtract(a *Artifact) (string, error) {
	return m.FinalizeAndExtractFn(a)
}
func (m *MockEngine) ClassifyAddress(address string) (txsize.ScriptClass, error) {
	return m.ClassifyAddressFn(address)
}
