package network

import "context"

// MockChainService is a test double for ChainService.
// All function fields must be set before the corresponding method is called.
type MockChainService struct {
	ListUnspentFn       func(ctx context.Context, address string) ([]*UTXO, error)
	EstimateFeeRateFn   func(ctx context.Context, targetBlocks int) (float64, error)
	BroadcastFn         func(ctx context.Context, rawTxHex string) (string, error)
	GetConfirmationsFn  func(ctx context.Context, txHash string) (int64, error)
	GetBalanceFn        func(ctx context.Context, address string) (*Balance, error)
	GetAddressHistoryFn func(ctx context.Context, address string, page int) ([]*HistoryItem, error)
	GetChainHeightFn    func(ctx context.Context) (uint64, error)
	ImportAddressFn     func(ctx context.Context, address string) error
}

// Compile-time interface check.
var _ ChainService = (*MockChainService)(nil)

func (m *MockChainService) ListUnspent(ctx context.Context, address string) ([]*UTXO, error) {
	return m.ListUnspentFn(ctx, address)
}
func (m *MockChainService) EstimateFeeRate(ctx context.Context, targetBlocks int) (float64, error) {
	return m.EstimateFeeRateFn(ctx, targetBlocks)
}
func (m *MockChainService) Broadcast(ctx context.Context, rawTxHex string) (string, error) {
	return m.BroadcastFn(ctx, rawTxHex)
}
func (m *MockChainService) GetConfirmations(ctx context.Context, txHash string) (int64, error) {
	return m.GetConfirmationsFn(ctx, txHash)
}
func (m *MockChainService) GetBalance(ctx context.Context, address string) (*Balance, error) {
	return m.GetBalanceFn(ctx, address)
}
func (m *MockChainService) GetAddressHistory(ctx context.Context, address string, page int) ([]*HistoryItem, error) {
	return m.GetAddressHistoryFn(ctx, address, page)
}
func (m *MockChainService) GetChainHeight(ctx context.Context) (uint64, error) {
	return m.GetChainHeightFn(ctx)
}
func (m *MockChainService) ImportAddress(ctx context.Context, address string) error {
	return m.ImportAddressFn(ctx, address)
}
