package multisig

import "time"

// Status is a transaction lifecycle state. Transitions are monotonic:
//
//	pending -> allsigned -> broadcasted -> finished
//	pending -> cancelled
//
// cancelled and finished are terminal; nothing mutates a transaction in
// either state.
type Status string

const (
	StatusPending     Status = "pending"
	StatusAllSigned   Status = "allsigned"
	StatusBroadcasted Status = "broadcasted"
	StatusFinished    Status = "finished"
	StatusCancelled   Status = "cancelled"
)

// transitions enumerates the legal forward edges of the state machine.
var transitions = map[Status][]Status{
	StatusPending:     {StatusAllSigned, StatusCancelled},
	StatusAllSigned:   {StatusBroadcasted},
	StatusBroadcasted: {StatusFinished},
}

// CanTransition reports whether moving from s to next is a legal edge.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Participant is one co-signer of a multisig wallet.
type Participant struct {
	PublicKey string `json:"public_key"` // hex-encoded EC point
	UserID    string `json:"user_id"`
}

// Wallet is an m-of-n multisig wallet descriptor. Wallets are immutable
// once created and are never deleted. Only public key material is stored.
type Wallet struct {
	ID            string        `json:"wallet_id"`
	Name          string        `json:"name,omitempty"`
	Address       string        `json:"address"`
	WitnessScript string        `json:"witness_script"` // hex
	M             int           `json:"m"`
	N             int           `json:"n"`
	Participants  []Participant `json:"participants"` // ordered, length n
	CreatedAt     time.Time     `json:"created_at"`
}

// pubKeys returns the ordered participant public keys.
func (w *Wallet) pubKeys() []string {
	keys := make([]string, len(w.Participants))
	for i, p := range w.Participants {
		keys[i] = p.PublicKey
	}
	return keys
}

// Transaction is the persisted record of one multisig spend moving through
// the lifecycle state machine. The PSBT field is the shared artifact every
// co-signer's contribution is applied to.
type Transaction struct {
	ID        string `json:"transaction_id"`
	WalletID  string `json:"wallet_id"`
	Recipient string `json:"recipient_address"`
	Amount    uint64 `json:"amount"` // satoshis
	Note      string `json:"note,omitempty"`
	Status    Status `json:"status"`

	PSBT               []byte              `json:"psbt"`
	InputCount         int                 `json:"input_count"`
	RequiredSignatures int                 `json:"required_signatures"`
	Signatures         map[string][]string `json:"signatures"` // signer pubkey -> per-input sigs
	SignaturesReceived int                 `json:"signatures_received"`

	SignedTx string `json:"signed_transaction,omitempty"` // raw tx hex, set at allsigned
	TxHash   string `json:"tx_hash,omitempty"`            // set at broadcast

	InitiatedAt time.Time  `json:"initiated_time"`
	BroadcastAt *time.Time `json:"broadcast_time,omitempty"`
}

// TxSummary is the projection of a Transaction without the artifact or
// signature payloads.
type TxSummary struct {
	ID                 string    `json:"transaction_id"`
	WalletID           string    `json:"wallet_id"`
	Recipient          string    `json:"recipient_address"`
	Amount             uint64    `json:"amount"`
	Note               string    `json:"note,omitempty"`
	Status             Status    `json:"status"`
	SignaturesReceived int       `json:"signatures_received"`
	RequiredSignatures int       `json:"required_signatures"`
	InitiatedAt        time.Time `json:"initiated_time"`
}

// summary projects the transaction record.
func (t *Transaction) summary() *TxSummary {
	return &TxSummary{
		ID:                 t.ID,
		WalletID:           t.WalletID,
		Recipient:          t.Recipient,
		Amount:             t.Amount,
		Note:               t.Note,
		Status:             t.Status,
		SignaturesReceived: t.SignaturesReceived,
		RequiredSignatures: t.RequiredSignatures,
		InitiatedAt:        t.InitiatedAt,
	}
}

// StatusView is the caller-facing status projection of a transaction.
type StatusView struct {
	ID                 string     `json:"transaction_id"`
	Status             Status     `json:"status"`
	SignaturesReceived int        `json:"signatures_received"`
	RequiredSignatures int        `json:"required_signatures"`
	TxHash             string     `json:"tx_hash,omitempty"`
	BroadcastAt        *time.Time `json:"broadcast_time,omitempty"`
}

// statusView projects the transaction record.
func (t *Transaction) statusView() *StatusView {
	return &StatusView{
		ID:                 t.ID,
		Status:             t.Status,
		SignaturesReceived: t.SignaturesReceived,
		RequiredSignatures: t.RequiredSignatures,
		TxHash:             t.TxHash,
		BroadcastAt:        t.BroadcastAt,
	}
}

// InitiateRequest carries the parameters of a new spend.
type InitiateRequest struct {
	Recipient string  `json:"recipient_address"`
	Amount    uint64  `json:"amount"`             // satoshis
	FeeRate   float64 `json:"fee_rate,omitempty"` // sat/vB; 0 = use the node estimate
	Note      string  `json:"note,omitempty"`
}

// SignatureSubmission is one co-signer's batch of per-input signatures,
// ordered by input index.
type SignatureSubmission struct {
	PublicKey  string   `json:"public_key"`
	Signatures []string `json:"signatures"` // hex DER + sighash byte, one per input
}

// SubmitResult reports the outcome of a signature submission.
type SubmitResult struct {
	TransactionID      string `json:"transaction_id"`
	Status             Status `json:"status"`
	SignaturesReceived int    `json:"signatures_received"`
	Remaining          int    `json:"signatures_remaining"`
}
