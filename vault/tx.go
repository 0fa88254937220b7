// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vault

import (
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/covault/covault/internal/fingerprint"
	"github.com/covault/covault/vault/txsizes"
)

// dustLimit is the relay dust floor in satoshis.  A change output below
// it would be rejected by the network, so the remainder is absorbed
// into the fee instead.
const dustLimit = 546

// Tx is a multisig transaction record.  Records are mutated as the
// lifecycle advances and are never deleted; a terminal record is the
// audit trail of the transfer.
type Tx struct {
	// TxID is the fingerprint of the serialized unsigned template.
	TxID string `json:"txId"`

	// WalletID references the funding wallet.
	WalletID string `json:"walletId"`

	// Recipient and Amount (satoshis) carry the transfer intent.
	Recipient string `json:"recipientAddress"`
	Amount    int64  `json:"amount"`

	// Fee is the network fee in satoshis committed at initiation.
	Fee int64 `json:"fee"`

	Status TxStatus `json:"status"`

	// Template is the serialized transaction template, updated as
	// signatures accumulate.
	Template []byte `json:"template"`

	// InputCount is the number of funding inputs consumed.
	InputCount int `json:"inputCount"`

	// RequiredSignatures equals the wallet threshold at creation.
	RequiredSignatures int `json:"requiredSignatures"`

	// Signatures maps each signer's hex public key to its per-input
	// signature list (hex DER).  A signer appears at most once.
	Signatures map[string][]string `json:"signatures"`

	// SignaturesReceived always equals len(Signatures).
	SignaturesReceived int `json:"signaturesReceived"`

	// SignedTx is the finalized raw transaction, present once the
	// threshold is reached.
	SignedTx []byte `json:"signedTransaction,omitempty"`

	InitiatedTime time.Time `json:"initiatedTime"`
	BroadcastTime time.Time `json:"broadcastTime,omitempty"`

	// TxHash is the network hash, set on broadcast.
	TxHash string `json:"txHash,omitempty"`

	Note string `json:"note,omitempty"`
}

// StatusSummary is returned by signature submission and status queries.
type StatusSummary struct {
	TxID                string
	Status              TxStatus
	SignaturesReceived  int
	SignaturesRemaining int
	Confirmations       int64
	TxHash              string
}

// BroadcastReceipt reports a successful network submission.
type BroadcastReceipt struct {
	TxID          string
	TxHash        string
	BroadcastTime time.Time
}

func (tx *Tx) summary() *StatusSummary {
	return &StatusSummary{
		TxID:                tx.TxID,
		Status:              tx.Status,
		SignaturesReceived:  tx.SignaturesReceived,
		SignaturesRemaining: tx.RequiredSignatures - tx.SignaturesReceived,
		TxHash:              tx.TxHash,
	}
}

// setStatus applies a lifecycle transition, rejecting illegal ones.
func (tx *Tx) setStatus(next TxStatus) error {
	if !tx.Status.canTransition(next) {
		return stateError(tx.TxID, tx.Status, next)
	}
	tx.Status = next
	return nil
}

// Initiate builds an unsigned transaction spending the wallet's
// available outputs: every spendable output becomes an input, the
// requested amount pays the recipient, and any remainder above the dust
// floor returns to the wallet address as change.  The fee is the
// estimated virtual size times feeRate (sat/vB).  All validation and
// computation happen before the first write, so a failed call leaves no
// partial state.
func (m *Manager) Initiate(walletID, recipient string, amount,
	feeRate int64, note string) (*Tx, error) {

	if amount <= 0 {
		return nil, newError(ErrValidation,
			"amount must be positive", nil)
	}
	if feeRate <= 0 {
		return nil, newError(ErrValidation,
			"fee rate must be positive", nil)
	}
	recipientAddr, err := btcutil.DecodeAddress(recipient, m.params)
	if err != nil {
		return nil, newError(ErrValidation,
			"invalid recipient address "+recipient, err)
	}

	w, err := m.fetchWallet(walletID)
	if err != nil {
		return nil, err
	}

	utxos, err := m.chain.ListUnspent(w.Address)
	if err != nil {
		return nil, newError(ErrExternalService,
			"list spendable outputs", err)
	}
	if len(utxos) == 0 {
		return nil, newError(ErrNoFunds,
			"wallet "+walletID+" has no spendable outputs", nil)
	}

	pubKeys, err := w.pubKeyBytes()
	if err != nil {
		return nil, err
	}
	tmpl, err := m.engine.NewTemplate(w.M, pubKeys)
	if err != nil {
		return nil, newError(ErrScript, "create template", err)
	}

	var totalIn int64
	for _, utxo := range utxos {
		if err := tmpl.AddInput(utxo.TxID, utxo.Vout); err != nil {
			return nil, newError(ErrScript, "add funding input",
				err)
		}
		totalIn += utxo.Amount
	}

	vsize := txsizes.EstimateVirtualSize(
		w.M, w.N, len(utxos),
		[]txsizes.ScriptKind{txsizes.KindForAddress(recipientAddr)},
	)
	fee := int64(vsize) * feeRate

	if totalIn < amount+fee {
		return nil, newError(ErrInsufficientFunds, fmt.Sprintf(
			"available %d sat cannot cover %d sat plus %d sat fee",
			totalIn, amount, fee), nil)
	}

	if err := tmpl.AddOutput(recipient, amount); err != nil {
		return nil, newError(ErrScript, "add recipient output", err)
	}

	change := totalIn - amount - fee
	if change >= dustLimit {
		if err := tmpl.AddOutput(w.Address, change); err != nil {
			return nil, newError(ErrScript, "add change output",
				err)
		}
	} else {
		// A sub-dust remainder is unspendable in practice; let the
		// miners have it.
		fee += change
	}

	raw, err := tmpl.Serialize()
	if err != nil {
		return nil, newError(ErrScript, "serialize template", err)
	}

	tx := &Tx{
		TxID:               fingerprint.New(raw),
		WalletID:           walletID,
		Recipient:          recipient,
		Amount:             amount,
		Fee:                fee,
		Status:             StatusPending,
		Template:           raw,
		InputCount:         len(utxos),
		RequiredSignatures: w.M,
		Signatures:         make(map[string][]string),
		InitiatedTime:      time.Now().UTC(),
		Note:               note,
	}

	if err := m.putTx(tx); err != nil {
		return nil, err
	}
	if err := m.db.Put(walletTxKey(walletID, tx.TxID), nil); err != nil {
		return nil, newError(ErrDatabase,
			"store wallet transaction index", err)
	}

	log.Infof("Initiated transaction %s from wallet %s: %d sat to %s, "+
		"%d sat fee over %d %s", tx.TxID, walletID, amount, recipient,
		fee, len(utxos), pickNoun(len(utxos), "input", "inputs"))
	return tx, nil
}

// InputDigests returns the exact per-input bytes a participant must
// sign for a pending transaction, in input order.
func (m *Manager) InputDigests(txID string) ([][]byte, error) {
	tx, err := m.fetchTx(txID)
	if err != nil {
		return nil, err
	}
	if tx.Status != StatusPending {
		return nil, newError(ErrInvalidState, fmt.Sprintf(
			"transaction %s is %s, signing digests are only "+
				"available while pending", txID, tx.Status),
			nil)
	}

	tmpl, err := m.engine.ParseTemplate(tx.Template)
	if err != nil {
		return nil, newError(ErrScript, "parse template", err)
	}

	digests := make([][]byte, tmpl.InputCount())
	for idx := range digests {
		digest, err := tmpl.InputDigest(idx)
		if err != nil {
			return nil, newError(ErrScript, "compute input digest",
				err)
		}
		digests[idx] = digest
	}
	return digests, nil
}

// SubmitSignature records one participant's signatures, one per input.
// Signatures are DER encoded without a sighash byte.  A rejected
// submission persists nothing.  When the submission reaches the wallet
// threshold the transaction is finalized and moves to all_signed.
func (m *Manager) SubmitSignature(txID, pubKey string,
	sigs [][]byte) (*StatusSummary, error) {

	pubKeyBytes, err := hex.DecodeString(pubKey)
	if err != nil || len(pubKeyBytes) == 0 {
		return nil, newError(ErrValidation,
			"signer public key is not hex", err)
	}
	normalizedKey := hex.EncodeToString(pubKeyBytes)

	unlock := m.txLocks.lock(txID)
	defer unlock()

	tx, err := m.fetchTx(txID)
	if err != nil {
		return nil, err
	}
	if tx.Status != StatusPending {
		return nil, newError(ErrInvalidState, fmt.Sprintf(
			"transaction %s is %s, signatures are only accepted "+
				"while pending", txID, tx.Status), nil)
	}
	if _, ok := tx.Signatures[normalizedKey]; ok {
		return nil, newError(ErrDuplicateSigner,
			"public key "+normalizedKey+" already signed "+txID,
			nil)
	}
	if len(sigs) != tx.InputCount {
		return nil, newError(ErrValidation, fmt.Sprintf(
			"expected %d signatures (one per input), got %d",
			tx.InputCount, len(sigs)), nil)
	}

	tmpl, err := m.engine.ParseTemplate(tx.Template)
	if err != nil {
		return nil, newError(ErrScript, "parse template", err)
	}

	// Apply every signature before touching the record; a rejection
	// at any index must leave the persisted state untouched.
	for idx, sig := range sigs {
		if err := tmpl.ApplySignature(idx, pubKeyBytes, sig); err != nil {
			return nil, newError(ErrInvalidSignature, fmt.Sprintf(
				"signature for input %d rejected", idx), err)
		}
	}

	sigHex := make([]string, len(sigs))
	for idx, sig := range sigs {
		sigHex[idx] = hex.EncodeToString(sig)
	}
	tx.Signatures[normalizedKey] = sigHex
	tx.SignaturesReceived = len(tx.Signatures)

	updated, err := tmpl.Serialize()
	if err != nil {
		return nil, newError(ErrScript, "serialize template", err)
	}
	tx.Template = updated

	if tx.SignaturesReceived == tx.RequiredSignatures {
		signed, err := tmpl.Finalize()
		if err != nil {
			return nil, newError(ErrScript,
				"finalize transaction", err)
		}
		tx.SignedTx = signed
		if err := tx.setStatus(StatusAllSigned); err != nil {
			return nil, err
		}
		log.Infof("Transaction %s fully signed (%d of %d)", txID,
			tx.SignaturesReceived, tx.RequiredSignatures)
	} else {
		log.Debugf("Transaction %s has %d of %d signatures", txID,
			tx.SignaturesReceived, tx.RequiredSignatures)
	}

	if err := m.putTx(tx); err != nil {
		return nil, err
	}
	return tx.summary(), nil
}

// Cancel abandons a pending transaction.  Cancelled is terminal.
func (m *Manager) Cancel(txID string) (*Tx, error) {
	unlock := m.txLocks.lock(txID)
	defer unlock()

	tx, err := m.fetchTx(txID)
	if err != nil {
		return nil, err
	}
	if err := tx.setStatus(StatusCancelled); err != nil {
		return nil, err
	}
	if err := m.putTx(tx); err != nil {
		return nil, err
	}

	log.Infof("Cancelled transaction %s", txID)
	return tx, nil
}

// Broadcast submits a fully signed transaction to the network.  Network
// failures surface as ErrExternalService with the record unchanged; the
// caller decides whether to retry.
func (m *Manager) Broadcast(txID string) (*BroadcastReceipt, error) {
	unlock := m.txLocks.lock(txID)
	defer unlock()

	tx, err := m.fetchTx(txID)
	if err != nil {
		return nil, err
	}
	if tx.Status != StatusAllSigned {
		return nil, stateError(txID, tx.Status, StatusBroadcasted)
	}

	txHash, err := m.chain.Broadcast(tx.SignedTx)
	if err != nil {
		return nil, newError(ErrExternalService,
			"broadcast transaction "+txID, err)
	}

	tx.TxHash = txHash
	tx.BroadcastTime = time.Now().UTC()
	if err := tx.setStatus(StatusBroadcasted); err != nil {
		return nil, err
	}
	if err := m.putTx(tx); err != nil {
		return nil, err
	}

	log.Infof("Broadcast transaction %s as %s", txID, txHash)
	return &BroadcastReceipt{
		TxID:          txID,
		TxHash:        txHash,
		BroadcastTime: tx.BroadcastTime,
	}, nil
}

// Status returns the transaction's current summary.  For broadcasted
// transactions it polls the network for confirmations and performs the
// single transition to confirmed when one is observed.  The call is
// idempotent and always safe to repeat.
func (m *Manager) Status(txID string) (*StatusSummary, error) {
	tx, err := m.fetchTx(txID)
	if err != nil {
		return nil, err
	}
	if tx.Status != StatusBroadcasted {
		return tx.summary(), nil
	}

	confs, err := m.chain.Confirmations(tx.TxHash)
	if err != nil {
		return nil, newError(ErrExternalService,
			"query confirmations for "+tx.TxHash, err)
	}
	if confs <= 0 {
		return tx.summary(), nil
	}

	unlock := m.txLocks.lock(txID)
	defer unlock()

	// Reload under the lock; a concurrent poller may have already
	// moved the record.
	tx, err = m.fetchTx(txID)
	if err != nil {
		return nil, err
	}
	if tx.Status == StatusBroadcasted {
		if err := tx.setStatus(StatusConfirmed); err != nil {
			return nil, err
		}
		if err := m.putTx(tx); err != nil {
			return nil, err
		}
		log.Infof("Transaction %s confirmed (%d %s)", txID, confs,
			pickNoun(int(confs), "confirmation", "confirmations"))
	}

	summary := tx.summary()
	summary.Confirmations = confs
	return summary, nil
}

// Transactions lists a wallet's transactions, optionally filtered by
// status, ordered by initiation time.
func (m *Manager) Transactions(walletID string, filter *TxStatus) ([]*Tx,
	error) {

	if _, err := m.fetchWallet(walletID); err != nil {
		return nil, err
	}

	ids, err := m.walletTxIDs(walletID)
	if err != nil {
		return nil, err
	}

	txs := make([]*Tx, 0, len(ids))
	for _, id := range ids {
		tx, err := m.fetchTx(id)
		if err != nil {
			return nil, err
		}
		if filter != nil && tx.Status != *filter {
			continue
		}
		txs = append(txs, tx)
	}

	sort.Slice(txs, func(i, j int) bool {
		return txs[i].InitiatedTime.Before(txs[j].InitiatedTime)
	})
	return txs, nil
}
