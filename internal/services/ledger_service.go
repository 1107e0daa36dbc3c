package services

import (
	"context"
	"encoding/json"
	"errors"

	"investhub/internal/db"
	"investhub/internal/models"
	"investhub/internal/money"
	"investhub/internal/store"
	"investhub/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWalletInactive    = errors.New("wallet is inactive")
	ErrAlreadyProcessed  = errors.New("already processed")
	ErrNotFound          = errors.New("not found")
	ErrPlanInactive      = errors.New("plan is not active")
	ErrAmountOutOfRange  = errors.New("amount outside plan bounds")
)

// LedgerService is the only component that mutates wallet balances.
// Every mutation locks the wallet row, applies the delta and appends the
// transaction record inside one serializable database transaction.
type LedgerService struct {
	txRunner     db.TxRunner
	wallets      WalletStore
	transactions TransactionStore
	currency     string
	hub          BalanceHub
}

type WalletStore interface {
	EnsureExists(ctx context.Context, tx store.Execer, id, userID, currency string) error
	GetByUser(ctx context.Context, userID, currency string) (models.Wallet, error)
	GetForUpdate(ctx context.Context, tx store.Getter, userID, currency string) (models.Wallet, error)
	UpdateBalance(ctx context.Context, tx store.Execer, walletID string, balance int64) error
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error
}

type BalanceHub interface {
	BroadcastBalance(userID string, update websocket.BalanceUpdate)
}

func NewLedgerService(txRunner db.TxRunner, wallets WalletStore, transactions TransactionStore, currency string, hub BalanceHub) *LedgerService {
	return &LedgerService{
		txRunner:     txRunner,
		wallets:      wallets,
		transactions: transactions,
		currency:     currency,
		hub:          hub,
	}
}

type CreditRequest struct {
	UserID      string
	AmountMinor int64
	Source      string
	Description string
	Metadata    string
	ReferenceID *string
}

type DebitRequest struct {
	UserID      string
	AmountMinor int64
	Source      string
	Description string
	Metadata    string
	ReferenceID *string
}

func (s *LedgerService) Credit(ctx context.Context, req CreditRequest) (models.Transaction, error) {
	var txn models.Transaction
	var balanceAfter int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		txn, balanceAfter, err = s.CreditInTx(ctx, tx, req)
		return err
	})
	if err != nil {
		return models.Transaction{}, err
	}
	s.broadcast(req.UserID, txn.WalletID, balanceAfter)
	return txn, nil
}

// CreditInTx applies a credit inside a caller-owned transaction so the
// caller's state change and the balance mutation commit together. The
// wallet is created on first use; the insert is protected by the unique
// (user_id, currency) constraint, so concurrent first credits converge
// on one wallet row.
func (s *LedgerService) CreditInTx(ctx context.Context, tx *sqlx.Tx, req CreditRequest) (models.Transaction, int64, error) {
	if req.AmountMinor <= 0 {
		return models.Transaction{}, 0, ErrInvalidAmount
	}
	if err := s.wallets.EnsureExists(ctx, tx, uuid.NewString(), req.UserID, s.currency); err != nil {
		return models.Transaction{}, 0, err
	}
	wallet, err := s.wallets.GetForUpdate(ctx, tx, req.UserID, s.currency)
	if err != nil {
		return models.Transaction{}, 0, err
	}
	newBalance := wallet.Balance + req.AmountMinor
	if err := s.wallets.UpdateBalance(ctx, tx, wallet.ID, newBalance); err != nil {
		return models.Transaction{}, 0, err
	}
	txn, err := s.appendTransaction(ctx, tx, wallet, models.TxTypeCredit, models.TxStatusCompleted, req.AmountMinor, req.Source, req.Description, req.Metadata, req.ReferenceID)
	if err != nil {
		return models.Transaction{}, 0, err
	}
	return txn, newBalance, nil
}

func (s *LedgerService) Debit(ctx context.Context, req DebitRequest) (models.Transaction, error) {
	var txn models.Transaction
	var balanceAfter int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		txn, balanceAfter, err = s.DebitInTx(ctx, tx, req)
		return err
	})
	if err != nil {
		return models.Transaction{}, err
	}
	s.broadcast(req.UserID, txn.WalletID, balanceAfter)
	return txn, nil
}

// DebitInTx fails with ErrInsufficientFunds when the locked balance is
// below the requested amount; nothing is persisted on failure.
func (s *LedgerService) DebitInTx(ctx context.Context, tx *sqlx.Tx, req DebitRequest) (models.Transaction, int64, error) {
	if req.AmountMinor <= 0 {
		return models.Transaction{}, 0, ErrInvalidAmount
	}
	wallet, err := s.wallets.GetForUpdate(ctx, tx, req.UserID, s.currency)
	if err != nil {
		return models.Transaction{}, 0, err
	}
	if !wallet.IsActive {
		return models.Transaction{}, 0, ErrWalletInactive
	}
	if wallet.Balance < req.AmountMinor {
		return models.Transaction{}, 0, ErrInsufficientFunds
	}
	newBalance := wallet.Balance - req.AmountMinor
	if err := s.wallets.UpdateBalance(ctx, tx, wallet.ID, newBalance); err != nil {
		return models.Transaction{}, 0, err
	}
	txn, err := s.appendTransaction(ctx, tx, wallet, models.TxTypeDebit, models.TxStatusCompleted, req.AmountMinor, req.Source, req.Description, req.Metadata, req.ReferenceID)
	if err != nil {
		return models.Transaction{}, 0, err
	}
	return txn, newBalance, nil
}

// RecordFailed appends a failed-status transaction for audit trails of
// rejected requests. The balance is never touched.
func (s *LedgerService) RecordFailed(ctx context.Context, userID string, amountMinor int64, source, description, reason string) (models.Transaction, error) {
	var txn models.Transaction
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		txn, err = s.RecordFailedInTx(ctx, tx, userID, amountMinor, source, description, reason)
		return err
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return txn, nil
}

func (s *LedgerService) RecordFailedInTx(ctx context.Context, tx *sqlx.Tx, userID string, amountMinor int64, source, description, reason string) (models.Transaction, error) {
	if err := s.wallets.EnsureExists(ctx, tx, uuid.NewString(), userID, s.currency); err != nil {
		return models.Transaction{}, err
	}
	wallet, err := s.wallets.GetForUpdate(ctx, tx, userID, s.currency)
	if err != nil {
		return models.Transaction{}, err
	}
	metadata, _ := json.Marshal(map[string]string{"reason": reason})
	return s.appendTransaction(ctx, tx, wallet, models.TxTypeDebit, models.TxStatusFailed, amountMinor, source, description, string(metadata), nil)
}

func (s *LedgerService) GetBalance(ctx context.Context, userID string) (int64, error) {
	wallet, err := s.wallets.GetByUser(ctx, userID, s.currency)
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

func (s *LedgerService) appendTransaction(ctx context.Context, tx *sqlx.Tx, wallet models.Wallet, txType, status string, amount int64, source, description, metadata string, referenceID *string) (models.Transaction, error) {
	if metadata == "" {
		metadata = "{}"
	}
	txn := models.Transaction{
		ID:          uuid.NewString(),
		UserID:      wallet.UserID,
		WalletID:    wallet.ID,
		Type:        txType,
		Status:      status,
		Source:      source,
		Amount:      amount,
		Currency:    wallet.Currency,
		Description: description,
		Metadata:    metadata,
		ReferenceID: referenceID,
	}
	err := s.transactions.Create(ctx, tx, store.TransactionInput{
		ID:          txn.ID,
		UserID:      txn.UserID,
		WalletID:    txn.WalletID,
		Type:        txn.Type,
		Status:      txn.Status,
		Source:      txn.Source,
		Amount:      txn.Amount,
		Currency:    txn.Currency,
		Description: txn.Description,
		Metadata:    txn.Metadata,
		ReferenceID: txn.ReferenceID,
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return txn, nil
}

func (s *LedgerService) broadcast(userID, walletID string, balanceMinor int64) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastBalance(userID, websocket.BalanceUpdate{
		WalletID: walletID,
		Balance:  money.FormatMinor(balanceMinor),
		Currency: s.currency,
	})
}
