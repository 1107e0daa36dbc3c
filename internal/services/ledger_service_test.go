package services

import (
	"context"
	"errors"
	"testing"

	"investhub/internal/models"
)

func TestCreditRejectsInvalidAmount(t *testing.T) {
	wallets := &stubWallets{}
	transactions := &stubTransactions{}
	service := NewLedgerService(fakeTxRunner{}, wallets, transactions, "USD", nil)

	_, err := service.Credit(context.Background(), CreditRequest{UserID: "u1", AmountMinor: 0})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	_, err = service.Credit(context.Background(), CreditRequest{UserID: "u1", AmountMinor: -500})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if len(transactions.inputs) != 0 {
		t.Fatalf("expected no transaction rows, got %d", len(transactions.inputs))
	}
}

func TestCreditUpdatesBalanceAndAppendsTransaction(t *testing.T) {
	wallets := &stubWallets{wallet: models.Wallet{ID: "w1", UserID: "u1", Currency: "USD", Balance: 10000, IsActive: true}}
	transactions := &stubTransactions{}
	hub := &stubHub{}
	service := NewLedgerService(fakeTxRunner{}, wallets, transactions, "USD", hub)

	txn, err := service.Credit(context.Background(), CreditRequest{
		UserID:      "u1",
		AmountMinor: 5000,
		Source:      models.SourceDeposit,
		Description: "test credit",
	})
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if wallets.ensured != 1 {
		t.Fatalf("expected wallet ensure, got %d calls", wallets.ensured)
	}
	if len(wallets.newBalances) != 1 || wallets.newBalances[0] != 15000 {
		t.Fatalf("expected balance 15000, got %v", wallets.newBalances)
	}
	if len(transactions.inputs) != 1 {
		t.Fatalf("expected one transaction row, got %d", len(transactions.inputs))
	}
	input := transactions.inputs[0]
	if input.Type != models.TxTypeCredit || input.Status != models.TxStatusCompleted {
		t.Fatalf("unexpected transaction row: %+v", input)
	}
	if input.Amount != 5000 || input.WalletID != "w1" {
		t.Fatalf("unexpected transaction row: %+v", input)
	}
	if txn.Source != models.SourceDeposit {
		t.Fatalf("expected source %q, got %q", models.SourceDeposit, txn.Source)
	}
	if len(hub.updates) != 1 || hub.updates[0].Balance != "150.00" {
		t.Fatalf("expected one balance push of 150.00, got %v", hub.updates)
	}
}

func TestDebitInsufficientFundsPersistsNothing(t *testing.T) {
	wallets := &stubWallets{wallet: models.Wallet{ID: "w1", UserID: "u1", Currency: "USD", Balance: 1000, IsActive: true}}
	transactions := &stubTransactions{}
	service := NewLedgerService(fakeTxRunner{}, wallets, transactions, "USD", nil)

	_, err := service.Debit(context.Background(), DebitRequest{UserID: "u1", AmountMinor: 2000, Source: models.SourceWithdrawal})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if len(wallets.newBalances) != 0 {
		t.Fatalf("expected no balance writes, got %v", wallets.newBalances)
	}
	if len(transactions.inputs) != 0 {
		t.Fatalf("expected no transaction rows, got %d", len(transactions.inputs))
	}
}

func TestDebitInactiveWallet(t *testing.T) {
	wallets := &stubWallets{wallet: models.Wallet{ID: "w1", UserID: "u1", Currency: "USD", Balance: 5000, IsActive: false}}
	service := NewLedgerService(fakeTxRunner{}, wallets, &stubTransactions{}, "USD", nil)

	_, err := service.Debit(context.Background(), DebitRequest{UserID: "u1", AmountMinor: 1000, Source: models.SourceWithdrawal})
	if !errors.Is(err, ErrWalletInactive) {
		t.Fatalf("expected ErrWalletInactive, got %v", err)
	}
}

func TestRecordFailedNeverTouchesBalance(t *testing.T) {
	wallets := &stubWallets{wallet: models.Wallet{ID: "w1", UserID: "u1", Currency: "USD", Balance: 5000, IsActive: true}}
	transactions := &stubTransactions{}
	service := NewLedgerService(fakeTxRunner{}, wallets, transactions, "USD", nil)

	txn, err := service.RecordFailed(context.Background(), "u1", 2500, models.SourceDeposit, "Deposit rejected", "bad evidence")
	if err != nil {
		t.Fatalf("record failed errored: %v", err)
	}
	if len(wallets.newBalances) != 0 {
		t.Fatalf("expected no balance writes, got %v", wallets.newBalances)
	}
	if txn.Status != models.TxStatusFailed {
		t.Fatalf("expected failed status, got %q", txn.Status)
	}
	if len(transactions.inputs) != 1 || transactions.inputs[0].Status != models.TxStatusFailed {
		t.Fatalf("expected one failed transaction row, got %+v", transactions.inputs)
	}
}

func TestGetBalance(t *testing.T) {
	wallets := &stubWallets{wallet: models.Wallet{ID: "w1", UserID: "u1", Currency: "USD", Balance: 7777}}
	service := NewLedgerService(fakeTxRunner{}, wallets, &stubTransactions{}, "USD", nil)

	balance, err := service.GetBalance(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if balance != 7777 {
		t.Fatalf("expected 7777, got %d", balance)
	}
}
