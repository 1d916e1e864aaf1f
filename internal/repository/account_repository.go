package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/abpira/accounts/shared/models"
)

const accountColumns = `account_number, customer_id, account_type, branch_address, created_at, created_by, updated_at, updated_by`

func (s *PostgresStore) FindAccountByID(ctx context.Context, accountNumber int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	return s.scanAccount(s.q.QueryRowContext(ctx, query, accountNumber))
}

func (s *PostgresStore) FindAccountByCustomerID(ctx context.Context, customerID int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE customer_id = $1 ORDER BY created_at, account_number LIMIT 1`
	return s.scanAccount(s.q.QueryRowContext(ctx, query, customerID))
}

// SaveAccount tries an update first since account numbers are assigned by
// the caller, not the database.
func (s *PostgresStore) SaveAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	updated := *account
	s.stampUpdated(ctx, &updated.Audit)
	query := `
		UPDATE accounts
		SET customer_id = $2, account_type = $3, branch_address = $4, updated_at = $5, updated_by = $6
		WHERE account_number = $1
	`
	result, err := s.q.ExecContext(ctx, query,
		updated.AccountNumber, updated.CustomerID, updated.AccountType, updated.BranchAddress,
		*updated.UpdatedAt, updated.UpdatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	err = expectRows(result)
	if err == nil {
		*account = updated
		return account, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to update account %d: %w", account.AccountNumber, err)
	}
	return s.insertAccount(ctx, account)
}

func (s *PostgresStore) insertAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	s.stampCreated(ctx, &account.Audit)
	query := `
		INSERT INTO accounts (account_number, customer_id, account_type, branch_address, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.q.ExecContext(ctx, query,
		account.AccountNumber, account.CustomerID, account.AccountType, account.BranchAddress,
		account.CreatedAt, account.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create account %d: %w", account.AccountNumber, ErrDuplicateKey)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

func (s *PostgresStore) DeleteAccountsByCustomerID(ctx context.Context, customerID int64) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM accounts WHERE customer_id = $1`, customerID); err != nil {
		return fmt.Errorf("failed to delete accounts: %w", err)
	}
	return nil
}

func (s *PostgresStore) scanAccount(row *sql.Row) (*models.Account, error) {
	var account models.Account
	var cols auditColumns
	err := row.Scan(
		&account.AccountNumber, &account.CustomerID, &account.AccountType, &account.BranchAddress,
		&account.CreatedAt, &account.CreatedBy, &cols.updatedAt, &cols.updatedBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	cols.apply(&account.Audit)
	return &account, nil
}
