package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/abpira/accounts/shared/models"
)

const customerColumns = `customer_id, name, email, mobile_number, created_at, created_by, updated_at, updated_by`

func (s *PostgresStore) FindCustomerByMobileNumber(ctx context.Context, mobileNumber string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customer WHERE mobile_number = $1 ORDER BY customer_id LIMIT 1`
	return s.scanCustomer(s.q.QueryRowContext(ctx, query, mobileNumber))
}

func (s *PostgresStore) FindCustomerByID(ctx context.Context, customerID int64) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customer WHERE customer_id = $1`
	return s.scanCustomer(s.q.QueryRowContext(ctx, query, customerID))
}

func (s *PostgresStore) SaveCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if customer.CustomerID == 0 {
		return s.insertCustomer(ctx, customer)
	}
	return s.updateCustomer(ctx, customer)
}

func (s *PostgresStore) insertCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	s.stampCreated(ctx, &customer.Audit)
	query := `
		INSERT INTO customer (name, email, mobile_number, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING customer_id
	`
	err := s.q.QueryRowContext(ctx, query,
		customer.Name, customer.Email, customer.MobileNumber,
		customer.CreatedAt, customer.CreatedBy,
	).Scan(&customer.CustomerID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create customer: %w", ErrDuplicateKey)
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

func (s *PostgresStore) updateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	s.stampUpdated(ctx, &customer.Audit)
	query := `
		UPDATE customer
		SET name = $2, email = $3, mobile_number = $4, updated_at = $5, updated_by = $6
		WHERE customer_id = $1
	`
	result, err := s.q.ExecContext(ctx, query,
		customer.CustomerID, customer.Name, customer.Email, customer.MobileNumber,
		*customer.UpdatedAt, customer.UpdatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	if err := expectRows(result); err != nil {
		return nil, fmt.Errorf("failed to update customer %d: %w", customer.CustomerID, err)
	}
	return customer, nil
}

func (s *PostgresStore) DeleteCustomerByID(ctx context.Context, customerID int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM customer WHERE customer_id = $1`, customerID)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if err := expectRows(result); err != nil {
		return fmt.Errorf("failed to delete customer %d: %w", customerID, err)
	}
	return nil
}

func (s *PostgresStore) scanCustomer(row *sql.Row) (*models.Customer, error) {
	var customer models.Customer
	var cols auditColumns
	err := row.Scan(
		&customer.CustomerID, &customer.Name, &customer.Email, &customer.MobileNumber,
		&customer.CreatedAt, &customer.CreatedBy, &cols.updatedAt, &cols.updatedBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	cols.apply(&customer.Audit)
	return &customer, nil
}

// expectRows turns a zero-row result into ErrNotFound.
func expectRows(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
