package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	domainErrors "github.com/cassiomorais/gateway/internal/domain/errors"
	"github.com/cassiomorais/gateway/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PaymentRepository implements payment.Repository using PostgreSQL.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Create inserts a new payment.
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO payments
		 (id, gateway, is_active, charge_status, total, captured_amount, currency,
		  token, customer_id, card_brand, card_first_digits, card_last_digits,
		  card_exp_month, card_exp_year, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		p.ID, p.Gateway, p.IsActive, string(p.ChargeStatus),
		p.Total.String(), p.CapturedAmount.String(), p.Currency,
		p.Token, p.CustomerID,
		p.Card.Brand, p.Card.FirstDigits, p.Card.LastDigits,
		p.Card.ExpMonth, p.Card.ExpYear,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID retrieves a payment by its ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return r.scanPayment(r.db(ctx).QueryRow(ctx,
		`SELECT id, gateway, is_active, charge_status, total, captured_amount, currency,
		        token, customer_id, card_brand, card_first_digits, card_last_digits,
		        card_exp_month, card_exp_year, created_at, updated_at
		 FROM payments WHERE id = $1`, id))
}

// Update writes back the mutable payment fields.
func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE payments SET
		  is_active=$1, charge_status=$2, captured_amount=$3,
		  card_brand=$4, card_first_digits=$5, card_last_digits=$6,
		  card_exp_month=$7, card_exp_year=$8, updated_at=$9
		 WHERE id=$10`,
		p.IsActive, string(p.ChargeStatus), p.CapturedAmount.String(),
		p.Card.Brand, p.Card.FirstDigits, p.Card.LastDigits,
		p.Card.ExpMonth, p.Card.ExpYear, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrPaymentNotFound
	}
	return nil
}

// AddTransaction appends a transaction to the payment's audit trail.
func (r *PaymentRepository) AddTransaction(ctx context.Context, txn *payment.Transaction) error {
	var response []byte
	if txn.GatewayResponse != nil {
		var err error
		response, err = json.Marshal(txn.GatewayResponse)
		if err != nil {
			return fmt.Errorf("marshal gateway response: %w", err)
		}
	}

	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO transactions
		 (id, payment_id, kind, token, is_success, amount, currency, error, gateway_response, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		txn.ID, txn.PaymentID, string(txn.Kind), txn.Token, txn.IsSuccess,
		txn.Amount.String(), txn.Currency, txn.Error, response, txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// LatestSuccessfulTransaction returns the most recent successful
// transaction of the given kind, or nil when none exists.
func (r *PaymentRepository) LatestSuccessfulTransaction(ctx context.Context, paymentID uuid.UUID, kind payment.TransactionKind) (*payment.Transaction, error) {
	txn, err := r.scanTransaction(r.db(ctx).QueryRow(ctx,
		`SELECT id, payment_id, kind, token, is_success, amount, currency, error, gateway_response, created_at
		 FROM transactions
		 WHERE payment_id = $1 AND kind = $2 AND is_success
		 ORDER BY created_at DESC
		 LIMIT 1`, paymentID, string(kind)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return txn, nil
}

// ListTransactions returns the payment's transactions, newest first.
func (r *PaymentRepository) ListTransactions(ctx context.Context, paymentID uuid.UUID) ([]*payment.Transaction, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, payment_id, kind, token, is_success, amount, currency, error, gateway_response, created_at
		 FROM transactions WHERE payment_id = $1 ORDER BY created_at DESC`, paymentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*payment.Transaction
	for rows.Next() {
		txn, err := r.scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

// --- scanning helpers ---

func (r *PaymentRepository) scanPayment(s scanner) (*payment.Payment, error) {
	p := &payment.Payment{}
	var (
		chargeStatus string
		totalStr     string
		capturedStr  string
	)
	err := s.Scan(
		&p.ID, &p.Gateway, &p.IsActive, &chargeStatus, &totalStr, &capturedStr, &p.Currency,
		&p.Token, &p.CustomerID, &p.Card.Brand, &p.Card.FirstDigits, &p.Card.LastDigits,
		&p.Card.ExpMonth, &p.Card.ExpYear, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}

	if p.Total, err = decimal.NewFromString(totalStr); err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if p.CapturedAmount, err = decimal.NewFromString(capturedStr); err != nil {
		return nil, fmt.Errorf("parse captured amount: %w", err)
	}
	p.ChargeStatus = payment.ChargeStatus(chargeStatus)
	return p, nil
}

func (r *PaymentRepository) scanTransaction(s scanner) (*payment.Transaction, error) {
	txn := &payment.Transaction{}
	var (
		kind      string
		amountStr string
		response  []byte
	)
	err := s.Scan(
		&txn.ID, &txn.PaymentID, &kind, &txn.Token, &txn.IsSuccess,
		&amountStr, &txn.Currency, &txn.Error, &response, &txn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	if txn.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	txn.Kind = payment.TransactionKind(kind)
	if len(response) > 0 {
		txn.GatewayResponse = make(map[string]any)
		if err := json.Unmarshal(response, &txn.GatewayResponse); err != nil {
			return nil, fmt.Errorf("unmarshal gateway response: %w", err)
		}
	}
	return txn, nil
}
