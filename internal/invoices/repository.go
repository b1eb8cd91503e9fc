package invoices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborlight/harborlight-ops/internal/dates"
	"github.com/harborlight/harborlight-ops/internal/shared"
)

// Repository provides PostgreSQL backed persistence for invoices.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const invoiceColumns = `id, invoice_number, vendor_id, amount, currency, status,
	due_date, delivery_date, order_date, post_date, payment_terms, po_number, notes, created_at`

// ListInvoicesRequest filters the invoice listing.
type ListInvoicesRequest struct {
	Status        string
	VendorID      int64
	InvoiceNumber string
	Limit         int
	Offset        int
}

func filterClause(req ListInvoicesRequest) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if req.Status != "" {
		args = append(args, req.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if req.VendorID != 0 {
		args = append(args, req.VendorID)
		conds = append(conds, fmt.Sprintf("vendor_id = $%d", len(args)))
	}
	if req.InvoiceNumber != "" {
		args = append(args, req.InvoiceNumber)
		conds = append(conds, fmt.Sprintf("invoice_number = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListInvoices returns invoices matching the filter, newest first.
func (r *Repository) ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, error) {
	where, args := filterClause(req)
	query := "SELECT " + invoiceColumns + " FROM invoices" + where
	query += " ORDER BY created_at DESC, id DESC"
	if req.Limit > 0 {
		args = append(args, req.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if req.Offset > 0 {
		args = append(args, req.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// CountInvoices returns how many invoices match the filter.
func (r *Repository) CountInvoices(ctx context.Context, req ListInvoicesRequest) (int, error) {
	where, args := filterClause(req)
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM invoices"+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// FindByNumber returns all invoices carrying exactly the given number.
// Backs the duplicate-number advisory check.
func (r *Repository) FindByNumber(ctx context.Context, number string) ([]Invoice, error) {
	return r.ListInvoices(ctx, ListInvoicesRequest{InvoiceNumber: number})
}

// GetInvoice fetches one invoice by id.
func (r *Repository) GetInvoice(ctx context.Context, id int64) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE id = $1", id)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// CreateInvoice inserts a new invoice and returns it with id and
// created_at populated.
func (r *Repository) CreateInvoice(ctx context.Context, inv Invoice) (*Invoice, error) {
	query := `
		INSERT INTO invoices (
			invoice_number, vendor_id, amount, currency, status,
			due_date, delivery_date, order_date, post_date,
			payment_terms, po_number, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		inv.InvoiceNumber,
		inv.VendorID,
		inv.Amount,
		inv.Currency,
		inv.Status,
		dateParam(inv.DueDate),
		dateParam(inv.DeliveryDate),
		dateParam(inv.OrderDate),
		dateParam(inv.PostDate),
		termsParam(inv.PaymentTerms),
		inv.PONumber,
		inv.Notes,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return &inv, nil
}

// UpdateInvoice overwrites a stored invoice's mutable fields.
func (r *Repository) UpdateInvoice(ctx context.Context, inv Invoice) (*Invoice, error) {
	query := `
		UPDATE invoices SET
			invoice_number = $2, vendor_id = $3, amount = $4, currency = $5,
			status = $6, due_date = $7, delivery_date = $8, order_date = $9,
			post_date = $10, payment_terms = $11, po_number = $12, notes = $13
		WHERE id = $1
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		inv.ID,
		inv.InvoiceNumber,
		inv.VendorID,
		inv.Amount,
		inv.Currency,
		inv.Status,
		dateParam(inv.DueDate),
		dateParam(inv.DeliveryDate),
		dateParam(inv.OrderDate),
		dateParam(inv.PostDate),
		termsParam(inv.PaymentTerms),
		inv.PONumber,
		inv.Notes,
	).Scan(&inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, mapWriteError(err)
	}
	return &inv, nil
}

// DeleteInvoice removes an invoice by id.
func (r *Repository) DeleteInvoice(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// mapWriteError translates Postgres constraint failures on insert/update
// into domain errors. A foreign-key violation (23503) can only mean the
// vendor reference, the invoices table's sole FK.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return shared.ErrVendorNotFound
	}
	return err
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var (
		inv                                     Invoice
		dueAt, deliveredAt, orderedAt, postedAt pgtype.Date
		terms, poNumber, notes                  pgtype.Text
	)
	err := row.Scan(
		&inv.ID,
		&inv.InvoiceNumber,
		&inv.VendorID,
		&inv.Amount,
		&inv.Currency,
		&inv.Status,
		&dueAt,
		&deliveredAt,
		&orderedAt,
		&postedAt,
		&terms,
		&poNumber,
		&notes,
		&inv.CreatedAt,
	)
	if err != nil {
		return Invoice{}, err
	}
	inv.DueDate = dateString(dueAt)
	inv.DeliveryDate = dateString(deliveredAt)
	inv.OrderDate = dateString(orderedAt)
	inv.PostDate = dateString(postedAt)
	inv.PaymentTerms = TermsFromLabel(terms.String)
	inv.PONumber = poNumber.String
	inv.Notes = notes.String
	return inv, nil
}

func dateString(d pgtype.Date) string {
	if !d.Valid {
		return ""
	}
	return dates.Format(dates.FromTime(d.Time))
}

func dateParam(s string) pgtype.Date {
	d := dates.Parse(s)
	if d == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC), Valid: true}
}

func termsParam(t PaymentTerms) pgtype.Text {
	if t.IsZero() {
		return pgtype.Text{}
	}
	if t.Days != nil {
		return pgtype.Text{String: fmt.Sprintf("%d days", *t.Days), Valid: true}
	}
	return pgtype.Text{String: t.Label, Valid: true}
}
