// Package repository provides data persistence implementations for order entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/allisson/marketplace/internal/database"
	"github.com/allisson/marketplace/internal/order/domain"

	apperrors "github.com/allisson/marketplace/internal/errors"
)

const orderColumns = `id, buyer_id, seller_id, product_id, status, tracking_id, created_at, updated_at`

// PostgreSQLOrderRepository handles order persistence for PostgreSQL
type PostgreSQLOrderRepository struct {
	db *sql.DB
}

// NewPostgreSQLOrderRepository creates a new PostgreSQLOrderRepository
func NewPostgreSQLOrderRepository(db *sql.DB) *PostgreSQLOrderRepository {
	return &PostgreSQLOrderRepository{
		db: db,
	}
}

// Create inserts a new order
func (r *PostgreSQLOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO orders (id, buyer_id, seller_id, product_id, status, tracking_id, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query,
		order.ID, order.BuyerID, order.SellerID, order.ProductID, order.Status, order.TrackingID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create order")
	}
	return nil
}

// GetByID retrieves an order by ID without its timeline
func (r *PostgreSQLOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	order, err := scanOrder(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get order by id")
	}
	return order, nil
}

// GetByIDForUpdate retrieves an order and takes a row-level lock so concurrent
// transitions against the same order serialize. Must run inside a transaction.
func (r *PostgreSQLOrderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1 FOR UPDATE`, orderColumns)

	order, err := scanOrder(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "failed to lock order")
	}
	return order, nil
}

// UpdateStatus persists a status transition and the tracking id
func (r *PostgreSQLOrderRepository) UpdateStatus(ctx context.Context, order *domain.Order) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE orders SET status = $1, tracking_id = $2, updated_at = NOW() WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, order.Status, order.TrackingID, order.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update order status")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows")
	}
	if rows == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// CreateTimelineEntry appends one audit record for a transition
func (r *PostgreSQLOrderRepository) CreateTimelineEntry(ctx context.Context, entry *domain.TimelineEntry) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO order_timeline_entries (id, order_id, status, detail, created_at)
			  VALUES ($1, $2, $3, $4, NOW())`

	_, err := querier.ExecContext(ctx, query, entry.ID, entry.OrderID, entry.Status, []byte(entry.Detail))
	if err != nil {
		return apperrors.Wrap(err, "failed to create timeline entry")
	}
	return nil
}

// ListTimeline returns the order's audit trail ordered by createdAt ascending
func (r *PostgreSQLOrderRepository) ListTimeline(ctx context.Context, orderID uuid.UUID) ([]*domain.TimelineEntry, error) {
	entries, err := r.listTimelineForOrders(ctx, []uuid.UUID{orderID})
	if err != nil {
		return nil, err
	}
	return entries[orderID], nil
}

// ListByUser returns a page of the user's orders, newest first
func (r *PostgreSQLOrderRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	role domain.Role,
	offset, limit int,
) ([]*domain.Order, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(
		`SELECT %s FROM orders WHERE %s = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3`,
		orderColumns, roleColumn(role),
	)

	rows, err := querier.QueryContext(ctx, query, userID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list orders")
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan order")
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate orders")
	}

	if err := r.hydrateTimelines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CountByUser returns the total number of the user's orders for a role
func (r *PostgreSQLOrderRepository) CountByUser(ctx context.Context, userID uuid.UUID, role domain.Role) (int, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM orders WHERE %s = $1`, roleColumn(role))

	var count int
	if err := querier.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count orders")
	}
	return count, nil
}

// hydrateTimelines loads the timelines for a batch of orders in one query.
func (r *PostgreSQLOrderRepository) hydrateTimelines(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	orderIDs := make([]uuid.UUID, 0, len(orders))
	for _, order := range orders {
		orderIDs = append(orderIDs, order.ID)
	}

	timelines, err := r.listTimelineForOrders(ctx, orderIDs)
	if err != nil {
		return err
	}

	for _, order := range orders {
		order.Timeline = timelines[order.ID]
	}
	return nil
}

// listTimelineForOrders loads timeline entries for the given orders keyed by
// order id, each timeline ordered by createdAt ascending.
func (r *PostgreSQLOrderRepository) listTimelineForOrders(
	ctx context.Context,
	orderIDs []uuid.UUID,
) (map[uuid.UUID][]*domain.TimelineEntry, error) {
	querier := database.GetTx(ctx, r.db)

	ids := make([]string, 0, len(orderIDs))
	for _, id := range orderIDs {
		ids = append(ids, id.String())
	}

	query := `SELECT id, order_id, status, detail, created_at
			  FROM order_timeline_entries
			  WHERE order_id = ANY($1)
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list timeline entries")
	}
	defer rows.Close()

	timelines := make(map[uuid.UUID][]*domain.TimelineEntry)
	for rows.Next() {
		var entry domain.TimelineEntry
		var detail []byte
		if err := rows.Scan(&entry.ID, &entry.OrderID, &entry.Status, &detail, &entry.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan timeline entry")
		}
		entry.Detail = detail
		timelines[entry.OrderID] = append(timelines[entry.OrderID], &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate timeline entries")
	}
	return timelines, nil
}

func roleColumn(role domain.Role) string {
	if role == domain.RoleBuyer {
		return "buyer_id"
	}
	return "seller_id"
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(scanner rowScanner) (*domain.Order, error) {
	var order domain.Order
	err := scanner.Scan(
		&order.ID, &order.BuyerID, &order.SellerID, &order.ProductID,
		&order.Status, &order.TrackingID, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
