package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
	"buildportal/internal/domain/repositories"
)

// PostgresItemRepository implements the ItemRepository interface
type PostgresItemRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewItemRepository creates a new downloadable item repository
func NewItemRepository(config *RepositoryConfig) repositories.ItemRepository {
	return &PostgresItemRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const itemColumns = `id, title, description, file_path, mime_type, size_bytes, price::text,
		       uploader_user_id, download_count, created_at, updated_at`

// Create stores a catalog item
func (r *PostgresItemRepository) Create(ctx context.Context, item *models.DownloadableItem) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, description, file_path, mime_type, size_bytes, price, uploader_user_id)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7)
		RETURNING id, download_count, created_at, updated_at
	`, r.tables.Items)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		item.Title,
		item.Description,
		item.FilePath,
		item.MimeType,
		item.SizeBytes,
		priceArg(item.Price),
		item.UploaderUserID,
	).Scan(&item.ID, &item.DownloadCount, &item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		return StoreError("create item", err)
	}

	return nil
}

// GetByID retrieves an item by ID
func (r *PostgresItemRepository) GetByID(ctx context.Context, id string) (*models.DownloadableItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, itemColumns, r.tables.Items)

	executor := GetExecutor(ctx, r.pool)
	item, err := scanItem(executor.QueryRow(ctx, query, id))
	if err != nil {
		return nil, lookupError("get item", "item", id, err)
	}
	return item, nil
}

// List lists the catalog, newest first
func (r *PostgresItemRepository) List(ctx context.Context) ([]models.DownloadableItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC`, itemColumns, r.tables.Items)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, StoreError("list items", err)
	}
	defer rows.Close()

	items := []models.DownloadableItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, StoreError("scan item", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, StoreError("iterate items", err)
	}

	return items, nil
}

// Update writes title, description and price
func (r *PostgresItemRepository) Update(ctx context.Context, item *models.DownloadableItem) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $2, description = $3, price = $4::numeric, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, r.tables.Items, itemColumns)

	executor := GetExecutor(ctx, r.pool)
	updated, err := scanItem(executor.QueryRow(ctx, query,
		item.ID,
		item.Title,
		item.Description,
		priceArg(item.Price),
	))
	if err != nil {
		return lookupError("update item", "item", item.ID, err)
	}

	*item = *updated
	return nil
}

// Delete removes an item; its purchases go with it
func (r *PostgresItemRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Items)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return lookupError("delete item", "item", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// IncrementDownloads bumps the download counter
func (r *PostgresItemRepository) IncrementDownloads(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET download_count = download_count + 1 WHERE id = $1`, r.tables.Items)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return lookupError("increment downloads", "item", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// priceArg renders a nullable price for a $n::numeric placeholder
func priceArg(price decimal.NullDecimal) *string {
	if !price.Valid {
		return nil
	}
	s := price.Decimal.String()
	return &s
}

func scanItem(row pgx.Row) (*models.DownloadableItem, error) {
	var item models.DownloadableItem
	var price *string
	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.FilePath,
		&item.MimeType,
		&item.SizeBytes,
		&price,
		&item.UploaderUserID,
		&item.DownloadCount,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if price != nil {
		d, err := decimal.NewFromString(*price)
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", *price, err)
		}
		item.Price = decimal.NewNullDecimal(d)
	}
	return &item, nil
}

// PostgresPurchaseRepository implements the PurchaseRepository interface
type PostgresPurchaseRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(config *RepositoryConfig) repositories.PurchaseRepository {
	return &PostgresPurchaseRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get retrieves the purchase for (userID, itemID)
func (r *PostgresPurchaseRepository) Get(ctx context.Context, userID, itemID string) (*models.Purchase, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, item_id, status, external_order_id, created_at, updated_at
		FROM %s
		WHERE user_id = $1 AND item_id = $2
	`, r.tables.Purchases)

	var purchase models.Purchase
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, userID, itemID).Scan(
		&purchase.ID,
		&purchase.UserID,
		&purchase.ItemID,
		&purchase.Status,
		&purchase.ExternalOrderID,
		&purchase.CreatedAt,
		&purchase.UpdatedAt,
	)
	if err != nil {
		return nil, lookupError("get purchase", "purchase", userID+"/"+itemID, err)
	}

	return &purchase, nil
}

// Upsert inserts or updates the purchase for (UserID, ItemID). A pending
// status never overwrites paid, and a missing order id keeps the stored one.
func (r *PostgresPurchaseRepository) Upsert(ctx context.Context, purchase *models.Purchase) error {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (user_id, item_id, status, external_order_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			status = CASE
				WHEN %[1]s.status = 'paid' AND EXCLUDED.status = 'pending' THEN %[1]s.status
				ELSE EXCLUDED.status
			END,
			external_order_id = COALESCE(EXCLUDED.external_order_id, %[1]s.external_order_id),
			updated_at = NOW()
		RETURNING id, status, external_order_id, created_at, updated_at
	`, r.tables.Purchases)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		purchase.UserID,
		purchase.ItemID,
		purchase.Status,
		purchase.ExternalOrderID,
	).Scan(
		&purchase.ID,
		&purchase.Status,
		&purchase.ExternalOrderID,
		&purchase.CreatedAt,
		&purchase.UpdatedAt,
	)
	if err != nil {
		if IsPgForeignKeyError(err) || IsPgInvalidTextError(err) {
			return fmt.Errorf("item %s: %w", purchase.ItemID, domain.ErrNotFound)
		}
		return StoreError("upsert purchase", err)
	}

	return nil
}

// PostgresPortfolioRepository implements the PortfolioRepository interface
type PostgresPortfolioRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(config *RepositoryConfig) repositories.PortfolioRepository {
	return &PostgresPortfolioRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create stores a portfolio item
func (r *PostgresPortfolioRepository) Create(ctx context.Context, item *models.PortfolioItem) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (author_user_id, title, description, file_path, mime_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, r.tables.Portfolio)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		item.AuthorUserID,
		item.Title,
		item.Description,
		item.FilePath,
		item.MimeType,
		item.SizeBytes,
	).Scan(&item.ID, &item.CreatedAt)

	if err != nil {
		return StoreError("create portfolio item", err)
	}

	return nil
}

// GetByID retrieves a portfolio item by ID
func (r *PostgresPortfolioRepository) GetByID(ctx context.Context, id string) (*models.PortfolioItem, error) {
	query := fmt.Sprintf(`
		SELECT id, author_user_id, title, description, file_path, mime_type, size_bytes, created_at
		FROM %s
		WHERE id = $1
	`, r.tables.Portfolio)

	executor := GetExecutor(ctx, r.pool)
	item, err := scanPortfolioItem(executor.QueryRow(ctx, query, id))
	if err != nil {
		return nil, lookupError("get portfolio item", "portfolio item", id, err)
	}
	return item, nil
}

// List lists the portfolio, newest first
func (r *PostgresPortfolioRepository) List(ctx context.Context) ([]models.PortfolioItem, error) {
	query := fmt.Sprintf(`
		SELECT id, author_user_id, title, description, file_path, mime_type, size_bytes, created_at
		FROM %s
		ORDER BY created_at DESC
	`, r.tables.Portfolio)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, StoreError("list portfolio", err)
	}
	defer rows.Close()

	items := []models.PortfolioItem{}
	for rows.Next() {
		item, err := scanPortfolioItem(rows)
		if err != nil {
			return nil, StoreError("scan portfolio item", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, StoreError("iterate portfolio", err)
	}

	return items, nil
}

// Delete removes a portfolio item
func (r *PostgresPortfolioRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Portfolio)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return lookupError("delete portfolio item", "portfolio item", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("portfolio item %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanPortfolioItem(row pgx.Row) (*models.PortfolioItem, error) {
	var item models.PortfolioItem
	err := row.Scan(
		&item.ID,
		&item.AuthorUserID,
		&item.Title,
		&item.Description,
		&item.FilePath,
		&item.MimeType,
		&item.SizeBytes,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
