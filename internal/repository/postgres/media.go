package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
	"buildportal/internal/domain/repositories"
)

// PostgresMediaRepository implements the MediaRepository interface over the
// photos and videos tables, which share one shape
type PostgresMediaRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(config *RepositoryConfig) repositories.MediaRepository {
	return &PostgresMediaRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func (r *PostgresMediaRepository) table(kind models.MediaKind) (string, error) {
	switch kind {
	case models.MediaKindPhoto:
		return r.tables.Photos, nil
	case models.MediaKindVideo:
		return r.tables.Videos, nil
	}
	return "", fmt.Errorf("%w: unknown media kind %q", domain.ErrValidation, kind)
}

// Create stores media metadata
func (r *PostgresMediaRepository) Create(ctx context.Context, media *models.MediaFile) error {
	table, err := r.table(media.Kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (object_id, folder_id, uploader_user_id, title, file_path, mime_type, size_bytes, is_visible_to_customer)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, table)

	executor := GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		media.ObjectID,
		media.FolderID,
		media.UploaderUserID,
		media.Title,
		media.FilePath,
		media.MimeType,
		media.SizeBytes,
		media.IsVisibleToCustomer,
	).Scan(&media.ID, &media.CreatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("%w: unknown object or folder", domain.ErrValidation)
		}
		return StoreError("create "+string(media.Kind), err)
	}

	return nil
}

// GetByID retrieves a media file with its object's owner
func (r *PostgresMediaRepository) GetByID(ctx context.Context, kind models.MediaKind, id string) (*models.MediaFile, error) {
	table, err := r.table(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT m.id, m.object_id, o.owner_user_id, m.folder_id, m.uploader_user_id, m.title,
		       m.file_path, m.mime_type, m.size_bytes, m.is_visible_to_customer, m.created_at
		FROM %s m
		JOIN %s o ON o.id = m.object_id
		WHERE m.id = $1
	`, table, r.tables.Objects)

	executor := GetExecutor(ctx, r.pool)
	media, err := scanMedia(executor.QueryRow(ctx, query, id), kind)
	if err != nil {
		return nil, lookupError("get "+string(kind), string(kind), id, err)
	}
	return media, nil
}

// ListByObject lists an object's media of one kind, newest first
func (r *PostgresMediaRepository) ListByObject(ctx context.Context, kind models.MediaKind, objectID string) ([]models.MediaFile, error) {
	table, err := r.table(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT m.id, m.object_id, o.owner_user_id, m.folder_id, m.uploader_user_id, m.title,
		       m.file_path, m.mime_type, m.size_bytes, m.is_visible_to_customer, m.created_at
		FROM %s m
		JOIN %s o ON o.id = m.object_id
		WHERE m.object_id = $1
		ORDER BY m.created_at DESC
	`, table, r.tables.Objects)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, objectID)
	if err != nil {
		return nil, StoreError("list "+string(kind), err)
	}
	defer rows.Close()

	files := []models.MediaFile{}
	for rows.Next() {
		media, err := scanMedia(rows, kind)
		if err != nil {
			return nil, StoreError("scan "+string(kind), err)
		}
		files = append(files, *media)
	}

	if err := rows.Err(); err != nil {
		return nil, StoreError("iterate "+string(kind), err)
	}

	return files, nil
}

// SetVisibility writes the customer-visibility flag
func (r *PostgresMediaRepository) SetVisibility(ctx context.Context, kind models.MediaKind, id string, visible bool) error {
	table, err := r.table(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET is_visible_to_customer = $2 WHERE id = $1`, table)
	return r.exec(ctx, "set "+string(kind)+" visibility", string(kind), id, query, id, visible)
}

// SetFolder moves a media file into folderID, or out of any folder when nil
func (r *PostgresMediaRepository) SetFolder(ctx context.Context, kind models.MediaKind, id string, folderID *string) error {
	table, err := r.table(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET folder_id = $2 WHERE id = $1`, table)
	err = r.exec(ctx, "set "+string(kind)+" folder", string(kind), id, query, id, folderID)
	if IsPgForeignKeyError(err) {
		return fmt.Errorf("%w: unknown folder", domain.ErrValidation)
	}
	return err
}

func (r *PostgresMediaRepository) exec(ctx context.Context, op, kind, id, query string, args ...any) error {
	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return err
		}
		return lookupError(op, kind, id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

func scanMedia(row pgx.Row, kind models.MediaKind) (*models.MediaFile, error) {
	media := models.MediaFile{Kind: kind}
	err := row.Scan(
		&media.ID,
		&media.ObjectID,
		&media.ObjectOwnerID,
		&media.FolderID,
		&media.UploaderUserID,
		&media.Title,
		&media.FilePath,
		&media.MimeType,
		&media.SizeBytes,
		&media.IsVisibleToCustomer,
		&media.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &media, nil
}

// PostgresBimModelRepository implements the BimModelRepository interface
type PostgresBimModelRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewBimModelRepository creates a new BIM model repository
func NewBimModelRepository(config *RepositoryConfig) repositories.BimModelRepository {
	return &PostgresBimModelRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create stores model metadata; the parameter tree starts empty
func (r *PostgresBimModelRepository) Create(ctx context.Context, model *models.BimModel) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (object_id, uploader_user_id, title, file_path, mime_type, size_bytes, is_visible_to_customer)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, r.tables.BimModels)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		model.ObjectID,
		model.UploaderUserID,
		model.Title,
		model.FilePath,
		model.MimeType,
		model.SizeBytes,
		model.IsVisibleToCustomer,
	).Scan(&model.ID, &model.CreatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("%w: unknown object", domain.ErrValidation)
		}
		return StoreError("create bim model", err)
	}

	return nil
}

// GetByID retrieves a model with its object's owner and parameter tree
func (r *PostgresBimModelRepository) GetByID(ctx context.Context, id string) (*models.BimModel, error) {
	query := fmt.Sprintf(`
		SELECT b.id, b.object_id, o.owner_user_id, b.uploader_user_id, b.title, b.file_path,
		       b.mime_type, b.size_bytes, b.parameter_tree, b.is_visible_to_customer, b.created_at
		FROM %s b
		JOIN %s o ON o.id = b.object_id
		WHERE b.id = $1
	`, r.tables.BimModels, r.tables.Objects)

	executor := GetExecutor(ctx, r.pool)
	model, err := scanBimModel(executor.QueryRow(ctx, query, id))
	if err != nil {
		return nil, lookupError("get bim model", "bim model", id, err)
	}
	return model, nil
}

// ListByObject lists an object's models, newest first. Parameter trees are
// not loaded.
func (r *PostgresBimModelRepository) ListByObject(ctx context.Context, objectID string) ([]models.BimModel, error) {
	query := fmt.Sprintf(`
		SELECT b.id, b.object_id, o.owner_user_id, b.uploader_user_id, b.title, b.file_path,
		       b.mime_type, b.size_bytes, NULL::jsonb, b.is_visible_to_customer, b.created_at
		FROM %s b
		JOIN %s o ON o.id = b.object_id
		WHERE b.object_id = $1
		ORDER BY b.created_at DESC
	`, r.tables.BimModels, r.tables.Objects)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, objectID)
	if err != nil {
		return nil, StoreError("list bim models", err)
	}
	defer rows.Close()

	list := []models.BimModel{}
	for rows.Next() {
		model, err := scanBimModel(rows)
		if err != nil {
			return nil, StoreError("scan bim model", err)
		}
		list = append(list, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, StoreError("iterate bim models", err)
	}

	return list, nil
}

// SetVisibility writes the customer-visibility flag
func (r *PostgresBimModelRepository) SetVisibility(ctx context.Context, id string, visible bool) error {
	query := fmt.Sprintf(`UPDATE %s SET is_visible_to_customer = $2 WHERE id = $1`, r.tables.BimModels)
	return r.exec(ctx, "set bim model visibility", id, query, id, visible)
}

// SaveParameterTree replaces the stored parameter tree
func (r *PostgresBimModelRepository) SaveParameterTree(ctx context.Context, id string, tree json.RawMessage) error {
	query := fmt.Sprintf(`UPDATE %s SET parameter_tree = $2::jsonb WHERE id = $1`, r.tables.BimModels)
	return r.exec(ctx, "save parameter tree", id, query, id, string(tree))
}

func (r *PostgresBimModelRepository) exec(ctx context.Context, op, id, query string, args ...any) error {
	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return lookupError(op, "bim model", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("bim model %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanBimModel(row pgx.Row) (*models.BimModel, error) {
	var model models.BimModel
	var tree []byte
	err := row.Scan(
		&model.ID,
		&model.ObjectID,
		&model.ObjectOwnerID,
		&model.UploaderUserID,
		&model.Title,
		&model.FilePath,
		&model.MimeType,
		&model.SizeBytes,
		&tree,
		&model.IsVisibleToCustomer,
		&model.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(tree) > 0 {
		model.ParameterTree = json.RawMessage(tree)
	}
	return &model, nil
}

// PostgresCommentRepository implements the CommentRepository interface
type PostgresCommentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(config *RepositoryConfig) repositories.CommentRepository {
	return &PostgresCommentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// selectComments returns the comment columns with the parent's object and
// owner joined; both are empty when the parent no longer exists
func (r *PostgresCommentRepository) selectComments(where string) string {
	return fmt.Sprintf(`
		SELECT c.id, c.parent_kind, c.parent_id, c.author_user_id, c.body,
		       c.is_visible_to_customer, c.created_at,
		       COALESCE(o.id::text, ''), COALESCE(o.owner_user_id, '')
		FROM %s c
		LEFT JOIN %s p ON c.parent_kind = 'photo' AND p.id = c.parent_id
		LEFT JOIN %s b ON c.parent_kind = 'bim_model' AND b.id = c.parent_id
		LEFT JOIN %s o ON o.id = COALESCE(p.object_id, b.object_id)
		%s
	`, r.tables.Comments, r.tables.Photos, r.tables.BimModels, r.tables.Objects, where)
}

// Create stores a comment
func (r *PostgresCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (parent_kind, parent_id, author_user_id, body, is_visible_to_customer)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, r.tables.Comments)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		comment.ParentKind,
		comment.ParentID,
		comment.AuthorUserID,
		comment.Body,
		comment.IsVisibleToCustomer,
	).Scan(&comment.ID, &comment.CreatedAt)

	if err != nil {
		if IsPgInvalidTextError(err) {
			return fmt.Errorf("%s %s: %w", comment.ParentKind, comment.ParentID, domain.ErrNotFound)
		}
		return StoreError("create comment", err)
	}

	return nil
}

// GetByID retrieves a comment with its parent's chain
func (r *PostgresCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := r.selectComments("WHERE c.id = $1")

	executor := GetExecutor(ctx, r.pool)
	comment, err := scanComment(executor.QueryRow(ctx, query, id))
	if err != nil {
		return nil, lookupError("get comment", "comment", id, err)
	}
	return comment, nil
}

// ListByParent lists a photo's or model's comments, oldest first
func (r *PostgresCommentRepository) ListByParent(ctx context.Context, kind models.CommentParentKind, parentID string) ([]models.Comment, error) {
	query := r.selectComments("WHERE c.parent_kind = $1 AND c.parent_id = $2 ORDER BY c.created_at ASC")

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, kind, parentID)
	if err != nil {
		return nil, StoreError("list comments", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, StoreError("scan comment", err)
		}
		comments = append(comments, *comment)
	}

	if err := rows.Err(); err != nil {
		return nil, StoreError("iterate comments", err)
	}

	return comments, nil
}

// SetVisibility writes the customer-visibility flag
func (r *PostgresCommentRepository) SetVisibility(ctx context.Context, id string, visible bool) error {
	query := fmt.Sprintf(`UPDATE %s SET is_visible_to_customer = $2 WHERE id = $1`, r.tables.Comments)
	return r.exec(ctx, "set comment visibility", id, query, id, visible)
}

// Delete removes a comment
func (r *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Comments)
	return r.exec(ctx, "delete comment", id, query, id)
}

func (r *PostgresCommentRepository) exec(ctx context.Context, op, id, query string, args ...any) error {
	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return lookupError(op, "comment", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanComment(row pgx.Row) (*models.Comment, error) {
	var comment models.Comment
	err := row.Scan(
		&comment.ID,
		&comment.ParentKind,
		&comment.ParentID,
		&comment.AuthorUserID,
		&comment.Body,
		&comment.IsVisibleToCustomer,
		&comment.CreatedAt,
		&comment.ObjectID,
		&comment.ObjectOwnerID,
	)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}
