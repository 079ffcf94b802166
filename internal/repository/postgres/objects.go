package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
	"buildportal/internal/domain/repositories"
)

// PostgresObjectRepository implements the ObjectRepository interface
type PostgresObjectRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewObjectRepository creates a new object repository
func NewObjectRepository(config *RepositoryConfig) repositories.ObjectRepository {
	return &PostgresObjectRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new object
func (r *PostgresObjectRepository) Create(ctx context.Context, object *models.Object) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_user_id, title, address, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, r.tables.Objects)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		object.OwnerUserID,
		object.Title,
		object.Address,
		object.Description,
	).Scan(&object.ID, &object.CreatedAt, &object.UpdatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("%w: owner %s does not exist", domain.ErrValidation, object.OwnerUserID)
		}
		return StoreError("create object", err)
	}

	return nil
}

// GetByID retrieves an object by ID
func (r *PostgresObjectRepository) GetByID(ctx context.Context, id string) (*models.Object, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_user_id, title, address, description, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Objects)

	executor := GetExecutor(ctx, r.pool)
	object, err := scanObject(executor.QueryRow(ctx, query, id))
	if err != nil {
		return nil, lookupError("get object", "object", id, err)
	}
	return object, nil
}

// ListByOwner lists a customer's objects, newest first
func (r *PostgresObjectRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]models.Object, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_user_id, title, address, description, created_at, updated_at
		FROM %s
		WHERE owner_user_id = $1
		ORDER BY created_at DESC
	`, r.tables.Objects)

	return r.list(ctx, query, ownerUserID)
}

// ListAssigned lists the objects a user is assigned to, newest first
func (r *PostgresObjectRepository) ListAssigned(ctx context.Context, userID string) ([]models.Object, error) {
	query := fmt.Sprintf(`
		SELECT o.id, o.owner_user_id, o.title, o.address, o.description, o.created_at, o.updated_at
		FROM %s o
		JOIN %s a ON a.object_id = o.id
		WHERE a.user_id = $1
		ORDER BY o.created_at DESC
	`, r.tables.Objects, r.tables.Assignments)

	return r.list(ctx, query, userID)
}

// ListAll lists every object, newest first
func (r *PostgresObjectRepository) ListAll(ctx context.Context) ([]models.Object, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_user_id, title, address, description, created_at, updated_at
		FROM %s
		ORDER BY created_at DESC
	`, r.tables.Objects)

	return r.list(ctx, query)
}

func (r *PostgresObjectRepository) list(ctx context.Context, query string, args ...any) ([]models.Object, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, StoreError("list objects", err)
	}
	defer rows.Close()

	objects := []models.Object{}
	for rows.Next() {
		object, err := scanObject(rows)
		if err != nil {
			return nil, StoreError("scan object", err)
		}
		objects = append(objects, *object)
	}

	if err := rows.Err(); err != nil {
		return nil, StoreError("iterate objects", err)
	}

	return objects, nil
}

// Update updates title, address and description. The owner never changes.
func (r *PostgresObjectRepository) Update(ctx context.Context, object *models.Object) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $2, address = $3, description = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING owner_user_id, created_at, updated_at
	`, r.tables.Objects)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		object.ID,
		object.Title,
		object.Address,
		object.Description,
	).Scan(&object.OwnerUserID, &object.CreatedAt, &object.UpdatedAt)
	if err != nil {
		return lookupError("update object", "object", object.ID, err)
	}

	return nil
}

func scanObject(row pgx.Row) (*models.Object, error) {
	var object models.Object
	err := row.Scan(
		&object.ID,
		&object.OwnerUserID,
		&object.Title,
		&object.Address,
		&object.Description,
		&object.CreatedAt,
		&object.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &object, nil
}

// PostgresAssignmentRepository implements the AssignmentRepository interface
type PostgresAssignmentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(config *RepositoryConfig) repositories.AssignmentRepository {
	return &PostgresAssignmentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// IsAssigned reports whether the (user, object) pair exists
func (r *PostgresAssignmentRepository) IsAssigned(ctx context.Context, userID, objectID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s WHERE user_id = $1 AND object_id = $2
		)
	`, r.tables.Assignments)

	var assigned bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, userID, objectID).Scan(&assigned); err != nil {
		if IsPgInvalidTextError(err) {
			return false, nil
		}
		return false, StoreError("check assignment", err)
	}
	return assigned, nil
}

// Create adds an assignment
func (r *PostgresAssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, object_id)
		VALUES ($1, $2)
		RETURNING created_at
	`, r.tables.Assignments)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, assignment.UserID, assignment.ObjectID).Scan(&assignment.CreatedAt)
	if err != nil {
		switch {
		case IsPgDuplicateError(err):
			return &domain.ConflictError{
				Message:      fmt.Sprintf("user %s is already assigned to object %s", assignment.UserID, assignment.ObjectID),
				ResourceType: "assignment",
				ResourceID:   assignment.ObjectID,
			}
		case IsPgForeignKeyError(err):
			return fmt.Errorf("%w: unknown user or object", domain.ErrValidation)
		}
		return StoreError("create assignment", err)
	}

	return nil
}

// Delete removes an assignment
func (r *PostgresAssignmentRepository) Delete(ctx context.Context, userID, objectID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE user_id = $1 AND object_id = $2
	`, r.tables.Assignments)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, userID, objectID)
	if err != nil {
		return lookupError("delete assignment", "assignment", userID+"/"+objectID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("assignment %s/%s: %w", userID, objectID, domain.ErrNotFound)
	}

	return nil
}

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a folder inside an object
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (object_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, folder.ObjectID, folder.Name).Scan(&folder.ID, &folder.CreatedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			existingID, queryErr := r.getExistingFolderID(ctx, folder.ObjectID, folder.Name)
			if queryErr != nil {
				return fmt.Errorf("folder '%s' already exists: %w", folder.Name, domain.ErrConflict)
			}
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder '%s' already exists", folder.Name),
				ResourceType: "folder",
				ResourceID:   existingID,
			}
		}
		return StoreError("create folder", err)
	}

	return nil
}

func (r *PostgresFolderRepository) getExistingFolderID(ctx context.Context, objectID, name string) (string, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE object_id = $1 AND name = $2`, r.tables.Folders)

	var id string
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, objectID, name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// GetByID retrieves a folder with its object's owner
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT f.id, f.object_id, o.owner_user_id, f.name, f.created_at
		FROM %s f
		JOIN %s o ON o.id = f.object_id
		WHERE f.id = $1
	`, r.tables.Folders, r.tables.Objects)

	executor := GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id))
	if err != nil {
		return nil, lookupError("get folder", "folder", id, err)
	}
	return folder, nil
}

// ListByObject lists an object's folders by name
func (r *PostgresFolderRepository) ListByObject(ctx context.Context, objectID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT f.id, f.object_id, o.owner_user_id, f.name, f.created_at
		FROM %s f
		JOIN %s o ON o.id = f.object_id
		WHERE f.object_id = $1
		ORDER BY f.name
	`, r.tables.Folders, r.tables.Objects)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, objectID)
	if err != nil {
		return nil, StoreError("list folders", err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, StoreError("scan folder", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, StoreError("iterate folders", err)
	}

	return folders, nil
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(&folder.ID, &folder.ObjectID, &folder.ObjectOwnerID, &folder.Name, &folder.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}
