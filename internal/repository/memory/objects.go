package memory

import (
	"context"
	"fmt"
	"sort"

	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
)

// ObjectRepository is the in-memory repositories.ObjectRepository
type ObjectRepository struct{ store *Store }

// Objects returns the object repository of the store
func (s *Store) Objects() *ObjectRepository { return &ObjectRepository{store: s} }

func (r *ObjectRepository) Create(ctx context.Context, object *models.Object) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check("create object"); err != nil {
		return err
	}

	if object.ID == "" {
		object.ID = newID()
	}
	now := r.store.now()
	object.CreatedAt, object.UpdatedAt = now, now
	r.store.objects[object.ID] = *object
	return nil
}

func (r *ObjectRepository) GetByID(ctx context.Context, id string) (*models.Object, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.check("get object"); err != nil {
		return nil, err
	}

	o, ok := r.store.objects[id]
	if !ok {
		return nil, notFound("object", id)
	}
	return &o, nil
}

func (r *ObjectRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]models.Object, error) {
	return r.list("list objects", func(o models.Object) bool { return o.OwnerUserID == ownerUserID })
}

func (r *ObjectRepository) ListAssigned(ctx context.Context, userID string) ([]models.Object, error) {
	r.store.mu.RLock()
	assigned := make(map[string]bool)
	for k := range r.store.assignments {
		if k.userID == userID {
			assigned[k.objectID] = true
		}
	}
	r.store.mu.RUnlock()

	return r.list("list assigned objects", func(o models.Object) bool { return assigned[o.ID] })
}

func (r *ObjectRepository) ListAll(ctx context.Context) ([]models.Object, error) {
	return r.list("list all objects", func(models.Object) bool { return true })
}

func (r *ObjectRepository) list(op string, keep func(models.Object) bool) ([]models.Object, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.check(op); err != nil {
		return nil, err
	}

	objects := []models.Object{}
	for _, o := range r.store.objects {
		if keep(o) {
			objects = append(objects, o)
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].CreatedAt.After(objects[j].CreatedAt) })
	return objects, nil
}

func (r *ObjectRepository) Update(ctx context.Context, object *models.Object) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check("update object"); err != nil {
		return err
	}

	existing, ok := r.store.objects[object.ID]
	if !ok {
		return notFound("object", object.ID)
	}
	// owner never changes
	object.OwnerUserID = existing.OwnerUserID
	object.CreatedAt = existing.CreatedAt
	r.store.objects[object.ID] = *object
	return nil
}

// AssignmentRepository is the in-memory repositories.AssignmentRepository
type AssignmentRepository struct{ store *Store }

// Assignments returns the assignment repository of the store
func (s *Store) Assignments() *AssignmentRepository { return &AssignmentRepository{store: s} }

func (r *AssignmentRepository) IsAssigned(ctx context.Context, userID, objectID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.check("check assignment"); err != nil {
		return false, err
	}

	_, ok := r.store.assignments[assignmentKey{userID, objectID}]
	return ok, nil
}

func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check("create assignment"); err != nil {
		return err
	}

	key := assignmentKey{assignment.UserID, assignment.ObjectID}
	if _, ok := r.store.assignments[key]; ok {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("user %s is already assigned to object %s", assignment.UserID, assignment.ObjectID),
			ResourceType: "assignment",
			ResourceID:   assignment.ObjectID,
		}
	}
	assignment.CreatedAt = r.store.now()
	r.store.assignments[key] = *assignment
	return nil
}

func (r *AssignmentRepository) Delete(ctx context.Context, userID, objectID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check("delete assignment"); err != nil {
		return err
	}

	key := assignmentKey{userID, objectID}
	if _, ok := r.store.assignments[key]; !ok {
		return notFound("assignment", userID+"/"+objectID)
	}
	delete(r.store.assignments, key)
	return nil
}

// FolderRepository is the in-memory repositories.FolderRepository
type FolderRepository struct{ store *Store }

// Folders returns the folder repository of the store
func (s *Store) Folders() *FolderRepository { return &FolderRepository{store: s} }

func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check("create folder"); err != nil {
		return err
	}

	for _, f := range r.store.folders {
		if f.ObjectID == folder.ObjectID && f.Name == folder.Name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder '%s' already exists", folder.Name),
				ResourceType: "folder",
				ResourceID:   f.ID,
			}
		}
	}
	if folder.ID == "" {
		folder.ID = newID()
	}
	folder.CreatedAt = r.store.now()
	r.store.folders[folder.ID] = *folder
	return nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.check("get folder"); err != nil {
		return nil, err
	}

	f, ok := r.store.folders[id]
	if !ok {
		return nil, notFound("folder", id)
	}
	f.ObjectOwnerID = r.store.objects[f.ObjectID].OwnerUserID
	return &f, nil
}

func (r *FolderRepository) ListByObject(ctx context.Context, objectID string) ([]models.Folder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.check("list folders"); err != nil {
		return nil, err
	}

	folders := []models.Folder{}
	for _, f := range r.store.folders {
		if f.ObjectID == objectID {
			f.ObjectOwnerID = r.store.objects[f.ObjectID].OwnerUserID
			folders = append(folders, f)
		}
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
	return folders, nil
}
