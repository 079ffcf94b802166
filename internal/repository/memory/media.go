package memory

import (
	"context"
	"encoding/json"
	"sort"

	"buildportal/internal/domain/models"
)

// MediaRepository is the in-memory repositories.MediaRepository
type MediaRepository struct{ store *Store }

// Media returns the photo/video repository of the store
func (s *Store) Media() *MediaRepository { return &MediaRepository{store: s} }

func (r *MediaRepository) Create(ctx context.Context, media *models.MediaFile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check("create " + string(media.Kind)); err != nil {
		return err
	}

	if media.ID == "" {
		media.ID = newID()
	}
	media.CreatedAt = r.store.now()
	r.store.media[media.Kind][media.ID] = *media
	return nil
}

func (r *MediaRepository) GetByID(ctx context.Context, kind models.MediaKind, id string) (*models.MediaFile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.check("get " + string(kind)); err != nil {
		return nil, err
	}

	m, ok := r.store.media[kind][id]
	if !ok {
		return nil, notFound(string(kind), id)
	}
	object, ok := r.store.objects[m.ObjectID]
	if !ok {
		return nil, notFound(string(kind), id)
	}
	m.ObjectOwnerID = object.OwnerUserID
	return &m, nil
}

func (r *MediaRepository) ListByObject(ctx context.Context, kind models.MediaKind, objectID string) ([]models.MediaFile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.check("list " + string(kind)); err != nil {
		return nil, err
	}

	files := []models.MediaFile{}
	owner := r.store.objects[objectID].OwnerUserID
	for _, m := range r.store.media[kind] {
		if m.ObjectID == objectID {
			m.ObjectOwnerID = owner
			files = append(files, m)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].CreatedAt.After(files[j].CreatedAt) })
	return files, nil
}

func (r *MediaRepository) SetVisibility(ctx context.Context, kind models.MediaKind, id string, visible bool) error {
	return r.update(kind, id, "set visibility", func(m *models.MediaFile) { m.IsVisibleToCustomer = visible })
}

func (r *MediaRepository) SetFolder(ctx context.Context, kind models.MediaKind, id string, folderID *string) error {
	return r.update(kind, id, "set folder", func(m *models.MediaFile) { m.FolderID = folderID })
}

func (r *MediaRepository) update(kind models.MediaKind, id, op string, apply func(*models.MediaFile)) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check(op); err != nil {
		return err
	}

	m, ok := r.store.media[kind][id]
	if !ok {
		return notFound(string(kind), id)
	}
	apply(&m)
	r.store.media[kind][id] = m
	return nil
}

// BimModelRepository is the in-memory repositories.BimModelRepository
type BimModelRepository struct{ store *Store }

// BimModels returns the BIM model repository of the store
func (s *Store) BimModels() *BimModelRepository { return &BimModelRepository{store: s} }

func (r *BimModelRepository) Create(ctx context.Context, model *models.BimModel) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check("create bim model"); err != nil {
		return err
	}

	if model.ID == "" {
		model.ID = newID()
	}
	model.CreatedAt = r.store.now()
	r.store.bimModels[model.ID] = *model
	return nil
}

func (r *BimModelRepository) GetByID(ctx context.Context, id string) (*models.BimModel, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.check("get bim model"); err != nil {
		return nil, err
	}

	b, ok := r.store.bimModels[id]
	if !ok {
		return nil, notFound("bim model", id)
	}
	object, ok := r.store.objects[b.ObjectID]
	if !ok {
		return nil, notFound("bim model", id)
	}
	b.ObjectOwnerID = object.OwnerUserID
	return &b, nil
}

func (r *BimModelRepository) ListByObject(ctx context.Context, objectID string) ([]models.BimModel, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.check("list bim models"); err != nil {
		return nil, err
	}

	list := []models.BimModel{}
	owner := r.store.objects[objectID].OwnerUserID
	for _, b := range r.store.bimModels {
		if b.ObjectID == objectID {
			b.ObjectOwnerID = owner
			list = append(list, b)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *BimModelRepository) SetVisibility(ctx context.Context, id string, visible bool) error {
	return r.update(id, "set bim model visibility", func(b *models.BimModel) { b.IsVisibleToCustomer = visible })
}

func (r *BimModelRepository) SaveParameterTree(ctx context.Context, id string, tree json.RawMessage) error {
	return r.update(id, "save parameter tree", func(b *models.BimModel) { b.ParameterTree = tree })
}

func (r *BimModelRepository) update(id, op string, apply func(*models.BimModel)) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check(op); err != nil {
		return err
	}

	b, ok := r.store.bimModels[id]
	if !ok {
		return notFound("bim model", id)
	}
	apply(&b)
	r.store.bimModels[id] = b
	return nil
}

// CommentRepository is the in-memory repositories.CommentRepository
type CommentRepository struct{ store *Store }

// Comments returns the comment repository of the store
func (s *Store) Comments() *CommentRepository { return &CommentRepository{store: s} }

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check("create comment"); err != nil {
		return err
	}

	if comment.ID == "" {
		comment.ID = newID()
	}
	comment.CreatedAt = r.store.now()
	r.store.comments[comment.ID] = *comment
	r.joinParent(comment)
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.check("get comment"); err != nil {
		return nil, err
	}

	c, ok := r.store.comments[id]
	if !ok {
		return nil, notFound("comment", id)
	}
	r.joinParent(&c)
	return &c, nil
}

func (r *CommentRepository) ListByParent(ctx context.Context, kind models.CommentParentKind, parentID string) ([]models.Comment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.check("list comments"); err != nil {
		return nil, err
	}

	list := []models.Comment{}
	for _, c := range r.store.comments {
		if c.ParentKind == kind && c.ParentID == parentID {
			r.joinParent(&c)
			list = append(list, c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (r *CommentRepository) SetVisibility(ctx context.Context, id string, visible bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check("set comment visibility"); err != nil {
		return err
	}

	c, ok := r.store.comments[id]
	if !ok {
		return notFound("comment", id)
	}
	c.IsVisibleToCustomer = visible
	r.store.comments[id] = c
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check("delete comment"); err != nil {
		return err
	}

	if _, ok := r.store.comments[id]; !ok {
		return notFound("comment", id)
	}
	delete(r.store.comments, id)
	return nil
}

// joinParent fills the chain fields from the parent; s.mu must be held
func (r *CommentRepository) joinParent(c *models.Comment) {
	var objectID string
	switch c.ParentKind {
	case models.CommentParentPhoto:
		if p, ok := r.store.media[models.MediaKindPhoto][c.ParentID]; ok {
			objectID = p.ObjectID
		}
	case models.CommentParentBimModel:
		if b, ok := r.store.bimModels[c.ParentID]; ok {
			objectID = b.ObjectID
		}
	}
	if object, ok := r.store.objects[objectID]; ok {
		c.ObjectID = object.ID
		c.ObjectOwnerID = object.OwnerUserID
	}
}
