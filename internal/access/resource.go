package access

import "buildportal/internal/domain/models"

// Kind is a resource type the engine knows how to reason about
type Kind string

const (
	KindObject    Kind = "object"
	KindPhoto     Kind = "photo"
	KindVideo     Kind = "video"
	KindBimModel  Kind = "bim_model"
	KindComment   Kind = "comment"
	KindFolder    Kind = "folder"
	KindItem      Kind = "item"
	KindPortfolio Kind = "portfolio"
	KindUser      Kind = "user"
)

// objectScoped reports whether resources of k hang off an Object
func (k Kind) objectScoped() bool {
	switch k {
	case KindObject, KindPhoto, KindVideo, KindBimModel, KindComment, KindFolder:
		return true
	}
	return false
}

// global reports whether resources of k are catalog-wide with no owner chain
func (k Kind) global() bool {
	switch k {
	case KindItem, KindPortfolio, KindUser:
		return true
	}
	return false
}

// customerGated reports whether customers need the visibility flag to read k
func (k Kind) customerGated() bool {
	switch k {
	case KindPhoto, KindVideo, KindBimModel, KindComment:
		return true
	}
	return false
}

// Resource is a resource instance reduced to the facts the engine decides on.
// ObjectID and OwnerUserID form the ownership chain and are empty for global kinds.
type Resource struct {
	Kind              Kind
	ID                string
	ObjectID          string
	OwnerUserID       string
	AuthorUserID      string
	VisibleToCustomer bool
}

// Ref points at a resource. ObjectID, when set, is the Object the caller
// addressed it through and must match the resource's own Object.
type Ref struct {
	Kind     Kind
	ID       string
	ObjectID string
}

// Catalog is the target of create actions on global kinds
func Catalog(kind Kind) *Resource {
	return &Resource{Kind: kind}
}

// NewObject is the target of create_object: an object yet to exist for owner
func NewObject(ownerUserID string) *Resource {
	return &Resource{Kind: KindObject, OwnerUserID: ownerUserID}
}

// ForObject builds the resource view of an object
func ForObject(o *models.Object) *Resource {
	return &Resource{
		Kind:        KindObject,
		ID:          o.ID,
		ObjectID:    o.ID,
		OwnerUserID: o.OwnerUserID,
	}
}

// ForMedia builds the resource view of a photo or video
func ForMedia(m *models.MediaFile) *Resource {
	kind := KindPhoto
	if m.Kind == models.MediaKindVideo {
		kind = KindVideo
	}
	return &Resource{
		Kind:              kind,
		ID:                m.ID,
		ObjectID:          m.ObjectID,
		OwnerUserID:       m.ObjectOwnerID,
		AuthorUserID:      m.UploaderUserID,
		VisibleToCustomer: m.IsVisibleToCustomer,
	}
}

// ForBimModel builds the resource view of a BIM model
func ForBimModel(b *models.BimModel) *Resource {
	return &Resource{
		Kind:              KindBimModel,
		ID:                b.ID,
		ObjectID:          b.ObjectID,
		OwnerUserID:       b.ObjectOwnerID,
		AuthorUserID:      b.UploaderUserID,
		VisibleToCustomer: b.IsVisibleToCustomer,
	}
}

// ForComment builds the resource view of a comment; the chain comes from its parent
func ForComment(c *models.Comment) *Resource {
	return &Resource{
		Kind:              KindComment,
		ID:                c.ID,
		ObjectID:          c.ObjectID,
		OwnerUserID:       c.ObjectOwnerID,
		AuthorUserID:      c.AuthorUserID,
		VisibleToCustomer: c.IsVisibleToCustomer,
	}
}

// ForFolder builds the resource view of a folder
func ForFolder(f *models.Folder) *Resource {
	return &Resource{
		Kind:        KindFolder,
		ID:          f.ID,
		ObjectID:    f.ObjectID,
		OwnerUserID: f.ObjectOwnerID,
	}
}

// ForItem builds the resource view of a downloadable item
func ForItem(i *models.DownloadableItem) *Resource {
	return &Resource{
		Kind:         KindItem,
		ID:           i.ID,
		AuthorUserID: i.UploaderUserID,
	}
}

// ForPortfolio builds the resource view of a portfolio item
func ForPortfolio(p *models.PortfolioItem) *Resource {
	return &Resource{
		Kind:         KindPortfolio,
		ID:           p.ID,
		AuthorUserID: p.AuthorUserID,
	}
}

// ForUser builds the resource view of a user account
func ForUser(id string) *Resource {
	return &Resource{Kind: KindUser, ID: id}
}
