package models

import "time"

// CommentParentKind is the resource type a comment hangs off
type CommentParentKind string

const (
	CommentParentPhoto    CommentParentKind = "photo"
	CommentParentBimModel CommentParentKind = "bim_model"
)

// Comment on a photo or a BIM model.
// ObjectID and ObjectOwnerID are resolved through the parent on read.
type Comment struct {
	ID                  string            `json:"id" db:"id"`
	ParentKind          CommentParentKind `json:"parent_kind" db:"parent_kind"`
	ParentID            string            `json:"parent_id" db:"parent_id"`
	AuthorUserID        string            `json:"author_user_id" db:"author_user_id"`
	Body                string            `json:"body" db:"body"`
	IsVisibleToCustomer bool              `json:"is_visible_to_customer" db:"is_visible_to_customer"`
	ObjectID            string            `json:"object_id"`
	ObjectOwnerID       string            `json:"-"`
	CreatedAt           time.Time         `json:"created_at" db:"created_at"`
}
