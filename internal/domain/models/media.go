package models

import (
	"encoding/json"
	"time"
)

// MediaKind distinguishes the two object-scoped media tables
type MediaKind string

const (
	MediaKindPhoto MediaKind = "photo"
	MediaKindVideo MediaKind = "video"
)

// MediaFile is a photo or a video attached to an object.
// ObjectOwnerID is joined from the owning object on read.
type MediaFile struct {
	ID                  string    `json:"id" db:"id"`
	Kind                MediaKind `json:"kind"`
	ObjectID            string    `json:"object_id" db:"object_id"`
	ObjectOwnerID       string    `json:"-" db:"object_owner_id"`
	FolderID            *string   `json:"folder_id" db:"folder_id"` // NULL = not in a folder
	UploaderUserID      string    `json:"uploader_user_id" db:"uploader_user_id"`
	Title               string    `json:"title" db:"title"`
	FilePath            string    `json:"-" db:"file_path"`
	MimeType            string    `json:"mime_type" db:"mime_type"`
	SizeBytes           int64     `json:"size_bytes" db:"size_bytes"`
	IsVisibleToCustomer bool      `json:"is_visible_to_customer" db:"is_visible_to_customer"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

// BimModel is an uploaded IFC/BIM file with its optional parameter tree
type BimModel struct {
	ID                  string          `json:"id" db:"id"`
	ObjectID            string          `json:"object_id" db:"object_id"`
	ObjectOwnerID       string          `json:"-" db:"object_owner_id"`
	UploaderUserID      string          `json:"uploader_user_id" db:"uploader_user_id"`
	Title               string          `json:"title" db:"title"`
	FilePath            string          `json:"-" db:"file_path"`
	MimeType            string          `json:"mime_type" db:"mime_type"`
	SizeBytes           int64           `json:"size_bytes" db:"size_bytes"`
	ParameterTree       json.RawMessage `json:"parameter_tree,omitempty" db:"parameter_tree"`
	IsVisibleToCustomer bool            `json:"is_visible_to_customer" db:"is_visible_to_customer"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
}
