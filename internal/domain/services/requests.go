package services

import (
	"encoding/json"
	"io"

	"github.com/shopspring/decimal"

	"buildportal/internal/domain/models"
)

// OptionalText tracks tri-state semantics for nullable text on PATCH.
// This is transport-agnostic (no JSON tags) - handlers map from httputil.OptionalString.
//   - Present=false: field absent from request (don't change)
//   - Present=true, Value=nil: field is null (clear)
//   - Present=true, Value=&"text": field has value
type OptionalText struct {
	Present bool
	Value   *string
}

// OptionalPrice is OptionalText for item prices; a null price makes the item free
type OptionalPrice struct {
	Present bool
	Value   decimal.NullDecimal
}

// CreateObjectRequest represents a request to create an object.
// OwnerUserID is only honoured for admins; customers always own what they create.
type CreateObjectRequest struct {
	OwnerUserID string  `json:"owner_user_id,omitempty"`
	Title       string  `json:"title"`
	Address     string  `json:"address"`
	Description *string `json:"description,omitempty"`
}

// UpdateObjectRequest represents a partial object update
type UpdateObjectRequest struct {
	Title       *string
	Address     *string
	Description OptionalText
}

// CreateAssignmentRequest assigns a designer or builder to an object
type CreateAssignmentRequest struct {
	UserID string `json:"user_id"`
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name string `json:"name"`
}

// Upload is a file as received from the transport
type Upload struct {
	Filename string
	Body     io.Reader
}

// UploadMediaRequest represents a photo or video upload
type UploadMediaRequest struct {
	ObjectID string
	Kind     models.MediaKind
	Title    string
	FolderID *string
	File     Upload
}

// UploadBimModelRequest represents a BIM model upload
type UploadBimModelRequest struct {
	ObjectID string
	Title    string
	File     Upload
}

// SaveTreeRequest replaces a model's parameter tree
type SaveTreeRequest struct {
	ParameterTree json.RawMessage `json:"parameter_tree"`
}

// CreateCommentRequest represents a new comment on a photo or model
type CreateCommentRequest struct {
	ObjectID   string
	ParentKind models.CommentParentKind
	ParentID   string
	Body       string
}

// CreateItemRequest represents a new catalog item
type CreateItemRequest struct {
	Title       string
	Description *string
	Price       decimal.NullDecimal
	File        Upload
}

// UpdateItemRequest represents a partial item update
type UpdateItemRequest struct {
	Title       *string
	Description OptionalText
	Price       OptionalPrice
}

// CreatePortfolioItemRequest represents a new portfolio entry
type CreatePortfolioItemRequest struct {
	Title       string
	Description *string
	File        Upload
}

// CommerceNotification is the commerce platform's order status callback
type CommerceNotification struct {
	OrderID string                `json:"order_id"`
	UserID  string                `json:"user_id"`
	ItemID  string                `json:"item_id"`
	Status  models.PurchaseStatus `json:"status"`
}
