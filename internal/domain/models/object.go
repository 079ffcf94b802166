package models

import "time"

// Object is a construction site owned by exactly one customer
type Object struct {
	ID          string    `json:"id" db:"id"`
	OwnerUserID string    `json:"owner_user_id" db:"owner_user_id"`
	Title       string    `json:"title" db:"title"`
	Address     string    `json:"address" db:"address"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Assignment grants a designer or builder access to an object
type Assignment struct {
	UserID    string    `json:"user_id" db:"user_id"`
	ObjectID  string    `json:"object_id" db:"object_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Folder groups photos and videos within an object
type Folder struct {
	ID            string    `json:"id" db:"id"`
	ObjectID      string    `json:"object_id" db:"object_id"`
	ObjectOwnerID string    `json:"-" db:"object_owner_id"`
	Name          string    `json:"name" db:"name"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
