package model

import "time"

const (
	ResourceTypeRoom = "room"
	ResourceTypeDesk = "desk"
)

type Resource struct {
	ID        string    `json:"id" bson:"_id"`
	OwnerID   string    `json:"owner_id" bson:"owner_id"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Type      string    `json:"type" bson:"type" validate:"required,oneof=room desk"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type ResourceUpdate struct {
	Name string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Type string `json:"type,omitempty" validate:"omitempty,oneof=room desk"`
}
