package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// AudioUpload is the metadata stored for an uploaded recording or image.
type AudioUpload struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserIDString string             `bson:"user_id_string" json:"-"`
	Name         string             `bson:"name" json:"name"`
	URL          string             `bson:"url" json:"url"`
	CreatedAt    string             `bson:"createdAt" json:"created_at"`
	Size         int64              `bson:"size" json:"size"`
	Type         string             `bson:"type" json:"type"`
}
