// internal/domain/progress.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressPhoto holds metadata for a client progress photo; the bytes live in
// object storage under ObjectKey.
type ProgressPhoto struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID    primitive.ObjectID `bson:"clientId" json:"clientId"`
	ObjectKey   string             `bson:"objectKey" json:"objectKey"`
	FileName    string             `bson:"fileName" json:"fileName"`
	FileSize    int64              `bson:"fileSize" json:"fileSize"`
	ContentType string             `bson:"contentType" json:"contentType"`
	TakenAt     *time.Time         `bson:"takenAt,omitempty" json:"takenAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
