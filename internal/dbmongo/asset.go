package dbmongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"travelgram/internal/common"
)

// MediaAsset is one row of the images or audios collection. Rows are
// written once after the binary object exists and never updated.
type MediaAsset struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Kind         common.MediaKind   `bson:"-" json:"kind"`
	Filename     string             `bson:"filename" json:"filename"` // generated name in the binary store
	OriginalName string             `bson:"originalName" json:"originalName"`
	ContentType  string             `bson:"contentType" json:"contentType"`
	Size         int64              `bson:"size" json:"size"`
	UserID       string             `bson:"userId" json:"userId"`
	GridFSID     string             `bson:"gridFSId" json:"gridFSId"`
	UploadDate   time.Time          `bson:"uploadDate" json:"uploadDate"`

	Description string `bson:"description,omitempty" json:"description,omitempty"`

	// image only
	Location string `bson:"location,omitempty" json:"location,omitempty"`

	// audio only
	Duration   *float64 `bson:"duration,omitempty" json:"duration,omitempty"`
	Transcript string   `bson:"transcript,omitempty" json:"transcript,omitempty"`
	ImageID    string   `bson:"imageId,omitempty" json:"imageId,omitempty"`
}

func (a *MediaAsset) IDHex() string {
	return a.ID.Hex()
}
