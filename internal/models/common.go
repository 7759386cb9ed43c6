// server/internal/models/common.go
package models

// Position is a single latitude/longitude sample.
type Position struct {
	Latitude  float64 `bson:"latitude" json:"lat"`
	Longitude float64 `bson:"longitude" json:"lng"`
}

// MediaPointer references an image stored on S3 or a similar service.
type MediaPointer struct {
	ID       string `bson:"id" json:"id"`
	URL      string `bson:"url" json:"url"`
	FileName string `bson:"fileName" json:"fileName"`
	FileType string `bson:"fileType" json:"fileType"` // e.g. "image/jpeg"
}
