package models

import "time"

// MediaType is the kind of an attachment.
type MediaType string

const (
	MediaTypeImage MediaType = "IMAGE"
	MediaTypeVideo MediaType = "VIDEO"
	MediaTypeGIF   MediaType = "GIF"
)

// MediaStatus is the server-side lifecycle state of a media object.
type MediaStatus string

const (
	MediaStatusInit      MediaStatus = "INIT"
	MediaStatusUploaded  MediaStatus = "UPLOADED"
	MediaStatusCompleted MediaStatus = "COMPLETED"
	MediaStatusFailed    MediaStatus = "FAILED"
)

type Media struct {
	ID         int64          `json:"id"`
	MediaType  MediaType      `json:"mediaType"`
	Path       string         `json:"path"`
	Status     MediaStatus    `json:"status"`
	UserID     int64          `json:"userId"`
	Attributes map[string]any `json:"attributes,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	ModifiedAt time.Time      `json:"modifiedAt"`
}

type MediaInitRequest struct {
	MediaType MediaType `json:"mediaType"`
	FileSize  int64     `json:"fileSize"`
}

// PresignedURLPart is one destination of a multi-part transfer.
type PresignedURLPart struct {
	PartNumber int    `json:"partNumber"`
	URL        string `json:"url"`
}

// MediaInitResponse carries either PresignedURL (single part) or UploadID
// with PresignedURLParts (multi part).
type MediaInitResponse struct {
	Media
	PresignedURL      string             `json:"presignedUrl,omitempty"`
	UploadID          string             `json:"uploadId,omitempty"`
	PresignedURLParts []PresignedURLPart `json:"presignedUrlParts,omitempty"`
}

// MediaUploadPart is the evidence of one transferred chunk.
type MediaUploadPart struct {
	PartNumber int    `json:"partNumber"`
	ETag       string `json:"eTag"`
}

type MediaUploadedRequest struct {
	MediaID int64             `json:"mediaId"`
	Parts   []MediaUploadPart `json:"parts,omitempty"`
}

type PresignedURLResponse struct {
	PresignedURL string `json:"presignedUrl"`
	Media        Media  `json:"media"`
}
