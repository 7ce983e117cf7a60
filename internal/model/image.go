package model

import "time"

// Document type discriminators used by the content store.
const (
	TypeBusImage  = "busImage"
	TypeReference = "reference"
	TypeImage     = "image"
)

// Image document lifecycle. Documents are written as pending and flipped to ready
// once every file of their batch has been committed.
const (
	StatusPending = "pending"
	StatusReady   = "ready"
)

// Reference points at another document or asset by its store id.
type Reference struct {
	Type string `json:"_type"`
	Ref  string `json:"_ref"`
}

// NewReference builds a reference to the given id.
func NewReference(id string) Reference {
	return Reference{Type: TypeReference, Ref: id}
}

// ImageField embeds an uploaded asset into a document.
type ImageField struct {
	Type  string    `json:"_type"`
	Asset Reference `json:"asset"`
}

// BusImage is the metadata document created for every uploaded photograph.
// It links exactly one bus to exactly one asset and is never mutated after creation
// apart from its status.
type BusImage struct {
	ID         string     `json:"_id"`
	Type       string     `json:"_type"`
	Bus        Reference  `json:"bus"`
	Label      string     `json:"label"`
	Image      ImageField `json:"image"`
	UploadDate time.Time  `json:"uploadDate"`
	Status     string     `json:"status"`
	BatchKey   string     `json:"batchKey,omitempty"`

	// URL is filled in by read paths only.
	URL string `json:"url,omitempty"`
}

// AssetRef returns the id of the asset this image points at.
func (b BusImage) AssetRef() string {
	return b.Image.Asset.Ref
}

// FileEntry is one uploaded file part spooled to local temporary storage.
type FileEntry struct {
	Filename    string
	ContentType string
	Size        int64
	Path        string
}
