package domain

import "time"

// ProductEvent announces a finished product to downstream catalog consumers.
type ProductEvent struct {
	Product     string    `json:"product"`
	Region      string    `json:"region"`
	RegionTitle string    `json:"region_title"`
	Period      string    `json:"period"`
	ArchiveKey  string    `json:"archive_key"`
	MetadataKey string    `json:"metadata_key"`
	Uploaded    bool      `json:"uploaded"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewProductEvent stamps an event with the package clock.
func NewProductEvent(product string, target ClipTarget, period, archiveKey, metadataKey string, uploaded bool) ProductEvent {
	return ProductEvent{
		Product:     product,
		Region:      target.Name,
		RegionTitle: target.Title,
		Period:      period,
		ArchiveKey:  archiveKey,
		MetadataKey: metadataKey,
		Uploaded:    uploaded,
		CreatedAt:   clock.Now().UTC(),
	}
}
