package domain

import "time"

// Coordinate is a WGS84 point supplied by the client's map layer.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Mark pins a note to a location on the map. The server stores it verbatim
// and indexes it by Key; the rest is pass-through for the client.
type Mark struct {
	Coordinate Coordinate `json:"coordinate"`
	Key        string     `json:"key"`
	Title      string     `json:"title"`
}

type Note struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`

	Text      string     `json:"text,omitempty"`
	ImageRefs []AssetRef `json:"image_refs"`
	VoiceRef  AssetRef   `json:"voice_ref,omitempty"`
	Mark      *Mark      `json:"mark,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateNoteRequest struct {
	Text      string   `json:"text"`
	ImageRefs []string `json:"image_refs"`
	VoiceRef  string   `json:"voice_ref"`
	Mark      *Mark    `json:"mark"`
	DeviceID  string   `json:"device_id"`
}

type UpdateNoteRequest struct {
	Text      string   `json:"text"`
	ImageRefs []string `json:"image_refs"`
	VoiceRef  string   `json:"voice_ref"`
	Mark      *Mark    `json:"mark"`
	DeviceID  string   `json:"device_id"`

	// Remote refs the user removed during this edit session. Deleted from
	// the blob store best-effort, after the document write lands.
	DeletedRefs []string `json:"deleted_refs"`
}

type NoteResponse struct {
	ID        string     `json:"id"`
	Text      string     `json:"text,omitempty"`
	ImageRefs []AssetRef `json:"image_refs"`
	VoiceRef  AssetRef   `json:"voice_ref,omitempty"`
	Mark      *Mark      `json:"mark,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Best-effort cleanup failures from update/delete. Informational only;
	// the operation itself still succeeded.
	CleanupErrors []string `json:"cleanup_errors,omitempty"`
}

// ParseAssetRefs classifies a slice of wire-format references, keeping order.
func ParseAssetRefs(refs []string) []AssetRef {
	if refs == nil {
		return nil
	}
	out := make([]AssetRef, len(refs))
	for i, s := range refs {
		out[i] = ParseAssetRef(s)
	}
	return out
}
