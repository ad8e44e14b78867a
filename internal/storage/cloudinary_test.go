package storage

import "testing"

func TestParseDeliveryURL(t *testing.T) {
	tests := []struct {
		name             string
		url              string
		wantPublicID     string
		wantResourceType string
		wantErr          bool
	}{
		{
			name:             "image with version segment",
			url:              "https://res.cloudinary.com/demo/image/upload/v1712345678/images/abc123.jpg",
			wantPublicID:     "images/abc123",
			wantResourceType: "image",
		},
		{
			name:             "video without version segment",
			url:              "https://res.cloudinary.com/demo/video/upload/voice_notes/rec456.m4a",
			wantPublicID:     "voice_notes/rec456",
			wantResourceType: "video",
		},
		{
			name:             "raw keeps the extension",
			url:              "https://res.cloudinary.com/demo/raw/upload/voice_notes/rec456.m4a",
			wantPublicID:     "voice_notes/rec456.m4a",
			wantResourceType: "raw",
		},
		{
			name:             "folder starting with v is not a version",
			url:              "https://res.cloudinary.com/demo/image/upload/vault/abc.png",
			wantPublicID:     "vault/abc",
			wantResourceType: "image",
		},
		{
			name:    "not a delivery URL",
			url:     "https://example.com/some/file.jpg",
			wantErr: true,
		},
		{
			name:    "missing public id",
			url:     "https://res.cloudinary.com/demo/image/upload/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publicID, resourceType, err := parseDeliveryURL(tt.url)

			if tt.wantErr {
				if err == nil {
					t.Errorf("parseDeliveryURL(%q) expected error", tt.url)
				}
				return
			}

			if err != nil {
				t.Fatalf("parseDeliveryURL(%q) error = %v", tt.url, err)
			}
			if publicID != tt.wantPublicID {
				t.Errorf("publicID = %q, want %q", publicID, tt.wantPublicID)
			}
			if resourceType != tt.wantResourceType {
				t.Errorf("resourceType = %q, want %q", resourceType, tt.wantResourceType)
			}
		})
	}
}
