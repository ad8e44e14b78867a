package domain

import (
	"encoding/json"
	"strings"
)

// LocalScheme prefixes references to media that only exists in the server's
// staging area. Anything without the prefix is a durable blob-store URL.
const LocalScheme = "local:"

type assetKind int

const (
	assetNone assetKind = iota
	assetLocal
	assetRemote
)

// AssetRef identifies one binary payload (image or voice clip). A local ref
// points at a staged file that still has to be uploaded; a remote ref is a
// blob-store URL. The zero value means "no asset".
type AssetRef struct {
	kind  assetKind
	value string
}

func LocalRef(path string) AssetRef {
	return AssetRef{kind: assetLocal, value: path}
}

func RemoteRef(url string) AssetRef {
	return AssetRef{kind: assetRemote, value: url}
}

// ParseAssetRef classifies a wire-format reference string. This is the only
// place the local: scheme is inspected; past this boundary the kind travels
// with the value.
func ParseAssetRef(s string) AssetRef {
	if s == "" {
		return AssetRef{}
	}
	if strings.HasPrefix(s, LocalScheme) {
		return LocalRef(strings.TrimPrefix(s, LocalScheme))
	}
	return RemoteRef(s)
}

func (r AssetRef) IsZero() bool   { return r.kind == assetNone }
func (r AssetRef) IsLocal() bool  { return r.kind == assetLocal }
func (r AssetRef) IsRemote() bool { return r.kind == assetRemote }

// Path returns the staging path of a local ref, or "" for anything else.
func (r AssetRef) Path() string {
	if r.kind != assetLocal {
		return ""
	}
	return r.value
}

// URL returns the blob-store URL of a remote ref, or "" for anything else.
func (r AssetRef) URL() string {
	if r.kind != assetRemote {
		return ""
	}
	return r.value
}

func (r AssetRef) String() string {
	switch r.kind {
	case assetLocal:
		return LocalScheme + r.value
	case assetRemote:
		return r.value
	default:
		return ""
	}
}

func (r AssetRef) MarshalJSON() ([]byte, error) {
	if r.kind == assetNone {
		return []byte("null"), nil
	}
	return json.Marshal(r.String())
}

func (r *AssetRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = AssetRef{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseAssetRef(s)
	return nil
}
