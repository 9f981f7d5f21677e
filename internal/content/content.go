package content

import "path/filepath"

// Item is one piece of content to include in a message. Source is a local
// file path, a remote URL, or literal text; classification decides which,
// in that order. Name optionally overrides the derived attachment name and
// the base used for generated image content-IDs.
type Item struct {
	Source string
	Name   string
}

// displayName returns the explicit name override or the basename of the
// source.
func (i Item) displayName() string {
	if i.Name != "" {
		return i.Name
	}
	return filepath.Base(i.Source)
}

// Object is the resolved representation of one content item: its MIME
// classification plus the byte payload.
type Object struct {
	MainType string
	SubType  string
	Encoding string // compression encoding derived from the extension, e.g. "gzip"
	Data     []byte
	Name     string // attachment name / content-ID base
	Named    bool   // Name came from an explicit override
}

// IsImage reports whether the object should be embedded as an inline image.
func (o *Object) IsImage() bool { return o.MainType == "image" }

// ContentType returns the main/sub type pair as a media type string.
func (o *Object) ContentType() string { return o.MainType + "/" + o.SubType }
