package content

import (
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// encodingsByExt maps compressed-file extensions to their content encoding.
// Payloads with a compression encoding are attached as opaque binary.
var encodingsByExt = map[string]string{
	".gz":  "gzip",
	".bz2": "bzip2",
	".xz":  "xz",
	".z":   "compress",
	".br":  "br",
}

// DetectorFunc reports whether a literal string contains HTML markup. A nil
// detector means the HTML capability is absent and all literal content is
// classified text/plain.
type DetectorFunc func(string) bool

// Classifier resolves content items into Objects. Classification order,
// first match wins: existing local file, fetchable remote URL, literal
// text. Resolved objects are cached per classifier lifetime, keyed by the
// item's source string; cache entries are never invalidated.
type Classifier struct {
	fetcher    Fetcher
	detectHTML DetectorFunc
	logger     *slog.Logger
	cache      map[string]*Object
}

// NewClassifier creates a classifier. fetcher may be nil to disable remote
// fetching; detect may be nil when no HTML detection is available.
func NewClassifier(fetcher Fetcher, detect DetectorFunc, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		fetcher:    fetcher,
		detectHTML: detect,
		logger:     logger,
		cache:      make(map[string]*Object),
	}
}

// Classify resolves item into an Object. With useCache set, a previously
// resolved object for the same source string is returned as-is, even if the
// underlying file or remote resource has changed since.
func (c *Classifier) Classify(item Item, useCache bool) (*Object, error) {
	if useCache {
		if obj, ok := c.cache[item.Source]; ok {
			return obj, nil
		}
	}
	obj, err := c.resolve(item)
	if err != nil {
		return nil, err
	}
	if useCache {
		c.cache[item.Source] = obj
	}
	return obj, nil
}

func (c *Classifier) resolve(item Item) (*Object, error) {
	if fi, err := os.Stat(item.Source); err == nil && fi.Mode().IsRegular() {
		return c.fromFile(item)
	}
	if u, err := url.Parse(item.Source); err == nil && u.Scheme != "" && c.fetcher != nil {
		obj, err := c.fromURL(item, u)
		if err == nil {
			return obj, nil
		}
		c.logger.Debug("remote fetch failed, treating content as literal",
			"source", item.Source, "error", err)
	}
	return c.fromLiteral(item), nil
}

func (c *Classifier) fromFile(item Item) (*Object, error) {
	data, err := os.ReadFile(item.Source)
	if err != nil {
		return nil, fmt.Errorf("reading content file %s: %w", item.Source, err)
	}
	obj := &Object{Data: data, Name: item.displayName(), Named: item.Name != ""}
	c.typeFromName(obj, item.Source)
	if obj.MainType == "" {
		c.sniff(obj)
	}
	return obj, nil
}

func (c *Classifier) fromURL(item Item, u *url.URL) (*Object, error) {
	data, ctype, err := c.fetcher.Get(item.Source)
	if err != nil {
		return nil, err
	}
	obj := &Object{Data: data, Name: item.displayName(), Named: item.Name != ""}
	if ctype != "" {
		if mt, _, err := mime.ParseMediaType(ctype); err == nil {
			if main, sub, ok := strings.Cut(mt, "/"); ok {
				obj.MainType, obj.SubType = main, sub
				return obj, nil
			}
		}
	}
	// No usable content-type header: fall back to the file-path logic on
	// the URL's path.
	c.typeFromName(obj, u.Path)
	if obj.MainType == "" {
		c.sniff(obj)
	}
	return obj, nil
}

func (c *Classifier) fromLiteral(item Item) *Object {
	sub := "plain"
	if c.detectHTML != nil && c.detectHTML(item.Source) {
		sub = "html"
	}
	return &Object{
		MainType: "text",
		SubType:  sub,
		Data:     []byte(item.Source),
		Name:     item.displayName(),
		Named:    item.Name != "",
	}
}

// typeFromName guesses main/sub type from the name's extension. Compressed
// extensions record the encoding and force application/octet-stream.
func (c *Classifier) typeFromName(obj *Object, name string) {
	ext := strings.ToLower(filepath.Ext(name))
	if enc, ok := encodingsByExt[ext]; ok {
		obj.Encoding = enc
		obj.MainType, obj.SubType = "application", "octet-stream"
		return
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if mt, _, err := mime.ParseMediaType(t); err == nil {
			if main, sub, ok := strings.Cut(mt, "/"); ok {
				obj.MainType, obj.SubType = main, sub
			}
		}
	}
}

// sniff detects the type from the payload bytes. Unrecognized content comes
// back as application/octet-stream.
func (c *Classifier) sniff(obj *Object) {
	mt := mimetype.Detect(obj.Data)
	if main, sub, ok := strings.Cut(mt.String(), "/"); ok {
		if i := strings.IndexByte(sub, ';'); i >= 0 {
			sub = strings.TrimSpace(sub[:i])
		}
		obj.MainType, obj.SubType = main, sub
		return
	}
	obj.MainType, obj.SubType = "application", "octet-stream"
}
