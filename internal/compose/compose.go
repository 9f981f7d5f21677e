package compose

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/hermod/internal/address"
	"github.com/dukerupert/hermod/internal/content"
)

// preamble is shown by mail readers that cannot handle MIME multipart.
const preamble = "You need a MIME enabled mail reader to see this message."

// Message is a fully serialized MIME message, ready for transmission.
type Message struct {
	data      []byte
	hasImages bool
}

// Bytes returns the serialized message.
func (m *Message) Bytes() []byte { return m.data }

// String returns the serialized message as text.
func (m *Message) String() string { return string(m.data) }

// HasImages reports whether any inline image was embedded.
func (m *Message) HasImages() bool { return m.hasImages }

// Composer assembles multipart MIME messages from classified content
// objects. Text and HTML objects land in a multipart/alternative container;
// images are embedded by content-ID with an inline HTML reference;
// everything else is attached to the multipart/mixed envelope.
type Composer struct {
	classifier *content.Classifier
	from       string
	fromName   string
	logger     *slog.Logger
	now        func() time.Time
}

// NewComposer creates a composer sending as from with the given display
// name.
func NewComposer(classifier *content.Classifier, from, fromName string, logger *slog.Logger) *Composer {
	if fromName == "" {
		fromName = from
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		classifier: classifier,
		from:       from,
		fromName:   fromName,
		logger:     logger,
		now:        time.Now,
	}
}

// Build classifies every content item and assembles the message for the
// resolved address set. Subject parts are joined with spaces; an empty
// subject is omitted. With useCache set, previously classified items are
// reused from the classifier's cache.
func (c *Composer) Build(set address.Set, subject []string, items []content.Item, useCache bool) (*Message, error) {
	objects := make([]*content.Object, 0, len(items))
	hasImages := false
	for _, item := range items {
		obj, err := c.classifier.Classify(item, useCache)
		if err != nil {
			return nil, err
		}
		if obj.IsImage() {
			hasImages = true
		}
		objects = append(objects, obj)
	}

	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	c.writeHeaders(&buf, set, subject, mixed.Boundary())
	if hasImages {
		buf.WriteString(preamble)
		buf.WriteString("\r\n")
	}

	// The alternative container is assembled first so its boundary is
	// known when the enclosing part header is written.
	var altBuf bytes.Buffer
	alt := multipart.NewWriter(&altBuf)
	for _, obj := range objects {
		switch {
		case obj.IsImage():
			if err := writeText(alt, "html", imgTag(obj)); err != nil {
				return nil, err
			}
		case obj.MainType == "text":
			if err := writeText(alt, obj.SubType, string(obj.Data)); err != nil {
				return nil, err
			}
		}
	}
	if err := alt.Close(); err != nil {
		return nil, err
	}

	altHeader := textproto.MIMEHeader{}
	altHeader.Set("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", alt.Boundary()))
	altPart, err := mixed.CreatePart(altHeader)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(altPart, &altBuf); err != nil {
		return nil, err
	}

	for _, obj := range objects {
		switch {
		case obj.IsImage():
			if err := writeImage(mixed, obj); err != nil {
				return nil, err
			}
		case obj.MainType == "text":
			// Already rendered in the alternative container.
		default:
			if err := writeAttachment(mixed, obj); err != nil {
				return nil, err
			}
		}
	}
	if err := mixed.Close(); err != nil {
		return nil, err
	}

	return &Message{data: buf.Bytes(), hasImages: hasImages}, nil
}

func (c *Composer) writeHeaders(buf *bytes.Buffer, set address.Set, subject []string, boundary string) {
	from := mail.Address{Name: c.fromName, Address: c.from}
	fmt.Fprintf(buf, "From: %s\r\n", from.String())

	to := set.To
	if to == "" {
		to = c.fromName
	}
	fmt.Fprintf(buf, "To: %s\r\n", to)
	if set.Cc != "" {
		fmt.Fprintf(buf, "Cc: %s\r\n", set.Cc)
	}
	if set.Bcc != "" {
		fmt.Fprintf(buf, "Bcc: %s\r\n", set.Bcc)
	}
	if s := strings.Join(subject, " "); s != "" {
		fmt.Fprintf(buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", s))
	}
	fmt.Fprintf(buf, "Date: %s\r\n", c.now().Format(time.RFC1123Z))
	fmt.Fprintf(buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(buf, "Content-Type: multipart/mixed; boundary=%q\r\n", boundary)
	buf.WriteString("\r\n")
}

// ContentID returns the identifier used to reference an embedded image from
// HTML. Explicit name overrides are used directly; otherwise the ID is
// derived deterministically from the source basename.
func ContentID(obj *content.Object) string {
	if obj.Named {
		return obj.Name
	}
	h := fnv.New32a()
	h.Write([]byte(obj.Name))
	return strconv.FormatUint(uint64(h.Sum32()), 10)
}

func imgTag(obj *content.Object) string {
	id := ContentID(obj)
	return fmt.Sprintf("<img src=\"cid:%s\" title=%q/>", id, id)
}

func writeText(w *multipart.Writer, subType, body string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", fmt.Sprintf("text/%s; charset=\"utf-8\"", subType))
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.WriteString(part, body)
	return err
}

func writeImage(w *multipart.Writer, obj *content.Object) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", fmt.Sprintf("%s; name=%q", obj.ContentType(), obj.Name))
	h.Set("Content-Transfer-Encoding", "base64")
	h.Set("Content-ID", fmt.Sprintf("<%s>", ContentID(obj)))
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	return writeBase64(part, obj.Data)
}

func writeAttachment(w *multipart.Writer, obj *content.Object) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", fmt.Sprintf("%s; name=%q", obj.ContentType(), obj.Name))
	h.Set("Content-Transfer-Encoding", "base64")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", obj.Name))
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	return writeBase64(part, obj.Data)
}

// writeBase64 encodes data in 76-column base64 lines per RFC 2045.
func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := min(76, len(encoded))
		if _, err := io.WriteString(w, encoded[:n]); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\r\n"); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
