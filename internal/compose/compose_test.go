package compose

import (
	"bytes"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dukerupert/hermod/internal/address"
	"github.com/dukerupert/hermod/internal/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

type stubFetcher struct {
	data  []byte
	ctype string
}

func (s *stubFetcher) Get(url string) ([]byte, string, error) {
	return s.data, s.ctype, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newComposer(fetcher content.Fetcher) *Composer {
	classifier := content.NewClassifier(fetcher, content.DetectHTML, testLogger())
	return NewComposer(classifier, "me@example.com", "Me Myself", testLogger())
}

func toSet(addrs ...string) address.Set {
	return address.Set{Recipients: addrs, To: strings.Join(addrs, "; ")}
}

// parseParts reads the serialized message and returns its header plus every
// MIME part keyed by flattened part index, walking one level of nesting.
func parseParts(t *testing.T, data []byte) (mail.Header, []*multipart.Part, [][]byte) {
	t.Helper()
	msg, err := mail.ReadMessage(bytes.NewReader(data))
	require.NoError(t, err)
	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/mixed", mediaType)

	var parts []*multipart.Part
	var bodies [][]byte
	mr := multipart.NewReader(msg.Body, params["boundary"])
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		inner, innerParams, err := mime.ParseMediaType(p.Header.Get("Content-Type"))
		require.NoError(t, err)
		if inner == "multipart/alternative" {
			ar := multipart.NewReader(p, innerParams["boundary"])
			for {
				ap, err := ar.NextPart()
				if err == io.EOF {
					break
				}
				require.NoError(t, err)
				body, err := io.ReadAll(ap)
				require.NoError(t, err)
				parts = append(parts, ap)
				bodies = append(bodies, body)
			}
			continue
		}
		body, err := io.ReadAll(p)
		require.NoError(t, err)
		parts = append(parts, p)
		bodies = append(bodies, body)
	}
	return msg.Header, parts, bodies
}

func TestBuild_PlainTextMessage(t *testing.T) {
	c := newComposer(nil)
	msg, err := c.Build(toSet("alice@example.com"), []string{"Hello", "World"}, []content.Item{{Source: "just plain words"}}, false)
	require.NoError(t, err)

	header, parts, bodies := parseParts(t, msg.Bytes())
	assert.Equal(t, "Hello World", header.Get("Subject"))
	assert.Equal(t, "alice@example.com", header.Get("To"))
	assert.Contains(t, header.Get("From"), "me@example.com")
	require.Len(t, parts, 1)
	assert.Contains(t, parts[0].Header.Get("Content-Type"), "text/plain")
	assert.Equal(t, "just plain words", string(bodies[0]))
	assert.False(t, msg.HasImages())
	assert.NotContains(t, msg.String(), "MIME enabled mail reader")
}

func TestBuild_SubjectOmittedWhenEmpty(t *testing.T) {
	c := newComposer(nil)
	msg, err := c.Build(toSet("alice@example.com"), nil, []content.Item{{Source: "body"}}, false)
	require.NoError(t, err)

	header, _, _ := parseParts(t, msg.Bytes())
	_, ok := header["Subject"]
	assert.False(t, ok)
}

func TestBuild_ToHeaderFallsBackToSelfName(t *testing.T) {
	c := newComposer(nil)
	msg, err := c.Build(address.Set{Recipients: []string{"me@example.com"}}, []string{"s"}, nil, false)
	require.NoError(t, err)

	header, _, _ := parseParts(t, msg.Bytes())
	assert.Equal(t, "Me Myself", header.Get("To"))
}

func TestBuild_InlineImageEmbedding(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "pixel.png")
	require.NoError(t, os.WriteFile(imgPath, pngBytes, 0o644))

	c := newComposer(nil)
	msg, err := c.Build(toSet("alice@example.com"), []string{"pic"}, []content.Item{{Source: imgPath}}, false)
	require.NoError(t, err)
	assert.True(t, msg.HasImages())
	assert.Contains(t, msg.String(), "MIME enabled mail reader")

	_, parts, bodies := parseParts(t, msg.Bytes())
	require.Len(t, parts, 2)

	// Alternative container holds the inline HTML reference.
	assert.Contains(t, parts[0].Header.Get("Content-Type"), "text/html")
	html := string(bodies[0])
	assert.Contains(t, html, `src="cid:`)

	// Mixed container holds the base64 image part with a matching ID.
	img := parts[1]
	assert.Contains(t, img.Header.Get("Content-Type"), "image/png")
	assert.Equal(t, "base64", img.Header.Get("Content-Transfer-Encoding"))
	id := strings.Trim(img.Header.Get("Content-Id"), "<>")
	assert.Contains(t, html, "cid:"+id)
}

func TestBuild_ImageContentIDDeterministic(t *testing.T) {
	obj := &content.Object{MainType: "image", SubType: "png", Name: "pixel.png"}
	assert.Equal(t, ContentID(obj), ContentID(obj))

	named := &content.Object{MainType: "image", SubType: "png", Name: "logo", Named: true}
	assert.Equal(t, "logo", ContentID(named))
}

func TestBuild_AttachmentPart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644))

	c := newComposer(nil)
	msg, err := c.Build(toSet("alice@example.com"), []string{"doc"}, []content.Item{{Source: path, Name: "q3-report.pdf"}}, false)
	require.NoError(t, err)

	_, parts, _ := parseParts(t, msg.Bytes())
	var attachment *multipart.Part
	for _, p := range parts {
		if strings.Contains(p.Header.Get("Content-Type"), "application/pdf") {
			attachment = p
		}
	}
	require.NotNil(t, attachment)
	assert.Contains(t, attachment.Header.Get("Content-Disposition"), "q3-report.pdf")
	assert.Equal(t, "base64", attachment.Header.Get("Content-Transfer-Encoding"))
	assert.False(t, msg.HasImages())
}

func TestBuild_CacheKeepsStalePayload(t *testing.T) {
	fetcher := &stubFetcher{data: pngBytes, ctype: "image/png"}
	c := newComposer(fetcher)
	set := toSet("alice@example.com")
	items := []content.Item{{Source: "http://example.com/pixel.png"}}

	first, err := c.Build(set, []string{"s"}, items, true)
	require.NoError(t, err)

	// The remote image changes, but the cache is keyed by the URL string.
	fetcher.data = []byte("different bytes entirely")
	second, err := c.Build(set, []string{"s"}, items, true)
	require.NoError(t, err)

	imagePayload := func(data []byte) []byte {
		_, parts, bodies := parseParts(t, data)
		for i, p := range parts {
			if strings.Contains(p.Header.Get("Content-Type"), "image/png") {
				return bodies[i]
			}
		}
		t.Fatal("no image part found")
		return nil
	}
	assert.Equal(t, imagePayload(first.Bytes()), imagePayload(second.Bytes()))
}
