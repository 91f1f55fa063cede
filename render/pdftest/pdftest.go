// Package pdftest inspects rendered PDF documents in tests: page counts with
// pdfcpu, page text with ledongthuc/pdf and embedded gofpdf images.
package pdftest

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/jpeg"
	"image/png"
	"regexp"
	"strconv"
	"testing"

	"github.com/ledongthuc/pdf"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/require"
)

// AssertPDFPageCount parses the document with pdfcpu and checks its page count
func AssertPDFPageCount(t *testing.T, data []byte, expected int) {
	t.Helper()
	ctx, err := pdfapi.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	require.NoError(t, err, "pdfcpu failed to read document")
	require.Equal(t, expected, ctx.PageCount)
}

// PageTexts extracts the plain text of every page
func PageTexts(t *testing.T, data []byte) []string {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	texts := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		require.NoError(t, err, "page %d", i)
		texts = append(texts, text)
	}
	return texts
}

var imageObject = regexp.MustCompile(`/Subtype /Image\n/Width (\d+)\n/Height (\d+)\n/ColorSpace /(\w+)\n/BitsPerComponent 8\n(?:/Filter /(\w+)\n)?(?:/DecodeParms <<[^>]*>>\n)?(?:/Mask [^\n]*\n)?(?:/SMask [^\n]*\n)?/Length (\d+)>>\nstream\n`)

// ExtractImages decodes the RGB image XObjects embedded in a gofpdf document
func ExtractImages(t *testing.T, data []byte) []image.Image {
	t.Helper()
	var images []image.Image
	for _, m := range imageObject.FindAllSubmatchIndex(data, -1) {
		group := func(i int) string {
			if m[2*i] < 0 {
				return ""
			}
			return string(data[m[2*i]:m[2*i+1]])
		}
		if group(3) != "DeviceRGB" {
			continue
		}
		width, _ := strconv.Atoi(group(1))
		height, _ := strconv.Atoi(group(2))
		length, _ := strconv.Atoi(group(5))
		stream := data[m[1] : m[1]+length]

		switch group(4) {
		case "DCTDecode":
			img, err := jpeg.Decode(bytes.NewReader(stream))
			require.NoError(t, err)
			images = append(images, img)
		case "FlateDecode":
			img, err := png.Decode(bytes.NewReader(wrapPNG(width, height, stream)))
			require.NoError(t, err)
			images = append(images, img)
		}
	}
	return images
}

// wrapPNG rebuilds an RGB PNG around a predictor encoded zlib stream
func wrapPNG(width, height int, idat []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := func(kind string, body []byte) {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(body)))
		buf.Write(n[:])
		crc := crc32.NewIEEE()
		crc.Write([]byte(kind))
		crc.Write(body)
		buf.WriteString(kind)
		buf.Write(body)
		binary.BigEndian.PutUint32(n[:], crc.Sum32())
		buf.Write(n[:])
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:], uint32(height))
	ihdr[8] = 8 // bit depth
	ihdr[9] = 2 // truecolor
	chunk("IHDR", ihdr)
	chunk("IDAT", idat)
	chunk("IEND", nil)
	return buf.Bytes()
}
