package pdfutil

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"code.sajari.com/docconv"
	pdf "github.com/ledongthuc/pdf"
)

// Document is the decoded form of a PDF: the text the library flattens on its
// own, plus the page tree for structural recovery when that comes back empty.
type Document struct {
	Raw   string
	Pages []Page
}

// Page holds the text elements of one page in reading order.
type Page struct {
	Texts []TextElement
}

// TextElement is a line of text made of one or more runs.
type TextElement struct {
	Runs []TextRun
}

// TextRun is a contiguous piece of text drawn with a single font.
type TextRun struct {
	T string
}

// Decoder turns PDF bytes into a Document.
type Decoder interface {
	Decode(data []byte) (*Document, error)
}

// Extractor produces plain text from PDF bytes.
type Extractor struct {
	decoder  Decoder
	external func(data []byte) (string, error)
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithDecoder swaps the PDF decoder.
func WithDecoder(d Decoder) Option {
	return func(e *Extractor) { e.decoder = d }
}

// WithExternalFallback enables pdftotext (through docconv) as a last resort
// when both in-process strategies come back empty.
func WithExternalFallback() Option {
	return func(e *Extractor) { e.external = convertWithDocconv }
}

// NewExtractor constructs an Extractor backed by ledongthuc/pdf.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{decoder: ledongthucDecoder{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsPDF sniffs the content type of data.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\n\f\r "), []byte("%PDF-"))
}

// ExtractText returns the plain text of a PDF. ok is false when the input is
// not a PDF or cannot be decoded at all; an empty string with ok true means the
// document decoded but holds no text.
func (e *Extractor) ExtractText(data []byte) (text string, ok bool) {
	if !IsPDF(data) {
		return "", false
	}
	doc, err := e.decode(data)
	if err != nil {
		slog.Warn("pdf decode failed", "error", err, "bytes", len(data))
		return "", false
	}
	if text := strings.TrimSpace(doc.Raw); text != "" {
		return text, true
	}
	text = Flatten(doc.Pages)
	if text == "" && e.external != nil {
		external, err := e.external(data)
		if err != nil {
			slog.Warn("external pdf conversion failed", "error", err)
		} else {
			text = strings.TrimSpace(external)
		}
	}
	return text, true
}

// decode shields callers from panics inside the decoder; malformed PDFs are
// known to trip index errors in the parser.
func (e *Extractor) decode(data []byte) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("pdf decoder panic: %v", r)
		}
	}()
	return e.decoder.Decode(data)
}

// Flatten rebuilds text from the page tree: runs are percent-decoded and
// joined by a space, and every page ends with a blank line.
func Flatten(pages []Page) string {
	var b strings.Builder
	for _, page := range pages {
		for _, element := range page.Texts {
			for _, run := range element.Runs {
				b.WriteString(decodeRun(run.T))
				b.WriteByte(' ')
			}
		}
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

// decodeRun percent-decodes run text, keeping it verbatim when it is not
// valid escape syntax (a literal "100%" for instance).
func decodeRun(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

type ledongthucDecoder struct{}

func (ledongthucDecoder) Decode(data []byte) (*Document, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("new pdf reader: %w", err)
	}
	doc := &Document{}
	if plain, err := reader.GetPlainText(); err == nil {
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(plain); err == nil {
			doc.Raw = buf.String()
		}
	}
	if strings.TrimSpace(doc.Raw) != "" {
		return doc, nil
	}
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			continue
		}
		var page Page
		for _, row := range rows {
			element := TextElement{}
			for _, text := range row.Content {
				element.Runs = append(element.Runs, TextRun{T: text.S})
			}
			page.Texts = append(page.Texts, element)
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

func convertWithDocconv(data []byte) (string, error) {
	text, _, err := docconv.ConvertPDF(io.Reader(bytes.NewReader(data)))
	if err != nil {
		return "", fmt.Errorf("docconv: %w", err)
	}
	return text, nil
}
