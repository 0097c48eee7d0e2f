package service

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Display strings of the legacy extraction contract.
const (
	unsupportedFormatMsg = "サポートされていないファイル形式です。"
	extractErrorPrefix   = "ファイルの処理中にエラーが発生しました: "
)

const wordMLNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

type ExtractKind int

const (
	ExtractOK ExtractKind = iota
	ExtractUnsupported
	ExtractFailed
)

// ExtractResult is the tagged outcome of a text extraction. Display
// flattens it back to the legacy string shape the panel renders.
type ExtractResult struct {
	Kind ExtractKind
	Text string
	Err  error
}

// Display returns the decoded text, the fixed unsupported-format message,
// or the error message with its cause embedded. It never signals failure
// any other way.
func (r ExtractResult) Display() string {
	switch r.Kind {
	case ExtractUnsupported:
		return unsupportedFormatMsg
	case ExtractFailed:
		return extractErrorPrefix + r.Err.Error()
	default:
		return r.Text
	}
}

type ExtractService struct{}

// Extract converts an uploaded file into plain text, dispatching on the
// filename extension. It never panics: parser failures, including panics
// from the pdf library, come back as ExtractFailed.
func (s *ExtractService) Extract(fileName string, data []byte) (result ExtractResult) {
	defer func() {
		if p := recover(); p != nil {
			result = ExtractResult{Kind: ExtractFailed, Err: fmt.Errorf("%v", p)}
		}
	}()

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))

	var (
		text string
		err  error
	)
	switch ext {
	case "txt":
		if !utf8.Valid(data) {
			return ExtractResult{Kind: ExtractFailed, Err: fmt.Errorf("%s is not valid UTF-8 text", fileName)}
		}
		text = string(data)
	case "doc", "docx":
		text, err = extractDocx(data)
	case "ppt", "pptx":
		text, err = extractPptx(data)
	case "pdf":
		text, err = extractPDF(data)
	default:
		return ExtractResult{Kind: ExtractUnsupported}
	}

	if err != nil {
		return ExtractResult{Kind: ExtractFailed, Err: err}
	}
	return ExtractResult{Kind: ExtractOK, Text: text}
}

// ExtractText is the legacy entry point: the result value itself carries
// success or failure. Proofreading feeds it onward either way.
func (s *ExtractService) ExtractText(fileName string, data []byte) string {
	return s.Extract(fileName, data).Display()
}

// extractDocx walks word/document.xml and returns every non-empty
// paragraph's text, one per line, in document order.
func extractDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	doc, err := readZipFile(zr, "word/document.xml")
	if err != nil {
		return "", err
	}

	decoder := xml.NewDecoder(bytes.NewReader(doc))
	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
	)
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == wordMLNS && t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Space == wordMLNS && t.Name.Local == "t" {
				inText = false
			}
			if t.Name.Space == wordMLNS && t.Name.Local == "p" {
				if current.Len() > 0 {
					paragraphs = append(paragraphs, current.String())
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}

var slidePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractPptx walks the slide parts in deck order and appends each
// text-carrying shape's text followed by a newline.
func extractPptx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	type slideFile struct {
		num  int
		file *zip.File
	}
	var slides []slideFile
	for _, f := range zr.File {
		m := slidePattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		var n int
		fmt.Sscanf(m[1], "%d", &n)
		slides = append(slides, slideFile{num: n, file: f})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var text strings.Builder
	for _, slide := range slides {
		rc, err := slide.file.Open()
		if err != nil {
			return "", err
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}
		if err := extractSlideText(content, &text); err != nil {
			return "", err
		}
	}
	return text.String(), nil
}

// extractSlideText appends each shape's text (its paragraphs joined by
// newlines) plus a trailing newline, shape by shape.
func extractSlideText(data []byte, out *strings.Builder) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	var (
		inTxBody   bool
		inText     bool
		paragraphs []string
		current    strings.Builder
	)
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "txBody":
				inTxBody = true
				paragraphs = paragraphs[:0]
				current.Reset()
			case "t":
				if inTxBody {
					inText = true
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inTxBody {
					paragraphs = append(paragraphs, current.String())
					current.Reset()
				}
			case "txBody":
				inTxBody = false
				out.WriteString(strings.Join(paragraphs, "\n"))
				out.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return nil
}

// extractPDF appends each page's text followed by a newline, in page order.
func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := appendPageText(r.Page(i), &text); err != nil {
			return "", err
		}
	}
	return text.String(), nil
}

// appendPageText writes the page's text plus a newline. Pages that resolve
// to null still contribute their newline so every page stays visible in the
// output.
func appendPageText(page pdf.Page, out *strings.Builder) error {
	if page.V.IsNull() {
		out.WriteString("\n")
		return nil
	}
	content, err := page.GetPlainText(nil)
	if err != nil {
		return err
	}
	out.WriteString(content)
	out.WriteString("\n")
	return nil
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}
