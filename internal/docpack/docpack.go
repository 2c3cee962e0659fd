package docpack

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotDocx is returned when the payload is not a readable DOCX package.
var ErrNotDocx = errors.New("not a readable docx package")

// Package is a read-only view of an opened DOCX (OPC) archive: the main
// document part, its relationships, the style-name table, and media payloads.
type Package struct {
	// DocumentXML is the raw content of word/document.xml.
	DocumentXML []byte

	// Rels maps relationship ids (rId..) to their targets, e.g. "media/image1.png".
	Rels map[string]string

	// StyleNames maps style ids (e.g. "Heading1") to display names (e.g. "Heading 1").
	StyleNames map[string]string

	// Media maps archive paths (e.g. "word/media/image1.png") to payloads.
	Media map[string][]byte
}

// Asset is one embedded binary object resolved through a relationship id.
type Asset struct {
	RelID string
	Name  string // source reference name, used for MIME inference
	MIME  string
	Data  []byte
}

// Open reads a DOCX package from raw bytes. A missing or unreadable
// word/document.xml fails the whole open; missing rels or styles parts
// degrade to empty maps.
func Open(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
	}

	fileIndex := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		fileIndex[f.Name] = f
	}

	docFile := fileIndex["word/document.xml"]
	if docFile == nil {
		return nil, fmt.Errorf("%w: word/document.xml not found", ErrNotDocx)
	}
	docXML, err := readZipFile(docFile)
	if err != nil {
		return nil, fmt.Errorf("read document.xml: %w", err)
	}

	p := &Package{
		DocumentXML: docXML,
		Rels:        parseRels(fileIndex),
		StyleNames:  parseStyleNames(fileIndex),
		Media:       make(map[string][]byte),
	}

	for name, f := range fileIndex {
		if !strings.HasPrefix(name, "word/media/") {
			continue
		}
		payload, err := readZipFile(f)
		if err != nil {
			// A single unreadable media part is not fatal; the reference
			// is dropped when resolution fails.
			continue
		}
		p.Media[name] = payload
	}

	return p, nil
}

// StyleName resolves a style id to its display name, falling back to the id.
func (p *Package) StyleName(styleID string) string {
	if name, ok := p.StyleNames[styleID]; ok && name != "" {
		return name
	}
	return styleID
}

// Asset resolves a relationship id to its binary payload and inferred MIME
// type. The second return is false when the id or its target cannot be found.
func (p *Package) Asset(relID string) (Asset, bool) {
	target, ok := p.Rels[relID]
	if !ok {
		return Asset{}, false
	}
	mediaPath := path.Clean("word/" + strings.ReplaceAll(target, "\\", "/"))
	payload, ok := p.Media[mediaPath]
	if !ok {
		return Asset{}, false
	}
	return Asset{
		RelID: relID,
		Name:  path.Base(mediaPath),
		MIME:  MIMEFromExt(filepath.Ext(mediaPath)),
		Data:  payload,
	}, true
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// relationships mirrors word/_rels/document.xml.rels.
type relationships struct {
	XMLName xml.Name       `xml:"Relationships"`
	Rels    []relationship `xml:"Relationship"`
}

type relationship struct {
	ID     string `xml:"Id,attr"`
	Target string `xml:"Target,attr"`
	Type   string `xml:"Type,attr"`
}

func parseRels(fileIndex map[string]*zip.File) map[string]string {
	result := make(map[string]string)
	relsFile := fileIndex["word/_rels/document.xml.rels"]
	if relsFile == nil {
		return result
	}
	data, err := readZipFile(relsFile)
	if err != nil {
		return result
	}
	var rels relationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return result
	}
	for _, rel := range rels.Rels {
		result[rel.ID] = rel.Target
	}
	return result
}

// stylesPart mirrors the fragment of word/styles.xml we need: styleId -> name.
type stylesPart struct {
	XMLName xml.Name `xml:"styles"`
	Styles  []struct {
		ID   string `xml:"styleId,attr"`
		Name struct {
			Val string `xml:"val,attr"`
		} `xml:"name"`
	} `xml:"style"`
}

func parseStyleNames(fileIndex map[string]*zip.File) map[string]string {
	result := make(map[string]string)
	stylesFile := fileIndex["word/styles.xml"]
	if stylesFile == nil {
		return result
	}
	data, err := readZipFile(stylesFile)
	if err != nil {
		return result
	}
	var styles stylesPart
	if err := xml.Unmarshal(data, &styles); err != nil {
		return result
	}
	for _, s := range styles.Styles {
		if s.ID != "" {
			result[s.ID] = s.Name.Val
		}
	}
	return result
}

// MIMEFromExt maps an image file extension to its MIME type, defaulting
// to image/png for unknown extensions.
func MIMEFromExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
