package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

const (
	rootRelsPath         = "_rels/.rels"
	defaultBodyPath      = "word/document.xml"
	officeDocumentRelEnd = "/officeDocument"
	maxPartSize          = 64 << 20
)

type relationships struct {
	Relationships []struct {
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// locateBody finds the main document part. It follows the officeDocument
// relationship when the package declares one and falls back to the
// conventional word/document.xml.
func locateBody(zr *zip.Reader) (*zip.File, error) {
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	if rf, ok := files[rootRelsPath]; ok {
		if target := officeDocumentTarget(rf); target != "" {
			if f, ok := files[target]; ok {
				return f, nil
			}
		}
	}
	if f, ok := files[defaultBodyPath]; ok {
		return f, nil
	}
	return nil, ErrMissingBody
}

// officeDocumentTarget returns the archive path of the officeDocument
// relationship, or "" when it can't be read.
func officeDocumentTarget(f *zip.File) string {
	data, err := readPart(f)
	if err != nil {
		return ""
	}
	var rels relationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return ""
	}
	for _, r := range rels.Relationships {
		if strings.HasSuffix(r.Type, officeDocumentRelEnd) {
			return path.Clean(strings.TrimPrefix(r.Target, "/"))
		}
	}
	return ""
}

func readPart(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > maxPartSize {
		return nil, fmt.Errorf("%s: part too large (%d bytes)", f.Name, f.UncompressedSize64)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if len(data) > maxPartSize {
		return nil, fmt.Errorf("%s: part too large", f.Name)
	}
	return data, nil
}
