package epub

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/hughgramel/readfluent/internal/util"
	"github.com/hughgramel/readfluent/pkg/domain"
)

var (
	// ErrInvalidEPUB indicates the input is not a usable EPUB: unreadable
	// archive, missing package metadata, or an empty content flow.
	ErrInvalidEPUB = errors.New("invalid epub")
)

const (
	defaultTitle  = "Unknown Title"
	defaultAuthor = "Unknown Author"
)

// Ingest converts raw EPUB bytes into a Book: ordered sections with flattened
// text and word counts, plus aggregate totals. It is a pure transform; the
// caller persists the result. Sections that fail to read or parse are skipped
// rather than failing the whole book, and sections with zero words are
// dropped entirely.
func Ingest(data []byte, fileName string) (domain.Book, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return domain.Book{}, fmt.Errorf("%w: open archive: %v", ErrInvalidEPUB, err)
	}

	files := make(map[string]*zip.File, len(archive.File))
	for _, f := range archive.File {
		files[path.Clean(f.Name)] = f
	}

	opfPath, err := rootfilePath(files)
	if err != nil {
		return domain.Book{}, err
	}
	pkg, err := readPackage(files, opfPath)
	if err != nil {
		return domain.Book{}, err
	}
	if pkg.Metadata == nil {
		return domain.Book{}, fmt.Errorf("%w: package has no metadata", ErrInvalidEPUB)
	}
	if pkg.Spine == nil || len(pkg.Spine.ItemRefs) == 0 {
		return domain.Book{}, fmt.Errorf("%w: package has no content flow", ErrInvalidEPUB)
	}

	manifest := make(map[string]manifestItem)
	if pkg.Manifest != nil {
		for _, item := range pkg.Manifest.Items {
			manifest[item.ID] = item
		}
	}

	opfDir := path.Dir(opfPath)
	sections := make([]domain.Section, 0, len(pkg.Spine.ItemRefs))
	total := 0
	for i, ref := range pkg.Spine.ItemRefs {
		item, ok := manifest[ref.IDRef]
		if !ok || strings.TrimSpace(item.Href) == "" {
			continue
		}
		markup, err := readZipFile(files, resolveHref(opfDir, item.Href))
		if err != nil {
			slog.Debug("skipping unreadable section", "idref", ref.IDRef, "err", err)
			continue
		}
		section, err := buildSection(markup, item.ID, i)
		if err != nil {
			slog.Debug("skipping unparsable section", "idref", ref.IDRef, "err", err)
			continue
		}
		if section.WordCount == 0 {
			continue
		}
		sections = append(sections, section)
		total += section.WordCount
	}

	return domain.Book{
		ID:         util.NewTimeID(),
		Title:      firstOrDefault(pkg.Metadata.Titles, defaultTitle),
		Author:     firstOrDefault(pkg.Metadata.Creators, defaultAuthor),
		Sections:   sections,
		TotalWords: total,
		FileName:   fileName,
		DateAdded:  time.Now().UTC(),
		Completed:  false,
	}, nil
}

func rootfilePath(files map[string]*zip.File) (string, error) {
	raw, err := readZipFile(files, "META-INF/container.xml")
	if err != nil {
		return "", fmt.Errorf("%w: missing container descriptor", ErrInvalidEPUB)
	}
	var c containerXML
	if err := xml.Unmarshal(raw, &c); err != nil {
		return "", fmt.Errorf("%w: parse container descriptor: %v", ErrInvalidEPUB, err)
	}
	for _, rf := range c.Rootfiles {
		if strings.TrimSpace(rf.FullPath) != "" {
			return path.Clean(rf.FullPath), nil
		}
	}
	return "", fmt.Errorf("%w: container lists no rootfile", ErrInvalidEPUB)
}

func readPackage(files map[string]*zip.File, opfPath string) (packageDoc, error) {
	var pkg packageDoc
	raw, err := readZipFile(files, opfPath)
	if err != nil {
		return pkg, fmt.Errorf("%w: missing package document", ErrInvalidEPUB)
	}
	if err := xml.Unmarshal(raw, &pkg); err != nil {
		return pkg, fmt.Errorf("%w: parse package document: %v", ErrInvalidEPUB, err)
	}
	return pkg, nil
}

func readZipFile(files map[string]*zip.File, name string) ([]byte, error) {
	f, ok := files[path.Clean(name)]
	if !ok {
		return nil, fmt.Errorf("entry %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func resolveHref(opfDir, href string) string {
	href = strings.TrimSpace(href)
	if i := strings.IndexAny(href, "#?"); i >= 0 {
		href = href[:i]
	}
	if opfDir == "." || opfDir == "" {
		return path.Clean(href)
	}
	return path.Clean(path.Join(opfDir, href))
}

// buildSection flattens one spine document: title from the first heading,
// body text with whitespace runs collapsed, count of non-empty tokens.
func buildSection(markup []byte, itemID string, index int) (domain.Section, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return domain.Section{}, err
	}

	title := strings.TrimSpace(doc.Find("h1, h2, h3, h4, h5, h6").First().Text())
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		title = fmt.Sprintf("Section %d", index+1)
	}

	id := strings.TrimSpace(itemID)
	if id == "" {
		id = fmt.Sprintf("section-%d", index)
	}

	var flat strings.Builder
	for _, node := range doc.Find("body").Nodes {
		flattenText(node, &flat)
	}
	if flat.Len() == 0 {
		// Some spine documents carry no <body>; fall back to the whole tree.
		for _, node := range doc.Nodes {
			flattenText(node, &flat)
		}
	}
	fields := strings.Fields(flat.String())
	return domain.Section{
		ID:        id,
		Title:     title,
		Content:   strings.Join(fields, " "),
		WordCount: len(fields),
	}, nil
}

func flattenText(n *html.Node, buf *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(n.Data)
		buf.WriteString(" ")
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" || n.Data == "head" {
			return
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		flattenText(child, buf)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "br", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6":
			buf.WriteString(" ")
		}
	}
}

func firstOrDefault(values []string, fallback string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return fallback
}
