package idcard

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Template is a .pptx card layout with {{TOKEN}} placeholders in its text
// runs. The student photo slot is either a shape whose text reads PHOTO (or
// {{PHOTO}}), or a picture whose shape name mentions "photo"; when neither
// exists the photo lands at a fixed position on the first slide.
type Template struct {
	path string
}

// LoadTemplate verifies the template file exists and returns a handle.
func LoadTemplate(path string) (*Template, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("template %s is a directory", path)
	}
	return &Template{path: path}, nil
}

// Photo placement in EMU. 914400 EMU to the inch.
const (
	fallbackPhotoX  = 274320 // 0.3"
	fallbackPhotoY  = 2148840
	fallbackPhotoCX = 640080
	fallbackPhotoCY = 822960

	photoRelID     = "rIdStudentPhoto"
	photoMediaPart = "ppt/media/studentPhoto.jpg"
)

var (
	picBlockRe = regexp.MustCompile(`(?s)<p:pic>.*?</p:pic>`)
	spBlockRe  = regexp.MustCompile(`(?s)<p:sp>.*?</p:sp>`)
	picNameRe  = regexp.MustCompile(`<p:cNvPr[^>]*name="([^"]*)"`)
	embedRe    = regexp.MustCompile(`r:embed="([^"]+)"`)
	textRunRe  = regexp.MustCompile(`<a:t>([^<]*)</a:t>`)
	offRe      = regexp.MustCompile(`<a:off x="(\d+)" y="(\d+)"\s*/>`)
	extRe      = regexp.MustCompile(`<a:ext cx="(\d+)" cy="(\d+)"\s*/>`)
)

// relationships mirrors the .rels part of a slide.
type relationships struct {
	XMLName xml.Name `xml:"Relationships"`
	Items   []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// archive holds the unpacked .pptx parts in their original order.
type archive struct {
	parts map[string][]byte
	order []string
}

func (a *archive) set(name string, data []byte) {
	if _, exists := a.parts[name]; !exists {
		a.order = append(a.order, name)
	}
	a.parts[name] = data
}

// photoBox is a placement rectangle in EMU.
type photoBox struct {
	x, y, cx, cy int64
}

var fallbackBox = photoBox{fallbackPhotoX, fallbackPhotoY, fallbackPhotoCX, fallbackPhotoCY}

// Render substitutes tokens into every slide and places the photo, when
// given, into the template's photo slot. The result is a complete .pptx
// archive.
func (t *Template) Render(tokens TokenMap, photo []byte) ([]byte, error) {
	reader, err := zip.OpenReader(t.path)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer reader.Close() //nolint:errcheck

	arc := &archive{parts: make(map[string][]byte, len(reader.File))}
	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", file.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close() //nolint:errcheck
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", file.Name, err)
		}
		arc.set(file.Name, data)
	}

	var slideNames []string
	for _, name := range arc.order {
		if strings.HasPrefix(name, "ppt/slides/slide") && strings.HasSuffix(name, ".xml") {
			slideNames = append(slideNames, name)
		}
	}

	photoPlaced := false
	for _, name := range slideNames {
		slide := string(arc.parts[name])

		if len(photo) > 0 && !photoPlaced {
			slide, photoPlaced, err = placePhoto(arc, name, slide, photo)
			if err != nil {
				return nil, err
			}
		}

		slide = substituteTokens(slide, tokens)
		arc.parts[name] = []byte(slide)
	}

	if len(photo) > 0 && !photoPlaced && len(slideNames) > 0 {
		first := slideNames[0]
		slide, err := insertPhotoShape(arc, first, string(arc.parts[first]), photo, fallbackBox)
		if err != nil {
			return nil, err
		}
		arc.parts[first] = []byte(slide)
	}

	buf := &bytes.Buffer{}
	writer := zip.NewWriter(buf)
	for _, name := range arc.order {
		w, err := writer.Create(name)
		if err != nil {
			return nil, fmt.Errorf("write part %s: %w", name, err)
		}
		if _, err := w.Write(arc.parts[name]); err != nil {
			return nil, fmt.Errorf("write part %s: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// placePhoto fills the slide's photo slot. A text-tagged shape wins over a
// named picture so templates can use either convention.
func placePhoto(arc *archive, slideName, slide string, photo []byte) (string, bool, error) {
	if block, box, found := findTaggedShape(slide); found {
		stripped := strings.Replace(slide, block, "", 1)
		updated, err := insertPhotoShape(arc, slideName, stripped, photo, box)
		if err != nil {
			return "", false, err
		}
		return updated, true, nil
	}

	relID := findPhotoRelID(slide)
	if relID == "" {
		return slide, false, nil
	}
	target, err := resolveRelTarget(arc.parts, slideName, relID)
	if err != nil {
		return "", false, err
	}
	if target == "" {
		return slide, false, nil
	}
	if _, ok := arc.parts[target]; !ok {
		return slide, false, nil
	}
	arc.parts[target] = photo
	return slide, true, nil
}

// findTaggedShape looks for a shape whose whole text reads PHOTO or
// {{PHOTO}} and reports its placement rectangle.
func findTaggedShape(slide string) (string, photoBox, bool) {
	for _, block := range spBlockRe.FindAllString(slide, -1) {
		var text strings.Builder
		for _, run := range textRunRe.FindAllStringSubmatch(block, -1) {
			text.WriteString(run[1])
		}
		tag := strings.TrimSpace(text.String())
		if tag != "PHOTO" && tag != "{{PHOTO}}" {
			continue
		}

		box := fallbackBox
		if off := offRe.FindStringSubmatch(block); off != nil {
			box.x, _ = strconv.ParseInt(off[1], 10, 64)
			box.y, _ = strconv.ParseInt(off[2], 10, 64)
		}
		if ext := extRe.FindStringSubmatch(block); ext != nil {
			box.cx, _ = strconv.ParseInt(ext[1], 10, 64)
			box.cy, _ = strconv.ParseInt(ext[2], 10, 64)
		}
		return block, box, true
	}
	return "", photoBox{}, false
}

// insertPhotoShape appends a picture element to the slide's shape tree,
// registers the photo media part and wires the relationship.
func insertPhotoShape(arc *archive, slideName, slide string, photo []byte, box photoBox) (string, error) {
	pic := fmt.Sprintf(`<p:pic><p:nvPicPr><p:cNvPr id="1001" name="Student Photo"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr><p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill><p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`,
		photoRelID, box.x, box.y, box.cx, box.cy)

	if !strings.Contains(slide, "</p:spTree>") {
		return "", fmt.Errorf("slide %s has no shape tree", slideName)
	}
	slide = strings.Replace(slide, "</p:spTree>", pic+"</p:spTree>", 1)

	arc.set(photoMediaPart, photo)
	if err := addPhotoRelationship(arc, slideName); err != nil {
		return "", err
	}
	ensureJPEGContentType(arc)
	return slide, nil
}

func addPhotoRelationship(arc *archive, slideName string) error {
	base := strings.TrimPrefix(slideName, "ppt/slides/")
	relsName := "ppt/slides/_rels/" + base + ".rels"
	rel := fmt.Sprintf(`<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/studentPhoto.jpg"/>`, photoRelID)

	data, ok := arc.parts[relsName]
	if !ok {
		doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			rel + `</Relationships>`
		arc.set(relsName, []byte(doc))
		return nil
	}

	content := string(data)
	if strings.Contains(content, `Id="`+photoRelID+`"`) {
		return nil
	}
	if !strings.Contains(content, "</Relationships>") {
		return fmt.Errorf("malformed relationships part %s", relsName)
	}
	arc.parts[relsName] = []byte(strings.Replace(content, "</Relationships>", rel+"</Relationships>", 1))
	return nil
}

func ensureJPEGContentType(arc *archive) {
	const name = "[Content_Types].xml"
	data, ok := arc.parts[name]
	if !ok {
		return
	}
	content := string(data)
	if strings.Contains(content, `Extension="jpg"`) {
		return
	}
	entry := `<Default Extension="jpg" ContentType="image/jpeg"/>`
	arc.parts[name] = []byte(strings.Replace(content, "</Types>", entry+"</Types>", 1))
}

// substituteTokens replaces placeholders with XML-escaped values. Newlines
// become character references so multi-line values such as addresses keep
// their line breaks inside a single text run.
func substituteTokens(slide string, tokens TokenMap) string {
	pairs := make([]string, 0, len(tokens)*2+2)
	for token, value := range tokens {
		pairs = append(pairs, token, escapeXML(value))
	}
	// The photo token carries no text; any leftover marker is cleared.
	pairs = append(pairs, "{{PHOTO}}", "")
	return strings.NewReplacer(pairs...).Replace(slide)
}

func escapeXML(value string) string {
	buf := &bytes.Buffer{}
	_ = xml.EscapeText(buf, []byte(value))
	// EscapeText writes newlines as &#xA;, which presentation software
	// renders as a line break inside a text run.
	return buf.String()
}

// findPhotoRelID locates the picture whose shape name mentions "photo" and
// returns its relationship id.
func findPhotoRelID(slide string) string {
	for _, block := range picBlockRe.FindAllString(slide, -1) {
		nameMatch := picNameRe.FindStringSubmatch(block)
		if nameMatch == nil || !strings.Contains(strings.ToLower(nameMatch[1]), "photo") {
			continue
		}
		if embed := embedRe.FindStringSubmatch(block); embed != nil {
			return embed[1]
		}
	}
	return ""
}

// resolveRelTarget maps a slide relationship id to the archive path of the
// media part it points at.
func resolveRelTarget(parts map[string][]byte, slideName, relID string) (string, error) {
	base := strings.TrimPrefix(slideName, "ppt/slides/")
	relsName := "ppt/slides/_rels/" + base + ".rels"
	data, ok := parts[relsName]
	if !ok {
		return "", nil
	}

	var rels relationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return "", fmt.Errorf("parse %s: %w", relsName, err)
	}

	for _, item := range rels.Items {
		if item.ID != relID {
			continue
		}
		target := item.Target
		// Targets are relative to ppt/slides/, usually "../media/imageN.ext".
		target = strings.TrimPrefix(target, "../")
		if !strings.HasPrefix(target, "ppt/") {
			target = "ppt/" + target
		}
		return target, nil
	}
	return "", nil
}
