package idcard

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSlideXML = `<?xml version="1.0"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<p:cSld><p:spTree>
<p:sp><p:txBody><a:p><a:r><a:t>{{NAME}}</a:t></a:r></a:p><a:p><a:r><a:t>{{ADDRESS}}</a:t></a:r></a:p><a:p><a:r><a:t>Valid till {{EXPIRY_DATE}}</a:t></a:r></a:p></p:txBody></p:sp>
<p:pic><p:nvPicPr><p:cNvPr id="5" name="Student Photo Frame"/></p:nvPicPr><p:blipFill><a:blip r:embed="rId2"/></p:blipFill></p:pic>
</p:spTree></p:cSld></p:sld>`

const testRelsXML = `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/image1.jpeg"/>
</Relationships>`

func writeTestTemplate(t *testing.T) string {
	t.Helper()
	return writeTemplateWith(t, map[string]string{
		"ppt/slides/slide1.xml":            testSlideXML,
		"ppt/slides/_rels/slide1.xml.rels": testRelsXML,
		"ppt/media/image1.jpeg":            "placeholder-bytes",
	})
}

func writeTemplateWith(t *testing.T, parts map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "id_card.pptx")

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for name, data := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func readPart(t *testing.T, archive []byte, name string) []byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return data
	}
	t.Fatalf("part %s not found", name)
	return nil
}

func TestLoadTemplateMissing(t *testing.T) {
	_, err := LoadTemplate(filepath.Join(t.TempDir(), "absent.pptx"))
	assert.Error(t, err)
}

func TestRenderSubstitutesTokens(t *testing.T) {
	tmpl, err := LoadTemplate(writeTestTemplate(t))
	require.NoError(t, err)

	tokens := TokenMap{
		"{{NAME}}":        "Anita & Co",
		"{{ADDRESS}}":     "12 MG Road\nBengaluru",
		"{{EXPIRY_DATE}}": "2025-12-31",
	}
	out, err := tmpl.Render(tokens, nil)
	require.NoError(t, err)

	slide := string(readPart(t, out, "ppt/slides/slide1.xml"))
	assert.NotContains(t, slide, "{{NAME}}")
	assert.Contains(t, slide, "Anita &amp; Co")
	assert.Contains(t, slide, "Valid till 2025-12-31")
	// Newlines survive as character references inside the run.
	assert.Contains(t, slide, "12 MG Road&#xA;Bengaluru")

	// Without photo bytes the placeholder media is untouched.
	media := readPart(t, out, "ppt/media/image1.jpeg")
	assert.Equal(t, "placeholder-bytes", string(media))
}

func TestRenderSwapsPhotoMedia(t *testing.T) {
	tmpl, err := LoadTemplate(writeTestTemplate(t))
	require.NoError(t, err)

	photo := []byte("jpeg-of-the-student")
	out, err := tmpl.Render(TokenMap{"{{NAME}}": "X"}, photo)
	require.NoError(t, err)

	media := readPart(t, out, "ppt/media/image1.jpeg")
	assert.Equal(t, photo, media)
}

const taggedSlideXML = `<?xml version="1.0"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<p:cSld><p:spTree>
<p:sp><p:txBody><a:p><a:r><a:t>{{NAME}}</a:t></a:r></a:p></p:txBody></p:sp>
<p:sp><p:spPr><a:xfrm><a:off x="914400" y="457200"/><a:ext cx="1828800" cy="2286000"/></a:xfrm></p:spPr><p:txBody><a:p><a:r><a:t>PHOTO</a:t></a:r></a:p></p:txBody></p:sp>
</p:spTree></p:cSld></p:sld>`

const emptyRelsXML = `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
</Relationships>`

func TestRenderReplacesTaggedShapeWithPicture(t *testing.T) {
	tmpl, err := LoadTemplate(writeTemplateWith(t, map[string]string{
		"ppt/slides/slide1.xml":            taggedSlideXML,
		"ppt/slides/_rels/slide1.xml.rels": emptyRelsXML,
		"[Content_Types].xml":              `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/></Types>`,
	}))
	require.NoError(t, err)

	photo := []byte("jpeg-of-the-student")
	out, err := tmpl.Render(TokenMap{"{{NAME}}": "Anita Rao"}, photo)
	require.NoError(t, err)

	slide := string(readPart(t, out, "ppt/slides/slide1.xml"))
	// The marker shape is gone, a picture stands at its exact box.
	assert.NotContains(t, slide, "PHOTO")
	assert.Contains(t, slide, `r:embed="rIdStudentPhoto"`)
	assert.Contains(t, slide, `<a:off x="914400" y="457200"/>`)
	assert.Contains(t, slide, `<a:ext cx="1828800" cy="2286000"/>`)
	assert.Contains(t, slide, "Anita Rao")

	media := readPart(t, out, "ppt/media/studentPhoto.jpg")
	assert.Equal(t, photo, media)

	rels := string(readPart(t, out, "ppt/slides/_rels/slide1.xml.rels"))
	assert.Contains(t, rels, `Id="rIdStudentPhoto"`)
	assert.Contains(t, rels, "../media/studentPhoto.jpg")

	types := string(readPart(t, out, "[Content_Types].xml"))
	assert.Contains(t, types, `Extension="jpg"`)
}

func TestRenderTaggedTokenShape(t *testing.T) {
	slide := strings.Replace(taggedSlideXML, "<a:t>PHOTO</a:t>", "<a:t>{{PHOTO}}</a:t>", 1)
	tmpl, err := LoadTemplate(writeTemplateWith(t, map[string]string{
		"ppt/slides/slide1.xml": slide,
	}))
	require.NoError(t, err)

	out, err := tmpl.Render(nil, []byte("jpeg"))
	require.NoError(t, err)

	rendered := string(readPart(t, out, "ppt/slides/slide1.xml"))
	assert.NotContains(t, rendered, "{{PHOTO}}")
	assert.Contains(t, rendered, `r:embed="rIdStudentPhoto"`)

	// No .rels part shipped with the slide; one is created for the photo.
	rels := string(readPart(t, out, "ppt/slides/_rels/slide1.xml.rels"))
	assert.Contains(t, rels, `Id="rIdStudentPhoto"`)
}

func TestRenderFallsBackToFixedPhotoBox(t *testing.T) {
	tmpl, err := LoadTemplate(writeTemplateWith(t, map[string]string{
		"ppt/slides/slide1.xml": `<?xml version="1.0"?><p:sld><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>{{NAME}}</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`,
	}))
	require.NoError(t, err)

	out, err := tmpl.Render(TokenMap{"{{NAME}}": "X"}, []byte("jpeg"))
	require.NoError(t, err)

	slide := string(readPart(t, out, "ppt/slides/slide1.xml"))
	assert.Contains(t, slide, `r:embed="rIdStudentPhoto"`)
	assert.Contains(t, slide, `<a:off x="274320" y="2148840"/>`)
	assert.Contains(t, slide, `<a:ext cx="640080" cy="822960"/>`)

	media := readPart(t, out, "ppt/media/studentPhoto.jpg")
	assert.Equal(t, "jpeg", string(media))
}
