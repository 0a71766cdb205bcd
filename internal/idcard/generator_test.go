package idcard

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jucampus/registrar-api/internal/models"
	"github.com/jucampus/registrar-api/pkg/drive"
)

type fakeDrive struct {
	mu      sync.Mutex
	folders map[string]string            // name -> id
	files   map[string]map[string][]byte // folder id -> name -> content
	shared  []string
	seq     int
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		folders: make(map[string]string),
		files:   make(map[string]map[string][]byte),
	}
}

func (d *fakeDrive) EnsureFolder(_ context.Context, _, name string) (*drive.File, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.folders[name]; ok {
		return &drive.File{ID: id, Name: name}, nil
	}
	d.seq++
	id := fmt.Sprintf("folder-%d", d.seq)
	d.folders[name] = id
	d.files[id] = make(map[string][]byte)
	return &drive.File{ID: id, Name: name}, nil
}

func (d *fakeDrive) Upsert(_ context.Context, folderID, name, _ string, content io.Reader) (*drive.File, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.files[folderID] == nil {
		d.files[folderID] = make(map[string][]byte)
	}
	d.files[folderID][name] = data
	return &drive.File{ID: folderID + "/" + name, Name: name, WebLink: "https://drive.test/" + folderID + "/" + name}, nil
}

func (d *fakeDrive) AllowPublicRead(_ context.Context, fileID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shared = append(d.shared, fileID)
	return nil
}

func (d *fakeDrive) List(_ context.Context, folderID string) ([]*drive.File, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*drive.File
	for name := range d.files[folderID] {
		out = append(out, &drive.File{ID: folderID + "/" + name, Name: name})
	}
	return out, nil
}

type failingPhotos struct{}

func (failingPhotos) Fetch(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("host unreachable")
}

func newTestGenerator(t *testing.T, uploader drive.Client) *Generator {
	t.Helper()
	tmpl, err := LoadTemplate(writeTestTemplate(t))
	require.NoError(t, err)
	gen, err := NewGenerator(tmpl, failingPhotos{}, nil, uploader, "root", t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return gen
}

func testStudent() *models.Student {
	return &models.Student{
		StudentID:         "STU1A2B3C4D",
		ApplicationNumber: "APP20240601ABC123",
		JUApplication:     "24JU100",
		Name:              "Anita Rao",
		Department:        "computer_science",
		AdmissionYear:     2021,
		PhotoURL:          "https://photos.test/anita.jpg",
	}
}

func TestGenerateSurvivesUnreachablePhoto(t *testing.T) {
	uploads := newFakeDrive()
	gen := newTestGenerator(t, uploads)

	card, err := gen.Generate(context.Background(), testStudent())
	require.NoError(t, err)
	assert.NotEmpty(t, card.LocalPPTX)
	assert.NotEmpty(t, card.PPTXDriveID)
	assert.Empty(t, card.PDFDriveID) // no converter wired
}

func TestGenerateUpsertsIntoStableFolder(t *testing.T) {
	uploads := newFakeDrive()
	gen := newTestGenerator(t, uploads)
	student := testStudent()

	_, err := gen.Generate(context.Background(), student)
	require.NoError(t, err)
	_, err = gen.Generate(context.Background(), student)
	require.NoError(t, err)

	// Regeneration reuses the folder and replaces the file in place.
	assert.Len(t, uploads.folders, 1)
	folderID := uploads.folders["JU_24JU100_Anita_Rao"]
	require.NotEmpty(t, folderID)
	assert.Len(t, uploads.files[folderID], 1)
	assert.Contains(t, uploads.files[folderID], "ID_Card.pptx")
}

func TestGenerateWithoutUploader(t *testing.T) {
	gen := newTestGenerator(t, nil)

	card, err := gen.Generate(context.Background(), testStudent())
	require.NoError(t, err)
	assert.Empty(t, card.PPTXDriveID)
	assert.NotEmpty(t, card.LocalPPTX)
}

func TestGenerateConcurrentSameStudent(t *testing.T) {
	uploads := newFakeDrive()
	gen := newTestGenerator(t, uploads)
	student := testStudent()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gen.Generate(context.Background(), student)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, uploads.folders, 1)
}
