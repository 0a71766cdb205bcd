package idcard

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jucampus/registrar-api/internal/models"
	"github.com/jucampus/registrar-api/pkg/drive"
)

const (
	drivePPTXName = "ID_Card.pptx"
	drivePDFName  = "ID_Card.pdf"

	pptxMimeType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	pdfMimeType  = "application/pdf"
)

// PhotoSource downloads a student photo ready for the card frame.
type PhotoSource interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Generator renders ID cards and publishes them to the remote drive.
// Concurrent requests for the same student serialize on a per-student
// lock so two generations never race on the same files.
type Generator struct {
	template     *Template
	photos       PhotoSource
	converter    Converter
	uploader     drive.Client
	rootFolderID string
	outputDir    string
	logger       *zap.Logger

	locks sync.Map // student id -> *sync.Mutex, never evicted
}

// NewGenerator wires the card pipeline. uploader may be nil, in which case
// cards stay local only.
func NewGenerator(
	template *Template,
	photos PhotoSource,
	converter Converter,
	uploader drive.Client,
	rootFolderID string,
	outputDir string,
	logger *zap.Logger,
) (*Generator, error) {
	if template == nil {
		return nil, fmt.Errorf("generator requires a template")
	}
	if outputDir == "" {
		outputDir = "./generated_id_cards"
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Generator{
		template:     template,
		photos:       photos,
		converter:    converter,
		uploader:     uploader,
		rootFolderID: rootFolderID,
		outputDir:    outputDir,
		logger:       logger,
	}, nil
}

func (g *Generator) lockFor(studentID string) *sync.Mutex {
	v, _ := g.locks.LoadOrStore(studentID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Generate produces the card artifacts for a student and returns where
// they ended up. A missing or unreachable photo degrades to a card
// without a photo rather than failing the generation.
func (g *Generator) Generate(ctx context.Context, student *models.Student) (*models.GeneratedCard, error) {
	mu := g.lockFor(student.StudentID)
	mu.Lock()
	defer mu.Unlock()

	tokens := BuildTokenMap(student, time.Now())

	var photo []byte
	if student.PhotoURL != "" && g.photos != nil {
		fetched, err := g.photos.Fetch(ctx, student.PhotoURL)
		if err != nil {
			g.logger.Warn("photo unavailable, generating card without it",
				zap.String("student_id", student.StudentID),
				zap.Error(err))
		} else {
			photo = fetched
		}
	}

	rendered, err := g.template.Render(tokens, photo)
	if err != nil {
		return nil, fmt.Errorf("render card for %s: %w", student.StudentID, err)
	}

	secureName := SanitizeName(student.Name)
	localPPTX := filepath.Join(g.outputDir, "ID_Card_"+secureName+".pptx")
	if err := os.WriteFile(localPPTX, rendered, 0o644); err != nil {
		return nil, fmt.Errorf("write card for %s: %w", student.StudentID, err)
	}

	card := &models.GeneratedCard{
		LocalPPTX:   localPPTX,
		GeneratedAt: time.Now().UTC(),
	}

	var pdfBytes []byte
	if g.converter != nil {
		pdfPath, err := g.converter.Convert(ctx, localPPTX, g.outputDir)
		if err != nil {
			g.logger.Warn("pdf conversion unavailable",
				zap.String("student_id", student.StudentID),
				zap.Error(err))
		} else {
			card.LocalPDF = pdfPath
			if data, err := os.ReadFile(pdfPath); err == nil {
				pdfBytes = data
			}
		}
	}

	if g.uploader != nil {
		if err := g.publish(ctx, student, secureName, rendered, pdfBytes, card); err != nil {
			return nil, err
		}
	}

	return card, nil
}

// publish pushes the artifacts into the student's drive folder. Uploads
// replace previous versions by name, so regeneration keeps the same file
// IDs and shared links.
func (g *Generator) publish(ctx context.Context, student *models.Student, secureName string, pptx, pdf []byte, card *models.GeneratedCard) error {
	app := student.JUApplication
	if app == "" {
		app = student.ApplicationNumber
	}
	folderName := fmt.Sprintf("JU_%s_%s", app, secureName)

	folder, err := g.uploader.EnsureFolder(ctx, g.rootFolderID, folderName)
	if err != nil {
		return fmt.Errorf("ensure drive folder for %s: %w", student.StudentID, err)
	}

	pptxFile, err := g.uploader.Upsert(ctx, folder.ID, drivePPTXName, pptxMimeType, bytes.NewReader(pptx))
	if err != nil {
		return fmt.Errorf("upload card for %s: %w", student.StudentID, err)
	}
	if err := g.uploader.AllowPublicRead(ctx, pptxFile.ID); err != nil {
		g.logger.Warn("could not share card", zap.String("file_id", pptxFile.ID), zap.Error(err))
	}
	card.PPTXDriveID = pptxFile.ID
	card.PPTXLink = pptxFile.WebLink

	if len(pdf) > 0 {
		pdfFile, err := g.uploader.Upsert(ctx, folder.ID, drivePDFName, pdfMimeType, bytes.NewReader(pdf))
		if err != nil {
			return fmt.Errorf("upload card pdf for %s: %w", student.StudentID, err)
		}
		if err := g.uploader.AllowPublicRead(ctx, pdfFile.ID); err != nil {
			g.logger.Warn("could not share card pdf", zap.String("file_id", pdfFile.ID), zap.Error(err))
		}
		card.PDFDriveID = pdfFile.ID
		card.PDFLink = pdfFile.WebLink
	}

	return nil
}
