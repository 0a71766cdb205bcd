package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jucampus/registrar-api/pkg/config"
)

const folderMimeType = "application/vnd.google-apps.folder"

// GoogleDrive implements Client on top of the Drive v3 API using a
// service account.
type GoogleDrive struct {
	svc      *gdrive.Service
	parentID string
}

// NewGoogleDrive authenticates with the configured service-account file.
func NewGoogleDrive(ctx context.Context, cfg config.DriveConfig) (*GoogleDrive, error) {
	svc, err := gdrive.NewService(ctx,
		option.WithCredentialsFile(cfg.ServiceAccountFile),
		option.WithScopes(gdrive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &GoogleDrive{svc: svc, parentID: cfg.ParentFolderID}, nil
}

// RootFolderID returns the configured parent folder for all uploads.
func (d *GoogleDrive) RootFolderID() string {
	return d.parentID
}

func (d *GoogleDrive) EnsureFolder(ctx context.Context, parentID, name string) (*File, error) {
	if parentID == "" {
		parentID = d.parentID
	}

	existing, err := d.findByName(ctx, parentID, name, folderMimeType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	meta := &gdrive.File{
		Name:     name,
		MimeType: folderMimeType,
	}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}

	created, err := d.svc.Files.Create(meta).
		Context(ctx).
		Fields("id", "name", "mimeType", "webViewLink", "webContentLink", "size").
		SupportsAllDrives(true).
		Do()
	if err != nil {
		return nil, fmt.Errorf("create folder %q: %w", name, err)
	}
	return fromGoogle(created), nil
}

func (d *GoogleDrive) Upsert(ctx context.Context, folderID, name, mimeType string, content io.Reader) (*File, error) {
	existing, err := d.findByName(ctx, folderID, name, "")
	if err != nil {
		return nil, err
	}

	if existing != nil {
		updated, err := d.svc.Files.Update(existing.ID, &gdrive.File{}).
			Context(ctx).
			Media(content, googleapi.ContentType(mimeType)).
			Fields("id", "name", "mimeType", "webViewLink", "webContentLink", "size").
			SupportsAllDrives(true).
			Do()
		if err != nil {
			return nil, fmt.Errorf("update %q: %w", name, err)
		}
		return fromGoogle(updated), nil
	}

	meta := &gdrive.File{Name: name}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}

	created, err := d.svc.Files.Create(meta).
		Context(ctx).
		Media(content, googleapi.ContentType(mimeType)).
		Fields("id", "name", "mimeType", "webViewLink", "webContentLink", "size").
		SupportsAllDrives(true).
		Do()
	if err != nil {
		return nil, fmt.Errorf("upload %q: %w", name, err)
	}
	return fromGoogle(created), nil
}

func (d *GoogleDrive) AllowPublicRead(ctx context.Context, fileID string) error {
	_, err := d.svc.Permissions.Create(fileID, &gdrive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).SupportsAllDrives(true).Do()
	if err != nil {
		return fmt.Errorf("share file %s: %w", fileID, err)
	}
	return nil
}

func (d *GoogleDrive) List(ctx context.Context, folderID string) ([]*File, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(folderID))

	var files []*File
	pageToken := ""
	for {
		call := d.svc.Files.List().
			Context(ctx).
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType, webViewLink, webContentLink, size)").
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			PageSize(100)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list folder %s: %w", folderID, err)
		}
		for _, f := range res.Files {
			files = append(files, fromGoogle(f))
		}
		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}

	return files, nil
}

func (d *GoogleDrive) findByName(ctx context.Context, parentID, name, mimeType string) (*File, error) {
	query := fmt.Sprintf("name = '%s' and trashed = false", escapeQuery(name))
	if parentID != "" {
		query += fmt.Sprintf(" and '%s' in parents", escapeQuery(parentID))
	}
	if mimeType != "" {
		query += fmt.Sprintf(" and mimeType = '%s'", mimeType)
	}

	res, err := d.svc.Files.List().
		Context(ctx).
		Q(query).
		Fields("files(id, name, mimeType, webViewLink, webContentLink, size)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		PageSize(1).
		Do()
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", name, err)
	}
	if len(res.Files) == 0 {
		return nil, nil
	}
	return fromGoogle(res.Files[0]), nil
}

func fromGoogle(f *gdrive.File) *File {
	return &File{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		WebLink:      f.WebViewLink,
		DownloadLink: f.WebContentLink,
		Size:         f.Size,
	}
}

// escapeQuery escapes single quotes and backslashes for Drive query strings.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
