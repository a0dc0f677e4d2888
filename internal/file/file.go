package file

import (
	"strings"

	"github.com/frahmantamala/business-management/internal"
	fileDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/file"
)

const Root = "/dashboard/files"

var (
	Filterable = []string{"table_name", "ref_id", "type", "uploaded_by"}
	Updatable  = []string{"name", "description", "type"}

	Types = []string{
		fileDatamodel.TypeDocument,
		fileDatamodel.TypeImage,
		fileDatamodel.TypeAttachment,
		fileDatamodel.TypeOther,
	}
)

var ErrFileNotFound = internal.NewNotFoundError("file not found", internal.ErrCodeRecordNotFound)

func NewFile(owner Owner, uploader string, dto CreateFileDTO) *fileDatamodel.File {
	f := &fileDatamodel.File{
		OwnerTable:  string(owner.Kind),
		OwnerRef:    owner.ID,
		Name:        strings.TrimSpace(dto.Name),
		Description: dto.Description,
		Type:        dto.Type,
		URL:         strings.TrimSpace(dto.URL),
		UploadedBy:  strings.ToLower(uploader),
	}
	if f.Type == "" {
		f.Type = fileDatamodel.TypeOther
	}
	return f
}

// OwnerOf reads the owner back from a stored row.
func OwnerOf(f *fileDatamodel.File) Owner {
	return Owner{Kind: Kind(f.OwnerTable), ID: f.OwnerRef}
}
