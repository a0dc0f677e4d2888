package file

import "time"

const (
	TypeDocument   = "Document"
	TypeImage      = "Image"
	TypeAttachment = "Attachment"
	TypeOther      = "Other"
)

// File rows keep the (table_name, ref_id) pair of the owning record.
type File struct {
	ID          int64     `gorm:"column:id;primaryKey" json:"id"`
	OwnerTable  string    `gorm:"column:table_name;not null;index:idx_files_owner" json:"table_name"`
	OwnerRef    string    `gorm:"column:ref_id;not null;index:idx_files_owner" json:"ref_id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description,omitempty"`
	Type        string    `gorm:"column:type;not null;default:Other" json:"type"`
	URL         string    `gorm:"column:url;not null" json:"url"`
	UploadedBy  string    `gorm:"column:uploaded_by" json:"uploaded_by,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (File) TableName() string {
	return "files"
}
