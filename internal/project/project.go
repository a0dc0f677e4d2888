package project

import (
	"net/url"
	"strings"

	"github.com/frahmantamala/business-management/internal"
	projectDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/project"
)

const Root = "/dashboard/projects"

var (
	Filterable     = []string{"status"}
	ItemFilterable = []string{"unit"}

	Updatable     = []string{"name", "location", "status"}
	ItemUpdatable = []string{"wbs", "name", "unit", "quantity"}

	Statuses = []string{
		projectDatamodel.StatusPlanning,
		projectDatamodel.StatusActive,
		projectDatamodel.StatusOnHold,
		projectDatamodel.StatusCompleted,
	}
)

var (
	ErrProjectNotFound = internal.NewNotFoundError("project not found", internal.ErrCodeRecordNotFound)
	ErrItemNotFound    = internal.NewNotFoundError("project item not found", internal.ErrCodeRecordNotFound)
)

func Path(id string) string {
	return Root + "/" + url.PathEscape(id)
}

func ItemsPath(id string) string {
	return Path(id) + "/items"
}

func NewProject(dto CreateProjectDTO) *projectDatamodel.Project {
	p := &projectDatamodel.Project{
		ID:       strings.TrimSpace(dto.ID),
		Name:     strings.TrimSpace(dto.Name),
		Location: dto.Location,
		Status:   dto.Status,
	}
	if p.Status == "" {
		p.Status = projectDatamodel.StatusPlanning
	}
	return p
}

func NewItem(projectID string, dto CreateItemDTO) *projectDatamodel.Item {
	return &projectDatamodel.Item{
		ProjectID: projectID,
		WBS:       strings.TrimSpace(dto.WBS),
		Name:      strings.TrimSpace(dto.Name),
		Unit:      dto.Unit,
		Quantity:  dto.Quantity,
	}
}
