package auth

import userDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/user"

type MeResponse struct {
	ID   string              `json:"id"`
	User *userDatamodel.User `json:"user"`
}
