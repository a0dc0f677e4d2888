package postgres

import (
	"context"
	"time"

	"github.com/frahmantamala/business-management/internal"
	projectDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/project"
	userDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/user"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/user"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db   *gorm.DB
	spec query.Spec
}

func NewUserRepository(db *gorm.DB, batchSize int) *UserRepository {
	return &UserRepository{
		db: db,
		spec: query.Spec{
			OrderBy:       "full_name",
			Key:           "email",
			SearchColumns: []string{"full_name", "email"},
			Filterable:    user.Filterable,
			ArrayColumns:  []string{"project_ids"},
			BatchSize:     batchSize,
		},
	}
}

var _ user.RepositoryAPI = (*UserRepository)(nil)

func (r *UserRepository) List(ctx context.Context, f query.Filter, p query.Page) (query.Result[userDatamodel.User], error) {
	res, err := query.List[userDatamodel.User](ctx, r.db, r.spec, f, p)
	if err != nil {
		return res, internal.TranslateDBError(err, "user")
	}
	return res, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, internal.TranslateDBError(err, "user")
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return internal.TranslateDBError(err, "user")
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, email string, fields map[string]any) (*userDatamodel.User, error) {
	fields["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("email = ?", email).Updates(fields)
	if res.Error != nil {
		return nil, internal.TranslateDBError(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return nil, user.ErrUserNotFound
	}
	return r.GetByEmail(ctx, email)
}

func (r *UserRepository) Delete(ctx context.Context, email string) error {
	res := r.db.WithContext(ctx).Where("email = ?", email).Delete(&userDatamodel.User{})
	if res.Error != nil {
		return internal.TranslateDBError(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// AddProject appends projectID to the user's project list unless present.
// The project must exist.
func (r *UserRepository) AddProject(ctx context.Context, email, projectID string) (*userDatamodel.User, error) {
	return r.editProjects(ctx, email, func(tx *gorm.DB, u *userDatamodel.User) (pq.StringArray, error) {
		var n int64
		if err := tx.Model(&projectDatamodel.Project{}).Where("id = ?", projectID).Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, internal.NewValidationFieldError("project_id", "project does not exist", internal.ErrCodeInvalidReference)
		}
		if u.InProject(projectID) {
			return nil, nil
		}
		return append(u.ProjectIDs, projectID), nil
	})
}

func (r *UserRepository) RemoveProject(ctx context.Context, email, projectID string) (*userDatamodel.User, error) {
	return r.editProjects(ctx, email, func(tx *gorm.DB, u *userDatamodel.User) (pq.StringArray, error) {
		if !u.InProject(projectID) {
			return nil, nil
		}
		out := make(pq.StringArray, 0, len(u.ProjectIDs))
		for _, id := range u.ProjectIDs {
			if id != projectID {
				out = append(out, id)
			}
		}
		return out, nil
	})
}

// editProjects reads the row (locked on Postgres), lets edit compute the new
// list and writes it back. A nil list means nothing changes.
func (r *UserRepository) editProjects(ctx context.Context, email string, edit func(*gorm.DB, *userDatamodel.User) (pq.StringArray, error)) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.Where("email = ?", email).First(&u).Error; err != nil {
			return err
		}

		ids, err := edit(tx, &u)
		if err != nil || ids == nil {
			return err
		}
		u.ProjectIDs = ids
		u.UpdatedAt = time.Now()
		return tx.Model(&userDatamodel.User{}).Where("email = ?", email).Updates(map[string]any{
			"project_ids": ids,
			"updated_at":  u.UpdatedAt,
		}).Error
	})
	if err != nil {
		return nil, internal.TranslateDBError(err, "user")
	}
	return &u, nil
}
