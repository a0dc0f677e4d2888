package postgres

import (
	"context"

	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/auth"
	userDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

var _ auth.RepositoryAPI = (*AuthRepository)(nil)

func (r *AuthRepository) CreateIfMissing(ctx context.Context, u *userDatamodel.User) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(u)
	if res.Error != nil {
		return false, internal.TranslateDBError(res.Error, "user")
	}
	return res.RowsAffected == 1, nil
}

func (r *AuthRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, internal.TranslateDBError(err, "user")
	}
	return &u, nil
}

// AccessLevel backs the access-level middleware.
func (r *AuthRepository) AccessLevel(ctx context.Context, email string) (int, error) {
	var levels []int
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("email = ?", email).
		Pluck("access_level", &levels).Error
	if err != nil {
		return 0, internal.TranslateDBError(err, "user")
	}
	if len(levels) == 0 {
		return 0, internal.NewNotFoundError("user not found", internal.ErrCodeRecordNotFound)
	}
	return levels[0], nil
}
