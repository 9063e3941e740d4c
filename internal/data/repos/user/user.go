package user

import (
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/pearls-backend/internal/domain"
	"github.com/yungbote/pearls-backend/internal/pkg/dbctx"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

type UserRepo interface {
	GetByID(dbc dbctx.Context, id uint) (*types.User, error)
	GetByOpenID(dbc dbctx.Context, openID string) (*types.User, error)
	Upsert(dbc dbctx.Context, u *types.User) (*types.User, error)
	SetRole(dbc dbctx.Context, openID, role string) (bool, error)
	TouchSignedIn(dbc dbctx.Context, id uint, at time.Time) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (ur *userRepo) GetByID(dbc dbctx.Context, id uint) (*types.User, error) {
	if id == 0 {
		return nil, nil
	}
	var u types.User
	err := ur.tx(dbc).Where("id = ?", id).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *userRepo) GetByOpenID(dbc dbctx.Context, openID string) (*types.User, error) {
	if openID == "" {
		return nil, nil
	}
	var u types.User
	err := ur.tx(dbc).Where("open_id = ?", openID).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Upsert creates the user or refreshes its profile fields. An existing role is
// only ever raised to admin here, never lowered.
func (ur *userRepo) Upsert(dbc dbctx.Context, u *types.User) (*types.User, error) {
	if u.LastSignedIn.IsZero() {
		u.LastSignedIn = time.Now().UTC()
	}
	if u.Role == "" {
		u.Role = types.RoleUser
	}
	var out *types.User
	err := ur.tx(dbc).Transaction(func(tx *gorm.DB) error {
		var existing types.User
		err := tx.Where("open_id = ?", u.OpenID).Take(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Create(u).Error; err != nil {
				return err
			}
			out = u
			return nil
		}
		if err != nil {
			return err
		}
		updates := map[string]interface{}{"last_signed_in": u.LastSignedIn}
		if u.Name != "" {
			updates["name"] = u.Name
		}
		if u.Email != "" {
			updates["email"] = u.Email
		}
		if u.LoginMethod != "" {
			updates["login_method"] = u.LoginMethod
		}
		if u.Role == types.RoleAdmin && existing.Role != types.RoleAdmin {
			updates["role"] = types.RoleAdmin
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return err
		}
		out = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ur *userRepo) SetRole(dbc dbctx.Context, openID, role string) (bool, error) {
	res := ur.tx(dbc).Model(&types.User{}).
		Where("open_id = ?", openID).
		Update("role", role)
	return res.RowsAffected > 0, res.Error
}

func (ur *userRepo) TouchSignedIn(dbc dbctx.Context, id uint, at time.Time) error {
	return ur.tx(dbc).Model(&types.User{}).
		Where("id = ?", id).
		Update("last_signed_in", at).Error
}
