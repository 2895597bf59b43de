package repository

import (
	"context"
	"errors"

	"github.com/DavidJaure/CRUDapiDB/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BiciusuarioRepository is the credential store and the owner of the profile
// aggregate (user + bicycles + registration records). Lookups that return an
// aggregate always load both owned collections.
type BiciusuarioRepository interface {
	Create(ctx context.Context, u *model.Biciusuario) error
	FindByUsername(ctx context.Context, username string) (*model.Biciusuario, error)
	FindByID(ctx context.Context, id uint) (*model.Biciusuario, error)
	List(ctx context.Context) ([]model.Biciusuario, error)
	// Guardar persists the user columns and upserts every owned child: rows
	// with ID 0 are inserted, the rest are updated. Children absent from the
	// aggregate are not touched.
	Guardar(ctx context.Context, u *model.Biciusuario) error
	// Delete removes the user and its owned collections. It reports false when
	// no user had that id.
	Delete(ctx context.Context, id uint) (bool, error)
	// Transaction runs fn against a repository bound to a single transaction.
	Transaction(ctx context.Context, fn func(repo BiciusuarioRepository) error) error
}

type biciusuarioRepo struct{ db *gorm.DB }

func NewBiciusuarioRepository(db *gorm.DB) BiciusuarioRepository { return &biciusuarioRepo{db: db} }

func (r *biciusuarioRepo) Create(ctx context.Context, u *model.Biciusuario) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(u).Error; err != nil {
			return err
		}
		// Children are inserted one by one: gorm's association upsert would
		// silently re-parent a serial that belongs to another user.
		for i := range u.Bicicletas {
			u.Bicicletas[i].BiciusuarioID = u.ID
			if err := tx.Create(&u.Bicicletas[i]).Error; err != nil {
				return err
			}
		}
		for i := range u.Registros {
			u.Registros[i].BiciusuarioID = u.ID
			if err := tx.Create(&u.Registros[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translate(err)
}

func (r *biciusuarioRepo) FindByUsername(ctx context.Context, username string) (*model.Biciusuario, error) {
	var u model.Biciusuario
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *biciusuarioRepo) FindByID(ctx context.Context, id uint) (*model.Biciusuario, error) {
	var u model.Biciusuario
	err := r.withCollections(ctx).First(&u, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *biciusuarioRepo) List(ctx context.Context) ([]model.Biciusuario, error) {
	var users []model.Biciusuario
	err := r.withCollections(ctx).Order("id ASC").Find(&users).Error
	return users, translate(err)
}

func (r *biciusuarioRepo) Guardar(ctx context.Context, u *model.Biciusuario) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(u).Error; err != nil {
		return translate(err)
	}
	for i := range u.Bicicletas {
		b := &u.Bicicletas[i]
		b.BiciusuarioID = u.ID
		if err := saveChild(db, b, b.ID); err != nil {
			return translate(err)
		}
	}
	for i := range u.Registros {
		reg := &u.Registros[i]
		reg.BiciusuarioID = u.ID
		if err := saveChild(db, reg, reg.ID); err != nil {
			return translate(err)
		}
	}
	return nil
}

func (r *biciusuarioRepo) Delete(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u model.Biciusuario
		if err := tx.Select("id").First(&u, id).Error; err != nil {
			return err
		}
		// Children go in the same transaction so dialects without FK
		// enforcement still leave no orphans; ON DELETE CASCADE covers the rest.
		res := tx.Select(clause.Associations).Delete(&u)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		err = translate(err)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return deleted, nil
}

func (r *biciusuarioRepo) Transaction(ctx context.Context, fn func(repo BiciusuarioRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&biciusuarioRepo{db: tx})
	})
}

func (r *biciusuarioRepo) withCollections(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Bicicletas", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Registros", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

// saveChild inserts rows without an id and updates the rest. Plain Create is
// used for inserts so a unique violation surfaces instead of being upserted.
func saveChild(db *gorm.DB, row interface{}, id uint) error {
	if id == 0 {
		return db.Create(row).Error
	}
	return db.Save(row).Error
}
