package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SequenceRepository hands out monotonically increasing values per
// (company, prefix, year). Next is meant to run inside the same transaction
// as the document insert: the UPDATE takes a row lock, so two concurrent
// allocations serialize instead of both reading the same value.
type SequenceRepository interface {
	Next(ctx context.Context, companyID uuid.UUID, prefix string, year int) (int, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Next(ctx context.Context, companyID uuid.UUID, prefix string, year int) (int, error) {
	db := GetDB(ctx, r.db)

	increment := func() (int64, error) {
		res := db.Model(&model.NumberSequence{}).
			Where("company_id = ? AND prefix = ? AND year = ?", companyID, prefix, year).
			UpdateColumn("last_value", gorm.Expr("last_value + 1"))
		return res.RowsAffected, res.Error
	}

	rows, err := increment()
	if err != nil {
		return 0, err
	}

	if rows == 0 {
		// First allocation for this scope. The unique index makes a racing
		// create fail, in which case the row exists now and the increment
		// applies.
		seq := model.NumberSequence{
			CompanyID: companyID,
			Prefix:    prefix,
			Year:      year,
			LastValue: 1,
		}
		if createErr := db.Create(&seq).Error; createErr == nil {
			return 1, nil
		}
		if rows, err = increment(); err != nil {
			return 0, err
		}
		if rows == 0 {
			return 0, gorm.ErrRecordNotFound
		}
	}

	var seq model.NumberSequence
	err = db.Where("company_id = ? AND prefix = ? AND year = ?", companyID, prefix, year).
		First(&seq).Error
	if err != nil {
		return 0, err
	}
	return seq.LastValue, nil
}
