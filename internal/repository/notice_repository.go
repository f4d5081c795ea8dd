package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/refresh-booking/internal/model"
)

type NoticeRepository interface {
	// Create сохраняет уведомление; повтор для той же записи игнорируется.
	Create(ctx context.Context, n *model.Notice) error
	// Delete удаляет уведомление; возвращает число удалённых строк.
	Delete(ctx context.Context, id string) (int64, error)
	// List - все непрочитанные уведомления в порядке создания.
	List(ctx context.Context) ([]model.Notice, error)
}

type GormNoticeRepository struct {
	db *gorm.DB
}

func NewGormNoticeRepository(db *gorm.DB) *GormNoticeRepository {
	return &GormNoticeRepository{db: db}
}

func (r *GormNoticeRepository) Create(ctx context.Context, n *model.Notice) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(n).Error
}

func (r *GormNoticeRepository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Notice{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *GormNoticeRepository) List(ctx context.Context) ([]model.Notice, error) {
	var notices []model.Notice
	// внутри одного каскада created_at совпадает, порядок задаёт слот
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("date ASC").
		Order("time ASC").
		Order("id ASC").
		Find(&notices).Error
	if err != nil {
		return nil, err
	}
	return notices, nil
}
