package repository

import (
	"context"
	"time"

	"odoosphere/internal/model"

	"gorm.io/gorm"
)

type OdooInstanceRepository interface {
	Create(ctx context.Context, instance *model.OdooInstance) error
	Update(ctx context.Context, instance *model.OdooInstance) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*model.OdooInstance, error)
	List(ctx context.Context) ([]*model.OdooInstance, error)
	ListWithPagination(ctx context.Context, page, pageSize int, companyID *int64, env, status string) ([]*model.OdooInstance, int64, error)
	UpdateHealth(ctx context.Context, id int64, status string, checkedAt time.Time) error
}

func NewOdooInstanceRepository(
	repository *Repository,
) OdooInstanceRepository {
	return &odooInstanceRepository{
		Repository: repository,
	}
}

type odooInstanceRepository struct {
	*Repository
}

func (r *odooInstanceRepository) Create(ctx context.Context, instance *model.OdooInstance) error {
	return r.DB(ctx).Create(instance).Error
}

func (r *odooInstanceRepository) Update(ctx context.Context, instance *model.OdooInstance) error {
	return r.DB(ctx).Save(instance).Error
}

func (r *odooInstanceRepository) Delete(ctx context.Context, id int64) error {
	return r.DB(ctx).Delete(&model.OdooInstance{}, id).Error
}

func (r *odooInstanceRepository) GetByID(ctx context.Context, id int64) (*model.OdooInstance, error) {
	var instance model.OdooInstance
	err := r.DB(ctx).Where("id = ?", id).First(&instance).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

func (r *odooInstanceRepository) List(ctx context.Context) ([]*model.OdooInstance, error) {
	var instances []*model.OdooInstance
	err := r.DB(ctx).Order("id ASC").Find(&instances).Error
	if err != nil {
		return nil, err
	}
	return instances, nil
}

func (r *odooInstanceRepository) ListWithPagination(ctx context.Context, page, pageSize int, companyID *int64, env, status string) ([]*model.OdooInstance, int64, error) {
	var instances []*model.OdooInstance
	var total int64

	query := r.DB(ctx).Model(&model.OdooInstance{})

	// 条件过滤
	if companyID != nil && *companyID > 0 {
		query = query.Where("company_id = ?", *companyID)
	}
	if env != "" {
		query = query.Where("env = ?", env)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := query.Order("gmt_create DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&instances).Error; err != nil {
		return nil, 0, err
	}

	return instances, total, nil
}

func (r *odooInstanceRepository) UpdateHealth(ctx context.Context, id int64, status string, checkedAt time.Time) error {
	return r.DB(ctx).Model(&model.OdooInstance{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":            status,
			"last_health_check": checkedAt,
		}).Error
}
