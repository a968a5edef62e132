package repository

import (
	"context"

	"odoosphere/internal/model"

	"gorm.io/gorm"
)

type BackupRepository interface {
	Create(ctx context.Context, backup *model.Backup) error
	Update(ctx context.Context, backup *model.Backup) error
	GetByID(ctx context.Context, id int64) (*model.Backup, error)
	ListWithPagination(ctx context.Context, page, pageSize int, instanceID *int64, status string) ([]*model.Backup, int64, error)
	UpdateStatus(ctx context.Context, id int64, status string, sizeBytes int64, errorMsg string) error
}

func NewBackupRepository(
	repository *Repository,
) BackupRepository {
	return &backupRepository{
		Repository: repository,
	}
}

type backupRepository struct {
	*Repository
}

func (r *backupRepository) Create(ctx context.Context, backup *model.Backup) error {
	return r.DB(ctx).Create(backup).Error
}

func (r *backupRepository) Update(ctx context.Context, backup *model.Backup) error {
	return r.DB(ctx).Save(backup).Error
}

func (r *backupRepository) GetByID(ctx context.Context, id int64) (*model.Backup, error) {
	var backup model.Backup
	err := r.DB(ctx).Where("id = ?", id).First(&backup).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &backup, nil
}

func (r *backupRepository) ListWithPagination(ctx context.Context, page, pageSize int, instanceID *int64, status string) ([]*model.Backup, int64, error) {
	var backups []*model.Backup
	var total int64

	query := r.DB(ctx).Model(&model.Backup{})

	if instanceID != nil && *instanceID > 0 {
		query = query.Where("instance_id = ?", *instanceID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("gmt_create DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&backups).Error; err != nil {
		return nil, 0, err
	}

	return backups, total, nil
}

func (r *backupRepository) UpdateStatus(ctx context.Context, id int64, status string, sizeBytes int64, errorMsg string) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if sizeBytes > 0 {
		updates["size_bytes"] = sizeBytes
	}
	if errorMsg != "" {
		updates["error_message"] = errorMsg
	}
	return r.DB(ctx).Model(&model.Backup{}).
		Where("id = ?", id).
		Updates(updates).Error
}
