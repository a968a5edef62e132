package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/model"
	"odoosphere/internal/repository"
	"odoosphere/pkg/log"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type BackupService interface {
	// CreateBackup 同步创建实例备份并落盘，返回备份记录
	CreateBackup(ctx context.Context, instanceID int64, backupType, creator string) (*model.Backup, error)
	GetBackup(ctx context.Context, id int64) (*model.Backup, error)
	ListBackups(ctx context.Context, req *v1.ListBackupRequest) (*v1.ListBackupResponseData, error)
	// RestoreBackup 把备份文件回灌到其所属实例
	RestoreBackup(ctx context.Context, backupID int64) error
	// RollbackDeployment 实例级回滚：恢复部署前备份并把部署标记为 rolled_back
	RollbackDeployment(ctx context.Context, deploymentID int64) error
}

func NewBackupService(
	service *Service,
	conf *viper.Viper,
	instanceRepo repository.OdooInstanceRepository,
	backupRepo repository.BackupRepository,
	deploymentRepo repository.DeploymentRepository,
	logRepo repository.DeploymentLogRepository,
	factory ConnectorFactory,
	logger *log.Logger,
) BackupService {
	return &backupService{
		backupDir:      conf.GetString("backup.dir"),
		instanceRepo:   instanceRepo,
		backupRepo:     backupRepo,
		deploymentRepo: deploymentRepo,
		logRepo:        logRepo,
		factory:        factory,
		Service:        service,
		logger:         logger,
	}
}

type backupService struct {
	backupDir      string
	instanceRepo   repository.OdooInstanceRepository
	backupRepo     repository.BackupRepository
	deploymentRepo repository.DeploymentRepository
	logRepo        repository.DeploymentLogRepository
	factory        ConnectorFactory
	*Service
	logger *log.Logger
}

func (s *backupService) CreateBackup(ctx context.Context, instanceID int64, backupType, creator string) (*model.Backup, error) {
	instance, err := s.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, v1.ErrInstanceNotFound
	}

	masterPwd, err := s.factory.MasterPassword(instance)
	if err != nil {
		return nil, err
	}
	if masterPwd == "" {
		return nil, v1.ErrBackupFailed
	}

	backupNo, err := s.sid.GenString()
	if err != nil {
		return nil, err
	}
	if backupType == "" {
		backupType = model.BackupTypeManual
	}
	backup := &model.Backup{
		BackupNo:   backupNo,
		InstanceID: instanceID,
		BackupType: backupType,
		Status:     model.BackupStatusCreating,
		Creator:    creator,
	}
	if err = s.backupRepo.Create(ctx, backup); err != nil {
		return nil, err
	}

	filePath, size, err := s.dump(ctx, instance, masterPwd, backupNo)
	if err != nil {
		s.logger.WithContext(ctx).Error("backup failed",
			zap.Error(err), zap.Int64("instance_id", instanceID), zap.String("backup_no", backupNo))
		if updateErr := s.backupRepo.UpdateStatus(ctx, backup.Id, model.BackupStatusFailed, 0, err.Error()); updateErr != nil {
			s.logger.WithContext(ctx).Error("failed to mark backup as failed", zap.Error(updateErr))
		}
		return nil, v1.ErrBackupFailed
	}

	backup.FilePath = filePath
	backup.SizeBytes = size
	backup.Status = model.BackupStatusCompleted
	if err = s.backupRepo.Update(ctx, backup); err != nil {
		return nil, err
	}
	s.logger.WithContext(ctx).Info("backup completed",
		zap.String("backup_no", backupNo), zap.Int64("size_bytes", size))
	return backup, nil
}

// dump 建立新连接，把数据库归档流式写入备份目录
func (s *backupService) dump(ctx context.Context, instance *model.OdooInstance, masterPwd, backupNo string) (string, int64, error) {
	conn, err := s.factory.Open(ctx, instance)
	if err != nil {
		return "", 0, err
	}
	defer conn.Close()

	if err = os.MkdirAll(s.backupDir, 0o750); err != nil {
		return "", 0, err
	}
	fileName := fmt.Sprintf("%s_%s_%s.zip", instance.Database, time.Now().Format("20060102150405"), backupNo)
	filePath := filepath.Join(s.backupDir, fileName)

	f, err := os.Create(filePath)
	if err != nil {
		return "", 0, err
	}
	size, err := conn.BackupDatabase(ctx, masterPwd, f)
	closeErr := f.Close()
	if err != nil {
		os.Remove(filePath)
		return "", 0, err
	}
	if closeErr != nil {
		os.Remove(filePath)
		return "", 0, closeErr
	}
	return filePath, size, nil
}

func (s *backupService) GetBackup(ctx context.Context, id int64) (*model.Backup, error) {
	backup, err := s.backupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if backup == nil {
		return nil, v1.ErrBackupNotFound
	}
	return backup, nil
}

func (s *backupService) ListBackups(ctx context.Context, req *v1.ListBackupRequest) (*v1.ListBackupResponseData, error) {
	backups, total, err := s.backupRepo.ListWithPagination(ctx, req.Page, req.PageSize, req.InstanceID, req.Status)
	if err != nil {
		return nil, err
	}
	list := make([]v1.BackupItem, 0, len(backups))
	for _, backup := range backups {
		list = append(list, v1.BackupItem{
			Id:           backup.Id,
			BackupNo:     backup.BackupNo,
			InstanceID:   backup.InstanceID,
			BackupType:   backup.BackupType,
			Status:       backup.Status,
			SizeBytes:    backup.SizeBytes,
			ErrorMessage: backup.ErrorMessage,
			CreateTime:   backup.CreateTime,
		})
	}
	return &v1.ListBackupResponseData{Total: total, List: list}, nil
}

func (s *backupService) RestoreBackup(ctx context.Context, backupID int64) error {
	backup, err := s.backupRepo.GetByID(ctx, backupID)
	if err != nil {
		return err
	}
	if backup == nil {
		return v1.ErrBackupNotFound
	}
	if backup.Status != model.BackupStatusCompleted {
		return v1.ErrRestoreFailed
	}

	instance, err := s.instanceRepo.GetByID(ctx, backup.InstanceID)
	if err != nil {
		return err
	}
	if instance == nil {
		return v1.ErrInstanceNotFound
	}
	masterPwd, err := s.factory.MasterPassword(instance)
	if err != nil {
		return err
	}

	f, err := os.Open(backup.FilePath)
	if err != nil {
		s.logger.WithContext(ctx).Error("backup file missing",
			zap.Error(err), zap.String("file_path", backup.FilePath))
		return v1.ErrRestoreFailed
	}
	defer f.Close()

	conn, err := s.factory.Open(ctx, instance)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err = conn.RestoreDatabase(ctx, masterPwd, f); err != nil {
		s.logger.WithContext(ctx).Error("restore failed",
			zap.Error(err), zap.Int64("backup_id", backupID), zap.Int64("instance_id", backup.InstanceID))
		return v1.ErrRestoreFailed
	}
	s.logger.WithContext(ctx).Info("backup restored",
		zap.Int64("backup_id", backupID), zap.Int64("instance_id", backup.InstanceID))
	return nil
}

func (s *backupService) RollbackDeployment(ctx context.Context, deploymentID int64) error {
	deployment, err := s.deploymentRepo.GetByID(ctx, deploymentID)
	if err != nil {
		return err
	}
	if deployment == nil {
		return v1.ErrDeploymentNotFound
	}
	if deployment.Status != model.DeploymentStatusSuccess {
		return v1.ErrRollbackUnavailable
	}
	if deployment.CanRollback == 0 || deployment.BackupID == nil {
		return v1.ErrRollbackUnavailable
	}

	if err = s.RestoreBackup(ctx, *deployment.BackupID); err != nil {
		return err
	}

	// 状态守卫在 SQL 层：只有 success 会被翻转
	if err = s.deploymentRepo.MarkRolledBack(ctx, deploymentID, time.Now()); err != nil {
		return err
	}
	if err = s.logRepo.Append(ctx, deploymentID, model.LogLevelInfo,
		fmt.Sprintf("deployment rolled back from backup %d", *deployment.BackupID), ""); err != nil {
		s.logger.WithContext(ctx).Error("failed to append rollback log", zap.Error(err))
	}
	return nil
}
