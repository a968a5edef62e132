package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/model"
	"odoosphere/internal/repository"
	"odoosphere/pkg/log"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type DeploymentService interface {
	// Deploy 校验入口条件后入队，立即返回部署句柄
	Deploy(ctx context.Context, req *v1.CreateDeploymentRequest, creator string) (*v1.CreateDeploymentResponseData, error)
	// RedeployVersion 配置级回滚：把历史版本快照作为冻结内容重新部署
	RedeployVersion(ctx context.Context, configurationID int64, req *v1.RedeployVersionRequest, creator string) (*v1.CreateDeploymentResponseData, error)
	GetDeployment(ctx context.Context, id int64) (*v1.DeploymentDetail, error)
	ListDeployments(ctx context.Context, req *v1.ListDeploymentRequest) (*v1.ListDeploymentResponseData, error)
	GetLogs(ctx context.Context, deploymentID int64, req *v1.ListDeploymentLogsRequest) (*v1.ListDeploymentLogsResponseData, error)
}

// deploymentTask 入队载荷；选项不落库，随任务传递
type deploymentTask struct {
	deploymentID int64
	options      v1.DeploymentOptions
	creator      string
}

func NewDeploymentService(
	service *Service,
	conf *viper.Viper,
	configRepo repository.ConfigurationRepository,
	instanceRepo repository.OdooInstanceRepository,
	deploymentRepo repository.DeploymentRepository,
	logRepo repository.DeploymentLogRepository,
	versionRepo repository.ConfigurationVersionRepository,
	lockRepo repository.InstanceLockRepository,
	validationService ValidationService,
	backupService BackupService,
	versionService VersionService,
	notificationService NotificationService,
	factory ConnectorFactory,
	logger *log.Logger,
) DeploymentService {
	timeout := conf.GetDuration("deploy.timeout")
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	workers := conf.GetInt("deploy.workers")
	if workers <= 0 {
		workers = 2
	}

	s := &deploymentService{
		Service:             service,
		timeout:             timeout,
		configRepo:          configRepo,
		instanceRepo:        instanceRepo,
		deploymentRepo:      deploymentRepo,
		logRepo:             logRepo,
		versionRepo:         versionRepo,
		lockRepo:            lockRepo,
		validationService:   validationService,
		backupService:       backupService,
		versionService:      versionService,
		notificationService: notificationService,
		factory:             factory,
		logger:              logger,
		taskQueue:           make(chan deploymentTask, 100), // 缓冲队列，最多100个任务
	}

	// 启动任务队列处理器
	for i := 0; i < workers; i++ {
		go s.processTaskQueue()
	}

	return s
}

type deploymentService struct {
	*Service
	timeout             time.Duration
	configRepo          repository.ConfigurationRepository
	instanceRepo        repository.OdooInstanceRepository
	deploymentRepo      repository.DeploymentRepository
	logRepo             repository.DeploymentLogRepository
	versionRepo         repository.ConfigurationVersionRepository
	lockRepo            repository.InstanceLockRepository
	validationService   ValidationService
	backupService       BackupService
	versionService      VersionService
	notificationService NotificationService
	factory             ConnectorFactory
	logger              *log.Logger

	// 部署任务队列
	taskQueue chan deploymentTask
	// 实例级别的锁：确保同一实例的部署串行执行
	instanceLocks sync.Map // map[int64]*sync.Mutex
}

func (s *deploymentService) processTaskQueue() {
	for task := range s.taskQueue {
		s.executeDeployment(task)
	}
}

func (s *deploymentService) Deploy(ctx context.Context, req *v1.CreateDeploymentRequest, creator string) (*v1.CreateDeploymentResponseData, error) {
	// 1. 配置必须存在且处于可部署状态（Force 可越过状态门禁）
	configuration, err := s.configRepo.GetByID(ctx, req.ConfigurationID)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get configuration", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	if configuration == nil {
		return nil, v1.ErrConfigurationNotFound
	}
	if !req.Options.Force &&
		configuration.Status != model.ConfigStatusApproved &&
		configuration.Status != model.ConfigStatusDeployed {
		return nil, v1.ErrInvalidStatusChange
	}

	// 2. 目标实例必须存在且启用
	instance, err := s.instanceRepo.GetByID(ctx, req.InstanceID)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get instance", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	if instance == nil {
		return nil, v1.ErrInstanceNotFound
	}
	if instance.IsEnabled == 0 {
		return nil, v1.ErrInstanceDisabled
	}

	// 3. 校验门禁：任何 error 级发现即拒绝入队
	if !req.Options.SkipValidation {
		validation, err := s.validationService.Validate(ctx, configuration, req.InstanceID)
		if err != nil {
			return nil, err
		}
		if !validation.IsValid {
			s.logger.WithContext(ctx).Warn("validation failed",
				zap.Int64("configuration_id", req.ConfigurationID),
				zap.Int("error_count", len(validation.Errors)))
			return s.failValidation(ctx, configuration, req.InstanceID, validation, creator)
		}
	}

	// 4. 冻结内容并入队
	return s.enqueue(ctx, configuration, req.InstanceID, configuration.Content, req.Options, creator)
}

func (s *deploymentService) RedeployVersion(ctx context.Context, configurationID int64, req *v1.RedeployVersionRequest, creator string) (*v1.CreateDeploymentResponseData, error) {
	configuration, err := s.configRepo.GetByID(ctx, configurationID)
	if err != nil {
		return nil, v1.ErrInternalServerError
	}
	if configuration == nil {
		return nil, v1.ErrConfigurationNotFound
	}

	// 版本缺省时取当前版本之前最近的一个
	var version *model.ConfigurationVersion
	if req.VersionNumber != nil {
		version, err = s.versionRepo.GetByNumber(ctx, configurationID, *req.VersionNumber)
		if err != nil {
			return nil, err
		}
		if version == nil {
			return nil, v1.ErrVersionNotFound
		}
	} else {
		version, err = s.versionRepo.GetLatestBefore(ctx, configurationID, configuration.CurrentVersion)
		if err != nil {
			return nil, err
		}
		if version == nil {
			return nil, v1.ErrNoPreviousVersion
		}
	}

	instance, err := s.instanceRepo.GetByID(ctx, req.InstanceID)
	if err != nil {
		return nil, v1.ErrInternalServerError
	}
	if instance == nil {
		return nil, v1.ErrInstanceNotFound
	}
	if instance.IsEnabled == 0 {
		return nil, v1.ErrInstanceDisabled
	}

	// 历史快照部署成功过，跳过校验门禁但保留备份
	return s.enqueue(ctx, configuration, req.InstanceID, version.Content,
		v1.DeploymentOptions{SkipValidation: true}, creator)
}

// failValidation 校验硬错误直接落一条终态 failed 记录（进度 0），不触碰远端
func (s *deploymentService) failValidation(ctx context.Context, configuration *model.Configuration, instanceID int64, validation *v1.ValidationResultData, creator string) (*v1.CreateDeploymentResponseData, error) {
	deploymentNo, err := s.sid.GenString()
	if err != nil {
		return nil, err
	}
	findings, marshalErr := json.Marshal(validation)
	if marshalErr != nil {
		s.logger.WithContext(ctx).Error("failed to marshal validation findings", zap.Error(marshalErr))
	}
	completedAt := time.Now()
	deployment := &model.Deployment{
		DeploymentNo:    deploymentNo,
		ConfigurationID: configuration.Id,
		InstanceID:      instanceID,
		ConfigType:      configuration.ConfigType,
		Status:          model.DeploymentStatusFailed,
		Progress:        0,
		FrozenContent:   configuration.Content,
		Result:          string(findings),
		ErrorMessage:    v1.ErrValidationFailed.Error(),
		CompletedAt:     &completedAt,
		Creator:         creator,
	}
	if err = s.deploymentRepo.Create(ctx, deployment); err != nil {
		s.logger.WithContext(ctx).Error("failed to create deployment", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	if logErr := s.logRepo.Append(ctx, deployment.Id, model.LogLevelError, "validation failed", string(findings)); logErr != nil {
		s.logger.WithContext(ctx).Error("failed to append deployment log", zap.Error(logErr))
	}
	return &v1.CreateDeploymentResponseData{
		DeploymentID: deployment.Id,
		DeploymentNo: deployment.DeploymentNo,
		Status:       deployment.Status,
		Progress:     0,
	}, nil
}

func (s *deploymentService) enqueue(ctx context.Context, configuration *model.Configuration, instanceID int64, frozenContent string, options v1.DeploymentOptions, creator string) (*v1.CreateDeploymentResponseData, error) {
	deploymentNo, err := s.sid.GenString()
	if err != nil {
		return nil, err
	}
	deployment := &model.Deployment{
		DeploymentNo:    deploymentNo,
		ConfigurationID: configuration.Id,
		InstanceID:      instanceID,
		ConfigType:      configuration.ConfigType,
		Status:          model.DeploymentStatusPending,
		FrozenContent:   frozenContent,
		Creator:         creator,
	}
	if err = s.deploymentRepo.Create(ctx, deployment); err != nil {
		s.logger.WithContext(ctx).Error("failed to create deployment", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}

	select {
	case s.taskQueue <- deploymentTask{deploymentID: deployment.Id, options: options, creator: creator}:
	default:
		// 队列饱和：标记终态失败而不是悄悄丢弃
		msg := "deployment queue is full"
		_ = s.deploymentRepo.UpdateStatus(ctx, deployment.Id, repository.DeploymentStatusUpdate{
			ErrorMessage: &msg,
		})
		if err = s.deploymentRepo.MarkCompleted(ctx, deployment.Id, model.DeploymentStatusFailed, time.Now(), 0); err != nil {
			s.logger.WithContext(ctx).Error("failed to mark deployment failed", zap.Error(err))
		}
		return nil, v1.ErrInstanceBusy
	}

	return &v1.CreateDeploymentResponseData{
		DeploymentID: deployment.Id,
		DeploymentNo: deployment.DeploymentNo,
		Status:       deployment.Status,
		Progress:     0,
	}, nil
}

// executeDeployment 队列工作协程入口；超时由派生 context 控制
func (s *deploymentService) executeDeployment(task deploymentTask) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	deployment, err := s.deploymentRepo.GetByID(ctx, task.deploymentID)
	if err != nil || deployment == nil {
		s.logger.Error("failed to load queued deployment", zap.Error(err), zap.Int64("deployment_id", task.deploymentID))
		return
	}
	if deployment.Status != model.DeploymentStatusPending {
		return
	}

	// 进程内锁 + Redis 锁双重守卫同一实例的并发部署
	mutexIface, _ := s.instanceLocks.LoadOrStore(deployment.InstanceID, &sync.Mutex{})
	mutex := mutexIface.(*sync.Mutex)
	mutex.Lock()
	defer mutex.Unlock()

	acquired, err := s.lockRepo.TryLock(ctx, deployment.InstanceID, deployment.DeploymentNo, s.timeout+time.Minute)
	if err != nil {
		s.logger.Error("failed to acquire instance lock", zap.Error(err), zap.Int64("instance_id", deployment.InstanceID))
	}
	if err == nil && !acquired {
		s.failDeployment(ctx, deployment.Id, "another deployment holds the instance lock", "")
		return
	}
	if acquired {
		defer func() {
			if unlockErr := s.lockRepo.Unlock(context.Background(), deployment.InstanceID, deployment.DeploymentNo); unlockErr != nil {
				s.logger.Error("failed to release instance lock", zap.Error(unlockErr))
			}
		}()
	}

	s.runPipeline(ctx, deployment, task)
}

func (s *deploymentService) runPipeline(ctx context.Context, deployment *model.Deployment, task deploymentTask) {
	tracker := newProgressTracker(deployment.Id, s.deploymentRepo, s.logRepo, s.logger)
	startedAt := time.Now()

	instance, err := s.instanceRepo.GetByID(ctx, deployment.InstanceID)
	if err != nil || instance == nil {
		s.failDeployment(ctx, deployment.Id, "instance disappeared before execution", "")
		return
	}
	configuration, err := s.configRepo.GetByID(ctx, deployment.ConfigurationID)
	if err != nil || configuration == nil {
		s.failDeployment(ctx, deployment.Id, "configuration disappeared before execution", "")
		return
	}

	// 1. 部署前备份：先于任何远端调用，失败即终止（Force 可带伤继续）
	if !task.options.SkipBackup {
		tracker.Step(ctx, 5, "creating pre-deployment backup")
		backup, backupErr := s.backupService.CreateBackup(ctx, deployment.InstanceID, model.BackupTypePreDeployment, task.creator)
		switch {
		case backupErr != nil && !task.options.Force:
			s.finishFailed(ctx, deployment, tracker, startedAt, v1.ErrBackupFailed.Error(), backupErr.Error())
			return
		case backupErr != nil:
			tracker.Warning(ctx, "pre-deployment backup failed, continuing because force is set", backupErr.Error())
		default:
			canRollback := int8(1)
			if err = s.deploymentRepo.UpdateStatus(ctx, deployment.Id, repository.DeploymentStatusUpdate{
				BackupID:    &backup.Id,
				CanRollback: &canRollback,
			}); err != nil {
				s.logger.Error("failed to attach backup to deployment", zap.Error(err))
			}
			tracker.Infof(ctx, "backup %s created (%d bytes)", backup.BackupNo, backup.SizeBytes)
		}
	} else {
		tracker.Warning(ctx, "pre-deployment backup skipped by request", "")
	}

	if err = s.deploymentRepo.MarkStarted(ctx, deployment.Id, startedAt); err != nil {
		s.logger.Error("failed to mark deployment started", zap.Error(err), zap.Int64("deployment_id", deployment.Id))
		return
	}

	// 2. 连接并认证
	tracker.Step(ctx, 20, fmt.Sprintf("authenticating against %s", instance.InstanceName))
	conn, err := s.factory.Open(ctx, instance)
	if err != nil {
		s.finishFailed(ctx, deployment, tracker, startedAt, fmt.Sprintf("open connection: %v", err), err.Error())
		return
	}
	defer conn.Close()
	if err = conn.Authenticate(ctx); err != nil {
		s.finishFailed(ctx, deployment, tracker, startedAt, v1.ErrAuthenticationFailed.Error(), err.Error())
		return
	}

	// 3. 执行冻结内容
	tracker.Step(ctx, 40, "applying configuration")
	executor := newDeploymentExecutor(conn, tracker)
	result, err := executor.Execute(ctx, configuration, deployment.FrozenContent)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			s.finishFailed(ctx, deployment, tracker, startedAt, v1.ErrDeploymentTimeout.Error(), ctx.Err().Error())
			return
		}
		s.finishFailed(ctx, deployment, tracker, startedAt, err.Error(),
			fmt.Sprintf("apply %s configuration: %v", configuration.ConfigType, err))
		return
	}

	// 4. 部署后冒烟检查
	if !task.options.SkipTests {
		tracker.Step(ctx, 92, "running post-deployment check")
		if _, err = conn.Version(ctx); err != nil {
			if !task.options.Force {
				s.finishFailed(ctx, deployment, tracker, startedAt, v1.ErrTestFailed.Error(), err.Error())
				return
			}
			tracker.Warning(ctx, "post-deployment check failed, continuing because force is set", err.Error())
		}
	}

	// 5. 固化结果与版本快照
	tracker.Step(ctx, 95, "recording version snapshot")
	resultJSON, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		s.logger.Error("failed to marshal deployment result", zap.Error(marshalErr))
	}

	// 全部条目失败才算整体失败，部分失败保留在结果里
	status := model.DeploymentStatusSuccess
	if result.TotalSteps > 0 && result.FailedSteps == result.TotalSteps {
		status = model.DeploymentStatusFailed
	}

	resultStr := string(resultJSON)
	if err = s.deploymentRepo.UpdateStatus(ctx, deployment.Id, repository.DeploymentStatusUpdate{
		Result: &resultStr,
	}); err != nil {
		s.logger.Error("failed to store deployment result", zap.Error(err))
	}

	if status == model.DeploymentStatusSuccess {
		versionNumber, snapErr := s.versionService.Snapshot(ctx, deployment.ConfigurationID, deployment.FrozenContent, deployment.Id)
		if snapErr != nil {
			tracker.Warning(ctx, "version snapshot failed", snapErr.Error())
		} else {
			tracker.Infof(ctx, "version %d recorded", versionNumber)
		}
		if err = s.configRepo.UpdateStatus(ctx, deployment.ConfigurationID, model.ConfigStatusDeployed, ""); err != nil {
			s.logger.Error("failed to mark configuration deployed", zap.Error(err))
		}
	}

	completedAt := time.Now()
	durationMs := completedAt.Sub(startedAt).Milliseconds()
	tracker.Step(ctx, 100, "deployment finished")
	if err = s.deploymentRepo.MarkCompleted(ctx, deployment.Id, status, completedAt, durationMs); err != nil {
		s.logger.Error("failed to mark deployment completed", zap.Error(err), zap.Int64("deployment_id", deployment.Id))
	}
	s.notifyOutcome(deployment.Id)

	s.logger.Info("deployment finished",
		zap.Int64("deployment_id", deployment.Id),
		zap.String("status", status),
		zap.Int("failed_steps", result.FailedSteps),
		zap.Int64("duration_ms", durationMs))
}

// finishFailed 流水线级失败：错误信息与明细落在记录和日志上，写终态与时长并触发通知
func (s *deploymentService) finishFailed(ctx context.Context, deployment *model.Deployment, tracker *progressTracker, startedAt time.Time, message, detail string) {
	completedAt := time.Now()
	durationMs := completedAt.Sub(startedAt).Milliseconds()
	if detail == "" {
		detail = message
	}
	errMsg := message
	if err := s.deploymentRepo.UpdateStatus(ctx, deployment.Id, repository.DeploymentStatusUpdate{
		ErrorMessage: &errMsg,
		ErrorStack:   &detail,
	}); err != nil {
		s.logger.Error("failed to store deployment error", zap.Error(err))
	}
	if err := s.deploymentRepo.MarkCompleted(ctx, deployment.Id, model.DeploymentStatusFailed, completedAt, durationMs); err != nil {
		s.logger.Error("failed to mark deployment failed", zap.Error(err), zap.Int64("deployment_id", deployment.Id))
	}
	tracker.Error(ctx, message, detail)
	s.notifyOutcome(deployment.Id)
}

// failDeployment 未进入流水线的失败路径，同样走一次性的终态转移
func (s *deploymentService) failDeployment(ctx context.Context, deploymentID int64, message, detail string) {
	errMsg := message
	update := repository.DeploymentStatusUpdate{ErrorMessage: &errMsg}
	if detail != "" {
		update.ErrorStack = &detail
	}
	if err := s.deploymentRepo.UpdateStatus(ctx, deploymentID, update); err != nil {
		s.logger.Error("failed to store deployment error", zap.Error(err), zap.Int64("deployment_id", deploymentID))
	}
	if err := s.deploymentRepo.MarkCompleted(ctx, deploymentID, model.DeploymentStatusFailed, time.Now(), 0); err != nil {
		s.logger.Error("failed to mark deployment failed", zap.Error(err), zap.Int64("deployment_id", deploymentID))
	}
	if err := s.logRepo.Append(ctx, deploymentID, model.LogLevelError, message, detail); err != nil {
		s.logger.Error("failed to append deployment log", zap.Error(err))
	}
	s.notifyOutcome(deploymentID)
}

// notifyOutcome 终态变化触发订阅分发；通知失败不影响部署结果
func (s *deploymentService) notifyOutcome(deploymentID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	deployment, err := s.deploymentRepo.GetByID(ctx, deploymentID)
	if err != nil || deployment == nil {
		return
	}
	s.notificationService.DispatchDeploymentEvent(ctx, deployment)
}

func (s *deploymentService) GetDeployment(ctx context.Context, id int64) (*v1.DeploymentDetail, error) {
	deployment, err := s.deploymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if deployment == nil {
		return nil, v1.ErrDeploymentNotFound
	}
	detail := toDeploymentDetail(deployment)
	return &detail, nil
}

func (s *deploymentService) ListDeployments(ctx context.Context, req *v1.ListDeploymentRequest) (*v1.ListDeploymentResponseData, error) {
	deployments, total, err := s.deploymentRepo.ListWithPagination(ctx, req.Page, req.PageSize, req.InstanceID, req.ConfigurationID, req.Status)
	if err != nil {
		return nil, err
	}
	list := make([]v1.DeploymentDetail, 0, len(deployments))
	for _, deployment := range deployments {
		list = append(list, toDeploymentDetail(deployment))
	}
	return &v1.ListDeploymentResponseData{Total: total, List: list}, nil
}

func (s *deploymentService) GetLogs(ctx context.Context, deploymentID int64, req *v1.ListDeploymentLogsRequest) (*v1.ListDeploymentLogsResponseData, error) {
	deployment, err := s.deploymentRepo.GetByID(ctx, deploymentID)
	if err != nil {
		return nil, err
	}
	if deployment == nil {
		return nil, v1.ErrDeploymentNotFound
	}

	logs, total, err := s.logRepo.ListByDeploymentID(ctx, deploymentID, repository.DeploymentLogFilter{
		Level:  req.Level,
		Since:  req.Since,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		return nil, err
	}
	list := make([]v1.DeploymentLogItem, 0, len(logs))
	for _, entry := range logs {
		list = append(list, v1.DeploymentLogItem{
			Level:      entry.Level,
			Message:    entry.Message,
			Details:    entry.Detail,
			CreateTime: entry.CreateTime,
		})
	}
	return &v1.ListDeploymentLogsResponseData{Total: total, List: list}, nil
}

func toDeploymentDetail(deployment *model.Deployment) v1.DeploymentDetail {
	return v1.DeploymentDetail{
		Id:              deployment.Id,
		DeploymentNo:    deployment.DeploymentNo,
		ConfigurationID: deployment.ConfigurationID,
		InstanceID:      deployment.InstanceID,
		BackupID:        deployment.BackupID,
		Status:          deployment.Status,
		Progress:        deployment.Progress,
		CurrentStep:     deployment.CurrentStep,
		Result:          deployment.Result,
		ErrorMessage:    deployment.ErrorMessage,
		CanRollback:     deployment.CanRollback == 1,
		StartedAt:       deployment.StartedAt,
		CompletedAt:     deployment.CompletedAt,
		RolledBackAt:    deployment.RolledBackAt,
		DurationMs:      deployment.DurationMs,
	}
}
