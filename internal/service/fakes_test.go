package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/model"
	"odoosphere/internal/repository"
	"odoosphere/pkg/jwt"
	"odoosphere/pkg/log"
	"odoosphere/pkg/sid"

	"go.uber.org/zap"
)

// 服务层测试共用的内存假件
// 只实现被测路径需要的行为，未覆盖的方法返回零值

func newTestLogger() *log.Logger {
	return &log.Logger{Logger: zap.NewNop()}
}

func newTestService() *Service {
	return NewService(nil, newTestLogger(), sid.NewSid(), (*jwt.JWT)(nil))
}

// --- repository fakes ---

type fakeInstanceRepo struct {
	mu        sync.Mutex
	instances map[int64]*model.OdooInstance
}

func newFakeInstanceRepo(instances ...*model.OdooInstance) *fakeInstanceRepo {
	r := &fakeInstanceRepo{instances: map[int64]*model.OdooInstance{}}
	for _, instance := range instances {
		r.instances[instance.Id] = instance
	}
	return r
}

func (r *fakeInstanceRepo) Create(ctx context.Context, instance *model.OdooInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if instance.Id == 0 {
		instance.Id = int64(len(r.instances) + 1)
	}
	r.instances[instance.Id] = instance
	return nil
}

func (r *fakeInstanceRepo) Update(ctx context.Context, instance *model.OdooInstance) error {
	return r.Create(ctx, instance)
}

func (r *fakeInstanceRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, id)
	return nil
}

func (r *fakeInstanceRepo) GetByID(ctx context.Context, id int64) (*model.OdooInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.instances[id], nil
}

func (r *fakeInstanceRepo) List(ctx context.Context) ([]*model.OdooInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*model.OdooInstance, 0, len(r.instances))
	for _, instance := range r.instances {
		list = append(list, instance)
	}
	return list, nil
}

func (r *fakeInstanceRepo) ListWithPagination(ctx context.Context, page, pageSize int, companyID *int64, env, status string) ([]*model.OdooInstance, int64, error) {
	list, _ := r.List(ctx)
	return list, int64(len(list)), nil
}

func (r *fakeInstanceRepo) UpdateHealth(ctx context.Context, id int64, status string, checkedAt time.Time) error {
	return nil
}

type fakeConfigurationRepo struct {
	mu       sync.Mutex
	configs  map[int64]*model.Configuration
	deployed []*model.Configuration

	statusUpdates  []string // 记录形如 "id:status" 的状态迁移
	currentVersion map[int64]int
}

func newFakeConfigurationRepo(configs ...*model.Configuration) *fakeConfigurationRepo {
	r := &fakeConfigurationRepo{
		configs:        map[int64]*model.Configuration{},
		currentVersion: map[int64]int{},
	}
	for _, configuration := range configs {
		r.configs[configuration.Id] = configuration
	}
	return r
}

func (r *fakeConfigurationRepo) Create(ctx context.Context, configuration *model.Configuration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if configuration.Id == 0 {
		configuration.Id = int64(len(r.configs) + 1)
	}
	r.configs[configuration.Id] = configuration
	return nil
}

func (r *fakeConfigurationRepo) Update(ctx context.Context, configuration *model.Configuration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[configuration.Id] = configuration
	return nil
}

func (r *fakeConfigurationRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.configs, id)
	return nil
}

func (r *fakeConfigurationRepo) GetByID(ctx context.Context, id int64) (*model.Configuration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.configs[id], nil
}

func (r *fakeConfigurationRepo) ListWithPagination(ctx context.Context, page, pageSize int, companyID *int64, configType, status string) ([]*model.Configuration, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*model.Configuration, 0, len(r.configs))
	for _, configuration := range r.configs {
		list = append(list, configuration)
	}
	return list, int64(len(list)), nil
}

func (r *fakeConfigurationRepo) ListDeployedByTypeAndCompany(ctx context.Context, configType string, companyID int64) ([]*model.Configuration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deployed, nil
}

func (r *fakeConfigurationRepo) UpdateStatus(ctx context.Context, id int64, status, reviewComment string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statusUpdates = append(r.statusUpdates, fmt.Sprintf("%d:%s", id, status))
	if configuration, ok := r.configs[id]; ok {
		configuration.Status = status
		configuration.ReviewComment = reviewComment
	}
	return nil
}

func (r *fakeConfigurationRepo) UpdateCurrentVersion(ctx context.Context, id int64, version int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentVersion[id] = version
	if configuration, ok := r.configs[id]; ok {
		configuration.CurrentVersion = version
	}
	return nil
}

type fakeVersionRepo struct {
	mu       sync.Mutex
	versions []*model.ConfigurationVersion
}

func (r *fakeVersionRepo) Create(ctx context.Context, version *model.ConfigurationVersion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	version.Id = int64(len(r.versions) + 1)
	r.versions = append(r.versions, version)
	return nil
}

func (r *fakeVersionRepo) GetByNumber(ctx context.Context, configurationID int64, versionNumber int) (*model.ConfigurationVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, version := range r.versions {
		if version.ConfigurationID == configurationID && version.VersionNumber == versionNumber {
			return version, nil
		}
	}
	return nil, nil
}

func (r *fakeVersionRepo) GetLatest(ctx context.Context, configurationID int64) (*model.ConfigurationVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *model.ConfigurationVersion
	for _, version := range r.versions {
		if version.ConfigurationID != configurationID {
			continue
		}
		if latest == nil || version.VersionNumber > latest.VersionNumber {
			latest = version
		}
	}
	return latest, nil
}

func (r *fakeVersionRepo) GetLatestBefore(ctx context.Context, configurationID int64, versionNumber int) (*model.ConfigurationVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *model.ConfigurationVersion
	for _, version := range r.versions {
		if version.ConfigurationID != configurationID || version.VersionNumber >= versionNumber {
			continue
		}
		if found == nil || version.VersionNumber > found.VersionNumber {
			found = version
		}
	}
	return found, nil
}

func (r *fakeVersionRepo) MaxVersionNumber(ctx context.Context, configurationID int64) (int, error) {
	latest, _ := r.GetLatest(ctx, configurationID)
	if latest == nil {
		return 0, nil
	}
	return latest.VersionNumber, nil
}

func (r *fakeVersionRepo) ListByConfigurationID(ctx context.Context, configurationID int64) ([]*model.ConfigurationVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*model.ConfigurationVersion, 0, len(r.versions))
	for _, version := range r.versions {
		if version.ConfigurationID == configurationID {
			list = append(list, version)
		}
	}
	return list, nil
}

type fakeDeploymentRepo struct {
	mu          sync.Mutex
	deployments map[int64]*model.Deployment
	nextID      int64

	// progressHistory 按写入顺序记录每次进度更新，供断言进度推进轨迹
	progressHistory []int
	// completed 在 MarkCompleted 时收到部署 ID，供测试等待异步流水线收尾
	completed chan int64
}

func newFakeDeploymentRepo(deployments ...*model.Deployment) *fakeDeploymentRepo {
	r := &fakeDeploymentRepo{
		deployments: map[int64]*model.Deployment{},
		completed:   make(chan int64, 16),
	}
	for _, deployment := range deployments {
		r.deployments[deployment.Id] = deployment
		if deployment.Id > r.nextID {
			r.nextID = deployment.Id
		}
	}
	return r
}

func (r *fakeDeploymentRepo) Create(ctx context.Context, deployment *model.Deployment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	deployment.Id = r.nextID
	r.deployments[deployment.Id] = deployment
	return nil
}

func (r *fakeDeploymentRepo) GetByID(ctx context.Context, id int64) (*model.Deployment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deployment, ok := r.deployments[id]
	if !ok {
		return nil, nil
	}
	clone := *deployment
	return &clone, nil
}

func (r *fakeDeploymentRepo) ListWithPagination(ctx context.Context, page, pageSize int, instanceID, configurationID *int64, status string) ([]*model.Deployment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*model.Deployment, 0, len(r.deployments))
	for _, deployment := range r.deployments {
		clone := *deployment
		list = append(list, &clone)
	}
	return list, int64(len(list)), nil
}

func (r *fakeDeploymentRepo) UpdateStatus(ctx context.Context, id int64, update repository.DeploymentStatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	deployment, ok := r.deployments[id]
	if !ok {
		return nil
	}
	if update.Status != nil {
		deployment.Status = *update.Status
	}
	if update.Progress != nil {
		deployment.Progress = *update.Progress
		r.progressHistory = append(r.progressHistory, *update.Progress)
	}
	if update.CurrentStep != nil {
		deployment.CurrentStep = *update.CurrentStep
	}
	if update.ErrorMessage != nil {
		deployment.ErrorMessage = *update.ErrorMessage
	}
	if update.ErrorStack != nil {
		deployment.ErrorStack = *update.ErrorStack
	}
	if update.Result != nil {
		deployment.Result = *update.Result
	}
	if update.BackupID != nil {
		deployment.BackupID = update.BackupID
	}
	if update.CanRollback != nil {
		deployment.CanRollback = *update.CanRollback
	}
	return nil
}

func (r *fakeDeploymentRepo) MarkStarted(ctx context.Context, id int64, startedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if deployment, ok := r.deployments[id]; ok {
		deployment.Status = model.DeploymentStatusInProgress
		deployment.StartedAt = &startedAt
	}
	return nil
}

func (r *fakeDeploymentRepo) MarkCompleted(ctx context.Context, id int64, status string, completedAt time.Time, durationMs int64) error {
	r.mu.Lock()
	if deployment, ok := r.deployments[id]; ok {
		deployment.Status = status
		deployment.CompletedAt = &completedAt
		deployment.DurationMs = durationMs
	}
	r.mu.Unlock()
	select {
	case r.completed <- id:
	default:
	}
	return nil
}

func (r *fakeDeploymentRepo) progressValues() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.progressHistory...)
}

func (r *fakeDeploymentRepo) MarkRolledBack(ctx context.Context, id int64, rolledBackAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if deployment, ok := r.deployments[id]; ok {
		deployment.Status = model.DeploymentStatusRolledBack
		deployment.RolledBackAt = &rolledBackAt
	}
	return nil
}

func (r *fakeDeploymentRepo) ListUpdatedSince(ctx context.Context, since time.Time) ([]*model.Deployment, error) {
	list, _, err := r.ListWithPagination(ctx, 1, 100, nil, nil, "")
	return list, err
}

func (r *fakeDeploymentRepo) CountByStatus(ctx context.Context, filter repository.DeploymentMetricsFilter) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	for _, deployment := range r.deployments {
		counts[deployment.Status]++
	}
	return counts, nil
}

func (r *fakeDeploymentRepo) CountByType(ctx context.Context, filter repository.DeploymentMetricsFilter) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	for _, deployment := range r.deployments {
		counts[deployment.ConfigType]++
	}
	return counts, nil
}

func (r *fakeDeploymentRepo) AvgDurationMs(ctx context.Context, filter repository.DeploymentMetricsFilter) (int64, error) {
	return 0, nil
}

func (r *fakeDeploymentRepo) ListRecent(ctx context.Context, filter repository.DeploymentMetricsFilter, limit int) ([]*model.Deployment, error) {
	list, _, err := r.ListWithPagination(ctx, 1, limit, nil, nil, "")
	return list, err
}

type fakeBackupRepo struct {
	mu      sync.Mutex
	backups map[int64]*model.Backup
	nextID  int64
}

func newFakeBackupRepo(backups ...*model.Backup) *fakeBackupRepo {
	r := &fakeBackupRepo{backups: map[int64]*model.Backup{}}
	for _, backup := range backups {
		r.backups[backup.Id] = backup
		if backup.Id > r.nextID {
			r.nextID = backup.Id
		}
	}
	return r
}

func (r *fakeBackupRepo) Create(ctx context.Context, backup *model.Backup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	backup.Id = r.nextID
	r.backups[backup.Id] = backup
	return nil
}

func (r *fakeBackupRepo) Update(ctx context.Context, backup *model.Backup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backups[backup.Id] = backup
	return nil
}

func (r *fakeBackupRepo) GetByID(ctx context.Context, id int64) (*model.Backup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backups[id], nil
}

func (r *fakeBackupRepo) ListWithPagination(ctx context.Context, page, pageSize int, instanceID *int64, status string) ([]*model.Backup, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*model.Backup, 0, len(r.backups))
	for _, backup := range r.backups {
		list = append(list, backup)
	}
	return list, int64(len(list)), nil
}

func (r *fakeBackupRepo) UpdateStatus(ctx context.Context, id int64, status string, sizeBytes int64, errorMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if backup, ok := r.backups[id]; ok {
		backup.Status = status
		backup.SizeBytes = sizeBytes
		backup.ErrorMessage = errorMsg
	}
	return nil
}

type fakeLogRepo struct {
	mu      sync.Mutex
	entries []*model.DeploymentLog
}

func (r *fakeLogRepo) Append(ctx context.Context, deploymentID int64, level, message, detail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, &model.DeploymentLog{
		DeploymentID: deploymentID,
		Level:        level,
		Message:      message,
		Detail:       detail,
	})
	return nil
}

func (r *fakeLogRepo) ListByDeploymentID(ctx context.Context, deploymentID int64, filter repository.DeploymentLogFilter) ([]*model.DeploymentLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*model.DeploymentLog, 0, len(r.entries))
	for _, entry := range r.entries {
		if entry.DeploymentID == deploymentID {
			list = append(list, entry)
		}
	}
	return list, int64(len(list)), nil
}

func (r *fakeLogRepo) DeleteByDeploymentID(ctx context.Context, deploymentID int64) error {
	return nil
}

func (r *fakeLogRepo) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		msgs = append(msgs, entry.Message)
	}
	return msgs
}

type fakeLockRepo struct {
	mu     sync.Mutex
	locked map[int64]string
	denied bool
}

func newFakeLockRepo() *fakeLockRepo {
	return &fakeLockRepo{locked: map[int64]string{}}
}

func (r *fakeLockRepo) TryLock(ctx context.Context, instanceID int64, owner string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.denied {
		return false, nil
	}
	if _, held := r.locked[instanceID]; held {
		return false, nil
	}
	r.locked[instanceID] = owner
	return true, nil
}

func (r *fakeLockRepo) Unlock(ctx context.Context, instanceID int64, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locked, instanceID)
	return nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	subscriptions []*model.NotificationSubscription
	notifications []*model.Notification
}

func (r *fakeNotificationRepo) CreateSubscription(ctx context.Context, sub *model.NotificationSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub.Id = int64(len(r.subscriptions) + 1)
	r.subscriptions = append(r.subscriptions, sub)
	return nil
}

func (r *fakeNotificationRepo) ListSubscriptionsByDeploymentID(ctx context.Context, deploymentID int64) ([]*model.NotificationSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*model.NotificationSubscription, 0, len(r.subscriptions))
	for _, sub := range r.subscriptions {
		if sub.DeploymentID == deploymentID {
			list = append(list, sub)
		}
	}
	return list, nil
}

func (r *fakeNotificationRepo) CreateNotification(ctx context.Context, notification *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.Id = int64(len(r.notifications) + 1)
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *fakeNotificationRepo) ListNotifications(ctx context.Context, userID string, page, pageSize int, unread *bool) ([]*model.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*model.Notification, 0, len(r.notifications))
	for _, notification := range r.notifications {
		if notification.UserID == userID {
			list = append(list, notification)
		}
	}
	return list, int64(len(list)), nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, userID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, notification := range r.notifications {
		if notification.Id == id && notification.UserID == userID {
			notification.IsRead = 1
		}
	}
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.users == nil {
		r.users = map[string]*model.User{}
	}
	r.users[user.UserId] = user
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	return r.Create(ctx, user)
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userId string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[userId], nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, nil
}

// --- connector fakes ---

// fakeConnector 行为通过函数字段注入，未注入的方法按成功处理
type fakeConnector struct {
	mu        sync.Mutex
	calls     []string
	installed map[int64]bool // 默认行为下记录已安装模块，安装后回读返回 installed

	authenticateFn       func(ctx context.Context) error
	versionFn            func(ctx context.Context) (map[string]interface{}, error)
	findModuleFn         func(ctx context.Context, technicalName string) (map[string]interface{}, error)
	installModuleFn      func(ctx context.Context, moduleID int64) error
	findModelFieldFn     func(ctx context.Context, model, fieldName string) (map[string]interface{}, error)
	createModelFieldFn   func(ctx context.Context, values map[string]interface{}) (int64, error)
	createViewFn         func(ctx context.Context, values map[string]interface{}) (int64, error)
	setConfigParameterFn func(ctx context.Context, key string, value interface{}) error
	backupErr            error
	restoreErr           error
}

func (c *fakeConnector) record(call string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
}

func (c *fakeConnector) callsSnapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *fakeConnector) Authenticate(ctx context.Context) error {
	c.record("authenticate")
	if c.authenticateFn != nil {
		return c.authenticateFn(ctx)
	}
	return nil
}

func (c *fakeConnector) Version(ctx context.Context) (map[string]interface{}, error) {
	c.record("version")
	if c.versionFn != nil {
		return c.versionFn(ctx)
	}
	return map[string]interface{}{"server_version": "17.0"}, nil
}

func (c *fakeConnector) FindModule(ctx context.Context, technicalName string) (map[string]interface{}, error) {
	c.record("find_module:" + technicalName)
	if c.findModuleFn != nil {
		return c.findModuleFn(ctx, technicalName)
	}
	state := "uninstalled"
	c.mu.Lock()
	if c.installed[1] {
		state = "installed"
	}
	c.mu.Unlock()
	return map[string]interface{}{"id": float64(1), "name": technicalName, "state": state}, nil
}

func (c *fakeConnector) InstallModule(ctx context.Context, moduleID int64) error {
	c.record(fmt.Sprintf("install_module:%d", moduleID))
	if c.installModuleFn != nil {
		return c.installModuleFn(ctx, moduleID)
	}
	c.mu.Lock()
	if c.installed == nil {
		c.installed = map[int64]bool{}
	}
	c.installed[moduleID] = true
	c.mu.Unlock()
	return nil
}

func (c *fakeConnector) FindModelField(ctx context.Context, model, fieldName string) (map[string]interface{}, error) {
	c.record("find_field:" + model + "." + fieldName)
	if c.findModelFieldFn != nil {
		return c.findModelFieldFn(ctx, model, fieldName)
	}
	return nil, nil
}

func (c *fakeConnector) CreateModelField(ctx context.Context, values map[string]interface{}) (int64, error) {
	c.record(fmt.Sprintf("create_field:%v.%v", values["model"], values["name"]))
	if c.createModelFieldFn != nil {
		return c.createModelFieldFn(ctx, values)
	}
	return 100, nil
}

func (c *fakeConnector) CreateView(ctx context.Context, values map[string]interface{}) (int64, error) {
	c.record(fmt.Sprintf("create_view:%v", values["name"]))
	if c.createViewFn != nil {
		return c.createViewFn(ctx, values)
	}
	return 200, nil
}

func (c *fakeConnector) SetConfigParameter(ctx context.Context, key string, value interface{}) error {
	c.record("set_param:" + key)
	if c.setConfigParameterFn != nil {
		return c.setConfigParameterFn(ctx, key, value)
	}
	return nil
}

func (c *fakeConnector) BackupDatabase(ctx context.Context, masterPassword string, w io.Writer) (int64, error) {
	c.record("backup")
	if c.backupErr != nil {
		return 0, c.backupErr
	}
	n, err := w.Write([]byte("PK\x03\x04fake"))
	return int64(n), err
}

func (c *fakeConnector) RestoreDatabase(ctx context.Context, masterPassword string, backup io.Reader) error {
	c.record("restore")
	if c.restoreErr != nil {
		return c.restoreErr
	}
	_, err := io.Copy(io.Discard, backup)
	return err
}

func (c *fakeConnector) Close() {
	c.record("close")
}

type fakeConnectorFactory struct {
	conn    *fakeConnector
	openErr error
}

func (f *fakeConnectorFactory) Open(ctx context.Context, instance *model.OdooInstance) (ErpConnector, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.conn, nil
}

func (f *fakeConnectorFactory) MasterPassword(instance *model.OdooInstance) (string, error) {
	return "master-secret", nil
}

// --- service fakes ---

type fakeValidationService struct {
	result *v1.ValidationResultData
	err    error
	called int
}

func (s *fakeValidationService) Validate(ctx context.Context, configuration *model.Configuration, instanceID int64) (*v1.ValidationResultData, error) {
	s.called++
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &v1.ValidationResultData{IsValid: true}, nil
}

type fakeBackupService struct {
	mu      sync.Mutex
	created int
	err     error
}

func (s *fakeBackupService) CreateBackup(ctx context.Context, instanceID int64, backupType, creator string) (*model.Backup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.created++
	return &model.Backup{Id: 900, BackupNo: "bk-900", InstanceID: instanceID, BackupType: backupType, SizeBytes: 128}, nil
}

func (s *fakeBackupService) GetBackup(ctx context.Context, id int64) (*model.Backup, error) {
	return nil, nil
}

func (s *fakeBackupService) ListBackups(ctx context.Context, req *v1.ListBackupRequest) (*v1.ListBackupResponseData, error) {
	return &v1.ListBackupResponseData{}, nil
}

func (s *fakeBackupService) RestoreBackup(ctx context.Context, backupID int64) error { return nil }

func (s *fakeBackupService) RollbackDeployment(ctx context.Context, deploymentID int64) error {
	return nil
}

func (s *fakeBackupService) createdCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created
}

type fakeNotificationDispatcher struct {
	mu         sync.Mutex
	dispatched []string
}

func (s *fakeNotificationDispatcher) Subscribe(ctx context.Context, deploymentID int64, userID string, req *v1.CreateSubscriptionRequest) (int64, error) {
	return 0, nil
}

func (s *fakeNotificationDispatcher) ListNotifications(ctx context.Context, userID string, req *v1.ListNotificationRequest) (*v1.ListNotificationResponseData, error) {
	return &v1.ListNotificationResponseData{}, nil
}

func (s *fakeNotificationDispatcher) MarkRead(ctx context.Context, userID string, notificationID int64) error {
	return nil
}

func (s *fakeNotificationDispatcher) DispatchDeploymentEvent(ctx context.Context, deployment *model.Deployment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatched = append(s.dispatched, deployment.Status)
}

// --- sender fakes ---

type fakeEmailSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *fakeEmailSender) Send(to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

type fakeWebhookSender struct {
	mu    sync.Mutex
	posts []string
	err   error
}

func (s *fakeWebhookSender) Post(ctx context.Context, url string, payload interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.posts = append(s.posts, url)
	return nil
}
