package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"time"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/model"
	"odoosphere/internal/repository"
	"odoosphere/pkg/log"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var validChannels = map[string]bool{
	v1.ChannelInApp:   true,
	v1.ChannelEmail:   true,
	v1.ChannelWebhook: true,
}

var validTriggers = map[string]bool{
	v1.TriggerOnStatusChange: true,
	v1.TriggerOnError:        true,
	v1.TriggerOnCompletion:   true,
}

type NotificationService interface {
	Subscribe(ctx context.Context, deploymentID int64, userID string, req *v1.CreateSubscriptionRequest) (int64, error)
	ListNotifications(ctx context.Context, userID string, req *v1.ListNotificationRequest) (*v1.ListNotificationResponseData, error)
	MarkRead(ctx context.Context, userID string, notificationID int64) error
	// DispatchDeploymentEvent 按订阅分发部署终态事件；单个渠道失败不影响其他渠道
	DispatchDeploymentEvent(ctx context.Context, deployment *model.Deployment)
}

// EmailSender 邮件外发
type EmailSender interface {
	Send(to, subject, body string) error
}

// WebhookSender Webhook 外发
type WebhookSender interface {
	Post(ctx context.Context, url string, payload interface{}) error
}

func NewNotificationService(
	service *Service,
	deploymentRepo repository.DeploymentRepository,
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	emailSender EmailSender,
	webhookSender WebhookSender,
	logger *log.Logger,
) NotificationService {
	return &notificationService{
		deploymentRepo:   deploymentRepo,
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		emailSender:      emailSender,
		webhookSender:    webhookSender,
		Service:          service,
		logger:           logger,
	}
}

type notificationService struct {
	deploymentRepo   repository.DeploymentRepository
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	emailSender      EmailSender
	webhookSender    WebhookSender
	*Service
	logger *log.Logger
}

func (s *notificationService) Subscribe(ctx context.Context, deploymentID int64, userID string, req *v1.CreateSubscriptionRequest) (int64, error) {
	deployment, err := s.deploymentRepo.GetByID(ctx, deploymentID)
	if err != nil {
		return 0, err
	}
	if deployment == nil {
		return 0, v1.ErrDeploymentNotFound
	}

	for _, channel := range req.Channels {
		if !validChannels[channel] {
			return 0, v1.ErrInvalidChannel
		}
	}
	for _, trigger := range req.Triggers {
		if !validTriggers[trigger] {
			return 0, v1.ErrInvalidTrigger
		}
	}

	channels, err := json.Marshal(req.Channels)
	if err != nil {
		return 0, err
	}
	triggers, err := json.Marshal(req.Triggers)
	if err != nil {
		return 0, err
	}
	sub := &model.NotificationSubscription{
		DeploymentID: deploymentID,
		UserID:       userID,
		Channels:     string(channels),
		Triggers:     string(triggers),
		WebhookUrl:   req.WebhookUrl,
	}
	if err = s.notificationRepo.CreateSubscription(ctx, sub); err != nil {
		s.logger.WithContext(ctx).Error("failed to create subscription", zap.Error(err))
		return 0, err
	}
	return sub.Id, nil
}

func (s *notificationService) ListNotifications(ctx context.Context, userID string, req *v1.ListNotificationRequest) (*v1.ListNotificationResponseData, error) {
	notifications, total, err := s.notificationRepo.ListNotifications(ctx, userID, req.Page, req.PageSize, req.Unread)
	if err != nil {
		return nil, err
	}
	list := make([]v1.NotificationItem, 0, len(notifications))
	for _, n := range notifications {
		list = append(list, v1.NotificationItem{
			Id:           n.Id,
			DeploymentID: n.DeploymentID,
			Title:        n.Title,
			Message:      n.Message,
			IsRead:       n.IsRead,
			CreateTime:   n.CreateTime,
		})
	}
	return &v1.ListNotificationResponseData{Total: total, List: list}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID string, notificationID int64) error {
	return s.notificationRepo.MarkRead(ctx, userID, notificationID)
}

func (s *notificationService) DispatchDeploymentEvent(ctx context.Context, deployment *model.Deployment) {
	subs, err := s.notificationRepo.ListSubscriptionsByDeploymentID(ctx, deployment.Id)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to list subscriptions",
			zap.Error(err), zap.Int64("deployment_id", deployment.Id))
		return
	}

	for _, sub := range subs {
		if !s.shouldFire(sub, deployment) {
			continue
		}
		var channels []string
		if err = json.Unmarshal([]byte(sub.Channels), &channels); err != nil {
			s.logger.WithContext(ctx).Error("malformed subscription channels",
				zap.Error(err), zap.Int64("subscription_id", sub.Id))
			continue
		}
		title, message := s.composeMessage(deployment)
		for _, channel := range channels {
			// 渠道间互相隔离，失败只记日志
			if err = s.deliver(ctx, channel, sub, deployment, title, message); err != nil {
				s.logger.WithContext(ctx).Error("notification delivery failed",
					zap.Error(err),
					zap.String("channel", channel),
					zap.Int64("subscription_id", sub.Id))
			}
		}
	}
}

func (s *notificationService) shouldFire(sub *model.NotificationSubscription, deployment *model.Deployment) bool {
	var triggers []string
	if err := json.Unmarshal([]byte(sub.Triggers), &triggers); err != nil {
		return false
	}
	for _, trigger := range triggers {
		switch trigger {
		case v1.TriggerOnStatusChange:
			return true
		case v1.TriggerOnError:
			if deployment.Status == model.DeploymentStatusFailed {
				return true
			}
		case v1.TriggerOnCompletion:
			if model.IsTerminalDeploymentStatus(deployment.Status) {
				return true
			}
		}
	}
	return false
}

func (s *notificationService) composeMessage(deployment *model.Deployment) (string, string) {
	title := fmt.Sprintf("Deployment %s %s", deployment.DeploymentNo, deployment.Status)
	message := fmt.Sprintf("deployment %s for configuration %d on instance %d finished with status %s",
		deployment.DeploymentNo, deployment.ConfigurationID, deployment.InstanceID, deployment.Status)
	if deployment.ErrorMessage != "" {
		message = fmt.Sprintf("%s: %s", message, deployment.ErrorMessage)
	}
	return title, message
}

func (s *notificationService) deliver(ctx context.Context, channel string, sub *model.NotificationSubscription, deployment *model.Deployment, title, message string) error {
	switch channel {
	case v1.ChannelInApp:
		return s.notificationRepo.CreateNotification(ctx, &model.Notification{
			UserID:       sub.UserID,
			DeploymentID: deployment.Id,
			Title:        title,
			Message:      message,
		})
	case v1.ChannelEmail:
		user, err := s.userRepo.GetByID(ctx, sub.UserID)
		if err != nil {
			return err
		}
		if user == nil || user.Email == "" {
			return fmt.Errorf("subscriber %s has no email address", sub.UserID)
		}
		return s.emailSender.Send(user.Email, title, message)
	case v1.ChannelWebhook:
		if sub.WebhookUrl == "" {
			return fmt.Errorf("subscription %d has no webhook url", sub.Id)
		}
		return s.webhookSender.Post(ctx, sub.WebhookUrl, map[string]interface{}{
			"deployment_id": deployment.Id,
			"deployment_no": deployment.DeploymentNo,
			"status":        deployment.Status,
			"progress":      deployment.Progress,
			"error_message": deployment.ErrorMessage,
			"completed_at":  deployment.CompletedAt,
		})
	default:
		return fmt.Errorf("unknown channel %q", channel)
	}
}

// NewEmailSender SMTP 外发；未配置 smtp.host 时退化为只记日志
func NewEmailSender(conf *viper.Viper, logger *log.Logger) EmailSender {
	host := conf.GetString("smtp.host")
	if host == "" {
		return &noopEmailSender{logger: logger}
	}
	return &smtpEmailSender{
		addr:     fmt.Sprintf("%s:%d", host, conf.GetInt("smtp.port")),
		host:     host,
		from:     conf.GetString("smtp.from"),
		username: conf.GetString("smtp.username"),
		password: conf.GetString("smtp.password"),
	}
}

type smtpEmailSender struct {
	addr     string
	host     string
	from     string
	username string
	password string
}

func (s *smtpEmailSender) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.from, to, subject, body)
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	return smtp.SendMail(s.addr, auth, s.from, []string{to}, []byte(msg))
}

type noopEmailSender struct {
	logger *log.Logger
}

func (s *noopEmailSender) Send(to, subject, body string) error {
	s.logger.Info("email delivery skipped: smtp not configured",
		zap.String("to", to), zap.String("subject", subject))
	return nil
}

// NewWebhookSender HTTP POST 外发，非 2xx 视为失败
func NewWebhookSender(conf *viper.Viper) WebhookSender {
	timeout := conf.GetDuration("webhook.timeout")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpWebhookSender{
		client: &http.Client{Timeout: timeout},
	}
}

type httpWebhookSender struct {
	client *http.Client
}

func (s *httpWebhookSender) Post(ctx context.Context, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
