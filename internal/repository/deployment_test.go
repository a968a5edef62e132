package repository

import (
	"context"
	"testing"
	"time"

	"odoosphere/internal/model"
	"odoosphere/pkg/log"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	assert.NoError(t, err)

	return NewRepository(&log.Logger{Logger: zap.NewNop()}, gdb, nil), mock
}

func TestDeploymentGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)
	deploymentRepo := NewDeploymentRepository(repo)

	mock.ExpectQuery("SELECT \\* FROM `deployment` WHERE id = \\?").
		WithArgs(42, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "deployment_no", "status"}))

	deployment, err := deploymentRepo.GetByID(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, deployment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeploymentMarkCompletedWritesOnce(t *testing.T) {
	repo, mock := newMockRepository(t)
	deploymentRepo := NewDeploymentRepository(repo)
	completedAt := time.Now()

	// completed_at 非空的行不会被二次覆盖
	mock.ExpectExec("UPDATE `deployment` SET .+ WHERE id = \\? AND completed_at IS NULL").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := deploymentRepo.MarkCompleted(context.Background(), 42, model.DeploymentStatusSuccess, completedAt, 1500)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeploymentMarkRolledBackGuardsStatus(t *testing.T) {
	repo, mock := newMockRepository(t)
	deploymentRepo := NewDeploymentRepository(repo)

	// 只有 success 状态允许翻转为 rolled_back
	mock.ExpectExec("UPDATE `deployment` SET .+ WHERE id = \\? AND status = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := deploymentRepo.MarkRolledBack(context.Background(), 42, time.Now())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeploymentUpdateStatusEmptyIsNoop(t *testing.T) {
	repo, mock := newMockRepository(t)
	deploymentRepo := NewDeploymentRepository(repo)

	// 没有字段要更新时不应发出任何 SQL
	err := deploymentRepo.UpdateStatus(context.Background(), 42, DeploymentStatusUpdate{})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeploymentUpdateStatusPartial(t *testing.T) {
	repo, mock := newMockRepository(t)
	deploymentRepo := NewDeploymentRepository(repo)

	progress := 40
	step := "applying configuration"
	mock.ExpectExec("UPDATE `deployment` SET .+ WHERE id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := deploymentRepo.UpdateStatus(context.Background(), 42, DeploymentStatusUpdate{
		Progress:    &progress,
		CurrentStep: &step,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
