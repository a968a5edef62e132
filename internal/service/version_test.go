package service

import (
	"context"
	"testing"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/model"

	"github.com/stretchr/testify/assert"
)

func newTestVersionService(configRepo *fakeConfigurationRepo, versionRepo *fakeVersionRepo) VersionService {
	return NewVersionService(newTestService(), configRepo, versionRepo, newTestLogger())
}

func TestSnapshotCreatesIncrementingVersions(t *testing.T) {
	configRepo := newFakeConfigurationRepo(&model.Configuration{Id: 10})
	versionRepo := &fakeVersionRepo{}
	svc := newTestVersionService(configRepo, versionRepo)

	ctx := context.Background()
	number, err := svc.Snapshot(ctx, 10, `{"modules": []}`, 100)
	assert.NoError(t, err)
	assert.Equal(t, 1, number)

	number, err = svc.Snapshot(ctx, 10, `{"modules": [{"name": "CRM"}]}`, 101)
	assert.NoError(t, err)
	assert.Equal(t, 2, number)

	assert.Len(t, versionRepo.versions, 2)
	assert.Equal(t, 2, configRepo.currentVersion[10])
	assert.Equal(t, int64(101), *versionRepo.versions[1].DeploymentID)
}

func TestSnapshotDeduplicatesUnchangedContent(t *testing.T) {
	configRepo := newFakeConfigurationRepo(&model.Configuration{Id: 10})
	versionRepo := &fakeVersionRepo{}
	svc := newTestVersionService(configRepo, versionRepo)

	ctx := context.Background()
	first, err := svc.Snapshot(ctx, 10, `{"modules": []}`, 100)
	assert.NoError(t, err)

	// 内容未变化：复用已有版本号，不产生新版本
	second, err := svc.Snapshot(ctx, 10, `{"modules": []}`, 101)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, versionRepo.versions, 1)
}

func TestListVersionsMarksCurrent(t *testing.T) {
	configuration := &model.Configuration{Id: 10, CurrentVersion: 2}
	configRepo := newFakeConfigurationRepo(configuration)
	versionRepo := &fakeVersionRepo{}
	svc := newTestVersionService(configRepo, versionRepo)

	ctx := context.Background()
	_, err := svc.Snapshot(ctx, 10, "v1 content", 100)
	assert.NoError(t, err)
	_, err = svc.Snapshot(ctx, 10, "v2 content", 101)
	assert.NoError(t, err)

	items, err := svc.ListVersions(ctx, 10)
	assert.NoError(t, err)
	assert.Len(t, items, 2)

	currentCount := 0
	for _, item := range items {
		if item.IsCurrent {
			currentCount++
			assert.Equal(t, 2, item.VersionNumber)
		}
	}
	assert.Equal(t, 1, currentCount)
}

func TestListVersionsUnknownConfiguration(t *testing.T) {
	svc := newTestVersionService(newFakeConfigurationRepo(), &fakeVersionRepo{})

	_, err := svc.ListVersions(context.Background(), 999)
	assert.ErrorIs(t, err, v1.ErrConfigurationNotFound)
}

func TestGetVersionNotFound(t *testing.T) {
	svc := newTestVersionService(newFakeConfigurationRepo(&model.Configuration{Id: 10}), &fakeVersionRepo{})

	_, err := svc.GetVersion(context.Background(), 10, 7)
	assert.ErrorIs(t, err, v1.ErrVersionNotFound)
}
