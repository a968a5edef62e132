package repository

import (
	"context"
	"fmt"
	"time"
)

// InstanceLockRepository 目标实例的跨进程部署互斥锁
// 同一实例同一时刻只允许一个部署执行
type InstanceLockRepository interface {
	TryLock(ctx context.Context, instanceID int64, owner string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, instanceID int64, owner string) error
}

func NewInstanceLockRepository(
	repository *Repository,
) InstanceLockRepository {
	return &instanceLockRepository{
		Repository: repository,
	}
}

type instanceLockRepository struct {
	*Repository
}

func lockKey(instanceID int64) string {
	return fmt.Sprintf("odoosphere:deploy:lock:%d", instanceID)
}

// TryLock SET NX EX 抢锁；ttl 兜底释放，避免进程崩溃后死锁
func (r *instanceLockRepository) TryLock(ctx context.Context, instanceID int64, owner string, ttl time.Duration) (bool, error) {
	return r.rdb.SetNX(ctx, lockKey(instanceID), owner, ttl).Result()
}

// Unlock 只释放自己持有的锁
func (r *instanceLockRepository) Unlock(ctx context.Context, instanceID int64, owner string) error {
	const script = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`
	return r.rdb.Eval(ctx, script, []string{lockKey(instanceID)}, owner).Err()
}
