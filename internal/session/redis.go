package session

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Shravani-Dhumal/Verifixia/internal/common/config"
	"github.com/Shravani-Dhumal/Verifixia/internal/common/errors"
	"github.com/Shravani-Dhumal/Verifixia/internal/common/logger"
	"github.com/Shravani-Dhumal/Verifixia/internal/models"
)

const (
	// SessionKey is where the serialized session lives.
	SessionKey = "verifixia:auth:session"
	// ChangedChannel announces session changes to other processes.
	ChangedChannel = "verifixia:auth:changed"
)

// RedisStore keeps the session in Redis so several agent processes share one
// sign-in. Change notification rides Redis pub/sub; each store instance tags
// its publishes with an instance ID and ignores the echo of its own writes,
// so local subscribers hear exactly one notification per change.
type RedisStore struct {
	client     *redis.Client
	instanceID string
	log        logger.Logger
	now        func() time.Time

	notifier *notifier

	mu     sync.Mutex
	pubsub *redis.PubSub
	stop   chan struct{}
}

// NewRedisStore connects and verifies the connection with a ping.
func NewRedisStore(cfg config.RedisConfig, log logger.Logger) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.NewSessionStorageError(err)
	}

	return NewRedisStoreWithClient(rdb, log), nil
}

// NewRedisStoreWithClient wraps an existing client, which tests provide via
// miniredis or redismock.
func NewRedisStoreWithClient(client *redis.Client, log logger.Logger) *RedisStore {
	return &RedisStore{
		client:     client,
		instanceID: uuid.NewString(),
		log:        log.WithFields(map[string]interface{}{"store": "redis"}),
		now:        time.Now,
		notifier:   newNotifier(),
	}
}

func (rs *RedisStore) Read() *models.Session {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	raw, err := rs.client.Get(ctx, SessionKey).Result()
	if err != nil {
		if err != redis.Nil {
			rs.log.Debug("session read failed, treating as absent", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil
	}

	var s models.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		rs.log.Debug("discarding corrupt session value", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	if !s.Valid(rs.now()) {
		return nil
	}
	return &s
}

func (rs *RedisStore) Write(s *models.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return errors.NewSessionStorageError(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rs.client.Set(ctx, SessionKey, raw, 0).Err(); err != nil {
		return errors.NewSessionStorageError(err)
	}

	rs.announce(ctx)
	rs.notifier.broadcast(rs.currentUser())
	return nil
}

func (rs *RedisStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rs.client.Del(ctx, SessionKey).Err(); err != nil {
		return errors.NewSessionStorageError(err)
	}

	rs.announce(ctx)
	rs.notifier.broadcast(nil)
	return nil
}

func (rs *RedisStore) Subscribe(fn func(*models.User)) func() {
	id := rs.notifier.add(fn)
	rs.ensureListener()

	fn(rs.currentUser())

	var once sync.Once
	return func() {
		once.Do(func() {
			rs.notifier.remove(id)
			rs.maybeStopListener()
		})
	}
}

func (rs *RedisStore) Close() error {
	rs.mu.Lock()
	if rs.stop != nil {
		close(rs.stop)
		rs.stop = nil
	}
	pubsub := rs.pubsub
	rs.pubsub = nil
	rs.mu.Unlock()

	if pubsub != nil {
		_ = pubsub.Close()
	}
	return rs.client.Close()
}

func (rs *RedisStore) currentUser() *models.User {
	if s := rs.Read(); s != nil {
		return s.User
	}
	return nil
}

// announce publishes the change tagged with our instance ID. Failure here is
// logged, not surfaced: the local write already succeeded.
func (rs *RedisStore) announce(ctx context.Context) {
	if err := rs.client.Publish(ctx, ChangedChannel, rs.instanceID).Err(); err != nil {
		rs.log.Warn("failed to announce session change", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (rs *RedisStore) ensureListener() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.pubsub != nil {
		return
	}

	pubsub := rs.client.Subscribe(context.Background(), ChangedChannel)
	stop := make(chan struct{})
	rs.pubsub = pubsub
	rs.stop = stop
	go rs.listen(pubsub, stop)
}

func (rs *RedisStore) maybeStopListener() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.notifier.count() > 0 || rs.pubsub == nil {
		return
	}
	close(rs.stop)
	rs.stop = nil
	_ = rs.pubsub.Close()
	rs.pubsub = nil
}

func (rs *RedisStore) listen(pubsub *redis.PubSub, stop chan struct{}) {
	ch := pubsub.Channel()
	for {
		select {
		case <-stop:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Skip the echo of this instance's own publishes.
			if strings.TrimSpace(msg.Payload) == rs.instanceID {
				continue
			}
			rs.notifier.broadcast(rs.currentUser())
		}
	}
}
