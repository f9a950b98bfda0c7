package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/crawlctl/coordinator/internal/domain"
)

// ErrEmptyAddress is returned when Redis address is not configured.
var ErrEmptyAddress = errors.New("redis address is required")

// Config holds Redis connection configuration for the snapshot store.
type Config struct {
	Address  string `default:"localhost:6379" env:"REDIS_ADDRESS"`
	Password string `default:""               env:"REDIS_PASSWORD"`
	DB       int    `default:"0"              env:"REDIS_DB"`
}

// field names of the per-run Redis hash; one field per §4.5 slot.
const (
	fieldPendingQueue = "pendingQueue"
	fieldVisitedUrls  = "visitedUrls"
	fieldDomainStates = "domainStates"
	fieldRunState     = "runState"
	fieldRecentErrors = "recentErrors"
)

func hashKey(runID string) string {
	return "coordinator:run:" + runID
}

// RedisStore persists each run's snapshot as a Redis hash, one field per
// slot, written inside a single pipelined transaction so that readers never
// observe a partial write (§4.5 "Readers never see partial state").
type RedisStore struct {
	client *redis.Client
}

// NewRedisClient builds a go-redis client and verifies connectivity, in the
// style of the shared infrastructure redis client constructor.
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// NewRedisStore wraps an already-connected client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, snap domain.Snapshot) error {
	pendingQueue, err := json.Marshal(snap.PendingQueue)
	if err != nil {
		return fmt.Errorf("marshal pendingQueue: %w", err)
	}
	visitedUrls, err := json.Marshal(snap.VisitedUrls)
	if err != nil {
		return fmt.Errorf("marshal visitedUrls: %w", err)
	}
	domainStates, err := json.Marshal(snap.DomainStates)
	if err != nil {
		return fmt.Errorf("marshal domainStates: %w", err)
	}
	runState, err := json.Marshal(snap.RunState)
	if err != nil {
		return fmt.Errorf("marshal runState: %w", err)
	}
	recentErrors, err := json.Marshal(snap.RecentErrors)
	if err != nil {
		return fmt.Errorf("marshal recentErrors: %w", err)
	}

	key := hashKey(snap.RunID)

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]any{
			fieldPendingQueue: pendingQueue,
			fieldVisitedUrls:  visitedUrls,
			fieldDomainStates: domainStates,
			fieldRunState:     runState,
			fieldRecentErrors: recentErrors,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save snapshot for run %s: %w", snap.RunID, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, runID string) (domain.Snapshot, bool, error) {
	key := hashKey(runID)

	result, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("load snapshot for run %s: %w", runID, err)
	}
	if len(result) == 0 {
		return domain.Snapshot{}, false, nil
	}

	snap := domain.Snapshot{RunID: runID}

	// Every slot tolerates absence (§4.5 "must tolerate missing slots").
	if raw, ok := result[fieldPendingQueue]; ok {
		if err := json.Unmarshal([]byte(raw), &snap.PendingQueue); err != nil {
			return domain.Snapshot{}, false, fmt.Errorf("unmarshal pendingQueue: %w", err)
		}
	}
	if raw, ok := result[fieldVisitedUrls]; ok {
		if err := json.Unmarshal([]byte(raw), &snap.VisitedUrls); err != nil {
			return domain.Snapshot{}, false, fmt.Errorf("unmarshal visitedUrls: %w", err)
		}
	}
	if raw, ok := result[fieldDomainStates]; ok {
		if err := json.Unmarshal([]byte(raw), &snap.DomainStates); err != nil {
			return domain.Snapshot{}, false, fmt.Errorf("unmarshal domainStates: %w", err)
		}
	}
	if raw, ok := result[fieldRunState]; ok {
		if err := json.Unmarshal([]byte(raw), &snap.RunState); err != nil {
			return domain.Snapshot{}, false, fmt.Errorf("unmarshal runState: %w", err)
		}
	}
	if raw, ok := result[fieldRecentErrors]; ok {
		if err := json.Unmarshal([]byte(raw), &snap.RecentErrors); err != nil {
			return domain.Snapshot{}, false, fmt.Errorf("unmarshal recentErrors: %w", err)
		}
	}

	return snap, true, nil
}
