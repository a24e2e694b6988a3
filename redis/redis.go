package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Piero-design/VETAQP/config"
	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	Client *redis.Client
}

// NewRedisClient opens a client and ping-tests the connection.
func NewRedisClient(cfg *config.RedisConfig) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis client connection test failed: %w", err)
	}

	return &RedisClient{Client: client}, nil
}

func (r *RedisClient) Close() error {
	return r.Client.Close()
}

// OnlineUser is one entry in a chat room's presence hash.
type OnlineUser struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
}

func presenceKey(roomID uint) string {
	return fmt.Sprintf("chat:room:%d:online_users", roomID)
}

// AddOnlineUser records a participant in the room's presence hash. The key
// expires so a crashed process does not leave ghosts behind.
func (r *RedisClient) AddOnlineUser(ctx context.Context, roomID uint, user OnlineUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	key := presenceKey(roomID)
	field := fmt.Sprintf("%d", user.UserID)
	if err := r.Client.HSet(ctx, key, field, data).Err(); err != nil {
		return err
	}
	return r.Client.Expire(ctx, key, 24*time.Hour).Err()
}

func (r *RedisClient) RemoveOnlineUser(ctx context.Context, roomID, userID uint) error {
	field := fmt.Sprintf("%d", userID)
	return r.Client.HDel(ctx, presenceKey(roomID), field).Err()
}

// GetOnlineUsers lists everyone currently present in the room.
func (r *RedisClient) GetOnlineUsers(ctx context.Context, roomID uint) ([]OnlineUser, error) {
	result, err := r.Client.HGetAll(ctx, presenceKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch online users for room %d: %w", roomID, err)
	}

	users := make([]OnlineUser, 0, len(result))
	for _, data := range result {
		var user OnlineUser
		if err := json.Unmarshal([]byte(data), &user); err != nil {
			log.Printf("Failed to unmarshal online user: %v", err)
			continue
		}
		users = append(users, user)
	}
	return users, nil
}
