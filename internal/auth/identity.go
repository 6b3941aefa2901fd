package auth

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/thereayou/backstagepass/internal/database"
	"github.com/thereayou/backstagepass/internal/models"
	"github.com/thereayou/backstagepass/pkg/auth"
	"gorm.io/gorm"
)

// Resolver сопоставляет предъявленный токен активной сессии
// пользователя. Отсутствие сессии — штатный исход (nil, nil), ошибкой
// считается только отказ Redis или базы.
type Resolver struct {
	jwt   *auth.JWTManager
	redis *redis.Client
	db    *database.Database
}

func NewResolver(jwtMgr *auth.JWTManager, rdb *redis.Client, db *database.Database) *Resolver {
	return &Resolver{jwt: jwtMgr, redis: rdb, db: db}
}

func (r *Resolver) Resolve(ctx context.Context, credential string) (*models.User, error) {
	if credential == "" {
		return nil, nil
	}

	// Разлогиненные токены лежат в черном списке до истечения
	exists, err := r.redis.Exists(ctx, "blacklist:"+credential).Result()
	if err != nil {
		return nil, err
	}
	if exists > 0 {
		return nil, nil
	}

	claims, err := r.jwt.Verify(credential)
	if err != nil {
		return nil, nil
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, nil
	}

	user, err := r.db.GetUser(userID.String())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}
