package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ordexa/ordexa-api/pkg/config"
)

// Corte de revocación por uid; un token emitido en o antes del corte es inválido.
const revokedKeyPrefix = "session:revoked:"

// Los cortes expiran solos pasada la vida máxima de un token, con margen.
const revocationTTL = 24 * time.Hour

// SessionStore implementa la revocación de sesiones sobre Redis: "revocar todas
// las sesiones de un uid" se traduce en guardar un instante de corte; el
// middleware de auth rechaza tokens emitidos en o antes de ese instante.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore conecta a Redis y verifica la conexión.
func NewSessionStore(ctx context.Context, cfg config.RedisConfig) (*SessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &SessionStore{client: client}, nil
}

// NewSessionStoreWithClient inyecta un cliente ya construido (tests con miniredis).
func NewSessionStoreWithClient(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// RevokeAll invalida todas las sesiones del uid emitidas hasta `at` inclusive.
func (s *SessionStore) RevokeAll(ctx context.Context, uid string, at time.Time) error {
	err := s.client.Set(ctx, revokedKeyPrefix+uid, strconv.FormatInt(at.UnixMilli(), 10), revocationTTL).Err()
	if err != nil {
		return fmt.Errorf("revocar sesiones de %s: %w", uid, err)
	}
	return nil
}

// IsRevoked informa si un token del uid emitido en issuedAt quedó invalidado.
// Ante ausencia de corte no hay revocación.
func (s *SessionStore) IsRevoked(ctx context.Context, uid string, issuedAt time.Time) (bool, error) {
	val, err := s.client.Get(ctx, revokedKeyPrefix+uid).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("consultar revocación de %s: %w", uid, err)
	}
	cutoffMillis, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, fmt.Errorf("corte de revocación corrupto para %s: %w", uid, err)
	}
	cutoff := time.UnixMilli(cutoffMillis)
	return !issuedAt.After(cutoff), nil
}

// Close libera la conexión.
func (s *SessionStore) Close() error {
	return s.client.Close()
}
