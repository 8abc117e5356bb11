package ports

import "time"

type CachePort interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	// SetNX ставит ключ только если его нет; возвращает true если поставил.
	SetNX(key string, value []byte, ttl time.Duration) (bool, error)
	Delete(key string) error
}
