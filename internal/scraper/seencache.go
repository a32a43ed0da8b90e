package scraper

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	seenTTL    = 24 * time.Hour
	seenPrefix = "imovelsync:visto:"
)

// SeenCache lembra por um dia quais URLs de anúncio já passaram pela
// coleta, evitando rebaixar as mesmas páginas em execuções próximas.
// Qualquer erro de Redis é tratado como cache frio: a coleta segue e o
// dedup por fingerprint segura as repetições.
type SeenCache struct {
	Client *redis.Client
}

func NewSeenCache(client *redis.Client) *SeenCache {
	return &SeenCache{Client: client}
}

func (s *SeenCache) Seen(ctx context.Context, url string) bool {
	n, err := s.Client.Exists(ctx, seenPrefix+url).Result()
	if err != nil {
		return false
	}
	return n > 0
}

func (s *SeenCache) MarkSeen(ctx context.Context, url string) {
	if err := s.Client.Set(ctx, seenPrefix+url, "1", seenTTL).Err(); err != nil {
		log.Printf("[scraper] erro ao marcar %s como visto: %v", url, err)
	}
}
