package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// DefaultTTL — срок хранения ответа по Idempotency-Key.
const DefaultTTL = 24 * time.Hour

// Decision — результат проверки ключа перед выполнением запроса.
type Decision int

const (
	// Proceed: ключ новый, запрос выполняется, ответ нужно сохранить через Complete.
	Proceed Decision = iota
	// Replay: ответ уже сохранён и возвращается без повторного выполнения.
	Replay
	// InProgress: запрос с тем же ключом ещё выполняется.
	InProgress
	// Mismatch: ключ уже использован с другим телом запроса.
	Mismatch
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case Replay:
		return "replayed"
	case InProgress:
		return "in_progress"
	case Mismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// Guard решает, выполнять ли запрос с Idempotency-Key.
type Guard struct {
	repo domain.IdempotencyRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewGuard создаёт Guard поверх repo. ttl <= 0 заменяется на DefaultTTL.
func NewGuard(repo domain.IdempotencyRepository, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Guard{
		repo: repo,
		ttl:  ttl,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// HashRequest считает отпечаток запроса по методу, пути и телу.
func HashRequest(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Begin регистрирует ключ. Для Replay возвращает сохранённую запись.
func (g *Guard) Begin(key, requestHash string) (Decision, domain.IdempotencyRecord, error) {
	record, err := g.repo.CreateProcessing(key, requestHash, g.now().Add(g.ttl))
	switch {
	case err == nil:
		return Proceed, record, nil
	case errors.Is(err, domain.ErrIdempotencyHashMismatch):
		return Mismatch, record, nil
	case errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists):
		if record.Replayable() {
			return Replay, record, nil
		}
		return InProgress, record, nil
	default:
		return Proceed, domain.IdempotencyRecord{}, err
	}
}

// Complete сохраняет ответ. Ответы 5xx помечаются как failed.
func (g *Guard) Complete(key string, httpStatus int, body []byte) error {
	if httpStatus >= http.StatusInternalServerError {
		return g.repo.MarkFailed(key, body, httpStatus)
	}
	return g.repo.MarkDone(key, body, httpStatus)
}
