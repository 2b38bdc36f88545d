package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/service/idempotency"
)

// HeaderIdempotencyKey — необязательный заголовок для повторяемых POST-запросов.
const HeaderIdempotencyKey = "Idempotency-Key"

// headerIdempotentReplay выставляется на ответах, взятых из сохранённой записи.
const headerIdempotentReplay = "Idempotent-Replayed"

// IdempotencyRecorder принимает исходы запросов с Idempotency-Key.
type IdempotencyRecorder interface {
	RecordIdempotentRequest(outcome string)
}

// bodyRecorder дублирует тело ответа, чтобы сохранить его под ключом.
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency повторяет сохранённый ответ для POST с уже обработанным Idempotency-Key.
// Запросы без заголовка проходят без изменений.
func Idempotency(guard *idempotency.Guard, recorder IdempotencyRecorder, logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		if guard == nil || key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			RespondError(c, http.StatusBadRequest, codeBadRequest, err)
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		hash := idempotency.HashRequest(c.Request.Method, c.Request.URL.Path, body)
		decision, record, err := guard.Begin(key, hash)
		if err != nil {
			logger.WithError(err).WithField("idempotency_key", key).Warn("idempotency check failed")
			RespondError(c, http.StatusInternalServerError, codeInternal, err)
			c.Abort()
			return
		}
		if recorder != nil {
			recorder.RecordIdempotentRequest(decision.String())
		}

		switch decision {
		case idempotency.Replay:
			c.Header(headerIdempotentReplay, "true")
			c.Data(record.HTTPStatus, gin.MIMEJSON, record.ResponseBody)
			c.Abort()
			return
		case idempotency.InProgress:
			RespondError(c, http.StatusConflict, codeIdemInProgress, errors.New("request with this idempotency key is still being processed"))
			c.Abort()
			return
		case idempotency.Mismatch:
			RespondError(c, http.StatusConflict, codeIdemReused, errors.New("idempotency key was already used with a different request"))
			c.Abort()
			return
		}

		writer := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = writer

		complete := func(status int, body []byte) {
			if err := guard.Complete(key, status, body); err != nil {
				logger.WithError(err).WithField("idempotency_key", key).Warn("failed to store idempotent response")
			}
		}

		completed := false
		defer func() {
			if completed {
				return
			}
			// Паника в обработчике не должна оставлять ключ в processing.
			recovered := recover()
			status, body := panicResponse(writer)
			complete(status, body)
			if recovered != nil {
				panic(recovered)
			}
		}()

		c.Next()
		complete(writer.Status(), writer.body.Bytes())
		completed = true
	}
}

// panicResponse возвращает ответ, который сохраняется под ключом после паники.
func panicResponse(writer *bodyRecorder) (int, []byte) {
	if writer.Status() >= http.StatusInternalServerError && writer.body.Len() > 0 {
		return writer.Status(), writer.body.Bytes()
	}
	body, err := json.Marshal(ErrorEnvelope{Error: APIError{Message: "internal server error", Code: codeInternal}})
	if err != nil {
		body = nil
	}
	return http.StatusInternalServerError, body
}
