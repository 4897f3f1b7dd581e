package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

const (
	msgInternalError      = "внутренняя ошибка сервера"
	msgStoreUnavailable   = "хранилище временно недоступно, повторите попытку позже"
	maxRequestBodyBytes   = 1 << 20
	contentTypeHeader     = "Content-Type"
	contentTypeJSON       = "application/json"
	contentTypeXLSX       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentDispositionHdr = "Content-Disposition"
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RespondJSON пишет JSON ответ с указанным статусом
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set(contentTypeHeader, contentTypeJSON)
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError пишет JSON ошибку
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Code: status, Message: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func RespondConflict(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusConflict, message)
}

func RespondTooManyRequests(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusTooManyRequests, message)
}

func RespondServiceUnavailable(w http.ResponseWriter) {
	RespondError(w, http.StatusServiceUnavailable, msgStoreUnavailable)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// RespondFile отдаёт бинарный файл как вложение
func RespondFile(w http.ResponseWriter, contentType, fileName string, data []byte) {
	w.Header().Set(contentTypeHeader, contentType)
	w.Header().Set(contentDispositionHdr, fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// RespondXLSX отдаёт Excel файл
func RespondXLSX(w http.ResponseWriter, fileName string, data []byte) {
	RespondFile(w, contentTypeXLSX, fileName, data)
}

// StatusFromError сопоставляет ошибку ядра с HTTP статусом
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSlotUnavailable),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondDomainError отвечает по таксономии ошибок ядра.
// message используется для 4xx; для 5xx клиенту отдаётся общее сообщение.
func RespondDomainError(w http.ResponseWriter, err error, message string) {
	status := StatusFromError(err)
	switch status {
	case http.StatusServiceUnavailable:
		RespondServiceUnavailable(w)
	case http.StatusInternalServerError:
		RespondInternalError(w)
	default:
		RespondError(w, status, message)
	}
}

// DecodeJSON декодирует тело запроса, отклоняя неизвестные поля
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

// PathInt64 извлекает положительный int64 из переменной пути
func PathInt64(r *http.Request, name string) (int64, error) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return 0, fmt.Errorf("missing path variable %q", name)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive", name)
	}
	return v, nil
}

// ParseDate парсит дату YYYY-MM-DD в часовом поясе бизнеса
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(domain.DateFormat, raw, loc)
}

// ParseOptionalDate парсит необязательный параметр даты
func ParseOptionalDate(raw string, loc *time.Location) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := ParseDate(raw, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
