package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/UkralStul/posts-service/internal/domain"
	"github.com/UkralStul/posts-service/internal/service"
)

// UserHeader - заголовок, в котором внешний слой аутентификации передает id пользователя.
const UserHeader = "X-User-ID"

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("httpapi: failed to encode response: %v", err)
	}
}

// statusFor сопоставляет вид ошибки с HTTP статусом.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrDuplicateLike), errors.Is(err, domain.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrInvalidParent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	if status == http.StatusInternalServerError {
		log.Printf("httpapi: %s %s: %v", r.Method, r.URL.Path, err)
		resp.Error = http.StatusText(status)
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field
	}
	writeJSON(w, status, resp)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &domain.ValidationError{Field: "body", Msg: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}

// userID возвращает пользователя запроса или пустую строку для анонима.
func userID(r *http.Request) string {
	return r.Header.Get(UserHeader)
}

// requireUser отклоняет анонимные запросы с 401.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID(r) == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// pageRequest читает page и page_size. Отсутствующие значения оставляют умолчания сервиса.
func pageRequest(r *http.Request) (service.PageRequest, error) {
	var req service.PageRequest
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return req, &domain.ValidationError{Field: "page", Msg: "page must be a positive integer"}
		}
		req.Page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return req, &domain.ValidationError{Field: "page_size", Msg: "page_size must be a positive integer"}
		}
		req.Size = n
	}
	return req, nil
}
