package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/m04kA/septic-booking-service/internal/api/handlers"
	"github.com/m04kA/septic-booking-service/internal/domain"
)

const (
	// HeaderUserID ID пользователя, проставляется шлюзом
	HeaderUserID = "X-User-ID"
	// HeaderUserRole роль пользователя, проставляется шлюзом
	HeaderUserRole = "X-User-Role"

	msgMissingUserID = "отсутствует или некорректен ID пользователя"
	msgInvalidRole   = "отсутствует или некорректна роль пользователя"
)

type actorKey struct{}

// Auth извлекает участника из заголовков X-User-ID и X-User-Role.
// Аутентификация выполняется шлюзом, сервис только читает идентичность.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(HeaderUserID)), 10, 64)
		if err != nil || id <= 0 {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		role := domain.Role(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderUserRole))))
		if !role.IsValid() {
			handlers.RespondUnauthorized(w, msgInvalidRole)
			return
		}

		ctx := WithActor(r.Context(), domain.Actor{ID: id, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithActor кладёт участника в контекст
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor возвращает участника из контекста
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}
