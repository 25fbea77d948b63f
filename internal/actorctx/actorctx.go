package actorctx

import (
	"context"

	"github.com/geocoder89/todohub/internal/auth"
)

type ctxKey struct{}

// WithIdentity attaches the verified caller to ctx so code below the HTTP
// layer can read it without depending on gin.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	v, ok := ctx.Value(ctxKey{}).(auth.Identity)

	return v, ok && v.Username != ""
}
