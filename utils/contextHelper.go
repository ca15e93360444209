package utils

import (
	"context"

	"github.com/apexcadcam/apex-item/appctx"
)

// Alias the shared context key type so existing code keeps working.
type contextKey = appctx.ContextKey

var (
	ContextKeyToken         = appctx.ContextKeyToken
	ContextKeySite          = appctx.ContextKeySite
	ContextKeyUsername      = appctx.ContextKeyUsername
	ContextKeyUserId        = appctx.ContextKeyUserId
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId

	ContextKeyIsSystemManager = appctx.ContextKeyIsSystemManager
	ContextKeyRunInline       = appctx.ContextKeyRunInline
)

func GetSiteFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeySite)
}

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUsername)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func IsSystemManager(ctx context.Context) bool {
	v, ok := appctx.GetBool(ctx, ContextKeyIsSystemManager)
	return ok && v
}

func RunInline(ctx context.Context) bool {
	v, ok := appctx.GetBool(ctx, ContextKeyRunInline)
	return ok && v
}

func SetTokenInContext(ctx context.Context, token string) context.Context {
	return appctx.Set(ctx, ContextKeyToken, token)
}

func SetSiteInContext(ctx context.Context, site string) context.Context {
	return appctx.Set(ctx, ContextKeySite, site)
}

func SetUsernameInContext(ctx context.Context, username string) context.Context {
	return appctx.Set(ctx, ContextKeyUsername, username)
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return appctx.Set(ctx, ContextKeyUserId, userId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func SetIsSystemManagerInContext(ctx context.Context, isSystemManager bool) context.Context {
	return appctx.Set(ctx, ContextKeyIsSystemManager, isSystemManager)
}

func SetRunInlineInContext(ctx context.Context, runInline bool) context.Context {
	return appctx.Set(ctx, ContextKeyRunInline, runInline)
}
