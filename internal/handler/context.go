package handler

type ContextKey string

var (
	SubCtxKey     ContextKey = "sub"
	IsAdminCtxKey ContextKey = "isAdmin"
	UserInfoCtx   ContextKey = "userInfo"
	RotationCtx   ContextKey = "rotation"
	TemplateCtx   ContextKey = "template"
	PeriodCtx     ContextKey = "period"
)
