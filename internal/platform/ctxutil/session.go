package ctxutil

import "context"

type sessionDataKey struct{}

// SessionData carries the identity handle picked on the login screen.
type SessionData struct {
	Username string
}

func WithSessionData(ctx context.Context, sd *SessionData) context.Context {
	return context.WithValue(ctx, sessionDataKey{}, sd)
}

func GetSessionData(ctx context.Context) *SessionData {
	if sd, ok := ctx.Value(sessionDataKey{}).(*SessionData); ok {
		return sd
	}
	return nil
}

// SessionUsername returns the session identity handle or "".
func SessionUsername(ctx context.Context) string {
	if sd := GetSessionData(ctx); sd != nil {
		return sd.Username
	}
	return ""
}
