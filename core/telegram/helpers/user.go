package helpers

import "context"

// CurrentUser loads the sender's profile through any service exposing
// GetUserByTelegramID, keeping handlers decoupled from the concrete
// user model.
func CurrentUser[T any](
	ctx context.Context,
	svc interface {
		GetUserByTelegramID(context.Context, int64) (T, error)
	},
	senderID int64,
) (T, error) {
	var zero T
	if svc == nil {
		return zero, nil
	}
	return svc.GetUserByTelegramID(ctx, senderID)
}
