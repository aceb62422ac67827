// file: internals/features/tracking/repository/errors.go
package repository

import "errors"

// ErrSessionNotOpen محاولة إغلاق جلسة غير موجودة أو مغلقة سابقاً
var ErrSessionNotOpen = errors.New("session is not open")
