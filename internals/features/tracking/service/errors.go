// file: internals/features/tracking/service/errors.go
package service

import "errors"

// أخطاء المحرك: تُحوَّل في طبقة الـ controller إلى رموز HTTP
var (
	ErrUnknownEmployee    = errors.New("employee is not assigned to any geofence")
	ErrInvalidCoordinates = errors.New("coordinates are out of range")
	ErrStaleSample        = errors.New("sample timestamp is outside the accepted window")
	ErrGeofenceNotFound   = errors.New("geofence not found")
	ErrPolicyUnavailable  = errors.New("geofence policy is missing or malformed")
)
