package util

import "errors"

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrPermissionDenied   = errors.New("permission denied")

	ErrChildNotFound    = errors.New("child not found")
	ErrCategoryNotFound = errors.New("activity category not found")
	ErrItemNotFound     = errors.New("activity item not found")
	ErrSessionNotFound  = errors.New("session not found")

	// ErrSpeechUnavailable 转写服务不可用，属可重试的瞬时错误
	ErrSpeechUnavailable = errors.New("speech transcription service unavailable")
)
