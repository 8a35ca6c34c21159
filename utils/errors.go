package utils

import "fmt"

/*
WrapError 为 err 附加上下文信息，err 为 nil 时返回 nil。
*/
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", msg, err)
}

/*
WrapErrorf 与 WrapError 相同，但支持格式化上下文信息。
*/
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
