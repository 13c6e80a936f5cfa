package util

import (
	"strconv"
)

// MustParseUint 문자열을 부호 없는 정수로 바꾸고, 실패하면 0을 돌려준다
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

func FormatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
