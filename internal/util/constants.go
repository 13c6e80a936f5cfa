package util

// DateFormat 날짜 키 형식, ClockFormat 알림 시각 형식
const (
	DateFormat  = "2006-01-02"
	ClockFormat = "15:04"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 첨부 파일로 허용하는 MIME 유형
var AllowedUploadTypes = []string{
	"image/",
	"application/pdf",
	"text/plain",
	"application/zip",
	"application/octet-stream",
}
