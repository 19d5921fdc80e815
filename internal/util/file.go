package util

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
)

// ValidateMimeType 深度校验文件 MIME 类型
// allowedTypes: 允许的 MIME 前缀或完整类型，如 "image/", "application/pdf"
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	return matchMimeType(buffer[:n], allowedTypes)
}

// DetectMimeType 对已读入内存的文件内容做同样的校验
func DetectMimeType(data []byte, allowedTypes []string) (string, error) {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return matchMimeType(head, allowedTypes)
}

func matchMimeType(head []byte, allowedTypes []string) (string, error) {
	// 检测 MIME 类型
	mimeType := http.DetectContentType(head)
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

// ReadLimited 读取最多 limit 字节，超出时报错
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, errors.New("file too large")
	}
	return buf.Bytes(), nil
}

func IsPDF(mimeType string) bool {
	return mimeType == MimePDF
}
