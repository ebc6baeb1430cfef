package models

import (
	"bytes"
	"fmt"
)

// MaxUploadSize предельный размер загружаемого изображения.
const MaxUploadSize = 5 * 1024 * 1024 // 5 MiB

// fileSignatures магические байты для каждого разрешённого MIME-типа.
// Заголовок Content-Type контролируется клиентом, поэтому одного списка
// разрешённых типов недостаточно: начало файла обязано совпасть с сигнатурой.
var fileSignatures = map[string][][]byte{
	"image/jpeg": {{0xFF, 0xD8, 0xFF}},
	"image/jpg":  {{0xFF, 0xD8, 0xFF}},
	"image/png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	"image/webp": {[]byte("RIFF")},
}

// Admission типизированный результат проверки загрузки. Отклонение —
// ожидаемый пользовательский исход, а не ошибка программы.
type Admission struct {
	Allowed bool
	Reason  string
}

func admitted() Admission {
	return Admission{Allowed: true}
}

func rejected(format string, args ...any) Admission {
	return Admission{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// AdmitUpload проверяет загружаемый файл до записи хоть одного байта в
// хранилище: размер, разрешённый тип и совпадение сигнатуры.
func AdmitUpload(head []byte, declaredMime string, declaredSize int64) Admission {
	if declaredSize > MaxUploadSize {
		return rejected("file size %d exceeds %d byte limit", declaredSize, MaxUploadSize)
	}

	signatures, ok := fileSignatures[declaredMime]
	if !ok {
		return rejected("content type %q is not allowed, only JPEG, PNG and WebP images", declaredMime)
	}

	for _, sig := range signatures {
		if len(head) >= len(sig) && bytes.Equal(head[:len(sig)], sig) {
			return admitted()
		}
	}
	return rejected("file signature does not match declared type %q, file may be corrupted or spoofed", declaredMime)
}
