package dto

import (
	"herbarium/internal/domain/models"

	"github.com/google/uuid"
)

// UploadImageInput одно изображение из multipart-формы, уже прочитанное
// в память. Допуск (размер/тип/сигнатура) проверяется до записи в
// файловое хранилище.
type UploadImageInput struct {
	Filename string
	MimeType string
	Size     int64
	Data     []byte
	Alt      *string
}

// RejectedFile отклонённый файл с причиной — ожидаемый пользовательский
// исход, а не ошибка сервера.
type RejectedFile struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// UploadImagesResult итог загрузки: либо созданные изображения, либо
// список отклонённых файлов.
type UploadImagesResult struct {
	Images   []models.Image `json:"images,omitempty"`
	Rejected []RejectedFile `json:"rejected,omitempty"`
}

type ReorderImagesRequest struct {
	Order               []uuid.UUID `json:"order" validate:"required,min=1"`
	SetPrimaryFromFirst bool        `json:"set_primary_from_first"`
}

type SetPrimaryImageRequest struct {
	ImageID uuid.UUID `json:"image_id" validate:"required"`
}

type UpdateImageAltRequest struct {
	Alt *string `json:"alt" validate:"omitempty,max=200"`
}
