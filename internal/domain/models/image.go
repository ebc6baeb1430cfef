package models

import (
	"time"

	"github.com/google/uuid"
)

// Image представляет изображение травы. Позиции внутри коллекции одной
// травы образуют непрерывную нумерацию с нуля; главным (primary) может
// быть не больше одного изображения.
type Image struct {
	ID        uuid.UUID `json:"id" db:"id"`
	HerbID    uuid.UUID `json:"herb_id" db:"herb_id"`
	URL       string    `json:"url" db:"url"`
	Alt       *string   `json:"alt,omitempty" db:"alt"`
	Position  int       `json:"position" db:"position"`
	IsPrimary bool      `json:"is_primary" db:"is_primary"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AppendUploaded добавляет загруженное изображение в конец коллекции.
// Первое изображение пустой коллекции автоматически становится главным;
// последующие загрузки — никогда.
func AppendUploaded(images []Image, img Image) []Image {
	img.Position = len(images)
	img.IsPrimary = len(images) == 0

	out := make([]Image, 0, len(images)+1)
	out = append(out, images...)
	out = append(out, img)
	return out
}

// RemoveImage удаляет изображение и перенумеровывает остаток в сплошную
// нумерацию с нуля, сохраняя относительный порядок. Флаг primary не
// переназначается: после удаления главного изображения коллекция остаётся
// без главного, пока админ не выберет новое.
func RemoveImage(images []Image, id uuid.UUID) []Image {
	out := make([]Image, 0, len(images))
	for _, img := range images {
		if img.ID == id {
			continue
		}
		img.Position = len(out)
		out = append(out, img)
	}
	return out
}

// SetPrimaryImage делает указанное изображение главным, снимая флаг со всех
// остальных. Отсутствующий id — ошибка вызывающей стороны, а не no-op.
func SetPrimaryImage(images []Image, id uuid.UUID) ([]Image, error) {
	found := false
	out := make([]Image, len(images))
	for i, img := range images {
		img.IsPrimary = img.ID == id
		if img.IsPrimary {
			found = true
		}
		out[i] = img
	}
	if !found {
		return nil, &NotFoundError{Resource: "image", ID: id.String()}
	}
	return out, nil
}

// ReorderImages переназначает позиции по индексу id в idOrder. idOrder
// обязан быть перестановкой текущих id. При promoteFirst первое изображение
// нового порядка становится единственным главным.
func ReorderImages(images []Image, idOrder []uuid.UUID, promoteFirst bool) ([]Image, error) {
	if len(idOrder) != len(images) {
		return nil, NewValidationError("order has %d ids, collection has %d images", len(idOrder), len(images))
	}

	byID := make(map[uuid.UUID]Image, len(images))
	for _, img := range images {
		byID[img.ID] = img
	}

	out := make([]Image, 0, len(images))
	for pos, id := range idOrder {
		img, ok := byID[id]
		if !ok {
			return nil, NewValidationError("unknown image id %s in order", id)
		}
		delete(byID, id)

		img.Position = pos
		if promoteFirst {
			img.IsPrimary = pos == 0
		}
		out = append(out, img)
	}

	return out, nil
}

// PrimaryImage возвращает главное изображение коллекции, если оно есть.
func PrimaryImage(images []Image) (Image, bool) {
	for _, img := range images {
		if img.IsPrimary {
			return img, true
		}
	}
	return Image{}, false
}
