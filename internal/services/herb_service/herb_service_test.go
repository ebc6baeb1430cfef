package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"herbarium/internal/domain/models"
	"herbarium/internal/repository"
	"herbarium/internal/storage"
	"herbarium/internal/transport/http/dto"
)

type MockHerbRepository struct {
	mock.Mock
}

func (m *MockHerbRepository) CreateHerb(ctx context.Context, herb *models.Herb) (*models.Herb, error) {
	args := m.Called(ctx, herb)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Herb), args.Error(1)
}

func (m *MockHerbRepository) GetHerbBySlug(ctx context.Context, slug string) (*models.Herb, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Herb), args.Error(1)
}

func (m *MockHerbRepository) ListHerbs(ctx context.Context, filter repository.HerbFilter) ([]models.Herb, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Herb), args.Error(1)
}

func (m *MockHerbRepository) UpdateHerbFields(ctx context.Context, herbID uuid.UUID, updates map[string]interface{}) error {
	args := m.Called(ctx, herbID, updates)
	return args.Error(0)
}

func (m *MockHerbRepository) MutateHerbSections(ctx context.Context, herbID uuid.UUID, fn func(current models.SectionList) (models.SectionList, bool, error)) (models.SectionList, error) {
	args := m.Called(ctx, herbID)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	var current models.SectionList
	if args.Get(0) != nil {
		current = args.Get(0).(models.SectionList)
	}
	updated, _, err := fn(current)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (m *MockHerbRepository) DeleteHerb(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func storedHerb() *models.Herb {
	return &models.Herb{
		ID:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Slug:      "chamomile",
		Name:      "Chamomile",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestCreateHerb_DerivesSlugFromName(t *testing.T) {
	repo := new(MockHerbRepository)
	svc := NewHerbService(testLogger(), repo)

	repo.On("CreateHerb", mock.Anything, mock.MatchedBy(func(h *models.Herb) bool {
		return h.Slug == "stinging-nettle" && h.Name == "Stinging Nettle"
	})).Return(storedHerb(), nil)

	_, err := svc.CreateHerb(context.Background(), dto.CreateHerbRequest{Name: "Stinging Nettle"})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreateHerb_NormalizesProvidedSlug(t *testing.T) {
	repo := new(MockHerbRepository)
	svc := NewHerbService(testLogger(), repo)

	repo.On("CreateHerb", mock.Anything, mock.MatchedBy(func(h *models.Herb) bool {
		return h.Slug == "wild-garlic"
	})).Return(storedHerb(), nil)

	_, err := svc.CreateHerb(context.Background(), dto.CreateHerbRequest{Name: "Garlic", Slug: "Wild Garlic!"})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreateHerb_UnusableName(t *testing.T) {
	repo := new(MockHerbRepository)
	svc := NewHerbService(testLogger(), repo)

	_, err := svc.CreateHerb(context.Background(), dto.CreateHerbRequest{Name: "!!!"})

	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))
	repo.AssertNotCalled(t, "CreateHerb")
}

func TestCreateHerb_DuplicateSlug(t *testing.T) {
	repo := new(MockHerbRepository)
	svc := NewHerbService(testLogger(), repo)

	repo.On("CreateHerb", mock.Anything, mock.Anything).Return(nil, storage.ErrHerbExists)

	_, err := svc.CreateHerb(context.Background(), dto.CreateHerbRequest{Name: "Chamomile"})

	assert.ErrorIs(t, err, storage.ErrHerbExists)
}

func TestGetHerb_NotFound(t *testing.T) {
	repo := new(MockHerbRepository)
	svc := NewHerbService(testLogger(), repo)

	repo.On("GetHerbBySlug", mock.Anything, "missing").Return(nil, storage.ErrHerbNotFound)

	_, err := svc.GetHerb(context.Background(), "missing")

	assert.ErrorIs(t, err, storage.ErrHerbNotFound)
}

func TestListHerbs_PassesFilter(t *testing.T) {
	repo := new(MockHerbRepository)
	svc := NewHerbService(testLogger(), repo)

	repo.On("ListHerbs", mock.Anything, repository.HerbFilter{Query: "mint", Letter: "m"}).
		Return([]models.Herb{*storedHerb()}, nil)

	herbs, err := svc.ListHerbs(context.Background(), "mint", "m")

	require.NoError(t, err)
	assert.Len(t, herbs, 1)
	repo.AssertExpectations(t)
}

func TestUpdateHerb_NoChangesSkipsWrite(t *testing.T) {
	repo := new(MockHerbRepository)
	svc := NewHerbService(testLogger(), repo)

	herb := storedHerb()
	repo.On("GetHerbBySlug", mock.Anything, "chamomile").Return(herb, nil)

	updated, err := svc.UpdateHerb(context.Background(), "chamomile", dto.UpdateHerbRequest{})

	require.NoError(t, err)
	assert.Equal(t, herb, updated)
	repo.AssertNotCalled(t, "UpdateHerbFields")
}

func TestUpdateHerb_SlugChangeRefetchesByNewSlug(t *testing.T) {
	repo := new(MockHerbRepository)
	svc := NewHerbService(testLogger(), repo)

	herb := storedHerb()
	renamed := *herb
	renamed.Slug = "german-chamomile"

	newSlug := "German Chamomile"
	repo.On("GetHerbBySlug", mock.Anything, "chamomile").Return(herb, nil).Once()
	repo.On("UpdateHerbFields", mock.Anything, herb.ID, mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["slug"] == "german-chamomile"
	})).Return(nil)
	repo.On("GetHerbBySlug", mock.Anything, "german-chamomile").Return(&renamed, nil).Once()

	updated, err := svc.UpdateHerb(context.Background(), "chamomile", dto.UpdateHerbRequest{Slug: &newSlug})

	require.NoError(t, err)
	assert.Equal(t, "german-chamomile", updated.Slug)
	repo.AssertExpectations(t)
}

func TestUpdateHerb_RejectsDuplicateSectionIDs(t *testing.T) {
	repo := new(MockHerbRepository)
	svc := NewHerbService(testLogger(), repo)

	repo.On("GetHerbBySlug", mock.Anything, "chamomile").Return(storedHerb(), nil)

	sections := []dto.SectionPayload{
		{ID: "dup", Title: "A", Kind: "richtext"},
		{ID: "dup", Title: "B", Kind: "richtext"},
	}

	_, err := svc.UpdateHerb(context.Background(), "chamomile", dto.UpdateHerbRequest{CustomSections: &sections})

	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))
	repo.AssertNotCalled(t, "UpdateHerbFields")
}

func TestDeleteHerb_RepoError(t *testing.T) {
	repo := new(MockHerbRepository)
	svc := NewHerbService(testLogger(), repo)

	wantErr := errors.New("connection reset")
	repo.On("DeleteHerb", mock.Anything, "chamomile").Return(wantErr)

	err := svc.DeleteHerb(context.Background(), "chamomile")

	assert.ErrorIs(t, err, wantErr)
}
