package food

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"food-delivery/internal/auth"
	"food-delivery/internal/models"
	"food-delivery/internal/modules/notification"
	"food-delivery/internal/modules/notification/notificationtest"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepo struct {
	foods map[string]*models.Food
	seq   int
}

func (f *fakeRepo) Create(ctx context.Context, req models.CreateFoodRequest) (*models.Food, error) {
	for _, existing := range f.foods {
		if existing.Name == req.Name {
			return nil, fmt.Errorf("%w: a food with this name already exists", models.ErrConflict)
		}
	}
	f.seq++
	food := &models.Food{ID: fmt.Sprintf("f%d", f.seq), Name: req.Name, Price: req.Price, Discount: req.Discount, Available: true, AddedAt: time.Now()}
	f.foods[food.ID] = food
	cp := *food
	return &cp, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id string) (*models.Food, error) {
	food, ok := f.foods[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *food
	return &cp, nil
}

func (f *fakeRepo) Update(ctx context.Context, id string, req models.UpdateFoodRequest) (*models.Food, *models.Food, error) {
	food, ok := f.foods[id]
	if !ok {
		return nil, nil, models.ErrNotFound
	}
	before := *food
	if req.Name != nil {
		food.Name = *req.Name
	}
	if req.Price != nil {
		food.Price = *req.Price
	}
	if req.Discount != nil {
		food.Discount = *req.Discount
	}
	after := *food
	return &before, &after, nil
}

func newTestService() (*Service, *notificationtest.MemoryRepository) {
	notes := notificationtest.NewMemoryRepository()
	notifier := notification.NewService(notes, "admin@example.com", nil, zap.NewNop())
	return NewService(&fakeRepo{foods: map[string]*models.Food{}}, notifier), notes
}

func ptr[T any](v T) *T { return &v }

func TestCreateBroadcasts(t *testing.T) {
	svc, notes := newTestService()

	f, err := svc.Create(context.Background(), models.CreateFoodRequest{Name: "Kacchi Biryani", Price: 350})
	require.NoError(t, err)

	all := notes.All()
	require.Len(t, all, 1)
	assert.Equal(t, models.NotificationBroadcast, all[0].Type)
	assert.Equal(t, "New food item: Kacchi Biryani.", all[0].Message)
	assert.Equal(t, f.ID, all[0].RelatedID)
	assert.Empty(t, all[0].ReadBy)

	_, err = svc.Create(context.Background(), models.CreateFoodRequest{Name: "Kacchi Biryani", Price: 350})
	require.ErrorIs(t, err, models.ErrConflict)
	assert.Len(t, notes.All(), 1)
}

func TestUpdateBroadcastsOnlyWhenDiscountRises(t *testing.T) {
	ctx := context.Background()
	svc, notes := newTestService()
	f, err := svc.Create(ctx, models.CreateFoodRequest{Name: "Fuchka", Price: 80, Discount: 5})
	require.NoError(t, err)
	notes.Reset()

	tests := []struct {
		name      string
		req       models.UpdateFoodRequest
		wantNotes int
	}{
		{name: "price only", req: models.UpdateFoodRequest{Price: ptr(90.0)}, wantNotes: 0},
		{name: "discount lowered", req: models.UpdateFoodRequest{Discount: ptr(2.0)}, wantNotes: 0},
		{name: "discount raised", req: models.UpdateFoodRequest{Discount: ptr(15.0), Name: ptr("Spicy Fuchka")}, wantNotes: 1},
		{name: "discount unchanged", req: models.UpdateFoodRequest{Discount: ptr(15.0)}, wantNotes: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes.Reset()
			_, err := svc.Update(ctx, f.ID, tt.req)
			require.NoError(t, err)
			assert.Len(t, notes.All(), tt.wantNotes)
		})
	}

	got, err := svc.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spicy Fuchka", got.Name)
	assert.Equal(t, 15.0, got.Discount)
}

func TestDiscountMessageUsesPreviousName(t *testing.T) {
	ctx := context.Background()
	svc, notes := newTestService()
	f, err := svc.Create(ctx, models.CreateFoodRequest{Name: "Fuchka", Price: 80})
	require.NoError(t, err)
	notes.Reset()

	_, err = svc.Update(ctx, f.ID, models.UpdateFoodRequest{Name: ptr("Chotpoti"), Discount: ptr(10.0)})
	require.NoError(t, err)
	require.Len(t, notes.All(), 1)
	assert.Equal(t, "Discount added on food item: Fuchka.", notes.All()[0].Message)
}

func TestFoodRoutes(t *testing.T) {
	svc, _ := newTestService()
	f, err := svc.Create(context.Background(), models.CreateFoodRequest{Name: "Fuchka", Price: 80})
	require.NoError(t, err)

	e := echo.New()
	NewHandler(svc).RegisterRoutes(e, e.Group("", auth.Middleware("secret")))

	do := func(method, path, body string, role models.Role) int {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		if role != "" {
			tok, err := auth.SignToken("secret", "someone@example.com", role, time.Hour)
			require.NoError(t, err)
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/foods/"+f.ID, "", ""))
	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/foods/missing", "", ""))
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodPost, "/foods", `{"name":"Jhalmuri","price":40}`, ""))
	assert.Equal(t, http.StatusForbidden, do(http.MethodPost, "/foods", `{"name":"Jhalmuri","price":40}`, models.RoleCustomer))
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/foods", `{"name":"Jhalmuri","price":40,"discount":120}`, models.RoleAdmin))
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, "/foods", `{"name":"Jhalmuri","price":40}`, models.RoleAdmin))
	assert.Equal(t, http.StatusOK, do(http.MethodPatch, "/foods/"+f.ID, `{"discount":10}`, models.RoleAdmin))
}
