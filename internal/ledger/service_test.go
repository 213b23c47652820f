package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newLoaded(t *testing.T, repo *ledger.MockRepository, policy ledger.Policy, items []*ledger.LineItem, ceiling *decimal.Decimal) *ledger.Service {
	t.Helper()

	repo.EXPECT().LoadItems(gomock.Any()).Return(items, nil)
	repo.EXPECT().LoadCeiling(gomock.Any()).Return(ceiling, nil)

	svc := ledger.NewService(repo, policy)
	require.NoError(t, svc.Load(context.Background()))

	return svc
}

func TestService_Add(t *testing.T) {
	type testCase struct {
		name      string
		policy    ledger.Policy
		ceiling   *decimal.Decimal
		draft     ledger.Draft
		setupMock func(m *ledger.MockRepository)
		wantErr   error
		wantTotal decimal.Decimal
	}

	tests := []testCase{
		{
			name:  "Success",
			draft: ledger.Draft{Name: "Milk", UnitPrice: dec("5"), Quantity: 2},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().SaveItems(gomock.Any(), gomock.Len(1)).Return(nil)
			},
			wantTotal: dec("10"),
		},
		{
			name:    "EmptyName",
			draft:   ledger.Draft{Name: "", UnitPrice: dec("5"), Quantity: 1},
			wantErr: ledger.ErrValidation,
		},
		{
			name:    "BlankName",
			draft:   ledger.Draft{Name: "   ", UnitPrice: dec("5"), Quantity: 1},
			wantErr: ledger.ErrValidation,
		},
		{
			name:    "ZeroPrice",
			draft:   ledger.Draft{Name: "X", UnitPrice: decimal.Zero, Quantity: 1},
			wantErr: ledger.ErrValidation,
		},
		{
			name:    "NegativePrice",
			draft:   ledger.Draft{Name: "X", UnitPrice: dec("-1"), Quantity: 1},
			wantErr: ledger.ErrValidation,
		},
		{
			name:    "ZeroQuantity",
			draft:   ledger.Draft{Name: "X", UnitPrice: dec("1"), Quantity: 0},
			wantErr: ledger.ErrValidation,
		},
		{
			name:    "CeilingRequired",
			policy:  ledger.Policy{RequireCeiling: true},
			draft:   ledger.Draft{Name: "Milk", UnitPrice: dec("5"), Quantity: 1},
			wantErr: ledger.ErrCeilingRequired,
		},
		{
			name:    "CeilingRequiredAndSet",
			policy:  ledger.Policy{RequireCeiling: true},
			ceiling: new(dec("50")),
			draft:   ledger.Draft{Name: "Milk", UnitPrice: dec("5"), Quantity: 1},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().SaveItems(gomock.Any(), gomock.Len(1)).Return(nil)
			},
			wantTotal: dec("5"),
		},
		{
			name:  "RepoError",
			draft: ledger.Draft{Name: "Milk", UnitPrice: dec("5"), Quantity: 1},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().SaveItems(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
			},
			wantErr:   errors.New("disk full"),
			wantTotal: decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			svc := newLoaded(t, repo, tt.policy, nil, tt.ceiling)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := svc.Add(context.Background(), tt.draft)

			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Nil(t, got)

				if errors.Is(tt.wantErr, ledger.ErrValidation) || errors.Is(tt.wantErr, ledger.ErrCeilingRequired) {
					assert.ErrorIs(t, err, tt.wantErr)
				}

				assert.True(t, svc.AggregateTotal().IsZero(), "failed add must not change the ledger")

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.True(t, tt.wantTotal.Equal(got.LineTotal()), "line total %s", got.LineTotal())
			assert.True(t, tt.wantTotal.Equal(svc.AggregateTotal()))
		})
	}
}

func TestService_Add_Appends(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := newLoaded(t, repo, ledger.Policy{}, nil, nil)

	repo.EXPECT().SaveItems(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	first, err := svc.Add(context.Background(), ledger.Draft{Name: "Milk", UnitPrice: dec("5"), Quantity: 2})
	require.NoError(t, err)

	second, err := svc.Add(context.Background(), ledger.Draft{Name: "Bread", UnitPrice: dec("3.50"), Quantity: 1, Barcode: " 789 "})
	require.NoError(t, err)

	items := svc.Items()
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, second.ID, items[1].ID)
	assert.Equal(t, "789", items[1].Barcode)
	assert.True(t, dec("13.50").Equal(svc.AggregateTotal()))
}

func TestService_Update(t *testing.T) {
	existing := &ledger.LineItem{ID: uuid.New(), Name: "Milk", UnitPrice: dec("5"), Quantity: 2}

	type testCase struct {
		name      string
		id        uuid.UUID
		draft     ledger.Draft
		setupMock func(m *ledger.MockRepository)
		wantErr   error
		wantTotal decimal.Decimal
	}

	tests := []testCase{
		{
			name:  "Success",
			id:    existing.ID,
			draft: ledger.Draft{Name: "Oat milk", UnitPrice: dec("7.25"), Quantity: 4, Barcode: "123"},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().SaveItems(gomock.Any(), gomock.Len(1)).Return(nil)
			},
			wantTotal: dec("29"),
		},
		{
			name:      "MissingID",
			id:        uuid.New(),
			draft:     ledger.Draft{Name: "X", UnitPrice: dec("1"), Quantity: 1},
			wantErr:   ledger.ErrNotFound,
			wantTotal: dec("10"),
		},
		{
			name:      "Invalid",
			id:        existing.ID,
			draft:     ledger.Draft{Name: "X", UnitPrice: dec("1"), Quantity: -1},
			wantErr:   ledger.ErrValidation,
			wantTotal: dec("10"),
		},
		{
			name:  "RepoErrorKeepsOldValues",
			id:    existing.ID,
			draft: ledger.Draft{Name: "X", UnitPrice: dec("100"), Quantity: 1},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().SaveItems(gomock.Any(), gomock.Any()).Return(errors.New("write error"))
			},
			wantErr:   errors.New("write error"),
			wantTotal: dec("10"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			svc := newLoaded(t, repo, ledger.Policy{}, []*ledger.LineItem{existing}, nil)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := svc.Update(context.Background(), tt.id, tt.draft)
			assert.True(t, tt.wantTotal.Equal(svc.AggregateTotal()), "aggregate %s", svc.AggregateTotal())

			if tt.wantErr != nil {
				assert.Error(t, err)

				if !errors.Is(err, ledger.ErrNotFound) && !errors.Is(err, ledger.ErrValidation) {
					return
				}

				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, existing.ID, got.ID)
			assert.Equal(t, "Oat milk", got.Name)
			assert.Equal(t, "123", got.Barcode)
			assert.Equal(t, 4, got.Quantity)
			assert.NotNil(t, got.UpdatedAt)
		})
	}
}

func TestService_Remove(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	keep := &ledger.LineItem{ID: uuid.New(), Name: "Rice", UnitPrice: dec("20"), Quantity: 1}
	drop := &ledger.LineItem{ID: uuid.New(), Name: "Beans", UnitPrice: dec("8"), Quantity: 2}

	repo := ledger.NewMockRepository(ctrl)
	svc := newLoaded(t, repo, ledger.Policy{}, []*ledger.LineItem{keep, drop}, nil)

	repo.EXPECT().SaveItems(gomock.Any(), gomock.Len(1)).Return(nil)

	require.NoError(t, svc.Remove(context.Background(), drop.ID))
	assert.True(t, dec("20").Equal(svc.AggregateTotal()))

	err := svc.Remove(context.Background(), drop.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = svc.Get(drop.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestService_Remove_EmptyLedger(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := newLoaded(t, repo, ledger.Policy{}, nil, nil)

	assert.NotPanics(t, func() {
		err := svc.Remove(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	})
}

func TestService_Remaining(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	items := []*ledger.LineItem{
		{ID: uuid.New(), Name: "Coffee", UnitPrice: dec("12.50"), Quantity: 2},
	}

	repo := ledger.NewMockRepository(ctrl)
	svc := newLoaded(t, repo, ledger.Policy{}, items, nil)

	_, ok := svc.Remaining()
	assert.False(t, ok, "no ceiling means no remaining value")

	repo.EXPECT().SaveCeiling(gomock.Any(), gomock.Any()).Return(nil)
	require.NoError(t, svc.SetBudgetCeiling(context.Background(), new(dec("20"))))

	remaining, ok := svc.Remaining()
	require.True(t, ok)
	assert.True(t, dec("-5").Equal(remaining), "over budget is not clamped, got %s", remaining)
}

func TestService_SetBudgetCeiling(t *testing.T) {
	type testCase struct {
		name      string
		ceiling   *decimal.Decimal
		setupMock func(m *ledger.MockRepository)
		wantErr   bool
		wantSet   bool
	}

	tests := []testCase{
		{
			name:    "Zero",
			ceiling: new(decimal.Zero),
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().SaveCeiling(gomock.Any(), gomock.Not(gomock.Nil())).Return(nil)
			},
			wantSet: true,
		},
		{
			name:    "Unset",
			ceiling: nil,
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().SaveCeiling(gomock.Any(), gomock.Nil()).Return(nil)
			},
			wantSet: false,
		},
		{
			name:    "Negative",
			ceiling: new(dec("-1")),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			svc := newLoaded(t, repo, ledger.Policy{}, nil, nil)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			err := svc.SetBudgetCeiling(context.Background(), tt.ceiling)
			if tt.wantErr {
				assert.ErrorIs(t, err, ledger.ErrValidation)
				return
			}

			require.NoError(t, err)

			_, ok := svc.Ceiling()
			assert.Equal(t, tt.wantSet, ok)
		})
	}
}

func TestService_ClearAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	items := []*ledger.LineItem{
		{ID: uuid.New(), Name: "Coffee", UnitPrice: dec("12.50"), Quantity: 2},
	}

	repo := ledger.NewMockRepository(ctrl)
	svc := newLoaded(t, repo, ledger.Policy{}, items, new(dec("100")))

	repo.EXPECT().SaveItems(gomock.Any(), gomock.Nil()).Return(nil)
	repo.EXPECT().SaveCeiling(gomock.Any(), gomock.Nil()).Return(nil)

	require.NoError(t, svc.ClearAll(context.Background()))
	assert.True(t, svc.AggregateTotal().IsZero())
	assert.Empty(t, svc.Items())

	_, ok := svc.Ceiling()
	assert.False(t, ok)

	// The ceiling is optional for the ledger itself.
	repo.EXPECT().SaveItems(gomock.Any(), gomock.Len(1)).Return(nil)

	_, err := svc.Add(context.Background(), ledger.Draft{Name: "Tea", UnitPrice: dec("4"), Quantity: 1})
	require.NoError(t, err)
}

func TestService_ClearAll_WriteFailure(t *testing.T) {
	items := []*ledger.LineItem{
		{ID: uuid.New(), Name: "Coffee", UnitPrice: dec("12.50"), Quantity: 2},
	}

	tests := []struct {
		name    string
		expect  func(repo *ledger.MockRepository)
		wantErr string
	}{
		{
			name: "ItemsWriteFails",
			expect: func(repo *ledger.MockRepository) {
				repo.EXPECT().SaveItems(gomock.Any(), gomock.Nil()).Return(errors.New("disk full"))
			},
			wantErr: "clearing items",
		},
		{
			name: "CeilingWriteFailsRestoresItems",
			expect: func(repo *ledger.MockRepository) {
				gomock.InOrder(
					repo.EXPECT().SaveItems(gomock.Any(), gomock.Nil()).Return(nil),
					repo.EXPECT().SaveCeiling(gomock.Any(), gomock.Nil()).Return(errors.New("disk full")),
					repo.EXPECT().SaveItems(gomock.Any(), gomock.Len(1)).Return(nil),
				)
			},
			wantErr: "clearing ceiling",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			svc := newLoaded(t, repo, ledger.Policy{}, items, new(dec("100")))

			tt.expect(repo)

			err := svc.ClearAll(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			assert.Len(t, svc.Items(), 1)
			assert.True(t, svc.AggregateTotal().Equal(dec("25")))

			ceiling, ok := svc.Ceiling()
			require.True(t, ok)
			assert.True(t, ceiling.Equal(dec("100")))
		})
	}
}

func TestService_Load_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().LoadItems(gomock.Any()).Return(nil, errors.New("corrupt"))

	svc := ledger.NewService(repo, ledger.Policy{})
	assert.Error(t, svc.Load(context.Background()))
}

func TestService_ItemsAreCopies(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	repo := ledger.NewMockRepository(ctrl)
	svc := newLoaded(t, repo, ledger.Policy{}, []*ledger.LineItem{{ID: id, Name: "Milk", UnitPrice: dec("5"), Quantity: 1}}, nil)

	items := svc.Items()
	items[0].Quantity = 99

	got, err := svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)
}
