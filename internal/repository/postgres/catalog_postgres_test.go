package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogPostgres_ListCategories(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCatalogPostgres(db)

	mock.ExpectQuery("SELECT id, title FROM categories").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow("cat-1", "City").
			AddRow("cat-2", "School"))

	got, err := repo.ListCategories(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "School", got[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogPostgres_ListModels(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCatalogPostgres(db)

	mock.ExpectQuery("SELECT id, title, category_id FROM bus_models WHERE category_id = \\$1").
		WithArgs("cat-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "category_id"}).
			AddRow("model-1", "Urbano", "cat-1"))

	got, err := repo.ListModels(context.Background(), "cat-1")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cat-1", got[0].ParentCategory.Ref)
	assert.Equal(t, "reference", got[0].ParentCategory.Type)
}

func TestCatalogPostgres_ListBuses(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCatalogPostgres(db)

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, serial_number, model_id FROM buses WHERE model_id = \\$1").
			WithArgs("model-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "serial_number", "model_id"}).
				AddRow("bus-42", "GC-0042", "model-1"))

		got, err := repo.ListBuses(context.Background(), "model-1")

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "GC-0042", got[0].SerialNumber)
		assert.Equal(t, "model-1", got[0].Model.Ref)
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, serial_number, model_id FROM buses").
			WillReturnError(errors.New("db fail"))

		got, err := repo.ListBuses(context.Background(), "model-1")

		assert.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestCatalogPostgres_ListBusSummaries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCatalogPostgres(db)

	mock.ExpectQuery("SELECT b.id, b.serial_number, COALESCE\\(m.title, ''\\) FROM buses b LEFT JOIN bus_models m").
		WillReturnRows(sqlmock.NewRows([]string{"id", "serial_number", "title"}).
			AddRow("bus-42", "GC-0042", "Urbano").
			AddRow("bus-43", "GC-0043", ""))

	got, err := repo.ListBusSummaries(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Urbano", got[0].Model.Title)
	assert.Equal(t, "", got[1].Model.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}
