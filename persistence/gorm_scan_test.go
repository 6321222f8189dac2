package persistence

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// scriptedResult is one database response, either a result set or an error.
type scriptedResult struct {
	cols []string
	rows [][]driver.Value
	err  error
}

// scriptedConn replays responses in order, regardless of the SQL text.
// It lets tests drive the real gorm scan path without a server.
type scriptedConn struct {
	script []scriptedResult
	pos    int
}

func (c *scriptedConn) next() (scriptedResult, error) {
	if c.pos >= len(c.script) {
		return scriptedResult{}, errors.New("no scripted response left")
	}
	res := c.script[c.pos]
	c.pos++
	return res, nil
}

func (c *scriptedConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepared statements not scripted")
}

func (c *scriptedConn) Close() error { return nil }

func (c *scriptedConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions not scripted")
}

func (c *scriptedConn) QueryContext(_ context.Context, _ string, _ []driver.NamedValue) (driver.Rows, error) {
	res, err := c.next()
	if err != nil {
		return nil, err
	}
	if res.err != nil {
		return nil, res.err
	}
	return &scriptedRows{cols: res.cols, rows: res.rows}, nil
}

func (c *scriptedConn) ExecContext(_ context.Context, _ string, _ []driver.NamedValue) (driver.Result, error) {
	res, err := c.next()
	if err != nil {
		return nil, err
	}
	if res.err != nil {
		return nil, res.err
	}
	return driver.RowsAffected(len(res.rows)), nil
}

type scriptedRows struct {
	cols []string
	rows [][]driver.Value
	pos  int
}

func (r *scriptedRows) Columns() []string { return r.cols }
func (r *scriptedRows) Close() error      { return nil }

func (r *scriptedRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

type scriptedConnector struct{ conn *scriptedConn }

func (c scriptedConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c scriptedConnector) Driver() driver.Driver                        { return scriptedDriver{} }

type scriptedDriver struct{}

func (scriptedDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("open through the connector")
}

// newScriptedDB builds a GormPostgreSQL whose connection replays the
// given responses in order.
func newScriptedDB(t *testing.T, script ...scriptedResult) *GormPostgreSQL {
	t.Helper()
	sqlDB := sql.OpenDB(scriptedConnector{conn: &scriptedConn{script: script}})
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)
	return &GormPostgreSQL{db: db}
}

func TestGameConfigurationSurvivesScan(t *testing.T) {
	db := newScriptedDB(t, scriptedResult{
		cols: []string{"id", "name", "price", "minimum_configuration", "recommended_configuration"},
		rows: [][]driver.Value{{
			int64(1), "Elden Ring", int64(1200000),
			[]byte(`{"os":"Windows 10","cpu":"i5-8400","ram":"12 GB","gpu":"GTX 1060","disk":"60 GB"}`),
			[]byte(`{"os":"Windows 11","cpu":"i7-8700K","ram":"16 GB","gpu":"RTX 2060","disk":"60 GB"}`),
		}},
	})

	game, err := db.GetGame(1)
	require.NoError(t, err)
	assert.Equal(t, "Elden Ring", game.Name)
	assert.Equal(t, "Windows 10", game.MinimumConfiguration.OS)
	assert.Equal(t, "12 GB", game.MinimumConfiguration.RAM)
	assert.Equal(t, "RTX 2060", game.RecommendedConfiguration.GPU)
}

func TestStatisticSnapshotSurvivesScan(t *testing.T) {
	db := newScriptedDB(t, scriptedResult{
		cols: []string{"id", "period", "snapshot"},
		rows: [][]driver.Value{{
			int64(3), "2026-07",
			[]byte(`{"revenue":500000,"num_of_user":2,"num_of_interaction":5,"avg_cus_spend":250000,"time":"2026-07"}`),
		}},
	})

	stat, err := db.LoadStatistic("2026-07")
	require.NoError(t, err)
	assert.Equal(t, int64(500000), stat.Revenue)
	assert.Equal(t, int64(250000), stat.AvgCusSpend)
	assert.Equal(t, "2026-07", stat.Time)
}

func TestGetWishlistRecoversFromConcurrentCreate(t *testing.T) {
	wishlistCols := []string{"id", "user_id", "fav_game_ids"}
	db := newScriptedDB(t,
		// No row yet for this user.
		scriptedResult{cols: wishlistCols},
		// Our insert loses against a concurrent first favorite.
		scriptedResult{err: errors.New(`pq: duplicate key value violates unique constraint "idx_wishlists_user_id"`)},
		// Re-read picks up the winner's row.
		scriptedResult{cols: wishlistCols, rows: [][]driver.Value{{int64(7), int64(42), []byte(`{3}`)}}},
	)

	w, err := db.GetWishlist(42)
	require.NoError(t, err)
	assert.Equal(t, int64(7), w.ID)
	assert.Equal(t, int64(42), w.UserID)
	assert.Equal(t, []int64{3}, w.FavGameIDs)
}

func TestGetWishlistSurfacesCreateFailure(t *testing.T) {
	wishlistCols := []string{"id", "user_id", "fav_game_ids"}
	db := newScriptedDB(t,
		scriptedResult{cols: wishlistCols},
		scriptedResult{err: errors.New("pq: connection reset")},
		scriptedResult{cols: wishlistCols},
	)

	_, err := db.GetWishlist(42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
