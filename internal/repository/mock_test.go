package repository

import (
	"context"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// mockRow implements pgx.Row.
type mockRow struct {
	scanFn func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.scanFn != nil {
		return m.scanFn(dest...)
	}
	return nil
}

// rowOf returns a row that scans vals into the destinations in order.
func rowOf(vals ...any) *mockRow {
	return &mockRow{scanFn: func(dest ...any) error {
		assign(dest, vals)
		return nil
	}}
}

// errRow returns a row whose Scan fails with err.
func errRow(err error) *mockRow {
	return &mockRow{scanFn: func(dest ...any) error { return err }}
}

// assign copies vals into dest pointers. A nil val zeroes the destination.
func assign(dest []any, vals []any) {
	for i := range dest {
		if i >= len(vals) {
			return
		}
		target := reflect.ValueOf(dest[i]).Elem()
		if vals[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(vals[i]).Convert(target.Type()))
	}
}

// mockRows implements pgx.Rows over fixed value tuples.
type mockRows struct {
	data   [][]any
	pos    int
	err    error
	closed bool
}

func rowsOf(data ...[]any) *mockRows {
	return &mockRows{data: data, pos: -1}
}

func (m *mockRows) Close()                                       { m.closed = true }
func (m *mockRows) Err() error                                   { return m.err }
func (m *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (m *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *mockRows) RawValues() [][]byte                          { return nil }
func (m *mockRows) Conn() *pgx.Conn                              { return nil }

func (m *mockRows) Next() bool {
	m.pos++
	return m.pos < len(m.data)
}

func (m *mockRows) Scan(dest ...any) error {
	assign(dest, m.data[m.pos])
	return nil
}

func (m *mockRows) Values() ([]any, error) {
	return m.data[m.pos], nil
}

// mockPool implements database.TxQuerier.
type mockPool struct {
	execFn     func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (m *mockPool) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	if m.execFn != nil {
		return m.execFn(ctx, sql, arguments...)
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (m *mockPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.queryRowFn != nil {
		return m.queryRowFn(ctx, sql, args...)
	}
	return &mockRow{}
}

func (m *mockPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, sql, args...)
	}
	return rowsOf(), nil
}
