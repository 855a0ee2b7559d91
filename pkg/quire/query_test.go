package quire

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Awaitable[Result[[]Row]] = (*Query[Row])(nil)
	_ Awaitable[Result[*Row]]  = (*SingleQuery[Row])(nil)
	_ Awaitable[Result[*Row]]  = (*Insert[Row])(nil)
	_ Awaitable[Result[[]Row]] = (*InsertMany[Row])(nil)
	_ Awaitable[Result[[]Row]] = (*Update[Row])(nil)
)

const vehiclesBody = `[
	{"id": 1, "status": "active", "make": "Toyota", "customer_id": 10},
	{"id": 2, "status": "sold", "make": "Honda", "customer_id": 10},
	{"id": 3, "status": "active", "make": "Ford", "customer_id": 11}
]`

type testVehicle struct {
	ID         int    `json:"id"`
	Status     string `json:"status"`
	Make       string `json:"make"`
	CustomerID int    `json:"customer_id"`
}

func TestQuery_EqFiltersUnfilteredBackend(t *testing.T) {
	ctx := context.Background()
	mock := &MockTransport{
		ReadFunc: returning(`[{"id":1,"status":"active"},{"id":2,"status":"sold"}]`),
	}
	db := newMockDB(mock)

	res := db.From("Vehicles").Select().Eq("status", "active").Execute(ctx)

	require.Nil(t, res.Error)
	assert.Equal(t, []Row{{"id": 1.0, "status": "active"}}, res.Data)

	require.Len(t, mock.ReadCalls, 1)
	assert.Equal(t, "Vehicles", mock.ReadCalls[0].Sheet)
	assert.Equal(t, map[string]string{"status": "active"}, mock.ReadCalls[0].Params)
}

func TestQuery_Execute(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		build    func(q *Query[Row]) *Query[Row]
		expected []Row
	}{
		{
			name:  "no filters",
			build: func(q *Query[Row]) *Query[Row] { return q },
			expected: []Row{
				{"id": 1.0, "status": "active", "make": "Toyota", "customer_id": 10.0},
				{"id": 2.0, "status": "sold", "make": "Honda", "customer_id": 10.0},
				{"id": 3.0, "status": "active", "make": "Ford", "customer_id": 11.0},
			},
		},
		{
			name:  "chained filters narrow",
			build: func(q *Query[Row]) *Query[Row] { return q.Eq("status", "active").Eq("customer_id", 10) },
			expected: []Row{
				{"id": 1.0, "status": "active", "make": "Toyota", "customer_id": 10.0},
			},
		},
		{
			name:     "projection",
			build:    func(q *Query[Row]) *Query[Row] { return q.Select("id,make").Eq("status", "active") },
			expected: []Row{{"id": 1.0, "make": "Toyota"}, {"id": 3.0, "make": "Ford"}},
		},
		{
			name:     "projection of a missing column",
			build:    func(q *Query[Row]) *Query[Row] { return q.Select("id", "vin").Eq("id", 2) },
			expected: []Row{{"id": 2.0}},
		},
		{
			name:     "no match is an empty list",
			build:    func(q *Query[Row]) *Query[Row] { return q.Eq("status", "scrapped") },
			expected: []Row{},
		},
		{
			name:     "strict equality",
			build:    func(q *Query[Row]) *Query[Row] { return q.Eq("id", "1") },
			expected: []Row{},
		},
		{
			name:     "limit",
			build:    func(q *Query[Row]) *Query[Row] { return q.Eq("status", "active").Limit(1).Select("id") },
			expected: []Row{{"id": 1.0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newMockDB(&MockTransport{ReadFunc: returning(vehiclesBody)})

			res := tt.build(db.From("Vehicles")).Execute(ctx)

			require.Nil(t, res.Error)
			assert.Equal(t, tt.expected, res.Data)
		})
	}
}

func TestQuery_ProjectionKeys(t *testing.T) {
	ctx := context.Background()
	projections := [][]string{
		{"id"},
		{"id", "make"},
		{"status", "vin"},
		{"vin"},
	}

	for _, p := range projections {
		db := newMockDB(&MockTransport{ReadFunc: returning(vehiclesBody)})
		res := db.From("Vehicles").Select(p...).Execute(ctx)
		require.Nil(t, res.Error)

		for _, row := range res.Data {
			for k := range row {
				assert.Contains(t, p, k)
			}
			for _, k := range p {
				_, present := row[k]
				assert.Equal(t, k != "vin", present, "column %s", k)
			}
		}
	}
}

func TestQuery_SingleObjectResponse(t *testing.T) {
	db := newMockDB(&MockTransport{ReadFunc: returning(`{"id":7,"status":"active"}`)})

	res := db.From("Vehicles").Eq("id", 7).Execute(context.Background())

	require.Nil(t, res.Error)
	assert.Equal(t, []Row{{"id": 7.0, "status": "active"}}, res.Data)
}

func TestQuery_Single(t *testing.T) {
	ctx := context.Background()

	t.Run("empty result", func(t *testing.T) {
		db := newMockDB(&MockTransport{ReadFunc: returning(`[]`)})

		res := db.From("Vehicles").Eq("id", 1).Single().Execute(ctx)

		assert.Nil(t, res.Error)
		assert.Nil(t, res.Data)
	})

	t.Run("first row in backend order", func(t *testing.T) {
		db := newMockDB(&MockTransport{ReadFunc: returning(vehiclesBody)})

		res := db.From("Vehicles").Eq("status", "active").Single().Execute(ctx)

		require.Nil(t, res.Error)
		require.NotNil(t, res.Data)
		assert.Equal(t, 1.0, (*res.Data)["id"])
	})

	t.Run("error", func(t *testing.T) {
		db := newMockDB(&MockTransport{})

		res := db.From("Vehicles").Single().Execute(ctx)

		require.NotNil(t, res.Error)
		assert.Nil(t, res.Data)
	})
}

func TestQuery_StartMatchesExecute(t *testing.T) {
	ctx := context.Background()
	mock := &MockTransport{ReadFunc: returning(vehiclesBody)}
	db := newMockDB(mock)

	q := db.From("Vehicles").Select("id", "make").Eq("customer_id", 10)

	direct := q.Execute(ctx)
	future := q.Start(ctx)
	awaited := future.Await()

	assert.Equal(t, direct, awaited)
	assert.Len(t, mock.ReadCalls, 2)

	// Awaiting again returns the same result without another round trip.
	assert.Equal(t, awaited, future.Await())
	<-future.Done()
	assert.Len(t, mock.ReadCalls, 2)

	single := db.From("Vehicles").Eq("id", 3).Single()
	assert.Equal(t, single.Execute(ctx), single.Start(ctx).Await())
}

func TestQuery_FuturesAreIndependent(t *testing.T) {
	ctx := context.Background()
	mock := &MockTransport{
		ReadFunc: func(_ context.Context, sheet string, _ map[string]string) ([]byte, error) {
			if sheet == "Customers" {
				return []byte(`[{"id":1,"first_name":"A"}]`), nil
			}
			return []byte(vehiclesBody), nil
		},
	}
	db := newMockDB(mock)

	vehicles := db.From("Vehicles").Eq("id", 2).Start(ctx)
	customers := db.From("Customers").Start(ctx)

	assert.Equal(t, []Row{{"id": 1.0, "first_name": "A"}}, customers.Await().Data)
	assert.Equal(t, "Honda", vehicles.Await().Data[0]["make"])
}

func TestQuery_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		read    func(context.Context, string, map[string]string) ([]byte, error)
		wantMsg string
	}{
		{
			name: "network failure",
			read: func(context.Context, string, map[string]string) ([]byte, error) {
				return nil, errors.New("connection refused")
			},
			wantMsg: "connection refused",
		},
		{
			name:    "backend error field",
			read:    returning(`{"error":"Sheet not found: Vehicle"}`),
			wantMsg: "Sheet not found: Vehicle",
		},
		{
			name:    "backend error object",
			read:    returning(`{"error":{"message":"quota exceeded"}}`),
			wantMsg: "quota exceeded",
		},
		{
			name:    "rows that are not objects",
			read:    returning(`[1, 2, 3]`),
			wantMsg: "row 0 is not an object",
		},
		{
			name:    "scalar response",
			read:    returning(`"ok"`),
			wantMsg: "unexpected response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newMockDB(&MockTransport{ReadFunc: tt.read})

			res := db.From("Vehicles").Eq("status", "active").Execute(ctx)

			require.NotNil(t, res.Error)
			assert.Nil(t, res.Data)
			assert.Contains(t, res.Error.Message, tt.wantMsg)
		})
	}
}

func TestQuery_ErrorFieldFalseIsData(t *testing.T) {
	db := newMockDB(&MockTransport{ReadFunc: returning(`{"id":1,"error":false}`)})

	res := db.From("Checks").Execute(context.Background())

	require.Nil(t, res.Error)
	assert.Equal(t, []Row{{"id": 1.0, "error": false}}, res.Data)
}

func TestFrom_Typed(t *testing.T) {
	ctx := context.Background()
	db := newMockDB(&MockTransport{ReadFunc: returning(vehiclesBody)})

	res := From[testVehicle](db, "Vehicles").Eq("customer_id", 10).Execute(ctx)

	require.Nil(t, res.Error)
	assert.Equal(t, []testVehicle{
		{ID: 1, Status: "active", Make: "Toyota", CustomerID: 10},
		{ID: 2, Status: "sold", Make: "Honda", CustomerID: 10},
	}, res.Data)

	one := From[testVehicle](db, "Vehicles").Eq("id", 3).Single().Execute(ctx)
	require.Nil(t, one.Error)
	require.NotNil(t, one.Data)
	assert.Equal(t, "Ford", one.Data.Make)
}

func TestFrom_TypedDecodeError(t *testing.T) {
	db := newMockDB(&MockTransport{ReadFunc: returning(`[{"id":"not-a-number"}]`)})

	res := From[testVehicle](db, "Vehicles").Execute(context.Background())

	require.NotNil(t, res.Error)
	assert.Contains(t, res.Error.Message, "failed to decode row 0")
}
