package quire

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scriptURL = "https://script.google.com/macros/s/abc123/exec"

func TestNew(t *testing.T) {
	tests := []struct {
		name           string
		cfg            Config
		wantConfigured bool
		wantBackend    string
	}{
		{
			name:           "missing endpoint",
			cfg:            DefaultConfig(),
			wantConfigured: false,
			wantBackend:    BackendNone,
		},
		{
			name: "apps script endpoint",
			cfg: Config{
				Endpoint:        scriptURL,
				EndpointPattern: DefaultEndpointPattern,
			},
			wantConfigured: true,
			wantBackend:    BackendAppsScript,
		},
		{
			name: "endpoint on the wrong host",
			cfg: Config{
				Endpoint:        "https://example.com/exec",
				EndpointPattern: DefaultEndpointPattern,
			},
			wantConfigured: false,
			wantBackend:    BackendNone,
		},
		{
			name: "any host without a pattern",
			cfg: Config{
				Endpoint: "http://127.0.0.1:8080/exec",
			},
			wantConfigured: true,
			wantBackend:    BackendAppsScript,
		},
		{
			name: "not a url",
			cfg: Config{
				Endpoint: "script.google.com",
			},
			wantConfigured: false,
			wantBackend:    BackendNone,
		},
		{
			name: "unsupported scheme",
			cfg: Config{
				Endpoint: "ftp://script.google.com/exec",
			},
			wantConfigured: false,
			wantBackend:    BackendNone,
		},
		{
			name: "sheets backend without credentials",
			cfg: Config{
				Backend:       BackendSheets,
				SpreadsheetID: "sheet-id",
			},
			wantConfigured: false,
			wantBackend:    BackendNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := New(tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, db)

			assert.Equal(t, tt.wantConfigured, db.Configured())
			assert.Equal(t, tt.wantBackend, db.Backend())
			assert.NoError(t, db.Close())
		})
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(Config{Backend: "postgres"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown backend "postgres"`)
}

func TestNew_WithInvalidCredentials(t *testing.T) {
	_, err := New(Config{
		Backend:       BackendSheets,
		SpreadsheetID: "test-id",
		Credentials:   []byte(`invalid json`),
	})
	assert.Error(t, err)
}

func TestNew_WithTransport(t *testing.T) {
	db := newMockDB(&MockTransport{})

	assert.True(t, db.Configured())
	assert.Equal(t, "mock", db.Backend())
}

func TestDB_From(t *testing.T) {
	db := newMockDB(&MockTransport{})

	q := db.From("Vehicles")
	require.NotNil(t, q)
	assert.Equal(t, "Vehicles", q.Table())
	assert.Same(t, db, q.db)
}

func TestDB_Unconfigured(t *testing.T) {
	ctx := context.Background()
	db, err := New(DefaultConfig())
	require.NoError(t, err)

	reads := db.From("Vehicles").Execute(ctx)
	require.NotNil(t, reads.Error)
	assert.Nil(t, reads.Data)
	assert.Contains(t, reads.Error.Message, ErrNotConfigured.Error())

	single := db.From("Vehicles").Eq("id", 1).Single().Execute(ctx)
	require.NotNil(t, single.Error)
	assert.Nil(t, single.Data)

	ins := db.From("Customers").Insert(Row{"first_name": "A"}).Select(ctx)
	require.NotNil(t, ins.Error)
	assert.Nil(t, ins.Data)

	upd := db.From("Customers").Update(Row{"first_name": "B"}).Eq("id", 1).Select(ctx)
	require.NotNil(t, upd.Error)
	assert.Nil(t, upd.Data)
}

func TestDB_RateLimitCancelled(t *testing.T) {
	mock := &MockTransport{ReadFunc: returning(`[]`)}
	db, err := New(Config{RateLimit: 0.001}, WithTransport(mock))
	require.NoError(t, err)

	// The first call consumes the only token.
	first := db.From("Vehicles").Execute(context.Background())
	require.Nil(t, first.Error)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := db.From("Vehicles").Execute(ctx)
	require.NotNil(t, res.Error)
	assert.Contains(t, res.Error.Message, "rate limit")
	assert.Len(t, mock.ReadCalls, 1)
}

func TestResult_Err(t *testing.T) {
	res := fail[[]Row](errors.New("boom"))
	require.Error(t, res.Err())
	assert.Equal(t, "boom", res.Err().Error())
	assert.False(t, res.OK())

	good := ok([]Row{})
	assert.NoError(t, good.Err())
	assert.True(t, good.OK())
}
