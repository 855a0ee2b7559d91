package quire

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type MockTransport struct {
	ReadFunc  func(ctx context.Context, sheet string, params map[string]string) ([]byte, error)
	WriteFunc func(ctx context.Context, action Action, sheet string, payload any) ([]byte, error)

	mu         sync.Mutex
	ReadCalls  []ReadCall
	WriteCalls []WriteCall
}

type ReadCall struct {
	Sheet  string
	Params map[string]string
}

type WriteCall struct {
	Action  Action
	Sheet   string
	Payload any
}

func (m *MockTransport) Name() string {
	return "mock"
}

func (m *MockTransport) Read(ctx context.Context, sheet string, params map[string]string) ([]byte, error) {
	m.mu.Lock()
	m.ReadCalls = append(m.ReadCalls, ReadCall{Sheet: sheet, Params: params})
	m.mu.Unlock()
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, sheet, params)
	}
	return nil, fmt.Errorf("Read not implemented")
}

func (m *MockTransport) Write(ctx context.Context, action Action, sheet string, payload any) ([]byte, error) {
	m.mu.Lock()
	m.WriteCalls = append(m.WriteCalls, WriteCall{Action: action, Sheet: sheet, Payload: payload})
	m.mu.Unlock()
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, action, sheet, payload)
	}
	return nil, fmt.Errorf("Write not implemented")
}

func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadCalls = nil
	m.WriteCalls = nil
}

// returning builds a ReadFunc that answers every read with body.
func returning(body string) func(context.Context, string, map[string]string) ([]byte, error) {
	return func(context.Context, string, map[string]string) ([]byte, error) {
		return []byte(body), nil
	}
}

// echo builds a WriteFunc that returns the posted payload.
func echo() func(context.Context, Action, string, any) ([]byte, error) {
	return func(_ context.Context, _ Action, _ string, payload any) ([]byte, error) {
		return jsonBytes(payload), nil
	}
}

func jsonBytes(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func newMockDB(mock *MockTransport) *DB {
	db, err := New(Config{}, WithTransport(mock))
	if err != nil {
		panic(err)
	}
	return db
}

type MockSheetsClient struct {
	ReadFunc   func(ctx context.Context, range_ string) ([][]interface{}, error)
	WriteFunc  func(ctx context.Context, range_ string, values [][]interface{}) error
	AppendFunc func(ctx context.Context, range_ string, values [][]interface{}) error

	ReadCalls   []MockCall
	WriteCalls  []MockCall
	AppendCalls []MockCall
}

type MockCall struct {
	Range_ string
	Values [][]interface{}
}

func (m *MockSheetsClient) Read(ctx context.Context, range_ string) ([][]interface{}, error) {
	m.ReadCalls = append(m.ReadCalls, MockCall{Range_: range_})
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, range_)
	}
	return nil, fmt.Errorf("Read not implemented")
}

func (m *MockSheetsClient) Write(ctx context.Context, range_ string, values [][]interface{}) error {
	m.WriteCalls = append(m.WriteCalls, MockCall{Range_: range_, Values: values})
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, range_, values)
	}
	return fmt.Errorf("Write not implemented")
}

func (m *MockSheetsClient) Append(ctx context.Context, range_ string, values [][]interface{}) error {
	m.AppendCalls = append(m.AppendCalls, MockCall{Range_: range_, Values: values})
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, range_, values)
	}
	return fmt.Errorf("Append not implemented")
}

func (m *MockSheetsClient) Reset() {
	m.ReadCalls = nil
	m.WriteCalls = nil
	m.AppendCalls = nil
}
