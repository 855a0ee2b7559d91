package workshop

import (
	"context"

	"github.com/elbader17/quire/pkg/quire"
)

// Status describes backend connectivity for diagnostics screens.
type Status struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Backend    string `json:"backend"`
	Error      string `json:"error,omitempty"`
}

// Health reports whether the backend is configured and answers a trial
// read of the Vehicles sheet. It never touches the network when the
// backend is not configured.
func (s *Store) Health(ctx context.Context) Status {
	if !s.db.Configured() {
		return Status{
			Backend: quire.BackendNone,
			Error:   "data backend endpoint not configured",
		}
	}

	st := Status{
		Configured: true,
		Backend:    s.db.Backend(),
	}
	res := s.db.From(VehiclesTable).Limit(1).Execute(ctx)
	if res.Error != nil {
		st.Error = res.Error.Message
		return st
	}
	st.Connected = true
	return st
}
