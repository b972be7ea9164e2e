// Package requestlog captures intercepted calls for inspection and
// assertions.
//
// This is distinct from operational logging (log/slog): an Entry records
// what the application under test asked for, which fixture answered and
// through which branch of its Rule, so tests can assert on the traffic.
//
//	store := requestlog.NewMemoryStore(1000)
//	store.Log(&requestlog.Entry{Method: "GET", Host: "genes.example.org", Path: "/api/stats"})
//	n := len(store.List(&requestlog.Filter{Path: "/api/stats"}))
//
// This is a leaf package with no internal dependencies beyond id generation.
package requestlog
