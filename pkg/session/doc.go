// Package session owns the lifecycle of intercepted routes.
//
// A Registry is an explicit session object: routes are installed at the
// start of a unit of test work, consulted by every intercepted call, and
// torn down at its end.
//
//	Uninstalled ──Install──▶ Installed ──Teardown──▶ Uninstalled
//	                           │   ▲
//	                           └───┘ Intercept / Register
//
// Teardown is idempotent. Nothing matches while Uninstalled.
//
// There is no package-level registry. Use one Registry per test run, or one
// per worker when tests run in parallel; sessions are never nested, and
// Install on an installed Registry fails with ErrSessionActive.
//
// Controller adapts a Registry to a test harness's suite/request hooks and
// scopes auxiliary stubs, such as the document write stub, to the suite.
package session
