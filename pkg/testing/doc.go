// Package testing provides a testing SDK for using interceptd in Go tests.
//
// An Interceptor installs an isolated session for one test and tears it
// down when the test completes. Code under test sends its outbound calls
// through Client (or Transport); registered routes answer them and any
// other call fails.
//
// # Basic Usage
//
//	func TestStatsLookup(t *testing.T) {
//	    ic := interceptdtest.New(t)
//
//	    ic.Route("GET", "https://genes.example.org/api/stats").
//	        Params("gene", "study").
//	        Combined("TP53", "BRCA", map[string]any{
//	            "records": []any{map[string]any{"gene": "TP53", "study": "BRCA"}},
//	        }).
//	        Register()
//
//	    svc := stats.NewService(ic.Client())
//	    // ...
//
//	    ic.AssertCalledTimes(t, "GET", "https://genes.example.org/api/stats", 1)
//	}
//
// # Predicate Tables
//
// A route declares up to two query parameters with Params. When both are
// present the Combined table answers, when only the first is present When
// answers and when only the second is present WhenSecond answers. Any miss
// answers with the Default, which is the canonical empty-records body
// unless set:
//
//	ic.Route("GET", "https://oov.example.org/api/map").
//	    Params("query").
//	    MergeAt("").
//	    When("ovarian cancer", map[string]any{"entity_data": map[string]any{"value": "OV"}}).
//	    Default(200, map[string]any{"entity_data": nil}).
//	    Register()
//
// Payloads are merged into the "data" field of the default body unless
// MergeAt names another field; MergeAt("") merges at the top level.
//
// # Fixture Files
//
// Fixtures kept on disk load with Load, which accepts files, directories
// and ** globs:
//
//	ic.Load("testdata/fixtures/**/*.yaml")
//
// # Assertions
//
//	ic.AssertCalled(t, "GET", "https://genes.example.org/api/stats")
//	ic.AssertNotCalled(t, "GET", "https://oov.example.org/api/map")
//	interceptdtest.AssertJSONPath(t, resp, "$.data.records[0].study", "BRCA")
package testing
