// Package fixture defines the data model of the interception registry.
//
// A Fixture pairs a Route (method, host and exact path of an outbound call)
// with a Rule that maps query-parameter values to canned Responses:
//
//	f := fixture.Fixture{
//	    ID:    "gene-stats",
//	    Route: fixture.Route{Method: "GET", Host: "genes.example.org", Path: "/api/stats"},
//	    Rule: fixture.Rule{
//	        Params:  []string{"gene", "study"},
//	        MergeAt: fixture.DefaultMergeAt,
//	        Combined: map[fixture.Key]fixture.Payload{
//	            {First: "TP53", Second: "BRCA"}: {"records": []any{map[string]any{"gene": "TP53"}}},
//	        },
//	        Default: fixture.EmptyRecords(),
//	    },
//	}
//
// Fixtures are plain data. Matching lives in internal/matching, resolution
// in pkg/engine, and the session lifecycle in pkg/session.
package fixture
