// Package config loads fixture files.
//
// Fixture files are YAML (JSON is accepted as a subset). Before decoding,
// ${VAR} and ${VAR:-default} references are expanded from the environment
// and the document is checked against an embedded JSON Schema. Decoded
// fixtures are then validated with fixture.Validate, so a file that loads
// is a file that registers.
//
// A file holds either a single fixture:
//
//	id: oov-map
//	route:
//	  method: GET
//	  url: https://oov.example.org/api/map
//	params: [query]
//	mergeAt: ""
//	first:
//	  ovarian cancer:
//	    entity_data: {value: OV}
//	default:
//	  body: {entity_data: null}
//
// or a list of them:
//
//	fixtures:
//	  - id: gene-stats
//	    route: {method: GET, host: genes.example.org, path: /api/stats}
//	    params: [gene, study]
//	    combined:
//	      - first: TP53
//	        second: BRCA
//	        payload:
//	          records: [{gene: TP53, study: BRCA}]
//
// A fixture without a default answers with the canonical empty-records
// body, and payloads merge into the "data" field unless mergeAt says
// otherwise.
package config
