package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	stdtesting "testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/interceptd/internal/matching"
	"github.com/getmockd/interceptd/pkg/session"
)

// fakeTB records failures instead of failing the enclosing test.
type fakeTB struct {
	stdtesting.TB
	errors []string
	fatal  bool
}

func (f *fakeTB) Helper() {}

func (f *fakeTB) Errorf(format string, args ...any) {
	f.errors = append(f.errors, fmt.Sprintf(format, args...))
}

func (f *fakeTB) Fatalf(format string, args ...any) {
	f.errors = append(f.errors, fmt.Sprintf(format, args...))
	f.fatal = true
}

const statsURL = "https://genes.example.org/api/stats"

func get(t *stdtesting.T, client *http.Client, rawURL string) map[string]any {
	t.Helper()
	resp, err := client.Get(rawURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestNew_InstallsAndCleansUp(t *stdtesting.T) {
	var ic *Interceptor
	t.Run("inner", func(t *stdtesting.T) {
		ic = New(t, WithVerboseLogging())
		assert.Equal(t, session.StateInstalled, ic.Registry().State())
	})
	assert.Equal(t, session.StateUninstalled, ic.Registry().State())
}

func TestRoute_CombinedAndSingle(t *stdtesting.T) {
	ic := New(t)
	ic.Route("GET", statsURL).
		ID("gene-stats").
		Params("gene", "study").
		Combined("TP53", "BRCA", map[string]any{
			"records": []any{map[string]any{"gene": "TP53", "study": "BRCA"}},
		}).
		When("TP53", map[string]any{"records": []any{map[string]any{"gene": "TP53"}}}).
		WhenSecond("BRCA", map[string]any{"records": []any{map[string]any{"study": "BRCA"}}}).
		Register()

	client := ic.Client()

	body := get(t, client, statsURL+"?gene=TP53&study=BRCA")
	AssertJSONPath(t, body, "$.data.records[0].study", "BRCA")

	body = get(t, client, statsURL+"?study=BRCA")
	AssertJSONPath(t, body, "$.data.records[0]", map[string]any{"study": "BRCA"})

	body = get(t, client, statsURL+"?gene=TP53&study=OTHER")
	AssertJSONPath(t, body, "$.data.records", []any{})

	ic.AssertCalledTimes(t, "GET", statsURL, 3)
	ic.AssertCalled(t, "get", "https://GENES.example.org:443/api/stats")
	ic.AssertNotCalled(t, "GET", "https://genes.example.org/api/other")
	ic.AssertNoUnmatched(t)

	requests := ic.Requests()
	require.Len(t, requests, 3)
	assert.Equal(t, "gene-stats", requests[0].FixtureID)
	assert.Equal(t, string(matching.BranchCombined), requests[0].Branch)
}

func TestRoute_BuilderReuseAfterRegister(t *stdtesting.T) {
	ic := New(t)
	b := ic.Route("GET", statsURL).
		Params("gene").
		When("TP53", map[string]any{"gene": "TP53"})
	registered := b.Register()

	b.When("KRAS", map[string]any{"gene": "KRAS"}).Params("study")
	registered.Rule.First["BRAF"] = map[string]any{"gene": "BRAF"}

	body := get(t, ic.Client(), statsURL+"?gene=KRAS")
	AssertJSONPath(t, body, "$.data.records", []any{})
	body = get(t, ic.Client(), statsURL+"?gene=BRAF")
	AssertJSONPath(t, body, "$.data.records", []any{})
	body = get(t, ic.Client(), statsURL+"?gene=TP53")
	AssertJSONPath(t, body, "$.data.gene", "TP53")
}

func TestRoute_TopLevelMerge(t *stdtesting.T) {
	ic := New(t)
	ic.Route("GET", "https://oov.example.org/api/map").
		Params("query").
		MergeAt("").
		When("ovarian cancer", map[string]any{"entity_data": map[string]any{"value": "OV"}}).
		Default(http.StatusOK, map[string]any{"entity_data": nil, "source": "oov"}).
		Register()

	body := get(t, ic.Client(), "https://oov.example.org/api/map?query=ovarian%20cancer")
	AssertJSONPath(t, body, "$.entity_data.value", "OV")
	AssertJSONPath(t, body, "$.source", "oov")
}

func TestUnregisteredCallFails(t *stdtesting.T) {
	ic := New(t)
	ic.Route("GET", statsURL).Register()

	resp, err := ic.Client().Get("https://genes.example.org/api/other")
	if resp != nil {
		resp.Body.Close()
	}
	require.Error(t, err)
	assert.ErrorIs(t, err, matching.ErrUnmatchedRoute)

	fake := &fakeTB{TB: t}
	ic.AssertNoUnmatched(fake)
	assert.Len(t, fake.errors, 1)
}

func TestRoute_InvalidFailsTest(t *stdtesting.T) {
	ic := New(t)

	fake := &fakeTB{TB: t}
	ic.t = fake
	ic.Route("GET", "https://genes.example.org/api/{id}").Register()
	assert.True(t, fake.fatal)

	_, err := ic.Route("GET", statsURL).Params("a", "b", "c").Fixture()
	assert.Error(t, err)

	_, err = ic.Route("GET", "://bad").Fixture()
	assert.Error(t, err)
}

func TestReset(t *stdtesting.T) {
	ic := New(t)
	ic.Route("GET", statsURL).Register()
	_ = get(t, ic.Client(), statsURL)

	ic.Reset()
	assert.Empty(t, ic.Requests())
	assert.Empty(t, ic.Registry().Routes())
	assert.Equal(t, session.StateInstalled, ic.Registry().State())
}

func TestLoad(t *stdtesting.T) {
	dir := t.TempDir()
	doc := `
id: file-stats
route: {method: GET, url: "https://genes.example.org/api/stats"}
params: [gene]
first:
  TP53:
    records: [{gene: TP53}]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stats.yaml"), []byte(doc), 0o644))

	ic := New(t)
	ic.Load(filepath.Join(dir, "*.yaml"))

	resp, err := ic.Client().Get(statsURL + "?gene=TP53")
	require.NoError(t, err)
	AssertJSONPath(t, resp, "$.data.records[0].gene", "TP53")
	AssertJSONPath(t, resp, "$.data.records[*].gene", "TP53")
	resp.Body.Close()
}

func TestAssertionsReportFailures(t *stdtesting.T) {
	ic := New(t)
	ic.Route("GET", statsURL).Register()
	_ = get(t, ic.Client(), statsURL)

	fake := &fakeTB{TB: t}
	ic.AssertNotCalled(fake, "GET", statsURL)
	ic.AssertCalledTimes(fake, "GET", statsURL, 2)
	ic.AssertCalled(fake, "POST", statsURL)
	assert.Len(t, fake.errors, 3)

	fake = &fakeTB{TB: t}
	AssertJSONPath(fake, `{"a": [1, 2]}`, "$.a[*]", []int{1, 2})
	assert.Empty(t, fake.errors)
	AssertJSONPath(fake, `{"a": 1}`, "$.b", 1)
	AssertJSONPath(fake, `{"a": 1}`, "$.a", 2)
	AssertJSONPath(fake, `not json`, "$.a", 1)
	AssertJSONPath(fake, []byte(`{"a": 1}`), "$[", 1)
	assert.Len(t, fake.errors, 4)
}
