// Copyright 2024 The Scout Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package eval

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"scout-lang.dev/scout/browser"
	"scout-lang.dev/scout/lang/parser"
	"scout-lang.dev/scout/module"
	"scout-lang.dev/scout/object"
	"scout-lang.dev/scout/results"
	"scout-lang.dev/scout/sctenv"
)

func newTestEvaluator(t *testing.T, driver browser.Driver) (*Evaluator, *sctenv.Environment) {
	t.Helper()
	res := results.New()
	resolver := module.NewResolver(t.TempDir())
	return New(driver, res, resolver, nil, nil), sctenv.New()
}

func run(t *testing.T, driver browser.Driver, src string) (*Evaluator, *sctenv.Environment, object.Object, error) {
	t.Helper()
	block, err := parser.Parse(t.Name()+".sct", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ev, env := newTestEvaluator(t, driver)
	v, err := ev.Run(context.Background(), env, block)
	return ev, env, v, err
}

func TestScrapeAppendsToResults(t *testing.T) {
	h1 := browser.NewFakeElement("Hello, Scout")
	pages := map[string]*browser.FakePage{
		"https://a.test": {Elements: map[string][]*browser.FakeElement{"h1": {h1}}},
	}
	driver := browser.NewFakeDriver(pages)

	src := `
goto "https://a.test"
scrape { title: textContent($"h1") }
`
	ev, _, _, err := run(t, driver, src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	recs := ev.Results.Records("https://a.test")
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	title, _ := recs[0].Get("title")
	if title != object.Str("Hello, Scout") {
		t.Fatalf("title = %v, want %q", title, "Hello, Scout")
	}
}

func TestForLoopAccumulatesIntoList(t *testing.T) {
	driver := browser.NewNullDriver()
	src := `
total = []
for x in [1, 2, 3] do
  push(total, x * 2)
end
`
	_, env, _, err := run(t, driver, src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	v, ok := env.Get("total")
	if !ok {
		t.Fatal("total not bound")
	}
	list, ok := v.(*object.List)
	if !ok {
		t.Fatalf("total is %T, want *object.List", v)
	}
	want := []object.Object{object.Number(2), object.Number(4), object.Number(6)}
	got := list.Snapshot()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("total mismatch (-want +got):\n%s", diff)
	}
}

func TestFunctionCallSeesItsOwnLocalAccumulation(t *testing.T) {
	driver := browser.NewNullDriver()
	src := `
def sumTo3() do
  total = 0
  for x in [1, 2, 3] do
    total = total + x
  end
  return total
end
result = sumTo3()
`
	_, env, _, err := run(t, driver, src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	v, ok := env.Get("result")
	if !ok {
		t.Fatal("result not bound")
	}
	if diff := cmp.Diff(object.Number(6), v); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestIfElifElseOnlyOneBranchRuns(t *testing.T) {
	driver := browser.NewNullDriver()
	src := `
x = 2
y = "unset"
if x == 1
  y = "one"
elif x == 2
  y = "two"
else
  y = "other"
end
`
	_, env, _, err := run(t, driver, src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	v, ok := env.Get("y")
	if !ok || v != object.Str("two") {
		t.Fatalf("y = %v, want two", v)
	}
}

func TestReturnShortCircuitsOnlyEnclosingCallFrame(t *testing.T) {
	driver := browser.NewNullDriver()
	src := `
def first(xs) do
  for x in xs do
    if x > 0
      return x
    end
  end
  return 0 - 1
end
result = first([0 - 3, 0 - 2, 5, 9])
`
	_, env, _, err := run(t, driver, src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	v, _ := env.Get("result")
	if v != object.Number(5) {
		t.Fatalf("result = %v, want 5", v)
	}
}

func TestTryCatchRecoversDriverError(t *testing.T) {
	driver := browser.NewFakeDriver(map[string]*browser.FakePage{})
	src := `
recovered = false
try
  goto "https://nope.test"
catch
  recovered = true
end
`
	_, env, _, err := run(t, driver, src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	v, _ := env.Get("recovered")
	if v != object.Boolean(true) {
		t.Fatalf("recovered = %v, want true", v)
	}
}

func TestTryWithoutCatchPropagatesUncaughtException(t *testing.T) {
	driver := browser.NewFakeDriver(map[string]*browser.FakePage{})
	src := `
try
  goto "https://nope.test"
end
`
	_, _, _, err := run(t, driver, src)
	if err == nil {
		t.Fatal("expected an uncaught exception error")
	}
}

func TestPipelineChainThreadsResultAsFirstArg(t *testing.T) {
	driver := browser.NewNullDriver()
	src := `
result = "  hello  " |> trim() |> len()
`
	_, env, _, err := run(t, driver, src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	v, _ := env.Get("result")
	if v != object.Number(5) {
		t.Fatalf("result = %v, want 5", v)
	}
}

func TestAssignIndexIntoListReplacesInBounds(t *testing.T) {
	driver := browser.NewNullDriver()
	src := `
xs = [1, 2, 3]
xs[1] = 99
`
	_, env, _, err := run(t, driver, src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	v, _ := env.Get("xs")
	list := v.(*object.List)
	got, _ := list.Get(1)
	if got != object.Number(99) {
		t.Fatalf("xs[1] = %v, want 99", got)
	}
}

func TestAssignIndexOutOfBoundsIsError(t *testing.T) {
	driver := browser.NewNullDriver()
	src := `
xs = [1]
xs[5] = 99
`
	_, _, _, err := run(t, driver, src)
	if err == nil {
		t.Fatal("expected an IndexOutOfBounds error")
	}
}

func TestFunctionBodySeesCallerEnvAtCallTimeNotDefTime(t *testing.T) {
	driver := browser.NewNullDriver()
	src := `
x = 1
def f() do
  return x
end
x = 2
result = f()
`
	_, env, _, err := run(t, driver, src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	v, _ := env.Get("result")
	if v != object.Number(2) {
		t.Fatalf("result = %v, want 2 (f must see x as reassigned at call time, not def time)", v)
	}
}

func TestDefaultParamIsReevaluatedInCallerEnvAtEachCall(t *testing.T) {
	driver := browser.NewNullDriver()
	src := `
bump = 1
def f(n = bump) do
  return n
end
first = f()
bump = 9
second = f()
`
	_, env, _, err := run(t, driver, src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if v, _ := env.Get("first"); v != object.Number(1) {
		t.Fatalf("first = %v, want 1", v)
	}
	if v, _ := env.Get("second"); v != object.Number(9) {
		t.Fatalf("second = %v, want 9 (default must be re-evaluated against the caller's env on each call)", v)
	}
}

func TestWhileLoopStopsWhenConditionFalse(t *testing.T) {
	driver := browser.NewNullDriver()
	src := `
n = 0
while n < 5 do
  n = n + 1
end
`
	_, env, _, err := run(t, driver, src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	v, _ := env.Get("n")
	if v != object.Number(5) {
		t.Fatalf("n = %v, want 5", v)
	}
}
