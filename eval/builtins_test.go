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
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"scout-lang.dev/scout/browser"
	"scout-lang.dev/scout/lang/parser"
	"scout-lang.dev/scout/module"
	"scout-lang.dev/scout/object"
	"scout-lang.dev/scout/results"
	"scout-lang.dev/scout/sctenv"
)

func TestBuiltinHTTPRequestFetchesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("XTest"); got != "scout" {
			t.Errorf("XTest header = %q, want scout", got)
		}
		w.WriteHeader(http.StatusTeapot)
		fmt.Fprint(w, "pong")
	}))
	defer srv.Close()

	driver := browser.NewNullDriver()
	src := fmt.Sprintf(`
result = httpRequest("GET", "%s", "", headers: { XTest: "scout" })
`, srv.URL)
	_, env, _, err := run(t, driver, src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	v, ok := env.Get("result")
	if !ok {
		t.Fatal("result not bound")
	}
	m, ok := v.(*object.Map)
	if !ok {
		t.Fatalf("result is %T, want *object.Map", v)
	}
	status, _ := m.Get("statusCode")
	if status != object.Number(http.StatusTeapot) {
		t.Fatalf("statusCode = %v, want %d", status, http.StatusTeapot)
	}
	content, _ := m.Get("content")
	if content != object.Str("pong") {
		t.Fatalf("content = %v, want pong", content)
	}
}

func TestBuiltinHTTPRequestModeJSONDecodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count":3,"name":"scout"}`)
	}))
	defer srv.Close()

	driver := browser.NewNullDriver()
	src := fmt.Sprintf(`
result = httpRequest("GET", "%s", "", mode: "json")
`, srv.URL)
	_, env, _, err := run(t, driver, src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	v, ok := env.Get("result")
	if !ok {
		t.Fatal("result not bound")
	}
	m := v.(*object.Map)
	content, _ := m.Get("content")
	decoded, ok := content.(*object.Map)
	if !ok {
		t.Fatalf("content is %T, want *object.Map", content)
	}
	count, _ := decoded.Get("count")
	if count != object.Number(3) {
		t.Fatalf("content[count] = %v, want 3", count)
	}
	name, _ := decoded.Get("name")
	if name != object.Str("scout") {
		t.Fatalf("content[name] = %v, want scout", name)
	}
}

func TestBuiltinHTTPRequestRejectsUnknownMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "pong")
	}))
	defer srv.Close()

	driver := browser.NewNullDriver()
	src := fmt.Sprintf(`
result = httpRequest("GET", "%s", "", mode: "xml")
`, srv.URL)
	_, _, _, err := run(t, driver, src)
	if err == nil {
		t.Fatal("expected an error for an unknown httpRequest mode")
	}
}

func TestBuiltinCookiesRoundTripsViaSetCookies(t *testing.T) {
	driver := browser.NewFakeDriver(map[string]*browser.FakePage{})
	src := `
setCookies({ session: "abc123" })
jar = cookies()
result = jar["session"]
`
	_, env, _, err := run(t, driver, src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	v, ok := env.Get("result")
	if !ok || v != object.Str("abc123") {
		t.Fatalf("result = %v, want abc123", v)
	}
}

func TestBuiltinClickInputAndKeyActionDriveFakeElement(t *testing.T) {
	input := browser.NewFakeElement("")
	button := browser.NewFakeElement("")
	pages := map[string]*browser.FakePage{
		"https://a.test": {Elements: map[string][]*browser.FakeElement{
			"#name":   {input},
			"#submit": {button},
		}},
	}
	driver := browser.NewFakeDriver(pages)
	src := `
goto "https://a.test"
input($"#name", "hello", true)
click($"#submit")
keyAction("Enter")
`
	_, _, _, err := run(t, driver, src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if input.Props["value"] != "hello\n" {
		t.Fatalf("input value = %q, want %q", input.Props["value"], "hello\n")
	}
	if button.Clicked != 1 {
		t.Fatalf("button.Clicked = %d, want 1", button.Clicked)
	}
}

func TestBuiltinTextContentAndHrefAcceptLists(t *testing.T) {
	linkA := browser.NewFakeElement("First")
	linkA.Attrs["href"] = "https://a.test/1"
	linkB := browser.NewFakeElement("Second")
	linkB.Attrs["href"] = "https://a.test/2"
	pages := map[string]*browser.FakePage{
		"https://a.test": {Elements: map[string][]*browser.FakeElement{
			"a": {linkA, linkB},
		}},
	}
	driver := browser.NewFakeDriver(pages)
	src := `
goto "https://a.test"
texts = textContent($$"a")
hrefs = href($$"a")
`
	_, env, _, err := run(t, driver, src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	texts, _ := env.Get("texts")
	wantTexts := []object.Object{object.Str("First"), object.Str("Second")}
	if diff := cmp.Diff(wantTexts, texts.(*object.List).Snapshot()); diff != "" {
		t.Fatalf("texts mismatch (-want +got):\n%s", diff)
	}
	hrefs, _ := env.Get("hrefs")
	wantHrefs := []object.Object{object.Str("https://a.test/1"), object.Str("https://a.test/2")}
	if diff := cmp.Diff(wantHrefs, hrefs.(*object.List).Snapshot()); diff != "" {
		t.Fatalf("hrefs mismatch (-want +got):\n%s", diff)
	}
}

func TestBuiltinNumberTypeAndIsWhitespace(t *testing.T) {
	driver := browser.NewNullDriver()
	src := `
n = number("3.5")
t1 = type(3.5)
t2 = type("hi")
t3 = type([1])
w1 = isWhitespace("   ")
w2 = isWhitespace("x")
`
	_, env, _, err := run(t, driver, src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if v, _ := env.Get("n"); v != object.Number(3.5) {
		t.Fatalf("n = %v, want 3.5", v)
	}
	if v, _ := env.Get("t1"); v != object.Str("Number") {
		t.Fatalf("t1 = %v, want Number", v)
	}
	if v, _ := env.Get("t2"); v != object.Str("Str") {
		t.Fatalf("t2 = %v, want Str", v)
	}
	if v, _ := env.Get("t3"); v != object.Str("List") {
		t.Fatalf("t3 = %v, want List", v)
	}
	if v, _ := env.Get("w1"); v != object.Boolean(true) {
		t.Fatalf("w1 = %v, want true", v)
	}
	if v, _ := env.Get("w2"); v != object.Boolean(false) {
		t.Fatalf("w2 = %v, want false", v)
	}
}

func TestBuiltinContainsAcrossStrListAndMap(t *testing.T) {
	driver := browser.NewNullDriver()
	src := `
a = contains("hello world", "world")
b = contains([1, 2, 3], 2)
c = contains({ x: 1 }, "x")
d = contains({ x: 1 }, "y")
`
	_, env, _, err := run(t, driver, src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	for name, want := range map[string]object.Object{
		"a": object.Boolean(true),
		"b": object.Boolean(true),
		"c": object.Boolean(true),
		"d": object.Boolean(false),
	} {
		v, ok := env.Get(name)
		if !ok || v != want {
			t.Fatalf("%s = %v, want %v", name, v, want)
		}
	}
}

func TestBuiltinToJsonEncodesMapInInsertionOrder(t *testing.T) {
	driver := browser.NewNullDriver()
	src := `
result = toJson({ b: 1, a: 2 })
`
	_, env, _, err := run(t, driver, src)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	v, ok := env.Get("result")
	if !ok {
		t.Fatal("result not bound")
	}
	if v != object.Str(`{"b":1,"a":2}`) {
		t.Fatalf("result = %v, want %s", v, `{"b":1,"a":2}`)
	}
}

func TestBuiltinURLSleepAndArgs(t *testing.T) {
	driver := browser.NewFakeDriver(map[string]*browser.FakePage{
		"https://a.test": {},
	})
	src := `
goto "https://a.test"
u = url()
sleep(1)
a = args()
`
	block, err := parser.Parse(t.Name()+".sct", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	res := results.New()
	resolver := module.NewResolver(t.TempDir())
	ev := New(driver, res, resolver, []string{"one", "two"}, nil)
	env := sctenv.New()
	if _, err := ev.Run(context.Background(), env, block); err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if v, _ := env.Get("u"); v != object.Str("https://a.test") {
		t.Fatalf("u = %v, want https://a.test", v)
	}
	a, ok := env.Get("a")
	if !ok {
		t.Fatal("a not bound")
	}
	want := []object.Object{object.Str("one"), object.Str("two")}
	if diff := cmp.Diff(want, a.(*object.List).Snapshot()); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}
