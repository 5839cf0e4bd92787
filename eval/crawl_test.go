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

	"scout-lang.dev/scout/browser"
	"scout-lang.dev/scout/lang/parser"
	"scout-lang.dev/scout/module"
	"scout-lang.dev/scout/object"
	"scout-lang.dev/scout/results"
	"scout-lang.dev/scout/sctenv"
)

// TestCrawlBoundedTraversalOverCyclicGraph exercises spec §4.G's crawl
// algorithm over a two-page site that links back to itself: A links to B,
// B links back to A. The `where depth < 3` filter bounds the practical
// traversal well under MaxCrawlDepth, so the test does not depend on that
// constant to terminate.
func TestCrawlBoundedTraversalOverCyclicGraph(t *testing.T) {
	linkToB := browser.NewFakeElement("")
	linkToB.Attrs["href"] = "https://site.test/b"
	linkToA := browser.NewFakeElement("")
	linkToA.Attrs["href"] = "https://site.test/a"

	pages := map[string]*browser.FakePage{
		"https://site.test/a": {Elements: map[string][]*browser.FakeElement{
			"a[href]": {linkToB},
			"h1":      {browser.NewFakeElement("Page A")},
		}},
		"https://site.test/b": {Elements: map[string][]*browser.FakeElement{
			"a[href]": {linkToA},
			"h1":      {browser.NewFakeElement("Page B")},
		}},
	}
	driver := browser.NewFakeDriver(pages)

	src := `
goto "https://site.test/a"
crawl link, depth where depth < 3 do
  scrape { title: textContent($"h1") }
end
`
	block, err := parser.Parse("crawl.sct", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	res := results.New()
	resolver := module.NewResolver(t.TempDir())
	ev := New(driver, res, resolver, nil, nil)
	env := sctenv.New()
	if _, err := ev.Run(context.Background(), env, block); err != nil {
		t.Fatalf("eval error: %v", err)
	}

	urls := ev.Results.URLs()
	if len(urls) != 2 || urls[0] != "https://site.test/b" || urls[1] != "https://site.test/a" {
		t.Fatalf("urls = %v, want [b, a] in visit order", urls)
	}

	bRecs := ev.Results.Records("https://site.test/b")
	if len(bRecs) != 1 {
		t.Fatalf("got %d records for b, want 1", len(bRecs))
	}
	if title, _ := bRecs[0].Get("title"); title != object.Str("Page B") {
		t.Fatalf("b title = %v, want Page B", title)
	}

	aRecs := ev.Results.Records("https://site.test/a")
	if len(aRecs) != 1 {
		t.Fatalf("got %d records for a, want 1", len(aRecs))
	}
	if title, _ := aRecs[0].Get("title"); title != object.Str("Page A") {
		t.Fatalf("a title = %v, want Page A", title)
	}

	finalURL, err := driver.CurrentURL(context.Background())
	if err != nil {
		t.Fatalf("CurrentURL error: %v", err)
	}
	if finalURL != "https://site.test/a" {
		t.Fatalf("after crawl, current url = %q, want the original tab back on %q", finalURL, "https://site.test/a")
	}
}

// TestCrawlSkipsAlreadyVisitedLinks checks that the whole-invocation visited
// set (not merely per-depth) suppresses re-following a link already seen,
// even when it is reachable again one level deeper.
func TestCrawlSkipsAlreadyVisitedLinks(t *testing.T) {
	linkToB := browser.NewFakeElement("")
	linkToB.Attrs["href"] = "https://site.test/b"
	linkToC := browser.NewFakeElement("")
	linkToC.Attrs["href"] = "https://site.test/c"
	backToB := browser.NewFakeElement("")
	backToB.Attrs["href"] = "https://site.test/b"

	pages := map[string]*browser.FakePage{
		"https://site.test/a": {Elements: map[string][]*browser.FakeElement{
			"a[href]": {linkToB, linkToC},
		}},
		"https://site.test/b": {Elements: map[string][]*browser.FakeElement{
			"a[href]": {backToB},
			"h1":      {browser.NewFakeElement("Page B")},
		}},
		"https://site.test/c": {Elements: map[string][]*browser.FakeElement{
			"h1": {browser.NewFakeElement("Page C")},
		}},
	}
	driver := browser.NewFakeDriver(pages)

	src := `
goto "https://site.test/a"
crawl do
  scrape { title: textContent($"h1") }
end
`
	block, err := parser.Parse("crawl.sct", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	res := results.New()
	resolver := module.NewResolver(t.TempDir())
	ev := New(driver, res, resolver, nil, nil)
	env := sctenv.New()
	if _, err := ev.Run(context.Background(), env, block); err != nil {
		t.Fatalf("eval error: %v", err)
	}

	for _, url := range []string{"https://site.test/b", "https://site.test/c"} {
		recs := ev.Results.Records(url)
		if len(recs) != 1 {
			t.Fatalf("got %d records for %s, want 1 (link must not be revisited)", len(recs), url)
		}
	}
}

// TestCrawlResolvesRelativeHrefAgainstCurrentPage checks crawl-algorithm
// step 3's relative-href case: a path-only href joins against the page
// it was found on rather than being treated as a parse failure.
func TestCrawlResolvesRelativeHrefAgainstCurrentPage(t *testing.T) {
	relLink := browser.NewFakeElement("")
	relLink.Attrs["href"] = "/b"

	pages := map[string]*browser.FakePage{
		"https://site.test/a": {Elements: map[string][]*browser.FakeElement{
			"a[href]": {relLink},
		}},
		"https://site.test/b": {Elements: map[string][]*browser.FakeElement{
			"h1": {browser.NewFakeElement("Page B")},
		}},
	}
	driver := browser.NewFakeDriver(pages)

	src := `
goto "https://site.test/a"
crawl do
  scrape { title: textContent($"h1") }
end
`
	block, err := parser.Parse("crawl.sct", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	res := results.New()
	resolver := module.NewResolver(t.TempDir())
	ev := New(driver, res, resolver, nil, nil)
	env := sctenv.New()
	if _, err := ev.Run(context.Background(), env, block); err != nil {
		t.Fatalf("eval error: %v", err)
	}

	recs := ev.Results.Records("https://site.test/b")
	if len(recs) != 1 {
		t.Fatalf("got %d records for b, want 1 (relative href must resolve against the current page)", len(recs))
	}
}

// TestCrawlReportsInvalidUrlOnUnparseableHref checks crawl-algorithm step
// 3's error case: an href that fails to parse for a reason other than
// being relative is reported as an error, not silently skipped.
func TestCrawlReportsInvalidUrlOnUnparseableHref(t *testing.T) {
	badLink := browser.NewFakeElement("")
	badLink.Attrs["href"] = "%zz"

	pages := map[string]*browser.FakePage{
		"https://site.test/a": {Elements: map[string][]*browser.FakeElement{
			"a[href]": {badLink},
		}},
	}
	driver := browser.NewFakeDriver(pages)

	src := `
goto "https://site.test/a"
crawl do
  scrape { title: textContent($"h1") }
end
`
	block, err := parser.Parse("crawl.sct", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	res := results.New()
	resolver := module.NewResolver(t.TempDir())
	ev := New(driver, res, resolver, nil, nil)
	env := sctenv.New()
	if _, err := ev.Run(context.Background(), env, block); err == nil {
		t.Fatal("expected an InvalidUrl error for an unparseable href")
	}
}
