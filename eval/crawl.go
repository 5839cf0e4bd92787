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
	"errors"
	"fmt"
	"net/url"

	"scout-lang.dev/scout/browser"
	"scout-lang.dev/scout/lang/ast"
	"scout-lang.dev/scout/lang/serrors"
	"scout-lang.dev/scout/object"
	"scout-lang.dev/scout/sctenv"
)

// evalCrawl implements spec §4.G's bounded depth-first crawl algorithm.
// visited spans the whole crawl invocation, not just one recursion level,
// so cycles and re-entry are suppressed globally across the entire
// traversal rather than per depth.
func (ev *Evaluator) evalCrawl(ctx context.Context, env *sctenv.Environment, s *ast.CrawlStmt) (object.Object, error) {
	visited := make(map[string]bool)
	return ev.crawlStep(ctx, env, s, 1, visited)
}

func (ev *Evaluator) crawlStep(ctx context.Context, env *sctenv.Environment, s *ast.CrawlStmt, depth int, visited map[string]bool) (object.Object, error) {
	startHandle, err := ev.Driver.Window(ctx)
	if err != nil {
		return nil, serrors.Wrap(serrors.BrowserError, s.Pos(), err)
	}
	pageURL, err := ev.Driver.CurrentURL(ctx)
	if err != nil {
		return nil, serrors.Wrap(serrors.BrowserError, s.Pos(), err)
	}

	links, err := ev.Driver.FindAll(ctx, "a[href]")
	if err != nil {
		return nil, serrors.Wrap(serrors.BrowserError, s.Pos(), err)
	}

	for _, link := range links {
		href, err := link.Attr(ctx, "href")
		if err != nil {
			return nil, serrors.Wrap(serrors.BrowserError, s.Pos(), err)
		}
		target, err := resolveHref(pageURL, href)
		if err != nil {
			return nil, serrors.Wrap(serrors.InvalidURL, s.Pos(), err)
		}

		child := sctenv.NewChild(env)
		if s.Bindings != nil {
			if s.Bindings.Link != nil {
				child.Declare(s.Bindings.Link.Name, object.Str(target))
			}
			if s.Bindings.Depth != nil {
				child.Declare(s.Bindings.Depth.Name, object.Number(depth))
			}
		}

		if s.Filter != nil {
			v, err := ev.evalExpr(ctx, child, s.Filter)
			if err != nil {
				return nil, err
			}
			if !object.Truthy(v) {
				continue
			}
		}

		if visited[target] {
			continue
		}
		visited[target] = true

		result, err := ev.visitLink(ctx, child, s, depth, target, startHandle, visited)
		if err != nil {
			return nil, err
		}
		if ret, ok := result.(*object.Return); ok {
			return ret, nil
		}
	}

	return object.Null{}, nil
}

// resolveHref implements spec's crawl-algorithm step 3: parse href as an
// absolute URL; if it parses but isn't absolute, join it against the
// current page URL; any other parse failure is reported to the caller as
// an error (InvalidUrl), not silently skipped.
func resolveHref(pageURL, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parsing href %q: %w", href, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parsing page url %q: %w", pageURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// visitLink implements crawl steps (a)-(e) for one not-yet-visited link:
// open a tab, navigate, record the resolved post-redirect URL as visited
// too, evaluate the body, recurse while under MaxCrawlDepth, then close the
// tab and switch back to startHandle. Close must run before SwitchToWindow,
// not concurrently with it — both mutate the driver's notion of the current
// window, and closing the tab we just switched into only makes sense before
// we've left it. Both errors are still joined rather than the first one
// discarding the second.
func (ev *Evaluator) visitLink(ctx context.Context, env *sctenv.Environment, s *ast.CrawlStmt, depth int, target string, startHandle browser.WindowHandle, visited map[string]bool) (object.Object, error) {
	handle, err := ev.Driver.NewWindow(ctx, true)
	if err != nil {
		return nil, serrors.Wrap(serrors.BrowserError, s.Pos(), err)
	}
	if err := ev.Driver.SwitchToWindow(ctx, handle); err != nil {
		return nil, serrors.Wrap(serrors.BrowserError, s.Pos(), err)
	}
	if err := ev.Driver.Goto(ctx, target); err != nil {
		return nil, serrors.Wrap(serrors.InvalidURL, s.Pos(), err)
	}
	if resolved, err := ev.Driver.CurrentURL(ctx); err == nil {
		visited[resolved] = true
	}

	result, bodyErr := ev.evalBlock(ctx, env, s.Body)

	if bodyErr == nil {
		if _, isReturn := result.(*object.Return); !isReturn && depth < MaxCrawlDepth {
			result, bodyErr = ev.crawlStep(ctx, env, s, depth+1, visited)
		}
	}

	closeErr := ev.Driver.Close(ctx)
	switchErr := ev.Driver.SwitchToWindow(ctx, startHandle)
	cleanupErr := errors.Join(closeErr, switchErr)

	if bodyErr != nil {
		return nil, bodyErr
	}
	if cleanupErr != nil {
		return nil, serrors.Wrap(serrors.BrowserError, s.Pos(), cleanupErr)
	}
	return result, nil
}
