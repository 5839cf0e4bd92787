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

package browser

import (
	"context"
	"testing"
)

func TestFakeDriverGotoAndFind(t *testing.T) {
	h1 := NewFakeElement("Welcome")
	pages := map[string]*FakePage{
		"https://a.test": {Elements: map[string][]*FakeElement{"h1": {h1}}},
	}
	d := NewFakeDriver(pages)
	ctx := context.Background()

	if err := d.Goto(ctx, "https://a.test"); err != nil {
		t.Fatalf("Goto error: %v", err)
	}
	url, err := d.CurrentURL(ctx)
	if err != nil || url != "https://a.test" {
		t.Fatalf("CurrentURL = %q, %v", url, err)
	}

	el, ok, err := d.Find(ctx, "h1")
	if err != nil || !ok {
		t.Fatalf("Find(h1) = %v, %v, %v", el, ok, err)
	}
	text, _ := el.Text(ctx)
	if text != "Welcome" {
		t.Fatalf("Text() = %q, want %q", text, "Welcome")
	}
}

func TestFakeDriverGotoUnknownURL(t *testing.T) {
	d := NewFakeDriver(map[string]*FakePage{})
	if err := d.Goto(context.Background(), "https://nope.test"); err == nil {
		t.Fatal("expected an error navigating to an unregistered page")
	}
}

func TestFakeDriverFindMissingReturnsNotOK(t *testing.T) {
	pages := map[string]*FakePage{"https://a.test": {Elements: map[string][]*FakeElement{}}}
	d := NewFakeDriver(pages)
	ctx := context.Background()
	if err := d.Goto(ctx, "https://a.test"); err != nil {
		t.Fatalf("Goto error: %v", err)
	}
	_, ok, err := d.Find(ctx, "h1")
	if err != nil || ok {
		t.Fatalf("Find(missing) = ok %v, err %v, want false, nil", ok, err)
	}
}

func TestFakeDriverClickCounts(t *testing.T) {
	btn := NewFakeElement("Go")
	pages := map[string]*FakePage{"https://a.test": {Elements: map[string][]*FakeElement{"button": {btn}}}}
	d := NewFakeDriver(pages)
	ctx := context.Background()
	_ = d.Goto(ctx, "https://a.test")
	el, _, _ := d.Find(ctx, "button")
	if err := el.Click(ctx); err != nil {
		t.Fatalf("Click error: %v", err)
	}
	if btn.Clicked != 1 {
		t.Fatalf("Clicked = %d, want 1", btn.Clicked)
	}
}

func TestNullDriverGotoAndWindows(t *testing.T) {
	d := NewNullDriver()
	ctx := context.Background()
	if err := d.Goto(ctx, "https://example.com"); err != nil {
		t.Fatalf("Goto error: %v", err)
	}
	url, _ := d.CurrentURL(ctx)
	if url != "https://example.com" {
		t.Fatalf("CurrentURL = %q", url)
	}
	if _, ok, _ := d.Find(ctx, "h1"); ok {
		t.Fatal("NullDriver.Find reported a match, want none")
	}

	handle, err := d.NewWindow(ctx, true)
	if err != nil {
		t.Fatalf("NewWindow error: %v", err)
	}
	if err := d.SwitchToWindow(ctx, handle); err != nil {
		t.Fatalf("SwitchToWindow error: %v", err)
	}
	cur, _ := d.Window(ctx)
	if cur != handle {
		t.Fatalf("Window() = %v, want %v", cur, handle)
	}
}

func TestNullDriverCookies(t *testing.T) {
	d := NewNullDriver()
	ctx := context.Background()
	if err := d.AddCookie(ctx, Cookie{Name: "session", Value: "abc"}); err != nil {
		t.Fatalf("AddCookie error: %v", err)
	}
	cookies, err := d.GetAllCookies(ctx)
	if err != nil || len(cookies) != 1 || cookies[0].Name != "session" {
		t.Fatalf("GetAllCookies = %v, %v", cookies, err)
	}
	if err := d.DeleteAllCookies(ctx); err != nil {
		t.Fatalf("DeleteAllCookies error: %v", err)
	}
	cookies, _ = d.GetAllCookies(ctx)
	if len(cookies) != 0 {
		t.Fatalf("GetAllCookies after delete = %v, want empty", cookies)
	}
}
