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
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// FakePage is one page in a FakeDriver's in-memory site graph: a set of
// elements keyed by the CSS selector that finds them.
type FakePage struct {
	Elements map[string][]*FakeElement
}

// FakeElement is an in-memory stand-in for a DOM node, addressable enough
// to drive eval's scrape/click/crawl tests without a real browser.
type FakeElement struct {
	id    string
	Texts string
	Attrs map[string]string
	Props map[string]string
	// Clicked counts Click calls, so tests can assert an interaction
	// happened without needing real page state to change underneath it.
	Clicked int
}

func NewFakeElement(text string) *FakeElement {
	return &FakeElement{id: uuid.NewString(), Texts: text, Attrs: map[string]string{}, Props: map[string]string{}}
}

func (e *FakeElement) ID() string { return e.id }

func (e *FakeElement) Text(ctx context.Context) (string, error) { return e.Texts, nil }

func (e *FakeElement) Prop(ctx context.Context, name string) (string, error) {
	return e.Props[name], nil
}

func (e *FakeElement) Attr(ctx context.Context, name string) (string, error) {
	return e.Attrs[name], nil
}

func (e *FakeElement) Click(ctx context.Context) error {
	e.Clicked++
	return nil
}

func (e *FakeElement) SendKeys(ctx context.Context, s string) error {
	e.Props["value"] += s
	return nil
}

func (e *FakeElement) Find(ctx context.Context, css string) (Element, bool, error) {
	return nil, false, nil
}

func (e *FakeElement) FindAll(ctx context.Context, css string) ([]Element, error) {
	return nil, nil
}

// FakeDriver is an in-memory Driver double over a fixed site graph
// (url -> FakePage), used by eval's tests to exercise scrape, click, and
// bounded crawl (spec §8) without a real browser process.
type FakeDriver struct {
	mu      sync.Mutex
	Pages   map[string]*FakePage
	url     string
	window  WindowHandle
	windows map[WindowHandle]string // handle -> current url
	cookies map[string]string
}

// NewFakeDriver creates a FakeDriver over the given site graph.
func NewFakeDriver(pages map[string]*FakePage) *FakeDriver {
	handle := WindowHandle(uuid.NewString())
	return &FakeDriver{
		Pages:   pages,
		window:  handle,
		windows: map[WindowHandle]string{handle: ""},
		cookies: make(map[string]string),
	}
}

func (d *FakeDriver) page() (*FakePage, error) {
	p, ok := d.Pages[d.url]
	if !ok {
		return nil, fmt.Errorf("fake driver: no page registered for %q", d.url)
	}
	return p, nil
}

func (d *FakeDriver) Goto(ctx context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.Pages[url]; !ok {
		return fmt.Errorf("fake driver: no page registered for %q", url)
	}
	d.url = url
	d.windows[d.window] = url
	return nil
}

func (d *FakeDriver) CurrentURL(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url, nil
}

func (d *FakeDriver) Find(ctx context.Context, css string) (Element, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, err := d.page()
	if err != nil {
		return nil, false, err
	}
	elems := p.Elements[css]
	if len(elems) == 0 {
		return nil, false, nil
	}
	return elems[0], true, nil
}

func (d *FakeDriver) FindAll(ctx context.Context, css string) ([]Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, err := d.page()
	if err != nil {
		return nil, err
	}
	out := make([]Element, 0, len(p.Elements[css]))
	for _, e := range p.Elements[css] {
		out = append(out, e)
	}
	return out, nil
}

func (d *FakeDriver) PerformActions(ctx context.Context, keys string) error { return nil }

func (d *FakeDriver) Screenshot(ctx context.Context) ([]byte, error) {
	return []byte("fake-screenshot"), nil
}

func (d *FakeDriver) Execute(ctx context.Context, js string, args []interface{}) (interface{}, error) {
	return nil, nil
}

func (d *FakeDriver) NewWindow(ctx context.Context, newTab bool) (WindowHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	handle := WindowHandle(uuid.NewString())
	d.windows[handle] = ""
	return handle, nil
}

func (d *FakeDriver) SwitchToWindow(ctx context.Context, handle WindowHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	url, ok := d.windows[handle]
	if !ok {
		return fmt.Errorf("fake driver: unknown window handle %q", handle)
	}
	d.window = handle
	d.url = url
	return nil
}

func (d *FakeDriver) Window(ctx context.Context) (WindowHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.window, nil
}

func (d *FakeDriver) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.windows, d.window)
	return nil
}

func (d *FakeDriver) GetAllCookies(ctx context.Context) ([]Cookie, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Cookie, 0, len(d.cookies))
	for name, value := range d.cookies {
		out = append(out, Cookie{Name: name, Value: value})
	}
	return out, nil
}

func (d *FakeDriver) AddCookie(ctx context.Context, c Cookie) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cookies[c.Name] = c.Value
	return nil
}

func (d *FakeDriver) DeleteAllCookies(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cookies = make(map[string]string)
	return nil
}

var _ Driver = (*FakeDriver)(nil)
var _ Element = (*FakeElement)(nil)
