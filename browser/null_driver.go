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

// NullDriver is a Driver with no real browser behind it: Goto records the
// requested URL but never fetches or renders it, Find/FindAll always
// report no matches. It exists so cmd/scout has something to construct
// without a CDP/WebDriver dependency in scope for this module — wiring an
// actual remote-browser transport is future work, not something the
// retrieved pack offers a library for.
//
// It is a legitimate Driver, not a test stub: it satisfies every method
// a real implementation would need to provide, it just answers
// conservatively. eval's own tests use the richer in-memory FakeDriver
// (fake.go) instead, since NullDriver's "nothing is ever found" behavior
// cannot exercise scrape/crawl semantics.
type NullDriver struct {
	mu      sync.Mutex
	url     string
	window  WindowHandle
	windows map[WindowHandle]bool
	cookies map[string]string
}

// NewNullDriver creates a NullDriver with one open window.
func NewNullDriver() *NullDriver {
	handle := WindowHandle(uuid.NewString())
	return &NullDriver{
		window:  handle,
		windows: map[WindowHandle]bool{handle: true},
		cookies: make(map[string]string),
	}
}

func (d *NullDriver) Goto(ctx context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = url
	return nil
}

func (d *NullDriver) CurrentURL(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url, nil
}

func (d *NullDriver) Find(ctx context.Context, css string) (Element, bool, error) {
	return nil, false, nil
}

func (d *NullDriver) FindAll(ctx context.Context, css string) ([]Element, error) {
	return nil, nil
}

func (d *NullDriver) PerformActions(ctx context.Context, keys string) error { return nil }

func (d *NullDriver) Screenshot(ctx context.Context) ([]byte, error) {
	return nil, fmt.Errorf("null driver: no browser to screenshot")
}

func (d *NullDriver) Execute(ctx context.Context, js string, args []interface{}) (interface{}, error) {
	return nil, nil
}

func (d *NullDriver) NewWindow(ctx context.Context, newTab bool) (WindowHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	handle := WindowHandle(uuid.NewString())
	d.windows[handle] = true
	return handle, nil
}

func (d *NullDriver) SwitchToWindow(ctx context.Context, handle WindowHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.windows[handle] {
		return fmt.Errorf("null driver: unknown window handle %q", handle)
	}
	d.window = handle
	return nil
}

func (d *NullDriver) Window(ctx context.Context) (WindowHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.window, nil
}

func (d *NullDriver) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.windows, d.window)
	return nil
}

func (d *NullDriver) GetAllCookies(ctx context.Context) ([]Cookie, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Cookie, 0, len(d.cookies))
	for name, value := range d.cookies {
		out = append(out, Cookie{Name: name, Value: value})
	}
	return out, nil
}

func (d *NullDriver) AddCookie(ctx context.Context, c Cookie) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cookies[c.Name] = c.Value
	return nil
}

func (d *NullDriver) DeleteAllCookies(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cookies = make(map[string]string)
	return nil
}

var _ Driver = (*NullDriver)(nil)
