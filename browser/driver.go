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

// Package browser defines the browser-automation surface the evaluator
// drives (spec §6 "Browser-automation client (consumed)"): navigation,
// element lookup and interaction, window/tab management, and cookies.
//
// Driver and Element are interfaces rather than a concrete WebDriver
// client for the same reason cuelang.org/go/internal/core/runtime keeps
// its external module registry behind a client interface
// (internal/mod/modresolve): the evaluator and its tests must not depend
// on an actual browser process being reachable. NullDriver is the
// zero-dependency implementation wired into cmd/scout; FakeDriver (in
// fake.go) is the in-memory double eval's tests drive instead.
package browser

import "context"

// Element is a single DOM node handle. Every operation is
// context-carrying, matching the teacher's convention for any call that
// may block on I/O (cuelang.org/go/internal/mod/modresolve's registry
// client methods all take a context.Context first argument).
type Element interface {
	// ID uniquely identifies this element within its page, satisfying
	// object.ElementHandle so object.Equal can compare Nodes without
	// importing browser.
	ID() string

	Text(ctx context.Context) (string, error)
	Prop(ctx context.Context, name string) (string, error)
	Attr(ctx context.Context, name string) (string, error)
	Click(ctx context.Context) error
	SendKeys(ctx context.Context, s string) error
	Find(ctx context.Context, css string) (Element, bool, error)
	FindAll(ctx context.Context, css string) ([]Element, error)
}

// Cookie is a single browser cookie (spec §6 get_all_cookies/add_cookie).
type Cookie struct {
	Name  string
	Value string
}

// WindowHandle identifies one browser tab/window.
type WindowHandle string

// Driver is the browser-automation client the evaluator assumes (spec §6).
// Method names mirror the spec's external-interface list one-to-one so
// eval's call sites read as a direct transliteration of that table.
type Driver interface {
	Goto(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	Find(ctx context.Context, css string) (Element, bool, error)
	FindAll(ctx context.Context, css string) ([]Element, error)
	PerformActions(ctx context.Context, keys string) error
	Screenshot(ctx context.Context) ([]byte, error)
	Execute(ctx context.Context, js string, args []interface{}) (interface{}, error)

	NewWindow(ctx context.Context, newTab bool) (WindowHandle, error)
	SwitchToWindow(ctx context.Context, handle WindowHandle) error
	Window(ctx context.Context) (WindowHandle, error)
	Close(ctx context.Context) error

	GetAllCookies(ctx context.Context) ([]Cookie, error)
	AddCookie(ctx context.Context, c Cookie) error
	DeleteAllCookies(ctx context.Context) error
}
