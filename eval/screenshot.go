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
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"scout-lang.dev/scout/lang/ast"
	"scout-lang.dev/scout/lang/serrors"
	"scout-lang.dev/scout/object"
	"scout-lang.dev/scout/sctenv"
)

// evalScreenshot implements spec §4.G Screenshot: the driver's raw image
// bytes are decoded and re-encoded to match Path's extension, so a Scout
// script can request `.jpg` or `.png` regardless of what format the
// browser client happened to capture.
func (ev *Evaluator) evalScreenshot(ctx context.Context, env *sctenv.Environment, s *ast.ScreenshotStmt) (object.Object, error) {
	raw, err := ev.Driver.Screenshot(ctx)
	if err != nil {
		return nil, serrors.Wrap(serrors.ScreenshotError, s.Pos(), err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, serrors.Wrap(serrors.ScreenshotError, s.Pos(), err)
	}

	f, err := os.Create(s.Path)
	if err != nil {
		return nil, serrors.Wrap(serrors.ScreenshotError, s.Pos(), err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, nil)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		return nil, serrors.Wrap(serrors.ScreenshotError, s.Pos(), err)
	}
	return object.Null{}, nil
}
