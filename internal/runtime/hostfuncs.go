package runtime

import (
	"context"
	"fmt"

	"github.com/risor-io/risor/object"
	"github.com/sirupsen/logrus"

	"github.com/jward/apkicons"
	"github.com/jward/apkicons/internal/manifest"
)

// makeIconsFn creates the "icons" host function.
//
// icons() → [{scope, kind, type, path, caption, hash}, ...]
func makeIconsFn(m *apkicons.Model) *object.Builtin {
	return object.NewBuiltin("icons", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("icons", 0, len(args))
		}
		var results []object.Object
		for _, rec := range m.Snapshot() {
			results = append(results, object.NewMap(map[string]object.Object{
				"scope":   object.NewString(rec.Scope),
				"kind":    object.NewString(rec.Kind),
				"type":    object.NewString(rec.Type),
				"path":    object.NewString(rec.Path),
				"caption": object.NewString(rec.Caption),
				"hash":    object.NewString(rec.Hash),
			}))
		}
		return object.NewList(results)
	})
}

// makeScopesFn creates the "scopes" host function.
//
// scopes() → [{kind, name, caption, icon, round_icon, banner}, ...]
func makeScopesFn(m *apkicons.Model) *object.Builtin {
	return object.NewBuiltin("scopes", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("scopes", 0, len(args))
		}
		var results []object.Object
		for _, s := range m.Scopes() {
			results = append(results, object.NewMap(map[string]object.Object{
				"kind":       object.NewString(s.Kind.String()),
				"name":       object.NewString(s.Name),
				"caption":    object.NewString(s.Caption()),
				"icon":       object.NewString(s.Reference(manifest.TypeIcon)),
				"round_icon": object.NewString(s.Reference(manifest.TypeRoundIcon)),
				"banner":     object.NewString(s.Reference(manifest.TypeBanner)),
			}))
		}
		return object.NewList(results)
	})
}

// makeReplaceFn creates the "replace" host function.
//
// replace(path, file) → nil; overwrites the icon at path with file's content.
func makeReplaceFn(m *apkicons.Model) *object.Builtin {
	return object.NewBuiltin("replace", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("replace", 2, len(args))
		}
		path, err := toString(args[0])
		if err != nil {
			return object.Errorf("replace: path %v", err)
		}
		file, err := toString(args[1])
		if err != nil {
			return object.Errorf("replace: file %v", err)
		}
		idx, err := m.IndexForPath(path)
		if err != nil {
			return object.Errorf("replace: %v", err)
		}
		if err := m.ReplaceResource(idx, file); err != nil {
			return object.Errorf("replace: %v", err)
		}
		return object.Nil
	})
}

// makeReplaceDataFn creates the "replace_data" host function.
//
// replace_data(path, content) → nil
func makeReplaceDataFn(m *apkicons.Model) *object.Builtin {
	return object.NewBuiltin("replace_data", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("replace_data", 2, len(args))
		}
		path, err := toString(args[0])
		if err != nil {
			return object.Errorf("replace_data: path %v", err)
		}
		var data []byte
		switch v := args[1].(type) {
		case *object.String:
			data = []byte(v.Value())
		case *object.ByteSlice:
			data = v.Value()
		default:
			return object.Errorf("replace_data: content must be a string or byte_slice, got %s", args[1].Type())
		}
		idx, err := m.IndexForPath(path)
		if err != nil {
			return object.Errorf("replace_data: %v", err)
		}
		if err := m.ReplaceResourceData(idx, data); err != nil {
			return object.Errorf("replace_data: %v", err)
		}
		return object.Nil
	})
}

// makeRemoveFn creates the "remove" host function.
//
// remove(path) → nil
func makeRemoveFn(m *apkicons.Model) *object.Builtin {
	return object.NewBuiltin("remove", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("remove", 1, len(args))
		}
		path, err := toString(args[0])
		if err != nil {
			return object.Errorf("remove: %v", err)
		}
		idx, err := m.IndexForPath(path)
		if err != nil {
			return object.Errorf("remove: %v", err)
		}
		if err := m.RemoveResource(idx); err != nil {
			return object.Errorf("remove: %v", err)
		}
		return object.Nil
	})
}

// makeReplaceAppIconsFn creates the "replace_app_icons" host function.
//
// replace_app_icons(file) → [path, ...] of the variants written
func makeReplaceAppIconsFn(m *apkicons.Model) *object.Builtin {
	return object.NewBuiltin("replace_app_icons", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("replace_app_icons", 1, len(args))
		}
		file, err := toString(args[0])
		if err != nil {
			return object.Errorf("replace_app_icons: %v", err)
		}
		report, err := m.ReplaceApplicationIcons(file)
		if err != nil {
			return object.Errorf("replace_app_icons: %v", err)
		}
		written := make([]object.Object, 0, len(report.Written))
		for _, p := range report.Written {
			written = append(written, object.NewString(p))
		}
		return object.NewList(written)
	})
}

// makeIconSizeFn creates the "icon_size" host function.
//
// icon_size(path) → {width, height}
func makeIconSizeFn(m *apkicons.Model) *object.Builtin {
	return object.NewBuiltin("icon_size", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("icon_size", 1, len(args))
		}
		path, err := toString(args[0])
		if err != nil {
			return object.Errorf("icon_size: %v", err)
		}
		idx, err := m.IndexForPath(path)
		if err != nil {
			return object.Errorf("icon_size: %v", err)
		}
		size, err := m.IconSize(idx)
		if err != nil {
			return object.Errorf("icon_size: %v", err)
		}
		return object.NewMap(map[string]object.Object{
			"width":  object.NewInt(int64(size.X)),
			"height": object.NewInt(int64(size.Y)),
		})
	})
}

// makeSnapshotFn creates the "snapshot" host function.
//
// snapshot(label) → snapshot id
func makeSnapshotFn(s *apkicons.Store, root string, m *apkicons.Model) *object.Builtin {
	return object.NewBuiltin("snapshot", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) > 1 {
			return object.NewArgsError("snapshot", 1, len(args))
		}
		label := ""
		if len(args) == 1 {
			var err error
			if label, err = toString(args[0]); err != nil {
				return object.Errorf("snapshot: %v", err)
			}
		}
		id, err := apkicons.SaveSnapshot(s, root, label, m)
		if err != nil {
			return object.Errorf("snapshot: %v", err)
		}
		return object.NewInt(id)
	})
}

func toString(obj object.Object) (string, error) {
	s, ok := obj.(*object.String)
	if !ok {
		return "", fmt.Errorf("expected string, got %s", obj.Type())
	}
	return s.Value(), nil
}

// logObject provides log.info/warn/error methods for Risor scripts.
type logObject struct {
	entry *logrus.Entry
}

func (l *logObject) Info(msg string) {
	l.entry.Info(msg)
}

func (l *logObject) Warn(msg string) {
	l.entry.Warn(msg)
}

func (l *logObject) Error(msg string) {
	l.entry.Error(msg)
}
