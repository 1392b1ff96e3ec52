// Package apkicons projects the resource tree of a decoded Android package
// into a fixed two-level icon tree and keeps the projection in sync while the
// resource tree changes underneath it.
//
// # Projection
//
// A [Model] observes a [Source] (usually a restree.Tree mirrored
// from a project directory) and a list of [Scope] values taken from the
// manifest. Every source file that one of the scopes' icon slots resolves to
// becomes an icon row:
//
//	Application          (row 0)
//	  xxhdpi             Icon
//	  xxhdpi             Round Icon
//	Activities           (row 1)
//	  .TvActivity
//	    Default          Banner
//
// The two top-level rows always exist. An activity row exists only while at
// least one of its slots resolves. Icons inside a group are ordered by slot
// (Icon, Round Icon, Banner) and then by source tree order; activities follow
// scope order.
//
// A source file is projected at most once. Scopes are tried in the order
// they were supplied and slots in the order above; the first match claims
// the file.
//
// # Synchronization
//
// The model subscribes to the source's notifications and updates only the
// rows affected by each one:
//
//   - inserted rows are classified and, if they match, gain an icon row
//     (directories are scanned recursively);
//   - rows about to be removed lose their icon rows, and an activity that
//     loses its last icon disappears;
//   - changed rows are re-classified and refresh their cached image;
//   - a reset, or [Model.SetScopes], rebuilds the whole projection.
//
// Source handles map to icon rows through a bidirectional map, so
// [Model.MapToSource] and [Model.MapFromSource] are inverse operations.
//
// # Edits
//
// [Model.ReplaceResource], [Model.RemoveResource] and
// [Model.ReplaceApplicationIcons] write through to the source and never touch
// the projection directly. The resulting notifications update it.
//
// # Usage
//
//	tree, err := restree.Load("path/to/apk")
//	if err != nil { ... }
//	m, err := manifest.Load("path/to/apk/AndroidManifest.xml")
//	if err != nil { ... }
//
//	model, err := apkicons.New(tree, m.Scopes)
//	if err != nil { ... }
//	defer model.Close()
//
//	app := model.Index(apkicons.RowApplication, 0, apkicons.Index{})
//	for row := range model.RowCount(app) {
//		icon := model.Index(row, apkicons.ColumnPath, app)
//		fmt.Println(model.Data(icon))
//	}
package apkicons
