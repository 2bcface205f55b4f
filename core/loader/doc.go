// Package loader mounts optional HTTP features on the Fiber router.
//
// A feature reports whether its collaborators are configured through IsEnabled and
// registers its routes in Load:
//
//	mgr := loader.NewManager(log)
//	mgr.Register(tables.NewFeature(workbook, cfg, log))
//	if err := mgr.LoadAll(app); err != nil {
//		return err
//	}
//
// Disabled features are logged and skipped. The first Load error aborts LoadAll.
package loader
