// Package platform defines the execution environments shipcheck can run
// delivery scripts on and the adapter abstraction over them.
// Most users should use the top-level shipcheck package, which detects the
// host and routes scripts automatically. Import this package directly only
// if you need to inspect a single environment or drive an Adapter yourself.
package platform
