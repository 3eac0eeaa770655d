// Package config holds scanledger's configuration: application
// defaults, the bounds enforced on scan settings, and the YAML settings
// file that the save-configuration operation persists.
//
// Configuration is passed through the application via dependency
// injection rather than global state; this package only defines the
// types, defaults, and file I/O.
package config
