// Package log provides scanledger's slog setup.
//
// The saved scan settings can carry credentials for the external
// scanning engine (store logins, proxy auth), and those settings flow
// through the command surface as opaque objects. RedactingHandler wraps
// any slog.Handler and masks attribute values whose keys look like
// secrets before they reach the output, so a debug-level dump of a
// settings payload cannot leak a credential into a log file.
package log
