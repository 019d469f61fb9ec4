// Package control
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Configuration, telemetry and debug introspection for the runtime:
//   - YAML configuration with validation, translated into backend and fiber
//     options
//   - a reloadable configuration store that retunes a running fiber system
//   - Prometheus collectors fed by fiber lifecycle events
//   - debug probe registration and state export
//
// This package is cross-platform and build-tag-partitioned as needed.
package control
