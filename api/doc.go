// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Interface-only contracts shared by the thread/mutex abstraction, its
// platform backends and the fiber system. Concrete implementations live in
// kthread (backends) and fiber (scheduler); this package must stay free of
// platform code so every layer can depend on it.
package api
