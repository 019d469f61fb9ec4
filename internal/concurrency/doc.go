// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Lock-free primitives backing the fiber run queue. The stack links slots of
// an external arena through caller-owned next words, so push and pop never
// allocate.
package concurrency
