// Package visibility runs a single-writer, multi-reader publish-then-observe
// probe.
//
// The writer stores a value and then publishes a flag. Readers spin on the
// flag and, once they see it set, read the value. Whether every reader sees
// the writer's value depends on the ordering between the two writes:
//
//   - ReleaseAcquire: the value is a plain field written before an atomic
//     store of the flag; readers atomically load the flag before reading the
//     value. The atomic pair establishes happens-before, so a reader that sees
//     the flag must see the value.
//   - Reordered: the flag is published before the value. This is the ordering
//     a plain, unordered flag permits the compiler or CPU to produce, and
//     readers may observe a stale value. Both writes are still atomic, so the
//     probe itself is free of data races.
//
// Readers busy-wait deliberately, but every spin loop is bounded by both an
// iteration cap and a wall-clock timeout. A reader that exceeds either bound
// is reported through *TimeoutError instead of hanging.
package visibility
