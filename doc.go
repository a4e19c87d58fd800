// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package hostcall is the interop layer between an edge-compute host and a
// caller that only speaks opaque handles, out-parameters, numeric codes and
// two-outcome returns.
//
// The host owns resources (backends, requests, responses, bodies, stores,
// log endpoints). The caller refers to them through handles and observes
// their lifecycle through four mechanisms:
//
//   - The error channel: every fallible call produces either a value or an
//     [Error] carrying a [Code] from a closed enumeration. [Try] and
//     [SetError] write an error slot exactly once per call.
//   - Ownership: owned values are consumed by by-value operations and become
//     unusable afterwards. Borrowing accessors leave them intact. Reusing a
//     consumed value is a contract violation and panics.
//   - Pending operations: [Request.SendAsync] starts background I/O and
//     returns a [PendingRequest]. [PendingRequest.Poll] is one non-blocking
//     attempt, [PendingRequest.Wait] suspends the caller with adaptive
//     backoff, and [Select] waits for the first of a group.
//   - Correlation handles: [Correlator] pairs an asynchronous start with a
//     single redemption by id.
//
// Completions travel from the I/O side to the caller through bounded
// single-producer single-consumer queues (lfq.SPSC) holding
// kont.Either[error, T] records. Waiting never spins hot: it backs off with
// iox.Backoff between attempts.
//
// The abi subpackage flattens this API into plain functions over uint32
// handles for foreign callers.
package hostcall
