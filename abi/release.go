// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package abi

type table interface {
	Kind() string
	Len() int
	Release(h Handle)
}

var tables = []table{
	errs, kvErrs,
	backends, builders,
	requests, responses, streams,
	pendings, pollResults,
	valueCursors, nameCursors, pairCursors,
	kvStores,
	configStores, secretStores, secrets,
}

var releaseFuncs = map[string]func(Handle){}

func init() {
	for _, t := range tables {
		releaseFuncs[t.Kind()] = t.Release
	}
}

// Release releases h from the table of the given kind. Releasing the null
// handle is a no-op.
func Release(kind string, h Handle) {
	f, ok := releaseFuncs[kind]
	if !ok {
		panic("hostcall: unknown handle kind " + kind)
	}
	f(h)
}

// LiveHandles returns the number of live handles per kind.
func LiveHandles() map[string]int {
	out := make(map[string]int, len(tables))
	for _, t := range tables {
		out[t.Kind()] = t.Len()
	}
	return out
}

// ReleaseError releases an Error handle.
func ReleaseError(h Handle) { errs.Release(h) }

// ReleaseKVError releases a KVError handle.
func ReleaseKVError(h Handle) { kvErrs.Release(h) }

// ReleaseBackend releases a Backend handle. The backend stays registered.
func ReleaseBackend(h Handle) { backends.Release(h) }

// ReleaseBackendBuilder drops an unfinished builder.
func ReleaseBackendBuilder(h Handle) { builders.Release(h) }

// ReleaseRequest releases a Request and its body.
func ReleaseRequest(h Handle) { requests.Release(h) }

// ReleaseResponse releases a Response and its body.
func ReleaseResponse(h Handle) { responses.Release(h) }

// ReleaseStreamingBody releases a StreamingBody, aborting it if unfinished.
func ReleaseStreamingBody(h Handle) { streams.Release(h) }

// ReleasePending drops a PendingRequest. The exchange keeps running.
func ReleasePending(h Handle) { pendings.Release(h) }

// ReleasePollResult releases a PollResult and whatever it holds.
func ReleasePollResult(h Handle) { pollResults.Release(h) }

// ReleaseHeaderValuesCursor releases a HeaderValuesCursor.
func ReleaseHeaderValuesCursor(h Handle) { valueCursors.Release(h) }

// ReleaseHeaderNamesCursor releases a HeaderNamesCursor.
func ReleaseHeaderNamesCursor(h Handle) { nameCursors.Release(h) }

// ReleaseHeadersCursor releases a HeadersCursor.
func ReleaseHeadersCursor(h Handle) { pairCursors.Release(h) }

// ReleaseKVStore releases a KVStore handle. The store stays open.
func ReleaseKVStore(h Handle) { kvStores.Release(h) }

// ReleaseConfigStore releases a ConfigStore handle.
func ReleaseConfigStore(h Handle) { configStores.Release(h) }

// ReleaseSecretStore releases a SecretStore handle.
func ReleaseSecretStore(h Handle) { secretStores.Release(h) }

// ReleaseSecret releases a Secret handle.
func ReleaseSecret(h Handle) { secrets.Release(h) }
