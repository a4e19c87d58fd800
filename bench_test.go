// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall_test

import (
	"testing"

	"code.hybscloud.com/hostcall"
)

func benchHost(b *testing.B) *hostcall.Backend {
	b.Helper()
	h, err := hostcall.NewHost(
		hostcall.WithBackend("origin", hostcall.DefaultBackendConfig("origin.test:80")),
		hostcall.WithTransport(pathTransport()),
		hostcall.WithDispatcher(inline),
		hostcall.WithLogger(discardLogger()),
	)
	if err != nil {
		b.Fatal(err)
	}
	be, err := h.Backend("origin")
	if err != nil {
		b.Fatal(err)
	}
	return be
}

// BenchmarkSendAsyncWait measures one resolved exchange redeemed by Wait.
func BenchmarkSendAsyncWait(b *testing.B) {
	be := benchHost(b)
	b.ReportAllocs()
	for b.Loop() {
		p, _ := hostcall.Get("http://origin.test/a").SendAsync(be)
		resp, _ := p.Wait()
		resp.Release()
	}
}

// BenchmarkPoll measures a poll that finds a ready completion.
func BenchmarkPoll(b *testing.B) {
	be := benchHost(b)
	b.ReportAllocs()
	for b.Loop() {
		p, _ := hostcall.Get("http://origin.test/a").SendAsync(be)
		res := p.Poll()
		res.IntoResponse().Release()
	}
}

// BenchmarkSelect4 measures a select over four resolved exchanges.
func BenchmarkSelect4(b *testing.B) {
	be := benchHost(b)
	reqs := make([]*hostcall.PendingRequest, 4)
	b.ReportAllocs()
	for b.Loop() {
		for i := range reqs {
			reqs[i], _ = hostcall.Get("http://origin.test/a").SendAsync(be)
		}
		resp, others, _ := hostcall.Select(reqs)
		resp.Release()
		for _, p := range others {
			p.Release()
		}
	}
}

// BenchmarkTableInsertRelease measures one handle round-trip.
func BenchmarkTableInsertRelease(b *testing.B) {
	tab := hostcall.NewTable[releasable]("Thing")
	v := &releasable{}
	b.ReportAllocs()
	for b.Loop() {
		tab.Release(tab.Insert(v))
	}
}
