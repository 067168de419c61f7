//go:build !integration

package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegister_AllCollectorsAreUnique(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}

	IncVIPGrant("time_boxed")
	IncGateOpen("premium", "locked_placeholder")
	IncCacheRequest("prediction", "HIT")
	SetBuildInfo("v1", "abc")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	names := map[string]bool{}
	for _, mf := range mfs {
		if !strings.HasPrefix(mf.GetName(), namespace+"_") {
			t.Errorf("metric %s lacks the %s_ prefix", mf.GetName(), namespace)
		}
		names[mf.GetName()] = true
	}
	for _, want := range []string{"betiq_vip_grants_total", "betiq_content_gate_open_total", "betiq_cache_requests_total", "betiq_build_info"} {
		if !names[want] {
			t.Errorf("missing %s in %v", want, names)
		}
	}

	if err := Register(reg); err == nil {
		t.Error("registering twice should fail")
	}
}

func TestNorm(t *testing.T) {
	cases := map[string]string{" HIT ": "hit", "": "unknown", "Fresh": "fresh"}
	for in, want := range cases {
		if got := norm(in); got != want {
			t.Errorf("norm(%q) = %q, want %q", in, got, want)
		}
	}
}
