package payment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/applyninja/ninja/internal/flow"
	"github.com/applyninja/ninja/internal/profile"
	"github.com/applyninja/ninja/internal/storage"
	"github.com/applyninja/ninja/internal/testutil"
)

type stubVerifier struct {
	calls int
	msg   string
	err   error
}

func (v *stubVerifier) VerifyPayment(context.Context) (string, error) {
	v.calls++
	return v.msg, v.err
}

func newGate(t *testing.T, v Verifier) (*Gate, *profile.Store, *testutil.Navigator) {
	t.Helper()
	store := profile.NewStore(storage.NewMemory(), nil)
	nav := &testutil.Navigator{}
	return NewGate(Options{Store: store, Verifier: v, Navigator: nav}), store, nav
}

func TestSubmitProofRequiresFile(t *testing.T) {
	v := &stubVerifier{}
	g, store, nav := newGate(t, v)
	ctx := context.Background()

	files := []*flow.File{
		nil,
		{},
		{Name: "shot.png"},
		flow.BytesFile("shot.png", nil),
		{Name: "shot.png", Content: strings.NewReader("")},
	}
	for _, f := range files {
		if err := g.SubmitProof(ctx, f); !errors.Is(err, ErrNoProof) {
			t.Errorf("SubmitProof(%+v) err = %v, want ErrNoProof", f, err)
		}
	}
	if pending, _ := store.PendingPremium(ctx); pending {
		t.Error("pending flag set despite validation failure")
	}
	if len(nav.Visited()) != 0 {
		t.Errorf("navigated on validation failure: %v", nav.Visited())
	}
	if v.calls != 0 {
		t.Errorf("verifier called %d times, want 0", v.calls)
	}
}

func TestSubmitProofSetsFlagAndReturnsToUpload(t *testing.T) {
	v := &stubVerifier{}
	g, store, nav := newGate(t, v)
	ctx := context.Background()

	err := g.SubmitProof(ctx, flow.BytesFile("shot.png", []byte("png")))
	if err != nil {
		t.Fatalf("SubmitProof failed: %v", err)
	}
	if pending, _ := store.PendingPremium(ctx); !pending {
		t.Error("pending flag should be set")
	}
	if got := nav.Visited(); len(got) != 1 || got[0] != flow.PageUpload {
		t.Errorf("navigated to %v, want [upload]", got)
	}
	if v.calls != 0 {
		t.Errorf("verifier called %d times, want 0", v.calls)
	}
}

func TestSubmitProofHonorsCancellation(t *testing.T) {
	store := profile.NewStore(storage.NewMemory(), nil)
	g := NewGate(Options{Store: store, Verifier: &stubVerifier{}, ProofDelay: 1 << 40})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.SubmitProof(ctx, flow.BytesFile("a", []byte("a")))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if pending, _ := store.PendingPremium(context.Background()); pending {
		t.Error("flag set after cancellation")
	}
}

func TestPromoteSuccess(t *testing.T) {
	v := &stubVerifier{msg: "Payment verified! Premium access granted."}
	g, store, _ := newGate(t, v)
	ctx := context.Background()
	_, _ = store.Merge(ctx, profile.Patch{Name: profile.String("Ada")})
	_ = store.SetPendingPremium(ctx, true)

	msg, err := g.Promote(ctx)
	if err != nil {
		t.Fatalf("Promote failed: %v", err)
	}
	if msg != v.msg {
		t.Errorf("msg = %q, want %q", msg, v.msg)
	}
	rec, _ := store.Read(ctx)
	if !rec.IsPremium() || rec.Name() != "Ada" {
		t.Errorf("record premium=%v name=%q", rec.IsPremium(), rec.Name())
	}
	if pending, _ := store.PendingPremium(ctx); pending {
		t.Error("pending flag should be cleared")
	}
}

func TestPromoteFailureRetainsFlag(t *testing.T) {
	v := &stubVerifier{err: errors.New("User data not found")}
	g, store, _ := newGate(t, v)
	ctx := context.Background()
	_ = store.SetPendingPremium(ctx, true)

	if _, err := g.Promote(ctx); err == nil {
		t.Fatal("expected error")
	}
	if pending, _ := g.Pending(ctx); !pending {
		t.Error("pending flag must survive a failed verification")
	}
	rec, _ := store.Read(ctx)
	if rec != nil && rec.IsPremium() {
		t.Error("profile promoted despite failed verification")
	}
}
