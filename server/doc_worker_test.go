package server

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDocWorker_UpdateGetClose(t *testing.T) {
	w := NewDocWorker()
	defer w.Stop()

	uri := "file:///a.pl0"
	d, err := w.Update(uri, "skip.")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if d.prog == nil || d.err != nil {
		t.Fatalf("analysis = %+v, want a parsed program", d)
	}

	if got := w.Get(uri); got != d {
		t.Error("Get should return the stored analysis")
	}

	d2, err := w.Update(uri, "skip")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if d2.err == nil || d2.prog != nil {
		t.Error("second version should fail to parse")
	}
	if got := w.Get(uri); got.text != "skip" {
		t.Errorf("text = %q, want the latest version", got.text)
	}

	w.Close(uri)
	if got := w.Get(uri); got != nil {
		t.Errorf("Get after Close = %+v, want nil", got)
	}
}

func TestDocWorker_RecoversPanic(t *testing.T) {
	w := NewDocWorker()
	defer w.Stop()

	_, err := w.Do(func(map[string]*document) interface{} {
		panic("boom")
	})
	if err == nil || err.Error() != "boom" {
		t.Errorf("err = %v, want boom", err)
	}

	// The worker keeps serving after a panic.
	if _, err := w.Update("file:///b.pl0", "skip."); err != nil {
		t.Errorf("Update after panic: %v", err)
	}
}

func TestDocWorker_Concurrent(t *testing.T) {
	w := NewDocWorker()
	defer w.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Update("file:///c.pl0", "var x; x := 1.")
			w.Get("file:///c.pl0")
		}()
	}
	wg.Wait()

	if d := w.Get("file:///c.pl0"); d == nil || d.prog == nil {
		t.Error("document missing after concurrent updates")
	}
}

func TestDocWorker_AfterStop(t *testing.T) {
	w := NewDocWorker()
	if _, err := w.Update("file:///d.pl0", "skip."); err != nil {
		t.Fatalf("Update: %v", err)
	}
	w.Stop()
	w.Stop() // second Stop must not panic

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := w.Do(func(map[string]*document) interface{} { return 1 }); !errors.Is(err, ErrWorkerStopped) {
			t.Errorf("Do err = %v, want ErrWorkerStopped", err)
		}
		if _, err := w.Update("file:///d.pl0", "skip."); !errors.Is(err, ErrWorkerStopped) {
			t.Errorf("Update err = %v, want ErrWorkerStopped", err)
		}
		if d := w.Get("file:///d.pl0"); d != nil {
			t.Errorf("Get = %+v, want nil", d)
		}
		if err := w.Close("file:///d.pl0"); !errors.Is(err, ErrWorkerStopped) {
			t.Errorf("Close err = %v, want ErrWorkerStopped", err)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("calls after Stop blocked")
	}
}
