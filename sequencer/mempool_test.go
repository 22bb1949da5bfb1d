package sequencer

import "testing"

func TestMempoolDrainIsFIFO(t *testing.T) {
	m := NewMempool(10)
	for _, id := range []string{"a", "b", "c"} {
		if err := m.Submit(EncryptedTx{ID: id, Ciphertext: []byte("x")}); err != nil {
			t.Fatalf("Submit(%s): %v", id, err)
		}
	}
	drained := m.Drain(2)
	if len(drained) != 2 || drained[0].ID != "a" || drained[1].ID != "b" {
		t.Fatalf("Drain(2) = %+v, want [a b]", drained)
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
}

func TestMempoolOverflowFails(t *testing.T) {
	m := NewMempool(1)
	if err := m.Submit(EncryptedTx{ID: "a"}); err != nil {
		t.Fatalf("Submit(a): %v", err)
	}
	if err := m.Submit(EncryptedTx{ID: "b"}); err != ErrMempoolFull {
		t.Fatalf("err = %v, want ErrMempoolFull", err)
	}
}

func TestMempoolDuplicateSubmitIsNoop(t *testing.T) {
	m := NewMempool(1)
	if err := m.Submit(EncryptedTx{ID: "a"}); err != nil {
		t.Fatalf("Submit(a): %v", err)
	}
	if err := m.Submit(EncryptedTx{ID: "a"}); err != nil {
		t.Fatalf("duplicate Submit(a): %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after duplicate resubmission", m.Len())
	}
}

func TestMempoolRestoreToHead(t *testing.T) {
	m := NewMempool(10)
	_ = m.Submit(EncryptedTx{ID: "a"})
	_ = m.Submit(EncryptedTx{ID: "b"})
	drained := m.Drain(2)
	for i := len(drained) - 1; i >= 0; i-- {
		if err := m.restoreToHead(drained[i]); err != nil {
			t.Fatalf("restoreToHead: %v", err)
		}
	}
	redrained := m.Drain(2)
	if len(redrained) != 2 || redrained[0].ID != "a" || redrained[1].ID != "b" {
		t.Fatalf("redrained = %+v, want original FIFO order restored", redrained)
	}
}
