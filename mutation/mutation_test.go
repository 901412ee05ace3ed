package mutation

import "testing"

type node struct{ id int }

func TestCompress_ConsecutiveText(t *testing.T) {
	a := &node{1}
	records := []Record{Text(a), Text(a), Text(a)}
	records[2].At = records[0].At.Add(1)

	got := Compress(records)
	if len(got) != 1 {
		t.Fatalf("Compress: got %d records, want 1", len(got))
	}
	if !got[0].At.Equal(records[2].At) {
		t.Errorf("kept record: got %v, want the last one", got[0].At)
	}
}

func TestCompress_InsertNeverCompressed(t *testing.T) {
	a := &node{1}
	got := Compress([]Record{Insert(a), Insert(a), Insert(a)})
	if len(got) != 3 {
		t.Fatalf("Compress: got %d records, want 3 (inserts never compressed)", len(got))
	}
}

func TestCompress_MixedOps(t *testing.T) {
	a, b := &node{1}, &node{2}
	records := []Record{
		Text(a),
		Text(a),
		Insert(b),
		Text(b),
		Text(a),
		Settled(),
		Text(a),
		Remove(b),
	}

	got := Compress(records)
	// text(a)x2 -> 1, insert, text(b), text(a), settled, text(a), remove = 7
	if len(got) != 7 {
		t.Fatalf("Compress: got %d records, want 7", len(got))
	}
	want := []Op{OpText, OpInsert, OpText, OpText, OpSettled, OpText, OpRemove}
	for i, op := range want {
		if got[i].Op != op {
			t.Errorf("Record[%d]: got op=%s, want %s", i, got[i].Op, op)
		}
	}
	if got[2].Node != b || got[3].Node != a {
		t.Error("text records on different nodes were merged or reordered")
	}
}

func TestCompress_Empty(t *testing.T) {
	if got := Compress(nil); got != nil {
		t.Errorf("Compress(nil): got %v, want nil", got)
	}
}

func TestSettledHasNoNode(t *testing.T) {
	if r := Settled(); r.Node != nil || r.Op != OpSettled {
		t.Errorf("Settled: got %+v", r)
	}
}
