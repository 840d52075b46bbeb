package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/younessemlali/gerflor-xml-cleaner/internal/scrub"
)

func testDocs() []Document {
	return []Document{
		{Name: "a.xml", Data: []byte(`<PositionStatus><Code>6A</Code></PositionStatus>`)},
		{Name: "b.xml", Data: []byte(`<Code>6A</Code`)}, // malformed
		{Name: "c.xml", Data: []byte(`<PositionStatus><Description>Ouvriers</Description></PositionStatus>`)},
	}
}

func TestProcessPartialFailureIsolation(t *testing.T) {
	docs := testDocs()
	results := New(scrub.New(scrub.DefaultTags())).Process(context.Background(), docs)

	if len(results) != len(docs) {
		t.Fatalf("got %d results, want %d", len(results), len(docs))
	}
	for i, r := range results {
		if r.Name != docs[i].Name {
			t.Errorf("result %d name = %q, want %q (order must match input)", i, r.Name, docs[i].Name)
		}
	}

	if !results[0].Cleaned() || !results[2].Cleaned() {
		t.Errorf("valid documents failed: %v, %v", results[0].Err, results[2].Err)
	}
	if results[1].Cleaned() {
		t.Error("malformed document reported as cleaned")
	}
	var perr *scrub.ParseError
	if !errors.As(results[1].Err, &perr) {
		t.Errorf("malformed document error = %T, want *scrub.ParseError", results[1].Err)
	}
	if !strings.Contains(string(results[0].Data), "<Code></Code>") {
		t.Errorf("a.xml not cleaned: %s", results[0].Data)
	}
	if !strings.Contains(string(results[2].Data), "<Description></Description>") {
		t.Errorf("c.xml not cleaned: %s", results[2].Data)
	}
}

func TestProcessParallelPreservesOrder(t *testing.T) {
	var docs []Document
	for i := 0; i < 20; i++ {
		docs = append(docs, Document{
			Name: fmt.Sprintf("doc-%02d.xml", i),
			Data: []byte(fmt.Sprintf(`<Item n="%d"><Code>6A</Code></Item>`, i)),
		})
	}

	results := New(scrub.New(scrub.DefaultTags()), Workers(4)).Process(context.Background(), docs)

	if len(results) != len(docs) {
		t.Fatalf("got %d results, want %d", len(results), len(docs))
	}
	for i, r := range results {
		if r.Name != docs[i].Name {
			t.Fatalf("result %d = %q, want %q", i, r.Name, docs[i].Name)
		}
		if !r.Cleaned() {
			t.Errorf("%s failed: %v", r.Name, r.Err)
		}
		if !strings.Contains(string(r.Data), fmt.Sprintf(`n="%d"`, i)) {
			t.Errorf("result %d carries wrong document content: %s", i, r.Data)
		}
	}
}

func TestProcessEmpty(t *testing.T) {
	results := New(scrub.New(scrub.DefaultTags())).Process(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("got %d results for empty batch", len(results))
	}
}

func TestProcessDuplicateNames(t *testing.T) {
	docs := []Document{
		{Name: "same.xml", Data: []byte(`<Code>6A</Code>`)},
		{Name: "same.xml", Data: []byte(`<Code>7B</Code>`)},
	}
	results := New(scrub.New(scrub.DefaultTags())).Process(context.Background(), docs)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (no dedup by name)", len(results))
	}
}

func TestProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs := testDocs()
	results := New(scrub.New(scrub.DefaultTags())).Process(ctx, docs)

	if len(results) != len(docs) {
		t.Fatalf("got %d results, want %d", len(results), len(docs))
	}
	for i, r := range results {
		if r.Name != docs[i].Name {
			t.Errorf("result %d name = %q, want %q", i, r.Name, docs[i].Name)
		}
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("result %d err = %v, want context.Canceled", i, r.Err)
		}
	}
}

func TestProcessProgress(t *testing.T) {
	docs := testDocs()
	var calls []int
	runner := New(scrub.New(scrub.DefaultTags()), Progress(func(done, total int) {
		if total != len(docs) {
			t.Errorf("progress total = %d, want %d", total, len(docs))
		}
		calls = append(calls, done)
	}))

	runner.Process(context.Background(), docs)

	if len(calls) != len(docs) {
		t.Fatalf("progress called %d times, want %d", len(calls), len(docs))
	}
	if calls[len(calls)-1] != len(docs) {
		t.Errorf("final progress done = %d, want %d", calls[len(calls)-1], len(docs))
	}
}

func TestSummarize(t *testing.T) {
	results := New(scrub.New(scrub.DefaultTags())).Process(context.Background(), testDocs())
	s := Summarize(results)

	if s.Total != 3 || s.Cleaned != 2 || s.Failed != 1 {
		t.Errorf("summary = %+v, want Total 3, Cleaned 2, Failed 1", s)
	}
	if s.Modifications != 2 {
		t.Errorf("summary modifications = %d, want 2", s.Modifications)
	}
}
