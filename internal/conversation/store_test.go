package conversation

import (
	"errors"
	"reflect"
	"sync"
	"testing"
)

func TestAppendAssignsContiguousIndices(t *testing.T) {
	s := NewStore()
	for want := 0; want < 5; want++ {
		got, err := s.Append(NewUserMessage("m"))
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if got != want {
			t.Fatalf("Append() index = %d, want %d", got, want)
		}
	}
}

func TestAppendRejectsUnknownRole(t *testing.T) {
	s := NewStore()
	if _, err := s.Append(Message{Role: "system", Content: "x"}); err == nil {
		t.Fatalf("Append() with unknown role should fail")
	}
	if s.Len() != 0 {
		t.Fatalf("rejected append must not grow the transcript")
	}
}

func TestReplaceContentPreservesRoleAndIndex(t *testing.T) {
	s := NewStore()
	idx, err := s.Append(NewAssistantMessage("before"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if err := s.ReplaceContent(idx, "after"); err != nil {
		t.Fatalf("ReplaceContent() error = %v", err)
	}

	got, err := s.Get(idx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Role != RoleAssistant || got.Content != "after" {
		t.Fatalf("unexpected message after replace: %+v", got)
	}
	if s.Len() != 1 {
		t.Fatalf("replace must not change transcript length")
	}
}

func TestReplaceContentInvalidIndex(t *testing.T) {
	s := NewStore()
	if err := s.ReplaceContent(0, "x"); !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("ReplaceContent() error = %v, want ErrInvalidIndex", err)
	}
	if _, err := s.AppendContent(3, "x"); !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("AppendContent() error = %v, want ErrInvalidIndex", err)
	}
	if _, err := s.Get(-1); !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("Get() error = %v, want ErrInvalidIndex", err)
	}
}

func TestAppendContentConcatenates(t *testing.T) {
	s := NewStore()
	idx, _ := s.Append(NewAssistantMessage(""))

	for _, chunk := range []string{"Hi", " there", "."} {
		if _, err := s.AppendContent(idx, chunk); err != nil {
			t.Fatalf("AppendContent() error = %v", err)
		}
	}

	got, _ := s.Get(idx)
	if got.Content != "Hi there." {
		t.Fatalf("content = %q, want %q", got.Content, "Hi there.")
	}
}

func TestSnapshotIsConsistentCopy(t *testing.T) {
	s := NewStore()
	_, _ = s.Append(NewUserMessage("hello"))
	_, _ = s.Append(NewAssistantMessage("hi"))

	first := s.Snapshot()
	second := s.Snapshot()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("snapshots without intervening mutation differ: %v vs %v", first, second)
	}

	// Mutating after the snapshot must not leak into the copy.
	if err := s.ReplaceContent(1, "changed"); err != nil {
		t.Fatalf("ReplaceContent() error = %v", err)
	}
	if first[1].Content != "hi" {
		t.Fatalf("snapshot mutated by later ReplaceContent: %+v", first[1])
	}
}

func TestConcurrentAppendsStayDense(t *testing.T) {
	s := NewStore()
	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	seen := make(chan int, writers*perWriter)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				idx, err := s.Append(NewUserMessage("m"))
				if err != nil {
					t.Errorf("Append() error = %v", err)
					return
				}
				seen <- idx
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[int]bool)
	for idx := range seen {
		if unique[idx] {
			t.Fatalf("index %d assigned twice", idx)
		}
		unique[idx] = true
	}
	if len(unique) != writers*perWriter {
		t.Fatalf("got %d unique indices, want %d", len(unique), writers*perWriter)
	}
	if s.Len() != writers*perWriter {
		t.Fatalf("Len() = %d, want %d", s.Len(), writers*perWriter)
	}
}
