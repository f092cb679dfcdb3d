package reference

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestNewHasPrefixAndULID(t *testing.T) {
	g := NewGenerator("TOEI")
	ref := g.New()
	if !strings.HasPrefix(ref, "TOEI-") {
		t.Fatalf("reference %q missing prefix", ref)
	}
	id, err := ulid.ParseStrict(strings.TrimPrefix(ref, "TOEI-"))
	if err != nil {
		t.Fatalf("reference suffix is not a ulid: %v", err)
	}
	if age := time.Since(ulid.Time(id.Time())); age < 0 || age > time.Minute {
		t.Fatalf("ulid timestamp out of range: %s", age)
	}
}

func TestDefaultPrefix(t *testing.T) {
	if got := NewGenerator(" ").Prefix(); got != DefaultPrefix {
		t.Fatalf("Prefix() = %q, want %q", got, DefaultPrefix)
	}
}

func TestNewIsUniqueUnderConcurrency(t *testing.T) {
	g := NewGenerator("ORG")
	const workers, per = 8, 500
	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*per)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, per)
			for j := 0; j < per; j++ {
				local = append(local, g.New())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, ref := range local {
				if _, dup := seen[ref]; dup {
					t.Errorf("duplicate reference %q", ref)
				}
				seen[ref] = struct{}{}
			}
		}()
	}
	wg.Wait()
}
