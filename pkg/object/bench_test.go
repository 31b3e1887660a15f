package object

import (
	"fmt"
	"testing"
)

func BenchmarkStoreWriteUniqueBlob(b *testing.B) {
	s := NewStore(b.TempDir())

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Write(TypeBlob, []byte(fmt.Sprintf("blob %d\n", i))); err != nil {
			b.Fatalf("Write: %v", err)
		}
	}
}

func BenchmarkStoreFindObject(b *testing.B) {
	s := NewStore(b.TempDir())
	h, err := s.Write(TypeBlob, make([]byte, 64*1024))
	if err != nil {
		b.Fatalf("Write: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.FindObject(h); err != nil {
			b.Fatalf("FindObject: %v", err)
		}
	}
}

// BenchmarkLookupPrefix measures a short prefix lookup in a store holding
// a few thousand loose objects.
func BenchmarkLookupPrefix(b *testing.B) {
	s := NewStore(b.TempDir())
	var last Hash
	for i := 0; i < 4096; i++ {
		h, err := s.Write(TypeBlob, []byte(fmt.Sprintf("object %d\n", i)))
		if err != nil {
			b.Fatalf("Write: %v", err)
		}
		last = h
	}
	p := MustPrefix(last.Short(7))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ids, err := s.LookupPrefix(p)
		if err != nil || len(ids) == 0 {
			b.Fatalf("LookupPrefix = %v, %v", ids, err)
		}
	}
}
