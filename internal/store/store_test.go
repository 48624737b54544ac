package store

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/Capstone-E1/soilsense_backend/internal/models"
)

var baseTime = time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)

// makeReadings builds n readings one hour apart whose first depth equals the index
func makeReadings(n int) []models.Reading {
	readings := make([]models.Reading, n)
	for i := range readings {
		readings[i] = models.Reading{
			Timestamp: baseTime.Add(time.Duration(i) * time.Hour),
			Depths:    [models.DepthCount]float64{float64(i), 20, 30, 40, 50},
		}
	}
	return readings
}

func TestStore_Empty(t *testing.T) {
	store := NewStore()

	if store.Size() != 0 {
		t.Errorf("Expected size 0, got %d", store.Size())
	}

	tail := store.Tail(30)
	if tail == nil || len(tail) != 0 {
		t.Errorf("Expected empty non-nil tail, got %v", tail)
	}

	if _, err := store.Next(); !errors.Is(err, models.ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}

	var indexErr *models.IndexError
	if _, err := store.At(0); !errors.As(err, &indexErr) {
		t.Errorf("Expected IndexError, got %v", err)
	}
}

func TestStore_Tail(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		n         int
		wantLen   int
		wantFirst float64
	}{
		{name: "smaller dataset than window", size: 5, n: 30, wantLen: 5, wantFirst: 0},
		{name: "exact window", size: 30, n: 30, wantLen: 30, wantFirst: 0},
		{name: "larger dataset than window", size: 100, n: 30, wantLen: 30, wantFirst: 70},
		{name: "zero window", size: 10, n: 0, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			store.Replace(makeReadings(tt.size), "test")

			tail := store.Tail(tt.n)
			if len(tail) != tt.wantLen {
				t.Fatalf("Expected %d readings, got %d", tt.wantLen, len(tail))
			}
			if tt.wantLen == 0 {
				return
			}
			if tail[0].Depths[0] != tt.wantFirst {
				t.Errorf("Expected first reading index %v, got %v", tt.wantFirst, tail[0].Depths[0])
			}
			if !models.IsSortedByTime(tail) {
				t.Error("Expected tail in chronological order")
			}
			if last := tail[len(tail)-1].Depths[0]; last != float64(tt.size-1) {
				t.Errorf("Expected tail to end at the newest reading, got index %v", last)
			}
		})
	}
}

func TestStore_TailReturnsCopy(t *testing.T) {
	store := NewStore()
	store.Replace(makeReadings(3), "test")

	tail := store.Tail(3)
	tail[0].Depths[0] = 999

	reading, err := store.At(0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if reading.Depths[0] != 0 {
		t.Errorf("Expected store to be unaffected by caller mutation, got %v", reading.Depths[0])
	}
}

func TestStore_At(t *testing.T) {
	store := NewStore()
	store.Replace(makeReadings(3), "test")

	for i := 0; i < 3; i++ {
		reading, err := store.At(i)
		if err != nil {
			t.Fatalf("At(%d) returned error: %v", i, err)
		}
		if reading.Depths[0] != float64(i) {
			t.Errorf("At(%d) returned reading %v", i, reading.Depths[0])
		}
	}

	for _, i := range []int{-1, 3, 100} {
		var indexErr *models.IndexError
		_, err := store.At(i)
		if !errors.As(err, &indexErr) {
			t.Fatalf("At(%d): expected IndexError, got %v", i, err)
		}
		if indexErr.Index != i || indexErr.Size != 3 {
			t.Errorf("At(%d): unexpected error fields %+v", i, indexErr)
		}
	}
}

func TestStore_NextCyclesInOrder(t *testing.T) {
	store := NewStore()
	store.Replace(makeReadings(3), "test")

	want := []float64{0, 1, 2, 0, 1, 2, 0}
	for call, expected := range want {
		reading, err := store.Next()
		if err != nil {
			t.Fatalf("call %d: unexpected error %v", call+1, err)
		}
		if reading.Depths[0] != expected {
			t.Errorf("call %d: expected index %v, got %v", call+1, expected, reading.Depths[0])
		}
	}
}

func TestStore_NextVisitsEveryReadingOncePerLap(t *testing.T) {
	const size = 17
	store := NewStore()
	store.Replace(makeReadings(size), "test")

	seen := make(map[int]int)
	for call := 0; call < size; call++ {
		index, reading, err := store.Advance()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if index != call {
			t.Errorf("call %d served index %d", call+1, index)
		}
		if reading.Depths[0] != float64(index) {
			t.Errorf("index %d served reading %v", index, reading.Depths[0])
		}
		seen[index]++
	}
	if len(seen) != size {
		t.Errorf("Expected %d distinct readings, got %d", size, len(seen))
	}

	// Wraparound
	index, _, err := store.Advance()
	if err != nil || index != 0 {
		t.Errorf("Expected wraparound to index 0, got %d (err %v)", index, err)
	}
}

func TestStore_NextConcurrent(t *testing.T) {
	const (
		size       = 8
		workers    = 16
		perWorker  = 250
		totalCalls = workers * perWorker
	)

	store := NewStore()
	store.Replace(makeReadings(size), "test")

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		counts = make(map[int]int)
	)

	start := make(chan struct{})
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			local := make(map[int]int)
			for i := 0; i < perWorker; i++ {
				index, reading, err := store.Advance()
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if reading.Depths[0] != float64(index) {
					t.Errorf("index %d served reading %v", index, reading.Depths[0])
				}
				local[index]++
				runtime.Gosched()
			}
			mu.Lock()
			for k, v := range local {
				counts[k] += v
			}
			mu.Unlock()
		}()
	}
	close(start)
	wg.Wait()

	for i := 0; i < size; i++ {
		if counts[i] != totalCalls/size {
			t.Errorf("index %d served %d times, want %d", i, counts[i], totalCalls/size)
		}
	}

	// All calls completed whole laps, so the cursor is back at the start
	if pos := store.Snapshot().CursorPosition; pos != 0 {
		t.Errorf("Expected cursor at 0 after full laps, got %d", pos)
	}
}

func TestStore_ReplaceKeepsCursorInRange(t *testing.T) {
	store := NewStore()
	store.Replace(makeReadings(10), "first")

	for i := 0; i < 7; i++ {
		if _, err := store.Next(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	store.Replace(makeReadings(20), "larger")
	if pos := store.Snapshot().CursorPosition; pos != 7 {
		t.Errorf("Expected cursor to stay at 7, got %d", pos)
	}

	store.Replace(makeReadings(5), "smaller")
	if pos := store.Snapshot().CursorPosition; pos != 0 {
		t.Errorf("Expected cursor reset to 0 when out of range, got %d", pos)
	}
}

func TestStore_ReplaceCopiesInput(t *testing.T) {
	input := makeReadings(2)
	store := NewStore()
	store.Replace(input, "test")

	input[0].Depths[0] = 42

	reading, _ := store.At(0)
	if reading.Depths[0] != 0 {
		t.Errorf("Expected stored reading to be isolated from input slice, got %v", reading.Depths[0])
	}
}

func TestStore_MarkLoadFailed(t *testing.T) {
	store := NewStore()
	store.Replace(makeReadings(4), "file:a.xlsx")

	store.MarkLoadFailed("file:a.xlsx", errors.New("boom"))

	if store.Size() != 0 {
		t.Errorf("Expected empty dataset after failed load, got %d", store.Size())
	}
	status := store.Snapshot()
	if status.LoadError != "boom" {
		t.Errorf("Expected load error to be recorded, got %q", status.LoadError)
	}
	if status.FirstTimestamp != nil || status.LastTimestamp != nil {
		t.Error("Expected no time range for empty dataset")
	}
	if _, err := store.Next(); !errors.Is(err, models.ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
}

func TestStore_Snapshot(t *testing.T) {
	store := NewStore()
	store.Replace(makeReadings(3), "file:dados.xlsx")
	store.Next()

	status := store.Snapshot()
	if status.Readings != 3 {
		t.Errorf("Expected 3 readings, got %d", status.Readings)
	}
	if status.CursorPosition != 1 {
		t.Errorf("Expected cursor 1, got %d", status.CursorPosition)
	}
	if status.Source != "file:dados.xlsx" {
		t.Errorf("Unexpected source %q", status.Source)
	}
	if status.LoadedAt == nil {
		t.Fatal("Expected loaded_at to be set")
	}
	if !status.FirstTimestamp.Equal(baseTime) || !status.LastTimestamp.Equal(baseTime.Add(2*time.Hour)) {
		t.Errorf("Unexpected time range %v - %v", status.FirstTimestamp, status.LastTimestamp)
	}
}

func TestStore_ImplementsDataStore(t *testing.T) {
	var _ DataStore = NewStore()
}
