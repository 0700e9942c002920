package capture

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/user/winreel/pkg/adapters/logger"
	"github.com/user/winreel/pkg/adapters/memframes"
	"github.com/user/winreel/pkg/mocks"
	"github.com/user/winreel/pkg/pipeline"
)

func TestScheduler_PublishesFramesInOrder(t *testing.T) {
	grabber := &mocks.Grabber{}
	store := memframes.New()
	cursor := pipeline.NewCursor()
	sink := &mocks.DebugSink{}

	s := New(grabber, store, cursor, sink, logger.NewNoop(), 5*time.Millisecond)
	s.Start(context.Background())

	deadline := time.After(2 * time.Second)
	for cursor.Captured() < 5 {
		select {
		case <-deadline:
			t.Fatalf("captured only %d frames before deadline", cursor.Captured())
		case <-time.After(5 * time.Millisecond):
		}
	}
	s.Stop()
	<-s.Done()

	captured := cursor.Captured()
	if captured < 5 {
		t.Fatalf("expected at least 5 frames, got %d", captured)
	}
	// Every published index must be present in the store.
	for i := 0; i < captured; i++ {
		if _, ok := store.Frame(i); !ok {
			t.Errorf("frame %d published but missing from store", i)
		}
	}
	if store.Len() != captured {
		t.Errorf("store holds %d frames, cursor says %d", store.Len(), captured)
	}
}

func TestScheduler_SkipsFailedAcquisitions(t *testing.T) {
	calls := 0
	grabber := &mocks.Grabber{
		CaptureFrameFunc: func(ctx context.Context) (image.Image, error) {
			calls++
			if calls%2 == 0 {
				return nil, errors.New("window occluded")
			}
			return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
		},
	}
	store := memframes.New()
	cursor := pipeline.NewCursor()

	s := New(grabber, store, cursor, &mocks.DebugSink{}, logger.NewNoop(), 2*time.Millisecond)
	s.Start(context.Background())

	deadline := time.After(2 * time.Second)
	for grabber.CaptureCalls < 10 {
		select {
		case <-deadline:
			t.Fatalf("only %d capture attempts before deadline", grabber.CaptureCalls)
		case <-time.After(2 * time.Millisecond):
		}
	}
	s.Stop()
	<-s.Done()

	captured := cursor.Captured()
	if captured >= grabber.CaptureCalls {
		t.Errorf("failures must not advance the count: %d captured of %d attempts",
			captured, grabber.CaptureCalls)
	}
	// Skipped ticks leave no holes: indices stay contiguous from zero.
	for i := 0; i < captured; i++ {
		if _, ok := store.Frame(i); !ok {
			t.Errorf("hole at frame %d after skipped ticks", i)
		}
	}
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := New(&mocks.Grabber{}, memframes.New(), pipeline.NewCursor(),
		&mocks.DebugSink{}, logger.NewNoop(), time.Millisecond)
	s.Start(context.Background())

	s.Stop()
	s.Stop()
	s.Stop()

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not drain after Stop")
	}
}

func TestScheduler_ContextCancelHaltsTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cursor := pipeline.NewCursor()
	s := New(&mocks.Grabber{}, memframes.New(), cursor,
		&mocks.DebugSink{}, logger.NewNoop(), time.Millisecond)
	s.Start(ctx)

	cancel()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit on context cancel")
	}

	count := cursor.Captured()
	time.Sleep(20 * time.Millisecond)
	if cursor.Captured() != count {
		t.Error("frames still published after cancel")
	}
}

func TestScheduler_DebugSinkReceivesRawFrames(t *testing.T) {
	sink := &mocks.DebugSink{EnabledValue: true}
	cursor := pipeline.NewCursor()
	s := New(&mocks.Grabber{}, memframes.New(), cursor, sink,
		logger.NewNoop(), 2*time.Millisecond)
	s.Start(context.Background())

	deadline := time.After(2 * time.Second)
	for cursor.Captured() < 3 {
		select {
		case <-deadline:
			t.Fatal("not enough frames before deadline")
		case <-time.After(2 * time.Millisecond):
		}
	}
	s.Stop()
	<-s.Done()

	if len(sink.SavedFrames) != cursor.Captured() {
		t.Errorf("sink saw %d frames, cursor published %d",
			len(sink.SavedFrames), cursor.Captured())
	}
	for i, idx := range sink.SavedFrames {
		if idx != i {
			t.Errorf("sink frame %d recorded with index %d", i, idx)
		}
	}
}
