package encoder

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/user/winreel/pkg/adapters/logger"
	"github.com/user/winreel/pkg/adapters/memframes"
	"github.com/user/winreel/pkg/mocks"
	"github.com/user/winreel/pkg/pipeline"
	"github.com/user/winreel/pkg/ports"
)

func testSession() pipeline.Session {
	s := pipeline.DefaultSession()
	s.OutputPath = "out.mp4"
	s.FPS = 10
	s.Scale = 0.5
	return s
}

func publish(store ports.FrameStore, cursor *pipeline.Cursor, n, w, h int) {
	for i := 0; i < n; i++ {
		store.Put(i, image.NewRGBA(image.Rect(0, 0, w, h)))
		cursor.AdvanceCaptured()
	}
}

func waitDone(t *testing.T, e *Engine) {
	t.Helper()
	select {
	case <-e.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("engine did not terminate, state %s", e.State())
	}
}

func TestEngine_DrainsAllFramesWithMonotonicTimestamps(t *testing.T) {
	cursor := pipeline.NewCursor()
	store := memframes.New()
	conv := &mocks.FrameConverter{}
	writer := &mocks.SampleWriter{}

	e := New(testSession(), cursor, store, conv, writer, &mocks.FileSystem{}, logger.NewNoop())
	e.Start()

	publish(store, cursor, 30, 200, 100)
	cursor.Finish()
	waitDone(t, e)

	if err := e.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.State() != StateDone {
		t.Fatalf("expected done, got %s", e.State())
	}
	if len(writer.WrittenMs) != 30 {
		t.Fatalf("expected 30 samples, got %d", len(writer.WrittenMs))
	}
	// 10 fps: frame i lands at i*100ms, exactly.
	for i, ms := range writer.WrittenMs {
		if ms != i*100 {
			t.Errorf("sample %d at %dms, want %dms", i, ms, i*100)
		}
	}
	if cursor.Encoded() != 30 {
		t.Errorf("encoded count = %d, want 30", cursor.Encoded())
	}
	if store.Len() != 0 {
		t.Errorf("%d frames left in store after drain", store.Len())
	}
	if conv.ReleaseCalls != len(conv.ConvertCalls) {
		t.Errorf("released %d of %d buffers", conv.ReleaseCalls, len(conv.ConvertCalls))
	}
}

func TestEngine_TrackDimensionsFromFirstFrame(t *testing.T) {
	cursor := pipeline.NewCursor()
	store := memframes.New()
	writer := &mocks.SampleWriter{}

	e := New(testSession(), cursor, store, &mocks.FrameConverter{}, writer,
		&mocks.FileSystem{}, logger.NewNoop())
	e.Start()

	publish(store, cursor, 1, 200, 100)
	cursor.Finish()
	waitDone(t, e)

	if !writer.BeginCalled {
		t.Fatal("writer never opened")
	}
	if writer.BeginWidth != 100 || writer.BeginHeight != 50 {
		t.Errorf("track %dx%d, want 100x50", writer.BeginWidth, writer.BeginHeight)
	}
	if writer.BeginFPS != 10 {
		t.Errorf("track fps %d, want 10", writer.BeginFPS)
	}
}

func TestEngine_OddDimensionsAlignDown(t *testing.T) {
	session := testSession()
	session.Scale = 1.0
	cursor := pipeline.NewCursor()
	store := memframes.New()
	writer := &mocks.SampleWriter{}

	e := New(session, cursor, store, &mocks.FrameConverter{}, writer,
		&mocks.FileSystem{}, logger.NewNoop())
	e.Start()

	publish(store, cursor, 1, 201, 101)
	cursor.Finish()
	waitDone(t, e)

	// yuv420p needs even dimensions.
	if writer.BeginWidth != 200 || writer.BeginHeight != 100 {
		t.Errorf("track %dx%d, want 200x100", writer.BeginWidth, writer.BeginHeight)
	}
}

func TestEngine_NoFramesFailsWithoutOpeningContainer(t *testing.T) {
	cursor := pipeline.NewCursor()
	writer := &mocks.SampleWriter{}

	e := New(testSession(), cursor, memframes.New(), &mocks.FrameConverter{},
		writer, &mocks.FileSystem{}, logger.NewNoop())
	e.Start()

	cursor.Finish()
	waitDone(t, e)

	if !errors.Is(e.Err(), ErrNoFrames) {
		t.Fatalf("expected ErrNoFrames, got %v", e.Err())
	}
	if writer.BeginCalled {
		t.Error("container opened despite empty capture")
	}
	if e.State() != StateFailed {
		t.Errorf("expected failed, got %s", e.State())
	}
}

func TestEngine_RemovesStaleOutputBeforeOpening(t *testing.T) {
	fs := &mocks.FileSystem{}
	if err := fs.WriteFile("out.mp4", []byte("stale")); err != nil {
		t.Fatal(err)
	}

	cursor := pipeline.NewCursor()
	store := memframes.New()
	e := New(testSession(), cursor, store, &mocks.FrameConverter{},
		&mocks.SampleWriter{}, fs, logger.NewNoop())
	e.Start()

	publish(store, cursor, 1, 200, 100)
	cursor.Finish()
	waitDone(t, e)

	if e.Err() != nil {
		t.Fatalf("unexpected error: %v", e.Err())
	}
	if len(fs.Removed) != 1 || fs.Removed[0] != "out.mp4" {
		t.Errorf("stale output not removed, removals: %v", fs.Removed)
	}
}

func TestEngine_AppendFailureSalvagesContainer(t *testing.T) {
	boom := errors.New("muxer rejected sample")
	writer := &mocks.SampleWriter{}
	writer.WriteSampleFunc = func(buf *ports.PixelBuffer, timestampMs int) error {
		if len(writer.WrittenMs) > 3 {
			return boom
		}
		return nil
	}
	conv := &mocks.FrameConverter{}
	cursor := pipeline.NewCursor()
	store := memframes.New()

	e := New(testSession(), cursor, store, conv, writer, &mocks.FileSystem{}, logger.NewNoop())
	e.Start()

	publish(store, cursor, 10, 200, 100)
	cursor.Finish()
	waitDone(t, e)

	if !errors.Is(e.Err(), ErrAppendSample) {
		t.Fatalf("expected ErrAppendSample, got %v", e.Err())
	}
	if !errors.Is(e.Err(), boom) {
		t.Errorf("cause not preserved in %v", e.Err())
	}
	// The partial container still gets its one and only flush.
	if writer.EndCalls != 1 {
		t.Errorf("End called %d times, want 1", writer.EndCalls)
	}
	if conv.ReleaseCalls != len(conv.ConvertCalls) {
		t.Errorf("released %d of %d buffers", conv.ReleaseCalls, len(conv.ConvertCalls))
	}
}

func TestEngine_ConvertFailureAborts(t *testing.T) {
	conv := &mocks.FrameConverter{
		ConvertFunc: func(frame ports.Frame, target ports.Dimension) (*ports.PixelBuffer, error) {
			if frame.Index == 2 {
				return nil, errors.New("unsupported pixel layout")
			}
			return &ports.PixelBuffer{Width: target.Width, Height: target.Height,
				Pix: make([]byte, target.Width*target.Height*4)}, nil
		},
	}
	writer := &mocks.SampleWriter{}
	cursor := pipeline.NewCursor()
	store := memframes.New()

	e := New(testSession(), cursor, store, conv, writer, &mocks.FileSystem{}, logger.NewNoop())
	e.Start()

	publish(store, cursor, 5, 200, 100)
	cursor.Finish()
	waitDone(t, e)

	if !errors.Is(e.Err(), ErrConvertFrame) {
		t.Fatalf("expected ErrConvertFrame, got %v", e.Err())
	}
	if len(writer.WrittenMs) != 2 {
		t.Errorf("%d samples written before abort, want 2", len(writer.WrittenMs))
	}
	if writer.EndCalls != 1 {
		t.Errorf("End called %d times, want 1", writer.EndCalls)
	}
}

func TestEngine_FinalizeFailure(t *testing.T) {
	writer := &mocks.SampleWriter{
		EndFunc: func() (ports.WriterStats, error) {
			return ports.WriterStats{}, errors.New("moov write failed")
		},
	}
	cursor := pipeline.NewCursor()
	store := memframes.New()

	e := New(testSession(), cursor, store, &mocks.FrameConverter{}, writer,
		&mocks.FileSystem{}, logger.NewNoop())
	e.Start()

	publish(store, cursor, 3, 200, 100)
	cursor.Finish()
	waitDone(t, e)

	if !errors.Is(e.Err(), ErrFinalize) {
		t.Fatalf("expected ErrFinalize, got %v", e.Err())
	}
	if e.State() != StateFailed {
		t.Errorf("expected failed, got %s", e.State())
	}
}

func TestEngine_ToleratesEncodeLag(t *testing.T) {
	writer := &mocks.SampleWriter{
		WriteSampleFunc: func(buf *ports.PixelBuffer, timestampMs int) error {
			time.Sleep(time.Millisecond)
			return nil
		},
	}
	cursor := pipeline.NewCursor()
	store := memframes.New()

	e := New(testSession(), cursor, store, &mocks.FrameConverter{}, writer,
		&mocks.FileSystem{}, logger.NewNoop())
	e.Start()

	// Publish far faster than the writer drains, then declare the end
	// of input while a large backlog remains.
	publish(store, cursor, 50, 200, 100)
	cursor.Finish()
	waitDone(t, e)

	if e.Err() != nil {
		t.Fatalf("unexpected error: %v", e.Err())
	}
	if len(writer.WrittenMs) != 50 {
		t.Fatalf("expected every backlogged frame encoded, got %d of 50", len(writer.WrittenMs))
	}
	for i := 1; i < len(writer.WrittenMs); i++ {
		if writer.WrittenMs[i] <= writer.WrittenMs[i-1] {
			t.Fatalf("timestamps not strictly increasing at sample %d", i)
		}
	}
}

func TestEngine_StartIsIdempotent(t *testing.T) {
	cursor := pipeline.NewCursor()
	store := memframes.New()
	writer := &mocks.SampleWriter{}

	e := New(testSession(), cursor, store, &mocks.FrameConverter{}, writer,
		&mocks.FileSystem{}, logger.NewNoop())
	e.Start()
	e.Start()
	e.Start()

	publish(store, cursor, 2, 200, 100)
	cursor.Finish()
	waitDone(t, e)

	if len(writer.WrittenMs) != 2 {
		t.Errorf("duplicate drain loops: %d samples for 2 frames", len(writer.WrittenMs))
	}
	if writer.EndCalls != 1 {
		t.Errorf("End called %d times, want 1", writer.EndCalls)
	}
}
