// Package mp4probe inspects finished MP4 containers. It reports the
// sample count, duration and track dimensions of the video track, which
// is how a recording is verified to hold exactly the frames that were
// captured.
package mp4probe

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

var (
	// ErrNoVideoTrack is returned when the container has no video track.
	ErrNoVideoTrack = errors.New("mp4probe: no video track found")
)

// Info describes the video track of a probed container.
type Info struct {
	// Samples is the number of video samples in the container.
	Samples int
	// DurationMs is the presentation duration of the video track.
	DurationMs int
	// Width and Height are the track dimensions in pixels.
	Width  int
	Height int
}

// Probe opens the file at path and inspects its video track.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return ProbeReader(f)
}

// ProbeReader inspects the container read from rs. Both progressive and
// fragmented layouts are handled.
func ProbeReader(rs io.ReadSeeker) (Info, error) {
	mp4File, err := mp4.DecodeFile(rs)
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}

	moov := mp4File.Moov
	if moov == nil && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return Info{}, fmt.Errorf("no moov box found")
	}

	trak := findVideoTrak(moov)
	if trak == nil {
		return Info{}, ErrNoVideoTrack
	}

	info := Info{
		Width:  int(uint32(trak.Tkhd.Width) >> 16),
		Height: int(uint32(trak.Tkhd.Height) >> 16),
	}

	var timescale uint32 = 1000
	if trak.Mdia != nil && trak.Mdia.Mdhd != nil {
		timescale = trak.Mdia.Mdhd.Timescale
	}

	if mp4File.IsFragmented() {
		samples, durUnits := walkFragments(mp4File, moov, trak.Tkhd.TrackID)
		info.Samples = samples
		info.DurationMs = int(durUnits * 1000 / uint64(timescale))
		return info, nil
	}

	// Progressive: the sample table has everything.
	if trak.Mdia == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return Info{}, fmt.Errorf("no sample table found")
	}
	stbl := trak.Mdia.Minf.Stbl
	if stbl.Stsz == nil {
		return Info{}, fmt.Errorf("no stsz box found")
	}
	info.Samples = int(stbl.Stsz.SampleNumber)
	if trak.Mdia.Mdhd != nil {
		info.DurationMs = int(trak.Mdia.Mdhd.Duration * 1000 / uint64(timescale))
	}

	return info, nil
}

// findVideoTrak returns the first track with a "vide" handler.
func findVideoTrak(moov *mp4.MoovBox) *mp4.TrakBox {
	for _, trak := range moov.Traks {
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" {
			return trak
		}
	}
	return nil
}

// walkFragments counts samples and sums durations across all movie
// fragments of the given track.
func walkFragments(mp4File *mp4.File, moov *mp4.MoovBox, trackID uint32) (int, uint64) {
	// Default sample duration may live in the trex box.
	var trexDefault uint32
	if moov.Mvex != nil {
		for _, trex := range moov.Mvex.Trexs {
			if trex.TrackID == trackID {
				trexDefault = trex.DefaultSampleDuration
				break
			}
		}
	}

	samples := 0
	var durUnits uint64

	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd.TrackID != trackID {
					continue
				}
				defDur := trexDefault
				if traf.Tfhd.HasDefaultSampleDuration() {
					defDur = traf.Tfhd.DefaultSampleDuration
				}
				for _, trun := range traf.Truns {
					samples += int(trun.SampleCount())
					for _, s := range trun.Samples {
						d := s.Dur
						if d == 0 {
							d = defDur
						}
						durUnits += uint64(d)
					}
				}
			}
		}
	}

	return samples, durUnits
}
