package cuts

import (
	"errors"
	"fmt"

	"github.com/ebaad11/drp-jl-cut-api/internal/types"
)

// ErrMissingTrack is the one whole-run refusal: a timeline without both a
// video and an audio track cannot be processed at all.
var ErrMissingTrack = errors.New("timeline is missing a video or audio track")

const (
	reasonVideoGap     = "video gap at cut"
	reasonAudioGap     = "audio gap"
	reasonAudioMissing = "audio clip missing"
	reasonAudioNotCut  = "audio not cut at boundary"
	reasonZeroDuration = "zero-duration clip"
	reasonSharedClip   = "audio clip shared with previous boundary"
)

// Detect walks the video track's clip-to-clip adjacencies and classifies
// each as an eligible or ineligible cut boundary. It never fails per
// boundary; the only error is the missing-track refusal.
//
// An audio clip participates in at most one eligible boundary: when a
// boundary's leading audio clip is the trailing clip of the previous
// eligible boundary, the later boundary is ineligible. That keeps
// boundaries independent of application order.
func Detect(tl *types.Timeline) ([]types.Boundary, error) {
	if tl == nil || tl.Video == nil || tl.Audio == nil {
		return nil, ErrMissingTrack
	}

	video := tl.Video.Clips
	audio := tl.Audio.Clips

	var out []types.Boundary
	lastUsedAudio := -1
	for i := 0; i+1 < len(video); i++ {
		f := video[i].End()
		b := types.Boundary{Frame: f, VideoA: i, VideoB: i + 1, AudioA: -1, AudioB: -1}

		if video[i+1].Start != f {
			b.Reason = reasonVideoGap
			out = append(out, b)
			continue
		}
		if video[i].Duration <= 0 || video[i+1].Duration <= 0 {
			b.Reason = reasonZeroDuration
			out = append(out, b)
			continue
		}

		ai, bi := matchAudio(audio, f)
		b.AudioA, b.AudioB = ai, bi
		switch {
		case ai < 0 && bi < 0:
			b.Reason = classifyUnmatched(audio, f)
		case ai < 0 || bi < 0:
			b.Reason = fmt.Sprintf("%s at frame %d", reasonAudioGap, f)
		case bi != ai+1:
			// Cannot happen on a non-overlapping track; classified, not fatal.
			b.Reason = fmt.Sprintf("%s at frame %d", reasonAudioGap, f)
		case audio[ai].Duration <= 0 || audio[bi].Duration <= 0:
			b.Reason = reasonZeroDuration
		case ai == lastUsedAudio:
			b.Reason = reasonSharedClip
		default:
			b.Eligible = true
			lastUsedAudio = bi
		}
		out = append(out, b)
	}
	return out, nil
}

// matchAudio returns the index of the audio clip ending exactly at frame f
// and the index of the one starting exactly at f, -1 where absent.
func matchAudio(audio []types.Clip, f int64) (ai, bi int) {
	ai, bi = -1, -1
	for j, c := range audio {
		if c.End() == f && ai < 0 {
			ai = j
		}
		if c.Start == f && bi < 0 {
			bi = j
		}
	}
	return ai, bi
}

func classifyUnmatched(audio []types.Clip, f int64) string {
	hasBefore, hasAfter := false, false
	for _, c := range audio {
		if c.Start < f && f < c.End() {
			return fmt.Sprintf("%s (clip %q spans frame %d)", reasonAudioNotCut, c.Name, f)
		}
		if c.End() <= f {
			hasBefore = true
		}
		if c.Start >= f {
			hasAfter = true
		}
	}
	if hasBefore && hasAfter {
		return fmt.Sprintf("%s at frame %d", reasonAudioGap, f)
	}
	return fmt.Sprintf("%s at frame %d", reasonAudioMissing, f)
}
