package types

import "fmt"

type TrackKind string

const (
	TrackVideo TrackKind = "video"
	TrackAudio TrackKind = "audio"
)

// MediaSource is the full recorded extent of a media file, independent of
// any clip's trim. Length <= 0 means the project markup does not record the
// extent; handle checks against the out-point are skipped in that case.
type MediaSource struct {
	ID     string
	Length int64
}

// Clip is a trimmed region of one MediaSource placed on the timeline.
// All fields are frame counts. SourceOut is derived, which keeps
// sourceOut == sourceIn + duration true by construction.
type Clip struct {
	Name     string
	SourceID string
	Start    int64
	Duration int64
	SourceIn int64
}

func (c Clip) End() int64 { return c.Start + c.Duration }

func (c Clip) SourceOut() int64 { return c.SourceIn + c.Duration }

type Track struct {
	Kind  TrackKind
	Clips []Clip
}

// Timeline holds the one video and one audio track this tool considers.
// A nil track is the whole-run fatal condition; additional tracks in the
// project are never represented here and pass through untouched.
type Timeline struct {
	Name    string
	Video   *Track
	Audio   *Track
	Sources map[string]MediaSource
}

func (t *Timeline) Source(id string) (MediaSource, bool) {
	s, ok := t.Sources[id]
	return s, ok
}

// Clone deep-copies the timeline. Used by simulation passes and tests.
func (t *Timeline) Clone() *Timeline {
	if t == nil {
		return nil
	}
	out := &Timeline{Name: t.Name}
	if t.Video != nil {
		v := Track{Kind: t.Video.Kind, Clips: append([]Clip(nil), t.Video.Clips...)}
		out.Video = &v
	}
	if t.Audio != nil {
		a := Track{Kind: t.Audio.Kind, Clips: append([]Clip(nil), t.Audio.Clips...)}
		out.Audio = &a
	}
	if t.Sources != nil {
		out.Sources = make(map[string]MediaSource, len(t.Sources))
		for k, v := range t.Sources {
			out.Sources[k] = v
		}
	}
	return out
}

// Validate checks the model invariants: positive durations, clips ordered
// by start without overlap, and source ranges inside the recorded extent.
func (t *Timeline) Validate() error {
	for _, tr := range []*Track{t.Video, t.Audio} {
		if tr == nil {
			continue
		}
		for i, c := range tr.Clips {
			if c.Duration <= 0 {
				return fmt.Errorf("%s clip %q: non-positive duration %d", tr.Kind, c.Name, c.Duration)
			}
			if c.SourceIn < 0 {
				return fmt.Errorf("%s clip %q: negative source in-point %d", tr.Kind, c.Name, c.SourceIn)
			}
			if src, ok := t.Sources[c.SourceID]; ok && src.Length > 0 && c.SourceOut() > src.Length {
				return fmt.Errorf("%s clip %q: source out-point %d past media end %d", tr.Kind, c.Name, c.SourceOut(), src.Length)
			}
			if i > 0 && tr.Clips[i-1].End() > c.Start {
				return fmt.Errorf("%s clips %q and %q overlap at frame %d", tr.Kind, tr.Clips[i-1].Name, c.Name, c.Start)
			}
		}
	}
	return nil
}

// Boundary is a candidate cut point: the frame where one video clip ends
// and the next begins. Clips are addressed by index into their track's clip
// slice so that a later mutation is visible to anyone holding the boundary.
// Audio indexes are -1 when the matching audio clip does not exist.
type Boundary struct {
	Frame    int64  `json:"frame"`
	VideoA   int    `json:"video_a"`
	VideoB   int    `json:"video_b"`
	AudioA   int    `json:"audio_a"`
	AudioB   int    `json:"audio_b"`
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

const (
	OutcomeApplied           = "applied"
	OutcomeSkippedIneligible = "skipped_ineligible"
	OutcomeSkippedInfeasible = "skipped_infeasible"
	OutcomeFailed            = "failed"
)

// BoundaryResult is the per-boundary outcome of a transform pass.
type BoundaryResult struct {
	Boundary Boundary `json:"boundary"`
	Outcome  string   `json:"outcome"`
	Reason   string   `json:"reason,omitempty"`
}
