package resolvexml

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ebaad11/drp-jl-cut-api/internal/types"
)

// Resolve stores each timeline as a Sm2SequenceContainer document under
// SeqContainer/. Clips are property bags: <Sm2TiAudioClip><Start>96</Start>
// <Duration>104</Duration><In>200</In>... This adapter round-trips the
// whole document and rewrites only the audio clip properties the transform
// changed.

const (
	rootElement     = "Sm2SequenceContainer"
	videoClipName   = "Sm2TiVideoClip"
	audioClipName   = "Sm2TiAudioClip"
	seqContainerDir = "SeqContainer"
)

// node is a generic element-tree view of the markup. Attribute order and
// child order survive a round trip; inter-element whitespace collapses into
// the parent's character data, which Resolve does not care about.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []*node    `xml:",any"`
}

func (n *node) child(name string) *node {
	for _, c := range n.Children {
		if c.XMLName.Local == name {
			return c
		}
	}
	return nil
}

func (n *node) childText(name string) string {
	if c := n.child(name); c != nil {
		return strings.TrimSpace(c.Text)
	}
	return ""
}

func (n *node) childInt(name string) int64 {
	v, err := strconv.ParseInt(n.childText(name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func (n *node) setChildInt(name string, v int64) {
	if c := n.child(name); c != nil {
		c.Text = strconv.FormatInt(v, 10)
	}
}

type clipRef struct {
	elem *node
	clip types.Clip
}

type document struct {
	root  *node
	audio []*node // aligned with the decoded audio track's clip order
}

// Adapter decodes sequence documents into the timeline model and writes
// modified models back. Load caches the parsed document per path so Save
// can preserve everything the model does not represent.
type Adapter struct {
	docs map[string]*document
}

func New() *Adapter { return &Adapter{docs: make(map[string]*document)} }

// FindSequences lists the Sm2SequenceContainer documents in an unpacked
// project, in name order. Files that are not sequence containers (or not
// XML at all) are skipped.
func (a *Adapter) FindSequences(ctx context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(dir, seqContainerDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			continue
		}
		path := filepath.Join(dir, seqContainerDir, e.Name())
		root, err := parseFile(path)
		if err != nil || root.XMLName.Local != rootElement {
			continue
		}
		out = append(out, path)
	}
	return out, nil
}

func parseFile(path string) (*node, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var root node
	if err := xml.Unmarshal(b, &root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	dropInterElementSpace(&root)
	return &root, nil
}

// dropInterElementSpace clears whitespace-only character data on interior
// nodes so MarshalIndent produces clean output on save.
func dropInterElementSpace(n *node) {
	if len(n.Children) > 0 && strings.TrimSpace(n.Text) == "" {
		n.Text = ""
	}
	for _, c := range n.Children {
		dropInterElementSpace(c)
	}
}

func (a *Adapter) Load(ctx context.Context, path string) (*types.Timeline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	if root.XMLName.Local != rootElement {
		return nil, fmt.Errorf("%s: not a sequence container", filepath.Base(path))
	}

	videoRefs := trackClips(root, "VideoTrackVec", videoClipName)
	audioRefs := trackClips(root, "AudioTrackVec", audioClipName)

	tl := &types.Timeline{
		Name:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Sources: map[string]types.MediaSource{},
	}
	if videoRefs != nil {
		tl.Video = &types.Track{Kind: types.TrackVideo, Clips: clips(videoRefs)}
	}
	var audioNodes []*node
	if audioRefs != nil {
		tl.Audio = &types.Track{Kind: types.TrackAudio, Clips: clips(audioRefs)}
		for _, r := range audioRefs {
			audioNodes = append(audioNodes, r.elem)
		}
	}
	for _, refs := range [][]clipRef{videoRefs, audioRefs} {
		for _, r := range refs {
			if _, ok := tl.Sources[r.clip.SourceID]; !ok {
				// The sequence markup does not record media extents.
				tl.Sources[r.clip.SourceID] = types.MediaSource{ID: r.clip.SourceID}
			}
		}
	}

	a.docs[path] = &document{root: root, audio: audioNodes}
	return tl, nil
}

// trackClips returns the clips of the first track in the given track
// vector, sorted by timeline start. nil means the track vector (or its
// first track) is absent, as opposed to a present-but-empty track.
func trackClips(root *node, vecName, clipName string) []clipRef {
	vec := root.child(vecName)
	if vec == nil {
		return nil
	}
	elem := vec.child("Element")
	if elem == nil {
		return nil
	}
	track := elem.child("Sm2TiTrack")
	if track == nil {
		return nil
	}
	refs := []clipRef{}
	items := track.child("Items")
	if items == nil {
		return refs
	}
	for _, it := range items.Children {
		if it.XMLName.Local != "Element" {
			continue
		}
		c := it.child(clipName)
		if c == nil {
			continue
		}
		refs = append(refs, clipRef{
			elem: c,
			clip: types.Clip{
				Name:     c.childText("Name"),
				SourceID: c.childText("MediaRef"),
				Start:    c.childInt("Start"),
				Duration: c.childInt("Duration"),
				SourceIn: c.childInt("In"),
			},
		})
	}
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].clip.Start < refs[j].clip.Start })
	return refs
}

func clips(refs []clipRef) []types.Clip {
	out := make([]types.Clip, len(refs))
	for i, r := range refs {
		out[i] = r.clip
	}
	return out
}

// Save writes the timeline's audio clip timings back into the document
// loaded from path and re-serializes it. Only Start, Duration and In of
// audio clips are touched; the video track and everything else in the
// document are emitted as loaded.
func (a *Adapter) Save(ctx context.Context, path string, tl *types.Timeline) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, ok := a.docs[path]
	if !ok {
		return fmt.Errorf("%s: sequence was not loaded by this store", filepath.Base(path))
	}
	if tl == nil || tl.Audio == nil {
		return fmt.Errorf("%s: timeline has no audio track to save", filepath.Base(path))
	}
	if len(tl.Audio.Clips) != len(doc.audio) {
		return fmt.Errorf("%s: timeline has %d audio clips, document has %d", filepath.Base(path), len(tl.Audio.Clips), len(doc.audio))
	}
	for i, c := range tl.Audio.Clips {
		n := doc.audio[i]
		n.setChildInt("Start", c.Start)
		n.setChildInt("Duration", c.Duration)
		n.setChildInt("In", c.SourceIn)
	}

	b, err := xml.MarshalIndent(doc.root, "", "    ")
	if err != nil {
		return fmt.Errorf("serialize %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, append([]byte(xml.Header), b...), 0o644)
}
