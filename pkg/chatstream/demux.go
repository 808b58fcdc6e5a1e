package chatstream

import "strings"

// Default markers for hidden reasoning regions in assistant output.
const (
	OpenMarker  = "<think>"
	CloseMarker = "</think>"
)

// Segment is one classified run of assistant text. Segments preserve the
// arrival order of the raw stream; concatenating all segments (with the
// marker literals spliced back in around hidden runs) reconstructs the raw
// stream byte for byte.
type Segment struct {
	Hidden bool
	Text   string
}

// Demuxer splits a raw delta stream into visible and hidden segments. The
// hidden region is delimited by literal open/close markers that may straddle
// any delta boundary, so the demuxer keeps a residual buffer of at most
// len(marker)-1 trailing bytes that could be the start of a split marker.
//
// It is a two-state automaton: OUTSIDE the hidden region it scans for the
// open marker, INSIDE it scans for the close marker. Matched text before a
// marker is emitted with the current classification; the marker literal
// itself is never emitted.
//
// Demuxer is a pure state transformation with no locking; one instance
// belongs to exactly one stream session.
type Demuxer struct {
	openTag  string
	closeTag string
	pending  string
	inside   bool
	flushed  bool
}

// NewDemuxer creates a demuxer for the default <think> markers.
func NewDemuxer() *Demuxer {
	return NewDemuxerWithMarkers(OpenMarker, CloseMarker)
}

func NewDemuxerWithMarkers(open, close string) *Demuxer {
	return &Demuxer{openTag: open, closeTag: close}
}

// Feed consumes one raw delta and returns the segments that became
// classifiable. Empty deltas yield no segments.
func (d *Demuxer) Feed(delta string) []Segment {
	if delta == "" {
		return nil
	}
	d.pending += delta

	var segs []Segment
	for {
		marker := d.openTag
		if d.inside {
			marker = d.closeTag
		}

		if idx := strings.Index(d.pending, marker); idx >= 0 {
			if idx > 0 {
				segs = appendSegment(segs, Segment{Hidden: d.inside, Text: d.pending[:idx]})
			}
			d.pending = d.pending[idx+len(marker):]
			d.inside = !d.inside
			continue
		}

		// No full marker. The tail of pending may still be the start of one
		// split across the next delta: hold back the longest suffix that is
		// a prefix of the marker, emit everything before it.
		keep := longestSuffixPrefix(d.pending, marker)
		if emit := d.pending[:len(d.pending)-keep]; emit != "" {
			segs = appendSegment(segs, Segment{Hidden: d.inside, Text: emit})
			d.pending = d.pending[len(emit):]
		}
		return segs
	}
}

// Flush ends the input and drains whatever is still unclassified. A partial
// marker at end of stream is literal text, not a marker, so it is emitted
// with the current classification instead of being dropped. An unterminated
// hidden region stays hidden.
func (d *Demuxer) Flush() []Segment {
	if d.flushed {
		return nil
	}
	d.flushed = true
	if d.pending == "" {
		return nil
	}
	seg := Segment{Hidden: d.inside, Text: d.pending}
	d.pending = ""
	return []Segment{seg}
}

// InsideHidden reports whether the automaton is currently inside a hidden
// region.
func (d *Demuxer) InsideHidden() bool {
	return d.inside
}

// appendSegment merges runs of the same classification so callers see one
// segment per contiguous region regardless of how the input was chunked.
func appendSegment(segs []Segment, seg Segment) []Segment {
	if n := len(segs); n > 0 && segs[n-1].Hidden == seg.Hidden {
		segs[n-1].Text += seg.Text
		return segs
	}
	return append(segs, seg)
}

// longestSuffixPrefix returns the length of the longest proper suffix of s
// that is a prefix of marker. Bounded by len(marker)-1, which also bounds
// the demuxer's residual buffer and its worst-case emission latency.
func longestSuffixPrefix(s, marker string) int {
	max := len(marker) - 1
	if max > len(s) {
		max = len(s)
	}
	for k := max; k > 0; k-- {
		if strings.HasPrefix(marker, s[len(s)-k:]) {
			return k
		}
	}
	return 0
}
