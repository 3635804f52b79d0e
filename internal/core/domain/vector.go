package domain

// VectorPayload is the metadata stored alongside each vector point.
// Window bounds are epoch seconds; the same encoding is used when
// writing points and when filtering searches.
type VectorPayload struct {
	DocumentID  string
	ChannelID   int
	WindowStart int64
	WindowEnd   int64
}

// VectorPoint is one embedded pair (or trailing singleton) of consecutive
// transcript segments. It references, never duplicates, the stored document.
type VectorPoint struct {
	ID      uint64
	Vector  []float32
	Payload VectorPayload
}

// Overlaps applies the retrieval window predicate to the point's
// epoch-second bounds: end >= window.Start and start <= window.End.
func (p VectorPayload) Overlaps(w *TimeWindow) bool {
	if w == nil {
		return true
	}
	return p.WindowEnd >= w.Start.Unix() && p.WindowStart <= w.End.Unix()
}
